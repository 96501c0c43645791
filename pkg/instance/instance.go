package instance

import (
	"os"
	"strings"
)

// ID names the running process for logs and lock ownership. It prefers an
// explicit CABLEFLOW_INSTANCE_ID, then the platform revision, then the host.
func ID(service string) string {
	for _, env := range []string{"CABLEFLOW_INSTANCE_ID", "K_REVISION", "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(env)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return service + "@" + host
	}
	return service + "-0"
}
