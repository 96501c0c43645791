package instance

import (
	"strings"
	"testing"
)

func TestIDPrefersExplicitEnv(t *testing.T) {
	t.Setenv("CABLEFLOW_INSTANCE_ID", "api-7")
	t.Setenv("K_REVISION", "api-00042")
	if got := ID("api"); got != "api-7" {
		t.Fatalf("expected explicit id, got %q", got)
	}
}

func TestIDFallsBackToHost(t *testing.T) {
	t.Setenv("CABLEFLOW_INSTANCE_ID", "")
	t.Setenv("K_REVISION", "")
	t.Setenv("DYNO", "")
	if got := ID("cron-worker"); !strings.HasPrefix(got, "cron-worker") {
		t.Fatalf("expected service prefix, got %q", got)
	}
}
