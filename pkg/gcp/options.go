// Package gcp turns CABLEFLOW_GCP_* settings into Google client options.
package gcp

import (
	"google.golang.org/api/option"

	"github.com/cableflow/cableflow-backend/pkg/config"
)

// ClientOptions prefers inline JSON credentials, then a credentials file,
// then application default credentials.
func ClientOptions(cfg config.GCPConfig, extra ...option.ClientOption) []option.ClientOption {
	opts := append([]option.ClientOption(nil), extra...)
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.ApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(cfg.ApplicationCredentials))
	}
	return opts
}
