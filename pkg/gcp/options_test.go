package gcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/option"

	"github.com/cableflow/cableflow-backend/pkg/config"
)

func TestClientOptions(t *testing.T) {
	assert.Empty(t, ClientOptions(config.GCPConfig{}))
	assert.Len(t, ClientOptions(config.GCPConfig{}, option.WithScopes("s")), 1)
	assert.Len(t, ClientOptions(config.GCPConfig{CredentialsJSON: "{}", ApplicationCredentials: "/k.json"}), 1)
	assert.Len(t, ClientOptions(config.GCPConfig{ApplicationCredentials: "/k.json"}, option.WithScopes("s")), 2)
}
