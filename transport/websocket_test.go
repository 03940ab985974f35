package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEndpointUpgradesScheme(t *testing.T) {
	t.Parallel()

	tables := []struct {
		name     string
		base     string
		expected string
	}{
		{"https_to_wss", "https://team.example.com", "wss://team.example.com/presence/ws"},
		{"http_to_ws", "http://localhost:8080", "ws://localhost:8080/presence/ws"},
		{"ws_passthrough", "ws://localhost:8080", "ws://localhost:8080/presence/ws"},
		{"wss_passthrough", "wss://team.example.com", "wss://team.example.com/presence/ws"},
		{"path_replaced", "https://team.example.com/app/board", "wss://team.example.com/presence/ws"},
	}

	for _, table := range tables {
		table := table
		t.Run(table.name, func(t *testing.T) {
			endpoint, err := ResolveEndpoint(table.base, "/presence/ws")
			assert.NoError(t, err)
			assert.Equal(t, table.expected, endpoint)
		})
	}
}

func TestResolveEndpointRejectsBadScheme(t *testing.T) {
	t.Parallel()

	_, err := ResolveEndpoint("ftp://example.com", "/presence/ws")
	assert.Error(t, err)
}
