package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil qa service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingQAService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{QA: &mockQAService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingQAService)
	assert.NoError(t, (&Ports{QA: &mockQAService{}}).Validate())
}

func TestPorts_SessionID(t *testing.T) {
	tests := []struct {
		name     string
		ports    Ports
		id       string
		expected string
	}{
		{name: "explicit id wins", ports: Ports{SessionID: "srv"}, id: "call", expected: "call"},
		{name: "server session", ports: Ports{SessionID: "srv"}, expected: "srv"},
		{name: "default session", expected: DefaultSessionID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ports.sessionID(tt.id))
		})
	}
}
