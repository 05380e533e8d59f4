package mail

import (
	"context"
	"testing"
	"time"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPTransport_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   SMTPConfig
		expected bool
	}{
		{
			name:     "empty config",
			config:   SMTPConfig{},
			expected: false,
		},
		{
			name:     "host only",
			config:   SMTPConfig{Host: "smtp.example.com"},
			expected: false,
		},
		{
			name: "missing password",
			config: SMTPConfig{
				Host:     "smtp.example.com",
				Username: "crm@example.com",
			},
			expected: false,
		},
		{
			name: "fully configured",
			config: SMTPConfig{
				Host:     "smtp.example.com",
				Username: "crm@example.com",
				Password: "app-password",
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := NewSMTPTransport(tt.config)
			assert.Equal(t, tt.expected, transport.IsConfigured())
		})
	}
}

func TestSMTPTransport_Defaults(t *testing.T) {
	transport := NewSMTPTransport(SMTPConfig{Host: "smtp.example.com"})

	assert.Equal(t, 587, transport.config.Port)
	assert.Equal(t, "Leadflow", transport.config.SenderName)
}

func TestSMTPTransport_SendUnconfigured(t *testing.T) {
	transport := NewSMTPTransport(SMTPConfig{})

	sent, err := transport.Send(context.Background(), Message{To: "a@x.com"})

	assert.False(t, sent)
	assert.Error(t, err)
}

func TestSMTPTransport_SendCancelledContext(t *testing.T) {
	transport := NewSMTPTransport(SMTPConfig{
		Host:     "smtp.example.com",
		Username: "crm@example.com",
		Password: "app-password",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sent, err := transport.Send(ctx, Message{To: "a@x.com"})

	assert.False(t, sent)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderWelcome(t *testing.T) {
	lead := &models.Lead{
		ID:    "lead-1",
		Name:  "Ann",
		Email: "a@x.com",
	}
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	subject, body, err := RenderWelcome(lead, now)

	require.NoError(t, err)
	assert.Equal(t, "Welcome aboard, Ann!", subject)
	assert.Contains(t, body, "Hi Ann,")
	assert.Contains(t, body, "a@x.com")
	assert.Contains(t, body, "March 1, 2025")
}
