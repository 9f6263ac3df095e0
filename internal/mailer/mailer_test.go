package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMailer_Send(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := NewLogMailer(slog.New(slog.NewTextHandler(&buf, nil)))

	err := m.Send(context.Background(), Message{To: "a@example.com", Subject: "hi", Body: "link"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "to=a@example.com")
	assert.Contains(t, buf.String(), "subject=hi")
}

func TestLogMailer_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLogMailer(slog.Default()).Send(ctx, Message{To: "a@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
