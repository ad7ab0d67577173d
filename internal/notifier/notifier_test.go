package notifier

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gtemgoua/property-manager-app/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsImplementation(t *testing.T) {
	_, ok := New(nil).(*LogNotifier)
	assert.True(t, ok)

	_, ok = New(&config.EmailConfig{}).(*LogNotifier)
	assert.True(t, ok)

	_, ok = New(&config.EmailConfig{Host: "smtp.example.com", Port: 587}).(*SMTPNotifier)
	assert.True(t, ok)
}

func TestLogNotifier_Send(t *testing.T) {
	n := NewLogNotifier()

	err := n.Send(context.Background(), &Message{To: "ada@example.com", Subject: "Rent receipt RCPT-1"})
	require.NoError(t, err)
	require.Len(t, n.Sent(), 1)
	assert.Equal(t, "Rent receipt RCPT-1", n.Sent()[0].Subject)

	assert.ErrorIs(t, n.Send(context.Background(), &Message{}), ErrNoRecipient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Send(ctx, &Message{To: "ada@example.com"}), context.Canceled)
	assert.Len(t, n.Sent(), 1)
}

func TestSMTPNotifier_BuildMessage(t *testing.T) {
	n := NewSMTPNotifier(&config.EmailConfig{
		Host:        "smtp.example.com",
		Port:        587,
		SenderEmail: "office@example.com",
		SenderName:  "Rent Office",
	})

	m, err := n.buildMessage(&Message{
		To:                    "ada@example.com",
		ToName:                "Ada Lovelace",
		Subject:               "Rent receipt RCPT-1",
		HTMLBody:              "<p>Dear Ada,</p>",
		Attachment:            []byte("%PDF-1.3"),
		AttachmentName:        "RCPT-1.pdf",
		AttachmentContentType: "application/pdf",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: Rent receipt RCPT-1")
	assert.Contains(t, raw, "office@example.com")
	assert.Contains(t, raw, "ada@example.com")
	assert.True(t, strings.Contains(raw, "RCPT-1.pdf"))
}

func TestSMTPNotifier_BuildMessage_Errors(t *testing.T) {
	n := NewSMTPNotifier(&config.EmailConfig{Host: "smtp.example.com", SenderEmail: "office@example.com"})

	_, err := n.buildMessage(&Message{})
	assert.ErrorIs(t, err, ErrNoRecipient)

	_, err = n.buildMessage(&Message{To: "not an address"})
	assert.Error(t, err)
}
