package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gtemgoua/property-manager-app/pkg/config"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// ErrNoRecipient is returned when a message has no To address
var ErrNoRecipient = errors.New("message has no recipient")

// Message is one outbound HTML email with an optional attachment
type Message struct {
	To                    string
	ToName                string
	Subject               string
	HTMLBody              string
	Attachment            []byte
	AttachmentName        string
	AttachmentContentType string
}

// Notifier delivers messages to recipients
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}

// New returns an SMTP notifier, or a log-only one when no host is configured
func New(cfg *config.EmailConfig) Notifier {
	if cfg == nil || cfg.Host == "" {
		return NewLogNotifier()
	}
	return NewSMTPNotifier(cfg)
}

// SMTPNotifier sends mail through an SMTP relay with go-mail
type SMTPNotifier struct {
	cfg *config.EmailConfig
}

// NewSMTPNotifier creates an SMTPNotifier
func NewSMTPNotifier(cfg *config.EmailConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(n.cfg.Port)}
	if n.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(n.cfg.Timeout))
	}
	if n.cfg.UseSSL {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}
	return opts
}

// buildMessage converts msg into a go-mail message
func (n *SMTPNotifier) buildMessage(msg *Message) (*mail.Msg, error) {
	if msg.To == "" {
		return nil, ErrNoRecipient
	}

	m := mail.NewMsg()
	if err := m.FromFormat(n.cfg.SenderName, n.cfg.SenderEmail); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.AddToFormat(msg.ToName, msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)

	if len(msg.Attachment) > 0 && msg.AttachmentName != "" {
		contentType := msg.AttachmentContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := m.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment),
			mail.WithFileContentType(mail.ContentType(contentType))); err != nil {
			return nil, fmt.Errorf("attach %s: %w", msg.AttachmentName, err)
		}
	}
	return m, nil
}

// Send dials the relay and delivers msg
func (n *SMTPNotifier) Send(ctx context.Context, msg *Message) error {
	m, err := n.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(n.cfg.Host, n.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}

	logger.Info("Email sent", zap.String("recipient", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// LogNotifier drops messages after logging them
type LogNotifier struct {
	mu   sync.Mutex
	sent []*Message
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return ErrNoRecipient
	}
	logger.Warn("Email host not configured, skipping send",
		zap.String("recipient", msg.To),
		zap.String("subject", msg.Subject),
		zap.Bool("attachment", len(msg.Attachment) > 0),
	)

	n.mu.Lock()
	n.sent = append(n.sent, msg)
	n.mu.Unlock()
	return nil
}

// Sent returns the messages handed to the notifier
func (n *LogNotifier) Sent() []*Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Message, len(n.sent))
	copy(out, n.sent)
	return out
}
