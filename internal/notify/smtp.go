package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// ImplicitTLS dials with TLS from the first byte. Port 465 implies it.
	ImplicitTLS bool
	// AllowPlain falls back to an unencrypted session when the server does
	// not offer STARTTLS. Only for local relays.
	AllowPlain bool
	// TLSConfig overrides the default client TLS settings.
	TLSConfig *tls.Config
}

// SMTPMailer sends mail through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg    SMTPConfig
	from   *mail.Address
	now    func() time.Time
	logger *slog.Logger
}

// NewSMTPMailer creates an SMTPMailer. From defaults to Username and must be
// a valid address.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("smtp from address %q: %w", cfg.From, err)
	}
	if cfg.Port == 465 {
		cfg.ImplicitTLS = true
	}
	return &SMTPMailer{
		cfg:    cfg,
		from:   from,
		now:    time.Now,
		logger: slog.Default().With("component", "smtp_mailer"),
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := m.compose(&body, msg); err != nil {
		return fmt.Errorf("compose message: %w", err)
	}

	c, err := m.dial()
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer c.Close()

	if m.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", m.cfg.Username, m.cfg.Password)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.SendMail(m.from.Address, []string{msg.To}, &body); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return c.Quit()
}

func (m *SMTPMailer) tlsConfig() *tls.Config {
	if m.cfg.TLSConfig != nil {
		cfg := m.cfg.TLSConfig.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = m.cfg.Host
		}
		return cfg
	}
	return &tls.Config{ServerName: m.cfg.Host}
}

func (m *SMTPMailer) dial() (*smtp.Client, error) {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	if m.cfg.ImplicitTLS {
		return smtp.DialTLS(addr, m.tlsConfig())
	}

	c, err := smtp.DialStartTLS(addr, m.tlsConfig())
	if err == nil {
		return c, nil
	}
	if !m.cfg.AllowPlain {
		return nil, fmt.Errorf("starttls: %w", err)
	}
	m.logger.Warn("starttls unavailable, sending without encryption", "addr", addr, "error", err)
	return smtp.Dial(addr)
}

// compose writes msg as a multipart/alternative MIME message.
func (m *SMTPMailer) compose(w io.Writer, msg Message) error {
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("parse to: %w", err)
	}

	var h mail.Header
	h.SetDate(m.now())
	h.SetAddressList("From", []*mail.Address{m.from})
	h.SetAddressList("To", []*mail.Address{to})
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return err
	}

	iw, err := mail.CreateInlineWriter(w, h)
	if err != nil {
		return err
	}
	if err := writePart(iw, "text/plain", msg.Text); err != nil {
		return err
	}
	if err := writePart(iw, "text/html", msg.HTML); err != nil {
		return err
	}
	return iw.Close()
}

func writePart(iw *mail.InlineWriter, contentType, content string) error {
	var h mail.InlineHeader
	h.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	pw, err := iw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(pw, content); err != nil {
		pw.Close()
		return err
	}
	return pw.Close()
}
