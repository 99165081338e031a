package sink

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/Rasalas/msg-reader/pkgs/config"
	"github.com/Rasalas/msg-reader/pkgs/generate"
)

// SMTP delivers fixtures to an SMTP server over one connection that is
// opened on the first Put.
type SMTP struct {
	config    config.SMTPConfig
	tlsConfig *tls.Config
	client    *smtp.Client
}

// NewSMTP creates an SMTP sink. tlsConfig may be nil, in which case the
// server name is verified against Host.
func NewSMTP(cfg config.SMTPConfig, tlsConfig *tls.Config) *SMTP {
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: cfg.Host}
	}
	return &SMTP{config: cfg, tlsConfig: tlsConfig}
}

// Connect establishes a connection to the SMTP server
func (s *SMTP) Connect() error {
	var dialFn func(addr string, tlsConfig *tls.Config) (*smtp.Client, error)

	if s.config.SSL {
		dialFn = smtp.DialTLS
	} else if s.config.StartTLS {
		dialFn = smtp.DialStartTLS
	} else {
		dialFn = func(addr string, _ *tls.Config) (*smtp.Client, error) {
			return smtp.Dial(addr)
		}
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	client, err := dialFn(addr, s.tlsConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	// Authenticate
	if s.config.Password != "" {
		auth := sasl.NewPlainClient("", s.config.Username, s.config.Password)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	s.client = client
	return nil
}

// Put sends the raw fixture. The envelope sender is the message's From
// address; recipients are the configured override or the message's To and
// Cc addresses.
func (s *SMTP) Put(_ context.Context, f generate.Fixture) error {
	if f.Message == nil {
		return fmt.Errorf("no envelope for %s", f.Name)
	}
	if s.client == nil {
		if err := s.Connect(); err != nil {
			return err
		}
	}

	recipients := s.recipients(f)
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients for %s", f.Name)
	}

	if err := s.client.SendMail(f.Message.From.Email, recipients, bytes.NewReader(f.Raw)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *SMTP) recipients(f generate.Fixture) []string {
	if len(s.config.Recipients) > 0 {
		return s.config.Recipients
	}
	rcpts := make([]string, 0, len(f.Message.To)+len(f.Message.Cc))
	for _, addr := range f.Message.To {
		rcpts = append(rcpts, addr.Email)
	}
	for _, addr := range f.Message.Cc {
		rcpts = append(rcpts, addr.Email)
	}
	return rcpts
}

// Close closes the SMTP connection
func (s *SMTP) Close() error {
	if s.client != nil {
		err := s.client.Quit()
		s.client = nil
		return err
	}
	return nil
}

func (s *SMTP) Name() string { return "smtp" }
