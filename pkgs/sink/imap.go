package sink

import (
	"context"
	"fmt"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/Rasalas/msg-reader/pkgs/config"
	"github.com/Rasalas/msg-reader/pkgs/generate"
)

// IMAP appends fixtures to a mailbox, keeping the message date as the
// internal date so clients sort them as intended.
type IMAP struct {
	config config.IMAPConfig
	client *imapclient.Client
}

// NewIMAP creates an IMAP sink. An empty mailbox means INBOX.
func NewIMAP(cfg config.IMAPConfig) *IMAP {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	return &IMAP{config: cfg}
}

// Connect establishes a connection to the IMAP server
func (s *IMAP) Connect() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var client *imapclient.Client
	var err error

	if s.config.SSL {
		client, err = imapclient.DialTLS(addr, &imapclient.Options{})
	} else if s.config.StartTLS {
		client, err = imapclient.DialStartTLS(addr, &imapclient.Options{})
	} else {
		client, err = imapclient.DialInsecure(addr, &imapclient.Options{})
	}
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server %s: %w", addr, err)
	}

	// Authenticate
	if err := client.Login(s.config.Username, s.config.Password).Wait(); err != nil {
		client.Close()
		return fmt.Errorf("IMAP authentication failed: %w", err)
	}

	s.client = client
	return nil
}

func (s *IMAP) Put(_ context.Context, f generate.Fixture) error {
	if s.client == nil {
		if err := s.Connect(); err != nil {
			return err
		}
	}

	opts := &imap.AppendOptions{}
	if f.Message != nil && !f.Message.Date.IsZero() {
		opts.Time = f.Message.Date
	}

	cmd := s.client.Append(s.config.Mailbox, int64(len(f.Raw)), opts)
	if _, err := cmd.Write(f.Raw); err != nil {
		cmd.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if _, err := cmd.Wait(); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// Close logs out and closes the IMAP connection
func (s *IMAP) Close() error {
	if s.client != nil {
		s.client.Logout().Wait()
		err := s.client.Close()
		s.client = nil
		return err
	}
	return nil
}

func (s *IMAP) Name() string { return "imap" }
