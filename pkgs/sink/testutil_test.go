package sink

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/Rasalas/msg-reader/pkgs/email"
	"github.com/Rasalas/msg-reader/pkgs/generate"
)

var testDate = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

// splitHostPort splits "host:port" into (host, int port).
func splitHostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatal(err)
	}
	return host, port
}

// testFixture builds a small plain-text fixture.
func testFixture(t *testing.T, name, messageID string) generate.Fixture {
	t.Helper()
	msg := &email.Message{
		From:      email.Address{Name: "Ada Lovelace", Email: "ada@example.com"},
		To:        []email.Address{{Name: "Charles Babbage", Email: "charles@example.com"}},
		Cc:        []email.Address{{Email: "alan@example.com"}},
		Subject:   "Test Subject " + name,
		Date:      testDate,
		MessageID: messageID,
		TextBody:  "Hello, World!",
	}
	buf, err := email.Build(msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	return generate.Fixture{Name: name, Scenario: generate.ScenarioBulk, Message: msg, Raw: buf.Bytes()}
}

// recordingSink remembers what it was given.
type recordingSink struct {
	name   string
	puts   []string
	closed bool
	putErr error
	err    error
}

func (s *recordingSink) Put(_ context.Context, f generate.Fixture) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts = append(s.puts, f.Name)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return s.err
}

func (s *recordingSink) Name() string { return s.name }

var errBoom = errors.New("boom")
