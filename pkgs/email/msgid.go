package email

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// IDSource produces Message-IDs and Content-IDs for one generation run.
// Message-IDs follow the format <random.seq@domain>; seq increases with
// every call, so IDs never repeat within a run.
type IDSource struct {
	rng *rand.Rand
	seq int
}

// NewIDSource creates an IDSource drawing randomness from rng.
func NewIDSource(rng *rand.Rand) *IDSource {
	return &IDSource{rng: rng}
}

// MessageID returns the next Message-ID using the domain extracted from
// fromEmail.
func (s *IDSource) MessageID(fromEmail string) string {
	s.seq++
	return fmt.Sprintf("<%d.%d@%s>", 1000000+s.rng.Intn(9000000), s.seq, domainOf(fromEmail))
}

// ContentID returns a random Content-ID (without angle brackets) in the
// sender's domain.
func (s *IDSource) ContentID(fromEmail string) string {
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		s.seq++
		return fmt.Sprintf("part%d@%s", s.seq, domainOf(fromEmail))
	}
	return id.String() + "@" + domainOf(fromEmail)
}

// Boundary returns a multipart boundary of 60 hex digits.
func (s *IDSource) Boundary() string {
	var b [30]byte
	s.rng.Read(b[:])
	return fmt.Sprintf("%x", b[:])
}

func domainOf(addr string) string {
	if idx := strings.LastIndex(addr, "@"); idx >= 0 && idx < len(addr)-1 {
		return addr[idx+1:]
	}
	return "localhost"
}
