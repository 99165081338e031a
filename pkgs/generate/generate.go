// Package generate builds the mock message scenarios: the four fixed
// samples, random bulk mail and structural special cases.
package generate

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Rasalas/msg-reader/pkgs/assets"
	"github.com/Rasalas/msg-reader/pkgs/email"
	"github.com/Rasalas/msg-reader/pkgs/metrics"
)

// Scenario names, used as metric labels and in log fields.
const (
	ScenarioSamples = "samples"
	ScenarioBulk    = "bulk"
	ScenarioSpecial = "special"
)

// Fixture is one generated message, serialized and ready for a sink.
type Fixture struct {
	// Name is the file stem, e.g. "bulk_email_0001".
	Name     string
	Scenario string
	Message  *email.Message
	Raw      []byte
}

// MessageID returns the Message-ID header of the fixture.
func (f Fixture) MessageID() string {
	if f.Message == nil {
		return ""
	}
	return f.Message.MessageID
}

// Options configures a Generator. Zero fields get defaults: a time-seeded
// random source, time.Now, all assets enabled, no logging, no metrics.
type Options struct {
	Rand    *rand.Rand
	Now     func() time.Time
	Assets  *assets.Factory
	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// Generator produces fixtures. It is not safe for concurrent use; all
// randomness comes from a single source so that a seeded run is
// reproducible.
type Generator struct {
	rng     *rand.Rand
	now     func() time.Time
	ids     *email.IDSource
	assets  *assets.Factory
	log     *zap.Logger
	metrics *metrics.Recorder
}

// New creates a Generator.
func New(opts Options) *Generator {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Assets == nil {
		opts.Assets = assets.NewFactory(assets.DefaultOptions(), opts.Logger)
	}
	return &Generator{
		rng:     opts.Rand,
		now:     opts.Now,
		ids:     email.NewIDSource(opts.Rand),
		assets:  opts.Assets,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

// finish serializes msg and records it.
func (g *Generator) finish(scenario, name string, msg *email.Message) (Fixture, error) {
	buf, err := email.Build(msg, g.ids)
	if err != nil {
		return Fixture{}, fmt.Errorf("build %s: %w", name, err)
	}

	g.countParts(msg)
	g.metrics.Message(scenario, buf.Len())

	g.log.Debug("generated message",
		zap.String("scenario", scenario),
		zap.String("name", name),
		zap.String("message_id", msg.MessageID),
		zap.Int("size", buf.Len()))

	return Fixture{Name: name, Scenario: scenario, Message: msg, Raw: buf.Bytes()}, nil
}

// countParts records the parts of msg and of every message it forwards.
func (g *Generator) countParts(msg *email.Message) {
	for _, p := range msg.Inline {
		g.metrics.Attachment(kindOf(p.ContentType))
	}
	for _, p := range msg.Attachments {
		g.metrics.Attachment(kindOf(p.ContentType))
	}
	for _, fwd := range msg.Forwards {
		g.metrics.Attachment("rfc822")
		g.countParts(fwd)
	}
}

// optional turns an unavailable asset into a skipped attachment. Any other
// error is returned.
func (g *Generator) optional(kind string, err error) error {
	if errors.Is(err, assets.ErrUnavailable) {
		g.metrics.Omitted(kind)
		g.log.Debug("omitting optional asset", zap.String("kind", kind), zap.Error(err))
		return nil
	}
	return err
}

func kindOf(contentType string) string {
	switch contentType {
	case "application/pdf":
		return "pdf"
	case "image/png":
		return "png"
	case "image/svg+xml":
		return "logo"
	default:
		return "other"
	}
}
