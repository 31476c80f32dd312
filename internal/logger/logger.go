package logger

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// FieldService names the binary that wrote the entry.
	FieldService = "service"
	// FieldCandidateID is the structured log field key for the candidate id.
	FieldCandidateID = "candidate_id"
	// FieldSlot is the structured log field key for an identity document slot.
	FieldSlot = "slot"
)

// Options selects the encoding and verbosity of a logger.
type Options struct {
	Service string
	JSON    bool
	Debug   bool
}

// New builds a zap logger. JSON output uses the production encoder, console output the
// development one; both write RFC3339 timestamps to stdout and tag entries with the service.
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if opts.JSON {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.Development = false
	cfg.DisableStacktrace = !opts.Debug
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Debug {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	if opts.Service != "" {
		cfg.InitialFields = map[string]interface{}{FieldService: opts.Service}
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ForCandidate returns a logger carrying the candidate id. A nil logger becomes a no-op.
func ForCandidate(logger *zap.Logger, id uuid.UUID) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.With(zap.String(FieldCandidateID, id.String()))
}

// Preview collapses whitespace in a message to single spaces and keeps at most limit
// runes of it, marking a cut with "...".
func Preview(message string, limit int) string {
	if limit <= 0 {
		return ""
	}
	var b strings.Builder
	runes := 0
	space := false
	for _, r := range strings.TrimSpace(message) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			if runes == limit {
				return b.String() + "..."
			}
			b.WriteByte(' ')
			runes++
			space = false
		}
		if runes == limit {
			return b.String() + "..."
		}
		b.WriteRune(r)
		runes++
	}
	return b.String()
}
