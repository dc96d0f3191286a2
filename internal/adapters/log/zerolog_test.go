package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/lockstep/internal/ports"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapterWithLogger(zerolog.New(&buf))

	adapter.Info("session closed",
		ports.SessionID(42),
		ports.String("remote", "127.0.0.1:5000"),
		ports.Int("exchanges", 5),
		ports.Int64("bytes", 1<<20),
		ports.Duration("elapsed", 2*time.Second),
		ports.Err(errors.New("boom")),
	)

	out := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"message":"session closed"`,
		`"remote":"127.0.0.1:5000"`,
		`"session":42`,
		`"exchanges":5`,
		`"bytes":1048576`,
		`"error":"boom"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestZerologAdapter_DisabledLevel(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	adapter.Debug("dropped", ports.String("k", "v"))
	adapter.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	adapter.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}
