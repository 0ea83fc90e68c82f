package core

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportErrorMatchesKindAndCause(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := pkgerrors.Wrap(NewImportError(ErrContainerFormat, "read chunk", cause), "import 'duck.glb'")

	assert.ErrorIs(t, err, ErrContainerFormat)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, ErrMissingData)

	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Equal(t, "read chunk", importErr.Op)
	assert.Equal(t, "import 'duck.glb': read chunk: invalid binary container: unexpected EOF", err.Error())

	bare := NewImportError(ErrMissingData, "accessor 3", nil)
	assert.ErrorIs(t, bare, ErrMissingData)
	assert.Equal(t, "accessor 3: missing scene data", bare.Error())
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		" WARN ":  WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
		"info":    InfoLevel,
		"verbose": InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestLoggingHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	previous := GetLevel()
	SetOutput(&buf)
	SetLevel(WarnLevel)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(previous)
	})

	LogInfo("hidden %d", 1)
	LogWarn("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")
	assert.Equal(t, WarnLevel, GetLevel())
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 63; i++ {
		m.Update(0.016)
	}
	assert.Equal(t, uint64(63), m.TotalFrames())
	assert.InDelta(t, 16.0, m.FrameTime(), 1e-6)
	assert.Equal(t, float64(62), m.FPS())

	fps, ms := m.Frame()
	assert.Equal(t, m.FPS(), fps)
	assert.Equal(t, m.FrameTime(), ms)
}

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Update()
	elapsed := c.Elapsed()
	assert.GreaterOrEqual(t, elapsed, 0.005)

	c.Stop()
	time.Sleep(2 * time.Millisecond)
	c.Update()
	assert.Equal(t, elapsed, c.Elapsed())
}

func TestNewIdentifierIsUnique(t *testing.T) {
	a, b := NewIdentifier(), NewIdentifier()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
