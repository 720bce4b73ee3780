package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkEvictsOldest(t *testing.T) {
	t.Parallel()

	s := NewSink(100)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 130; i++ {
		s.Append(fmt.Sprintf("line %d", i), base.Add(time.Duration(i)*time.Second))
	}

	entries := s.Entries()
	require.Len(t, entries, 100)
	assert.Equal(t, "line 30", entries[0].Message)
	assert.Equal(t, "line 129", entries[99].Message)
	assert.Equal(t, uint64(31), entries[0].ID)
	assert.Equal(t, uint64(130), entries[99].ID)
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].ID, entries[i-1].ID)
	}
}

func TestSinkPartial(t *testing.T) {
	t.Parallel()

	s := NewSink(3)
	s.Append("a", time.Now())
	s.Append("b", time.Now())
	var got []string
	for _, e := range s.Entries() {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestTeeHandler(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sink := NewSink(10)
	logger := slog.New(NewHandler(&out, FormatJSON, slog.LevelWarn, sink))

	logger.Debug("hidden everywhere")
	logger.Info("sink only", "n", 1)
	logger.With("component", "engine").WithGroup("req").Warn("both", "index", 7)

	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO sink only n=1", entries[0].Message)
	assert.Equal(t, "WARN both component=engine req.index=7", entries[1].Message)

	assert.NotContains(t, out.String(), "sink only")
	assert.Contains(t, out.String(), `"msg":"both"`)
}

func TestParse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatText, ParseFormat("TINT"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatAuto, ParseFormat("xml"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nope"))
}
