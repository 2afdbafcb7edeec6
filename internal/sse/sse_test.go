package sse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanner_SkipsNonDataLines(t *testing.T) {
	body := "event: message\n\ndata: {\"a\":1}\n\n: keepalive comment\ndata: [DONE]\n\n"
	s := NewScanner(strings.NewReader(body))

	f, ok := s.Next()
	require.True(t, ok)
	require.Equal(t, `{"a":1}`, f.Payload)
	require.Equal(t, `data: {"a":1}`, f.Raw)
	require.False(t, f.Done)

	f, ok = s.Next()
	require.True(t, ok)
	require.True(t, f.Done)

	_, ok = s.Next()
	require.False(t, ok)
	require.NoError(t, s.Err())
}

func TestScanner_ExhaustedWithoutSentinel(t *testing.T) {
	s := NewScanner(strings.NewReader("data: {\"a\":1}\n"))

	_, ok := s.Next()
	require.True(t, ok)

	_, ok = s.Next()
	require.False(t, ok)
	require.NoError(t, s.Err())
}

func TestScanner_PrefixRequiresSpace(t *testing.T) {
	// "data:" without the trailing space is not the frame marker the proxy
	// emits; such lines are skipped rather than half-parsed.
	s := NewScanner(strings.NewReader("data:{\"a\":1}\ndata: [DONE]\n"))

	f, ok := s.Next()
	require.True(t, ok)
	require.True(t, f.Done)
}
