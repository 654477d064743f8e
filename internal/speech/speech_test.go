package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandSynthesizer_Args(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   []string
	}{
		{"espeak", Config{Engine: "espeak", Rate: 120}, []string{"-s", "120", "HELLO"}},
		{"say", Config{Engine: "say", Rate: 120, Voice: "Alex"}, []string{"-r", "120", "-v", "Alex", "HELLO"}},
		{"say by path", Config{Engine: "/usr/bin/say", Rate: 90}, []string{"-r", "90", "HELLO"}},
		{"no rate", Config{Engine: "espeak"}, []string{"HELLO"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCommandSynthesizer(tt.config)
			assert.Equal(t, tt.want, s.args("HELLO"))
		})
	}
}

func writeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	path := filepath.Join(t.TempDir(), "fake-tts.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestCommandSynthesizer_Speak(t *testing.T) {
	out := filepath.Join(t.TempDir(), "spoken.txt")
	engine := writeEngine(t, `echo "$@" > `+out+"\n")

	s := NewCommandSynthesizer(Config{Engine: engine, Rate: 150})
	require.NoError(t, s.Speak(context.Background(), "HI THERE"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "-s 150 HI THERE", strings.TrimSpace(string(data)))
}

func TestCommandSynthesizer_Failure(t *testing.T) {
	engine := writeEngine(t, "echo 'no audio device' >&2\nexit 1\n")

	err := NewCommandSynthesizer(Config{Engine: engine}).Speak(context.Background(), "HI")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSynthesisFailure)
	assert.Contains(t, err.Error(), "no audio device")
}

func TestCommandSynthesizer_Timeout(t *testing.T) {
	engine := writeEngine(t, "sleep 5\n")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := NewCommandSynthesizer(Config{Engine: engine}).Speak(ctx, "HI")
	assert.ErrorIs(t, err, ErrSynthesisFailure)
	assert.Contains(t, err.Error(), "timed out")
}

func TestCommandSynthesizer_MissingEngine(t *testing.T) {
	err := NewCommandSynthesizer(Config{Engine: "/nonexistent/tts"}).Speak(context.Background(), "HI")
	assert.ErrorIs(t, err, ErrSynthesisFailure)
}

func TestDispatcher_Speak(t *testing.T) {
	synth := NewMockSynthesizer()
	synth.Block = make(chan struct{})
	d := NewDispatcher(synth, time.Second, zerolog.Nop())

	assert.Equal(t, StatusReady, d.Status())

	text := "HELLO "
	require.NoError(t, d.Speak(text))
	assert.Equal(t, StatusSpeaking, d.Status(), "Speak returns before synthesis finishes")

	close(synth.Block)
	d.Wait()

	assert.Equal(t, StatusReady, d.Status())
	assert.Equal(t, []string{"HELLO "}, synth.Spoken())
}

func TestDispatcher_Empty(t *testing.T) {
	synth := NewMockSynthesizer()
	d := NewDispatcher(synth, time.Second, zerolog.Nop())

	assert.ErrorIs(t, d.Speak("   "), ErrNothingToSpeak)
	assert.Equal(t, StatusEmpty, d.Status())

	d.Wait()
	assert.Empty(t, synth.Spoken())
}

func TestDispatcher_Failure(t *testing.T) {
	synth := NewMockSynthesizer()
	synth.SetError(errors.New("device busy"))
	d := NewDispatcher(synth, time.Second, zerolog.Nop())

	require.NoError(t, d.Speak("HI"))
	d.Wait()

	assert.True(t, strings.HasPrefix(d.Status(), "error: "))
	assert.Contains(t, d.Status(), "device busy")
}

func TestDispatcher_OnStatus(t *testing.T) {
	synth := NewMockSynthesizer()
	synth.SetError(errors.New("device busy"))
	d := NewDispatcher(synth, time.Second, zerolog.Nop())

	var mu sync.Mutex
	var seen []string
	d.OnStatus(func(status string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, status)
	})

	require.NoError(t, d.Speak("HI"))
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, StatusSpeaking, seen[0])
	assert.Equal(t, d.Status(), seen[1])
	assert.Contains(t, seen[1], "device busy")
}

func TestDispatcher_Timeout(t *testing.T) {
	synth := NewMockSynthesizer()
	synth.Block = make(chan struct{})
	defer close(synth.Block)

	d := NewDispatcher(synth, 50*time.Millisecond, zerolog.Nop())
	require.NoError(t, d.Speak("HI"))
	d.Wait()

	assert.Contains(t, d.Status(), "error: ")
}
