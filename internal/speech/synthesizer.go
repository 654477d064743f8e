// Package speech reads finished sentences aloud without blocking the
// recognition loop.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"
)

// ErrSynthesisFailure wraps any failure of the speech engine.
var ErrSynthesisFailure = errors.New("speech synthesis failed")

// Synthesizer speaks text, blocking until done or ctx ends.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// Config configures the command synthesizer.
type Config struct {
	// Engine is say, espeak or an absolute path to either.
	Engine string
	Voice  string
	// Rate is in words per minute.
	Rate    int
	Timeout time.Duration
}

// DefaultConfig returns the platform engine at 120 words per minute.
func DefaultConfig() Config {
	return Config{
		Engine:  DefaultEngine(),
		Rate:    120,
		Timeout: 30 * time.Second,
	}
}

// DefaultEngine returns say on macOS and espeak elsewhere.
func DefaultEngine() string {
	if runtime.GOOS == "darwin" {
		return "say"
	}
	return "espeak"
}

// CommandSynthesizer runs a text-to-speech command line tool.
type CommandSynthesizer struct {
	config Config
}

// NewCommandSynthesizer creates a synthesizer for the configured engine.
func NewCommandSynthesizer(config Config) *CommandSynthesizer {
	if config.Engine == "" {
		config.Engine = DefaultEngine()
	}
	return &CommandSynthesizer{config: config}
}

// Speak implements Synthesizer.
func (s *CommandSynthesizer) Speak(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, s.config.Engine, s.args(text)...)

	cmd.WaitDelay = time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: timed out", ErrSynthesisFailure)
	}

	if err != nil {
		if msg := stderr.String(); msg != "" {
			return fmt.Errorf("%w: %v, stderr: %s", ErrSynthesisFailure, err, msg)
		}
		return fmt.Errorf("%w: %v", ErrSynthesisFailure, err)
	}

	return nil
}

// args builds the command line. say and espeak use different rate flags.
func (s *CommandSynthesizer) args(text string) []string {
	var args []string

	rateFlag := "-s"
	if isSay(s.config.Engine) {
		rateFlag = "-r"
	}
	if s.config.Rate > 0 {
		args = append(args, rateFlag, strconv.Itoa(s.config.Rate))
	}
	if s.config.Voice != "" {
		args = append(args, "-v", s.config.Voice)
	}

	return append(args, text)
}

func isSay(engine string) bool {
	return filepath.Base(engine) == "say"
}
