// Package worker runs long-lived Python helper processes that speak a
// length-prefixed request / JSON-line response protocol over stdio.
package worker

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrScriptNotFound is returned when the helper script cannot be located.
var ErrScriptNotFound = errors.New("worker script not found")

// DefaultIdleTimeout is how long an unused process is kept alive.
const DefaultIdleTimeout = 30 * time.Second

// Process is a lazily started helper process. Requests are serialized.
type Process struct {
	script      string
	python      string
	idleTimeout time.Duration
	logger      zerolog.Logger

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	started   bool
	idleTimer *time.Timer
}

// New creates a Process for the given script. The interpreter defaults to a
// virtual environment Python when one is found, otherwise python3.
func New(script, python string, logger zerolog.Logger) *Process {
	if python == "" {
		python = FindVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	return &Process{
		script:      script,
		python:      python,
		idleTimeout: DefaultIdleTimeout,
		logger:      logger.With().Str("script", filepath.Base(script)).Logger(),
	}
}

// Exchange writes one framed request and reads one newline-terminated response.
func (p *Process) Exchange(payload []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureStarted(); err != nil {
		return nil, err
	}

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(payload)))

	if _, err := p.stdin.Write(length); err != nil {
		p.kill()
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := p.stdin.Write(payload); err != nil {
		p.kill()
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := p.stdout.ReadBytes('\n')
	if err != nil {
		p.kill()
		return nil, fmt.Errorf("read response: %w", err)
	}

	p.resetIdleTimer()
	return line, nil
}

// Close shuts down the helper process.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown()
}

func (p *Process) ensureStarted() error {
	if p.started {
		return nil
	}

	if _, err := os.Stat(p.script); err != nil {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, p.script)
	}

	p.cmd = exec.Command(p.python, "-u", p.script)

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	p.cmd.Stderr = os.Stderr

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", filepath.Base(p.script), err)
	}

	p.stdin = stdin
	p.stdout = bufio.NewReader(stdout)
	p.started = true
	p.logger.Info().Str("python", p.python).Msg("worker started")

	return nil
}

// kill drops a process whose pipe broke so the next request restarts it.
func (p *Process) kill() {
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	if err := p.shutdown(); err != nil {
		p.logger.Debug().Err(err).Msg("worker exited")
	}
}

func (p *Process) shutdown() error {
	if !p.started {
		return nil
	}

	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}

	if p.stdin != nil {
		p.stdin.Close()
	}

	err := p.cmd.Wait()
	p.started = false
	p.cmd = nil
	p.stdin = nil
	p.stdout = nil

	return err
}

func (p *Process) resetIdleTimer() {
	if p.idleTimer != nil {
		p.idleTimer.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(p.idleTimeout, func() { p.idleExpired(t) })
	p.idleTimer = t
}

// idleExpired stops the process unless t was superseded. A timer that fired
// while an Exchange held the lock is stale once that Exchange re-arms.
func (p *Process) idleExpired(t *time.Timer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.idleTimer != t {
		return
	}
	if err := p.shutdown(); err != nil {
		p.logger.Debug().Err(err).Msg("idle worker exited")
	}
}

// FindScript returns the first existing candidate for name, searching the
// working directory, its parent, the executable directory and ~/.signscribe.
func FindScript(name string) string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", name),
		filepath.Join("..", "scripts", name),
		filepath.Join(execDir, "scripts", name),
		filepath.Join(os.Getenv("HOME"), ".signscribe", "scripts", name),
	}

	return firstExisting(candidates)
}

// FindVenvPython looks for a Python interpreter in a virtual environment.
func FindVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".signscribe/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}
