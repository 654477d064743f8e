// Package tray provides the system tray menu for signscribe.
package tray

import (
	"fmt"
	"sync"

	"github.com/ayusman/signscribe/internal/app"
	"github.com/ayusman/signscribe/internal/suggest"
	"github.com/getlantern/systray"
	"github.com/rs/zerolog"
)

// Controller is the part of the application the tray drives.
type Controller interface {
	Snapshot() app.Snapshot
	Subscribe() (<-chan app.Snapshot, func())
	ApplySuggestion(i int) error
	Clear()
	Speak() error
	SetEnabled(enabled bool) error
}

// Tray mirrors the display snapshot into a menu and forwards clicks.
type Tray struct {
	app    Controller
	logger zerolog.Logger

	onOpen  func()
	onQuit  func()
	enabled bool
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuSymbol      *systray.MenuItem
	menuSentence    *systray.MenuItem
	menuSpeech      *systray.MenuItem
	menuSuggestions [suggest.Slots]*systray.MenuItem
	menuToggle      *systray.MenuItem
}

// New creates a new Tray over app.
func New(app Controller, logger zerolog.Logger) *Tray {
	return &Tray{
		app:    app,
		logger: logger.With().Str("component", "tray").Logger(),
	}
}

// OnOpen sets the callback for the "Open Display" menu item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("signscribe")
	systray.SetTooltip("signscribe fingerspelling")

	t.menuSymbol = systray.AddMenuItem("Symbol: Ready", "Current symbol")
	t.menuSymbol.Disable()
	t.menuSentence = systray.AddMenuItem("Sentence: ", "Sentence so far")
	t.menuSentence.Disable()
	t.menuSpeech = systray.AddMenuItem("Speech: Ready", "Speech status")
	t.menuSpeech.Disable()
	systray.AddSeparator()

	for i := range t.menuSuggestions {
		t.menuSuggestions[i] = systray.AddMenuItem("", "Replace the current word")
		t.menuSuggestions[i].Hide()
	}
	systray.AddSeparator()

	menuSpeak := systray.AddMenuItem("Speak", "Speak the sentence")
	menuClear := systray.AddMenuItem("Clear", "Clear the sentence")
	t.menuToggle = systray.AddMenuItem("● Enabled", "Toggle recognition")
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Display...", "Open the display in a browser")
	menuQuit := systray.AddMenuItem("Quit", "Quit signscribe")

	t.render(t.app.Snapshot())

	updates, cancel := t.app.Subscribe()
	go func() {
		defer cancel()
		for snap := range updates {
			t.render(snap)
		}
	}()

	for i, item := range t.menuSuggestions {
		go func(slot int, item *systray.MenuItem) {
			for range item.ClickedCh {
				if err := t.app.ApplySuggestion(slot); err != nil {
					t.logger.Debug().Err(err).Int("slot", slot).Msg("suggestion not applied")
				}
			}
		}(i, item)
	}

	go func() {
		for {
			select {
			case <-menuSpeak.ClickedCh:
				if err := t.app.Speak(); err != nil {
					t.logger.Debug().Err(err).Msg("speak refused")
				}
			case <-menuClear.ClickedCh:
				t.app.Clear()
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// render copies a snapshot into the menu.
func (t *Tray) render(snap app.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = snap.Enabled
	if t.menuSymbol == nil {
		return
	}

	title := snap.Symbol
	if snap.Word != "" {
		title = fmt.Sprintf("%s  %s", snap.Symbol, snap.Word)
	}
	systray.SetTitle(title)

	t.menuSymbol.SetTitle("Symbol: " + snap.Symbol)
	t.menuSentence.SetTitle("Sentence: " + snap.Sentence)
	t.menuSpeech.SetTitle("Speech: " + snap.Speech)

	for i, item := range t.menuSuggestions {
		if s := snap.Suggestions[i]; s != "" {
			item.SetTitle(fmt.Sprintf("%d. %s", i+1, s))
			item.Show()
		} else {
			item.Hide()
		}
	}

	if snap.Enabled {
		t.menuToggle.SetTitle("● Enabled")
	} else {
		t.menuToggle.SetTitle("○ Disabled")
	}
}

func (t *Tray) handleToggle() {
	t.mu.RLock()
	enabled := !t.enabled
	t.mu.RUnlock()

	// the menu follows the snapshot published by SetEnabled
	if err := t.app.SetEnabled(enabled); err != nil {
		t.logger.Warn().Err(err).Msg("failed to save recognition toggle")
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}
