package tray

import (
	"testing"

	"github.com/ayusman/signscribe/internal/app"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeApp struct {
	enabled []bool
}

func (f *fakeApp) Snapshot() app.Snapshot                   { return app.Snapshot{} }
func (f *fakeApp) Subscribe() (<-chan app.Snapshot, func()) { return nil, func() {} }
func (f *fakeApp) ApplySuggestion(int) error                { return nil }
func (f *fakeApp) Clear()                                   {}
func (f *fakeApp) Speak() error                             { return nil }

func (f *fakeApp) SetEnabled(enabled bool) error {
	f.enabled = append(f.enabled, enabled)
	return nil
}

func TestTray_Toggle(t *testing.T) {
	fake := &fakeApp{}
	tr := New(fake, zerolog.Nop())

	// render before the menu exists only records state
	tr.render(app.Snapshot{Enabled: true})
	tr.handleToggle()

	tr.render(app.Snapshot{Enabled: false})
	tr.handleToggle()

	assert.Equal(t, []bool{false, true}, fake.enabled)
}

func TestTray_Open(t *testing.T) {
	tr := New(&fakeApp{}, zerolog.Nop())

	// no callback set
	tr.handleOpen()

	opened := 0
	tr.OnOpen(func() { opened++ })
	tr.handleOpen()
	assert.Equal(t, 1, opened)
}
