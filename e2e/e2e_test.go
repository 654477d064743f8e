package e2e

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/signscribe/internal/app"
	"github.com/ayusman/signscribe/internal/capture"
	"github.com/ayusman/signscribe/internal/classify"
	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/internal/label"
	"github.com/ayusman/signscribe/internal/pipeline"
	"github.com/ayusman/signscribe/internal/server"
	"github.com/ayusman/signscribe/internal/speech"
	"github.com/ayusman/signscribe/internal/store"
	"github.com/ayusman/signscribe/internal/suggest"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

//go:embed testdata/words.txt
var wordList []byte

type harness struct {
	app    *app.App
	store  *store.Store
	det    *detector.MockDetector
	model  *classify.MockModel
	synth  *speech.MockSynthesizer
	speech *speech.Dispatcher
	ts     *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	_, err = s.Words().Import(bytes.NewReader(wordList))
	require.NoError(t, err)

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(40, 40, 40, 0), 480, 640, gocv.MatTypeCV8UC3)
	cam := capture.NewMockCamera(capture.DefaultConfig(), []*gocv.Mat{&frame}, true)
	require.NoError(t, cam.Open())

	det := detector.NewMockDetector()
	labels := label.Default()
	model := classify.NewMockModel(classify.OneHot(labels, label.Blank, 1, label.None))
	gate := capture.NewMotionGate(capture.DefaultGateConfig())

	p := pipeline.New(pipeline.DefaultConfig(), det, classify.NewAdapter(model, labels),
		suggest.NewEngine(s.Words(), zerolog.Nop()), gate, zerolog.Nop())

	synth := speech.NewMockSynthesizer()
	disp := speech.NewDispatcher(synth, time.Second, zerolog.Nop())

	a := app.New(app.Config{Store: s}, cam, p, disp, zerolog.Nop())
	ts := httptest.NewServer(server.New(server.Config{Store: s, App: a, Logger: zerolog.Nop()}))

	t.Cleanup(func() {
		ts.Close()
		disp.Wait()
		p.Close()
		gate.Close()
		frame.Close()
		s.Close()
	})

	return &harness{app: a, store: s, det: det, model: model, synth: synth, speech: disp, ts: ts}
}

// sign shows a hand classified as l for n frames.
func (h *harness) sign(t *testing.T, l label.Label, n int) {
	t.Helper()
	hand := detector.OpenPalmHand()
	h.det.SetHand(&hand)
	h.model.SetProbabilities(classify.OneHot(label.Default(), l, 0.97, label.None))
	for i := 0; i < n; i++ {
		require.NoError(t, h.app.Step())
	}
}

// rest takes the hand out of view for n frames.
func (h *harness) rest(t *testing.T, n int) {
	t.Helper()
	h.det.SetHand(nil)
	for i := 0; i < n; i++ {
		require.NoError(t, h.app.Step())
	}
}

func (h *harness) state(t *testing.T) app.Snapshot {
	t.Helper()
	resp, err := http.Get(h.ts.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap app.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func (h *harness) post(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Post(h.ts.URL+path, "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestE2E_SpellCorrectAndSpeak(t *testing.T) {
	h := newHarness(t)

	for _, l := range []label.Label{"H", "E", "L", "O"} {
		h.sign(t, l, 10)
	}

	snap := h.state(t)
	assert.Equal(t, "HELO", snap.Sentence)
	assert.Equal(t, "HELO", snap.Word)
	assert.Equal(t, "O", snap.Symbol)
	require.Equal(t, "hello", snap.Suggestions[0], "closest and most frequent correction first")

	assert.Equal(t, http.StatusOK, h.post(t, "/api/suggestions/0").StatusCode)
	snap = h.state(t)
	assert.Equal(t, "HELLO ", snap.Sentence)
	assert.True(t, snap.Suggestions.Empty())

	assert.Equal(t, http.StatusAccepted, h.post(t, "/api/speak").StatusCode)
	h.speech.Wait()
	assert.Equal(t, []string{"HELLO "}, h.synth.Spoken())
	assert.Equal(t, speech.StatusReady, h.state(t).Speech)

	resp, err := http.Get(h.ts.URL + "/api/transcripts")
	require.NoError(t, err)
	defer resp.Body.Close()

	var list struct {
		Transcripts []struct {
			Text      string `json:"text"`
			SessionID string `json:"session_id"`
		} `json:"transcripts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Transcripts, 1)
	assert.Equal(t, "HELLO ", list.Transcripts[0].Text)
	assert.Equal(t, snap.SessionID, list.Transcripts[0].SessionID)
}

func TestE2E_DoubleLettersNeedAPause(t *testing.T) {
	h := newHarness(t)

	h.sign(t, "L", 25)
	assert.Equal(t, "L", h.state(t).Sentence, "holding a letter commits it once")

	h.rest(t, 30)
	assert.Equal(t, pipeline.DisplayNoHand, h.state(t).Symbol)

	// the still test frame keeps the motion gate shut for up to MaxSkip
	// frames before the returning hand is detected
	h.sign(t, "L", 25)
	assert.Equal(t, "LL", h.state(t).Sentence, "a long enough pause allows a repeat")
}

func TestE2E_SpacesAndClear(t *testing.T) {
	h := newHarness(t)

	h.sign(t, "H", 10)
	h.sign(t, "I", 10)
	h.sign(t, label.Space, 10)
	h.sign(t, "E", 1)
	h.sign(t, label.Space, 10)

	snap := h.state(t)
	assert.Equal(t, "HI ", snap.Sentence, "a second space without a letter is ignored")
	assert.Equal(t, "", snap.Word)

	assert.Equal(t, http.StatusOK, h.post(t, "/api/clear").StatusCode)
	snap = h.state(t)
	assert.Equal(t, "", snap.Sentence)
	assert.Equal(t, pipeline.DisplayReady, snap.Symbol)

	assert.Equal(t, http.StatusUnprocessableEntity, h.post(t, "/api/speak").StatusCode)
	assert.Empty(t, h.synth.Spoken())
}

func TestE2E_DisableRecognition(t *testing.T) {
	h := newHarness(t)

	req, err := http.NewRequest(http.MethodPut, h.ts.URL+"/api/enabled", strings.NewReader(`{"enabled":false}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	h.sign(t, "A", 20)
	assert.Equal(t, "", h.state(t).Sentence)
	assert.Zero(t, h.det.Calls())

	assert.False(t, h.store.Settings().GetBool(store.SettingEnabled, true), "toggle is persisted")
}

func TestE2E_WebSocketFollowsFrames(t *testing.T) {
	h := newHarness(t)

	url := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snap app.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Zero(t, snap.Frames)

	h.sign(t, "W", 1)

	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, "W", snap.Symbol)
	assert.Equal(t, uint64(1), snap.Frames)
}
