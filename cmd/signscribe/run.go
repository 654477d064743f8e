package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/ayusman/signscribe/internal/app"
	"github.com/ayusman/signscribe/internal/capture"
	"github.com/ayusman/signscribe/internal/classify"
	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/internal/pipeline"
	"github.com/ayusman/signscribe/internal/server"
	"github.com/ayusman/signscribe/internal/speech"
	"github.com/ayusman/signscribe/internal/suggest"
	"github.com/ayusman/signscribe/internal/tray"
	"github.com/spf13/cobra"
)

var (
	runAddr string
	runTray bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start recognition, the display server and optionally the tray",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecognizer(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVar(&runAddr, "addr", "", "display server address (overrides server.addr)")
	runCmd.Flags().BoolVar(&runTray, "tray", false, "show the system tray menu")
	rootCmd.AddCommand(runCmd)
}

func runRecognizer(ctx context.Context) error {
	if runAddr != "" {
		cfg.Server.Addr = runAddr
	}

	det, err := detector.NewMediaPipeDetector(cfg.DetectorConfig(), logger)
	if err != nil {
		return fmt.Errorf("hand detector: %w", err)
	}
	defer det.Close()

	labels, err := classify.LoadLabels(cfg.Classifier.LabelsFile)
	if err != nil {
		return fmt.Errorf("classifier labels: %w", err)
	}

	model, err := classify.NewKerasModel(cfg.KerasConfig(), logger)
	if err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	adapter := classify.NewAdapter(model, labels)
	defer adapter.Close()

	var dict suggest.Dictionary
	if cfg.Dictionary.Enabled {
		dict = DB.Words()
		if n, err := DB.Words().Count(); err == nil && n == 0 {
			logger.Warn().Msg("dictionary is empty, import a word list with 'signscribe dict import'")
		}
	}

	var gate *capture.MotionGate
	if cfg.Motion.Enabled {
		gate = capture.NewMotionGate(cfg.GateConfig())
		defer gate.Close()
	}

	p := pipeline.New(cfg.PipelineConfig(), det, adapter, suggest.NewEngine(dict, logger), gate, logger)
	defer p.Close()

	speaker := speech.NewDispatcher(speech.NewCommandSynthesizer(cfg.SpeechConfig()), cfg.Speech.Timeout, logger)
	defer speaker.Wait()

	a := app.New(app.Config{Tick: cfg.Pipeline.Tick, Store: DB}, capture.NewCamera(cfg.CaptureConfig()), p, speaker, logger)
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	srv := server.New(server.Config{
		StaticDir: cfg.Server.StaticDir,
		Store:     DB,
		App:       a,
		Logger:    logger,
	}).HTTPServer(cfg.Server.Addr)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	logger.Info().Str("addr", cfg.Server.Addr).Msg("display server listening")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if runTray {
		t := tray.New(a, logger)
		t.OnOpen(func() { openBrowser("http://" + cfg.Server.Addr) })
		t.OnQuit(cancel)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		// systray needs the main goroutine on macOS
		t.Run()
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("display server: %w", err)
		}
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return srv.Shutdown(shutdownCtx)
}

func openBrowser(url string) {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	if err := exec.Command(name, url).Start(); err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("could not open browser")
	}
}
