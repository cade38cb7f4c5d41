package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"hyprecorder/internal/config"
	"hyprecorder/internal/desktop"
	"hyprecorder/internal/elapsed"
	"hyprecorder/internal/library"
	"hyprecorder/internal/logging"
	"hyprecorder/internal/recorder"
	"hyprecorder/internal/tui"
)

func main() {
	cmd := &cli.Command{
		Name:        config.AppName,
		Usage:       "Wayland screen recorder",
		Description: "drives wf-recorder from a terminal UI or headless",
		Commands: []*cli.Command{
			{
				Name:   "record",
				Usage:  "record without the UI until interrupted",
				Action: runRecord,
			},
			{
				Name:   "open",
				Usage:  "open the output directory in the file browser",
				Action: runOpen,
			},
			{
				Name:   "doctor",
				Usage:  "check the recorder setup and list stray capture processes",
				Action: runDoctor,
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "yaml config file",
				Sources: cli.EnvVars("HYPRECORDER_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "directory recordings are written to",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: runUI,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config, or the default
// locations, then applies command line overrides.
func loadConfig(c *cli.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDefaultPath()
	}
	if err != nil {
		return nil, err
	}

	if dir := c.String("output-dir"); dir != "" {
		cfg.SetOutputDir(dir)
	}
	return cfg, nil
}

// setup loads config and starts logging. extra receives log output next to
// the log file.
func setup(c *cli.Command, extra ...io.Writer) (*config.Config, io.Closer, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	closer, err := logging.Init(cfg.LogPath(), c.Bool("debug"), extra...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, closer, nil
}

func newManager(cfg *config.Config) *recorder.Manager {
	// Capture progress goes to the log file only, so it never mixes with
	// the TUI or the record readout
	capture := logging.FileComponent("wf-recorder")
	return recorder.NewManager(recorder.Options{
		OutputDir: cfg.OutputDir,
		Recorder:  cfg.Recorder,
		Launcher:  &recorder.ExecLauncher{Stdout: capture, Stderr: capture},
		Clock:     clockwork.NewRealClock(),
		Fs:        afero.NewOsFs(),
	})
}

func newNotifier(cfg *config.Config) desktop.Notifier {
	if !cfg.Notify {
		return desktop.NopNotifier{}
	}
	n, err := desktop.NewDBusNotifier(config.AppName)
	if err != nil {
		log.Warn().Err(err).Msg("desktop notifications unavailable")
		return desktop.NopNotifier{}
	}
	return n
}

func runUI(_ context.Context, c *cli.Command) error {
	cfg, closer, err := setup(c)
	if err != nil {
		return err
	}
	defer closer.Close()

	mgr := newManager(cfg)
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Error().Err(err).Msg("failed to stop recording on exit")
		}
	}()

	notifier := newNotifier(cfg)
	if n, ok := notifier.(io.Closer); ok {
		defer n.Close()
	}

	watcher, err := library.NewWatcher(cfg.OutputDir, afero.NewOsFs())
	if err != nil {
		log.Warn().Err(err).Msg("recording list will not update live")
		watcher = nil
	} else {
		watcher.Start()
		defer watcher.Stop()
	}

	log.Info().
		Str("output_dir", cfg.OutputDir).
		Str("recorder", cfg.Recorder.Binary).
		Msg("starting ui")

	p := tea.NewProgram(tui.NewModel(tui.ModelOptions{
		Manager:      mgr,
		Library:      watcher,
		Opener:       desktop.NewOpener(),
		Notifier:     notifier,
		Theme:        cfg.Theme,
		TickInterval: cfg.TickInterval,
	}), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func runRecord(ctx context.Context, c *cli.Command) error {
	cfg, closer, err := setup(c, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	if err != nil {
		return err
	}
	defer closer.Close()

	mgr := newManager(cfg)
	defer mgr.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := mgr.Start()
	if err != nil {
		return err
	}
	fmt.Printf("Recording to %s (ctrl+c to stop)\n", st.OutputPath)

	timer := elapsed.NewTimer(mgr)
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	// The ticker also ends the run if the capture process dies on its own
	go elapsed.Run(runCtx, clockwork.NewRealClock(), cfg.TickInterval, func(now time.Time) {
		if readout, ok := timer.Tick(now); ok {
			fmt.Printf("\r%s", readout)
			return
		}
		cancelRun()
	})

	<-runCtx.Done()
	fmt.Println()

	rec, err := mgr.Stop()
	if errors.Is(err, recorder.ErrNotActive) {
		return fmt.Errorf("capture process exited before it was stopped, partial output may be at %s", st.OutputPath)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Saved %s (%s)\n", rec.OutputPath, elapsed.Format(rec.Duration))
	return nil
}

func runOpen(ctx context.Context, c *cli.Command) error {
	cfg, closer, err := setup(c)
	if err != nil {
		return err
	}
	defer closer.Close()

	return desktop.NewOpener().OpenDir(ctx, cfg.OutputDir)
}

func runDoctor(ctx context.Context, c *cli.Command) error {
	cfg, closer, err := setup(c)
	if err != nil {
		return err
	}
	defer closer.Close()

	check := func(name string) bool {
		path, err := exec.LookPath(name)
		if err != nil {
			fmt.Printf("  ✗ %s not found in PATH\n", name)
			return false
		}
		fmt.Printf("  ✓ %s (%s)\n", name, path)
		return true
	}

	fmt.Println("Tools:")
	ok := check(cfg.Recorder.Binary)
	check(desktop.OpenCommand)

	session := os.Getenv("XDG_SESSION_TYPE")
	if session == "" {
		session = "unknown"
	}
	fmt.Printf("Session type: %s\n", session)
	if !desktop.IsWayland(os.Getenv) {
		fmt.Printf("  file browser will be opened with DISPLAY=%s\n", desktop.FallbackDisplay)
	}
	fmt.Printf("Output directory: %s\n", cfg.OutputDir)
	fmt.Printf("Log file: %s\n", cfg.LogPath())

	strays, err := recorder.FindStrays(ctx, cfg.Recorder.Binary)
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}
	if len(strays) == 0 {
		fmt.Println("No running capture processes")
	} else {
		fmt.Println("Running capture processes:")
		for _, s := range strays {
			fmt.Printf("  pid %d: %s\n", s.PID, s.Cmdline)
		}
	}

	if !ok {
		return fmt.Errorf("%s is required to record", cfg.Recorder.Binary)
	}
	return nil
}
