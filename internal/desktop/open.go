package desktop

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/afero"
)

// OpenCommand is the file browser launcher
const OpenCommand = "xdg-open"

// FallbackDisplay is forced on non-Wayland sessions so the opener finds an X server
const FallbackDisplay = ":0"

// Starter starts a command without waiting for it to complete.
type Starter interface {
	// Start launches name with env (nil inherits the current environment).
	Start(ctx context.Context, env []string, name string, args ...string) error
}

// ExecStarter starts real processes and reaps them in the background
type ExecStarter struct{}

func (ExecStarter) Start(ctx context.Context, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env
	if err := cmd.Start(); err != nil {
		return err //nolint:wrapcheck // wrapped by OpenDir
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Opener shows directories and recordings with the desktop's default handlers
type Opener struct {
	Starter Starter
	Fs      afero.Fs
	Getenv  func(string) string
	Environ func() []string
}

func NewOpener() *Opener {
	return &Opener{
		Starter: ExecStarter{},
		Fs:      afero.NewOsFs(),
		Getenv:  os.Getenv,
		Environ: os.Environ,
	}
}

// IsWayland reports whether the graphical session is Wayland
func IsWayland(getenv func(string) string) bool {
	return strings.EqualFold(getenv("XDG_SESSION_TYPE"), "wayland")
}

// OpenDir creates dir if needed and opens it with xdg-open. The opener is
// not waited on.
func (o *Opener) OpenDir(ctx context.Context, dir string) error {
	if err := o.Fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return o.open(ctx, dir)
}

// OpenFile opens an existing file with its default application
func (o *Opener) OpenFile(ctx context.Context, path string) error {
	if _, err := o.Fs.Stat(path); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return o.open(ctx, path)
}

func (o *Opener) open(ctx context.Context, target string) error {
	var env []string
	if !IsWayland(o.Getenv) {
		env = append(o.Environ(), "DISPLAY="+FallbackDisplay)
	}

	if err := o.Starter.Start(ctx, env, OpenCommand, target); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}
