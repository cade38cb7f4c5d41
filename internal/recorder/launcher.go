package recorder

import (
	"io"
	"os"
	"os/exec"
)

// Process is a running capture process
type Process interface {
	Pid() int
	Signal(sig os.Signal) error
	// Wait blocks until the process exits. Called exactly once per process.
	Wait() error
}

// Launcher spawns capture processes
type Launcher interface {
	Launch(name string, args ...string) (Process, error)
}

// ExecLauncher starts real processes with os/exec
type ExecLauncher struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Launch starts name in its own process group so terminal signals reach it
// only through Stop.
func (l *ExecLauncher) Launch(name string, args ...string) (Process, error) {
	cmd := exec.Command(name, args...) //nolint:gosec // binary and args come from local config
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	cmd.SysProcAttr = detachedAttr()

	if err := cmd.Start(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Manager.Start
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

//nolint:wrapcheck // callers inspect os.ErrProcessDone
func (p *execProcess) Signal(sig os.Signal) error { return p.cmd.Process.Signal(sig) }

//nolint:wrapcheck // exit status is informational
func (p *execProcess) Wait() error { return p.cmd.Wait() }
