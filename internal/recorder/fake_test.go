package recorder

import (
	"os"
	"sync"
)

type launchCall struct {
	name string
	args []string
}

// fakeProcess exits when finish is called, or on interrupt unless told to ignore it
type fakeProcess struct {
	pid             int
	ignoreInterrupt bool

	mu      sync.Mutex
	signals []os.Signal
	exit    chan error
	once    sync.Once
}

func newFakeProcess(pid int, ignoreInterrupt bool) *fakeProcess {
	return &fakeProcess{
		pid:             pid,
		ignoreInterrupt: ignoreInterrupt,
		exit:            make(chan error, 1),
	}
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) Signal(sig os.Signal) error {
	p.mu.Lock()
	p.signals = append(p.signals, sig)
	p.mu.Unlock()

	if sig == os.Interrupt && !p.ignoreInterrupt {
		p.finish(nil)
	}
	return nil
}

func (p *fakeProcess) Wait() error { return <-p.exit }

func (p *fakeProcess) finish(err error) {
	p.once.Do(func() { p.exit <- err })
}

func (p *fakeProcess) received() []os.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]os.Signal(nil), p.signals...)
}

type fakeLauncher struct {
	err             error
	ignoreInterrupt bool

	mu    sync.Mutex
	calls []launchCall
	procs []*fakeProcess
}

func (l *fakeLauncher) Launch(name string, args ...string) (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, launchCall{name: name, args: args})
	if l.err != nil {
		return nil, l.err
	}

	p := newFakeProcess(1000+len(l.procs), l.ignoreInterrupt)
	l.procs = append(l.procs, p)
	return p, nil
}

func (l *fakeLauncher) launched() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.procs)
}

func (l *fakeLauncher) last() *fakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.procs) == 0 {
		return nil
	}
	return l.procs[len(l.procs)-1]
}
