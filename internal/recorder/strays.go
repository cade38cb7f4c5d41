package recorder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/process"
)

// Stray is a capture process running outside this Manager, usually left
// behind by an earlier session that never stopped it.
type Stray struct {
	PID     int32
	Cmdline string
}

// FindStrays lists running processes whose executable name matches binary.
// Processes that vanish or deny access while being inspected are skipped.
func FindStrays(ctx context.Context, binary string) ([]Stray, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	want := filepath.Base(binary)
	var strays []Stray
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name != want {
			continue
		}
		cmdline, _ := p.CmdlineWithContext(ctx)
		strays = append(strays, Stray{PID: p.Pid, Cmdline: cmdline})
	}
	return strays, nil
}
