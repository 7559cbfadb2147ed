package probe

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

// FindByName scans the process table and returns the pids whose executable
// name matches name exactly. Processes that disappear mid-scan, or whose
// name cannot be read, are skipped.
func FindByName(name string) ([]int32, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("scan process table: %w", err)
	}
	var pids []int32
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue
		}
		if pname == name {
			pids = append(pids, p.Pid)
		}
	}
	return pids, nil
}

// NameRunning reports whether any process with the given executable name
// is currently running.
func NameRunning(name string) (bool, error) {
	pids, err := FindByName(name)
	if err != nil {
		return false, err
	}
	return len(pids) > 0, nil
}

// Preflight fails with a ConflictError when a server with the given name
// is already running. A run against a leftover instance would observe the
// bookings of whoever started it.
func Preflight(name string) error {
	pids, err := FindByName(name)
	if err != nil {
		return err
	}
	if len(pids) > 0 {
		return NewConflictError(name, pids)
	}
	return nil
}
