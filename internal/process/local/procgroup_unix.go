//go:build unix

package local

import (
	"os/exec"
	"syscall"
)

// setProcessGroup makes the child the leader of a new process group and kills the
// whole group on cancellation, so whatever the command spawned dies with it.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative PID targets the process group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
