//go:build !unix

package local

import "os/exec"

// setProcessGroup is a no-op, exec.CommandContext already kills the process itself.
func setProcessGroup(cmd *exec.Cmd) {}
