//go:build !windows

package narrate

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func hideWindow(*exec.Cmd) {}

// ownProcessGroup lets killTree reach players that fork helpers.
func ownProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
