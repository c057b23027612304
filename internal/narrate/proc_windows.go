//go:build windows

package narrate

import (
	"os/exec"
	"strconv"
	"syscall"

	"golang.org/x/sys/windows"
)

func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true, CreationFlags: windows.CREATE_NO_WINDOW}
}

func ownProcessGroup(cmd *exec.Cmd) { hideWindow(cmd) }

// killTree uses taskkill so PowerShell's children go too.
func killTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	tk := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(cmd.Process.Pid))
	hideWindow(tk)
	if err := tk.Run(); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
