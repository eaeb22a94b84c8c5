//go:build !windows

package main

import (
	"os/exec"
	"syscall"
)

// setDaemonSysProcAttr detaches the child into its own session so it
// survives the parent terminal closing
func setDaemonSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
