//go:build windows

package main

import (
	"os/exec"
	"syscall"
)

// setDaemonSysProcAttr detaches the child process from the parent console
func setDaemonSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | 0x00000008, // DETACHED_PROCESS
	}
}
