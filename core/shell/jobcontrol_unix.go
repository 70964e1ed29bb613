//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package shell

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// sysProcAttr places a child in the process group pgid, or in a new group it
// leads if pgid is 0. With a terminal the group is also made the foreground
// group so the job can read from it.
func sysProcAttr(pgid int, tty *os.File) *syscall.SysProcAttr {
	attr := &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}
	if tty != nil {
		attr.Foreground = true
		attr.Ctty = int(tty.Fd())
	}
	return attr
}

// killGroup sends SIGKILL to every process in the group.
func killGroup(pgid int) error {
	if pgid <= 0 {
		return errors.New("no process group")
	}
	return syscall.Kill(-pgid, syscall.SIGKILL)
}

// reclaimTerminal makes the shell's group the foreground group again.
// SIGTTOU is ignored for the call, otherwise the kernel stops a background
// group changing the foreground group.
func reclaimTerminal(tty *os.File) error {
	if tty == nil {
		return nil
	}

	signal.Ignore(syscall.SIGTTOU)
	defer signal.Reset(syscall.SIGTTOU)
	return unix.IoctlSetPointerInt(int(tty.Fd()), unix.TIOCSPGRP, unix.Getpgrp())
}

func exitStatus(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}

// signaledBy reports whether the process was terminated by sig.
func signaledBy(state *os.ProcessState, sig syscall.Signal) bool {
	if state == nil {
		return false
	}
	ws, ok := state.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && ws.Signal() == sig
}
