//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package shell

import (
	"errors"
	"os"
	"syscall"
)

var errNoJobControl = errors.New("process groups are not supported on this platform")

func sysProcAttr(pgid int, tty *os.File) *syscall.SysProcAttr {
	return nil
}

func killGroup(pgid int) error {
	return errNoJobControl
}

func reclaimTerminal(tty *os.File) error {
	return nil
}

func exitStatus(state *os.ProcessState) int {
	return state.ExitCode()
}

func signaledBy(state *os.ProcessState, sig syscall.Signal) bool {
	return false
}
