package shell

import (
	"os"
	"os/signal"
)

const interruptMessagef = "\nSignal %d received. Type 'exit' to close the shell.\n"

// signalBridge turns asynchronous signals into channel receives so they are
// handled by the shell's own goroutine.
type signalBridge struct {
	c chan os.Signal
}

func newSignalBridge(sigs ...os.Signal) *signalBridge {
	b := &signalBridge{c: make(chan os.Signal, 1)}
	if len(sigs) > 0 {
		signal.Notify(b.c, sigs...)
	}
	return b
}

func (b *signalBridge) C() <-chan os.Signal {
	return b.c
}

func (b *signalBridge) Stop() {
	signal.Stop(b.c)
}
