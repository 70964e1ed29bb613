package shell

import "time"

// DefaultTimeout is how long a job may run before it is killed.
const DefaultTimeout = 10 * time.Second

const timeoutMessage = "\nProcess timeout exceeded. Terminating the process.\n"

// Watchdog is a single resettable deadline on the running job. It is owned by
// one goroutine and isn't safe for concurrent use.
type Watchdog struct {
	timeout time.Duration
	timer   *time.Timer
	pgid    int
}

// NewWatchdog creates a disarmed watchdog. A timeout <= 0 disables it.
func NewWatchdog(timeout time.Duration) *Watchdog {
	return &Watchdog{timeout: timeout}
}

// Arm starts the deadline for the process group pgid, replacing any previous
// deadline.
func (w *Watchdog) Arm(pgid int) {
	w.Disarm()
	if w.timeout <= 0 {
		return
	}
	w.pgid = pgid
	w.timer = time.NewTimer(w.timeout)
}

// Disarm cancels the deadline. It's safe to call on a disarmed watchdog.
func (w *Watchdog) Disarm() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pgid = 0
}

// Armed reports whether a deadline is pending.
func (w *Watchdog) Armed() bool {
	return w.timer != nil
}

// Group is the process group the deadline applies to, 0 if disarmed.
func (w *Watchdog) Group() int {
	return w.pgid
}

// C fires once the deadline passes. A disarmed watchdog returns a nil
// channel which blocks forever in a select.
func (w *Watchdog) C() <-chan time.Time {
	if w.timer == nil {
		return nil
	}
	return w.timer.C
}
