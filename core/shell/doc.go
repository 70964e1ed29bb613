// Package shell implements a small interactive command interpreter.
//
// A line goes through these steps:
//
//  1. The line is split into space separated tokens (Tokenize). There is no
//     quoting and no escaping.
//  2. The tokens are scanned once for a pipe or a single redirection and
//     turned into an execution Shape (Resolve).
//  3. Each command in the shape is either a builtin, run inside the shell, or
//     an external program located through $PATH.
//  4. External programs run in their own process group under a watchdog that
//     kills the group if it outlives the configured timeout.
//  5. The shell waits for every process it started before reading the next
//     line.
package shell
