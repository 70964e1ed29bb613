// Package logger is a standardized event logging framework for the shell.
//
// Every line the shell executes is recorded as a single JSON object so
// sessions can be audited and summarized after the fact.
package logger
