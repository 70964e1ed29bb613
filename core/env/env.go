// Package env holds the environment the shell resolves and spawns commands
// with.
package env

import (
	"os"
	"strings"
	"sync"
	"syscall"
)

// Env represents a process environment.
type Env interface {
	// Setenv sets the value of the environment variable named by the key.
	// It returns an error, if any.
	Setenv(key, value string) error

	// Unsetenv unsets a single environment variable.
	Unsetenv(key string) error

	// LookupEnv retrieves the value of the environment variable named by the key.
	// If the variable is present in the environment the value (which may be
	// empty) is returned and the boolean is true. Otherwise the returned value
	// will be empty and the boolean will be false.
	LookupEnv(key string) (string, bool)

	// Getenv retrieves the value of the environment variable named by the key.
	// It returns the value, which will be empty if the variable is not present.
	Getenv(key string) string

	// Environ returns a copy of strings representing the environment, in the
	// form "key=value", in table order.
	Environ() []string
}

// OSEnv is the Env of the running process. Children spawned with its
// Environ() see every change made through it.
type OSEnv struct{}

var _ Env = OSEnv{}

// Setenv implements Env.Setenv.
func (OSEnv) Setenv(key, value string) error { return os.Setenv(key, value) }

// Unsetenv implements Env.Unsetenv.
func (OSEnv) Unsetenv(key string) error { return os.Unsetenv(key) }

// LookupEnv implements Env.LookupEnv.
func (OSEnv) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

// Getenv implements Env.Getenv.
func (OSEnv) Getenv(key string) string { return os.Getenv(key) }

// Environ implements Env.Environ.
func (OSEnv) Environ() []string { return os.Environ() }

// NewMapEnv creates a new environment backed by a map.
func NewMapEnv() *MapEnv {
	return &MapEnv{}
}

// NewMapEnvFromEnvList creates a new environment from "key=value" entries.
// Entries without "=" are set to the empty string, entries with an invalid
// name are dropped.
func NewMapEnvFromEnvList(environ []string) *MapEnv {
	out := &MapEnv{}

	for _, e := range environ {
		key, value, _ := strings.Cut(e, "=")
		_ = out.Setenv(key, value)
	}

	return out
}

// MapEnv implements an in-memory Env that remembers insertion order.
type MapEnv struct {
	rw   sync.RWMutex
	env  map[string]string
	keys []string
}

var _ Env = (*MapEnv)(nil)

// Unsetenv implements Env.Unsetenv.
func (m *MapEnv) Unsetenv(key string) error {
	m.rw.Lock()
	defer m.rw.Unlock()

	if _, ok := m.env[key]; !ok {
		return nil
	}
	delete(m.env, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Setenv implements Env.Setenv.
func (m *MapEnv) Setenv(key, value string) error {
	if key == "" || strings.ContainsAny(key, "=\x00") {
		return os.NewSyscallError("setenv", syscall.EINVAL)
	}

	m.rw.Lock()
	defer m.rw.Unlock()

	if m.env == nil {
		m.env = make(map[string]string)
	}
	if _, ok := m.env[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.env[key] = value
	return nil
}

// LookupEnv implements Env.LookupEnv.
func (m *MapEnv) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Getenv implements Env.Getenv.
func (m *MapEnv) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// Environ implements Env.Environ.
func (m *MapEnv) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	env := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		env = append(env, k+"="+m.env[k])
	}

	return env
}
