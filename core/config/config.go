package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	AppName           = "minish"
)

type Configuration struct {
	configFs afero.Fs

	Prompt          string `json:"prompt" validate:"required"`
	Timeout         string `json:"timeout" validate:"required,duration"`
	MaxArgs         int    `json:"max_args" validate:"gte=2,lte=4096"`
	Color           string `json:"color" validate:"oneof=always auto never"`
	HistoryFile     string `json:"history_file"`
	AuditLog        string `json:"audit_log"`
	MetricsTextfile string `json:"metrics_textfile"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})
	if err := validate.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d >= 0
	}); err != nil {
		return err
	}

	return validate.Struct(c)
}

// ParsedTimeout returns the watchdog timeout, zero means no timeout.
func (c *Configuration) ParsedTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewOsFs()
	}
	return c.configFs
}

func (c *Configuration) openAppend(name string) (afero.File, error) {
	fs := c.fs()
	if err := fs.MkdirAll(filepath.Dir(name), 0700); err != nil {
		return nil, err
	}
	return fs.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// OpenAuditLog opens the audit log in an append only state. It returns
// (nil, nil) if the audit log is disabled.
func (c *Configuration) OpenAuditLog() (afero.File, error) {
	if c.AuditLog == "" {
		return nil, nil
	}
	fd, err := c.openAppend(c.AuditLog)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return fd, nil
}

// ErrAuditLogDisabled is returned when reading the audit log while it's
// turned off.
var ErrAuditLogDisabled = errors.New("audit_log is not set in the configuration")

// ReadAuditLog opens the audit log for reading.
func (c *Configuration) ReadAuditLog() (afero.File, error) {
	if c.AuditLog == "" {
		return nil, ErrAuditLogDisabled
	}
	return c.fs().Open(c.AuditLog)
}

// ResolveColor reports whether output should be colorized given whether the
// destination is a terminal.
func (c *Configuration) ResolveColor(isTerminal bool) bool {
	switch c.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return isTerminal
	}
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built-in configuration.
func Default() *Configuration {
	return defaultConfig()
}
