// Package config provides configuration loading and validation for errprofile.
package config

import (
	"regexp"
	"time"
)

// Config is the root configuration structure loaded from YAML.
// Every field is optional; command-line flags and arguments override it.
type Config struct {
	// SourceDir is the directory scanned recursively for log files.
	SourceDir string `yaml:"source_dir,omitempty"`

	// Output is the report file path.
	Output string `yaml:"output,omitempty"`

	// Encoding is the text encoding label of the log files (e.g. windows-1251, utf-8).
	Encoding string `yaml:"encoding,omitempty"`

	// ErrorMarker selects candidate error lines.
	ErrorMarker string `yaml:"error_marker,omitempty"`

	// LinePattern overrides the error line regex. It needs three capture
	// groups: hour, minute and type.
	LinePattern string `yaml:"line_pattern,omitempty"`

	// Workers limits concurrent scan tasks. 0 selects the default,
	// -1 starts one task per file without a limit.
	Workers int `yaml:"workers,omitempty"`

	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`

	// compiledLinePattern is populated during validation; nil means default.
	compiledLinePattern *regexp.Regexp
}

// CompiledLinePattern returns the compiled line pattern, or nil for the default.
func (c *Config) CompiledLinePattern() *regexp.Regexp {
	return c.compiledLinePattern
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnErrors fires when at least one error record was counted (default).
	WebhookTriggerOnErrors WebhookTrigger = "on_errors"
	// WebhookTriggerOnFailures fires when a file or line could not be processed.
	WebhookTriggerOnFailures WebhookTrigger = "on_failures"
	// WebhookTriggerAlways fires after every run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending run reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_errors" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
