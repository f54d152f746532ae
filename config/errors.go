package config

import "fmt"

// ConfigurationError reports a configuration file that is missing, unreadable
// or lacks a required key.
type ConfigurationError struct {
	Path    string
	Section string
	Key     string
	Err     error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("config %s: [%s] %s: %v", e.Path, e.Section, e.Key, e.Err)
	case e.Section != "":
		return fmt.Sprintf("config %s: [%s]: %v", e.Path, e.Section, e.Err)
	default:
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func newError(path, section, key string, err error) *ConfigurationError {
	return &ConfigurationError{Path: path, Section: section, Key: key, Err: err}
}
