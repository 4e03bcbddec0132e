package domain

import (
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

var envNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Environment is an isolated runtime+package view.
type Environment struct {
	Name           string
	Root           string
	RuntimeVersion string
	Active         bool
}

// Session carries the active environment of the invoking shell.
// It is built once at the CLI boundary and threaded through every call.
type Session struct {
	ActiveEnv string
}

// NewSession returns a Session built from the given environment lookup.
func NewSession(getenv func(string) string) Session {
	return Session{ActiveEnv: strings.TrimSpace(getenv(ActiveEnvVar))}
}

// HasActive reports whether an environment is active.
func (s Session) HasActive() bool {
	return s.ActiveEnv != ""
}

// IsActive reports whether name is the active environment.
func (s Session) IsActive(name string) bool {
	return s.ActiveEnv != "" && s.ActiveEnv == name
}

// Activation describes how a shell enters an environment.
type Activation struct {
	Env     string
	ShimDir string
}

// ValidateEnvName checks that name is a filesystem-safe environment name.
func ValidateEnvName(name string) error {
	if name == "" || !envNamePattern.MatchString(name) || strings.HasPrefix(name, ".") {
		return zerr.With(zerr.Wrap(ErrInvalidEnvironmentName, "invalid environment name"), "env", name)
	}
	return nil
}
