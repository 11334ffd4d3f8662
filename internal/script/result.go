// Package script runs automation scripts against a device session.
package script

import (
	"fmt"
	"strings"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Result is what a script returns when it finishes.
type Result struct {
	Status Status `yaml:"status" json:"status"`
	Note   string `yaml:"note,omitempty" json:"note,omitempty"`
}

// OK returns a successful result with an optional note.
func OK(note ...string) Result {
	return Result{Status: StatusOK, Note: strings.Join(note, " ")}
}

// Notef returns an error result with a formatted note.
func Notef(format string, args ...any) Result {
	return Result{Status: StatusError, Note: fmt.Sprintf(format, args...)}
}

// Fail turns err into an error result whose note is the error message.
func Fail(err error) Result {
	if err == nil {
		return Notef("failed")
	}
	return Notef("%s", err)
}

// Failed reports whether the result is not ok.
func (r Result) Failed() bool { return r.Status != StatusOK }
