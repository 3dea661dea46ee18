package main

import (
	"errors"

	"infinite-experiment/gazetteer/internal/importer"
	"infinite-experiment/gazetteer/internal/source"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK            = 0
	exitValidation    = 2
	exitUsage         = 3
	exitSourceMissing = 4
	exitDBWrite       = 5
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// classify assigns an exit code to an import error.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, source.ErrSourceNotFound):
		return withCode(exitSourceMissing, err)
	case importer.IsValidationError(err):
		return withCode(exitValidation, err)
	default:
		return withCode(exitDBWrite, err)
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}
