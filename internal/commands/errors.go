package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidation      = "KB_COMMAND_INVALID"
	codeCanceled        = "KB_COMMAND_CANCELED"
	codeDeadline        = "KB_COMMAND_DEADLINE"
	codeContext         = "KB_COMMAND_CONTEXT"
	codeExecutionFailed = "KB_COMMAND_FAILED"
)

// categorise leaves errors that already carry a category untouched so a
// render or source failure keeps the code its package assigned.
func categorise(err error, validation bool, message, code string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	if validation {
		return goerrors.Wrap(err, goerrors.CategoryValidation, message).WithTextCode(code)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
}

func wrapValidationError(err error) error {
	return categorise(err, true, "command message rejected", codeValidation)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return categorise(err, false, "command cancelled", codeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return categorise(err, false, "command deadline exceeded", codeDeadline)
	default:
		return categorise(err, false, "command context failed", codeContext)
	}
}

func wrapExecuteError(err error) error {
	return categorise(err, false, "command failed", codeExecutionFailed)
}
