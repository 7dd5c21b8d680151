package render

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrUnknownNode reports a node value outside the content model.
	ErrUnknownNode = errors.New("render: unknown node")
	// ErrLazyProducer reports a deferred producer that failed or panicked.
	ErrLazyProducer = errors.New("render: lazy producer failed")
	// ErrNilDocument reports a nil KB in the root set or in a link or embed.
	ErrNilDocument = errors.New("render: nil document")
	// ErrInvalidOptions reports render options that fail validation.
	ErrInvalidOptions = errors.New("render: invalid options")
)

const (
	codeContractViolation = "RENDER_CONTRACT_VIOLATION"
	codeLazyFailed        = "RENDER_LAZY_FAILED"
	codeOptionsInvalid    = "RENDER_OPTIONS_INVALID"
)

func contractViolation(sentinel error, detail string) error {
	return goerrors.Wrap(fmt.Errorf("%w: %s", sentinel, detail), goerrors.CategoryValidation, "render contract violation").
		WithTextCode(codeContractViolation)
}

func lazyFailure(title string, err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, ErrLazyProducer) {
		err = fmt.Errorf("%w in %q", err, title)
	} else {
		err = fmt.Errorf("%w in %q: %w", ErrLazyProducer, title, err)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "lazy content production failed").
		WithTextCode(codeLazyFailed)
}

func invalidOptions(err error) error {
	return goerrors.Wrap(fmt.Errorf("%w: %w", ErrInvalidOptions, err), goerrors.CategoryValidation, "render options validation failed").
		WithTextCode(codeOptionsInvalid)
}
