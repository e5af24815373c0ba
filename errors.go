package contentfulsource

import (
	goerrors "github.com/goliatone/go-errors"

	"github.com/workstory/contentful-source/normalize"
)

// Errors surfaced by the normalization stages, re-exported so hosts can
// match on them without importing the internal packages.
var (
	ErrLocaleFallbackCycle   = normalize.ErrLocaleFallbackCycle
	ErrLocaleFallbackUnknown = normalize.ErrLocaleFallbackUnknown
	ErrDefaultLocaleRequired = normalize.ErrDefaultLocaleRequired
	ErrDuplicateID           = normalize.ErrDuplicateID
	ErrNodeWriterRequired    = normalize.ErrNodeWriterRequired
)

const (
	configurationFailedCode = "CONTENTFUL_CONFIGURATION_INVALID"
	pipelineFailedCode      = "CONTENTFUL_PIPELINE_FAILED"
)

// wrapConfigurationError marks locale/config failures as validation errors.
// They are fatal and carry no retry semantics.
func wrapConfigurationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid source configuration").
		WithTextCode(configurationFailedCode)
}

// wrapPipelineError marks failures raised while indexing or materializing a
// snapshot. These signal an internal consistency bug or a failing host
// store, never a recoverable input problem.
func wrapPipelineError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "normalization pipeline failed").
		WithTextCode(pipelineFailedCode)
}
