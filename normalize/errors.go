package normalize

import (
	"errors"
	"fmt"
)

var (
	ErrLocaleFallbackCycle   = errors.New("normalize: locale fallback configuration contains a cycle")
	ErrLocaleFallbackUnknown = errors.New("normalize: locale fallback points at an unknown locale code")
	ErrDefaultLocaleRequired = errors.New("normalize: exactly one default locale is required")
	ErrDuplicateID           = errors.New("normalize: duplicate entry identity after sync merge")
	ErrNodeWriterRequired    = errors.New("normalize: node writer is required")
)

// ConfigurationError reports a malformed locale fallback graph. It is fatal:
// the upstream CMS is trusted not to produce one, but the resolver must not
// hang on bad input.
type ConfigurationError struct {
	LocaleCode   string
	FallbackCode string
	Reason       error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "normalize: invalid locale configuration"
	}
	reason := ErrLocaleFallbackCycle
	if e.Reason != nil {
		reason = e.Reason
	}
	if e.FallbackCode != "" {
		return fmt.Sprintf("%s: locale=%s fallback=%s", reason.Error(), e.LocaleCode, e.FallbackCode)
	}
	return fmt.Sprintf("%s: locale=%s", reason.Error(), e.LocaleCode)
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil || e.Reason == nil {
		return ErrLocaleFallbackCycle
	}
	return e.Reason
}

// DuplicateIDError signals that the same (content type, entry id) pair
// appeared twice while indexing the merged snapshot. It marks an internal
// consistency bug in the merge stage or upstream data, not a recoverable
// caller error.
type DuplicateIDError struct {
	ContentTypeID string
	EntryID       string
}

func (e *DuplicateIDError) Error() string {
	if e == nil {
		return ErrDuplicateID.Error()
	}
	return fmt.Sprintf("%s: contentType=%s id=%s", ErrDuplicateID.Error(), e.ContentTypeID, e.EntryID)
}

func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}
