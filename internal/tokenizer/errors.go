package tokenizer

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceLoad is matched by every failure to read or parse a
	// vocabulary or merges resource.
	ErrResourceLoad = errors.New("resource load failed")
	// ErrResourceFormat marks a resource that was read but is not well formed.
	ErrResourceFormat = errors.New("malformed resource")
	// ErrTokenization marks an encode/decode consistency failure between the
	// vocabulary and the merge table.
	ErrTokenization = errors.New("tokenization failed")
)

// ResourceError describes a failed vocabulary or merges load.
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() []error {
	return []error{ErrResourceLoad, e.Err}
}

func formatError(resource, format string, args ...any) error {
	return &ResourceError{
		Resource: resource,
		Err:      fmt.Errorf("%w: "+format, append([]any{ErrResourceFormat}, args...)...),
	}
}

// TokenizationError reports a subword with no vocabulary entry, or an id
// with no token.
type TokenizationError struct {
	Chunk   string
	Subword string
	ID      int
}

func (e *TokenizationError) Error() string {
	if e.Subword != "" {
		return fmt.Sprintf("subword %q of chunk %q not in vocabulary", e.Subword, e.Chunk)
	}
	return fmt.Sprintf("token id out of range: %d", e.ID)
}

func (e *TokenizationError) Unwrap() error {
	return ErrTokenization
}
