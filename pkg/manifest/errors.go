package manifest

import (
	"errors"
	"fmt"
)

// Kind classifies a manifest load failure
type Kind string

const (
	KindNetwork    Kind = "network"
	KindParse      Kind = "parse"
	KindValidation Kind = "validation"
)

var (
	// ErrNetwork matches failures reaching the manifest or non-2xx responses
	ErrNetwork = errors.New("manifest network error")
	// ErrParse matches bodies that are not valid JSON
	ErrParse = errors.New("manifest parse error")
	// ErrValidation matches manifests without a non-empty list
	ErrValidation = errors.New("manifest validation error")
)

// LoadError describes why a manifest could not be loaded
type LoadError struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s error loading %s: %v", e.Kind, e.URL, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a LoadError against the sentinel of its kind
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrParse:
		return e.Kind == KindParse
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

func newError(kind Kind, url string, err error) *LoadError {
	return &LoadError{Kind: kind, URL: url, Err: err}
}
