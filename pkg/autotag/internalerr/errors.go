package internalerr

import "errors"

// Sentinel errors for the tagging engine
var (
	ErrArtifactLoad      = errors.New("artifact load failed")
	ErrArtifactNotLoaded = errors.New("artifact not loaded")
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	ErrUnknownAttribute  = errors.New("unknown attribute")
)

// Sentinel errors for the catalog
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("not the owner")
	ErrInvalidInput = errors.New("invalid input")
)
