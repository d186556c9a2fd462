package memory

import "errors"

// Error kinds surfaced to callers. Handlers map these to HTTP statuses
// with errors.Is; everything below the service degrades silently
// instead (metadata extraction and participant resolution never fail an
// ingest).
var (
	ErrDecode     = errors.New("upload is not valid utf-8 text")
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("generation service unavailable")
	ErrStorage    = errors.New("storage failure")
)
