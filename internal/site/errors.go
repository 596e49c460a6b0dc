package site

import "errors"

// Sentinel domain errors used to classify pipeline failures for retry
// semantics. They should always be wrapped with contextual information at
// the call site.
var (
	ErrDiscovery = errors.New("docenhance: discovery error")
	ErrEnhance   = errors.New("docenhance: enhance error")
	ErrAssets    = errors.New("docenhance: asset error")
	ErrFinalize  = errors.New("docenhance: finalize error")
)
