package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, fetchers and the resolution
// context return these (optionally wrapped) so callers can classify failures
// with errors.Is without depending on a concrete error type.
//
// - ErrNotFound: the entity does not exist (cache miss in stores, confirmed absence upstream)
// - ErrUnavailable: the upstream API or a backing store is temporarily unavailable
// - ErrRateLimited: the upstream API refused the request because of rate limits
// - ErrTimeout: the request did not complete in time
// - ErrBadData: the upstream payload could not be decoded
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrRateLimited = errors.New("rate limited")
	ErrTimeout     = errors.New("timeout")
	ErrBadData     = errors.New("bad data")
)
