// Package common defines the error taxonomy shared by the storage, catalog and
// repository layers. Callers should use errors.Is to match these values; the
// adapters wrap them with context using fmt.Errorf("...: %w", ...).
package common

import "errors"

var (
	// Caller input rejected before any storage or network access.
	ErrValidation = errors.New("validation error")

	// Local medium failures.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Transport failure reaching the remote document store.
	ErrNetwork = errors.New("network error")

	// Remote store reachable but the request was rejected (permissions,
	// missing collection).
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// Stored or fetched bytes could not be decoded.
	ErrMalformedData = errors.New("malformed data")
)
