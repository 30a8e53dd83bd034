package catalog

import "errors"

var (
	// ErrNotFound is the parent of every "nothing matches" error in this package.
	ErrNotFound = errors.New("not found")

	// ErrBarcodeNotFound means neither the store nor the provider knows the ISBN.
	ErrBarcodeNotFound = notFound("barcode not found")

	// ErrNotFoundInExternalAPI means neither the store nor the provider knows the API id.
	ErrNotFoundInExternalAPI = notFound("not found in external api")

	ErrEditionNotFound = notFound("edition not found")
	ErrSeriesNotFound  = notFound("series not found")
	ErrVolumeNotFound  = notFound("volume not found")

	ErrNotInCollection = notFound("volume not in collection")
	ErrNotInWishlist   = notFound("volume not in wishlist")

	// ErrInvalidVolumeNumber is returned for negative local volume numbers.
	ErrInvalidVolumeNumber = errors.New("invalid volume number")

	// ErrMissingKey is returned when neither an ISBN nor an API id was given.
	ErrMissingKey = errors.New("isbn or api id required")
)

type notFoundError struct {
	msg string
}

func notFound(msg string) error {
	return &notFoundError{msg: msg}
}

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Is(target error) bool {
	return target == ErrNotFound
}
