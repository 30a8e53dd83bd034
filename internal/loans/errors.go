package loans

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOwned means the user does not have the volume in their collection.
	ErrNotOwned = errors.New("volume not owned")

	// ErrAlreadyLoaned means the volume already has an active loan.
	ErrAlreadyLoaned = errors.New("volume already loaned")

	// ErrLoanNotFound means there is no active loan to return.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrBorrowerRequired is returned when the borrower name is blank.
	ErrBorrowerRequired = errors.New("borrower name required")
)

// AlreadyLoanedError carries the current borrower of a volume. It matches ErrAlreadyLoaned.
type AlreadyLoanedError struct {
	VolumeID uint
	Borrower string
}

func (e *AlreadyLoanedError) Error() string {
	if e.Borrower == "" {
		return fmt.Sprintf("volume %d already loaned", e.VolumeID)
	}
	return fmt.Sprintf("volume %d already loaned to %s", e.VolumeID, e.Borrower)
}

func (e *AlreadyLoanedError) Is(target error) bool {
	return target == ErrAlreadyLoaned
}
