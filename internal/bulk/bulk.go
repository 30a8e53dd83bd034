// Package bulk runs a single-item operation over a batch.
//
// AllOrNothing stops at the first failure; callers that need atomicity run it
// inside one store transaction so the failure rolls back the earlier items.
// BestEffort attempts every item and reports failures individually.
package bulk

import "fmt"

// ItemError identifies the failing position of an all-or-nothing batch.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// AllOrNothing applies op to items in order and returns the results.
// On the first error it stops and returns an *ItemError wrapping it.
func AllOrNothing[T, R any](items []T, op func(int, T) (R, error)) ([]R, error) {
	results := make([]R, 0, len(items))
	for i, item := range items {
		r, err := op(i, item)
		if err != nil {
			return nil, &ItemError{Index: i, Err: err}
		}
		results = append(results, r)
	}
	return results, nil
}

// BestEffort applies op to every item. Failures go to onError (which may be nil)
// and are left out of the returned slice; successes keep input order.
func BestEffort[T, R any](items []T, op func(int, T) (R, error), onError func(int, T, error)) []R {
	results := make([]R, 0, len(items))
	for i, item := range items {
		r, err := op(i, item)
		if err != nil {
			if onError != nil {
				onError(i, item, err)
			}
			continue
		}
		results = append(results, r)
	}
	return results
}
