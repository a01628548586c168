package tasks

import "errors"

var (
	// ErrFetch aborts a poll cycle before the novelty cache is touched.
	ErrFetch = errors.New("fetch failed")

	// ErrSubscriptions aborts a poll cycle when the active subscriptions
	// cannot be read. The cache is left as is so the delta is retried.
	ErrSubscriptions = errors.New("failed to load subscriptions")

	ErrClassificationSkip = errors.New("record skipped")
	ErrDelivery           = errors.New("delivery failed")
	ErrPollInProgress     = errors.New("poll cycle already in progress")
)
