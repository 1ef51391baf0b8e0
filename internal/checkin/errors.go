package checkin

import "errors"

// Sentinel errors for the expected, recoverable outcomes of a single request.
// Handlers translate these into HTTP statuses; none of them are fatal.
var (
	// ErrDuplicate is returned when a (name, type) pair has already checked in.
	ErrDuplicate = errors.New("already checked in")
	// ErrInvalidType is returned when the participant type is neither member nor guest.
	ErrInvalidType = errors.New("invalid participant type")
	// ErrNotFound is returned for missing record indices, events, or reports.
	ErrNotFound = errors.New("not found")
	// ErrMalformed is returned for unparseable QR or check-in payloads.
	ErrMalformed = errors.New("malformed payload")
)
