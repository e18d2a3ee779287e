package persistence

import "errors"

// Sentinel errors returned by repository implementations. Callers compare
// with errors.Is and translate them into domain errors at the service
// boundary.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")

	// ErrDuplicate indicates a uniqueness constraint was violated, such as
	// an email address or session token that is already stored.
	ErrDuplicate = errors.New("persistence: duplicate record")

	// ErrConstraintViolation indicates a record failed a storage-level
	// integrity check, such as a missing required column.
	ErrConstraintViolation = errors.New("persistence: constraint violation")

	// ErrForeignKeyViolation indicates a record references a row that does
	// not exist, such as a reservation whose owner was never created.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)
