package column

import "errors"

var (
	// ErrCorruptBlock is returned when an encoded column block fails validation.
	ErrCorruptBlock = errors.New("column: corrupt block")
	// ErrChecksumMismatch is returned when the block checksum does not match.
	ErrChecksumMismatch = errors.New("column: checksum mismatch")
	// ErrUnknownCompression is returned for an unsupported compression id.
	ErrUnknownCompression = errors.New("column: unknown compression")
	// ErrColumnTooLarge is returned when a column exceeds 4 GiB of payload or 2^32-1 rows.
	ErrColumnTooLarge = errors.New("column: too large")
	// ErrRowOutOfRange is returned for a row index outside [0, Len).
	ErrRowOutOfRange = errors.New("column: row out of range")
)
