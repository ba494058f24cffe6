package trips

// ErrorKind identifies a trip validation failure.
type ErrorKind string

const (
	KindInvalidDistance  ErrorKind = "invalid_distance"
	KindInvalidTimestamp ErrorKind = "invalid_timestamp"
	KindInvalidTimeOrder ErrorKind = "invalid_time_order"
	KindNoteTooLong      ErrorKind = "note_too_long"
	KindTimeConflict     ErrorKind = "time_conflict"
)

// Error is a field-tagged validation failure. Every failure is detected
// before any mutation, so a rejected trip never leaves a partial write.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Details string
}

func (e *Error) Error() string {
	return e.Message
}
