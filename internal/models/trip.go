package models

// TripInput is the transient payload of a trip submission. It is converted
// into one or two MileageReading records immediately and never persisted.
//
// Timestamp defaults applied during conversion:
//   - neither time given: end = now, start = now - 1 minute
//   - only start given:   end = start + 1 minute
//   - only end given:     start = end - 1 minute
//   - both given:         used as-is (end must be after start)
type TripInput struct {
	Distance  float64 `json:"distance"`            // kilometers, 1-2000
	StartTime string  `json:"startTime,omitempty"` // ISO 8601
	EndTime   string  `json:"endTime,omitempty"`   // ISO 8601
	Note      string  `json:"note,omitempty"`      // max 200 chars
}
