package models

import (
	"strings"
	"time"
)

// TripNotePrefix marks a reading as generated from a trip entry rather than
// typed in by hand. Downstream code strips it for display and re-adds it on
// edit, so the prefix must survive round trips byte for byte.
const TripNotePrefix = "TRIP: "

// MileageReading is an absolute odometer value at a point in time, not a
// delta. Time is optional; a reading without a time sorts as midnight of its
// date.
type MileageReading struct {
	ID        string    `bson:"id" json:"id"`
	Date      string    `bson:"date" json:"date"`           // YYYY-MM-DD
	Time      string    `bson:"time,omitempty" json:"time,omitempty"` // HH:MM
	Mileage   float64   `bson:"mileage" json:"mileage"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// FromTrip reports whether the reading was produced by trip conversion.
func (r MileageReading) FromTrip() bool {
	return strings.HasPrefix(r.Note, TripNotePrefix)
}

// DisplayNote returns the note with the trip marker stripped.
func (r MileageReading) DisplayNote() string {
	return strings.TrimPrefix(r.Note, TripNotePrefix)
}
