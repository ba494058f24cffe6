package models

import "time"

// LeaseInfo is the singleton lease contract record. Dates are calendar dates
// in YYYY-MM-DD form; TotalLimit is the kilometer allowance for the whole
// lease term.
type LeaseInfo struct {
	ID               string    `bson:"_id" json:"id"`
	StartDate        string    `bson:"start_date" json:"startDate"`
	EndDate          string    `bson:"end_date" json:"endDate"`
	AnnualLimit      int       `bson:"annual_limit" json:"annualLimit"`
	TotalLimit       int       `bson:"total_limit" json:"totalLimit"`
	OverageCostPerKm float64   `bson:"overage_cost_per_km,omitempty" json:"overageCostPerKm,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updatedAt"`
}

// DefaultLease returns the record seeded on first access.
func DefaultLease(now time.Time) LeaseInfo {
	return LeaseInfo{
		ID:          "default",
		StartDate:   "2025-07-09",
		EndDate:     "2028-07-09",
		AnnualLimit: 15000,
		TotalLimit:  45000,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
