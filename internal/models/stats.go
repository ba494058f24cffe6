package models

import "time"

// CalculatedStats is the derived budget picture at a reference date. It is
// recomputed on demand and never stored.
type CalculatedStats struct {
	CurrentMileage       float64        `json:"currentMileage"`
	BudgetedMileage      float64        `json:"budgetedMileage"`
	RemainingBudget      float64        `json:"remainingBudget"`
	CurrentRate          float64        `json:"currentRate"`
	ProjectedTotal       float64        `json:"projectedTotal"`
	ProjectedTotalTrend  float64        `json:"projectedTotalTrend"`
	IsOnTrack            bool           `json:"isOnTrack"`
	Variance             float64        `json:"variance"`
	PercentageUsed       float64        `json:"percentageUsed"`
	OptimalPercentage    float64        `json:"optimalPercentage"`
	DaysElapsed          int            `json:"daysElapsed"`
	DaysRemaining        int            `json:"daysRemaining"`
	TotalDays            int            `json:"totalDays"`
	DailyBudget          float64        `json:"dailyBudget"`
	RemainingDailyBudget float64        `json:"remainingDailyBudget"`
	DaysToOptimal        int            `json:"daysToOptimal"`
	MonthlyStats         []MonthlyStats `json:"monthlyStats,omitempty"`
}

// MonthlyStats is one calendar month of the lease, with its budget share and
// the actual (or projected) mileage spent in it.
type MonthlyStats struct {
	Month        string  `json:"month"`
	Year         int     `json:"year"`
	StartMileage float64 `json:"startMileage"`
	EndMileage   float64 `json:"endMileage"`
	Budget       float64 `json:"budget"`
	Actual       float64 `json:"actual"`
	Variance     float64 `json:"variance"`
	IsProjected  bool    `json:"isProjected"`
}

// WeeklyStats describes one Monday-to-Sunday week against its budget share.
type WeeklyStats struct {
	WeekStart            time.Time    `json:"weekStart"`
	WeekEnd              time.Time    `json:"weekEnd"`
	WeeklyBudget         float64      `json:"weeklyBudget"`
	UsedThisWeek         float64      `json:"usedThisWeek"`
	RemainingThisWeek    float64      `json:"remainingThisWeek"`
	DailyBudget          float64      `json:"dailyBudget"`
	IsCurrentWeek        bool         `json:"isCurrentWeek"`
	DaysIntoWeek         int          `json:"daysIntoWeek"`
	ProjectedWeeklyUsage float64      `json:"projectedWeeklyUsage"`
	IsOnTrack            bool         `json:"isOnTrack"`
	DailyUsage           []DailyUsage `json:"dailyUsage"`
}

// DailyUsage is a single day of a weekly breakdown.
type DailyUsage struct {
	Date     time.Time `json:"date"`
	Usage    float64   `json:"usage"`
	DayName  string    `json:"dayName"`
	IsToday  bool      `json:"isToday"`
	IsFuture bool      `json:"isFuture"`
}
