package models

// ViewMode selects the time window of the chart: the whole lease or one of
// three 365-day yearly sub-windows.
type ViewMode string

const (
	ViewTotal ViewMode = "total"
	ViewYear1 ViewMode = "year1"
	ViewYear2 ViewMode = "year2"
	ViewYear3 ViewMode = "year3"
)

// IsValidViewMode checks if a view mode is valid.
func IsValidViewMode(mode ViewMode) bool {
	switch mode {
	case ViewTotal, ViewYear1, ViewYear2, ViewYear3:
		return true
	default:
		return false
	}
}

// ChartData holds the chart-ready time series. All series are aligned to the
// same axis-point array (Dates); consumers depend on that contract. Values
// are remaining kilometers, nil where a series has no point.
type ChartData struct {
	Labels             []string   `json:"labels"`
	Dates              []string   `json:"dates"`
	ActualData         []*float64 `json:"actualData"`
	PreliminaryData    []*float64 `json:"preliminaryData"`
	TrendData          []float64  `json:"trendData"`
	OptimalData        []float64  `json:"optimalData"`
	ProjectedData      []*float64 `json:"projectedData"`
	CurrentDateIndex   int        `json:"currentDateIndex"`
	SelectedDateIndex  *int       `json:"selectedDateIndex,omitempty"`
	ZeroCrossingIndex  *int       `json:"zeroCrossingIndex,omitempty"`
	ZeroCrossingDate   string     `json:"zeroCrossingDate,omitempty"`
	Year1CrossingIndex *int       `json:"year1CrossingIndex,omitempty"`
	Year1CrossingDate  string     `json:"year1CrossingDate,omitempty"`
	Year2CrossingIndex *int       `json:"year2CrossingIndex,omitempty"`
	Year2CrossingDate  string     `json:"year2CrossingDate,omitempty"`
	ViewMode           ViewMode   `json:"viewMode"`
	YearOffset         int        `json:"yearOffset"`
	TotalLimit         int        `json:"totalLimit"`
}
