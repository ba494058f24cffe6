package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/jlindqvist/leasetrack/internal/models"
)

// Generator builds the spreadsheet export of the lease budget picture.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate produces a workbook with a summary sheet and the month-by-month
// breakdown.
func (g *Generator) Generate(lease models.LeaseInfo, stats models.CalculatedStats) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, lease, stats); err != nil {
		return nil, err
	}

	monthlySheet := "Monthly"
	if _, err := file.NewSheet(monthlySheet); err != nil {
		return nil, err
	}
	if err := g.writeMonthly(file, monthlySheet, stats.MonthlyStats); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, lease models.LeaseInfo, stats models.CalculatedStats) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Lease start")
	set("B1", lease.StartDate)
	set("A2", "Lease end")
	set("B2", lease.EndDate)
	set("A3", "Total limit, km")
	set("B3", lease.TotalLimit)
	set("A4", "Annual limit, km")
	set("B4", lease.AnnualLimit)

	set("A6", "Current mileage, km")
	set("B6", stats.CurrentMileage)
	set("A7", "Budgeted mileage, km")
	set("B7", stats.BudgetedMileage)
	set("A8", "Variance, km")
	set("B8", stats.Variance)
	set("A9", "Remaining budget, km")
	set("B9", stats.RemainingBudget)
	set("A10", "Projected total, km")
	set("B10", stats.ProjectedTotal)
	set("A11", "On track")
	set("B11", stats.IsOnTrack)
	set("A12", "Days elapsed")
	set("B12", stats.DaysElapsed)
	set("A13", "Days remaining")
	set("B13", stats.DaysRemaining)
	set("A14", "Daily budget, km")
	set("B14", math.Round(stats.DailyBudget*10)/10)
	set("A15", "Required daily rate, km")
	set("B15", math.Round(stats.RemainingDailyBudget*10)/10)

	if lease.OverageCostPerKm > 0 && stats.ProjectedTotal > float64(lease.TotalLimit) {
		overage := stats.ProjectedTotal - float64(lease.TotalLimit)
		set("A17", "Projected overage, km")
		set("B17", overage)
		set("A18", "Projected overage cost")
		set("B18", math.Round(overage*lease.OverageCostPerKm*100)/100)
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 16)
	return nil
}

func (g *Generator) writeMonthly(file *excelize.File, sheet string, monthly []models.MonthlyStats) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Month", "Year", "Start km", "End km", "Budget km", "Actual km", "Variance km", "Projected"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for i, m := range monthly {
		row := i + 2
		set(fmt.Sprintf("A%d", row), m.Month)
		set(fmt.Sprintf("B%d", row), m.Year)
		set(fmt.Sprintf("C%d", row), m.StartMileage)
		set(fmt.Sprintf("D%d", row), m.EndMileage)
		set(fmt.Sprintf("E%d", row), m.Budget)
		set(fmt.Sprintf("F%d", row), m.Actual)
		set(fmt.Sprintf("G%d", row), m.Variance)
		set(fmt.Sprintf("H%d", row), m.IsProjected)
	}

	_ = file.SetColWidth(sheet, "A", "A", 14)
	_ = file.SetColWidth(sheet, "B", "H", 12)
	return nil
}
