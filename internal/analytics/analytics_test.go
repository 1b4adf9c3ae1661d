package analytics

import (
	"testing"
	"time"

	"tokoledger/backend/internal/domain"
)

func localDate(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.Local)
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{12.344, 12.34},
		{1.237, 1.24},
		{0, 0},
		// 0.125 is exact in binary, so this pins half-away-from-zero.
		{0.125, 0.13},
		{-0.125, -0.13},
		{327.2727272727, 327.27},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFormat2AlwaysTwoDecimals(t *testing.T) {
	if got := Format2(1800); got != "1800.00" {
		t.Fatalf("Format2(1800) = %q, want \"1800.00\"", got)
	}
	if got := Format2(0); got != "0.00" {
		t.Fatalf("Format2(0) = %q, want \"0.00\"", got)
	}
	if got := Format2(12.5); got != "12.50" {
		t.Fatalf("Format2(12.5) = %q, want \"12.50\"", got)
	}
}

func TestWeekStartMidweek(t *testing.T) {
	// 2024-03-13 is a Wednesday; its week starts Monday 2024-03-11.
	got := WeekStart(localDate(2024, time.March, 13, 15))
	want := localDate(2024, time.March, 11, 0)
	if !got.Equal(want) {
		t.Fatalf("WeekStart = %v, want %v", got, want)
	}
}

func TestWeekStartSundayBelongsToPreviousMonday(t *testing.T) {
	// 2024-03-17 is a Sunday; it belongs to the week of Monday 2024-03-11.
	got := WeekStart(localDate(2024, time.March, 17, 9))
	want := localDate(2024, time.March, 11, 0)
	if !got.Equal(want) {
		t.Fatalf("WeekStart = %v, want %v", got, want)
	}
}

func TestWeekStartOnMonday(t *testing.T) {
	got := WeekStart(localDate(2024, time.March, 11, 23))
	want := localDate(2024, time.March, 11, 0)
	if !got.Equal(want) {
		t.Fatalf("WeekStart = %v, want %v", got, want)
	}
}

func TestComputeStockValuation(t *testing.T) {
	purchases := []domain.Purchase{
		{Quantity: 100, TotalCost: 5000, SellingPricePerItem: 70},
	}
	sales := []domain.Sale{
		{Quantity: 30, SellingPricePerItem: 60, TotalAmount: 1800},
	}

	stock := ComputeStock(purchases, sales)
	if stock.TotalBought != 100 || stock.TotalSold != 30 || stock.Remaining != 70 {
		t.Fatalf("unexpected quantities: %+v", stock)
	}
	if stock.AvgCostPerItem != 50 {
		t.Fatalf("AvgCostPerItem = %v, want 50", stock.AvgCostPerItem)
	}
	if stock.CostValue != 3500 {
		t.Fatalf("CostValue = %v, want 3500", stock.CostValue)
	}
	if stock.AvgSellingPrice != 70 {
		t.Fatalf("AvgSellingPrice = %v, want 70", stock.AvgSellingPrice)
	}
	if stock.SellingValue != 4900 {
		t.Fatalf("SellingValue = %v, want 4900", stock.SellingValue)
	}
}

// The average selling price is the plain mean over purchase records, not a
// quantity-weighted average. A tiny lot moves it as much as a huge one.
func TestComputeStockAvgSellingPriceUnweighted(t *testing.T) {
	purchases := []domain.Purchase{
		{Quantity: 1000, TotalCost: 1000, SellingPricePerItem: 10},
		{Quantity: 1, TotalCost: 1, SellingPricePerItem: 30},
	}
	stock := ComputeStock(purchases, nil)
	if stock.AvgSellingPrice != 20 {
		t.Fatalf("AvgSellingPrice = %v, want unweighted mean 20", stock.AvgSellingPrice)
	}
}

func TestComputeStockEmpty(t *testing.T) {
	stock := ComputeStock(nil, nil)
	if stock.Remaining != 0 || stock.AvgCostPerItem != 0 || stock.AvgSellingPrice != 0 {
		t.Fatalf("expected zero stock, got %+v", stock)
	}
}

func TestBuildWeeklyReportClosureWeighting(t *testing.T) {
	// Week of Monday 2024-03-11: one sale, one full closure, one partial.
	sales := []domain.Sale{
		{Date: localDate(2024, time.March, 13, 10), Quantity: 3, TotalAmount: 1800},
	}
	closures := []domain.ShopClosure{
		{Date: localDate(2024, time.March, 12, 0), Reason: domain.ReasonHoliday, IsFullDay: true},
		{Date: localDate(2024, time.March, 14, 0), Reason: domain.ReasonMaintenance, IsFullDay: false, ClosedHours: 4},
	}

	report := BuildWeeklyReport(sales, closures)
	if len(report.Data) != 1 {
		t.Fatalf("expected 1 week, got %d", len(report.Data))
	}
	week := report.Data[0]
	if week.WeekStart != "2024-03-11" {
		t.Fatalf("WeekStart = %q", week.WeekStart)
	}
	if week.ClosedDays != 1.5 {
		t.Fatalf("ClosedDays = %v, want 1.5", week.ClosedDays)
	}
	if week.OpenDays != 5.5 {
		t.Fatalf("OpenDays = %v, want 5.5", week.OpenDays)
	}
	if week.TotalRevenue != "1800.00" {
		t.Fatalf("TotalRevenue = %q, want \"1800.00\"", week.TotalRevenue)
	}
	// 1800 / 5.5 open days.
	if week.AverageRevenuePerOpenDay != "327.27" {
		t.Fatalf("AverageRevenuePerOpenDay = %q, want \"327.27\"", week.AverageRevenuePerOpenDay)
	}
}

func TestBuildWeeklyReportClosureOnlyWeek(t *testing.T) {
	closures := []domain.ShopClosure{
		{Date: localDate(2024, time.March, 20, 0), Reason: domain.ReasonLeave, IsFullDay: true},
	}
	report := BuildWeeklyReport(nil, closures)
	if len(report.Data) != 1 {
		t.Fatalf("a closure without sales must still create its week bucket")
	}
	if report.Data[0].TotalRevenue != "0.00" {
		t.Fatalf("TotalRevenue = %q, want \"0.00\"", report.Data[0].TotalRevenue)
	}
	if report.Data[0].ClosedDays != 1 {
		t.Fatalf("ClosedDays = %v, want 1", report.Data[0].ClosedDays)
	}
}

func TestBuildWeeklyReportSortedAscending(t *testing.T) {
	sales := []domain.Sale{
		{Date: localDate(2024, time.March, 20, 10), TotalAmount: 100, Quantity: 1},
		{Date: localDate(2024, time.March, 5, 10), TotalAmount: 200, Quantity: 2},
	}
	report := BuildWeeklyReport(sales, nil)
	if len(report.Data) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(report.Data))
	}
	if report.Data[0].WeekStart != "2024-03-04" || report.Data[1].WeekStart != "2024-03-18" {
		t.Fatalf("weeks out of order: %q, %q", report.Data[0].WeekStart, report.Data[1].WeekStart)
	}
	if report.Summary.TotalWeeks != 2 {
		t.Fatalf("TotalWeeks = %d", report.Summary.TotalWeeks)
	}
	if report.Summary.AverageWeeklyRevenue != "150.00" {
		t.Fatalf("AverageWeeklyRevenue = %q", report.Summary.AverageWeeklyRevenue)
	}
}

func TestBuildDailyReportExhaustiveDays(t *testing.T) {
	start := localDate(2024, time.January, 1, 0)
	end := localDate(2024, time.January, 3, 0)

	report := BuildDailyReport(nil, nil, start, end)
	if len(report.Data) != 3 {
		t.Fatalf("expected 3 day buckets, got %d", len(report.Data))
	}
	for _, bucket := range report.Data {
		if bucket.TotalRevenue != 0 || bucket.TransactionCount != 0 {
			t.Fatalf("expected zero bucket for %s", bucket.Date)
		}
	}
	if report.Data[0].Date != "2024-01-01" || report.Data[2].Date != "2024-01-03" {
		t.Fatalf("unexpected range: %s .. %s", report.Data[0].Date, report.Data[2].Date)
	}
	if report.Data[0].DayOfWeek != "Monday" {
		t.Fatalf("2024-01-01 is a Monday, got %s", report.Data[0].DayOfWeek)
	}
	if report.Summary.OpenDays != 3 || report.Summary.ClosedDays != 0 {
		t.Fatalf("summary days: %+v", report.Summary)
	}
}

func TestBuildDailyReportAttachesClosure(t *testing.T) {
	start := localDate(2024, time.January, 1, 0)
	end := localDate(2024, time.January, 2, 0)
	sales := []domain.Sale{
		{Date: localDate(2024, time.January, 1, 14), Quantity: 2, TotalAmount: 500},
	}
	closures := []domain.ShopClosure{
		{Date: localDate(2024, time.January, 2, 0), Reason: domain.ReasonSickLeave, Description: "flu", IsFullDay: true},
	}

	report := BuildDailyReport(sales, closures, start, end)
	if report.Data[0].TotalRevenue != 500 {
		t.Fatalf("day 1 revenue = %v", report.Data[0].TotalRevenue)
	}
	day2 := report.Data[1]
	if !day2.IsClosed || day2.ClosureInfo == nil {
		t.Fatalf("day 2 should carry closure info")
	}
	if day2.ClosureInfo.Reason != domain.ReasonSickLeave {
		t.Fatalf("closure reason = %q", day2.ClosureInfo.Reason)
	}
	if report.Summary.ClosedDays != 1 || report.Summary.OpenDays != 1 {
		t.Fatalf("summary days: %+v", report.Summary)
	}
}

func TestBuildDailyReportPartialClosureWeight(t *testing.T) {
	start := localDate(2024, time.January, 1, 0)
	end := localDate(2024, time.January, 2, 0)
	closures := []domain.ShopClosure{
		{Date: localDate(2024, time.January, 1, 0), Reason: domain.ReasonOther, IsFullDay: false, ClosedHours: 3},
	}
	report := BuildDailyReport(nil, closures, start, end)
	if report.Summary.ClosedDays != 0.5 {
		t.Fatalf("ClosedDays = %v, want 0.5", report.Summary.ClosedDays)
	}
	if report.Summary.OpenDays != 1.5 {
		t.Fatalf("OpenDays = %v, want 1.5", report.Summary.OpenDays)
	}
}

func TestBuildDayOfWeekReportOpenCountFullDayOnly(t *testing.T) {
	// Two full weeks: Monday 2024-01-01 through Sunday 2024-01-14.
	start := localDate(2024, time.January, 1, 0)
	end := localDate(2024, time.January, 14, 0)

	closures := []domain.ShopClosure{
		// Full-day Monday closure reduces Monday openCount.
		{Date: localDate(2024, time.January, 8, 0), Reason: domain.ReasonHoliday, IsFullDay: true},
		// Partial Tuesday closure must NOT reduce Tuesday openCount.
		{Date: localDate(2024, time.January, 2, 0), Reason: domain.ReasonOther, IsFullDay: false, ClosedHours: 5},
	}
	sales := []domain.Sale{
		{Date: localDate(2024, time.January, 1, 11), Quantity: 1, TotalAmount: 300},
	}

	report := BuildDayOfWeekReport(sales, closures, start, end)
	if len(report.Data) != 7 {
		t.Fatalf("expected 7 day buckets, got %d", len(report.Data))
	}

	byName := make(map[string]domain.DayOfWeekBucket, 7)
	for _, bucket := range report.Data {
		byName[bucket.DayName] = bucket
	}

	monday := byName["Monday"]
	if monday.TotalOccurrences != 2 || monday.OpenCount != 1 {
		t.Fatalf("Monday occurrences=%d open=%d, want 2/1", monday.TotalOccurrences, monday.OpenCount)
	}
	// 300 revenue over one open Monday.
	if monday.AveragePerOpenDay != "300.00" {
		t.Fatalf("Monday AveragePerOpenDay = %q", monday.AveragePerOpenDay)
	}

	tuesday := byName["Tuesday"]
	if tuesday.TotalOccurrences != 2 || tuesday.OpenCount != 2 {
		t.Fatalf("Tuesday occurrences=%d open=%d, want 2/2 (partial closure keeps it open)", tuesday.TotalOccurrences, tuesday.OpenCount)
	}
}

func TestBuildDayOfWeekReportOrderStartsSunday(t *testing.T) {
	start := localDate(2024, time.January, 1, 0)
	end := localDate(2024, time.January, 7, 0)
	report := BuildDayOfWeekReport(nil, nil, start, end)
	if report.Data[0].DayName != "Sunday" || report.Data[6].DayName != "Saturday" {
		t.Fatalf("day order wrong: %s .. %s", report.Data[0].DayName, report.Data[6].DayName)
	}
}

func TestBuildDayOfWeekReportBestAndWorst(t *testing.T) {
	start := localDate(2024, time.January, 1, 0)
	end := localDate(2024, time.January, 14, 0)
	sales := []domain.Sale{
		{Date: localDate(2024, time.January, 1, 10), Quantity: 1, TotalAmount: 900}, // Monday
		{Date: localDate(2024, time.January, 3, 10), Quantity: 1, TotalAmount: 100}, // Wednesday
		{Date: localDate(2024, time.January, 5, 10), Quantity: 1, TotalAmount: 400}, // Friday
	}

	report := BuildDayOfWeekReport(sales, nil, start, end)
	if report.Summary.BestDay.Name != "Monday" {
		t.Fatalf("BestDay = %s, want Monday", report.Summary.BestDay.Name)
	}
	if report.Summary.BestDay.Revenue != "900.00" {
		t.Fatalf("BestDay revenue = %q", report.Summary.BestDay.Revenue)
	}
	// Worst is the lowest day with revenue, not a zero day.
	if report.Summary.WorstDay.Name != "Wednesday" {
		t.Fatalf("WorstDay = %s, want Wednesday", report.Summary.WorstDay.Name)
	}
}

func TestBuildDayOfWeekReportAllZeroWorstDay(t *testing.T) {
	start := localDate(2024, time.January, 1, 0)
	end := localDate(2024, time.January, 7, 0)
	report := BuildDayOfWeekReport(nil, nil, start, end)
	if report.Summary.WorstDay.Revenue != "0.00" {
		t.Fatalf("WorstDay revenue = %q, want \"0.00\"", report.Summary.WorstDay.Revenue)
	}
}

func TestCalendarLookupMatchesLocalDay(t *testing.T) {
	closure := domain.ShopClosure{
		Date:      localDate(2024, time.May, 5, 0),
		Reason:    domain.ReasonEmergency,
		IsFullDay: true,
	}
	cal := NewCalendar([]domain.ShopClosure{closure})

	if _, ok := cal.Lookup(localDate(2024, time.May, 5, 18)); !ok {
		t.Fatalf("lookup should match any time within the closure day")
	}
	if _, ok := cal.Lookup(localDate(2024, time.May, 6, 0)); ok {
		t.Fatalf("lookup must not match the next day")
	}
}

func TestClosedWeight(t *testing.T) {
	full := domain.ShopClosure{IsFullDay: true}
	partial := domain.ShopClosure{IsFullDay: false, ClosedHours: 6}
	if ClosedWeight(full) != 1.0 {
		t.Fatalf("full-day weight = %v", ClosedWeight(full))
	}
	if ClosedWeight(partial) != 0.5 {
		t.Fatalf("partial weight = %v", ClosedWeight(partial))
	}
}
