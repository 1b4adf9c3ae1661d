package analytics

import (
	"sort"
	"time"

	"tokoledger/backend/internal/domain"
)

// WeekStart returns the Monday of the week containing t, truncated to
// local midnight. Sunday belongs to the week started six days earlier.
func WeekStart(t time.Time) time.Time {
	t = t.Local()
	weekday := int(t.Weekday())
	offset := 1 - weekday
	if weekday == 0 {
		offset = -6
	}
	d := t.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// Truncate a timestamp to local midnight.
func dayStart(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type weekAccum struct {
	revenue    float64
	quantity   int
	count      int
	closedDays float64
}

// BuildWeeklyReport groups sales into Monday-keyed weekly buckets and
// merges closure weighting. Buckets exist only for weeks containing at
// least one sale or one closure; empty weeks are absent (unlike the daily
// report, which is exhaustive).
func BuildWeeklyReport(sales []domain.Sale, closures []domain.ShopClosure) domain.WeeklyAnalyticsResponse {
	weeks := make(map[string]*weekAccum)

	accum := func(key string) *weekAccum {
		w, ok := weeks[key]
		if !ok {
			w = &weekAccum{}
			weeks[key] = w
		}
		return w
	}

	for _, sale := range sales {
		w := accum(DayKey(WeekStart(sale.Date)))
		w.revenue += sale.TotalAmount
		w.quantity += sale.Quantity
		w.count++
	}
	for _, closure := range closures {
		w := accum(DayKey(WeekStart(closure.Date)))
		w.closedDays += ClosedWeight(closure)
	}

	keys := make([]string, 0, len(weeks))
	for key := range weeks {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var totalRevenue float64
	var totalTransactions int

	data := make([]domain.WeeklyBucket, 0, len(keys))
	for _, key := range keys {
		w := weeks[key]
		monday, _ := time.ParseInLocation("2006-01-02", key, time.Local)
		openDays := 7 - w.closedDays

		avgPerOpenDay := 0.0
		if openDays > 0 {
			avgPerOpenDay = w.revenue / openDays
		}
		avgPerTx := 0.0
		if w.count > 0 {
			avgPerTx = w.revenue / float64(w.count)
		}

		data = append(data, domain.WeeklyBucket{
			WeekStart:                key,
			WeekLabel:                monday.Format("Jan 2") + " - " + monday.AddDate(0, 0, 6).Format("Jan 2"),
			TotalRevenue:             Format2(w.revenue),
			TotalQuantity:            w.quantity,
			TransactionCount:         w.count,
			ClosedDays:               w.closedDays,
			OpenDays:                 openDays,
			AverageRevenuePerOpenDay: Format2(avgPerOpenDay),
			AveragePerTransaction:    Format2(avgPerTx),
		})

		totalRevenue += w.revenue
		totalTransactions += w.count
	}

	avgWeekly := 0.0
	if len(data) > 0 {
		avgWeekly = totalRevenue / float64(len(data))
	}

	return domain.WeeklyAnalyticsResponse{
		Success: true,
		Data:    data,
		Summary: domain.WeeklySummary{
			TotalWeeks:           len(data),
			TotalRevenue:         Format2(totalRevenue),
			TotalTransactions:    totalTransactions,
			AverageWeeklyRevenue: Format2(avgWeekly),
		},
	}
}

// BuildDailyReport produces one bucket per calendar day in [start, end],
// synthesizing zero buckets for days without sales so the report is always
// contiguous. Revenue here is a rounded numeric, not a formatted string.
func BuildDailyReport(sales []domain.Sale, closures []domain.ShopClosure, start, end time.Time) domain.DailyAnalyticsResponse {
	type dayAccum struct {
		revenue  float64
		quantity int
		count    int
	}

	byDay := make(map[string]*dayAccum)
	for _, sale := range sales {
		key := DayKey(sale.Date)
		d, ok := byDay[key]
		if !ok {
			d = &dayAccum{}
			byDay[key] = d
		}
		d.revenue += sale.TotalAmount
		d.quantity += sale.Quantity
		d.count++
	}

	cal := NewCalendar(closures)
	start = dayStart(start)
	end = dayStart(end)

	var data []domain.DailyBucket
	var summary domain.DailySummary
	totalDays := 0

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		totalDays++
		bucket := domain.DailyBucket{
			Date:      DayKey(day),
			DayOfWeek: day.Weekday().String(),
		}
		if d, ok := byDay[bucket.Date]; ok {
			bucket.TotalRevenue = Round2(d.revenue)
			bucket.TotalQuantity = d.quantity
			bucket.TransactionCount = d.count
			summary.TotalRevenue += d.revenue
			summary.TotalQuantity += d.quantity
			summary.TotalTransactions += d.count
		}
		if closure, ok := cal.Lookup(day); ok {
			bucket.IsClosed = true
			bucket.ClosureInfo = &domain.ClosureInfo{
				Reason:      closure.Reason,
				Description: closure.Description,
				IsFullDay:   closure.IsFullDay,
				ClosedHours: closure.ClosedHours,
			}
			summary.ClosedDays += ClosedWeight(closure)
		}
		data = append(data, bucket)
	}

	summary.TotalRevenue = Round2(summary.TotalRevenue)
	summary.OpenDays = float64(totalDays) - summary.ClosedDays
	summary.DateRange = domain.DateRange{Start: DayKey(start), End: DayKey(end)}

	return domain.DailyAnalyticsResponse{Success: true, Data: data, Summary: summary}
}

// BuildDayOfWeekReport aggregates sales by weekday over [start, end].
// openCount decrements for full-day closures only; partial closures leave
// it untouched even though the weekly view weighs them 0.5. The two rules
// are intentionally different and must stay that way.
func BuildDayOfWeekReport(sales []domain.Sale, closures []domain.ShopClosure, start, end time.Time) domain.DayOfWeekAnalyticsResponse {
	type dowAccum struct {
		revenue     float64
		quantity    int
		count       int
		occurrences int
		fullClosed  int
	}

	var days [7]dowAccum

	for _, sale := range sales {
		wd := int(sale.Date.Local().Weekday())
		days[wd].revenue += sale.TotalAmount
		days[wd].quantity += sale.Quantity
		days[wd].count++
	}

	cal := NewCalendar(closures)
	start = dayStart(start)
	end = dayStart(end)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		wd := int(day.Weekday())
		days[wd].occurrences++
		if closure, ok := cal.Lookup(day); ok && closure.IsFullDay {
			days[wd].fullClosed++
		}
	}

	var totalRevenue float64
	var totalTransactions int

	data := make([]domain.DayOfWeekBucket, 0, 7)
	for wd := 0; wd < 7; wd++ {
		d := days[wd]
		openCount := d.occurrences - d.fullClosed

		avgPerTx := 0.0
		if d.count > 0 {
			avgPerTx = d.revenue / float64(d.count)
		}
		avgPerOpenDay := 0.0
		if openCount > 0 {
			avgPerOpenDay = d.revenue / float64(openCount)
		}

		data = append(data, domain.DayOfWeekBucket{
			DayName:               time.Weekday(wd).String(),
			TotalRevenue:          Format2(d.revenue),
			TotalQuantity:         d.quantity,
			TransactionCount:      d.count,
			TotalOccurrences:      d.occurrences,
			OpenCount:             openCount,
			AveragePerTransaction: Format2(avgPerTx),
			AveragePerOpenDay:     Format2(avgPerOpenDay),
		})

		totalRevenue += d.revenue
		totalTransactions += d.count
	}

	// Best day is the highest revenue; worst is the lowest non-zero
	// revenue, falling back to the overall lowest when every day is zero.
	ranked := make([]int, 7)
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return days[ranked[i]].revenue > days[ranked[j]].revenue
	})

	best := ranked[0]
	worst := ranked[len(ranked)-1]
	for i := len(ranked) - 1; i >= 0; i-- {
		if days[ranked[i]].revenue > 0 {
			worst = ranked[i]
			break
		}
	}

	return domain.DayOfWeekAnalyticsResponse{
		Success: true,
		Data:    data,
		Summary: domain.DayOfWeekSummary{
			DateRange:         domain.DateRange{Start: DayKey(start), End: DayKey(end)},
			TotalRevenue:      Format2(totalRevenue),
			TotalTransactions: totalTransactions,
			BestDay: domain.DayHighlight{
				Name:    time.Weekday(best).String(),
				Revenue: Format2(days[best].revenue),
			},
			WorstDay: domain.DayHighlight{
				Name:    time.Weekday(worst).String(),
				Revenue: Format2(days[worst].revenue),
			},
		},
	}
}
