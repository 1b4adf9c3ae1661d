package analytics

import (
	"time"

	"tokoledger/backend/internal/domain"
)

// DayKey formats a timestamp as its calendar day (YYYY-MM-DD) in the
// server's local time zone. Closure equality is by calendar day, never by
// full timestamp.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// Calendar answers closed-or-open questions for individual days with an
// O(1) lookup built from a range query's closure records.
type Calendar struct {
	byDay map[string]domain.ShopClosure
}

func NewCalendar(closures []domain.ShopClosure) Calendar {
	byDay := make(map[string]domain.ShopClosure, len(closures))
	for _, c := range closures {
		byDay[DayKey(c.Date)] = c
	}
	return Calendar{byDay: byDay}
}

func (c Calendar) Lookup(t time.Time) (domain.ShopClosure, bool) {
	closure, ok := c.byDay[DayKey(t)]
	return closure, ok
}

// ClosedWeight is the contribution of a day to "closed days" in weekly
// aggregations: 1.0 for a full-day closure, 0.5 for a partial one
// regardless of how many hours were closed, 0 for an open day.
func ClosedWeight(closure domain.ShopClosure) float64 {
	if closure.IsFullDay {
		return 1.0
	}
	return 0.5
}
