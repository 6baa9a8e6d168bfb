package strategy

import (
	"strconv"
	"strings"
	"time"
)

// FarFuture is the deadline assumed when a goal has no usable target date.
const FarFuture = "2099-12-31"

// civilDate is a year-month-day triple as written, without calendar
// normalisation.
type civilDate struct {
	year, month, day int
}

// parseDate reads "Y-M-D" with unpadded fields allowed ("2026-6-30").
func parseDate(s string) (civilDate, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return civilDate{}, false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return civilDate{}, false
		}
		n[i] = v
	}
	return civilDate{year: n[0], month: n[1], day: n[2]}, true
}

// MonthsUntil returns the months between now and target using 30-day month
// fractions, floored at zero. A missing or unparseable target is treated as
// FarFuture.
func MonthsUntil(target string, now time.Time) float64 {
	t, ok := parseDate(target)
	if !ok {
		t, _ = parseDate(FarFuture)
	}
	months := float64((t.year-now.Year())*12+t.month-int(now.Month())) +
		float64(t.day-now.Day())/30.0
	return max(0.0, months)
}

// ReferenceTime returns the document's as_of date when set and valid,
// otherwise now.
func (d *Document) ReferenceTime(now time.Time) time.Time {
	if d == nil || d.AsOf == "" {
		return now
	}
	t, ok := parseDate(d.AsOf)
	if !ok || t.month < 1 || t.month > 12 || t.day < 1 || t.day > 31 {
		return now
	}
	return time.Date(t.year, time.Month(t.month), t.day, 0, 0, 0, 0, time.UTC)
}
