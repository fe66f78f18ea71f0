// Package period provides the calendar-month key used across the extraction
// pipeline, the ledger, and the workbook renderer.
package period

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Period is one accounting month.
type Period struct {
	Year  int
	Month int // 1..12
}

// Valid reports whether the period is a plausible statement month.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 2000 && p.Year <= 2050
}

// Key renders the period as its serialized "YYYY-MM" form, used for session
// JSON keys where tuple keys do not exist.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Before reports calendar ordering.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

var monthNames = [13]string{"", "January", "February", "March", "April", "May",
	"June", "July", "August", "September", "October", "November", "December"}

// Label renders the period for display, e.g. "Mar-25".
func (p Period) Label() string {
	if !p.Valid() {
		return p.Key()
	}
	return fmt.Sprintf("%s-%02d", monthNames[p.Month][:3], p.Year%100)
}

// MonthName returns the full English month name.
func (p Period) MonthName() string {
	if p.Month < 1 || p.Month > 12 {
		return ""
	}
	return monthNames[p.Month]
}

// Parse converts a "YYYY-MM" key back to a Period.
func Parse(key string) (Period, error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("malformed period key %q", key)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("malformed period year in %q", key)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("malformed period month in %q", key)
	}
	p := Period{Year: year, Month: month}
	if !p.Valid() {
		return Period{}, fmt.Errorf("period %q out of range", key)
	}
	return p, nil
}

// Sort orders periods oldest first, in place.
func Sort(ps []Period) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Before(ps[j]) })
}
