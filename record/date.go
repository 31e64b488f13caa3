package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a possibly partial transcribed date.
type Date struct {
	Year  string `json:"year,omitempty"`
	Month string `json:"month,omitempty"`
	Day   string `json:"day,omitempty"`
}

// String joins the known parts as YYYY, YYYY-MM or YYYY-MM-DD.
func (d Date) String() string {
	y := strings.TrimSpace(d.Year)
	if y == "" {
		return ""
	}
	m, mok := atoiRange(d.Month, 1, 12)
	if !mok {
		return y
	}
	day, dok := atoiRange(d.Day, 1, 31)
	if !dok {
		return fmt.Sprintf("%s-%02d", y, m)
	}
	return fmt.Sprintf("%s-%02d-%02d", y, m, day)
}

// IsZero reports whether no year is known.
func (d Date) IsZero() bool {
	return strings.TrimSpace(d.Year) == ""
}

// Timespan is an interval with a display name, covering the outer bounds of a
// partial date.
type Timespan struct {
	Name  string    `json:"name"`
	Begin time.Time `json:"begin"`
	End   time.Time `json:"end"`
}

// Timespan returns the outer bounds of the date, or nil when the year is
// missing or malformed.
func (d Date) Timespan() *Timespan {
	year, ok := atoiRange(d.Year, 1, 9999)
	if !ok {
		return nil
	}
	begin := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := begin.AddDate(1, 0, 0)

	if m, ok := atoiRange(d.Month, 1, 12); ok {
		begin = time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
		end = begin.AddDate(0, 1, 0)
		if day, ok := atoiRange(d.Day, 1, 31); ok {
			begin = time.Date(year, time.Month(m), day, 0, 0, 0, 0, time.UTC)
			end = begin.AddDate(0, 0, 1)
		}
	}
	return &Timespan{Name: d.String(), Begin: begin, End: end.Add(-time.Second)}
}

// YearTimespan covers a whole year.
func YearTimespan(year int) *Timespan {
	return Date{Year: strconv.Itoa(year)}.Timespan()
}

// MonthTimespan covers one month of a year.
func MonthTimespan(year int, month time.Month) *Timespan {
	return Date{Year: strconv.Itoa(year), Month: strconv.Itoa(int(month))}.Timespan()
}

func atoiRange(s string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}
