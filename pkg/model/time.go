package model

import (
	"fmt"
	"time"
)

// Era labels for TimeSelection.
const (
	EraBCE = "BCE"
	EraCE  = "CE"
)

// TimeSelection is a historical point in time. Year counts from 1 within its
// era; there is no year zero. Month and Day are optional (zero = unset).
// DisplayName is the canonical human-readable label and must stay consistent
// with the numeric fields; derive it with FormatDisplayName.
type TimeSelection struct {
	Year        int    `json:"year"`
	Month       int    `json:"month,omitempty"`
	Day         int    `json:"day,omitempty"`
	Era         string `json:"era"`
	DisplayName string `json:"display_name"`
}

// SignedYear maps the (year, era) pair onto a single axis: CE years are
// positive, BCE years negative. 1 BCE (-1) immediately precedes 1 CE (+1).
func (t TimeSelection) SignedYear() int {
	if t.Era == EraBCE {
		return -t.Year
	}
	return t.Year
}

// astronomicalYear converts to astronomical numbering, where 1 BCE is year 0,
// 2 BCE is -1 and so on. Leap years follow this axis.
func (t TimeSelection) astronomicalYear() int {
	if t.Era == EraBCE {
		return 1 - t.Year
	}
	return t.Year
}

// IsLeapYear reports whether the selection falls in a Gregorian leap year,
// with BCE years evaluated on the astronomical axis (1 BCE is a leap year).
func (t TimeSelection) IsLeapYear() bool {
	y := t.astronomicalYear()
	if y%4 != 0 {
		return false
	}
	if y%100 != 0 {
		return true
	}
	return y%400 == 0
}

var daysPerMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the true day count for the selection's month,
// accounting for leap-year February. Returns 0 if no month is set.
func (t TimeSelection) DaysInMonth() int {
	if t.Month < 1 || t.Month > 12 {
		return 0
	}
	if t.Month == 2 && t.IsLeapYear() {
		return 29
	}
	return daysPerMonth[t.Month]
}

// Validate checks the numeric fields against the calendar invariants.
func (t TimeSelection) Validate() error {
	if t.Era != EraBCE && t.Era != EraCE {
		return fmt.Errorf("invalid era %q: must be %q or %q", t.Era, EraBCE, EraCE)
	}
	if t.Year < 1 {
		return fmt.Errorf("invalid year %d: must be >= 1", t.Year)
	}
	if t.Month != 0 && (t.Month < 1 || t.Month > 12) {
		return fmt.Errorf("invalid month %d", t.Month)
	}
	if t.Day != 0 {
		if t.Month == 0 {
			return fmt.Errorf("day %d set without a month", t.Day)
		}
		if max := t.DaysInMonth(); t.Day < 1 || t.Day > max {
			return fmt.Errorf("invalid day %d for month %d of year %d %s (max %d)",
				t.Day, t.Month, t.Year, t.Era, max)
		}
	}
	return nil
}

// FormatDisplayName renders the canonical label for the numeric fields,
// e.g. "June 1692 CE", "80 CE" or "March 15, 44 BCE".
func (t TimeSelection) FormatDisplayName() string {
	switch {
	case t.Month >= 1 && t.Month <= 12 && t.Day >= 1:
		return fmt.Sprintf("%s %d, %d %s", time.Month(t.Month), t.Day, t.Year, t.Era)
	case t.Month >= 1 && t.Month <= 12:
		return fmt.Sprintf("%s %d %s", time.Month(t.Month), t.Year, t.Era)
	default:
		return fmt.Sprintf("%d %s", t.Year, t.Era)
	}
}

// Normalize fills DisplayName if empty and returns a validation error, if any.
func (t *TimeSelection) Normalize() error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.DisplayName == "" {
		t.DisplayName = t.FormatDisplayName()
	}
	return nil
}
