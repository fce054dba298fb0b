package core

import (
	"errors"
	"time"
)

const (
	PeriodToday Period = "today"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// Period is a reporting time window.
type Period string

var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod validates a period token coming from a query parameter.
// Unknown values fail rather than silently defaulting.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodToday, PeriodMonth, PeriodAll:
		return Period(s), nil
	default:
		return "", ErrInvalidPeriod
	}
}

func (p Period) Validate() error {
	_, err := ParsePeriod(string(p))
	return err
}

// Label returns the display name of the period.
func (p Period) Label() string {
	switch p {
	case PeriodToday:
		return "Hoje"
	case PeriodMonth:
		return "Este Mês"
	default:
		return "Tudo"
	}
}

// FilterByPeriod narrows records to the reporting window anchored at now.
// Calendar comparisons happen in now's location so the function is
// deterministic for a fixed now. Month always compares year and month
// together; records from the same month of a prior year never match.
func FilterByPeriod(records []Transaction, period Period, now time.Time) ([]Transaction, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if period == PeriodAll {
		return records, nil
	}
	loc := now.Location()
	out := make([]Transaction, 0, len(records))
	for _, t := range records {
		created := t.CreatedAt.In(loc)
		switch period {
		case PeriodToday:
			y1, m1, d1 := created.Date()
			y2, m2, d2 := now.Date()
			if y1 == y2 && m1 == m2 && d1 == d2 {
				out = append(out, t)
			}
		case PeriodMonth:
			if created.Year() == now.Year() && created.Month() == now.Month() {
				out = append(out, t)
			}
		}
	}
	return out, nil
}
