package core

import "errors"

// Progress describes how far accumulated inflow has come toward a target.
type Progress struct {
	Percent   float64 // clamped to [0, 100]
	Remaining Money   // never negative
}

var ErrInvalidTarget = errors.New("invalid goal target")

// GoalProgress computes progress of totalInflow against a caller-owned
// target. A target of zero or less fails with ErrInvalidTarget instead of
// producing Inf or NaN display artifacts.
func GoalProgress(totalInflow, target Money) (Progress, error) {
	if target.Cents <= 0 {
		return Progress{}, ErrInvalidTarget
	}
	percent := float64(totalInflow.Cents) / float64(target.Cents) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	remaining := target.Sub(totalInflow)
	if remaining.Cents < 0 {
		remaining = Money{}
	}
	return Progress{Percent: percent, Remaining: remaining}, nil
}
