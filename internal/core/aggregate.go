package core

// Summary holds the aggregated totals for one record set.
//
// ByMethod maps each payment method to the summed amount of inflow records
// carrying it; methods with a zero sum are omitted so the distribution chart
// only renders non-zero slices. Outflows never enter the breakdown.
type Summary struct {
	TotalInflow  Money
	TotalOutflow Money
	NetBalance   Money
	ByMethod     map[PaymentMethod]Money
}

// Aggregate computes totals over a (possibly pre-filtered) record set in a
// single pass, in input order. This is the only place sums are computed;
// every display surface reads from the same Summary so totals cannot drift.
// Empty input yields an all-zero summary.
func Aggregate(records []Transaction) Summary {
	s := Summary{ByMethod: make(map[PaymentMethod]Money)}
	for _, t := range records {
		switch t.Kind {
		case Inflow:
			s.TotalInflow = s.TotalInflow.Add(t.Amount)
			s.ByMethod[t.Method] = s.ByMethod[t.Method].Add(t.Amount)
		case Outflow:
			s.TotalOutflow = s.TotalOutflow.Add(t.Amount)
		}
	}
	for m, v := range s.ByMethod {
		if v.IsZero() {
			delete(s.ByMethod, m)
		}
	}
	s.NetBalance = s.TotalInflow.Sub(s.TotalOutflow)
	return s
}
