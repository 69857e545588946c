package core

// ReportRow is one spending item's execution for a budget month. Rate is an
// integer percent clamped to [0, 100]; overspend is carried by OverBudget
// and the unclamped Actual instead.
type ReportRow struct {
	ItemID     string `json:"itemId"`
	Name       string `json:"name"`
	Plan       int64  `json:"plan"`
	Actual     int64  `json:"actual"`
	Rate       int    `json:"rate"`
	OverBudget bool   `json:"overBudget"`
}

// Report is the aggregated execution view of one budget month.
type Report struct {
	Month       MonthKey    `json:"month"`
	Period      Period      `json:"period"`
	Rows        []ReportRow `json:"rows"`
	TotalPlan   int64       `json:"totalPlan"`
	TotalActual int64       `json:"totalActual"`
	Remaining   int64       `json:"remaining"`
}

// BuildReport joins the ledger against the month's budget items. Only
// spending transactions inside the resolved period count, grouped by item
// name; savings/other items and transactions are bookkeeping only and never
// appear. Deterministic and side-effect-free: identical inputs produce an
// identical report.
func BuildReport(key MonthKey, settings Settings, items []BudgetItem, txs []Transaction) (Report, error) {
	period, err := ResolvePeriodKey(key, settings.CycleStartDay)
	if err != nil {
		return Report{}, err
	}

	actualByItem := make(map[string]int64)
	for _, t := range txs {
		if t.Top != Spending || !period.Contains(t.Date) {
			continue
		}
		actualByItem[t.Item] += t.Amount
	}

	report := Report{Month: key, Period: period}
	for _, it := range items {
		if it.Top != Spending {
			continue
		}
		actual := actualByItem[it.Name]
		report.Rows = append(report.Rows, ReportRow{
			ItemID:     it.ID,
			Name:       it.Name,
			Plan:       it.Plan,
			Actual:     actual,
			Rate:       executionRate(actual, it.Plan),
			OverBudget: actual > it.Plan,
		})
		report.TotalPlan += it.Plan
		report.TotalActual += actual
	}

	if remaining := report.TotalPlan - report.TotalActual; remaining > 0 {
		report.Remaining = remaining
	}
	return report, nil
}

// executionRate is actual/plan as an integer percent, rounded half-up and
// clamped to [0, 100]. A zero plan yields 0 regardless of actuals.
func executionRate(actual, plan int64) int {
	if plan <= 0 || actual <= 0 {
		return 0
	}
	rate := (actual*100 + plan/2) / plan
	if rate > 100 {
		return 100
	}
	return int(rate)
}
