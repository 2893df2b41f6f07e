package domain

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the expense total of one category
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Summary aggregates a user's transactions for the dashboard
type Summary struct {
	TotalIncome  float64         `json:"totalIncome"`
	TotalExpense float64         `json:"totalExpense"`
	Balance      float64         `json:"balance"`
	Count        int             `json:"count"`
	Categories   []CategoryTotal `json:"categories"`
}

// Summarize computes totals with decimal arithmetic so that sums of
// cents-like amounts don't drift. Categories only include expenses.
func Summarize(txs []Transaction) Summary {
	income := decimal.Zero
	expense := decimal.Zero
	byCategory := map[string]decimal.Decimal{}

	for _, t := range txs {
		// Non-finite amounts can't be summed
		if math.IsInf(t.Amount, 0) || math.IsNaN(t.Amount) {
			continue
		}
		amount := decimal.NewFromFloat(t.Amount)
		switch t.Type {
		case TypeIncome:
			income = income.Add(amount)
		case TypeExpense:
			expense = expense.Add(amount)
			category := t.Category
			if category == "" {
				category = DefaultCategory
			}
			byCategory[category] = byCategory[category].Add(amount)
		}
	}

	categories := make([]CategoryTotal, 0, len(byCategory))
	for name, total := range byCategory {
		categories = append(categories, CategoryTotal{Category: name, Total: total.InexactFloat64()})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Total != categories[j].Total {
			return categories[i].Total > categories[j].Total
		}
		return categories[i].Category < categories[j].Category
	})

	return Summary{
		TotalIncome:  income.InexactFloat64(),
		TotalExpense: expense.InexactFloat64(),
		Balance:      income.Sub(expense).InexactFloat64(),
		Count:        len(txs),
		Categories:   categories,
	}
}
