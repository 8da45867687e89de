package domain

import "github.com/shopspring/decimal"

// BalanceTotals is the dashboard headline: ARS and USD balances summed across
// a user's accounts. Other currencies do not contribute.
type BalanceTotals struct {
	ARS decimal.Decimal
	USD decimal.Decimal
}

// SumTotals adds every ARS and USD balance into its bucket. Rows with other
// types are ignored and rows whose amount cannot be parsed count as zero.
func SumTotals(balances []AccountBalance) BalanceTotals {
	totals := BalanceTotals{ARS: decimal.Zero, USD: decimal.Zero}

	for _, b := range balances {
		amount := amountOrZero(b.Amount)
		switch b.Type {
		case CurrencyARS:
			totals.ARS = totals.ARS.Add(amount)
		case CurrencyUSD:
			totals.USD = totals.USD.Add(amount)
		}
	}

	return totals
}

// SumByCurrency totals balances for every account type present, EUR included.
func SumByCurrency(balances []AccountBalance) map[Currency]decimal.Decimal {
	totals := make(map[Currency]decimal.Decimal)

	for _, b := range balances {
		totals[b.Type] = totals[b.Type].Add(amountOrZero(b.Amount))
	}

	return totals
}

func amountOrZero(raw string) decimal.Decimal {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
