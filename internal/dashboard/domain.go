package dashboard

import "time"

// SalesSummary is one day of sales with its change against the previous day.
type SalesSummary struct {
	TotalSold        float64 `json:"totalSold"`
	ChangePercentage float64 `json:"changePercentage"`
	Date             string  `json:"date"`
}

// PurchaseSummary is one day of purchases.
type PurchaseSummary struct {
	TotalPurchased   float64 `json:"totalPurchased"`
	ChangePercentage float64 `json:"changePercentage"`
	Date             string  `json:"date"`
}

// LoanSummary is one day of loans split into its three buckets.
type LoanSummary struct {
	TotalLoanedReturned   float64 `json:"totalLoanedReturned"`
	TotalLoanedUnreturned float64 `json:"totalLoanedUnreturned"`
	TotalSold             float64 `json:"totalSold"`
	Date                  string  `json:"date"`
}

// ExpenseSummary aggregates expense withdrawals over the period.
type ExpenseSummary struct {
	TotalExpense     float64 `json:"totalExpense"`
	ChangePercentage float64 `json:"changePercentage"`
}

// TransactionTypeSummary aggregates manual movements of one direction.
type TransactionTypeSummary struct {
	Total            float64 `json:"total"`
	ChangePercentage float64 `json:"changePercentage"`
}

// TransactionSummary splits manual movements by direction.
type TransactionSummary struct {
	Deposit    TransactionTypeSummary `json:"deposit"`
	Withdrawal TransactionTypeSummary `json:"withdrawal"`
}

// Metrics is the full dashboard payload.
type Metrics struct {
	SalesSummary       []SalesSummary     `json:"salesSummary"`
	PurchaseSummary    []PurchaseSummary  `json:"purchaseSummary"`
	LoanSummary        []LoanSummary      `json:"loanSummary"`
	ExpenseSummary     ExpenseSummary     `json:"expenseSummary"`
	TransactionSummary TransactionSummary `json:"transactionSummary"`
}

// Range bounds the metrics period. Zero bounds mean all time.
type Range struct {
	From *time.Time
	To   *time.Time
}

// DayTotal is one day's summed amount.
type DayTotal struct {
	Date  time.Time
	Total float64
}

// LoanDayTotal is one day's loan buckets.
type LoanDayTotal struct {
	Date       time.Time
	Returned   float64
	Unreturned float64
	Sold       float64
}
