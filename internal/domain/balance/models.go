package balance

import (
	"errors"
	"time"

	"cardkeeper/internal/domain/card"
	"cardkeeper/internal/domain/ledger"
)

// Domain errors
var (
	ErrInvalidYearMonth = errors.New("invalid year or month")
)

// Checkpoint is a per-card, per-month snapshot of computed balances.
// Once ConfirmedAt is set the snapshot is authoritative: balance
// resolution for later months uses ClosingBalance verbatim instead of
// recomputing from the ledger.
type Checkpoint struct {
	ID              string     `json:"id"`
	CardID          string     `json:"cardId"`
	Year            int        `json:"year"`
	Month           int        `json:"month"`
	StartingBalance float64    `json:"startingBalance"`
	UsageTotal      float64    `json:"usageTotal"`
	RepaymentTotal  float64    `json:"repaymentTotal"`
	ExternalPoints  float64    `json:"externalPoints"`
	ClosingBalance  float64    `json:"closingBalance"`
	ConfirmedAt     *time.Time `json:"confirmedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Confirmed reports whether the checkpoint is an authoritative snapshot.
func (c *Checkpoint) Confirmed() bool {
	return c != nil && c.ConfirmedAt != nil
}

// UpsertCheckpointParams carries the freshly computed summary fields
// written by the confirmation operation.
type UpsertCheckpointParams struct {
	StartingBalance float64
	UsageTotal      float64
	RepaymentTotal  float64
	ExternalPoints  float64
	ClosingBalance  float64
	ConfirmedAt     time.Time
}

// MonthSummary aggregates one calendar month of a card's ledger.
// Percent fields are nil when the card has no credit limit configured.
type MonthSummary struct {
	Year                int        `json:"year"`
	Month               int        `json:"month"`
	Label               string     `json:"label"`
	StartingBalance     float64    `json:"startingBalance"`
	ClosingBalance      float64    `json:"closingBalance"`
	UsageTotal          float64    `json:"usageTotal"`
	RepaymentTotal      float64    `json:"repaymentTotal"`
	NetChange           float64    `json:"netChange"`
	ExternalPoints      int        `json:"externalPoints"`
	ExternalPointsExact float64    `json:"externalPointsExact"`
	TransactionCount    int        `json:"transactionCount"`
	Confirmed           bool       `json:"confirmed"`
	ConfirmedAt         *time.Time `json:"confirmedAt"`
	// Stale is set when a confirmed checkpoint's stored totals no
	// longer match a fresh recomputation (ledger edits after confirm).
	Stale bool `json:"stale"`

	CreditLimit            *float64 `json:"creditLimit"`
	StartingBalancePercent *float64 `json:"startingBalancePercent"`
	ClosingBalancePercent  *float64 `json:"closingBalancePercent"`
	UsagePercent           *float64 `json:"usagePercent"`
	RepaymentPercent       *float64 `json:"repaymentPercent"`
	NetPercent             *float64 `json:"netPercent"`
}

// DailyPoint is one carry-forward point of a month's running balance.
type DailyPoint struct {
	Date         time.Time `json:"date"`
	RunningTotal float64   `json:"runningTotal"`
}

// Trajectory is a month's day-by-day running balance with its peak.
// PeakDate is nil when no transaction ever lifts the balance above the
// starting value.
type Trajectory struct {
	Points   []DailyPoint `json:"points"`
	Peak     float64      `json:"peakBalance"`
	PeakDate *time.Time   `json:"peakBalanceDate"`
}

// MonthRef identifies a month for navigation purposes.
type MonthRef struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
}

// Deltas holds month-over-month differences for the comparison view.
type Deltas struct {
	UsageTotal     float64 `json:"usageTotal"`
	RepaymentTotal float64 `json:"repaymentTotal"`
	NetChange      float64 `json:"netChange"`
	ExternalPoints int     `json:"externalPoints"`
	ClosingBalance float64 `json:"closingBalance"`
}

// Comparison pairs the previous month's summary with deltas against it.
type Comparison struct {
	Previous *MonthSummary `json:"previous"`
	Deltas   Deltas        `json:"deltas"`
}

// Navigation carries previous/next month links for the details view.
// Next is nil beyond the current month.
type Navigation struct {
	Previous MonthRef  `json:"previous"`
	Next     *MonthRef `json:"next"`
}

// MonthDetails is the month drill-down: summary, ordered transactions,
// daily series, peak figures, comparison and navigation.
type MonthDetails struct {
	Card               *card.Card            `json:"card"`
	Summary            *MonthSummary         `json:"summary"`
	Transactions       []*ledger.Transaction `json:"transactions"`
	DailySeries        []DailyPoint          `json:"dailySeries"`
	PeakBalance        float64               `json:"peakBalance"`
	PeakBalancePercent *float64              `json:"peakBalancePercent"`
	PeakBalanceDate    *time.Time            `json:"peakBalanceDate"`
	Comparison         *Comparison           `json:"comparison"`
	Navigation         Navigation            `json:"navigation"`
}

// LabelSuggestion ranks a label by how often it appears in the window.
type LabelSuggestion struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// OverviewRange is the window covered by an overview, end-exclusive.
type OverviewRange struct {
	Start        time.Time `json:"start"`
	EndExclusive time.Time `json:"endExclusive"`
}

// Overview threads a running balance across the requested window of
// months, ending at the current month.
type Overview struct {
	Card                     *card.Card            `json:"card"`
	Months                   []*MonthSummary       `json:"months"`
	CurrentMonth             *MonthSummary         `json:"currentMonth"`
	PreviousMonth            *MonthSummary         `json:"previousMonth"`
	CurrentBalance           float64               `json:"currentBalance"`
	CurrentMonthTransactions []*ledger.Transaction `json:"currentMonthTransactions"`
	LabelSuggestions         []LabelSuggestion     `json:"labelSuggestions"`
	PendingConfirmations     []*MonthSummary       `json:"pendingConfirmations"`
	Range                    OverviewRange         `json:"range"`
}
