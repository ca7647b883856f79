package balance

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"cardkeeper/internal/domain/card"
	"cardkeeper/internal/domain/ledger"
)

// float tolerance for staleness comparison
const staleEpsilon = 1e-6

// Service contains the balance engine: starting-balance resolution,
// month summaries, daily trajectories, the multi-month overview and
// the confirmation operation.
//
// All read paths are pure queries and safe to run concurrently.
// ConfirmMonth performs a read-compute-write sequence with no locking;
// callers must serialize confirmations per card.
type Service struct {
	cards       CardGetter
	txs         TransactionReader
	checkpoints CheckpointRepository
	now         func() time.Time
}

// NewService creates a new balance service
func NewService(cards CardGetter, txs TransactionReader, checkpoints CheckpointRepository) *Service {
	return &Service{
		cards:       cards,
		txs:         txs,
		checkpoints: checkpoints,
		now:         time.Now,
	}
}

// ResolveStartingBalance returns the balance at the first instant of
// the month beginning at start. A confirmed checkpoint for the prior
// month is authoritative; otherwise the balance is the signed sum of
// every transaction dated strictly before start, which also covers
// cards whose history predates any checkpoint.
func (s *Service) ResolveStartingBalance(ctx context.Context, cardID string, start time.Time) (float64, error) {
	prevYear, prevMonth := addMonths(start.Year(), int(start.Month()), -1)

	cp, err := s.checkpoints.Get(ctx, cardID, prevYear, prevMonth)
	if err != nil {
		return 0, err
	}
	if cp.Confirmed() {
		return cp.ClosingBalance, nil
	}

	return s.txs.SumBefore(ctx, cardID, start)
}

// BuildMonthSummary aggregates one month of the card's ledger into a
// summary. A month with zero transactions is still a valid summary:
// closing equals starting and all totals are zero.
func (s *Service) BuildMonthSummary(ctx context.Context, cardID string, year, month int) (*MonthSummary, error) {
	if !validYearMonth(year, month) {
		return nil, ErrInvalidYearMonth
	}
	c, err := s.getCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	summary, _, err := s.buildSummary(ctx, cardID, year, month, c.CreditLimit)
	return summary, err
}

// BuildDailyTrajectory walks the month's transactions in ledger order
// and produces one carry-forward point per calendar day, along with
// the peak running balance and the date of the transaction that
// produced it.
func (s *Service) BuildDailyTrajectory(ctx context.Context, cardID string, year, month int) (*Trajectory, error) {
	if !validYearMonth(year, month) {
		return nil, ErrInvalidYearMonth
	}
	if _, err := s.getCard(ctx, cardID); err != nil {
		return nil, err
	}

	txs, err := s.txs.ListByMonth(ctx, cardID, year, month)
	if err != nil {
		return nil, err
	}
	starting, err := s.ResolveStartingBalance(ctx, cardID, monthStart(year, month))
	if err != nil {
		return nil, err
	}

	points, peak, peakDate := walkDays(year, month, starting, txs)
	return &Trajectory{Points: points, Peak: peak, PeakDate: peakDate}, nil
}

// BuildMonthDetails is the month drill-down: summary, transactions,
// daily series, peak figures, previous-month comparison and navigation.
func (s *Service) BuildMonthDetails(ctx context.Context, cardID string, year, month int) (*MonthDetails, error) {
	if !validYearMonth(year, month) {
		return nil, ErrInvalidYearMonth
	}
	c, err := s.getCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	summary, txs, err := s.buildSummary(ctx, cardID, year, month, c.CreditLimit)
	if err != nil {
		return nil, err
	}

	points, peak, peakDate := walkDays(year, month, summary.StartingBalance, txs)

	prevYear, prevMonth := addMonths(year, month, -1)
	previous, _, err := s.buildSummary(ctx, cardID, prevYear, prevMonth, c.CreditLimit)
	if err != nil {
		return nil, err
	}

	comparison := &Comparison{
		Previous: previous,
		Deltas: Deltas{
			UsageTotal:     summary.UsageTotal - previous.UsageTotal,
			RepaymentTotal: summary.RepaymentTotal - previous.RepaymentTotal,
			NetChange:      summary.NetChange - previous.NetChange,
			ExternalPoints: summary.ExternalPoints - previous.ExternalPoints,
			ClosingBalance: summary.ClosingBalance - previous.ClosingBalance,
		},
	}

	nextYear, nextMonth := addMonths(year, month, 1)
	now := s.now().UTC()
	var next *MonthRef
	if compareYearMonth(nextYear, nextMonth, now.Year(), int(now.Month())) <= 0 {
		next = &MonthRef{Year: nextYear, Month: nextMonth, Label: monthKey(nextYear, nextMonth)}
	}

	return &MonthDetails{
		Card:               c,
		Summary:            summary,
		Transactions:       txs,
		DailySeries:        points,
		PeakBalance:        peak,
		PeakBalancePercent: percentOfLimit(peak, summary.CreditLimit),
		PeakBalanceDate:    peakDate,
		Comparison:         comparison,
		Navigation: Navigation{
			Previous: MonthRef{Year: prevYear, Month: prevMonth, Label: monthKey(prevYear, prevMonth)},
			Next:     next,
		},
	}, nil
}

// ConfirmMonth freezes the month's computed balances into a checkpoint.
//
// The summary is recomputed from the ledger first, then upserted with
// a fresh confirmation timestamp. Confirming twice with an unchanged
// ledger writes identical numeric fields; only ConfirmedAt moves
// (insert-or-replace, last write wins).
func (s *Service) ConfirmMonth(ctx context.Context, cardID string, year, month int) (*MonthSummary, error) {
	if !validYearMonth(year, month) {
		return nil, ErrInvalidYearMonth
	}
	c, err := s.getCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	summary, _, err := s.buildSummary(ctx, cardID, year, month, c.CreditLimit)
	if err != nil {
		return nil, err
	}

	confirmedAt := s.now().UTC()
	_, err = s.checkpoints.Upsert(ctx, cardID, year, month, UpsertCheckpointParams{
		StartingBalance: summary.StartingBalance,
		UsageTotal:      summary.UsageTotal,
		RepaymentTotal:  summary.RepaymentTotal,
		ExternalPoints:  float64(summary.ExternalPoints),
		ClosingBalance:  summary.ClosingBalance,
		ConfirmedAt:     confirmedAt,
	})
	if err != nil {
		return nil, err
	}

	summary.Confirmed = true
	summary.ConfirmedAt = &confirmedAt
	summary.Stale = false
	return summary, nil
}

// BuildOverview threads a running balance across the window of
// monthsCount months ending at the current month.
//
// The latest confirmed checkpoint strictly before the window seeds the
// running balance; transactions between that checkpoint and the window
// start fold into the seed without surfacing as a visible month. With
// no such checkpoint the seed is the pre-window transaction sum. Past
// months lacking a confirmation are collected in PendingConfirmations.
func (s *Service) BuildOverview(ctx context.Context, cardID string, monthsCount int) (*Overview, error) {
	c, err := s.getCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if monthsCount <= 0 {
		monthsCount = 6
	}
	if monthsCount > 24 {
		monthsCount = 24
	}

	now := s.now().UTC()
	curYear, curMonth := now.Year(), int(now.Month())
	firstYear, firstMonth := addMonths(curYear, curMonth, -(monthsCount - 1))
	windowStart := monthStart(firstYear, firstMonth)
	nextYear, nextMonth := addMonths(curYear, curMonth, 1)
	windowEnd := monthStart(nextYear, nextMonth)

	cps, err := s.checkpoints.ListByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	cpByKey := make(map[string]*Checkpoint, len(cps))
	var base *Checkpoint
	for _, cp := range cps {
		cpByKey[monthKey(cp.Year, cp.Month)] = cp
		if !cp.Confirmed() || compareYearMonth(cp.Year, cp.Month, firstYear, firstMonth) >= 0 {
			continue
		}
		if base == nil || compareYearMonth(cp.Year, cp.Month, base.Year, base.Month) > 0 {
			base = cp
		}
	}

	txStart := windowStart
	var running float64
	if base != nil {
		baseNextYear, baseNextMonth := addMonths(base.Year, base.Month, 1)
		txStart = monthStart(baseNextYear, baseNextMonth)
		running = base.ClosingBalance
	} else {
		running, err = s.txs.SumBefore(ctx, cardID, windowStart)
		if err != nil {
			return nil, err
		}
	}

	txs, err := s.txs.ListBetween(ctx, cardID, txStart, windowEnd)
	if err != nil {
		return nil, err
	}

	monthTxs := make(map[string][]*ledger.Transaction)
	var inRange []*ledger.Transaction
	var preRangeNet float64
	for _, tx := range txs {
		if tx.TransactionDate.Before(windowStart) {
			preRangeNet += tx.Amount
			continue
		}
		inRange = append(inRange, tx)
		key := monthKey(tx.TransactionDate.Year(), int(tx.TransactionDate.Month()))
		monthTxs[key] = append(monthTxs[key], tx)
	}
	running += preRangeNet

	var months []*MonthSummary
	var pending []*MonthSummary
	year, month := firstYear, firstMonth
	for compareYearMonth(year, month, curYear, curMonth) <= 0 {
		key := monthKey(year, month)
		stats := computeStats(monthTxs[key])
		cp := cpByKey[key]

		closing := running + stats.net
		if cp != nil {
			closing = cp.ClosingBalance
		}

		summary := newSummary(year, month, running, closing, stats, cp, len(monthTxs[key]))
		decorateWithCreditLimit(summary, c.CreditLimit)
		months = append(months, summary)

		if !summary.Confirmed && compareYearMonth(year, month, curYear, curMonth) < 0 {
			pending = append(pending, summary)
		}

		running = closing
		year, month = addMonths(year, month, 1)
	}

	current := months[len(months)-1]
	var previous *MonthSummary
	if len(months) >= 2 {
		previous = months[len(months)-2]
	}

	currentKey := monthKey(curYear, curMonth)
	currentTxs := make([]*ledger.Transaction, len(monthTxs[currentKey]))
	copy(currentTxs, monthTxs[currentKey])
	sort.SliceStable(currentTxs, func(i, j int) bool {
		return currentTxs[i].TransactionDate.After(currentTxs[j].TransactionDate)
	})

	return &Overview{
		Card:                     c,
		Months:                   months,
		CurrentMonth:             current,
		PreviousMonth:            previous,
		CurrentBalance:           current.ClosingBalance,
		CurrentMonthTransactions: currentTxs,
		LabelSuggestions:         buildLabelSuggestions(inRange),
		PendingConfirmations:     pending,
		Range:                    OverviewRange{Start: windowStart, EndExclusive: windowEnd},
	}, nil
}

func (s *Service) getCard(ctx context.Context, cardID string) (*card.Card, error) {
	if cardID == "" {
		return nil, card.ErrCardNotFound
	}
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, card.ErrCardNotFound
	}
	return c, nil
}

// buildSummary fetches the month's transactions and assembles the
// decorated summary. The fetched transactions are returned so callers
// needing them (trajectory, details) avoid a second query.
func (s *Service) buildSummary(ctx context.Context, cardID string, year, month int, creditLimit *float64) (*MonthSummary, []*ledger.Transaction, error) {
	txs, err := s.txs.ListByMonth(ctx, cardID, year, month)
	if err != nil {
		return nil, nil, err
	}
	starting, err := s.ResolveStartingBalance(ctx, cardID, monthStart(year, month))
	if err != nil {
		return nil, nil, err
	}
	cp, err := s.checkpoints.Get(ctx, cardID, year, month)
	if err != nil {
		return nil, nil, err
	}

	stats := computeStats(txs)
	closing := starting + stats.net
	if cp != nil {
		closing = cp.ClosingBalance
	}

	summary := newSummary(year, month, starting, closing, stats, cp, len(txs))
	decorateWithCreditLimit(summary, creditLimit)
	return summary, txs, nil
}

type monthStats struct {
	usage       float64
	repayment   float64
	net         float64
	pointsExact float64
}

// computeStats folds a month's transactions into usage/repayment/net
// totals and the exact (unrounded) external reward points.
func computeStats(txs []*ledger.Transaction) monthStats {
	var st monthStats
	for _, tx := range txs {
		if tx.Amount >= 0 {
			st.usage += tx.Amount
		} else {
			st.repayment += -tx.Amount
		}
		if tx.External && tx.Amount > 0 && tx.ExternalMultiplier > 0 {
			st.pointsExact += tx.Amount * (tx.ExternalMultiplier / 100)
		}
	}
	st.net = st.usage - st.repayment
	return st
}

func newSummary(year, month int, starting, closing float64, stats monthStats, cp *Checkpoint, txCount int) *MonthSummary {
	summary := &MonthSummary{
		Year:                year,
		Month:               month,
		Label:               monthKey(year, month),
		StartingBalance:     starting,
		ClosingBalance:      closing,
		UsageTotal:          stats.usage,
		RepaymentTotal:      stats.repayment,
		NetChange:           stats.net,
		ExternalPoints:      int(math.Round(stats.pointsExact)),
		ExternalPointsExact: stats.pointsExact,
		TransactionCount:    txCount,
		Confirmed:           cp.Confirmed(),
	}
	if cp != nil {
		summary.ConfirmedAt = cp.ConfirmedAt
	}
	if summary.Confirmed {
		summary.Stale = checkpointStale(cp, stats)
	}
	return summary
}

// checkpointStale reports whether a confirmed checkpoint's stored
// totals diverge from a fresh recomputation, which happens when the
// ledger is mutated after confirmation. The snapshot stays
// authoritative; staleness is surfaced so callers can re-confirm.
func checkpointStale(cp *Checkpoint, stats monthStats) bool {
	fresh := cp.StartingBalance + stats.net
	return math.Abs(cp.UsageTotal-stats.usage) > staleEpsilon ||
		math.Abs(cp.RepaymentTotal-stats.repayment) > staleEpsilon ||
		math.Abs(cp.ClosingBalance-fresh) > staleEpsilon
}

// walkDays produces one running-balance point per calendar day,
// applying that day's transactions in ledger order, and tracks the
// peak balance with the date of the transaction that reached it.
func walkDays(year, month int, starting float64, txs []*ledger.Transaction) ([]DailyPoint, float64, *time.Time) {
	days := daysInMonth(year, month)
	points := make([]DailyPoint, 0, days)

	running := starting
	peak := starting
	var peakDate *time.Time
	idx := 0

	for day := 1; day <= days; day++ {
		for idx < len(txs) && txs[idx].TransactionDate.Day() == day {
			tx := txs[idx]
			running += tx.Amount
			if running > peak {
				peak = running
				d := tx.TransactionDate
				peakDate = &d
			}
			idx++
		}
		points = append(points, DailyPoint{
			Date:         time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
			RunningTotal: running,
		})
	}

	return points, peak, peakDate
}

func percentOfLimit(value float64, limit *float64) *float64 {
	if limit == nil || *limit <= 0 {
		return nil
	}
	p := value / *limit * 100
	return &p
}

func decorateWithCreditLimit(summary *MonthSummary, creditLimit *float64) {
	limit := card.EffectiveCreditLimit(creditLimit)
	summary.CreditLimit = limit
	summary.StartingBalancePercent = percentOfLimit(summary.StartingBalance, limit)
	summary.ClosingBalancePercent = percentOfLimit(summary.ClosingBalance, limit)
	summary.UsagePercent = percentOfLimit(summary.UsageTotal, limit)
	summary.RepaymentPercent = percentOfLimit(summary.RepaymentTotal, limit)
	summary.NetPercent = percentOfLimit(summary.NetChange, limit)
}

// buildLabelSuggestions ranks window labels by frequency, ties broken
// alphabetically. Purely advisory for data entry.
func buildLabelSuggestions(txs []*ledger.Transaction) []LabelSuggestion {
	counts := make(map[string]int)
	for _, tx := range txs {
		label := strings.TrimSpace(tx.Label)
		if label == "" {
			continue
		}
		counts[label]++
	}

	suggestions := make([]LabelSuggestion, 0, len(counts))
	for label, count := range counts {
		suggestions = append(suggestions, LabelSuggestion{Label: label, Count: count})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Count != suggestions[j].Count {
			return suggestions[i].Count > suggestions[j].Count
		}
		return suggestions[i].Label < suggestions[j].Label
	})
	return suggestions
}
