package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"cardkeeper/internal/domain/card"
	"cardkeeper/internal/shared/normalize"
)

// Importer errors
var (
	ErrCardRequired   = errors.New("card selection is required for CSV import")
	ErrCardHasHistory = errors.New("CSV import is only allowed for cards without existing history")
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("CSV header must contain date, label, and amount columns")
)

// CheckpointCounter is the slice of the checkpoint store the importer
// needs for the zero-history gate.
type CheckpointCounter interface {
	CountByCard(ctx context.Context, cardID string) (int64, error)
}

// ImportDefaults supply external/multiplier values for rows that do
// not carry those columns.
type ImportDefaults struct {
	External           bool
	ExternalMultiplier float64
}

// RowError records a single malformed CSV row by its 1-based line number.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult reports the outcome of a CSV import. Processed counts
// the unique candidate rows after in-file deduplication.
type ImportResult struct {
	Inserted  int        `json:"inserted"`
	Skipped   int        `json:"skipped"`
	Processed int        `json:"processed"`
	Errors    []RowError `json:"errors"`
}

// Importer performs idempotent all-or-nothing CSV imports against a
// card with no existing history.
type Importer struct {
	repo        Repository
	cards       CardDirectory
	checkpoints CheckpointCounter
}

// NewImporter creates a new CSV importer
func NewImporter(repo Repository, cards CardDirectory, checkpoints CheckpointCounter) *Importer {
	return &Importer{repo: repo, cards: cards, checkpoints: checkpoints}
}

// ImportCSV parses the payload and inserts the unique, well-formed rows.
//
// The target card must have zero transactions and zero checkpoints;
// any existing history rejects the whole batch (ErrCardHasHistory).
// Malformed rows are collected per line and do not abort the batch.
// Rows are deduplicated in-memory by (date, label, amount) before
// insertion, and each candidate is skipped when an identical tuple is
// already stored, so re-importing overlapping exports is idempotent.
func (im *Importer) ImportCSV(ctx context.Context, cardID, payload string, defaults ImportDefaults) (*ImportResult, error) {
	if cardID == "" {
		return nil, ErrCardRequired
	}

	c, err := im.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.Active {
		return nil, card.ErrCardNotFound
	}

	txCount, err := im.repo.CountByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	cpCount, err := im.checkpoints.CountByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if txCount > 0 || cpCount > 0 {
		return nil, ErrCardHasHistory
	}

	rows, rowErrors, err := parseRows(payload, defaults)
	if err != nil {
		return nil, err
	}

	unique := dedupeRows(rows)

	result := &ImportResult{
		Processed: len(unique),
		Errors:    rowErrors,
	}

	for _, row := range unique {
		existing, err := im.repo.FindByTuple(ctx, cardID, row.date, row.label, row.amount)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		_, err = im.repo.Create(ctx, CreateTransactionParams{
			ID:                 uuid.NewString(),
			CardID:             cardID,
			TransactionDate:    row.date,
			Label:              row.label,
			Amount:             row.amount,
			External:           row.external,
			ExternalMultiplier: row.multiplier,
		})
		if err != nil {
			return nil, err
		}
		result.Inserted++
	}

	return result, nil
}

type csvRow struct {
	date       time.Time
	label      string
	amount     float64
	external   bool
	multiplier float64
}

// fixed column order assumed when no header row is present
var defaultColumns = []string{"date", "label", "amount", "is_external", "external_multiplier"}

func parseRows(payload string, defaults ImportDefaults) ([]csvRow, []RowError, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, nil, ErrEmptyCSV
	}

	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(payload), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, nil, ErrEmptyCSV
	}

	header := splitColumns(lines[0])
	for i, h := range header {
		header[i] = strings.ToLower(h)
	}
	hasHeader := contains(header, "date") && contains(header, "label") && contains(header, "amount")

	columns := defaultColumns
	if hasHeader {
		columns = header
	}

	dateIdx := indexOf(columns, "date")
	labelIdx := indexOf(columns, "label")
	amountIdx := indexOf(columns, "amount")
	externalIdx := indexOf(columns, "is_external")
	if externalIdx < 0 {
		externalIdx = indexOf(columns, "external")
	}
	multiplierIdx := indexOf(columns, "external_multiplier")

	if dateIdx < 0 || labelIdx < 0 || amountIdx < 0 {
		return nil, nil, ErrMissingColumns
	}

	defaultMultiplier := defaults.ExternalMultiplier
	if defaultMultiplier < 0 {
		defaultMultiplier = 1
	}

	dataLines := lines
	lineNumber := 1
	if hasHeader {
		dataLines = lines[1:]
		lineNumber = 2
	}

	var rows []csvRow
	rowErrors := []RowError{}

	for _, line := range dataLines {
		parts := splitColumns(line)
		if len(parts) < 3 {
			rowErrors = append(rowErrors, RowError{Line: lineNumber, Reason: "expected at least 3 columns (date,label,amount)"})
			lineNumber++
			continue
		}

		dateStr := field(parts, dateIdx)
		label := field(parts, labelIdx)
		amountStr := field(parts, amountIdx)
		externalStr := field(parts, externalIdx)
		multiplierStr := field(parts, multiplierIdx)

		if dateStr == "" || label == "" || amountStr == "" {
			rowErrors = append(rowErrors, RowError{Line: lineNumber, Reason: "missing date, label or amount"})
			lineNumber++
			continue
		}

		date, err := normalize.ParseDate(dateStr)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: lineNumber, Reason: err.Error()})
			lineNumber++
			continue
		}

		amount, err := normalize.ParseAmount(amountStr)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: lineNumber, Reason: "amount must be a valid number"})
			lineNumber++
			continue
		}

		external := defaults.External
		if externalStr != "" {
			external = normalize.ParseBool(externalStr)
		}

		multiplier := defaultMultiplier
		if multiplierStr != "" {
			parsed, err := strconv.ParseFloat(multiplierStr, 64)
			if err != nil || parsed < 0 {
				parsed = 0
			}
			multiplier = parsed
		}

		rows = append(rows, csvRow{
			date:       date,
			label:      label,
			amount:     amount,
			external:   external,
			multiplier: resolveMultiplier(external, multiplier),
		})
		lineNumber++
	}

	return rows, rowErrors, nil
}

// dedupeRows merges rows sharing the same (date, label, amount)
// composite key; the first occurrence wins.
func dedupeRows(rows []csvRow) []csvRow {
	seen := make(map[string]struct{}, len(rows))
	unique := make([]csvRow, 0, len(rows))
	for _, row := range rows {
		key := fmt.Sprintf("%s||%s||%s",
			row.date.Format(time.RFC3339),
			row.label,
			strconv.FormatFloat(row.amount, 'f', -1, 64),
		)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, row)
	}
	return unique
}

func splitColumns(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func field(parts []string, idx int) string {
	if idx < 0 || idx >= len(parts) {
		return ""
	}
	return parts[idx]
}

func contains(ss []string, s string) bool {
	return indexOf(ss, s) >= 0
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}
