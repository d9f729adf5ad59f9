// Package report synthesizes and runs the feedback volume batch: one
// count-per-day aggregate SELECT for every candidate column pair, folded into
// a single UNION ALL statement.
package report

import (
	"fmt"
	"strings"

	"github.com/GoogleCloudPlatform/db-feedback-report/internal/scanner"
)

// Dialect is the quoting surface the synthesizer needs from a dialect handler.
type Dialect interface {
	QuoteIdentifier(name string) (string, error)
	QuoteLiteral(value string) string
	DateExpr(quotedColumn string) string
}

// UnionAllCombinator joins the per-candidate statements. The fold appends it
// after every statement and then strips exactly one verified trailing copy.
const UnionAllCombinator = "\nUNION ALL\n"

// BuildStatement maps one candidate to its aggregate SELECT. Every identifier
// goes through the dialect's quoting; the schema-qualified table label is a
// string literal and is escaped as one.
func BuildStatement(d Dialect, c scanner.Candidate) (string, error) {
	quotedSchema, err := d.QuoteIdentifier(c.Schema)
	if err != nil {
		return "", &QuotingError{Schema: c.Schema, Table: c.Table, Err: err}
	}
	quotedTable, err := d.QuoteIdentifier(c.Table)
	if err != nil {
		return "", &QuotingError{Schema: c.Schema, Table: c.Table, Err: err}
	}
	quotedTemporal, err := d.QuoteIdentifier(c.TemporalColumn)
	if err != nil {
		return "", &QuotingError{Schema: c.Schema, Table: c.Table, Column: c.TemporalColumn, Err: err}
	}
	// "Date" is reserved-adjacent on every supported engine, so the alias is
	// quoted like any other identifier.
	dateAlias, err := d.QuoteIdentifier("Date")
	if err != nil {
		return "", &QuotingError{Schema: c.Schema, Table: c.Table, Column: "Date", Err: err}
	}

	label := d.QuoteLiteral(c.Schema + "." + c.Table)
	dateExpr := d.DateExpr(quotedTemporal)

	stmt := fmt.Sprintf(
		"SELECT %s AS TableName, %s AS %s, COUNT(*) AS Volume FROM %s.%s WHERE %s IS NOT NULL GROUP BY %s",
		label, dateExpr, dateAlias, quotedSchema, quotedTable, quotedTemporal, dateExpr,
	)
	return stmt, nil
}

// BuildBatch folds all candidate statements into one batch. An empty candidate
// set yields an empty batch and no error; execution is the caller's decision.
func BuildBatch(d Dialect, candidates []scanner.Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, c := range candidates {
		stmt, err := BuildStatement(d, c)
		if err != nil {
			return "", err
		}
		b.WriteString(stmt)
		b.WriteString(UnionAllCombinator)
	}
	return stripTrailingCombinator(b.String())
}

// stripTrailingCombinator removes exactly one trailing combinator. The suffix
// is verified before truncating; a batch not ending in the combinator is an
// assembly fault, not something to cut blindly.
func stripTrailingCombinator(batch string) (string, error) {
	if !strings.HasSuffix(batch, UnionAllCombinator) {
		return "", &SynthesisError{
			Msg: fmt.Sprintf("assembled batch does not end with the %q combinator; refusing to truncate", strings.TrimSpace(UnionAllCombinator)),
		}
	}
	return batch[:len(batch)-len(UnionAllCombinator)], nil
}
