package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/GoogleCloudPlatform/db-feedback-report/internal/scanner"
	"github.com/stretchr/testify/require"
)

// bracketDialect mirrors the SQL Server quoting rules without importing the
// dialect package.
type bracketDialect struct{}

func (bracketDialect) QuoteIdentifier(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("cannot quote an empty identifier")
	}
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("cannot quote identifier %q: contains a NUL character", name)
	}
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]", nil
}

func (bracketDialect) QuoteLiteral(value string) string {
	return "N'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (bracketDialect) DateExpr(quotedColumn string) string {
	return "CAST(" + quotedColumn + " AS DATE)"
}

func TestBuildStatement(t *testing.T) {
	d := bracketDialect{}

	c := scanner.Candidate{
		Schema:         "dbo",
		Table:          "Reviews",
		TextColumn:     "CustomerComment",
		TemporalColumn: "SubmittedAt",
	}

	stmt, err := BuildStatement(d, c)
	require.NoError(t, err)
	require.Equal(t,
		"SELECT N'dbo.Reviews' AS TableName, CAST([SubmittedAt] AS DATE) AS [Date], COUNT(*) AS Volume "+
			"FROM [dbo].[Reviews] WHERE [SubmittedAt] IS NOT NULL GROUP BY CAST([SubmittedAt] AS DATE)",
		stmt)
}

func TestBuildStatementEscapesIdentifiersAndLabel(t *testing.T) {
	d := bracketDialect{}

	c := scanner.Candidate{
		Schema:         "dbo",
		Table:          "O'Brien Data",
		TextColumn:     "feedback]col",
		TemporalColumn: "entry]date",
	}

	stmt, err := BuildStatement(d, c)
	require.NoError(t, err)
	// The bracket in the column name is doubled in identifier position.
	require.Contains(t, stmt, "[entry]]date]")
	// The quote in the table name is doubled inside the string-literal label.
	require.Contains(t, stmt, "N'dbo.O''Brien Data'")
	// No unescaped single-bracket column remains anywhere.
	require.NotContains(t, stmt, "[entry]date]")
}

func TestBuildStatementQuotingFailure(t *testing.T) {
	d := bracketDialect{}

	c := scanner.Candidate{
		Schema:         "dbo",
		Table:          "Reviews",
		TextColumn:     "CustomerComment",
		TemporalColumn: "bad\x00column",
	}

	_, err := BuildStatement(d, c)
	require.Error(t, err)

	var qe *QuotingError
	require.ErrorAs(t, err, &qe)
	require.Equal(t, "dbo", qe.Schema)
	require.Equal(t, "Reviews", qe.Table)
	require.Equal(t, "bad\x00column", qe.Column)
}

func TestBuildBatchEmpty(t *testing.T) {
	batch, err := BuildBatch(bracketDialect{}, nil)
	require.NoError(t, err)
	require.Empty(t, batch)
}

func TestBuildBatchSingleStatement(t *testing.T) {
	d := bracketDialect{}
	candidates := []scanner.Candidate{
		{Schema: "dbo", Table: "Reviews", TextColumn: "CustomerComment", TemporalColumn: "SubmittedAt"},
	}

	batch, err := BuildBatch(d, candidates)
	require.NoError(t, err)

	want, err := BuildStatement(d, candidates[0])
	require.NoError(t, err)
	require.Equal(t, want, batch)
	require.False(t, strings.HasSuffix(batch, strings.TrimSpace(UnionAllCombinator)))
}

func TestBuildBatchCombinatorCount(t *testing.T) {
	d := bracketDialect{}
	candidates := []scanner.Candidate{
		{Schema: "dbo", Table: "A", TextColumn: "Comment", TemporalColumn: "CreatedDate"},
		{Schema: "dbo", Table: "B", TextColumn: "Remark", TemporalColumn: "LoadDate"},
		{Schema: "sales", Table: "C", TextColumn: "Feedback", TemporalColumn: "OrderDate"},
	}

	batch, err := BuildBatch(d, candidates)
	require.NoError(t, err)
	require.Equal(t, len(candidates)-1, strings.Count(batch, UnionAllCombinator))
	require.False(t, strings.HasPrefix(batch, UnionAllCombinator))
	require.False(t, strings.HasSuffix(batch, UnionAllCombinator))
}

func TestBuildBatchRoundTrip(t *testing.T) {
	d := bracketDialect{}
	candidates := []scanner.Candidate{
		{Schema: "dbo", Table: "A", TextColumn: "Comment", TemporalColumn: "CreatedDate"},
		{Schema: "dbo", Table: "B", TextColumn: "Remark", TemporalColumn: "LoadDate"},
	}

	batch, err := BuildBatch(d, candidates)
	require.NoError(t, err)

	parts := strings.Split(batch, UnionAllCombinator)
	require.Len(t, parts, len(candidates))
	for i, part := range parts {
		want, err := BuildStatement(d, candidates[i])
		require.NoError(t, err)
		require.Equal(t, want, part)
	}
}

func TestBuildBatchPropagatesQuotingError(t *testing.T) {
	d := bracketDialect{}
	candidates := []scanner.Candidate{
		{Schema: "dbo", Table: "A", TextColumn: "Comment", TemporalColumn: "CreatedDate"},
		{Schema: "dbo", Table: "", TextColumn: "Remark", TemporalColumn: "LoadDate"},
	}

	batch, err := BuildBatch(d, candidates)
	require.Error(t, err)
	require.Empty(t, batch)

	var qe *QuotingError
	require.ErrorAs(t, err, &qe)
}

func TestStripTrailingCombinator(t *testing.T) {
	stmt := "SELECT 1"

	got, err := stripTrailingCombinator(stmt + UnionAllCombinator)
	require.NoError(t, err)
	require.Equal(t, stmt, got)
}

func TestStripTrailingCombinatorRejectsUnexpectedSuffix(t *testing.T) {
	_, err := stripTrailingCombinator("SELECT 1\nUNION\n")
	require.Error(t, err)

	var se *SynthesisError
	require.ErrorAs(t, err, &se)
}
