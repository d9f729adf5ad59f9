/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/GoogleCloudPlatform/db-feedback-report/internal/database"
	"github.com/GoogleCloudPlatform/db-feedback-report/internal/scanner"
)

// FormatCandidatesAsText renders the candidate set grouped by table.
func FormatCandidatesAsText(candidates []scanner.Candidate) string {
	if len(candidates) == 0 {
		return "No matching feedback/date column pairs found.\n"
	}
	var buffer bytes.Buffer
	lastTable := ""
	for _, c := range candidates {
		qualified := c.Schema + "." + c.Table
		if qualified != lastTable {
			if lastTable != "" {
				buffer.WriteString("\n")
			}
			buffer.WriteString(fmt.Sprintf("--- Table: %s ---\n", qualified))
			lastTable = qualified
		}
		buffer.WriteString(fmt.Sprintf("  Text column: %s\n", c.TextColumn))
		buffer.WriteString(fmt.Sprintf("  Date column: %s\n", c.TemporalColumn))
	}
	return buffer.String()
}

// FormatReportAsText renders the combined result rows grouped by table, one
// date/volume line per row.
func FormatReportAsText(rows []database.ReportRow) string {
	if len(rows) == 0 {
		return "No results.\n"
	}
	var buffer bytes.Buffer
	lastTable := ""
	for _, r := range rows {
		if r.TableName != lastTable {
			if lastTable != "" {
				buffer.WriteString("\n")
			}
			buffer.WriteString(fmt.Sprintf("--- Table: %s ---\n", r.TableName))
			lastTable = r.TableName
		}
		buffer.WriteString(fmt.Sprintf("  %s  %d\n", r.Date.Format("2006-01-02"), r.Volume))
	}
	return buffer.String()
}

// FormatBatchAsFile renders the batch for the generate-sql output file with a
// one-line provenance comment per statement count.
func FormatBatchAsFile(batch string, statementCount int) string {
	if strings.TrimSpace(batch) == "" {
		return "-- No matching feedback/date column pairs found; no statements generated.\n"
	}
	return fmt.Sprintf("-- Feedback volume report: %d statement(s) combined with UNION ALL.\n%s\n", statementCount, batch)
}
