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

// Package scanner locates tables whose columns look like free-text feedback
// paired with a date/time column, by matching the catalog's column metadata
// against configurable name and type rules.
package scanner

import (
	"sort"
	"strings"

	"github.com/GoogleCloudPlatform/db-feedback-report/internal/config"
	"github.com/GoogleCloudPlatform/db-feedback-report/internal/database"
)

// Candidate is one (table, text column, temporal column) pairing. A table with
// two temporal columns and one text column yields two Candidates; the
// cross-product is intentional and not deduplicated.
type Candidate struct {
	Schema         string
	Table          string
	TextColumn     string
	TemporalColumn string
}

// Rules are the column-matching heuristics. Keywords match as case-insensitive
// substrings of the column name; TemporalTypes match the declared data type
// exactly (case-insensitive equality, never substring).
type Rules struct {
	TextKeywords     []string
	TemporalKeywords []string
	TemporalTypes    []string
}

// NewRules resolves a ReportConfig against a dialect's default temporal-type
// set. Config-provided values win; empty lists fall back to defaults.
func NewRules(cfg config.ReportConfig, dialectTemporalTypes []string) Rules {
	r := Rules{
		TextKeywords:     cfg.TextKeywords,
		TemporalKeywords: cfg.TemporalKeywords,
		TemporalTypes:    cfg.TemporalTypes,
	}
	if len(r.TextKeywords) == 0 {
		r.TextKeywords = []string{"comment", "remark", "feedback"}
	}
	if len(r.TemporalKeywords) == 0 {
		r.TemporalKeywords = []string{"date", "time"}
	}
	if len(r.TemporalTypes) == 0 {
		r.TemporalTypes = dialectTemporalTypes
	}
	return r
}

// IsTextColumn reports whether the column name looks like free-text feedback.
func (r Rules) IsTextColumn(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range r.TextKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// IsTemporalColumn reports whether the column name looks temporal AND the
// declared type is in the allowed set.
func (r Rules) IsTemporalColumn(name, dataType string) bool {
	lower := strings.ToLower(name)
	matched := false
	for _, kw := range r.TemporalKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, t := range r.TemporalTypes {
		if strings.EqualFold(dataType, t) {
			return true
		}
	}
	return false
}

// FindCandidates self-joins the column listing on (schema, table) identity and
// filters each side independently: the left side by the text predicate, the
// right side by the temporal predicate. Multiple qualifying columns on either
// side fan out into distinct Candidates. A column never pairs with itself,
// even if it were to satisfy both predicates.
func FindCandidates(columns []database.ColumnDescriptor, rules Rules) []Candidate {
	type tableKey struct {
		schema string
		table  string
	}
	grouped := make(map[tableKey][]database.ColumnDescriptor)
	var order []tableKey
	for _, col := range columns {
		k := tableKey{schema: col.Schema, table: col.Table}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], col)
	}

	var candidates []Candidate
	for _, k := range order {
		cols := grouped[k]
		for _, text := range cols {
			if !rules.IsTextColumn(text.Name) {
				continue
			}
			for _, temporal := range cols {
				if temporal.Name == text.Name {
					continue
				}
				if !rules.IsTemporalColumn(temporal.Name, temporal.DataType) {
					continue
				}
				candidates = append(candidates, Candidate{
					Schema:         k.schema,
					Table:          k.table,
					TextColumn:     text.Name,
					TemporalColumn: temporal.Name,
				})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Schema != b.Schema {
			return a.Schema < b.Schema
		}
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		if a.TextColumn != b.TextColumn {
			return a.TextColumn < b.TextColumn
		}
		return a.TemporalColumn < b.TemporalColumn
	})
	return candidates
}
