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
package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/GoogleCloudPlatform/db-feedback-report/internal/database"
)

// GetDefaultOutputFilePath returns the default file name for a generated
// statement batch. The other commands print to stdout unless --out_file is set.
func GetDefaultOutputFilePath(dbName string) string {
	return fmt.Sprintf("%s_feedback_volume.sql", dbName)
}

// WriteStringToFile writes content to path, creating or truncating the file.
func WriteStringToFile(content, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(content); err != nil {
		return fmt.Errorf("failed to write to output file: %w", err)
	}
	return nil
}

// ParseTablesFlag parses the --tables flag format
// 'table1[col1,col2],table2,table3[col4]' into a table -> columns map.
// A nil column slice means "all columns of that table".
func ParseTablesFlag(tablesFlag string) (map[string][]string, error) {
	tableColumns := make(map[string][]string)
	if tablesFlag == "" {
		return tableColumns, nil
	}

	// strip any whitespace
	tablesFlag = strings.ReplaceAll(tablesFlag, " ", "")

	// Split by comma, but only if the comma is not within square brackets
	parts := SplitOutsideBrackets(tablesFlag)

	for _, part := range parts {
		part = strings.TrimSpace(part)

		// Check if there are columns specified
		bracketStart := strings.Index(part, "[")
		if bracketStart != -1 {
			bracketEnd := strings.Index(part, "]")
			if bracketEnd == -1 {
				return nil, fmt.Errorf("missing closing bracket in: %s", part)
			}

			tableName := strings.TrimSpace(part[:bracketStart])
			columnsStr := strings.TrimSpace(part[bracketStart+1 : bracketEnd])

			// Split columns by comma and trim spaces
			columns := strings.Split(columnsStr, ",")
			var trimmedColumns []string
			for _, col := range columns {
				trimmedColumns = append(trimmedColumns, strings.TrimSpace(col))
			}
			tableColumns[tableName] = trimmedColumns
		} else {
			// No columns specified, just table name
			tableColumns[part] = nil
		}
	}

	return tableColumns, nil
}

// SplitOutsideBrackets Helper function to split string by commas that are not within brackets
func SplitOutsideBrackets(s string) []string {
	var result []string
	var current strings.Builder
	inBrackets := false

	for _, char := range s {
		switch char {
		case '[':
			inBrackets = true
			current.WriteRune(char)
		case ']':
			inBrackets = false
			current.WriteRune(char)
		case ',':
			if inBrackets {
				current.WriteRune(char)
			} else {
				result = append(result, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}

	// Add the last part
	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}

// FilterColumns restricts a catalog listing to the tables (and optionally
// columns) named by a --tables filter. Tables match on the bare name or the
// schema-qualified name. An empty filter keeps everything.
func FilterColumns(columns []database.ColumnDescriptor, tableFilters map[string][]string) []database.ColumnDescriptor {
	if len(tableFilters) == 0 {
		return columns
	}

	var filtered []database.ColumnDescriptor
	for _, col := range columns {
		allowedCols, ok := tableFilters[col.Table]
		if !ok {
			allowedCols, ok = tableFilters[col.Schema+"."+col.Table]
		}
		if !ok {
			continue
		}
		if len(allowedCols) == 0 {
			filtered = append(filtered, col)
			continue
		}
		for _, name := range allowedCols {
			if name == col.Name {
				filtered = append(filtered, col)
				break
			}
		}
	}
	return filtered
}
