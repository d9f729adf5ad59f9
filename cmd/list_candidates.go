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
package cmd

import (
	"fmt"

	"github.com/GoogleCloudPlatform/db-feedback-report/internal/report"
	"github.com/GoogleCloudPlatform/db-feedback-report/internal/utils"
	"github.com/spf13/cobra"
)

var listCandidatesCmd = &cobra.Command{
	Use:     "list-candidates",
	Short:   "List tables pairing a feedback column with a date/time column",
	Long:    `Scans the database catalog and prints every (table, text column, date column) pairing the report would cover. Read-only; no SQL is generated or executed.`,
	Example: `./db_feedback_reporter list-candidates --dialect sqlserver --host db.example.com --port 1433 --username user --password pass --database mydb`,
	RunE:    runListCandidates,
}

func runListCandidates(cmd *cobra.Command, args []string) error {
	dbConfig := appConfig.Database
	if err := validateDialect(dbConfig.Dialect); err != nil {
		return err
	}

	logger.Infow("starting list-candidates operation",
		"dialect", dbConfig.Dialect,
		"database", dbConfig.DBName,
	)

	db, err := setupDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	svc := newReportService(db)

	tablesFlag := cmd.Flag("tables").Value.String()
	tableFilters, err := utils.ParseTablesFlag(tablesFlag)
	if err != nil {
		return err
	}
	svc.TableFilters = tableFilters

	candidates, err := svc.ScanCandidates(cmd.Context())
	if err != nil {
		return fmt.Errorf("catalog scan failed: %w", err)
	}

	output := report.FormatCandidatesAsText(candidates)
	outputFile := cmd.Flag("out_file").Value.String()
	if outputFile != "" {
		if err := utils.WriteStringToFile(output, outputFile); err != nil {
			return err
		}
		fmt.Printf("Candidates written to: %s\n", outputFile)
	} else {
		fmt.Print(output)
	}

	logger.Infow("list-candidates operation completed", "candidates", len(candidates))
	return nil
}

func init() {
	var outputFile string
	var tables string

	listCandidatesCmd.Flags().StringVarP(&outputFile, "out_file", "o", "", "File path to save the candidate list to (optional, prints to stdout by default)")
	listCandidatesCmd.Flags().StringVar(&tables, "tables", "", "Comma-separated list of tables and columns to include (e.g., 'table1[col1,col2],table2')")
}
