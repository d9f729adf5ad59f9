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

var runReportCmd = &cobra.Command{
	Use:     "run-report",
	Short:   "Scan, synthesize and execute the feedback volume report",
	Long:    `Runs the full pipeline: scans the catalog for feedback/date column pairs, synthesizes the UNION ALL batch, logs it for audit, executes it as a single statement, and prints row counts per table and calendar date.`,
	Example: `./db_feedback_reporter run-report --dialect cloudsqlsqlserver --username user --password pass --database mydb --cloudsql-instance-connection-name my-project:my-region:my-instance`,
	RunE:    runRunReport,
}

func runRunReport(cmd *cobra.Command, args []string) error {
	dbConfig := appConfig.Database
	if err := validateDialect(dbConfig.Dialect); err != nil {
		return err
	}

	logger.Infow("starting run-report operation",
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

	rep, err := svc.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("report run failed: %w", err)
	}

	var output string
	if !rep.Executed {
		output = "No matching feedback/date column pairs found.\n"
	} else {
		output = report.FormatReportAsText(rep.Rows)
	}

	outputFile := cmd.Flag("out_file").Value.String()
	if outputFile != "" {
		if err := utils.WriteStringToFile(output, outputFile); err != nil {
			return err
		}
		fmt.Printf("Report written to: %s\n", outputFile)
	} else {
		fmt.Print(output)
	}

	logger.Infow("run-report operation completed", "executed", rep.Executed, "rows", len(rep.Rows))
	return nil
}

func init() {
	var outputFile string
	var tables string

	runReportCmd.Flags().StringVarP(&outputFile, "out_file", "o", "", "File path to save the report to (optional, prints to stdout by default)")
	runReportCmd.Flags().StringVar(&tables, "tables", "", "Comma-separated list of tables and columns to include (e.g., 'table1[col1,col2],table2')")
}
