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

var generateSQLCmd = &cobra.Command{
	Use:     "generate-sql",
	Short:   "Generate the feedback volume UNION ALL batch without executing it",
	Long:    `Scans the catalog, synthesizes the combined UNION ALL statement batch, and writes it to a file for review. Nothing is executed against the database.`,
	Example: `./db_feedback_reporter generate-sql --dialect sqlserver --host db.example.com --port 1433 --username user --password pass --database mydb --out_file ./mydb_feedback_volume.sql`,
	RunE:    runGenerateSQL,
}

func runGenerateSQL(cmd *cobra.Command, args []string) error {
	dbConfig := appConfig.Database
	if err := validateDialect(dbConfig.Dialect); err != nil {
		return err
	}

	outputFile := cmd.Flag("out_file").Value.String()
	if outputFile == "" {
		outputFile = utils.GetDefaultOutputFilePath(dbConfig.DBName)
	}

	logger.Infow("starting generate-sql operation",
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

	batch, candidates, err := svc.GenerateBatch(cmd.Context())
	if err != nil {
		return fmt.Errorf("statement synthesis failed: %w", err)
	}

	if batch == "" {
		logger.Infow("no matching feedback/date column pairs found; nothing to generate")
	} else {
		logger.Infof("generated statement batch:\n%s", batch)
	}

	if err := utils.WriteStringToFile(report.FormatBatchAsFile(batch, len(candidates)), outputFile); err != nil {
		return err
	}
	fmt.Printf("Generated SQL written to: %s\n", outputFile)

	logger.Infow("generate-sql operation completed", "statements", len(candidates))
	return nil
}

func init() {
	var outputFile string
	var tables string

	generateSQLCmd.Flags().StringVarP(&outputFile, "out_file", "o", "", "File path to output the generated SQL batch (defaults to <database>_feedback_volume.sql)")
	generateSQLCmd.Flags().StringVar(&tables, "tables", "", "Comma-separated list of tables and columns to include (e.g., 'table1[col1,col2],table2')")
}
