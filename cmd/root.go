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
	"strings"

	"github.com/GoogleCloudPlatform/db-feedback-report/internal/config"
	"github.com/GoogleCloudPlatform/db-feedback-report/internal/database"
	_ "github.com/GoogleCloudPlatform/db-feedback-report/internal/database/mysql"
	_ "github.com/GoogleCloudPlatform/db-feedback-report/internal/database/postgres"
	_ "github.com/GoogleCloudPlatform/db-feedback-report/internal/database/sqlserver"
	"github.com/GoogleCloudPlatform/db-feedback-report/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile string
	verbose    bool

	// Database connection flags
	dialect                        string
	host                           string
	port                           int
	username                       string
	password                       string
	dbName                         string
	cloudSQLInstanceConnectionName string
	cloudSQLUsePrivateIP           bool

	appConfig *config.Config
	logger    *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "db_feedback_reporter",
	Short: "A tool to report free-text feedback volume per day from any database",
	Long: `db_feedback_reporter scans a database's catalog for tables that pair a
free-text feedback column (comment/remark/feedback) with a date/time column,
generates one UNION ALL batch of per-table daily row counts, and runs it.`,
	PersistentPreRunE: initFlagsAndConfig,
}

// initFlagsAndConfig resolves configuration: defaults, then optional config
// file and DBFR_* env vars, then command flags on top.
func initFlagsAndConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	if dialect != "" {
		cfg.Database.Dialect = dialect
	}
	if host != "" {
		cfg.Database.Host = host
	}
	if port != 0 {
		cfg.Database.Port = port
	}
	if username != "" {
		cfg.Database.User = username
	}
	if password != "" {
		cfg.Database.Password = password
	}
	if dbName != "" {
		cfg.Database.DBName = dbName
	}
	if cloudSQLInstanceConnectionName != "" {
		cfg.Database.CloudSQLInstanceConnectionName = cloudSQLInstanceConnectionName
	}
	if cloudSQLUsePrivateIP {
		cfg.Database.UsePrivateIP = true
	}

	database.SetConfig(&cfg.Database)
	config.SetConfig(cfg)
	appConfig = cfg

	zapCfg := zap.NewDevelopmentConfig()
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	zapLogger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(zapLogger)
	logger = zapLogger.Sugar()

	return nil
}

func validateDialect(dialect string) error {
	supportedDialects := []string{"postgres", "cloudsqlpostgres", "mysql", "cloudsqlmysql", "sqlserver", "cloudsqlsqlserver"}
	isValidDialect := false
	for _, supportedDialect := range supportedDialects {
		if dialect == supportedDialect {
			isValidDialect = true
			break
		}
	}
	if !isValidDialect {
		return fmt.Errorf("unsupported dialect: %s (only %s are supported)", dialect, strings.Join(supportedDialects, ", "))
	}
	return nil
}

func setupDatabase() (*database.DB, error) {
	dbConfig := database.GetConfig()
	if dbConfig == nil {
		return nil, fmt.Errorf("database config is not initialized")
	}
	db, err := database.New(*dbConfig)
	if err != nil {
		logger.Errorw("failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func newReportService(db *database.DB) *report.Service {
	return report.NewService(db, logger, appConfig.Report)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to an optional config file with report rules (keywords, temporal types)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	// Database connection flags
	rootCmd.PersistentFlags().StringVar(&dialect, "dialect", "", fmt.Sprintf("Database dialect (%s) - MANDATORY", strings.Join([]string{"postgres", "mysql", "sqlserver", "cloudsqlpostgres", "cloudsqlmysql", "cloudsqlsqlserver"}, ", ")))
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "Database host - MANDATORY")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "Database port - MANDATORY")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "Database username - MANDATORY")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Database password - MANDATORY")
	rootCmd.PersistentFlags().StringVar(&dbName, "database", "", "Database name - MANDATORY")
	rootCmd.PersistentFlags().StringVar(&cloudSQLInstanceConnectionName, "cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects) - MANDATORY for CloudSQL")
	rootCmd.PersistentFlags().BoolVar(&cloudSQLUsePrivateIP, "cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection (Cloud SQL)")

	// Add subcommands
	rootCmd.AddCommand(listCandidatesCmd)
	rootCmd.AddCommand(generateSQLCmd)
	rootCmd.AddCommand(runReportCmd)
}
