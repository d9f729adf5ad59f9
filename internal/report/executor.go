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
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-feedback-report/internal/config"
	"github.com/GoogleCloudPlatform/db-feedback-report/internal/database"
	"github.com/GoogleCloudPlatform/db-feedback-report/internal/scanner"
	"github.com/GoogleCloudPlatform/db-feedback-report/internal/utils"
)

// Service runs the scan -> synthesize -> execute pipeline.
type Service struct {
	dbAdapter database.DBAdapter
	logger    *zap.SugaredLogger
	rules     scanner.Rules

	// TableFilters restricts the scan to the named tables (and optionally
	// columns), in the --tables flag format. Empty means the whole catalog.
	TableFilters map[string][]string
}

// Report is the outcome of one run. Executed is false when the candidate set
// was empty and no execution call was made.
type Report struct {
	Candidates []scanner.Candidate
	Batch      string
	Rows       []database.ReportRow
	Executed   bool
}

func NewService(db database.DBAdapter, logger *zap.SugaredLogger, reportCfg config.ReportConfig) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		dbAdapter: db,
		logger:    logger,
		rules:     scanner.NewRules(reportCfg, db.DefaultTemporalTypes()),
	}
}

// ScanCandidates reads the catalog's column metadata and returns the candidate
// set. Pure read; no side effects on the database.
func (s *Service) ScanCandidates(ctx context.Context) ([]scanner.Candidate, error) {
	columns, err := s.dbAdapter.ListAllColumns(ctx)
	if err != nil {
		return nil, err
	}
	columns = utils.FilterColumns(columns, s.TableFilters)
	candidates := scanner.FindCandidates(columns, s.rules)
	s.logger.Infow("catalog scan completed",
		"columns", len(columns),
		"candidates", len(candidates),
	)
	return candidates, nil
}

// GenerateBatch scans and synthesizes without executing. The returned batch is
// empty when no column pairs qualify.
func (s *Service) GenerateBatch(ctx context.Context) (string, []scanner.Candidate, error) {
	candidates, err := s.ScanCandidates(ctx)
	if err != nil {
		return "", nil, err
	}
	batch, err := BuildBatch(s.dbAdapter, candidates)
	if err != nil {
		return "", nil, err
	}
	return batch, candidates, nil
}

// Run executes the full pipeline. The generated batch is logged verbatim
// before execution so the exact SQL is always available for audit, and the
// batch runs as one statement: either the full unioned result set comes back
// or the whole batch fails.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	startTime := time.Now()

	batch, candidates, err := s.GenerateBatch(ctx)
	if err != nil {
		return nil, err
	}

	rep := &Report{Candidates: candidates, Batch: batch}
	if batch == "" {
		s.logger.Infow("no matching feedback/date column pairs found; skipping execution")
		return rep, nil
	}

	s.logger.Infof("generated statement batch:\n%s", batch)
	s.logger.Infow("executing statement batch", "statements", len(candidates))

	rows, err := s.dbAdapter.QueryBatch(ctx, batch)
	if err != nil {
		return rep, &ExecutionError{Msg: "feedback volume batch failed", Err: err}
	}
	rep.Rows = rows
	rep.Executed = true

	s.logger.Infow("report completed",
		"rows", len(rows),
		"elapsed", time.Since(startTime).String(),
	)
	return rep, nil
}
