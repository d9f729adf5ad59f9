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

import "fmt"

// QuotingError reports an identifier the dialect's quoting mechanism cannot
// represent. It always names the offending schema/table/column position.
type QuotingError struct {
	Schema string
	Table  string
	Column string
	Err    error
}

func (e *QuotingError) Error() string {
	pos := e.Schema + "." + e.Table
	if e.Column != "" {
		pos += "." + e.Column
	}
	return fmt.Sprintf("identifier quoting failed for %s: %v", pos, e.Err)
}

func (e *QuotingError) Unwrap() error {
	return e.Err
}

// SynthesisError represents an internal error while assembling the statement
// batch, such as a trailing-combinator strip that does not verify.
type SynthesisError struct {
	Msg string
	Err error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("statement synthesis error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("statement synthesis error: %s", e.Msg)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// ExecutionError represents a whole-batch execution failure. Sub-queries have
// no individual failure state; the engine error covers the entire batch.
type ExecutionError struct {
	Msg string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("batch execution error: %s: %v", e.Msg, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
