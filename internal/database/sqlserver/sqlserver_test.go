package sqlserver

import (
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/GoogleCloudPlatform/db-feedback-report/internal/database"
)

func TestSQLServerQuoteIdentifier(t *testing.T) {
	handler := sqlServerHandler{}

	tests := []struct {
		name       string
		identifier string
		expected   string
		expectErr  bool
	}{
		{name: "Plain name", identifier: "Reviews", expected: "[Reviews]"},
		{name: "Name with space", identifier: "Order Details", expected: "[Order Details]"},
		{name: "Closing bracket is doubled", identifier: "feedback]col", expected: "[feedback]]col]"},
		{name: "Multiple brackets", identifier: "a]b]c", expected: "[a]]b]]c]"},
		{name: "Empty name rejected", identifier: "", expectErr: true},
		{name: "NUL character rejected", identifier: "bad\x00name", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := handler.QuoteIdentifier(tt.identifier)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.identifier, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("QuoteIdentifier(%q) = %q, want %q", tt.identifier, got, tt.expected)
			}
		})
	}
}

func TestSQLServerQuoteLiteral(t *testing.T) {
	handler := sqlServerHandler{}

	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "Plain value", value: "dbo.Reviews", expected: "N'dbo.Reviews'"},
		{name: "Single quote doubled", value: "O'Brien", expected: "N'O''Brien'"},
		{name: "Multiple quotes", value: "a'b'c", expected: "N'a''b''c'"},
		{name: "Empty value", value: "", expected: "N''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := handler.QuoteLiteral(tt.value); got != tt.expected {
				t.Errorf("QuoteLiteral(%q) = %q, want %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestSQLServerDateExpr(t *testing.T) {
	handler := sqlServerHandler{}
	got := handler.DateExpr("[SubmittedAt]")
	want := "CAST([SubmittedAt] AS DATE)"
	if got != want {
		t.Errorf("DateExpr = %q, want %q", got, want)
	}
}

func TestSQLServerDefaultTemporalTypes(t *testing.T) {
	handler := sqlServerHandler{}
	types := handler.DefaultTemporalTypes()

	expected := []string{"date", "datetime", "smalldatetime", "timestamp"}
	if len(types) != len(expected) {
		t.Fatalf("expected %d types, got %d", len(expected), len(types))
	}
	for i, want := range expected {
		if types[i] != want {
			t.Errorf("type %d = %q, want %q", i, types[i], want)
		}
	}
}

func TestSQLServerListAllColumns(t *testing.T) {
	tests := []struct {
		name          string
		expectedCols  int
		expectedError string
		mockSetup     func(sqlmock.Sqlmock)
	}{
		{
			name:         "Success with columns from multiple tables",
			expectedCols: 3,
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"TABLE_SCHEMA", "TABLE_NAME", "COLUMN_NAME", "DATA_TYPE"}).
					AddRow("dbo", "Reviews", "CustomerComment", "nvarchar").
					AddRow("dbo", "Reviews", "SubmittedDate", "datetime").
					AddRow("sales", "Orders", "OrderDate", "datetime")
				mock.ExpectQuery(`SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, DATA_TYPE\s+FROM INFORMATION_SCHEMA\.COLUMNS`).WillReturnRows(rows)
			},
		},
		{
			name:          "Database query error",
			expectedError: "error querying column metadata",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, DATA_TYPE\s+FROM INFORMATION_SCHEMA\.COLUMNS`).WillReturnError(errors.New("database connection failed"))
			},
		},
		{
			name:          "Row scanning error",
			expectedError: "error scanning column details",
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"TABLE_SCHEMA", "TABLE_NAME", "COLUMN_NAME", "DATA_TYPE"}).
					AddRow(nil, "Reviews", "CustomerComment", "nvarchar") // nil value will cause scan error
				mock.ExpectQuery(`SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, DATA_TYPE\s+FROM INFORMATION_SCHEMA\.COLUMNS`).WillReturnRows(rows)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("Failed to create mock database: %v", err)
			}
			defer mockDB.Close()

			tt.mockSetup(mock)

			db := &database.DB{Pool: mockDB}
			handler := sqlServerHandler{}
			result, err := handler.ListAllColumns(db)

			if tt.expectedError != "" {
				if err == nil {
					t.Fatalf("Expected error containing '%s', but got nil", tt.expectedError)
				}
				if !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("Expected error containing '%s', got: %v", tt.expectedError, err)
				}
			} else {
				if err != nil {
					t.Fatalf("Expected no error, but got: %v", err)
				}
				if len(result) != tt.expectedCols {
					t.Errorf("Expected %d columns, got %d", tt.expectedCols, len(result))
				}
				if tt.expectedCols > 0 {
					first := result[0]
					if first.Schema != "dbo" || first.Table != "Reviews" || first.Name != "CustomerComment" || first.DataType != "nvarchar" {
						t.Errorf("unexpected first column: %+v", first)
					}
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unfulfilled mock expectations: %v", err)
			}
		})
	}
}
