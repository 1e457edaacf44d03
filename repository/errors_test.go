package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected FaultKind
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: FaultNone,
		},
		{
			name:     "record not found",
			err:      gorm.ErrRecordNotFound,
			expected: FaultNotFound,
		},
		{
			name:     "wrapped record not found",
			err:      fmt.Errorf("query failed: %w", gorm.ErrRecordNotFound),
			expected: FaultNotFound,
		},
		{
			name:     "policy recursion code",
			err:      &pgconn.PgError{Code: "42P17", Message: "infinite recursion detected in policy for relation \"profiles\""},
			expected: FaultPolicy,
		},
		{
			name:     "insufficient privilege code",
			err:      &pgconn.PgError{Code: "42501", Message: "permission denied for table profiles"},
			expected: FaultPermission,
		},
		{
			name:     "policy recursion by message only",
			err:      &pgconn.PgError{Code: "XX000", Message: "infinite recursion detected in policy for relation \"profiles\""},
			expected: FaultPolicy,
		},
		{
			name:     "permission denied text without pg error",
			err:      errors.New("pq: permission denied for relation profiles"),
			expected: FaultPermission,
		},
		{
			name:     "wrapped pg error",
			err:      fmt.Errorf("fetch: %w", &pgconn.PgError{Code: "42P17"}),
			expected: FaultPolicy,
		},
		{
			name:     "unrelated error",
			err:      errors.New("connection refused"),
			expected: FaultGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.expected {
				t.Errorf("Classify() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
