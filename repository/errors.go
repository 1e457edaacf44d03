package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// FaultKind buckets store failures into the categories the resolvers surface.
// NotFound is an expected, recoverable state; Policy means the row-level
// security configuration itself is broken and needs an administrator; Permission
// means this caller lacks rights to the rows; Generic is everything else.
type FaultKind int

const (
	FaultNone FaultKind = iota
	FaultNotFound
	FaultPolicy
	FaultPermission
	FaultGeneric
)

func (k FaultKind) String() string {
	switch k {
	case FaultNone:
		return "none"
	case FaultNotFound:
		return "not_found"
	case FaultPolicy:
		return "policy"
	case FaultPermission:
		return "permission"
	case FaultGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// PostgreSQL error codes that identify access-control faults. 42P17 is raised
// for a self-referential row-security policy ("infinite recursion detected in
// policy"), 42501 for insufficient privilege.
const (
	pgCodePolicyRecursion       = "42P17"
	pgCodeInsufficientPrivilege = "42501"
)

// Classify maps a store error onto a FaultKind. The mapping is stable across
// driver versions because it keys on SQLSTATE codes, falling back to message
// matching only for policy text the driver does not code distinctly.
func Classify(err error) FaultKind {
	if err == nil {
		return FaultNone
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FaultNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodePolicyRecursion:
			return FaultPolicy
		case pgCodeInsufficientPrivilege:
			return FaultPermission
		}
		if strings.Contains(pgErr.Message, "infinite recursion detected in policy") {
			return FaultPolicy
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), "permission denied") {
		return FaultPermission
	}

	return FaultGeneric
}
