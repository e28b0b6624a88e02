// errors.go
//
// Network boot configuration manager with weighted host profiles and one-shot alias overrides
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of bootmgr.
// bootmgr is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// bootmgr is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with bootmgr.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/logger"
	"github.com/localnerve/bootmgr/internal/nodeset"
	"github.com/localnerve/bootmgr/internal/types"
)

const (
	mysqlDuplicateEntry = 1062
	pgUniqueViolation   = "23505"
	mssqlDuplicateKey   = 2627
	mssqlDuplicateIndex = 2601
)

// isUniqueViolation classifies a store error as a uniqueness conflict.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return msErr.Number == mssqlDuplicateKey || msErr.Number == mssqlDuplicateIndex
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translateError maps store failures onto the error taxonomy. Uniqueness
// conflicts become a generic 409 carrying message; the driver cause is only logged.
func translateError(err error, message string) error {
	if err == nil {
		return nil
	}

	var ce *types.CustomError
	if errors.As(err, &ce) {
		return ce
	}

	if isUniqueViolation(err) {
		logger.L().Warn("uniqueness conflict", zap.String("conflict", message), zap.Error(err))
		return types.NewConflictError(message, err)
	}

	return err
}

// expandPattern expands a host-range pattern within the configured bound.
func expandPattern(pattern string, limits Limits) ([]string, error) {
	ns, err := nodeset.ParseLimit(pattern, limits.MaxNodeset)
	if err != nil {
		if errors.Is(err, nodeset.ErrTooLarge) {
			return nil, types.NewCapacityError("Nodeset too large")
		}
		var syntaxErr *nodeset.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, types.NewValidationError("Invalid nodeset '%s': %s", pattern, syntaxErr.Reason)
		}
		return nil, err
	}
	return ns.Hosts(), nil
}

// isNotFound reports whether err is a not-found CustomError.
func isNotFound(err error) bool {
	var ce *types.CustomError
	return errors.As(err, &ce) && ce.Type == types.ErrTypeNotFound
}
