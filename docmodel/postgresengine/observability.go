package postgresengine

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/docmodel/docmodel-go/docmodel/postgresengine/internal/adapters"
)

const (
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildUpsertQueryFailed = "failed to build upsert statement"
	logMsgBuildUpdateQueryFailed = "failed to build update statement"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database statement execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgDecodeDocumentFailed   = "failed to decode document body"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgQueryCompleted         = "query completed"
	logMsgDocumentWritten        = "document written"
	logMsgDocumentUpdated        = "document updated"
	logMsgDocumentDeleted        = "document deleted"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "document store operation: "

	logAttrError         = "error"
	logAttrQuery         = "query"
	logAttrPath          = "path"
	logAttrDocumentCount = "document_count"
	logAttrDurationMS    = "duration_ms"

	logActionQuery           = "query"
	logActionGet             = "get"
	logActionSet             = "set"
	logActionUpdate          = "update"
	logActionDelete          = "delete"
	logActionWipe            = "wipe"
	logActionListCollections = "list collections"
)

// executeQuery executes a SQL query and returns rows with timing information.
func (e *Engine) executeQuery(ctx context.Context, sqlQuery, action string) (
	adapters.DBRows,
	time.Duration,
	error,
) {

	start := time.Now()
	rows, queryErr := e.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	e.logQueryWithDuration(sqlQuery, action, duration)

	if queryErr != nil {
		e.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, duration, errors.Join(ErrQueryingDocumentsFailed, queryErr)
	}

	return rows, duration, nil
}

// executeStatement executes a SQL statement and returns the affected-rows
// count with timing information.
func (e *Engine) executeStatement(ctx context.Context, sqlQuery, action string) (
	int64,
	time.Duration,
	error,
) {

	start := time.Now()
	result, execErr := e.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	e.logQueryWithDuration(sqlQuery, action, duration)

	if execErr != nil {
		e.logError(logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return 0, duration, errors.Join(ErrWritingDocumentFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		e.logError(logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, duration, errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (e *Engine) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if e.logger != nil {
			e.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// logQueryWithDuration logs SQL statements with execution time at debug level
// if the logger is configured.
func (e *Engine) logQueryWithDuration(sqlQuery, action string, duration time.Duration) {
	if e.logger != nil {
		e.logger.Debug(logMsgSQLExecuted+action,
			logAttrDurationMS, durationToMilliseconds(duration),
			logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is
// configured.
func (e *Engine) logOperation(action string, args ...any) {
	if e.logger != nil {
		e.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs a failure at error level if the logger is configured.
func (e *Engine) logError(msg string, err error, args ...any) {
	if e.logger != nil {
		e.logger.Error(msg, append([]any{logAttrError, err.Error()}, args...)...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds
// with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
