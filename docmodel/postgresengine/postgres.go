package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"
	"github.com/jmoiron/sqlx"

	"github.com/docmodel/docmodel-go/docmodel/driver"
	"github.com/docmodel/docmodel-go/docmodel/postgresengine/internal/adapters"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultTableName = "documents"
	dialectPostgres  = "postgres"
	colPath          = "path"
	colID            = "id"
	colData          = "data"
	colCreatedAt     = "created_at"
	colUpdatedAt     = "updated_at"
	exprServerNow    = "now()"
)

// Errors reported by the Engine. Operation failures wrap one of these
// sentinels together with the underlying cause.
var (
	// ErrNilDatabaseConnection is returned when an Engine is constructed
	// without a database handle.
	ErrNilDatabaseConnection = errors.New("nil database connection supplied")

	// ErrEmptyTableName is returned when WithTableName receives an empty name.
	ErrEmptyTableName = errors.New("empty table name supplied")

	// ErrBuildingQueryFailed is returned when a SQL statement could not be
	// assembled from the query description.
	ErrBuildingQueryFailed = errors.New("building sql statement failed")

	// ErrQueryingDocumentsFailed is returned when a select against the
	// documents table fails.
	ErrQueryingDocumentsFailed = errors.New("querying documents failed")

	// ErrScanningDBRowFailed is returned when a result row could not be
	// scanned into the document shape.
	ErrScanningDBRowFailed = errors.New("scanning database row failed")

	// ErrDecodingDocumentFailed is returned when a stored document body is
	// not valid JSON.
	ErrDecodingDocumentFailed = errors.New("decoding document body failed")

	// ErrWritingDocumentFailed is returned when an insert, update or delete
	// against the documents table fails.
	ErrWritingDocumentFailed = errors.New("writing document failed")

	// ErrGettingRowsAffectedFailed is returned when the affected-rows count of
	// a statement could not be read.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected count failed")

	// ErrUnsupportedOperator is returned when a query uses an operator the
	// engine cannot express in SQL.
	ErrUnsupportedOperator = errors.New("unsupported query operator")
)

// Engine stores documents as JSONB rows in a single Postgres table. Each row
// holds the full collection path, the document id, the document body, and the
// server-maintained create/update instants. It leverages a database adapter
// and supports customizable logging and table configuration.
type Engine struct {
	db        adapters.DBAdapter
	tableName string
	logger    Logger
}

var _ driver.Store = (*Engine)(nil)

// NewEngineFromPGXPool creates a new Engine using a pgx Pool with optional
// configuration.
func NewEngineFromPGXPool(db *pgxpool.Pool, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), options...)
}

// NewEngineFromSQLDB creates a new Engine using a sql.DB with optional
// configuration.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options...)
}

// NewEngineFromSQLX creates a new Engine using a sqlx.DB with optional
// configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options...)
}

func newEngine(db adapters.DBAdapter, options ...Option) (*Engine, error) {
	e := &Engine{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Collection returns a handle to the named collection.
func (e *Engine) Collection(name string) driver.CollectionRef {
	return &collectionRef{engine: e, path: name}
}

// CollectionGroup returns a query spanning every collection whose leaf name
// matches, at any depth.
func (e *Engine) CollectionGroup(name string) driver.Query {
	return query{engine: e, group: name}
}

// Collections enumerates the non-empty top-level collections, sorted.
func (e *Engine) Collections(ctx context.Context) ([]string, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(e.tableName).
		Select(colPath).
		Distinct().
		Where(goqu.L("position('/' in path) = 0")).
		Order(goqu.I(colPath).Asc())

	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return e.queryPaths(ctx, sqlQuery, func(path string) string { return path })
}

// Wipe removes every document row, including nested collections. It is the
// fast path the test harness uses between cases.
func (e *Engine) Wipe(ctx context.Context) error {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Delete(e.tableName).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, _, execErr := e.executeStatement(ctx, sqlQuery, logActionWipe)

	return execErr
}

// queryPaths runs a single-column path select and maps each row through
// transform, deduplicating the results.
func (e *Engine) queryPaths(ctx context.Context, sqlQuery string, transform func(string) string) ([]string, error) {
	rows, _, queryErr := e.executeQuery(ctx, sqlQuery, logActionListCollections)
	if queryErr != nil {
		return nil, queryErr
	}
	defer e.closeRows(rows)

	seen := make(map[string]struct{})
	names := make([]string, 0)

	for rows.Next() {
		var path string
		if scanErr := rows.Scan(&path); scanErr != nil {
			e.logError(logMsgScanRowFailed, scanErr)
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		name := transform(path)
		if name == "" {
			continue
		}

		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	return names, nil
}

/***** Query *****/

type filterClause struct {
	field string
	op    string
	value any
}

type orderClause struct {
	field      string
	descending bool
}

// query is a value type; every narrowing call copies the clause slices, so
// composition is immutable as the driver contract requires. Translation to
// SQL happens at Documents time, so a clause the engine cannot express
// surfaces as an error from the terminal call.
type query struct {
	engine  *Engine
	path    string // exact collection path; empty for group queries
	group   string // leaf collection name for group queries
	filters []filterClause
	orders  []orderClause
	limit   int // 0 = unlimited
	offset  int
}

var _ driver.Query = query{}

func (q query) Where(field, op string, value any) driver.Query {
	q.filters = append(append([]filterClause{}, q.filters...), filterClause{field: field, op: op, value: value})
	return q
}

func (q query) OrderBy(field string, descending bool) driver.Query {
	q.orders = append(append([]orderClause{}, q.orders...), orderClause{field: field, descending: descending})
	return q
}

func (q query) Limit(n int) driver.Query {
	q.limit = n
	return q
}

func (q query) Offset(n int) driver.Query {
	q.offset = n
	return q
}

func (q query) Documents(ctx context.Context) ([]driver.Snapshot, error) {
	sqlQuery, buildErr := q.buildSelectQuery()
	if buildErr != nil {
		q.engine.logError(logMsgBuildSelectQueryFailed, buildErr)
		return nil, buildErr
	}

	rows, duration, queryErr := q.engine.executeQuery(ctx, sqlQuery, logActionQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer q.engine.closeRows(rows)

	snapshots, scanErr := q.engine.scanSnapshots(rows)
	if scanErr != nil {
		return nil, scanErr
	}

	q.engine.logOperation(
		logMsgQueryCompleted,
		logAttrDocumentCount, len(snapshots),
		logAttrDurationMS, durationToMilliseconds(duration))

	return snapshots, nil
}

func (q query) buildSelectQuery() (string, error) {
	where := make([]goqu.Expression, 0, len(q.filters)+1)

	if q.group != "" {
		// A collection group matches every path with the given leaf name.
		where = append(where, goqu.Or(
			goqu.C(colPath).Eq(q.group),
			goqu.C(colPath).Like("%/"+q.group),
		))
	} else {
		where = append(where, goqu.C(colPath).Eq(q.path))
	}

	for _, clause := range q.filters {
		expr, exprErr := filterExpression(clause)
		if exprErr != nil {
			return "", errors.Join(ErrBuildingQueryFailed, exprErr)
		}

		where = append(where, expr)
	}

	stmt := goqu.Dialect(dialectPostgres).
		From(q.engine.tableName).
		Select(colPath, colID, colData, colCreatedAt, colUpdatedAt).
		Where(goqu.And(where...))

	if len(q.orders) == 0 {
		// Deterministic order without an explicit clause.
		stmt = stmt.Order(goqu.I(colPath).Asc(), goqu.I(colID).Asc())
	}

	for _, clause := range q.orders {
		ordered := goqu.L("data #>> ?::text[]", textArrayPath(clause.field)).Asc()
		if clause.descending {
			ordered = goqu.L("data #>> ?::text[]", textArrayPath(clause.field)).Desc()
		}

		stmt = stmt.OrderAppend(ordered)
	}

	if q.limit > 0 {
		stmt = stmt.Limit(uint(q.limit))
	}

	if q.offset > 0 {
		stmt = stmt.Offset(uint(q.offset))
	}

	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// filterExpression translates one filter clause into a JSONB predicate.
// Top-level equality uses containment so a GIN index on the data column can
// serve it; everything else extracts the field with #>.
func filterExpression(clause filterClause) (goqu.Expression, error) {
	pathArray := textArrayPath(clause.field)

	switch clause.op {
	case driver.OpEqual:
		if clause.value == nil {
			// Missing field and JSON null both count as nil.
			return goqu.L(
				"(data #> ?::text[] IS NULL OR data #> ?::text[] = 'null'::jsonb)",
				pathArray, pathArray), nil
		}

		if !strings.Contains(clause.field, ".") {
			object, marshalErr := json.Marshal(map[string]any{clause.field: clause.value})
			if marshalErr != nil {
				return nil, marshalErr
			}

			return goqu.L("data @> ?::jsonb", string(object)), nil
		}

		encoded, marshalErr := json.Marshal(clause.value)
		if marshalErr != nil {
			return nil, marshalErr
		}

		return goqu.L("data #> ?::text[] = ?::jsonb", pathArray, string(encoded)), nil

	case driver.OpNotEqual:
		if clause.value == nil {
			return goqu.L(
				"(data #> ?::text[] IS NOT NULL AND data #> ?::text[] <> 'null'::jsonb)",
				pathArray, pathArray), nil
		}

		encoded, marshalErr := json.Marshal(clause.value)
		if marshalErr != nil {
			return nil, marshalErr
		}

		return goqu.L("data #> ?::text[] IS DISTINCT FROM ?::jsonb", pathArray, string(encoded)), nil

	case driver.OpIn:
		values, ok := clause.value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q needs a []any value, got %T", ErrUnsupportedOperator, clause.op, clause.value)
		}

		if len(values) == 0 {
			return goqu.L("FALSE"), nil
		}

		alternatives := make([]goqu.Expression, 0, len(values))
		for _, candidate := range values {
			expr, exprErr := filterExpression(filterClause{field: clause.field, op: driver.OpEqual, value: candidate})
			if exprErr != nil {
				return nil, exprErr
			}

			alternatives = append(alternatives, expr)
		}

		return goqu.Or(alternatives...), nil

	case driver.OpArrayContains:
		element, marshalErr := json.Marshal([]any{clause.value})
		if marshalErr != nil {
			return nil, marshalErr
		}

		return goqu.L("data #> ?::text[] @> ?::jsonb", pathArray, string(element)), nil

	case driver.OpLessThan, driver.OpLessThanOrEqual, driver.OpGreaterThan, driver.OpGreaterThanOrEqual:
		return relationalExpression(clause, pathArray)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, clause.op)
	}
}

// relationalExpression casts the extracted field text to match the Go type of
// the comparison value, so numbers and instants compare by value rather than
// lexically.
func relationalExpression(clause filterClause, pathArray string) (goqu.Expression, error) {
	if number, ok := toFloat(clause.value); ok {
		return goqu.L("(data #>> ?::text[])::numeric "+clause.op+" ?", pathArray, number), nil
	}

	switch v := clause.value.(type) {
	case string:
		return goqu.L("data #>> ?::text[] "+clause.op+" ?", pathArray, v), nil

	case time.Time:
		return goqu.L(
			"(data #>> ?::text[])::timestamptz "+clause.op+" ?::timestamptz",
			pathArray, v.UTC().Format(time.RFC3339Nano)), nil

	default:
		return nil, fmt.Errorf("%w: %q cannot compare a %T", ErrUnsupportedOperator, clause.op, clause.value)
	}
}

// textArrayPath renders a dotted field path as a Postgres text[] literal for
// the #> and #>> operators.
func textArrayPath(field string) string {
	return "{" + strings.Join(strings.Split(field, "."), ",") + "}"
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

/***** CollectionRef *****/

type collectionRef struct {
	engine *Engine
	path   string
}

var _ driver.CollectionRef = (*collectionRef)(nil)

func (c *collectionRef) ID() string {
	return leafName(c.path)
}

func (c *collectionRef) Path() string {
	return c.path
}

func (c *collectionRef) Doc(id string) driver.DocumentRef {
	return &documentRef{engine: c.engine, collection: c.path, id: id}
}

func (c *collectionRef) NewDoc() driver.DocumentRef {
	return c.Doc(uuid.NewString())
}

func (c *collectionRef) Add(ctx context.Context, data map[string]any) (driver.DocumentRef, error) {
	ref := c.NewDoc()
	if err := ref.Set(ctx, data); err != nil {
		return nil, err
	}

	return ref, nil
}

func (c *collectionRef) baseQuery() query {
	return query{engine: c.engine, path: c.path}
}

func (c *collectionRef) Where(field, op string, value any) driver.Query {
	return c.baseQuery().Where(field, op, value)
}

func (c *collectionRef) OrderBy(field string, descending bool) driver.Query {
	return c.baseQuery().OrderBy(field, descending)
}

func (c *collectionRef) Limit(n int) driver.Query {
	return c.baseQuery().Limit(n)
}

func (c *collectionRef) Offset(n int) driver.Query {
	return c.baseQuery().Offset(n)
}

func (c *collectionRef) Documents(ctx context.Context) ([]driver.Snapshot, error) {
	return c.baseQuery().Documents(ctx)
}

/***** DocumentRef *****/

type documentRef struct {
	engine     *Engine
	collection string
	id         string
}

var _ driver.DocumentRef = (*documentRef)(nil)

func (d *documentRef) ID() string {
	return d.id
}

func (d *documentRef) Path() string {
	return d.collection + "/" + d.id
}

func (d *documentRef) Collection(name string) driver.CollectionRef {
	return &collectionRef{engine: d.engine, path: d.Path() + "/" + name}
}

func (d *documentRef) Collections(ctx context.Context) ([]string, error) {
	prefix := d.Path() + "/"

	stmt := goqu.Dialect(dialectPostgres).
		From(d.engine.tableName).
		Select(colPath).
		Distinct().
		Where(goqu.C(colPath).Like(likeEscape(prefix) + "%")).
		Order(goqu.I(colPath).Asc())

	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	// Direct sub-collections only: the remainder after the document path
	// must not descend further.
	return d.engine.queryPaths(ctx, sqlQuery, func(path string) string {
		remainder := strings.TrimPrefix(path, prefix)
		if strings.Contains(remainder, "/") {
			return ""
		}
		return remainder
	})
}

func (d *documentRef) Get(ctx context.Context) (driver.Snapshot, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(d.engine.tableName).
		Select(colPath, colID, colData, colCreatedAt, colUpdatedAt).
		Where(goqu.C(colPath).Eq(d.collection), goqu.C(colID).Eq(d.id))

	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := d.engine.executeQuery(ctx, sqlQuery, logActionGet)
	if queryErr != nil {
		return nil, queryErr
	}
	defer d.engine.closeRows(rows)

	snapshots, scanErr := d.engine.scanSnapshots(rows)
	if scanErr != nil {
		return nil, scanErr
	}

	if len(snapshots) == 0 {
		return nil, nil
	}

	return snapshots[0], nil
}

func (d *documentRef) Set(ctx context.Context, data map[string]any) error {
	dataExpr, renderErr := renderDocumentValue(data)
	if renderErr != nil {
		return errors.Join(ErrWritingDocumentFailed, renderErr)
	}

	stmt := goqu.Dialect(dialectPostgres).
		Insert(d.engine.tableName).
		Cols(colPath, colID, colData, colCreatedAt, colUpdatedAt).
		Vals(goqu.Vals{d.collection, d.id, goqu.L(dataExpr), goqu.L(exprServerNow), goqu.L(exprServerNow)}).
		OnConflict(goqu.DoUpdate(
			colPath+", "+colID,
			goqu.Record{
				colData:      goqu.L("EXCLUDED." + colData),
				colUpdatedAt: goqu.L(exprServerNow),
			},
		))

	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		d.engine.logError(logMsgBuildUpsertQueryFailed, toSQLErr, logAttrPath, d.Path())
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, _, execErr := d.engine.executeStatement(ctx, sqlQuery, logActionSet); execErr != nil {
		return execErr
	}

	d.engine.logOperation(logMsgDocumentWritten, logAttrPath, d.Path())

	return nil
}

func (d *documentRef) Update(ctx context.Context, mods []driver.Mod) error {
	chain, chainErr := buildModChain(mods)
	if chainErr != nil {
		d.engine.logError(logMsgBuildUpdateQueryFailed, chainErr, logAttrPath, d.Path())
		return errors.Join(ErrBuildingQueryFailed, chainErr)
	}

	stmt := goqu.Dialect(dialectPostgres).
		Update(d.engine.tableName).
		Set(goqu.Record{
			colData:      goqu.L(chain),
			colUpdatedAt: goqu.L(exprServerNow),
		}).
		Where(goqu.C(colPath).Eq(d.collection), goqu.C(colID).Eq(d.id))

	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		d.engine.logError(logMsgBuildUpdateQueryFailed, toSQLErr, logAttrPath, d.Path())
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, _, execErr := d.engine.executeStatement(ctx, sqlQuery, logActionUpdate)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", driver.ErrNotFound, d.Path())
	}

	d.engine.logOperation(logMsgDocumentUpdated, logAttrPath, d.Path())

	return nil
}

func (d *documentRef) Delete(ctx context.Context) error {
	stmt := goqu.Dialect(dialectPostgres).
		Delete(d.engine.tableName).
		Where(goqu.C(colPath).Eq(d.collection), goqu.C(colID).Eq(d.id))

	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, _, execErr := d.engine.executeStatement(ctx, sqlQuery, logActionDelete); execErr != nil {
		return execErr
	}

	d.engine.logOperation(logMsgDocumentDeleted, logAttrPath, d.Path())

	return nil
}

// buildModChain renders a jsonb_set chain applying the mods in order. The
// server-timestamp sentinel becomes to_jsonb(now()) so the instant is taken
// from the database clock.
func buildModChain(mods []driver.Mod) (string, error) {
	chain := colData

	for _, mod := range mods {
		var rendered string

		if mod.Value == driver.ServerTimestamp {
			rendered = "to_jsonb(" + exprServerNow + ")"
		} else if nested, ok := mod.Value.(map[string]any); ok {
			var renderErr error
			if rendered, renderErr = renderDocumentValue(nested); renderErr != nil {
				return "", renderErr
			}
		} else {
			encoded, marshalErr := json.Marshal(mod.Value)
			if marshalErr != nil {
				return "", marshalErr
			}

			rendered = quoteLiteral(string(encoded)) + "::jsonb"
		}

		chain = fmt.Sprintf("jsonb_set(%s, %s::text[], %s, true)",
			chain, quoteLiteral(textArrayPath(mod.Path)), rendered)
	}

	return chain, nil
}

// quoteLiteral renders a string as a single-quoted SQL literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// likeEscape neutralizes LIKE metacharacters in a fixed prefix.
func likeEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)

	return s
}

// renderDocumentValue renders a document body as a SQL jsonb expression.
// Server-timestamp sentinels are stripped from the encoded literal and
// reapplied as jsonb_set(..., to_jsonb(now()), true) wrappers, so the instant
// is taken from the database clock like in Update.
func renderDocumentValue(data map[string]any) (string, error) {
	stripped, stampPaths := splitSentinels(data)

	encoded, marshalErr := json.Marshal(stripped)
	if marshalErr != nil {
		return "", marshalErr
	}

	rendered := quoteLiteral(string(encoded)) + "::jsonb"
	for _, path := range stampPaths {
		rendered = fmt.Sprintf("jsonb_set(%s, %s::text[], to_jsonb(%s), true)",
			rendered, quoteLiteral(textArrayPath(path)), exprServerNow)
	}

	return rendered, nil
}

// splitSentinels returns a copy of data without the server-timestamp
// sentinels, plus the sorted dotted paths where they occurred. Nested maps
// are walked; other composite values are passed through untouched.
func splitSentinels(data map[string]any) (map[string]any, []string) {
	stripped := make(map[string]any, len(data))
	var paths []string

	for field, value := range data {
		if value == driver.ServerTimestamp {
			paths = append(paths, field)
			continue
		}

		if nested, ok := value.(map[string]any); ok {
			strippedNested, nestedPaths := splitSentinels(nested)
			stripped[field] = strippedNested
			for _, nestedPath := range nestedPaths {
				paths = append(paths, field+"."+nestedPath)
			}
			continue
		}

		stripped[field] = value
	}

	sort.Strings(paths)

	return stripped, paths
}

func leafName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}

	return path
}

/***** Snapshot *****/

type snapshot struct {
	ref        *documentRef
	data       map[string]any
	createTime time.Time
	updateTime time.Time
}

var _ driver.Snapshot = (*snapshot)(nil)

func (s *snapshot) ID() string {
	return s.ref.id
}

func (s *snapshot) CreateTime() time.Time {
	return s.createTime
}

func (s *snapshot) UpdateTime() time.Time {
	return s.updateTime
}

func (s *snapshot) Data() map[string]any {
	return s.data
}

func (s *snapshot) Ref() driver.DocumentRef {
	return s.ref
}

// scanSnapshots converts the rows of a document select into snapshots.
func (e *Engine) scanSnapshots(rows adapters.DBRows) ([]driver.Snapshot, error) {
	snapshots := make([]driver.Snapshot, 0)

	for rows.Next() {
		var (
			path       string
			id         string
			body       []byte
			createTime time.Time
			updateTime time.Time
		)

		if scanErr := rows.Scan(&path, &id, &body, &createTime, &updateTime); scanErr != nil {
			e.logError(logMsgScanRowFailed, scanErr)
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		data := make(map[string]any)
		if decodeErr := json.Unmarshal(body, &data); decodeErr != nil {
			e.logError(logMsgDecodeDocumentFailed, decodeErr, logAttrPath, path+"/"+id)
			return nil, errors.Join(ErrDecodingDocumentFailed, decodeErr)
		}

		snapshots = append(snapshots, &snapshot{
			ref:        &documentRef{engine: e, collection: path, id: id},
			data:       data,
			createTime: createTime,
			updateTime: updateTime,
		})
	}

	return snapshots, nil
}
