// Package memengine provides an in-process, in-memory implementation of the
// docmodel driver contract. It is suitable for local development and testing;
// nothing is persisted.
//
// Collections spring into existence on first write. Server-assigned document
// ids are UUIDs. Query evaluation is deterministic: without an explicit
// ordering, documents come back sorted by id. A missing field compares equal
// to nil, so soft-delete exclusion matches documents that never carried the
// field.
package memengine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docmodel/docmodel-go/docmodel/driver"
)

// Engine is an in-memory document store. The zero value is not usable; use
// NewEngine.
type Engine struct {
	mu          sync.RWMutex
	collections map[string]map[string]*document // collection path -> document id -> document
	now         func() time.Time
}

type document struct {
	data       map[string]any
	createTime time.Time
	updateTime time.Time
}

var _ driver.Store = (*Engine)(nil)

// NewEngine creates an empty in-memory store.
func NewEngine() *Engine {
	return &Engine{
		collections: make(map[string]map[string]*document),
		now:         time.Now,
	}
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
func (e *Engine) Collections(_ context.Context) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.collections))
	for path, docs := range e.collections {
		if len(docs) == 0 || strings.Contains(path, "/") {
			continue
		}
		names = append(names, path)
	}

	sort.Strings(names)

	return names, nil
}

// Wipe drops every collection, including nested ones. It is the fast path
// the test harness uses between cases.
func (e *Engine) Wipe(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.collections = make(map[string]map[string]*document)

	return nil
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
// composition is immutable as the driver contract requires.
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

func (q query) Documents(_ context.Context) ([]driver.Snapshot, error) {
	q.engine.mu.RLock()
	defer q.engine.mu.RUnlock()

	matched := make([]driver.Snapshot, 0)

	for _, path := range q.candidatePaths() {
		docs := q.engine.collections[path]

		ids := make([]string, 0, len(docs))
		for id := range docs {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			doc := docs[id]

			ok, err := q.matches(doc.data)
			if err != nil {
				return nil, err
			}

			if ok {
				matched = append(matched, &snapshot{
					ref:        &documentRef{engine: q.engine, collection: path, id: id},
					data:       deepCopyMap(doc.data),
					createTime: doc.createTime,
					updateTime: doc.updateTime,
				})
			}
		}
	}

	q.sortSnapshots(matched)

	return window(matched, q.offset, q.limit), nil
}

func (q query) candidatePaths() []string {
	if q.group == "" {
		return []string{q.path}
	}

	paths := make([]string, 0)
	for path := range q.engine.collections {
		if leafName(path) == q.group {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	return paths
}

func (q query) matches(data map[string]any) (bool, error) {
	for _, clause := range q.filters {
		ok, err := clause.matches(data)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func (q query) sortSnapshots(snapshots []driver.Snapshot) {
	if len(q.orders) == 0 {
		return
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		a := snapshots[i].Data()
		b := snapshots[j].Data()

		for _, clause := range q.orders {
			av, _ := lookupPath(a, clause.field)
			bv, _ := lookupPath(b, clause.field)

			c, ok := compareValues(av, bv)
			if !ok || c == 0 {
				continue
			}

			if clause.descending {
				return c > 0
			}

			return c < 0
		}

		return false
	})
}

func window(snapshots []driver.Snapshot, offset, limit int) []driver.Snapshot {
	if offset > 0 {
		if offset >= len(snapshots) {
			return []driver.Snapshot{}
		}
		snapshots = snapshots[offset:]
	}

	if limit > 0 && limit < len(snapshots) {
		snapshots = snapshots[:limit]
	}

	return snapshots
}

func (f filterClause) matches(data map[string]any) (bool, error) {
	fieldValue, _ := lookupPath(data, f.field)

	switch f.op {
	case driver.OpEqual:
		return equalValues(fieldValue, f.value), nil

	case driver.OpNotEqual:
		return !equalValues(fieldValue, f.value), nil

	case driver.OpIn:
		values, ok := f.value.([]any)
		if !ok {
			return false, fmt.Errorf("operator %q needs a []any value, got %T", f.op, f.value)
		}
		for _, candidate := range values {
			if equalValues(fieldValue, candidate) {
				return true, nil
			}
		}
		return false, nil

	case driver.OpArrayContains:
		list, ok := fieldValue.([]any)
		if !ok {
			return false, nil
		}
		for _, element := range list {
			if equalValues(element, f.value) {
				return true, nil
			}
		}
		return false, nil

	case driver.OpLessThan, driver.OpLessThanOrEqual, driver.OpGreaterThan, driver.OpGreaterThanOrEqual:
		c, ok := compareValues(fieldValue, f.value)
		if !ok {
			return false, nil
		}
		switch f.op {
		case driver.OpLessThan:
			return c < 0, nil
		case driver.OpLessThanOrEqual:
			return c <= 0, nil
		case driver.OpGreaterThan:
			return c > 0, nil
		default:
			return c >= 0, nil
		}

	default:
		return false, fmt.Errorf("unsupported operator %q", f.op)
	}
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

func (d *documentRef) Collections(_ context.Context) ([]string, error) {
	d.engine.mu.RLock()
	defer d.engine.mu.RUnlock()

	prefix := d.Path() + "/"
	seen := make(map[string]struct{})

	for path, docs := range d.engine.collections {
		if len(docs) == 0 || !strings.HasPrefix(path, prefix) {
			continue
		}

		remainder := strings.TrimPrefix(path, prefix)
		if !strings.Contains(remainder, "/") {
			seen[remainder] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

func (d *documentRef) Get(_ context.Context) (driver.Snapshot, error) {
	d.engine.mu.RLock()
	defer d.engine.mu.RUnlock()

	doc, ok := d.engine.collections[d.collection][d.id]
	if !ok {
		return nil, nil
	}

	return &snapshot{
		ref:        &documentRef{engine: d.engine, collection: d.collection, id: d.id},
		data:       deepCopyMap(doc.data),
		createTime: doc.createTime,
		updateTime: doc.updateTime,
	}, nil
}

func (d *documentRef) Set(_ context.Context, data map[string]any) error {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()

	now := d.engine.now()

	docs, ok := d.engine.collections[d.collection]
	if !ok {
		docs = make(map[string]*document)
		d.engine.collections[d.collection] = docs
	}

	createTime := now
	if existing, exists := docs[d.id]; exists {
		createTime = existing.createTime
	}

	docs[d.id] = &document{
		data:       resolveSentinels(deepCopyMap(data), now),
		createTime: createTime,
		updateTime: now,
	}

	return nil
}

func (d *documentRef) Update(_ context.Context, mods []driver.Mod) error {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()

	doc, ok := d.engine.collections[d.collection][d.id]
	if !ok {
		return fmt.Errorf("%w: %s", driver.ErrNotFound, d.Path())
	}

	now := d.engine.now()

	for _, mod := range mods {
		setPath(doc.data, strings.Split(mod.Path, "."), resolveValue(mod.Value, now))
	}

	doc.updateTime = now

	return nil
}

func (d *documentRef) Delete(_ context.Context) error {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()

	delete(d.engine.collections[d.collection], d.id)

	return nil
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

/***** helpers *****/

func leafName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}

	return path
}

// lookupPath resolves a dotted field path against nested maps. A missing
// field yields (nil, false).
func lookupPath(data map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")

	var current any = data
	for _, segment := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// setPath writes a value at a nested path, creating intermediate maps.
func setPath(data map[string]any, segments []string, value any) {
	for len(segments) > 1 {
		next, ok := data[segments[0]].(map[string]any)
		if !ok {
			next = make(map[string]any)
			data[segments[0]] = next
		}

		data = next
		segments = segments[1:]
	}

	data[segments[0]] = value
}

func resolveSentinels(data map[string]any, now time.Time) map[string]any {
	for field, value := range data {
		data[field] = resolveValue(value, now)
	}

	return data
}

func resolveValue(value any, now time.Time) any {
	switch v := value.(type) {
	case map[string]any:
		return resolveSentinels(v, now)
	default:
		if value == driver.ServerTimestamp {
			return now.UTC()
		}
		return value
	}
}

func deepCopyMap(data map[string]any) map[string]any {
	copied := make(map[string]any, len(data))
	for field, value := range data {
		copied[field] = deepCopyValue(value)
	}

	return copied
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return deepCopyMap(v)
	case []any:
		copied := make([]any, len(v))
		for i, element := range v {
			copied[i] = deepCopyValue(element)
		}
		return copied
	default:
		return value
	}
}

// equalValues compares across the numeric types a JSON round-trip produces;
// nil equals nil (and a missing field resolves to nil).
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if c, ok := compareValues(a, b); ok {
		return c == 0
	}

	return false
}

// compareValues orders two values when they are comparable: both numeric,
// both strings, both times, or both bools (false < true). nil sorts first.
func compareValues(a, b any) (int, bool) {
	if a == nil && b == nil {
		return 0, true
	}
	if a == nil {
		return -1, true
	}
	if b == nil {
		return 1, true
	}

	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		if !bok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}

	if at, aok := a.(time.Time); aok {
		bt, bok := b.(time.Time)
		if !bok {
			return 0, false
		}
		return at.Compare(bt), true
	}

	if ab, aok := a.(bool); aok {
		bb, bok := b.(bool)
		if !bok {
			return 0, false
		}
		switch {
		case ab == bb:
			return 0, true
		case !ab:
			return -1, true
		default:
			return 1, true
		}
	}

	return 0, false
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
