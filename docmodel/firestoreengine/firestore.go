// Package firestoreengine adapts the Cloud Firestore client to the docmodel
// driver contract.
//
// The adaptation is thin: Firestore already provides immutable query
// composition, collection groups, server-assigned ids, per-document
// create/update instants and a server-timestamp sentinel, so most calls
// translate one to one. The one semantic adjustment is single-document reads:
// Firestore reports a missing document through a NotFound status, which is
// mapped onto the driver contract's (nil, nil).
package firestoreengine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/docmodel/docmodel-go/docmodel/driver"
)

var (
	// ErrNilClient is returned when an Engine is constructed without a
	// Firestore client.
	ErrNilClient = errors.New("nil firestore client supplied")

	// ErrNoEmulator is returned by Wipe when the engine was not configured
	// with an emulator endpoint. Wiping a real project is never implicit.
	ErrNoEmulator = errors.New("no emulator configured, refusing to wipe")

	// ErrEmptyEmulatorConfig is returned when WithEmulator receives an empty
	// host or project id.
	ErrEmptyEmulatorConfig = errors.New("empty emulator host or project id supplied")
)

// Engine implements the driver contract on a *firestore.Client.
type Engine struct {
	client       *firestore.Client
	emulatorHost string
	projectID    string
	httpClient   *http.Client
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// WithEmulator records the Firestore emulator endpoint, enabling the
// harness-level Wipe that resets the emulator's whole document tree in one
// HTTP call.
func WithEmulator(host, projectID string) Option {
	return func(e *Engine) error {
		if host == "" || projectID == "" {
			return ErrEmptyEmulatorConfig
		}

		e.emulatorHost = host
		e.projectID = projectID

		return nil
	}
}

// WithHTTPClient sets the HTTP client used for emulator calls.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Engine) error {
		e.httpClient = client
		return nil
	}
}

var _ driver.Store = (*Engine)(nil)

// NewEngine creates an Engine backed by the given Firestore client with
// optional configuration.
func NewEngine(client *firestore.Client, options ...Option) (*Engine, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	e := &Engine{
		client:     client,
		httpClient: http.DefaultClient,
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
	return collectionRef{col: e.client.Collection(name)}
}

// CollectionGroup returns a query spanning the collection name at any depth.
func (e *Engine) CollectionGroup(name string) driver.Query {
	return query{q: e.client.CollectionGroup(name).Query}
}

// Collections enumerates the top-level collections.
func (e *Engine) Collections(ctx context.Context) ([]string, error) {
	it := e.client.Collections(ctx)

	names := make([]string, 0)
	for {
		col, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		names = append(names, col.ID)
	}

	return names, nil
}

// Wipe clears the emulator's document tree through its reset endpoint. It
// fails with ErrNoEmulator unless the engine was built WithEmulator.
func (e *Engine) Wipe(ctx context.Context) error {
	if e.emulatorHost == "" {
		return ErrNoEmulator
	}

	url := fmt.Sprintf("http://%s/emulator/v1/projects/%s/databases/(default)/documents",
		e.emulatorHost, e.projectID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("emulator wipe failed with status %s", resp.Status)
	}

	return nil
}

/***** Query *****/

type query struct {
	q firestore.Query
}

var _ driver.Query = query{}

func (q query) Where(field, op string, value any) driver.Query {
	// The driver operator vocabulary is Firestore's own.
	return query{q: q.q.Where(field, op, value)}
}

func (q query) OrderBy(field string, descending bool) driver.Query {
	direction := firestore.Asc
	if descending {
		direction = firestore.Desc
	}

	return query{q: q.q.OrderBy(field, direction)}
}

func (q query) Limit(n int) driver.Query {
	return query{q: q.q.Limit(n)}
}

func (q query) Offset(n int) driver.Query {
	return query{q: q.q.Offset(n)}
}

func (q query) Documents(ctx context.Context) ([]driver.Snapshot, error) {
	snaps, err := q.q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	out := make([]driver.Snapshot, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, snapshot{snap: snap})
	}

	return out, nil
}

/***** CollectionRef *****/

type collectionRef struct {
	col *firestore.CollectionRef
}

var _ driver.CollectionRef = collectionRef{}

func (c collectionRef) ID() string {
	return c.col.ID
}

func (c collectionRef) Path() string {
	return c.col.Path
}

func (c collectionRef) Doc(id string) driver.DocumentRef {
	return documentRef{doc: c.col.Doc(id)}
}

func (c collectionRef) NewDoc() driver.DocumentRef {
	return documentRef{doc: c.col.NewDoc()}
}

func (c collectionRef) Add(ctx context.Context, data map[string]any) (driver.DocumentRef, error) {
	ref, _, err := c.col.Add(ctx, resolveSentinelMap(data))
	if err != nil {
		return nil, err
	}

	return documentRef{doc: ref}, nil
}

func (c collectionRef) Where(field, op string, value any) driver.Query {
	return query{q: c.col.Query}.Where(field, op, value)
}

func (c collectionRef) OrderBy(field string, descending bool) driver.Query {
	return query{q: c.col.Query}.OrderBy(field, descending)
}

func (c collectionRef) Limit(n int) driver.Query {
	return query{q: c.col.Query}.Limit(n)
}

func (c collectionRef) Offset(n int) driver.Query {
	return query{q: c.col.Query}.Offset(n)
}

func (c collectionRef) Documents(ctx context.Context) ([]driver.Snapshot, error) {
	return query{q: c.col.Query}.Documents(ctx)
}

/***** DocumentRef *****/

type documentRef struct {
	doc *firestore.DocumentRef
}

var _ driver.DocumentRef = documentRef{}

func (d documentRef) ID() string {
	return d.doc.ID
}

func (d documentRef) Path() string {
	return d.doc.Path
}

func (d documentRef) Collection(name string) driver.CollectionRef {
	return collectionRef{col: d.doc.Collection(name)}
}

func (d documentRef) Collections(ctx context.Context) ([]string, error) {
	it := d.doc.Collections(ctx)

	names := make([]string, 0)
	for {
		col, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		names = append(names, col.ID)
	}

	return names, nil
}

func (d documentRef) Get(ctx context.Context) (driver.Snapshot, error) {
	snap, err := d.doc.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return snapshot{snap: snap}, nil
}

func (d documentRef) Set(ctx context.Context, data map[string]any) error {
	_, err := d.doc.Set(ctx, resolveSentinelMap(data))
	return err
}

func (d documentRef) Update(ctx context.Context, mods []driver.Mod) error {
	updates := make([]firestore.Update, 0, len(mods))
	for _, mod := range mods {
		updates = append(updates, firestore.Update{
			Path:  mod.Path,
			Value: resolveSentinelValue(mod.Value),
		})
	}

	_, err := d.doc.Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s", driver.ErrNotFound, d.doc.Path)
	}

	return err
}

func (d documentRef) Delete(ctx context.Context) error {
	_, err := d.doc.Delete(ctx)
	return err
}

/***** Snapshot *****/

type snapshot struct {
	snap *firestore.DocumentSnapshot
}

var _ driver.Snapshot = snapshot{}

func (s snapshot) ID() string {
	return s.snap.Ref.ID
}

func (s snapshot) CreateTime() time.Time {
	return s.snap.CreateTime
}

func (s snapshot) UpdateTime() time.Time {
	return s.snap.UpdateTime
}

func (s snapshot) Data() map[string]any {
	return s.snap.Data()
}

func (s snapshot) Ref() driver.DocumentRef {
	return documentRef{doc: s.snap.Ref}
}

/***** sentinel translation *****/

func resolveSentinelMap(data map[string]any) map[string]any {
	resolved := make(map[string]any, len(data))
	for field, value := range data {
		resolved[field] = resolveSentinelValue(value)
	}

	return resolved
}

func resolveSentinelValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return resolveSentinelMap(v)
	default:
		if value == driver.ServerTimestamp {
			return firestore.ServerTimestamp
		}
		return value
	}
}
