package memengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmodel/docmodel-go/docmodel/driver"
	"github.com/docmodel/docmodel-go/docmodel/memengine"
)

func Test_DocumentRef_Get_ShouldReturnNilSnapshot_WithMissingDocument(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()

	snapshot, err := engine.Collection("users").Doc("missing").Get(ctx)

	assert.NoError(t, err)
	assert.Nil(t, snapshot)
}

func Test_DocumentRef_SetAndGet_ShouldRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	ref := engine.Collection("users").Doc("u1")

	require.NoError(t, ref.Set(ctx, map[string]any{"name": "Ada", "age": 36}))

	snapshot, err := ref.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Equal(t, "u1", snapshot.ID())
	assert.Equal(t, "Ada", snapshot.Data()["name"])
	assert.Equal(t, 36, snapshot.Data()["age"])
	assert.False(t, snapshot.CreateTime().IsZero())
	assert.False(t, snapshot.UpdateTime().IsZero())
}

func Test_DocumentRef_Set_ShouldPreserveCreateTime_OnOverwrite(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	ref := engine.Collection("users").Doc("u1")

	require.NoError(t, ref.Set(ctx, map[string]any{"name": "Ada"}))

	first, err := ref.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	require.NoError(t, ref.Set(ctx, map[string]any{"name": "Grace"}))

	second, err := ref.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, "Grace", second.Data()["name"])
	assert.True(t, first.CreateTime().Equal(second.CreateTime()))
}

func Test_DocumentRef_Set_ShouldNotAliasCallerMap(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	ref := engine.Collection("users").Doc("u1")

	data := map[string]any{"name": "Ada"}
	require.NoError(t, ref.Set(ctx, data))

	data["name"] = "mutated"

	snapshot, err := ref.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Equal(t, "Ada", snapshot.Data()["name"])
}

func Test_DocumentRef_Update_ShouldChangeOnlyNamedPaths(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	ref := engine.Collection("users").Doc("u1")

	require.NoError(t, ref.Set(ctx, map[string]any{"name": "Ada", "age": 36}))

	err := ref.Update(ctx, []driver.Mod{{Path: "age", Value: 37}})
	require.NoError(t, err)

	snapshot, err := ref.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Equal(t, "Ada", snapshot.Data()["name"])
	assert.Equal(t, 37, snapshot.Data()["age"])
}

func Test_DocumentRef_Update_ShouldWriteNestedPaths(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	ref := engine.Collection("users").Doc("u1")

	require.NoError(t, ref.Set(ctx, map[string]any{"name": "Ada"}))

	err := ref.Update(ctx, []driver.Mod{{Path: "address.city", Value: "London"}})
	require.NoError(t, err)

	snapshot, err := ref.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	address, ok := snapshot.Data()["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "London", address["city"])
}

func Test_DocumentRef_Update_ShouldFail_WithMissingDocument(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()

	err := engine.Collection("users").Doc("missing").Update(ctx, []driver.Mod{{Path: "age", Value: 1}})

	assert.ErrorIs(t, err, driver.ErrNotFound)
}

func Test_DocumentRef_Update_ShouldResolveServerTimestamp(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	ref := engine.Collection("users").Doc("u1")

	require.NoError(t, ref.Set(ctx, map[string]any{"name": "Ada"}))

	before := time.Now().Add(-time.Second)
	err := ref.Update(ctx, []driver.Mod{{Path: "seen_at", Value: driver.ServerTimestamp}})
	require.NoError(t, err)

	snapshot, err := ref.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	seenAt, ok := snapshot.Data()["seen_at"].(time.Time)
	require.True(t, ok)
	assert.True(t, seenAt.After(before))
}

func Test_DocumentRef_Delete_ShouldBeIdempotent(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	ref := engine.Collection("users").Doc("u1")

	require.NoError(t, ref.Set(ctx, map[string]any{"name": "Ada"}))

	assert.NoError(t, ref.Delete(ctx))
	assert.NoError(t, ref.Delete(ctx))

	snapshot, err := ref.Get(ctx)
	assert.NoError(t, err)
	assert.Nil(t, snapshot)
}

func Test_CollectionRef_Add_ShouldAssignDistinctIDs(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	users := engine.Collection("users")

	first, err := users.Add(ctx, map[string]any{"name": "Ada"})
	require.NoError(t, err)

	second, err := users.Add(ctx, map[string]any{"name": "Grace"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID())
	assert.NotEmpty(t, second.ID())
	assert.NotEqual(t, first.ID(), second.ID())
}

func Test_Query_Where_ShouldFilter(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	users := engine.Collection("users")

	require.NoError(t, users.Doc("u1").Set(ctx, map[string]any{"name": "Ada", "age": 36, "tags": []any{"math", "code"}}))
	require.NoError(t, users.Doc("u2").Set(ctx, map[string]any{"name": "Grace", "age": 45, "tags": []any{"code"}}))
	require.NoError(t, users.Doc("u3").Set(ctx, map[string]any{"name": "Alan", "age": 41}))

	testCases := []struct {
		name        string
		field       string
		op          string
		value       any
		expectedIDs []string
	}{
		{name: "equality", field: "name", op: driver.OpEqual, value: "Ada", expectedIDs: []string{"u1"}},
		{name: "equality against nil matches missing field", field: "tags", op: driver.OpEqual, value: nil, expectedIDs: []string{"u3"}},
		{name: "not equal", field: "name", op: driver.OpNotEqual, value: "Ada", expectedIDs: []string{"u2", "u3"}},
		{name: "less than", field: "age", op: driver.OpLessThan, value: 41, expectedIDs: []string{"u1"}},
		{name: "less than or equal", field: "age", op: driver.OpLessThanOrEqual, value: 41, expectedIDs: []string{"u1", "u3"}},
		{name: "greater than", field: "age", op: driver.OpGreaterThan, value: 41, expectedIDs: []string{"u2"}},
		{name: "greater than or equal", field: "age", op: driver.OpGreaterThanOrEqual, value: 41, expectedIDs: []string{"u2", "u3"}},
		{name: "in", field: "name", op: driver.OpIn, value: []any{"Ada", "Alan"}, expectedIDs: []string{"u1", "u3"}},
		{name: "array contains", field: "tags", op: driver.OpArrayContains, value: "math", expectedIDs: []string{"u1"}},
		{name: "numeric comparison across int widths", field: "age", op: driver.OpEqual, value: int64(36), expectedIDs: []string{"u1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snapshots, err := users.Where(tc.field, tc.op, tc.value).Documents(ctx)
			require.NoError(t, err)

			ids := make([]string, 0, len(snapshots))
			for _, snapshot := range snapshots {
				ids = append(ids, snapshot.ID())
			}

			assert.ElementsMatch(t, tc.expectedIDs, ids)
		})
	}
}

func Test_Query_Where_ShouldFail_WithUnsupportedOperator(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	users := engine.Collection("users")

	require.NoError(t, users.Doc("u1").Set(ctx, map[string]any{"name": "Ada"}))

	_, err := users.Where("name", "~=", "Ada").Documents(ctx)

	assert.Error(t, err)
}

func Test_Query_OrderLimitOffset_ShouldWindowDeterministically(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	users := engine.Collection("users")

	require.NoError(t, users.Doc("u1").Set(ctx, map[string]any{"age": 36}))
	require.NoError(t, users.Doc("u2").Set(ctx, map[string]any{"age": 45}))
	require.NoError(t, users.Doc("u3").Set(ctx, map[string]any{"age": 41}))

	snapshots, err := users.OrderBy("age", true).Offset(1).Limit(1).Documents(ctx)
	require.NoError(t, err)

	require.Len(t, snapshots, 1)
	assert.Equal(t, "u3", snapshots[0].ID())
}

func Test_Query_ShouldBeImmutable(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	users := engine.Collection("users")

	require.NoError(t, users.Doc("u1").Set(ctx, map[string]any{"name": "Ada"}))
	require.NoError(t, users.Doc("u2").Set(ctx, map[string]any{"name": "Grace"}))

	base := users.Where("name", driver.OpNotEqual, "")
	narrowed := base.Where("name", driver.OpEqual, "Ada")

	baseSnapshots, err := base.Documents(ctx)
	require.NoError(t, err)

	narrowedSnapshots, err := narrowed.Documents(ctx)
	require.NoError(t, err)

	assert.Len(t, baseSnapshots, 2)
	assert.Len(t, narrowedSnapshots, 1)
}

func Test_CollectionGroup_ShouldSpanNestedCollections(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()

	require.NoError(t, engine.Collection("orders").Doc("o1").Set(ctx, map[string]any{"total": 10}))

	nested := engine.Collection("users").Doc("u1").Collection("orders")
	require.NoError(t, nested.Doc("o2").Set(ctx, map[string]any{"total": 20}))

	snapshots, err := engine.CollectionGroup("orders").Documents(ctx)
	require.NoError(t, err)

	assert.Len(t, snapshots, 2)
}

func Test_Collections_ShouldListTopLevelOnly(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()

	require.NoError(t, engine.Collection("users").Doc("u1").Set(ctx, map[string]any{"name": "Ada"}))
	require.NoError(t, engine.Collection("colors").Doc("c1").Set(ctx, map[string]any{"name": "Red"}))
	require.NoError(t, engine.Collection("users").Doc("u1").Collection("orders").Doc("o1").Set(ctx, map[string]any{"total": 10}))

	names, err := engine.Collections(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"colors", "users"}, names)
}

func Test_DocumentRef_Collections_ShouldListDirectSubCollections(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	user := engine.Collection("users").Doc("u1")

	require.NoError(t, user.Collection("orders").Doc("o1").Set(ctx, map[string]any{"total": 10}))
	require.NoError(t, user.Collection("carts").Doc("c1").Set(ctx, map[string]any{"items": 2}))
	require.NoError(t, user.Collection("orders").Doc("o1").Collection("lines").Doc("l1").Set(ctx, map[string]any{"sku": "x"}))

	names, err := user.Collections(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"carts", "orders"}, names)
}

func Test_Wipe_ShouldDropEverything(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()

	require.NoError(t, engine.Collection("users").Doc("u1").Set(ctx, map[string]any{"name": "Ada"}))
	require.NoError(t, engine.Collection("users").Doc("u1").Collection("orders").Doc("o1").Set(ctx, map[string]any{"total": 10}))

	require.NoError(t, engine.Wipe(ctx))

	names, err := engine.Collections(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	snapshot, err := engine.Collection("users").Doc("u1").Get(ctx)
	assert.NoError(t, err)
	assert.Nil(t, snapshot)
}

func Test_Snapshot_Data_ShouldBeCallerOwned(t *testing.T) {
	ctx := context.Background()
	engine := memengine.NewEngine()
	ref := engine.Collection("users").Doc("u1")

	require.NoError(t, ref.Set(ctx, map[string]any{"name": "Ada"}))

	snapshot, err := ref.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	snapshot.Data()["name"] = "mutated"

	fresh, err := ref.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, fresh)

	assert.Equal(t, "Ada", fresh.Data()["name"])
}
