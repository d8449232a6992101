package docmodel_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmodel/docmodel-go/docmodel"
	"github.com/docmodel/docmodel-go/docmodel/memengine"
)

func Test_Entity_ID_ShouldFallBackToKeyAttribute(t *testing.T) {
	testCases := []struct {
		name     string
		attrs    docmodel.Row
		expected string
	}{
		{name: "string key", attrs: docmodel.Row{"id": "red"}, expected: "red"},
		{name: "numeric key is stringified", attrs: docmodel.Row{"id": 42}, expected: "42"},
		{name: "missing key", attrs: docmodel.Row{"name": "Red"}, expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entity := docmodel.NewEntity("id", tc.attrs)

			assert.Equal(t, tc.expected, entity.ID())
		})
	}
}

func Test_Entity_ID_ShouldPreferBoundDocument(t *testing.T) {
	store := memengine.NewEngine()
	ref := store.Collection("colors").Doc("bound-id")

	entity := docmodel.NewEntity("id", docmodel.Row{"id": "attr-id"})
	require.NoError(t, entity.BindDocument(ref))

	assert.Equal(t, "bound-id", entity.ID())
}

func Test_Entity_BindDocument_ShouldRejectSecondBind(t *testing.T) {
	store := memengine.NewEngine()
	first := store.Collection("colors").Doc("one")
	second := store.Collection("colors").Doc("two")

	entity := docmodel.NewEntity("id", docmodel.Row{})
	require.NoError(t, entity.BindDocument(first))

	err := entity.BindDocument(second)

	assert.ErrorIs(t, err, docmodel.ErrDocumentAlreadyBound)
	assert.Equal(t, "one", entity.ID())
}

func Test_Entity_Get_ShouldCoerceDateFields(t *testing.T) {
	testCases := []struct {
		name     string
		value    any
		expected time.Time
	}{
		{
			name:     "RFC 3339 string",
			value:    "2026-01-02T10:30:00Z",
			expected: time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "datetime string",
			value:    "2026-01-02 10:30:00",
			expected: time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "unix seconds as int",
			value:    1767349800,
			expected: time.Unix(1767349800, 0).UTC(),
		},
		{
			name:     "unix seconds as float",
			value:    float64(1767349800),
			expected: time.Unix(1767349800, 0).UTC(),
		},
		{
			name:     "time passes through",
			value:    time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC),
			expected: time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entity := docmodel.NewEntity("id", docmodel.Row{"created_at": tc.value}, "created_at")

			coerced, ok := entity.Get("created_at").(time.Time)

			require.True(t, ok)
			assert.True(t, tc.expected.Equal(coerced))
		})
	}
}

func Test_Entity_Get_ShouldLeaveUncoercibleDateValue(t *testing.T) {
	entity := docmodel.NewEntity("id", docmodel.Row{"created_at": "not a date"}, "created_at")

	assert.Equal(t, "not a date", entity.Get("created_at"))
}

func Test_Entity_Get_ShouldReturnNil_WithMissingAttribute(t *testing.T) {
	entity := docmodel.NewEntity("id", docmodel.Row{})

	assert.Nil(t, entity.Get("name"))
}

func Test_Entity_Fields_ShouldReturnCopy(t *testing.T) {
	entity := docmodel.NewEntity("id", docmodel.Row{"name": "Red"})

	fields := entity.Fields()
	fields["name"] = "Green"

	assert.Equal(t, "Red", entity.Get("name"))
}

func Test_Entity_SetAndGet_ShouldRoundTrip(t *testing.T) {
	entity := docmodel.NewEntity("id", docmodel.Row{})

	entity.Set("name", "Red")

	assert.Equal(t, "Red", entity.Get("name"))
}

func Test_Entity_Refresh_ShouldReloadStoredState(t *testing.T) {
	ctx := context.Background()
	model := newPaletteModel(t)
	ids := seedColors(t, model)

	entity, err := model.FindEntity(ctx, ids["Red"])
	require.NoError(t, err)
	require.NotNil(t, entity)

	require.NoError(t, model.Update(ctx, ids["Red"], docmodel.Row{"name": "Crimson"}))

	require.NoError(t, entity.Refresh(ctx))
	assert.Equal(t, "Crimson", entity.Get("name"))
}

func Test_Entity_Refresh_ShouldFail_WithoutBoundDocument(t *testing.T) {
	entity := docmodel.NewEntity("id", docmodel.Row{})

	err := entity.Refresh(context.Background())

	assert.ErrorIs(t, err, docmodel.ErrNoDocumentBound)
}

func Test_Entity_Refresh_ShouldFail_WithDeletedDocument(t *testing.T) {
	ctx := context.Background()
	model := newPaletteModel(t)
	ids := seedColors(t, model)

	entity, err := model.FindEntity(ctx, ids["Red"])
	require.NoError(t, err)
	require.NotNil(t, entity)

	require.NoError(t, model.Delete(ctx, ids["Red"]))

	assert.ErrorIs(t, entity.Refresh(ctx), docmodel.ErrNotFound)
}

func Test_Entity_Delete_ShouldRemoveBoundDocument(t *testing.T) {
	ctx := context.Background()
	model := newPaletteModel(t)
	ids := seedColors(t, model)

	entity, err := model.FindEntity(ctx, ids["Blue"])
	require.NoError(t, err)
	require.NotNil(t, entity)

	require.NoError(t, entity.Delete(ctx))

	row, err := model.Find(ctx, ids["Blue"])
	assert.NoError(t, err)
	assert.Nil(t, row)
}

func Test_Entity_Delete_ShouldFail_WithoutBoundDocument(t *testing.T) {
	entity := docmodel.NewEntity("id", docmodel.Row{})

	err := entity.Delete(context.Background())

	assert.ErrorIs(t, err, docmodel.ErrNoDocumentBound)
}
