package docmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmodel/docmodel-go/docmodel"
	"github.com/docmodel/docmodel-go/docmodel/memengine"
)

func Test_NewModel_ShouldFail_WithInvalidConfiguration(t *testing.T) {
	store := memengine.NewEngine()

	testCases := []struct {
		name        string
		factoryFunc func() (*docmodel.Model, error)
		expectedErr error
	}{
		{
			name: "nil store",
			factoryFunc: func() (*docmodel.Model, error) {
				return docmodel.NewModel(nil, "colors")
			},
			expectedErr: docmodel.ErrNilStore,
		},
		{
			name: "empty collection name",
			factoryFunc: func() (*docmodel.Model, error) {
				return docmodel.NewModel(store, "")
			},
			expectedErr: docmodel.ErrEmptyCollectionName,
		},
		{
			name: "empty primary key",
			factoryFunc: func() (*docmodel.Model, error) {
				return docmodel.NewModel(store, "colors", docmodel.WithPrimaryKey(""))
			},
			expectedErr: docmodel.ErrEmptyPrimaryKey,
		},
		{
			name: "empty timestamp field names",
			factoryFunc: func() (*docmodel.Model, error) {
				return docmodel.NewModel(store, "colors", docmodel.WithTimestamps("", "updated"))
			},
			expectedErr: docmodel.ErrEmptyFieldName,
		},
		{
			name: "empty soft-delete field name",
			factoryFunc: func() (*docmodel.Model, error) {
				return docmodel.NewModel(store, "colors", docmodel.WithSoftDeletes(""))
			},
			expectedErr: docmodel.ErrEmptyFieldName,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			model, err := tc.factoryFunc()

			assert.Nil(t, model)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_NewModel_ShouldApplyDefaults(t *testing.T) {
	store := memengine.NewEngine()

	model, err := docmodel.NewModel(store, "colors")
	require.NoError(t, err)

	assert.Equal(t, "colors", model.CollectionName())
	assert.Equal(t, "id", model.PrimaryKey())
	assert.Equal(t, "colors", model.Collection().Path())
	assert.Same(t, store, model.Store())
}

func Test_NewModel_ShouldHonorPrimaryKeyOption(t *testing.T) {
	model, err := docmodel.NewModel(memengine.NewEngine(), "colors",
		docmodel.WithPrimaryKey("color_id"))
	require.NoError(t, err)

	assert.Equal(t, "color_id", model.PrimaryKey())
}

func Test_Model_Collection_ShouldReturnFreshHandle(t *testing.T) {
	model, err := docmodel.NewModel(memengine.NewEngine(), "colors")
	require.NoError(t, err)

	first := model.Collection()
	second := model.Collection()

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Path(), second.Path())
}
