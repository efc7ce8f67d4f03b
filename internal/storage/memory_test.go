package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-segmentation/internal/dataset"
)

func sampleTable() *dataset.Table {
	return &dataset.Table{Columns: []dataset.Column{
		{Name: "CustomerID", Kind: dataset.Numeric, Nums: []float64{1, 2}},
		{Name: "CustomerSegment", Kind: dataset.Text, Strs: []string{"Low Value Customer", "High Value Customer"}},
	}}
}

func TestMemoryStoreEmpty(t *testing.T) {
	s := NewMemoryStore()

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, uuid.New(), sampleTable()))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), got)
}

func TestMemoryStoreReplaceSupersedes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, uuid.New(), sampleTable()))

	next := &dataset.Table{Columns: []dataset.Column{
		{Name: "CustomerID", Kind: dataset.Numeric, Nums: []float64{9}},
	}}
	require.NoError(t, s.Replace(ctx, uuid.New(), next))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestMemoryStoreLoadIsolatedFromCaller(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, uuid.New(), sampleTable()))

	first, err := s.Load(ctx)
	require.NoError(t, err)
	first.Columns[0].Nums[0] = 99

	second, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, second.Columns[0].Nums[0])
}
