package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/provas/internal/codec"
	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/logging"
	"github.com/dmitrijs2005/provas/internal/models"
)

func staticSource(docs []codec.Document, err error) Source {
	return SourceFunc(func(ctx context.Context) ([]codec.Document, error) {
		return docs, err
	})
}

func TestReader_FetchAll_DropsIncompleteDocuments(t *testing.T) {
	docs := []codec.Document{
		{ID: "a", Fields: map[string]any{"nome": "ENEM", "data": "05/11/2024"}},
		{ID: "b", Fields: map[string]any{"nome": "Fuvest"}},
		{ID: "c", Fields: map[string]any{"nome": "Unicamp", "data": "27/10/2024", "descricao": "1a fase"}},
	}

	r := NewReader(staticSource(docs, nil), logging.Nop())

	got, err := r.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Equal(t, "1a fase", got[1].Description)
	for _, rec := range got {
		assert.Equal(t, models.OriginCatalog, rec.Origin)
	}
	assert.Equal(t, 1, r.Dropped())
}

func TestReader_FetchAll_EmptyCollection(t *testing.T) {
	r := NewReader(staticSource(nil, nil), logging.Nop())

	got, err := r.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, r.Dropped())
}

func TestReader_FetchAll_PassesSourceErrorThrough(t *testing.T) {
	wrapped := fmt.Errorf("firestore Provas: %w: %w", common.ErrNetwork, errors.New("dial tcp: i/o timeout"))

	r := NewReader(staticSource(nil, wrapped), logging.Nop())

	got, err := r.FetchAll(context.Background())
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, common.ErrNetwork)
}

func TestReader_FetchAll_FailureKeepsPreviousDropCount(t *testing.T) {
	calls := 0
	src := SourceFunc(func(ctx context.Context) ([]codec.Document, error) {
		calls++
		if calls == 1 {
			return []codec.Document{{ID: "x"}}, nil
		}
		return nil, common.ErrRemoteUnavailable
	})

	r := NewReader(src, logging.Nop())

	_, err := r.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Dropped())

	_, err = r.FetchAll(context.Background())
	require.ErrorIs(t, err, common.ErrRemoteUnavailable)
	assert.Equal(t, 1, r.Dropped())
}
