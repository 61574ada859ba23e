package catalog

import (
	"context"

	"github.com/dmitrijs2005/provas/internal/codec"
)

// Source lists all documents of the configured collection.
type Source interface {
	Documents(ctx context.Context) ([]codec.Document, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]codec.Document, error)

func (f SourceFunc) Documents(ctx context.Context) ([]codec.Document, error) {
	return f(ctx)
}
