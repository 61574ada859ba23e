package catalog

import (
	"context"
	"sync/atomic"

	"github.com/dmitrijs2005/provas/internal/codec"
	"github.com/dmitrijs2005/provas/internal/logging"
	"github.com/dmitrijs2005/provas/internal/models"
)

// Reader fetches and normalizes the remote catalog. It holds no state other
// than the drop counter of the last successful fetch and is safe to retry.
type Reader struct {
	source  Source
	logger  logging.Logger
	dropped atomic.Int64
}

func NewReader(source Source, logger logging.Logger) *Reader {
	return &Reader{source: source, logger: logger.With("module", "catalog")}
}

// FetchAll issues one round trip and returns catalog records in store order.
func (r *Reader) FetchAll(ctx context.Context) ([]models.ExamRecord, error) {
	docs, err := r.source.Documents(ctx)
	if err != nil {
		return nil, err
	}

	records, dropped := codec.DecodeCatalog(docs)
	r.dropped.Store(int64(dropped))

	if dropped > 0 {
		r.logger.Warn(ctx, "catalog documents dropped", "dropped", dropped, "total", len(docs))
	}

	return records, nil
}

// Dropped reports how many documents the last successful fetch discarded.
func (r *Reader) Dropped() int {
	return int(r.dropped.Load())
}
