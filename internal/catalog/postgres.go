package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/provas/internal/codec"
	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/dbx"
)

// PostgresSource reads documents from the catalog_documents table. The
// fields column holds the document body as JSONB.
type PostgresSource struct {
	db         dbx.DBTX
	collection string
}

func NewPostgresSource(db dbx.DBTX, collection string) *PostgresSource {
	if collection == "" {
		collection = common.DefaultCatalogCollection
	}
	return &PostgresSource{db: db, collection: collection}
}

func (s *PostgresSource) Documents(ctx context.Context) ([]codec.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fields FROM catalog_documents
		WHERE collection = $1
		ORDER BY position, id`, s.collection)
	if err != nil {
		return nil, mapPostgresError(s.collection, err)
	}
	defer rows.Close()

	docs := make([]codec.Document, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, mapPostgresError(s.collection, err)
		}

		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			fields = nil
		}
		docs = append(docs, codec.Document{ID: id, Fields: fields})
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(s.collection, err)
	}
	return docs, nil
}

// mapPostgresError treats authentication (class 28) and access or schema
// rejections (class 42) as a reachable store refusing the request.
func mapPostgresError(collection string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "28", "42":
			return fmt.Errorf("postgres %s: %w: %w", collection, common.ErrRemoteUnavailable, err)
		}
	}
	return fmt.Errorf("postgres %s: %w: %w", collection, common.ErrNetwork, err)
}
