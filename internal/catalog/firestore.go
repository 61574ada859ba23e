package catalog

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/provas/internal/codec"
	"github.com/dmitrijs2005/provas/internal/common"
)

// FirestoreSource lists a Cloud Firestore collection. The client honors
// FIRESTORE_EMULATOR_HOST, which is how tests and local runs reach it.
type FirestoreSource struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreClient connects to projectID. credentialsFile may be empty to
// use application default credentials.
func NewFirestoreClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

func NewFirestoreSource(client *firestore.Client, collection string) *FirestoreSource {
	if collection == "" {
		collection = common.DefaultCatalogCollection
	}
	return &FirestoreSource{client: client, collection: collection}
}

func (s *FirestoreSource) Documents(ctx context.Context) ([]codec.Document, error) {
	snaps, err := s.client.Collection(s.collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapFirestoreError(s.collection, err)
	}

	docs := make([]codec.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, codec.Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}

func (s *FirestoreSource) Close() error {
	return s.client.Close()
}

// mapFirestoreError translates gRPC status codes. A status the server chose
// to send means the store was reached; everything else is transport.
func mapFirestoreError(collection string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("firestore %s: %w: %w", collection, common.ErrNetwork, err)
	}

	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated, codes.NotFound,
		codes.FailedPrecondition, codes.InvalidArgument:
		return fmt.Errorf("firestore %s: %w: %w", collection, common.ErrRemoteUnavailable, err)
	default:
		return fmt.Errorf("firestore %s: %w: %w", collection, common.ErrNetwork, err)
	}
}
