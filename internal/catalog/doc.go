// Package catalog reads the shared, read-only exam catalog from a remote
// document store.
//
// # Overview
//
// A Source lists every document of one collection in the order the store
// returns them. Reader performs exactly one Documents call per FetchAll,
// decodes the result with codec.DecodeCatalog and keeps the order.
//
// Sources
//
//   - FirestoreSource: Cloud Firestore collection (the mobile app's store)
//   - S3Source:       JSON objects under "<collection>/" in a bucket
//   - PostgresSource: rows of the catalog_documents table
//
// # Error Handling
//
// Every source maps its transport errors onto two sentinels from
// internal/common: ErrNetwork when the store could not be reached and
// ErrRemoteUnavailable when it answered but refused the request. A failed
// fetch is never reported as an empty catalog.
package catalog
