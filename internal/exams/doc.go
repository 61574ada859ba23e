// Package exams is the façade the UI talks to. It owns two independent
// snapshots: the user's own collection, persisted through a local store,
// and the read-only catalog fetched from a remote document source.
//
// Reads return copies of the resident snapshot and never block. Mutations of
// the user collection are serialized, persisted first and published only
// after the medium accepted them, so a failed write leaves the previous
// snapshot in place.
package exams
