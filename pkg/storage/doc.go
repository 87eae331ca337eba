// Package storage defines the persistence contracts of the messagely
// service and the sentinel errors shared by all implementations.
//
// Two implementations exist: storage/memory for tests and lightweight
// deployments, and storage/postgres backed by pgx. Each implementation
// is responsible for its own concurrency control; in particular, marking
// a message read must be an atomic read-modify-write.
package storage
