/*
Package session implements playthrough session management and persistence
orchestration.

It provides high-level abstractions for handling concurrent access to stored
sessions across multiple replicas, combining per-session in-process locks
with optional distributed locking and a pluggable storage adapter.
*/
package session
