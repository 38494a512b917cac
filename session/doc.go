// Package session houses implementations of core.ConversationStore.
//
// InMemoryStore is volatile and suited for tests and ephemeral servers; the
// sqlite subpackage persists conversations through gorm. Higher layers depend
// only on the core interface, so only the wiring layer decides which backend
// to instantiate.
package session
