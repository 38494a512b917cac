// Package runner serves conversations on top of the agent loop.
//
// Each request rebuilds a fresh agent from the messages stored for its
// conversation, runs it with the new user text and writes back what the run
// added. Stored entries are matched by their (role, content) pair, so replayed
// history is never written twice. Plans are saved after every planning run and
// can be read back with LatestPlan.
//
// A Runner allows one active run per conversation; a concurrent request on the
// same conversation fails fast with ErrConversationBusy. Different
// conversations run in parallel.
package runner
