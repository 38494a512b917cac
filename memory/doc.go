// Package memory implements the bounded conversation log an agent reasons over.
//
// A Memory keeps messages in causal order. When an append pushes it past its
// capacity, every system message is retained and only the most recent
// non-system messages that still fit survive, in chronological order.
package memory
