// Package subgoal holds the in-memory state behind the overlay API: the
// credential cache mirroring the durable store, the per-channel goal
// tracker, and the TTL cache for subscriber counts.
//
// Goals are intentionally memory-only. They reset to the default on
// restart; only OAuth credentials survive in the durable store.
package subgoal
