// Package redis is the Redis credential store: client construction with
// metrics and circuit-breaker hooks, and a credential repository keeping
// one hash per channel.
package redis
