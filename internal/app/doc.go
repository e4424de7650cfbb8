// Package app is the application layer. It orchestrates the OAuth flow,
// the subscriber count fetch path, and goal handling on top of the
// credential repository and caches.
package app
