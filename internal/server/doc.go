// Package server wires the HTTP surface: OAuth start/callback, the goal
// and metric API, the overlay page, and the observability endpoints.
package server
