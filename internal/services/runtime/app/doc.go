// Package app hosts one concrete runtime as a long-lived service.
//
// The Node serializes block execution behind a write lock and serves queries
// under a read lock. The Server exposes the node over an HTTP JSON API and the
// gRPC health protocol on a single listener.
package app
