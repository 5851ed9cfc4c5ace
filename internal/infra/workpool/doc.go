// Package workpool provides the worker pool that runs program calls.
//
// Cached grows on demand, reuses idle workers, and lets workers expire
// after an idle timeout. One pool is normally created per process and
// shared by every client.
package workpool
