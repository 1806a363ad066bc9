// Package process manages debugger child processes.
//
// A Process wraps one spawned debugger (gdb, lldb-mi) with piped standard
// I/O, signal delivery, and exit tracking. The Supervisor tracks the
// processes a session tree owns and guarantees cleanup on shutdown:
// SIGTERM first, SIGKILL after a timeout.
//
// The package knows nothing about the MI protocol; it only provides the
// pipes and lifecycle the transport layer builds on.
package process
