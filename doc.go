// Package gdbmi is a client engine for the GDB Machine Interface (MI)
// protocol. It launches a debugger (or attaches to an existing MI byte
// stream), speaks the MI line protocol, and exposes a small concurrent
// API for driving a debug session.
//
// Architecture:
//
//	Session         command submission, state queries, lifecycle
//	  |
//	  +-- pendingTable   token -> waiter, one resolution per command
//	  +-- stateMachine   idle / running / stopped / exited
//	  +-- dispatch       single reader goroutine, parses and routes
//	  |
//	Transport        stdio pipes to a child debugger, or any stream
//	  |
//	mi               grammar: records and the recursive value model
//
// Commands are tagged with monotonically increasing numeric tokens, so
// replies correlate even when the debugger interleaves asynchronous
// output. Everything the debugger volunteers (stop events, console
// output, library loads) arrives on the session's event channel in wire
// order.
//
// A minimal session:
//
//	s, err := gdbmi.Start()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	go func() {
//		for ev := range s.Events() {
//			// breakpoints hit, console output, ...
//			_ = ev
//		}
//	}()
//
//	res, err := s.Send(ctx, "file-exec-and-symbols ./a.out")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if res.Class == mi.ResultError {
//		log.Fatal(res.ErrorMessage())
//	}
//
// Subpackages: mi holds the output grammar parser and value model,
// process manages debugger child processes, adapters describes how to
// launch specific debuggers.
package gdbmi
