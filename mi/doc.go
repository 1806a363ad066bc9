// Package mi implements the GDB Machine Interface record grammar.
//
// MI is the line-oriented text protocol GDB speaks when launched with
// --interpreter=mi. Each output line is one record:
//
//   - Result records ("token^class,...") report the outcome of a command.
//   - Async records ("*class,...", "+class,...", "=class,...") report
//     spontaneous execution, status, and notification changes.
//   - Stream records ("~...", "@...", "&...") carry console, target, and
//     log text for display.
//   - The literal "(gdb)" line is the end-of-output prompt.
//
// ParseLine converts one line into a typed Record. The parser is a pure
// function: no I/O, no shared state, and every malformed input maps to a
// *ParseError rather than a panic. Record payloads are modeled by the
// recursive Value type (String, Tuple, List).
//
// This package structures records; it does not interpret them. Command
// correlation, state tracking, and transport live in the parent package.
package mi
