package gdbmi

import (
	"bufio"
	"io"
	"sync"

	"github.com/dshills/gdbmi/process"
)

// Transport carries MI text between the engine and a debugger. WriteLine
// sends one command line, ReadLine blocks for the next output line.
// Implementations must support one concurrent reader and serialized
// writers.
type Transport interface {
	WriteLine(line string) error
	ReadLine() (string, error)
	Close() error
}

// StdioTransport communicates with a debugger child process over its
// stdin and stdout pipes.
type StdioTransport struct {
	proc    *process.Process
	reader  *bufio.Reader
	writeMu sync.Mutex
}

// NewStdioTransport creates a transport over a started debugger process.
func NewStdioTransport(proc *process.Process) *StdioTransport {
	return &StdioTransport{
		proc:   proc,
		reader: bufio.NewReader(proc.Stdout),
	}
}

// WriteLine writes one command line followed by a newline.
func (t *StdioTransport) WriteLine(line string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, err := t.proc.Stdin.Write(append([]byte(line), '\n'))
	return err
}

// ReadLine returns the next output line without its trailing newline.
func (t *StdioTransport) ReadLine() (string, error) {
	return readLine(t.reader)
}

// Close closes the process pipes, unblocking any pending ReadLine.
func (t *StdioTransport) Close() error {
	return t.proc.Close()
}

// RawTransport communicates over an arbitrary byte stream, such as a
// socket to a remote debugger or an in-memory pipe in tests.
type RawTransport struct {
	rwc     io.ReadWriteCloser
	reader  *bufio.Reader
	writeMu sync.Mutex
}

// NewRawTransport creates a transport over rwc.
func NewRawTransport(rwc io.ReadWriteCloser) *RawTransport {
	return &RawTransport{
		rwc:    rwc,
		reader: bufio.NewReader(rwc),
	}
}

// WriteLine writes one command line followed by a newline.
func (t *RawTransport) WriteLine(line string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, err := t.rwc.Write(append([]byte(line), '\n'))
	return err
}

// ReadLine returns the next line without its trailing newline.
func (t *RawTransport) ReadLine() (string, error) {
	return readLine(t.reader)
}

// Close closes the underlying stream.
func (t *RawTransport) Close() error {
	return t.rwc.Close()
}

// readLine reads one newline-terminated line, stripping the EOL. A
// final unterminated line is returned before EOF is reported.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if len(line) > 0 {
			return trimEOL(line), nil
		}
		return "", err
	}
	return trimEOL(line), nil
}

func trimEOL(line string) string {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
