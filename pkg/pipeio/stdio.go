package pipeio

import (
	"io"
	"os"

	"github.com/muesli/cancelreader"
)

// Stdio provides a ReadWriteCloser over a terminal's input and output.
// Reads use a cancelable reader when the platform supports one, so Close
// interrupts a pending read.
type Stdio struct {
	stdin            io.Reader
	cancellableStdin cancelreader.CancelReader

	stdout io.Writer
}

// NewStdio wraps in and out. nil arguments default to os.Stdin and os.Stdout.
func NewStdio(in *os.File, out io.Writer) *Stdio {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	s := &Stdio{stdin: in, stdout: out}

	cr, err := cancelreader.NewReader(in)
	if err != nil {
		return s
	}

	s.cancellableStdin = cr
	return s
}

// Read reads from stdin, using the cancelable reader if available.
func (s *Stdio) Read(p []byte) (int, error) {
	if s.cancellableStdin != nil {
		n, err := s.cancellableStdin.Read(p)
		if err == cancelreader.ErrCanceled {
			return n, io.EOF
		}
		return n, err
	}

	return s.stdin.Read(p)
}

// Write writes to stdout.
func (s *Stdio) Write(p []byte) (int, error) {
	return s.stdout.Write(p)
}

// Close cancels a pending read from stdin if possible.
func (s *Stdio) Close() error {
	if s.cancellableStdin != nil {
		s.cancellableStdin.Cancel()
	}
	return nil
}
