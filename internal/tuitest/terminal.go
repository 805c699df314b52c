package tuitest

import (
	"bytes"
	"io"
)

// terminalQuery is a query a program may send to its terminal together with
// the answer a real xterm would give.
type terminalQuery struct {
	pattern  []byte
	response []byte
}

var terminalQueries = []terminalQuery{
	// cursor position
	{pattern: []byte("\x1b[6n"), response: []byte("\x1b[1;1R")},
	// primary device attributes
	{pattern: []byte("\x1b[c"), response: []byte("\x1b[?62;22c")},
	// foreground and background colour, BEL and ST terminated
	{pattern: []byte("\x1b]10;?\x07"), response: []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{pattern: []byte("\x1b]10;?\x1b\\"), response: []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{pattern: []byte("\x1b]11;?\x07"), response: []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{pattern: []byte("\x1b]11;?\x1b\\"), response: []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

// terminalResponder answers terminal queries found in the program output so
// that termenv style detection does not block.
type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 128)}
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	// sequences may span reads
	if len(tr.buf) > 256 {
		tr.buf = tr.buf[len(tr.buf)-64:]
	}
}

// answerNext replies to the earliest pending query and reports whether one
// was found.
func (tr *terminalResponder) answerNext() bool {
	first, at := -1, -1
	for i, q := range terminalQueries {
		idx := bytes.Index(tr.buf, q.pattern)
		if idx >= 0 && (at < 0 || idx < at) {
			first, at = i, idx
		}
	}
	if first < 0 {
		return false
	}
	q := terminalQueries[first]
	tr.buf = tr.buf[at+len(q.pattern):]
	_, _ = tr.w.Write(q.response)
	return true
}
