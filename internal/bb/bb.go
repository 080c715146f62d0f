// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bb is a separate package so it can be imported by package
// transport while being internal and exported so cmp.Diff() isn't unhappy.
package bb

import (
	"errors"
	"fmt"
	"io"
)

// ResponseBuffer holds one provider response body in memory so it can be
// decoded twice: once as the common case (a JSON object), and, if that
// fails, rewound and retried as a bare top-level JSON array, which a
// handful of providers answer with instead.
type ResponseBuffer struct {
	Data []byte
	Pos  int
}

// NewResponseBuffer wraps raw for a decode/rewind/re-decode cycle.
func NewResponseBuffer(raw []byte) *ResponseBuffer {
	return &ResponseBuffer{Data: raw}
}

func (b *ResponseBuffer) Read(p []byte) (int, error) {
	n := copy(p, b.Data[b.Pos:])
	if n == 0 {
		return 0, io.EOF
	}
	b.Pos += n
	return n, nil
}

// Seek implements io.Seeker so json.Decoder can be rewound to the start of
// Data after a failed decode attempt.
func (b *ResponseBuffer) Seek(offset int64, whence int) (int64, error) {
	var p int64
	if whence == io.SeekCurrent {
		offset += int64(b.Pos)
		whence = io.SeekStart
	}
	switch whence {
	case io.SeekEnd:
		offset = int64(len(b.Data)) + offset
		fallthrough
	case io.SeekStart:
		if offset < 0 || offset > int64(len(b.Data)) {
			return p, errors.New("bb: seek out of bounds")
		}
		p = offset
		b.Pos = int(p)
	default:
		return p, fmt.Errorf("bb: unknown whence %d", whence)
	}
	return p, nil
}

func (b *ResponseBuffer) Write(p []byte) (int, error) {
	b.Data = append(b.Data, p...)
	return len(p), nil
}
