// Package netplay carries replicated commands between game instances over
// TCP: length-prefixed frames, a compact protobuf-wire codec, and the host
// and client connection state polled once per tick.
package netplay

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxPayload is the largest frame payload in bytes.
const MaxPayload = 4096

var (
	// ErrFrameTooLarge reports a payload over MaxPayload, read or written.
	ErrFrameTooLarge = errors.New("netplay: frame too large")
	// ErrMalformed reports a payload that does not decode to a command.
	ErrMalformed = errors.New("netplay: malformed message")
)

// WriteFrame writes payload prefixed with its 2-byte big-endian length, in
// one write so concurrent frames never interleave on the wire.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayload {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	buf := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(buf, uint16(len(payload)))
	copy(buf[2:], payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one whole frame. It blocks until the frame is complete or
// the reader fails.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint16(header[:]))
	if n > MaxPayload {
		return nil, fmt.Errorf("%w: header says %d bytes", ErrFrameTooLarge, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}
