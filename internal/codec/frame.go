// Package codec implements the length-prefixed binary framing protocol
// used between a peer and the relay: a 4-byte big-endian unsigned
// length prefix followed by exactly that many payload bytes.
package codec

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/sonari-audio/sonari/internal/relayerr"
)

// MaxFrameSize is the largest payload ReadFrame will accept, per the
// wire protocol's defensive length cap.
const MaxFrameSize = 16 * 1024 * 1024

const lengthPrefixSize = 4

// WriteFrame writes a length-prefixed frame: a 4-byte big-endian length
// followed by payload. It loops until every byte is written, since a
// single Write on a stream socket is not guaranteed to consume the
// whole buffer.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	if err := writeAll(w, lenBuf[:]); err != nil {
		return err
	}
	return writeAll(w, payload)
}

// ReadFrame reads one length-prefixed frame, rejecting a zero or
// oversized length prefix as a protocol violation.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [lengthPrefixSize]byte
	if err := readAll(r, lenBuf[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	if length == 0 || length > MaxFrameSize {
		return nil, relayerr.New(relayerr.ProtocolViolation, "codec.ReadFrame", errBadLength)
	}

	payload := make([]byte, length)
	if err := readAll(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

var errBadLength = errors.New("length prefix out of range [1, 16MiB]")

func writeAll(w io.Writer, buf []byte) error {
	written := 0
	for written < len(buf) {
		n, err := w.Write(buf[written:])
		if n == 0 && err == nil {
			return relayerr.New(relayerr.TransportError, "codec.writeAll", io.ErrNoProgress)
		}
		written += n
		if err != nil {
			if isClosedTransport(err) {
				return relayerr.New(relayerr.TransportClosed, "codec.writeAll", err)
			}
			return relayerr.New(relayerr.TransportError, "codec.writeAll", err)
		}
	}
	return nil
}

// isClosedTransport reports whether err represents the peer side of the
// connection going away mid-write. io.EOF/io.ErrClosedPipe cover
// net.Pipe and os.Pipe; a real net.Conn instead reports a peer-closed
// write as a *net.OpError wrapping EPIPE (peer closed before we wrote)
// or ECONNRESET (peer reset the connection).
func isClosedTransport(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && (errors.Is(opErr.Err, syscall.EPIPE) || errors.Is(opErr.Err, syscall.ECONNRESET))
}

func readAll(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return relayerr.New(relayerr.TransportClosed, "codec.readAll", err)
	}
	return relayerr.New(relayerr.TransportError, "codec.readAll", err)
}
