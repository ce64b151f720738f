package codec

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-logr/logr"
)

// Decoder is a synchronized frame decoder reading from a byte stream.
type Decoder struct {
	log     logr.Logger
	hexDump bool // for debugging

	mu      sync.Mutex // Protects following fields and locked while reading a frame.
	rd      io.Reader  // The underlying reader.
	framer  *Framer
	readBuf []byte
	readErr error // sticky error of the underlying reader
}

// NewDecoder returns a Decoder reading frames of at most maxFrameLength bytes from r.
func NewDecoder(r io.Reader, maxFrameLength int, log logr.Logger) *Decoder {
	return &Decoder{
		rd:      r,
		framer:  NewFramer(maxFrameLength),
		readBuf: make([]byte, InitialBufferCapacity),
		log:     log.WithName("decoder"),
		hexDump: os.Getenv("HEXDUMP") == "true",
	}
}

// ReadFrame blocks until the next complete frame was received.
// The returned payload is only valid until the next call to ReadFrame.
//
// Errors of the underlying reader are returned as-is once all
// complete frames received before the error were returned.
// A malformed frame returns a *proto.MalformedPacketError.
func (d *Decoder) ReadFrame() (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for {
		frame, ok, err := d.framer.Next()
		if err != nil {
			return Frame{}, fmt.Errorf("error reading packet frame: %w", err)
		}
		if ok {
			if d.hexDump {
				fmt.Printf("frame %s\n%s", frame.ID, hex.Dump(frame.Payload))
			}
			return frame, nil
		}
		if d.readErr != nil {
			return Frame{}, d.readErr
		}
		n, err := d.rd.Read(d.readBuf)
		if n > 0 {
			d.framer.Feed(d.readBuf[:n])
		}
		if err != nil {
			d.readErr = err
		}
	}
}

// Buffered returns the number of received bytes not yet returned as frames.
func (d *Decoder) Buffered() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.framer.Buffered()
}
