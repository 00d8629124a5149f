// Command sonari-client is a reference peer for the sonari voice
// relay: it dials the server, frames captured audio outbound, and
// deframes and plays back whatever the mixer sends it.
//
// Invoked with the positional argument "test" it substitutes a silent
// frame generator for the capture device and discards whatever it
// receives, so multiple instances can run on one machine without
// fighting over the sound card.
//
// Only test mode is wired in: no real capture or playback device is
// implemented, so without the "test" argument the client exits with a
// diagnostic right after connecting.
package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/sonari-audio/sonari/internal/codec"
	"github.com/sonari-audio/sonari/internal/relay"
)

// captureDevice produces outbound audio frames; playbackDevice
// consumes inbound ones. The real microphone/speaker wrappers are an
// external collaborator — only this interface matters here.
type captureDevice interface {
	// Capture blocks until one canonical-size frame of audio is ready.
	Capture() (relay.Frame, error)
}

type playbackDevice interface {
	// Play renders one received frame. Errors are logged, never fatal.
	Play(relay.Frame) error
}

// silentCapture stands in for a microphone in test mode: it emits a
// steady stream of silent frames, one per mix period.
type silentCapture struct {
	ticker *time.Ticker
}

func newSilentCapture() *silentCapture {
	return &silentCapture{ticker: time.NewTicker(relay.MixPeriod)}
}

func (s *silentCapture) Capture() (relay.Frame, error) {
	<-s.ticker.C
	return make(relay.Frame, relay.CanonicalFrameSize), nil
}

// discardPlayback stands in for a speaker in test mode: it drops
// everything it receives.
type discardPlayback struct{}

func (discardPlayback) Play(relay.Frame) error { return nil }

func sendLoop(conn net.Conn, dev captureDevice, done <-chan struct{}) error {
	for {
		select {
		case <-done:
			return nil
		default:
		}
		frame, err := dev.Capture()
		if err != nil {
			return err
		}
		if err := codec.WriteFrame(conn, frame); err != nil {
			return err
		}
	}
}

func recvLoop(conn net.Conn, dev playbackDevice) error {
	for {
		payload, err := codec.ReadFrame(conn)
		if err != nil {
			return err
		}
		if err := dev.Play(relay.Frame(payload)); err != nil {
			log.Printf("playback error: %v", err)
		}
	}
}

func main() {
	addr := flag.String("addr", "127.0.0.1:9797", "relay server address")
	flag.Parse()

	testMode := flag.Arg(0) == "test"

	log.Printf("sonari-client connecting to %s (test mode: %v)", *addr, testMode)

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Printf("fatal: connect to %s: %v", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	var capture captureDevice
	var playback playbackDevice
	if testMode {
		capture = newSilentCapture()
		playback = discardPlayback{}
	} else {
		log.Printf("fatal: no capture/playback device wired in; run with the \"test\" argument")
		os.Exit(1)
	}

	done := make(chan struct{})
	errCh := make(chan error, 2)

	go func() {
		errCh <- sendLoop(conn, capture, done)
	}()
	go func() {
		errCh <- recvLoop(conn, playback)
	}()

	err = <-errCh
	close(done)
	_ = conn.Close()

	if err != nil && !errors.Is(err, io.EOF) {
		log.Printf("connection ended: %v", err)
		os.Exit(1)
	}
	log.Println("disconnected")
}
