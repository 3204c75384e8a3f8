// Package bridge drives the rover through a microcontroller that streams
// sensor frames and accepts wheel commands over a serial line.
package bridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"line-rover/rover_nav"
)

// ErrNoSample is returned while no fresh frame is available.
var ErrNoSample = errors.New("no fresh sample from bridge")

// ErrWriteFailed is returned when a command was only partly written.
var ErrWriteFailed = errors.New("short write to serial port")

// Porter is the minimal serial port the bridge needs.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// Bridge implements LineSensors, RangeFinder and WheelDriver over one port.
type Bridge struct {
	port       Porter
	clock      rover_nav.Clock
	staleAfter time.Duration
	store      frameStore
	writeMu    sync.Mutex
}

// New wraps an open port. A zero staleAfter never expires frames.
func New(port Porter, staleAfter time.Duration, clock rover_nav.Clock) *Bridge {
	return &Bridge{port: port, clock: clock, staleAfter: staleAfter}
}

// Open opens the configured serial port.
func Open(cfg rover_nav.SerialConfig, clock rover_nav.Clock) (*Bridge, error) {
	if cfg.Path == "" {
		return nil, errors.New("serial path must be set")
	}
	mode, err := OptionsFrom(cfg).SerialMode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(cfg.Path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}
	return New(port, cfg.StaleAfter.D(), clock), nil
}

// Monitor reads frames from the port until ctx is cancelled or the port fails.
func (b *Bridge) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(b.port)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-scanErrChan:
			return err

		case line, ok := <-lineChan:
			if !ok {
				return scan.Err()
			}
			b.handleLine(line)
		}
	}
}

func (b *Bridge) handleLine(line string) {
	f, ok, err := parseFrame(line)
	if err != nil {
		b.store.Reject()
		rover_nav.Logf("bridge: %v", err)
		return
	}
	if ok {
		b.store.Update(f, b.clock.Now())
	}
}

func (b *Bridge) fresh() (Frame, bool) {
	f, at, seq := b.store.Snapshot()
	if seq == 0 {
		return Frame{}, false
	}
	if b.staleAfter > 0 && b.clock.Since(at) > b.staleAfter {
		return Frame{}, false
	}
	return f, true
}

// ReadLine returns the line sensors of the latest fresh frame.
func (b *Bridge) ReadLine() (rover_nav.SensorSample, error) {
	f, ok := b.fresh()
	if !ok {
		return rover_nav.SensorSample{}, ErrNoSample
	}
	return f.Sample, nil
}

// ReadDistance returns the range of the latest fresh frame, or OutOfRange.
func (b *Bridge) ReadDistance() (rover_nav.Distance, error) {
	f, ok := b.fresh()
	if !ok {
		return rover_nav.OutOfRange, nil
	}
	return f.Distance, nil
}

// SetWheel sends one wheel command.
func (b *Bridge) SetWheel(w rover_nav.Wheel, forward bool, duty uint8) error {
	cmd := wheelCommand(w, forward, duty)
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	n, err := b.port.Write([]byte(cmd))
	if err != nil {
		return err
	}
	if n != len(cmd) {
		return ErrWriteFailed
	}
	return nil
}

// Frames returns the number of accepted and rejected sample lines.
func (b *Bridge) Frames() (good, bad uint64) {
	return b.store.Counts()
}

// Close closes the port.
func (b *Bridge) Close() error {
	return b.port.Close()
}
