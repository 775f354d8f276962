// Package zymkey is a host-side client for the Zymkey hardware security module.
//
// The device holds every key. The client opens one native session, marshals
// buffers across the libzk_app_utils boundary, and turns native status codes
// into typed errors. Private-key and symmetric operations are always delegated
// to the device; only SHA-256 digests are computed on the host.
//
// # Opening a session
//
//	client, err := zymkey.Open(zymkey.NativeLibrary())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Or share the process-wide session:
//
//	client, err := zymkey.Default()
//
// # Concurrency
//
// A Client does not lock. The device is one physical resource on one bus, so
// callers sharing a Client across goroutines must serialize their calls.
//
// # Errors
//
// Every failure is an *Error whose Kind matches ErrDeviceUnavailable,
// ErrOperationFailed or ErrInvalidArgument through errors.Is.
package zymkey

import (
	"log/slog"
)

// Recorder receives the outcome of every Client method.
type Recorder interface {
	Record(operation string, err error)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for failed calls. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder sets a Recorder for every Client method.
func WithRecorder(rec Recorder) Option {
	return func(c *Client) {
		c.rec = rec
	}
}

// Client owns one native session with the device.
type Client struct {
	lib    Library
	handle Handle
	open   bool

	logger *slog.Logger
	rec    Recorder
}

// Open opens a session on lib.
func Open(lib Library, opts ...Option) (*Client, error) {
	c := &Client{
		lib:    lib,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	if lib == nil {
		return nil, c.finish("Open", unavailable("zkOpen", 0, "no native library"))
	}

	var h Handle
	if ret := lib.Open(&h); ret < 0 {
		return nil, c.finish("Open", unavailable("zkOpen", ret, ""))
	}

	c.handle = h
	c.open = true
	c.logger.Debug("zymkey session opened")
	return c, c.finish("Open", nil)
}

// Close releases the session. Closing a closed client is a no-op.
func (c *Client) Close() error {
	if c == nil || !c.open {
		return nil
	}

	h := c.handle
	c.open = false
	c.handle = nil

	err := check("zkClose", c.lib.Close(h))
	if err == nil {
		c.logger.Debug("zymkey session closed")
	}
	return c.finish("Close", err)
}

// IsOpen reports whether the session is usable.
func (c *Client) IsOpen() bool {
	return c != nil && c.open
}

// session returns the native handle, or a DeviceUnavailable error when the
// client was never opened or has been closed.
func (c *Client) session(method string) (Handle, error) {
	if c == nil || !c.open {
		return nil, unavailable(method, 0, "session is closed")
	}
	return c.handle, nil
}

// finish logs and records the outcome of method and returns err unchanged.
func (c *Client) finish(method string, err error) error {
	if c == nil {
		return err
	}
	if err != nil && c.logger != nil {
		c.logger.Debug("zymkey call failed", "method", method, "kind", KindOf(err).String(), "error", err)
	}
	if c.rec != nil {
		c.rec.Record(method, err)
	}
	return err
}
