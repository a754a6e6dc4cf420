// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package carlink owns the byte-stream connection to the car and provides a
// blocking request/response primitive on top of it.
package carlink

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/hashicorp/go-hclog"
)

// Default timeouts
const (
	DefaultDialTimeout      = 10 * time.Second
	DefaultHandshakeTimeout = 5 * time.Second
	DefaultTimeout          = 5 * time.Second
)

const readChunkSize = 1024

// Options configures a Link.
type Options struct {
	// Timeout bounds each round trip. Zero disables the deadline.
	Timeout          time.Duration
	DialTimeout      time.Duration
	HandshakeTimeout time.Duration
	Logger           hclog.Logger
}

func (o Options) withDefaults() Options {
	if o.DialTimeout == 0 {
		o.DialTimeout = DefaultDialTimeout
	}
	if o.HandshakeTimeout == 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}
	return o
}

// deadliner is implemented by net.Conn, *websocket.Conn and the serial
// adapter in cmd.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// Link is one persistent connection to the vehicle. It is not safe for
// concurrent use: exactly one round trip may be outstanding.
type Link struct {
	conn     io.ReadWriteCloser
	addr     string
	opts     Options
	logger   hclog.Logger
	seq      uint64
	greeting string
	buf      []byte
}

// Dial connects to the vehicle over TCP and consumes the greeting.
func Dial(ctx context.Context, addr string, opts Options) (*Link, error) {
	opts = opts.withDefaults()

	dialer := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Err: err}
	}

	l := New(conn, addr, opts)
	if err := l.Handshake(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return l, nil
}

// New wraps an already open connection. addr is only used in messages.
func New(conn io.ReadWriteCloser, addr string, opts Options) *Link {
	opts = opts.withDefaults()
	return &Link{
		conn:   conn,
		addr:   addr,
		opts:   opts,
		logger: opts.Logger.Named("link"),
	}
}

// Handshake reads and discards the greeting the car sends after connect.
func (l *Link) Handshake(ctx context.Context) error {
	chunk := make([]byte, readChunkSize)
	n, err := l.read(ctx, chunk, l.opts.HandshakeTimeout)
	if err != nil {
		return &ConnectionError{Addr: l.addr, Err: err}
	}
	l.greeting = strings.TrimSpace(string(chunk[:n]))
	l.logger.Debug("greeting received", "addr", l.addr, "greeting", l.greeting)
	return nil
}

// Greeting returns the text read by Handshake.
func (l *Link) Greeting() string {
	return l.greeting
}

// Addr returns the address or description of the peer.
func (l *Link) Addr() string {
	return l.addr
}

// NextSeq returns the next sequence number, starting at 1.
func (l *Link) NextSeq() uint64 {
	l.seq++
	return l.seq
}

// RoundTrip sends msg and blocks until a complete response frame arrives. It
// returns the payload between the frame delimiter and the closing brace.
func (l *Link) RoundTrip(ctx context.Context, msg []byte) (string, error) {
	l.logger.Trace("tx", "msg", string(msg))

	if _, err := l.conn.Write(msg); err != nil {
		return "", &IOError{Op: "write", Err: err}
	}

	start := time.Now()
	chunk := make([]byte, readChunkSize)
	for {
		remaining := time.Duration(0)
		if l.opts.Timeout > 0 {
			remaining = l.opts.Timeout - time.Since(start)
			if remaining <= 0 {
				return "", l.timeout()
			}
		}

		n, err := l.read(ctx, chunk, remaining)
		if n > 0 {
			l.buf = append(l.buf, chunk[:n]...)
			text := string(l.buf)
			if end := carproto.FrameEnd(text); end >= 0 {
				// trailing bytes are not part of this answer
				l.buf = l.buf[:0]
				l.logger.Trace("rx", "frame", text[:end], "rtt", time.Since(start))
				return carproto.ExtractPayload(text[:end])
			}
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				l.buf = l.buf[:0]
				return "", ctxErr
			}
			if isTimeout(err) {
				return "", l.timeout()
			}
			l.buf = l.buf[:0]
			return "", &IOError{Op: "read", Err: err}
		}
	}
}

// Close closes the underlying connection.
func (l *Link) Close() error {
	return l.conn.Close()
}

func (l *Link) timeout() error {
	err := &TimeoutError{After: l.opts.Timeout, Partial: string(l.buf)}
	l.buf = l.buf[:0]
	return err
}

// read performs one Read bounded by timeout (0 = none) and ctx when the
// connection supports read deadlines.
func (l *Link) read(ctx context.Context, p []byte, timeout time.Duration) (int, error) {
	d, ok := l.conn.(deadliner)
	if !ok {
		return l.conn.Read(p)
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (deadline.IsZero() || ctxDeadline.Before(deadline)) {
		deadline = ctxDeadline
	}
	if err := d.SetReadDeadline(deadline); err != nil {
		return 0, err
	}

	stop := context.AfterFunc(ctx, func() {
		d.SetReadDeadline(time.Now())
	})
	defer stop()

	return l.conn.Read(p)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
