package capture

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	// ErrCaptureInFlight is returned when Capture is called while a
	// previous capture on the same session has not completed.
	ErrCaptureInFlight = errors.New("capture already in flight")

	// ErrSessionClosed is returned when Capture is called on a closed
	// session.
	ErrSessionClosed = errors.New("capture session closed")
)

// Frame is one captured still image.
type Frame struct {
	Data        []byte
	ContentType string
}

// FrameSource produces still frames on demand. Implementations wrap
// whatever actually supplies image bytes: a device feed, a decoded
// upload, a fixture in tests.
type FrameSource interface {
	Grab(ctx context.Context) (*Frame, error)
}

// Session is an explicitly owned capture handle. The holder passes it
// down through construction instead of discovering an active camera by
// walking a view hierarchy, and closes it when the owning screen goes
// away, which cancels any capture still in flight.
type Session struct {
	source   FrameSource
	ctx      context.Context
	cancel   context.CancelFunc
	inFlight atomic.Bool
}

// NewSession creates a session over the given source.
func NewSession(source FrameSource) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		source: source,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Capture grabs exactly one frame. A second call while one is in
// flight fails fast with ErrCaptureInFlight rather than queueing.
func (s *Session) Capture(ctx context.Context) (*Frame, error) {
	if s.ctx.Err() != nil {
		return nil, ErrSessionClosed
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCaptureInFlight
	}
	defer s.inFlight.Store(false)

	grabCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Closing the session cancels the in-flight grab.
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	frame, err := s.source.Grab(grabCtx)
	if err != nil {
		if s.ctx.Err() != nil {
			return nil, ErrSessionClosed
		}
		return nil, err
	}

	return frame, nil
}

// Close tears the session down and cancels any in-flight capture.
// Safe to call more than once.
func (s *Session) Close() {
	s.cancel()
}

// StaticSource returns a FrameSource that yields the given bytes once
// per grab. It backs server-side handling of an already-captured frame.
func StaticSource(data []byte, contentType string) FrameSource {
	return &staticSource{data: data, contentType: contentType}
}

type staticSource struct {
	data        []byte
	contentType string
}

func (s *staticSource) Grab(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Frame{Data: s.data, ContentType: s.contentType}, nil
}
