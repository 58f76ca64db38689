package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type blockingSource struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingSource() *blockingSource {
	return &blockingSource{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (b *blockingSource) Grab(ctx context.Context) (*Frame, error) {
	select {
	case b.started <- struct{}{}:
	default:
	}
	select {
	case <-b.release:
		return &Frame{Data: []byte("frame"), ContentType: "image/jpeg"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCaptureSingleShot(t *testing.T) {
	sess := NewSession(StaticSource([]byte{0xff, 0xd8}, "image/jpeg"))
	defer sess.Close()

	frame, err := sess.Capture(context.Background())
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if frame.ContentType != "image/jpeg" || len(frame.Data) != 2 {
		t.Errorf("unexpected frame: %+v", frame)
	}

	// A completed capture does not block the next press.
	if _, err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("second capture failed: %v", err)
	}
}

func TestCaptureSecondPressRejected(t *testing.T) {
	src := newBlockingSource()
	sess := NewSession(src)
	defer sess.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := sess.Capture(context.Background()); err != nil {
			t.Errorf("first capture failed: %v", err)
		}
	}()

	// Wait for the first capture to be in flight.
	select {
	case <-src.started:
	case <-time.After(time.Second):
		t.Fatal("first capture never started")
	}

	if _, err := sess.Capture(context.Background()); !errors.Is(err, ErrCaptureInFlight) {
		t.Fatalf("expected ErrCaptureInFlight, got %v", err)
	}

	close(src.release)
	wg.Wait()
}

func TestCloseCancelsInFlightCapture(t *testing.T) {
	src := newBlockingSource()
	sess := NewSession(src)

	errCh := make(chan error, 1)
	go func() {
		_, err := sess.Capture(context.Background())
		errCh <- err
	}()

	// Let the capture get in flight, then tear the session down.
	select {
	case <-src.started:
	case <-time.After(time.Second):
		t.Fatal("capture never started")
	}
	sess.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrSessionClosed) {
			t.Fatalf("expected ErrSessionClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("capture did not unblock after Close")
	}
}

func TestCaptureAfterClose(t *testing.T) {
	sess := NewSession(StaticSource(nil, ""))
	sess.Close()

	if _, err := sess.Capture(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestCaptureHonorsCallerContext(t *testing.T) {
	src := newBlockingSource()
	sess := NewSession(src)
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := sess.Capture(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
