// Package scanner owns the QR capture session lifecycle: it pulls frames
// from a camera source, decodes them, and funnels the first decoded token
// into a submit callback. The QR image codec and the camera are black
// boxes behind the Decoder and FrameSource interfaces.
package scanner

import (
	"context"
	"errors"
	"sync"
)

// Frame is one captured camera frame, opaque to this package.
type Frame []byte

// ErrNoCode is returned by a Decoder when a frame contains no readable QR
// pattern. It is the one benign failure: sessions skip the frame and keep
// capturing.
var ErrNoCode = errors.New("scanner: no QR code in frame")

// Decoder turns a frame into a token string.
type Decoder interface {
	Decode(frame Frame) (string, error)
}

// FrameSource is the scoped camera resource. Close releases the capture
// device and must be safe to call more than once; a closed source returns
// an error from NextFrame.
type FrameSource interface {
	NextFrame(ctx context.Context) (Frame, error)
	Close() error
}

// Session is one single-shot capture session. It stops itself on the
// first successful decode, before the token callback runs, so rapid
// successive frames cannot produce duplicate submissions. The frame
// source is released on every exit path: decode hit, source error,
// context cancellation or an explicit Stop.
type Session struct {
	source  FrameSource
	decoder Decoder

	onToken func(token string)
	onError func(err error)

	stopOnce sync.Once
	done     chan struct{}
}

func newSession(source FrameSource, decoder Decoder, onToken func(string), onError func(error)) *Session {
	return &Session{
		source:  source,
		decoder: decoder,
		onToken: onToken,
		onError: onError,
		done:    make(chan struct{}),
	}
}

// run is the capture loop. Decoder failures never stop the session;
// only source errors do.
func (s *Session) run(ctx context.Context) {
	defer s.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		frame, err := s.source.NextFrame(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || s.stopped() {
				return
			}
			s.Stop()
			s.onError(err)
			return
		}

		token, err := s.decoder.Decode(frame)
		if err != nil {
			// Benign per-frame miss - keep capturing
			continue
		}

		s.Stop()
		s.onToken(token)
		return
	}
}

// Stop ends the session and releases the frame source. Idempotent.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		_ = s.source.Close() //nolint:errcheck
	})
}

func (s *Session) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done is closed when the session has ended and its source is released.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
