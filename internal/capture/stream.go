package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrNoNewFrame is returned by Grab when nothing newer than the caller's
// sequence number has arrived.
var ErrNoNewFrame = errors.New("no new frame")

// readErrorInterval limits how often repeated read failures are logged.
const readErrorInterval = 5 * time.Second

// Frame is a captured image with its sequence number and capture time.
// The receiver owns Mat and must Close the frame.
type Frame struct {
	Mat       gocv.Mat
	Seq       uint64
	Timestamp time.Time
}

// Close releases the image. It is safe on a nil frame.
func (f *Frame) Close() error {
	if f == nil {
		return nil
	}
	return f.Mat.Close()
}

// Stream reads a camera on its own goroutine and keeps only the most recent
// frame. Consumers poll with Grab and never block on the camera.
type Stream struct {
	camera Camera

	mu     sync.Mutex
	latest *gocv.Mat
	seq    uint64
	ts     time.Time

	fpsCh  chan int
	cancel context.CancelFunc
	done   chan struct{}
}

// NewStream wraps a camera. Call Start to begin reading.
func NewStream(camera Camera) *Stream {
	return &Stream{
		camera: camera,
		fpsCh:  make(chan int, 1),
	}
}

// Start opens the camera and launches the reader. It returns the open error
// unchanged; the stream then simply never becomes ready.
func (s *Stream) Start(ctx context.Context) error {
	if err := s.camera.Open(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
	return nil
}

// Stop ends the reader, closes the camera and drops the held frame.
func (s *Stream) Stop() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel = nil
	}

	err := s.camera.Close()

	s.mu.Lock()
	if s.latest != nil {
		s.latest.Close()
		s.latest = nil
	}
	s.mu.Unlock()

	return err
}

// SetFPS changes the camera rate and the reader's pacing.
func (s *Stream) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	s.camera.SetFPS(fps)

	// Keep only the newest request.
	select {
	case <-s.fpsCh:
	default:
	}
	s.fpsCh <- fps
}

// Ready reports whether at least one frame has arrived.
func (s *Stream) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq > 0
}

// Seq returns the sequence number of the newest frame, zero before any.
func (s *Stream) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Grab returns a copy of the newest frame if its sequence number is greater
// than after, otherwise ErrNoNewFrame.
func (s *Stream) Grab(after uint64) (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil || s.seq <= after {
		return nil, ErrNoNewFrame
	}
	return &Frame{
		Mat:       s.latest.Clone(),
		Seq:       s.seq,
		Timestamp: s.ts,
	}, nil
}

// publish stores mat as the newest frame, taking ownership of it.
func (s *Stream) publish(mat *gocv.Mat, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest != nil {
		s.latest.Close()
	}
	s.latest = mat
	s.seq++
	s.ts = at
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(frameInterval(s.camera.FPS()))
	defer ticker.Stop()

	var lastLogged time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case fps := <-s.fpsCh:
			ticker.Reset(frameInterval(fps))
			continue
		case <-ticker.C:
		}

		mat, err := s.camera.ReadFrame()
		if err != nil {
			if time.Since(lastLogged) > readErrorInterval {
				log.Printf("[capture] read frame: %v", err)
				lastLogged = time.Now()
			}
			continue
		}
		s.publish(mat, time.Now())
	}
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}
