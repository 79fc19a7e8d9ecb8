package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/neurobin-systems/neurobin/internal/imaging"
	"github.com/neurobin-systems/neurobin/internal/waste"
)

// State identifies what the capture session is currently showing.
type State string

const (
	StateUpload  State = "upload"
	StateCamera  State = "camera"
	StatePreview State = "preview"
	StateResult  State = "result"
)

// ErrMissingImage is returned when classification is requested with no image
// payload held by the session. No network call is issued in that case.
var ErrMissingImage = errors.New("no image provided for classification")

// ErrClassificationPending gates duplicate submissions: a second classify
// attempt while one is in flight is rejected, not queued.
var ErrClassificationPending = errors.New("a classification is already in progress")

// ErrSessionChanged reports that the session was reset or given a new image
// while a classification was in flight; the stale completion is discarded.
var ErrSessionChanged = errors.New("the session changed while classification was in flight")

// InvalidStateError reports an operation invoked from a state that does not
// permit it.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s while in %s state", e.Op, e.State)
}

// CameraAccessError reports that the camera stream could not be acquired,
// typically from permission denial or missing hardware.
type CameraAccessError struct {
	Err error
}

func (e *CameraAccessError) Error() string {
	return fmt.Sprintf("could not access the camera: %v", e.Err)
}

func (e *CameraAccessError) Unwrap() error { return e.Err }

// FrameSource is an exclusively owned live camera stream. It is acquired on
// entering the camera state and must be released on every path out of it.
// Close must be safe to call more than once.
type FrameSource interface {
	Grab(ctx context.Context) (image.Image, error)
	Close() error
}

// FrameSourceOpener acquires a camera stream, preferring a rear-facing
// device where the platform distinguishes them.
type FrameSourceOpener func(ctx context.Context) (FrameSource, error)

// NoCameraOpener is the opener for deployments without an attached capture
// device: every acquisition attempt fails.
func NoCameraOpener() FrameSourceOpener {
	return func(ctx context.Context) (FrameSource, error) {
		return nil, errors.New("no camera device available")
	}
}

// Classifier produces a validated classification for a normalized image.
type Classifier interface {
	Classify(ctx context.Context, img *imaging.Normalized) (*waste.Classification, error)
}

// Session is the capture/classify state machine. Exactly one image or camera
// stream is active at a time: the camera handle is non-nil only in the camera
// state, the image payload only in preview and result, and the result only in
// the result state. All methods are safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	id         string
	createdAt  time.Time
	normalizer *imaging.Normalizer

	state       State
	camera      FrameSource
	image       *imaging.Normalized
	result      *waste.Classification
	errMsg      string
	classifying bool

	// gen counts content changes; an in-flight classification whose start
	// generation no longer matches is stale and its completion is dropped.
	gen uint64
}

// Snapshot is a read-only view of the session for serialization.
type Snapshot struct {
	ID          string                `json:"id"`
	State       State                 `json:"state"`
	ImageBase64 string                `json:"image_base64,omitempty"`
	ImageWidth  int                   `json:"image_width,omitempty"`
	ImageHeight int                   `json:"image_height,omitempty"`
	Result      *waste.Classification `json:"result,omitempty"`
	Error       string                `json:"error,omitempty"`
	Classifying bool                  `json:"classifying"`
	CreatedAt   time.Time             `json:"created_at"`
}

// NewSession returns a session in the upload state.
func NewSession(id string, normalizer *imaging.Normalizer) *Session {
	if normalizer == nil {
		normalizer = imaging.NewNormalizer()
	}
	return &Session{
		id:         id,
		createdAt:  time.Now(),
		normalizer: normalizer,
		state:      StateUpload,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot captures the current session contents.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:          s.id,
		State:       s.state,
		Result:      s.result,
		Error:       s.errMsg,
		Classifying: s.classifying,
		CreatedAt:   s.createdAt,
	}
	if s.image != nil {
		snap.ImageBase64 = s.image.Base64
		snap.ImageWidth = s.image.Width
		snap.ImageHeight = s.image.Height
	}
	return snap
}

// SubmitImage validates and normalizes an uploaded image and moves the
// session to the preview state. Validation and processing failures surface an
// error message and leave the state unchanged.
func (s *Session) SubmitImage(data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUpload && s.state != StatePreview {
		return &InvalidStateError{Op: "submit an image", State: s.state}
	}

	normalized, err := s.normalizer.Normalize(data, contentType)
	if err != nil {
		var validationErr *imaging.ValidationError
		if errors.As(err, &validationErr) {
			s.errMsg = "Please upload a valid image file."
		} else {
			s.errMsg = "Could not process the selected image file."
		}
		return err
	}

	s.image = normalized
	s.result = nil
	s.state = StatePreview
	s.errMsg = ""
	s.gen++
	slog.Info("Image submitted", "session_id", s.id, "width", normalized.Width, "height", normalized.Height)
	return nil
}

// StartCamera acquires a camera stream and enters the camera state. On
// acquisition failure the session surfaces a CameraAccessError and stays in
// the upload state with no stream stored.
func (s *Session) StartCamera(ctx context.Context, open FrameSourceOpener) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUpload {
		return &InvalidStateError{Op: "start the camera", State: s.state}
	}

	source, err := open(ctx)
	if err != nil {
		accessErr := &CameraAccessError{Err: err}
		s.errMsg = "Could not access the camera. Please ensure you have given permission."
		return accessErr
	}

	s.camera = source
	s.state = StateCamera
	s.errMsg = ""
	slog.Info("Camera started", "session_id", s.id)
	return nil
}

// Capture grabs the current video frame, re-encodes it at native resolution,
// releases the camera stream, and moves to the preview state. On failure the
// session stays in the camera state with the stream still held.
func (s *Session) Capture(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCamera || s.camera == nil {
		return &InvalidStateError{Op: "capture", State: s.state}
	}

	frame, err := s.camera.Grab(ctx)
	if err != nil {
		s.errMsg = "Could not capture a frame from the camera."
		return &imaging.ProcessingError{Err: err}
	}

	normalized, err := s.normalizer.EncodeFrame(frame)
	if err != nil {
		s.errMsg = "Could not process the captured frame."
		return err
	}

	s.releaseCameraLocked()
	s.image = normalized
	s.result = nil
	s.state = StatePreview
	s.errMsg = ""
	s.gen++
	slog.Info("Frame captured", "session_id", s.id, "width", normalized.Width, "height", normalized.Height)
	return nil
}

// StopCamera releases the camera stream if one is held and returns the
// session to the upload state. It is idempotent: calling it repeatedly, or
// without a stream ever having been acquired, is a safe no-op.
func (s *Session) StopCamera() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseCameraLocked()
	s.state = StateUpload
	s.gen++
}

// Classify submits the held image to the classifier and moves to the result
// state on success. With no image held it fails immediately with
// ErrMissingImage and no call is issued; from any state other than preview it
// fails with an InvalidStateError. Only one classification may be in flight;
// concurrent attempts fail with ErrClassificationPending. On classifier
// failure the session stays in preview with the error surfaced. If the
// session is reset or given a new image while the call is in flight, the
// stale completion is discarded and ErrSessionChanged returned.
func (s *Session) Classify(ctx context.Context, classifier Classifier) (*waste.Classification, error) {
	s.mu.Lock()
	if s.image == nil {
		s.errMsg = "Please provide an image first."
		s.mu.Unlock()
		return nil, ErrMissingImage
	}
	if s.state != StatePreview {
		state := s.state
		s.mu.Unlock()
		return nil, &InvalidStateError{Op: "classify", State: state}
	}
	if s.classifying {
		s.mu.Unlock()
		return nil, ErrClassificationPending
	}
	s.classifying = true
	s.errMsg = ""
	img := s.image
	startGen := s.gen
	s.mu.Unlock()

	result, err := classifier.Classify(ctx, img)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.classifying = false
	if s.gen != startGen {
		slog.Info("Discarding stale classification", "session_id", s.id)
		return nil, ErrSessionChanged
	}
	if err != nil {
		s.errMsg = err.Error()
		return nil, err
	}

	s.result = result
	s.state = StateResult
	slog.Info("Classification complete", "session_id", s.id, "waste_type", result.WasteType, "confidence", result.Confidence)
	return result, nil
}

// Reset returns the session to an empty upload state from any state,
// clearing the held image, result, and error, and releasing the camera
// stream if one is held.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseCameraLocked()
	s.image = nil
	s.result = nil
	s.errMsg = ""
	s.state = StateUpload
	s.gen++
}

// Close releases any held camera stream. It is called on session teardown
// and is safe to call multiple times.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseCameraLocked()
}

func (s *Session) releaseCameraLocked() {
	if s.camera == nil {
		return
	}
	if err := s.camera.Close(); err != nil {
		slog.Warn("Failed to release camera stream", "session_id", s.id, "err", err)
	}
	s.camera = nil
}
