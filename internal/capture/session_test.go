package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"testing"

	"github.com/neurobin-systems/neurobin/internal/imaging"
	"github.com/neurobin-systems/neurobin/internal/waste"
)

type stubFrameSource struct {
	frame      image.Image
	grabErr    error
	closeCalls int
}

func (s *stubFrameSource) Grab(ctx context.Context) (image.Image, error) {
	if s.grabErr != nil {
		return nil, s.grabErr
	}
	return s.frame, nil
}

func (s *stubFrameSource) Close() error {
	s.closeCalls++
	return nil
}

func stubOpener(source *stubFrameSource, err error) FrameSourceOpener {
	return func(ctx context.Context) (FrameSource, error) {
		if err != nil {
			return nil, err
		}
		return source, nil
	}
}

type stubClassifier struct {
	result  *waste.Classification
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (s *stubClassifier) Classify(ctx context.Context, img *imaging.Normalized) (*waste.Classification, error) {
	s.calls++
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height)), nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func ewasteResult() *waste.Classification {
	return &waste.Classification{
		WasteType:      "E-waste",
		Confidence:     0.92,
		Reasoning:      "Visible circuit board",
		DisposalMethod: "Certified E-waste Recycler or Manufacturer Take-back Program",
	}
}

func TestNewSessionStartsInUploadState(t *testing.T) {
	s := NewSession("s1", nil)

	snap := s.Snapshot()
	if snap.State != StateUpload {
		t.Errorf("state = %s, want %s", snap.State, StateUpload)
	}
	if snap.ImageBase64 != "" || snap.Result != nil || snap.Error != "" {
		t.Error("new session should hold no image, result, or error")
	}
}

func TestSubmitImageTransitionsToPreview(t *testing.T) {
	s := NewSession("s1", nil)

	if err := s.SubmitImage(testJPEG(t, 4000, 2000), "image/jpeg"); err != nil {
		t.Fatalf("SubmitImage() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.State != StatePreview {
		t.Fatalf("state = %s, want %s", snap.State, StatePreview)
	}
	if snap.ImageBase64 == "" {
		t.Error("expected non-empty base64 payload")
	}
	if snap.ImageWidth != 512 || snap.ImageHeight != 256 {
		t.Errorf("image normalized to %dx%d, want 512x256", snap.ImageWidth, snap.ImageHeight)
	}
}

func TestSubmitImageRejectsNonImage(t *testing.T) {
	s := NewSession("s1", nil)

	err := s.SubmitImage([]byte("not an image"), "text/plain")
	var validationErr *imaging.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	snap := s.Snapshot()
	if snap.State != StateUpload {
		t.Errorf("state = %s, want unchanged %s", snap.State, StateUpload)
	}
	if snap.Error == "" {
		t.Error("expected validation error message to be surfaced")
	}
}

func TestStartCameraDenied(t *testing.T) {
	s := NewSession("s1", nil)

	err := s.StartCamera(context.Background(), stubOpener(nil, errors.New("permission denied")))
	var accessErr *CameraAccessError
	if !errors.As(err, &accessErr) {
		t.Fatalf("expected CameraAccessError, got %v", err)
	}

	snap := s.Snapshot()
	if snap.State != StateUpload {
		t.Errorf("state = %s, want %s", snap.State, StateUpload)
	}
	if snap.Error == "" {
		t.Error("expected camera error message to be surfaced")
	}
}

func TestCaptureReleasesStreamAndEntersPreview(t *testing.T) {
	source := &stubFrameSource{frame: image.NewRGBA(image.Rect(0, 0, 640, 480))}
	s := NewSession("s1", nil)

	if err := s.StartCamera(context.Background(), stubOpener(source, nil)); err != nil {
		t.Fatalf("StartCamera() error = %v", err)
	}
	if got := s.State(); got != StateCamera {
		t.Fatalf("state = %s, want %s", got, StateCamera)
	}

	if err := s.Capture(context.Background()); err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.State != StatePreview {
		t.Errorf("state = %s, want %s", snap.State, StatePreview)
	}
	// Camera frames keep their native resolution.
	if snap.ImageWidth != 640 || snap.ImageHeight != 480 {
		t.Errorf("frame is %dx%d, want 640x480", snap.ImageWidth, snap.ImageHeight)
	}
	if source.closeCalls != 1 {
		t.Errorf("stream closed %d times, want exactly once", source.closeCalls)
	}
}

func TestCaptureGrabFailureStaysInCameraState(t *testing.T) {
	source := &stubFrameSource{grabErr: errors.New("device busy")}
	s := NewSession("s1", nil)

	if err := s.StartCamera(context.Background(), stubOpener(source, nil)); err != nil {
		t.Fatalf("StartCamera() error = %v", err)
	}
	if err := s.Capture(context.Background()); err == nil {
		t.Fatal("expected capture error")
	}

	if got := s.State(); got != StateCamera {
		t.Errorf("state = %s, want %s", got, StateCamera)
	}
	if source.closeCalls != 0 {
		t.Error("stream should still be held after a failed capture")
	}

	// Cancel path must still release the stream.
	s.StopCamera()
	if source.closeCalls != 1 {
		t.Errorf("stream closed %d times after StopCamera, want 1", source.closeCalls)
	}
}

func TestStopCameraIsIdempotent(t *testing.T) {
	s := NewSession("s1", nil)

	// Never acquired a stream at all.
	s.StopCamera()
	s.StopCamera()
	if got := s.State(); got != StateUpload {
		t.Errorf("state = %s, want %s", got, StateUpload)
	}

	source := &stubFrameSource{frame: image.NewRGBA(image.Rect(0, 0, 10, 10))}
	if err := s.StartCamera(context.Background(), stubOpener(source, nil)); err != nil {
		t.Fatalf("StartCamera() error = %v", err)
	}

	s.StopCamera()
	s.StopCamera()
	if source.closeCalls != 1 {
		t.Errorf("stream closed %d times, want exactly once", source.closeCalls)
	}
	if got := s.State(); got != StateUpload {
		t.Errorf("state = %s, want %s", got, StateUpload)
	}
}

func TestClassifyWithoutImageIssuesNoCall(t *testing.T) {
	s := NewSession("s1", nil)
	classifier := &stubClassifier{result: ewasteResult()}

	_, err := s.Classify(context.Background(), classifier)
	if !errors.Is(err, ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage, got %v", err)
	}
	if classifier.calls != 0 {
		t.Errorf("classifier called %d times, want 0", classifier.calls)
	}
	if s.Snapshot().Error == "" {
		t.Error("expected missing-image message to be surfaced")
	}
}

func TestClassifySuccessEntersResultState(t *testing.T) {
	s := NewSession("s1", nil)
	if err := s.SubmitImage(testJPEG(t, 100, 100), "image/jpeg"); err != nil {
		t.Fatalf("SubmitImage() error = %v", err)
	}

	result, err := s.Classify(context.Background(), &stubClassifier{result: ewasteResult()})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.WasteType != "E-waste" {
		t.Errorf("waste_type = %q, want E-waste", result.WasteType)
	}

	snap := s.Snapshot()
	if snap.State != StateResult {
		t.Errorf("state = %s, want %s", snap.State, StateResult)
	}
	if snap.Result == nil || snap.Result.Confidence != 0.92 {
		t.Errorf("snapshot result = %+v, want confidence 0.92", snap.Result)
	}
	if snap.Classifying {
		t.Error("classifying flag should be cleared after completion")
	}
}

func TestClassifyFailureStaysInPreview(t *testing.T) {
	s := NewSession("s1", nil)
	if err := s.SubmitImage(testJPEG(t, 100, 100), "image/jpeg"); err != nil {
		t.Fatalf("SubmitImage() error = %v", err)
	}

	classifyErr := errors.New("Authentication Failed: The provided API key may be invalid or restricted.")
	_, err := s.Classify(context.Background(), &stubClassifier{err: classifyErr})
	if err == nil {
		t.Fatal("expected classification error")
	}

	snap := s.Snapshot()
	if snap.State != StatePreview {
		t.Errorf("state = %s, want %s", snap.State, StatePreview)
	}
	if snap.Error != classifyErr.Error() {
		t.Errorf("error = %q, want %q", snap.Error, classifyErr.Error())
	}
	if snap.Classifying {
		t.Error("classifying flag should be cleared after failure")
	}
}

func TestClassifyGatesConcurrentAttempts(t *testing.T) {
	s := NewSession("s1", nil)
	if err := s.SubmitImage(testJPEG(t, 100, 100), "image/jpeg"); err != nil {
		t.Fatalf("SubmitImage() error = %v", err)
	}

	blocking := &stubClassifier{
		result:  ewasteResult(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Classify(context.Background(), blocking)
		done <- err
	}()

	<-blocking.started

	_, err := s.Classify(context.Background(), &stubClassifier{result: ewasteResult()})
	if !errors.Is(err, ErrClassificationPending) {
		t.Fatalf("expected ErrClassificationPending, got %v", err)
	}

	close(blocking.release)
	if err := <-done; err != nil {
		t.Fatalf("first classification failed: %v", err)
	}
	if got := s.State(); got != StateResult {
		t.Errorf("state = %s, want %s", got, StateResult)
	}
}

func TestResetDuringClassifyDiscardsLateCompletion(t *testing.T) {
	s := NewSession("s1", nil)
	if err := s.SubmitImage(testJPEG(t, 100, 100), "image/jpeg"); err != nil {
		t.Fatalf("SubmitImage() error = %v", err)
	}

	blocking := &stubClassifier{
		result:  ewasteResult(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Classify(context.Background(), blocking)
		done <- err
	}()

	<-blocking.started
	s.Reset()
	close(blocking.release)

	if err := <-done; !errors.Is(err, ErrSessionChanged) {
		t.Fatalf("expected ErrSessionChanged, got %v", err)
	}

	snap := s.Snapshot()
	if snap.State != StateUpload || snap.ImageBase64 != "" || snap.Result != nil || snap.Error != "" {
		t.Errorf("late completion clobbered the reset session: %+v", snap)
	}
}

func TestSubmitImageDuringClassifyDiscardsLateCompletion(t *testing.T) {
	s := NewSession("s1", nil)
	if err := s.SubmitImage(testJPEG(t, 100, 100), "image/jpeg"); err != nil {
		t.Fatalf("SubmitImage() error = %v", err)
	}

	blocking := &stubClassifier{
		result:  ewasteResult(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Classify(context.Background(), blocking)
		done <- err
	}()

	<-blocking.started
	if err := s.SubmitImage(testJPEG(t, 50, 50), "image/jpeg"); err != nil {
		t.Fatalf("SubmitImage() during classify error = %v", err)
	}
	close(blocking.release)

	if err := <-done; !errors.Is(err, ErrSessionChanged) {
		t.Fatalf("expected ErrSessionChanged, got %v", err)
	}

	// The replacement image previews untouched by the stale result.
	snap := s.Snapshot()
	if snap.State != StatePreview || snap.Result != nil {
		t.Errorf("late completion clobbered the new submission: %+v", snap)
	}
	if snap.ImageWidth != 50 || snap.ImageHeight != 50 {
		t.Errorf("image is %dx%d, want the 50x50 replacement", snap.ImageWidth, snap.ImageHeight)
	}
}

func TestClassifyFromResultStateRejected(t *testing.T) {
	s := NewSession("s1", nil)
	if err := s.SubmitImage(testJPEG(t, 100, 100), "image/jpeg"); err != nil {
		t.Fatalf("SubmitImage() error = %v", err)
	}
	if _, err := s.Classify(context.Background(), &stubClassifier{result: ewasteResult()}); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	second := &stubClassifier{result: ewasteResult()}
	_, err := s.Classify(context.Background(), second)
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if second.calls != 0 {
		t.Errorf("classifier called %d times, want 0", second.calls)
	}
	if got := s.State(); got != StateResult {
		t.Errorf("state = %s, want unchanged %s", got, StateResult)
	}
}

func TestResetYieldsEmptySessionFromAnyState(t *testing.T) {
	t.Run("from result", func(t *testing.T) {
		s := NewSession("s1", nil)
		if err := s.SubmitImage(testJPEG(t, 100, 100), "image/jpeg"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Classify(context.Background(), &stubClassifier{result: ewasteResult()}); err != nil {
			t.Fatal(err)
		}

		s.Reset()
		snap := s.Snapshot()
		if snap.State != StateUpload || snap.ImageBase64 != "" || snap.Result != nil || snap.Error != "" {
			t.Errorf("reset left session non-empty: %+v", snap)
		}
	})

	t.Run("from camera releases stream", func(t *testing.T) {
		source := &stubFrameSource{frame: image.NewRGBA(image.Rect(0, 0, 10, 10))}
		s := NewSession("s1", nil)
		if err := s.StartCamera(context.Background(), stubOpener(source, nil)); err != nil {
			t.Fatal(err)
		}

		s.Reset()
		if source.closeCalls != 1 {
			t.Errorf("stream closed %d times, want 1", source.closeCalls)
		}
		if got := s.State(); got != StateUpload {
			t.Errorf("state = %s, want %s", got, StateUpload)
		}
	})
}

func TestCloseReleasesStream(t *testing.T) {
	source := &stubFrameSource{frame: image.NewRGBA(image.Rect(0, 0, 10, 10))}
	s := NewSession("s1", nil)
	if err := s.StartCamera(context.Background(), stubOpener(source, nil)); err != nil {
		t.Fatal(err)
	}

	s.Close()
	s.Close()
	if source.closeCalls != 1 {
		t.Errorf("stream closed %d times, want exactly once", source.closeCalls)
	}
}
