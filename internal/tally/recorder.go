package tally

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/colonyops/tally/internal/core/voice"
)

// FileRecorder "records" by reading a finished audio file. Duration is the
// recording length to report, since the file is not decoded.
type FileRecorder struct {
	Path     string
	MIMEType string
	Duration time.Duration
}

// RequestPermission grants access when the file is readable.
func (r *FileRecorder) RequestPermission(_ context.Context) (bool, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		if os.IsPermission(err) {
			return false, nil
		}
		return false, fmt.Errorf("open audio file: %w", err)
	}
	_ = f.Close()
	return true, nil
}

// Start is a no-op; the file already holds the recording.
func (r *FileRecorder) Start(_ context.Context) error { return nil }

// Stop reads the file. Read failures are corrupt captures.
func (r *FileRecorder) Stop(_ context.Context) (voice.Capture, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return voice.Capture{}, voice.NewError(voice.KindCorruptCapture, fmt.Errorf("read audio file: %w", err))
	}

	mimeType := r.MIMEType
	if mimeType == "" {
		mimeType = AudioMIMEType(r.Path)
	}

	return voice.Capture{Data: data, MIMEType: mimeType, Duration: r.Duration}, nil
}

// AudioMIMEType guesses the MIME type of an audio file from its extension.
func AudioMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".webm":
		return "audio/webm"
	case ".m4a", ".mp4":
		return "audio/mp4"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		t, _, _ = strings.Cut(t, ";")
		return t
	}
	return ""
}

// BufferRecorder receives audio from elsewhere, usually an HTTP upload,
// before Stop is called.
type BufferRecorder struct {
	// Denied makes RequestPermission refuse.
	Denied bool

	mu      sync.Mutex
	capture *voice.Capture
}

// Put stores the capture returned by the next Stop.
func (r *BufferRecorder) Put(c voice.Capture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capture = &c
}

// RequestPermission grants access unless Denied is set.
func (r *BufferRecorder) RequestPermission(_ context.Context) (bool, error) {
	return !r.Denied, nil
}

// Start discards any capture put before recording began.
func (r *BufferRecorder) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capture = nil
	return nil
}

// Stop returns the stored capture, or a corrupt capture error when nothing
// was put.
func (r *BufferRecorder) Stop(_ context.Context) (voice.Capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capture == nil {
		return voice.Capture{}, voice.NewError(voice.KindCorruptCapture, errors.New("no audio received"))
	}
	c := *r.capture
	r.capture = nil
	return c, nil
}
