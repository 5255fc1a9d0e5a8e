package voice

import (
	"context"
	"time"
)

// Capture is one finished recording.
type Capture struct {
	Data     []byte
	MIMEType string
	// Duration is the clip length when the recorder knows it. Zero means
	// the session measures the time between start and stop instead.
	Duration time.Duration
}

// Recorder is the audio-capture collaborator. Implementations own the device;
// the pipeline only sequences calls and checks the result.
type Recorder interface {
	// RequestPermission asks for microphone access. A false result with a nil
	// error means the user declined.
	RequestPermission(ctx context.Context) (bool, error)
	// Start begins capturing audio.
	Start(ctx context.Context) error
	// Stop ends the capture and returns the encoded payload.
	Stop(ctx context.Context) (Capture, error)
}

// CaptureLimits bounds what is forwarded to the oracle.
type CaptureLimits struct {
	MinDuration time.Duration
	MaxBytes    int
	MinBytes    int
}

// DefaultCaptureLimits returns 500ms / 10MiB / 1KiB.
func DefaultCaptureLimits() CaptureLimits {
	return CaptureLimits{
		MinDuration: 500 * time.Millisecond,
		MaxBytes:    10 << 20,
		MinBytes:    1 << 10,
	}
}

// CheckDuration rejects recordings stopped before MinDuration.
func (l CaptureLimits) CheckDuration(d time.Duration) error {
	if d < l.MinDuration {
		return Errorf(KindTooShort, "recording lasted %s, minimum is %s", d, l.MinDuration)
	}
	return nil
}

// CheckPayload rejects payloads that are too big or too small to be real audio.
func (l CaptureLimits) CheckPayload(c Capture) error {
	size := len(c.Data)
	switch {
	case l.MaxBytes > 0 && size > l.MaxBytes:
		return Errorf(KindPayloadTooLarge, "payload is %d bytes, limit is %d", size, l.MaxBytes)
	case size < l.MinBytes:
		return Errorf(KindCorruptCapture, "payload is %d bytes, minimum is %d", size, l.MinBytes)
	case c.MIMEType == "":
		return Errorf(KindCorruptCapture, "payload has no mime type")
	}
	return nil
}
