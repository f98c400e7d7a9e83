package speech

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// CaptureState is the speech capture controller state.
type CaptureState int

const (
	// CaptureUnsupported is terminal, entered once at construction when
	// no capture device is available.
	CaptureUnsupported CaptureState = iota
	CaptureIdle
	CaptureRecording
)

func (s CaptureState) String() string {
	switch s {
	case CaptureUnsupported:
		return "unsupported"
	case CaptureIdle:
		return "idle"
	case CaptureRecording:
		return "recording"
	}
	return "unknown"
}

// Segment is one recognition result emitted by the capture device.
type Segment struct {
	Text  string
	Final bool
}

// CaptureDevice is the continuous speech-to-text device session. The
// owner of the device routes its callbacks to the controller's OnResult,
// OnError and OnEnd methods.
type CaptureDevice interface {
	Start(langTag string, continuous bool, interimResults bool) error
	Stop()
}

// CaptureController wraps a capture device session into an explicit state
// machine. Device callbacks may arrive on any goroutine; all state is
// guarded by a single mutex so they serialize with caller operations.
type CaptureController struct {
	device CaptureDevice

	mu         sync.RWMutex
	state      CaptureState
	transcript string
	lastError  string
}

// NewCaptureController builds a controller around a device. A nil device
// means capture is unavailable on this host and the controller stays
// Unsupported forever.
func NewCaptureController(device CaptureDevice) *CaptureController {
	c := &CaptureController{device: device}
	if device == nil {
		c.state = CaptureUnsupported
	} else {
		c.state = CaptureIdle
	}
	return c
}

func (c *CaptureController) Supported() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state != CaptureUnsupported
}

func (c *CaptureController) State() CaptureState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Transcript holds the finalized portion of the current recognition pass
// only. It is replaced, not appended, on every finalized segment; callers
// wanting cumulative text must accumulate across start/stop cycles.
func (c *CaptureController) Transcript() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transcript
}

func (c *CaptureController) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Start begins a continuous capture session with interim results. Only
// valid from Idle; a no-op from Recording or Unsupported.
func (c *CaptureController) Start(langTag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CaptureIdle {
		return
	}

	c.transcript = ""
	c.lastError = ""

	if err := c.device.Start(langTag, true, true); err != nil {
		c.lastError = "speech recognition error: " + err.Error()
		log.WithFields(log.Fields{
			"lang":  langTag,
			"error": err,
		}).Warn("Capture device failed to start")
		return
	}

	c.state = CaptureRecording
	log.WithFields(log.Fields{
		"lang": langTag,
	}).Info("Speech capture started")
}

// Stop requests a device stop. Only meaningful from Recording; idempotent
// when already Idle.
func (c *CaptureController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CaptureRecording {
		return
	}

	c.device.Stop()
	c.state = CaptureIdle
	log.Info("Speech capture stopped")
}

// OnResult receives interim and final segments from the device. The
// transcript is overwritten with the concatenated final segments of the
// current pass; interim segments are not recorded.
func (c *CaptureController) OnResult(segments []Segment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CaptureRecording {
		return
	}

	var final strings.Builder
	for _, segment := range segments {
		if segment.Final {
			final.WriteString(segment.Text)
		}
	}
	c.transcript = final.String()
}

// OnError records a device-reported error and forces the session back to
// Idle whatever the current state.
func (c *CaptureController) OnError(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == CaptureUnsupported {
		return
	}

	c.lastError = "speech recognition error: " + code
	c.state = CaptureIdle
	log.WithFields(log.Fields{
		"code": code,
	}).Warn("Capture device reported an error")
}

// OnEnd handles the device-reported end of session, e.g. a silence
// timeout, and transitions to Idle unconditionally.
func (c *CaptureController) OnEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == CaptureUnsupported {
		return
	}

	c.state = CaptureIdle
}
