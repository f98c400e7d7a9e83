package speech

import (
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// PlaybackState is the speech playback controller state.
type PlaybackState int

const (
	PlaybackIdle PlaybackState = iota
	PlaybackSpeaking
	PlaybackPaused
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackIdle:
		return "idle"
	case PlaybackSpeaking:
		return "speaking"
	case PlaybackPaused:
		return "paused"
	}
	return "unknown"
}

// Voice is one synthesized voice the playback device offers.
type Voice struct {
	Name string
	Lang string
}

// Utterance is a single playback request handed to the device.
type Utterance struct {
	Text      string
	Lang      string
	Voice     Voice
	ElementID string
}

// PlaybackDevice is the process-wide text-to-speech engine. It may drive
// only one active utterance at a time. The owner routes device callbacks
// to the controller's OnStart/OnPause/OnResume/OnEnd methods with the
// utterance's element id.
type PlaybackDevice interface {
	Speak(u Utterance)
	Pause()
	Resume()
	Cancel()
	// Paused reports whether the underlying engine sits in a paused
	// state, e.g. left over from a keep-alive pulse.
	Paused() bool
	Voices() []Voice
}

// DefaultKeepAlive matches the interval browsers need to keep a speech
// synthesis engine from idling into an unresponsive state.
const DefaultKeepAlive = 14 * time.Second

// PlaybackController wraps the playback device into an explicit state
// machine with single-speaker exclusivity: at most one element id is
// associated with audio output at any time.
type PlaybackController struct {
	device PlaybackDevice

	mu        sync.Mutex
	state     PlaybackState
	elementID string
	voices    []Voice

	done chan struct{}
}

// NewPlaybackController builds a controller around a device and starts
// the keep-alive loop. A nil device means playback is unavailable and
// every operation is a no-op. Close releases the keep-alive loop.
func NewPlaybackController(device PlaybackDevice, keepAlive time.Duration) *PlaybackController {
	p := &PlaybackController{
		device: device,
		done:   make(chan struct{}),
	}
	if device == nil {
		return p
	}
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}

	p.voices = device.Voices()
	go p.keepAliveLoop(keepAlive)
	return p
}

func (p *PlaybackController) Close() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

func (p *PlaybackController) Supported() bool {
	return p.device != nil
}

func (p *PlaybackController) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SpeakingElementID returns the element currently associated with audio
// output, if any.
func (p *PlaybackController) SpeakingElementID() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elementID, p.elementID != ""
}

// RefreshVoices re-reads the device voice list. Wired to the device's
// voice-list-changed signal; voices load asynchronously on some engines.
func (p *PlaybackController) RefreshVoices() {
	if p.device == nil {
		return
	}
	voices := p.device.Voices()

	p.mu.Lock()
	p.voices = voices
	p.mu.Unlock()
}

// Speak reads text aloud for the given element. If another element is
// currently speaking or paused its session is cancelled first, so only
// one element is ever the active speaking target.
func (p *PlaybackController) Speak(text string, elementID string, langTag string) {
	if p.device == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != PlaybackIdle && p.elementID != elementID {
		p.device.Cancel()
		p.state = PlaybackIdle
		p.elementID = ""
	}

	// The keep-alive pulse can leave the engine paused. Resume it
	// before speaking or the utterance never starts.
	if p.device.Paused() && p.state != PlaybackPaused {
		p.device.Resume()
	}

	p.elementID = elementID
	p.state = PlaybackSpeaking
	p.device.Speak(Utterance{
		Text:      text,
		Lang:      langTag,
		Voice:     p.selectVoice(langTag),
		ElementID: elementID,
	})

	log.WithFields(log.Fields{
		"element": elementID,
		"lang":    langTag,
	}).Info("Speaking")
}

// Pause is only valid from Speaking; a no-op otherwise.
func (p *PlaybackController) Pause() {
	if p.device == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != PlaybackSpeaking {
		return
	}
	p.device.Pause()
	p.state = PlaybackPaused
}

// Resume is only valid from Paused; a no-op otherwise.
func (p *PlaybackController) Resume() {
	if p.device == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != PlaybackPaused {
		return
	}
	p.device.Resume()
	p.state = PlaybackSpeaking
}

// Cancel discards the active utterance, if any, and returns to Idle.
func (p *PlaybackController) Cancel() {
	if p.device == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == PlaybackIdle {
		return
	}
	p.device.Cancel()
	p.state = PlaybackIdle
	p.elementID = ""
}

// OnStart confirms the device began speaking the element's utterance.
func (p *PlaybackController) OnStart(elementID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.elementID != elementID {
		return
	}
	p.state = PlaybackSpeaking
}

func (p *PlaybackController) OnPause(elementID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.elementID != elementID {
		return
	}
	p.state = PlaybackPaused
}

func (p *PlaybackController) OnResume(elementID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.elementID != elementID {
		return
	}
	p.state = PlaybackSpeaking
}

// OnEnd handles natural completion. Callbacks for utterances cancelled by
// an exclusivity takeover carry a stale element id and are ignored.
func (p *PlaybackController) OnEnd(elementID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.elementID != elementID {
		return
	}
	p.state = PlaybackIdle
	p.elementID = ""
}

// keepAliveLoop periodically pulses the engine with a pause/resume pair
// while Idle, preventing it from entering an unresponsive idle state. The
// pulse never fires while Speaking or Paused and never shows up as a
// controller state transition.
func (p *PlaybackController) keepAliveLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.mu.Lock()
			idle := p.state == PlaybackIdle
			p.mu.Unlock()

			if idle {
				p.device.Pause()
				p.device.Resume()
			}
		}
	}
}

// selectVoice picks a voice matching the language tag exactly, then by
// language prefix, then falls back to the device default (zero Voice).
func (p *PlaybackController) selectVoice(langTag string) Voice {
	for _, voice := range p.voices {
		if voice.Lang == langTag {
			return voice
		}
	}

	prefix := langTag
	if idx := strings.IndexAny(langTag, "-_"); idx > 0 {
		prefix = langTag[:idx]
	}
	for _, voice := range p.voices {
		if strings.HasPrefix(voice.Lang, prefix) {
			return voice
		}
	}

	return Voice{}
}
