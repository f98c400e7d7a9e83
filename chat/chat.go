package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/AIConnect-rgb/aiconnct/models"
)

var chatReplies = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "aiconnect_chat_replies_total",
	Help: "Number of AI replies appended to chat threads, by outcome",
}, []string{"outcome"})

// DefaultApology is appended in place of an AI reply when the provider
// round-trip fails. The user's message is kept either way.
const DefaultApology = "I'm sorry, I wasn't able to process that just now. Could you share your thought once more?"

// Session is an open provider-side conversation handle.
type Session interface {
	Send(ctx context.Context, text string) (string, error)
}

// Provider opens provider-side conversations, seeded with the thread's
// synthesized first message as a prior model turn.
type Provider interface {
	StartChat(ctx context.Context, seed string) (Session, error)
}

var (
	ErrBlankMessage = errors.New("chat message is blank")
	ErrNoThread     = errors.New("no chat thread for post")
	ErrReplyPending = errors.New("a reply is already pending for this thread")
)

// Manager owns one conversation per post. Sends are single-flight per
// post; sends for different posts proceed independently.
type Manager struct {
	provider Provider
	apology  string

	mu      sync.Mutex
	threads map[string]*Thread
}

func NewManager(provider Provider) *Manager {
	return &Manager{
		provider: provider,
		apology:  DefaultApology,
		threads:  make(map[string]*Thread),
	}
}

// GetOrCreate returns the thread for a post, creating it on first use.
// The first message is synthesized locally from the analysis with no
// provider round-trip. Idempotent: repeated calls return the same thread
// and never duplicate the synthesized message.
func (m *Manager) GetOrCreate(postID string, analysis *models.AnalysisResult) *Thread {
	m.mu.Lock()
	defer m.mu.Unlock()

	if thread, ok := m.threads[postID]; ok {
		return thread
	}

	thread := &Thread{
		postID: postID,
		seed:   analysis.AutomatedResponseSample,
		messages: []models.ChatMessage{{
			ID:     messageID(postID, 0),
			Author: models.ChatAuthorAI,
			Text:   analysis.AutomatedResponseSample,
		}},
	}
	m.threads[postID] = thread

	log.WithFields(log.Fields{
		"post": postID,
	}).Info("Created chat thread")
	return thread
}

// Thread returns the existing thread for a post, if any.
func (m *Manager) Thread(postID string) (*Thread, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	thread, ok := m.threads[postID]
	return thread, ok
}

// Send appends the user's message and asks the provider for the next
// Socratic reply. The user message is never rolled back: a provider
// failure degrades to a synthesized apology instead of surfacing an
// error, because a thread is a user-authored conversational record.
func (m *Manager) Send(ctx context.Context, postID string, text string, replyingTo string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ErrBlankMessage
	}

	m.mu.Lock()
	thread, ok := m.threads[postID]
	m.mu.Unlock()
	if !ok {
		return models.ChatMessage{}, ErrNoThread
	}

	return thread.send(ctx, m.provider, m.apology, text, replyingTo)
}

// Evict drops threads and their provider sessions for posts that are no
// longer in the feed.
func (m *Manager) Evict(keep []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for postID := range m.threads {
		if !lo.Contains(keep, postID) {
			delete(m.threads, postID)
			log.WithFields(log.Fields{
				"post": postID,
			}).Info("Evicted chat thread")
		}
	}
}

// Thread is the append-only conversation attached to one post. Message
// ids carry a strictly increasing sequence number starting at 0 for the
// synthesized first message.
type Thread struct {
	postID string
	seed   string

	mu       sync.Mutex
	messages []models.ChatMessage
	session  Session
	sending  bool
}

func (t *Thread) PostID() string {
	return t.postID
}

// Messages returns a copy of the thread history.
func (t *Thread) Messages() []models.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	messages := make([]models.ChatMessage, len(t.messages))
	copy(messages, t.messages)
	return messages
}

func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

func (t *Thread) send(ctx context.Context, provider Provider, apology string, text string, replyingTo string) (models.ChatMessage, error) {
	t.mu.Lock()
	if t.sending {
		t.mu.Unlock()
		return models.ChatMessage{}, ErrReplyPending
	}
	t.sending = true
	userMessage := models.ChatMessage{
		ID:             messageID(t.postID, len(t.messages)),
		Author:         models.ChatAuthorUser,
		Text:           text,
		ReplyingToText: replyingTo,
	}
	t.messages = append(t.messages, userMessage)
	t.mu.Unlock()

	reply, err := t.roundTrip(ctx, provider, text)
	outcome := "ai"
	if err != nil {
		log.WithFields(log.Fields{
			"post":  t.postID,
			"error": err,
		}).Warn("Chat round-trip failed, appending apology")
		reply = apology
		outcome = "apology"
	}
	chatReplies.WithLabelValues(outcome).Inc()

	t.mu.Lock()
	aiMessage := models.ChatMessage{
		ID:             messageID(t.postID, len(t.messages)),
		Author:         models.ChatAuthorAI,
		Text:           reply,
		ReplyingToText: text,
	}
	t.messages = append(t.messages, aiMessage)
	t.sending = false
	t.mu.Unlock()

	return aiMessage, nil
}

// roundTrip opens the provider session on first use and reuses it for the
// rest of the thread's life.
func (t *Thread) roundTrip(ctx context.Context, provider Provider, text string) (string, error) {
	t.mu.Lock()
	session := t.session
	seed := t.seed
	t.mu.Unlock()

	if session == nil {
		created, err := provider.StartChat(ctx, seed)
		if err != nil {
			return "", err
		}
		t.mu.Lock()
		t.session = created
		t.mu.Unlock()
		session = created
	}

	return session.Send(ctx, text)
}

func messageID(postID string, seq int) string {
	return fmt.Sprintf("%s-chat-%d", postID, seq)
}
