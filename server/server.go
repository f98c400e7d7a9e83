package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/AIConnect-rgb/aiconnct/chat"
	"github.com/AIConnect-rgb/aiconnct/feed"
	"github.com/AIConnect-rgb/aiconnct/lang"
	"github.com/AIConnect-rgb/aiconnct/models"
)

// Corrector is the best-effort proofreading side of the provider. It
// never fails; on any trouble the original text comes back unchanged.
type Corrector interface {
	Correct(ctx context.Context, text string, langTag string) string
}

type ServerConfig struct {

	// The hostname to use for the server
	Hostname string

	// The feed collection and its orchestrator
	Feed         *feed.Feed
	Orchestrator *feed.Orchestrator

	// Per-post chat threads
	Chat *chat.Manager

	// Proofreading endpoint backend
	Corrector Corrector

	// Broadcast channel to pass feed events to SSE clients
	Broadcaster *Broadcaster
}

// Make it sync
type Broadcaster struct {
	sync.RWMutex
	clients map[string]chan interface{}
}

// Constructor
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]chan interface{}, 10000),
	}
}

func (b *Broadcaster) Broadcast(event interface{}) {
	b.RLock()
	defer b.RUnlock()

	for id, client := range b.clients {
		select {
		case client <- event: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping event for client: %v", id)
		}
	}
}

// Function to add a client to the broadcaster
func (b *Broadcaster) AddClient(key string, client chan interface{}) {
	b.Lock()
	defer b.Unlock()
	b.clients[key] = client
	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.clients),
	}).Info("Adding client to broadcaster")
}

// Function to remove a client from the broadcaster
func (b *Broadcaster) RemoveClient(key string) {
	b.Lock()
	defer b.Unlock()

	if client, ok := b.clients[key]; ok { // Check if the client exists
		close(client)          // Safely close the channel
		delete(b.clients, key) // Remove from the map
	}

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.clients),
	}).Info("Removed client from broadcaster")
}

func (b *Broadcaster) Shutdown() {
	log.Info("Shutting down broadcaster")
	b.Lock()
	defer b.Unlock()
	for _, client := range b.clients {
		close(client)
	}
	b.clients = make(map[string]chan interface{})
}

// RejectionEvent carries the user-visible form of a rolled back
// submission to SSE clients.
type RejectionEvent struct {
	Kind    models.ErrorKind `json:"kind"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
}

var rejectionMessages = map[models.ErrorKind]RejectionEvent{
	models.KindConfiguration: {
		Title:   "Configuration issue",
		Message: "There seems to be an issue with the service configuration. Please contact support if this persists.",
	},
	models.KindSafetyRejected: {
		Title:   "Content moderation",
		Message: "The submission was blocked due to safety settings. Please modify your input.",
	},
	models.KindConnectivity: {
		Title:   "Connection problem",
		Message: "Could not connect to the AI service. Please check your internet connection and try again.",
	},
	models.KindEmptyResponse: {
		Title:   "Empty response",
		Message: "The AI returned an empty response. Please try modifying your post.",
	},
	models.KindFormat: {
		Title:   "Unexpected format",
		Message: "The AI's response was not in the expected format. This can happen with complex requests. Please try again.",
	},
	models.KindUnknown: {
		Title:   "Unexpected error",
		Message: "An unexpected error occurred. Please try again later.",
	},
}

// Rejection resolves a classified error to its user-visible event.
func Rejection(analysisErr *models.AnalysisError) RejectionEvent {
	event, ok := rejectionMessages[analysisErr.Kind]
	if !ok {
		event = rejectionMessages[models.KindUnknown]
	}
	event.Kind = analysisErr.Kind
	return event
}

// Returns a fiber.App instance to be used as an HTTP server for the
// AI Connect feed and chat API
func Server(config *ServerConfig) *fiber.App {

	bc := config.Broadcaster

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		// start timer
		start := time.Now()

		// next routes
		err := c.Next()

		// stop timer
		stop := time.Now()

		// Diff
		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	app.Use(cors.New(cors.Config{
		AllowHeaders: "Cache-Control, Content-Type",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Submit a new post for analysis
	app.Post("/api/posts", func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).SendString("Invalid request body")
		}
		if strings.TrimSpace(body.Text) == "" {
			return c.Status(400).SendString("Post text is blank")
		}

		// The settlement outlives this request; provider calls are not
		// cancellable mid-flight.
		pending, ok := config.Orchestrator.Submit(context.Background(), body.Text)
		if !ok {
			return c.Status(409).SendString("A submission is already being analyzed")
		}

		return c.Status(202).JSON(pending)
	})

	// Current feed, head first
	app.Get("/api/feed", func(c *fiber.Ctx) error {
		return c.JSON(config.Feed.Posts())
	})

	app.Get("/api/posts/:id", func(c *fiber.Ctx) error {
		post, ok := config.Feed.Get(c.Params("id"))
		if !ok {
			return c.Status(404).SendString("Unknown post")
		}
		return c.JSON(post)
	})

	// Speech language for a post: the provider-detected code once the
	// post is analyzed, a local detection before that.
	app.Get("/api/posts/:id/speech", func(c *fiber.Ctx) error {
		post, ok := config.Feed.Get(c.Params("id"))
		if !ok {
			return c.Status(404).SendString("Unknown post")
		}

		code := ""
		if post.Analysis != nil {
			code = post.Analysis.Lang
		}
		if code == "" {
			code = lang.Detect(post.Text)
		}

		return c.JSON(fiber.Map{
			"lang":      code,
			"speechTag": lang.SpeechTag(code),
		})
	})

	// Thread history, creating the thread lazily once analysis exists
	app.Get("/api/posts/:id/chat", func(c *fiber.Ctx) error {
		post, ok := config.Feed.Get(c.Params("id"))
		if !ok {
			return c.Status(404).SendString("Unknown post")
		}
		if post.Analysis == nil {
			return c.Status(409).SendString("Post has not been analyzed yet")
		}

		thread := config.Chat.GetOrCreate(post.ID, post.Analysis)
		return c.JSON(thread.Messages())
	})

	// Send a chat message on a post's thread
	app.Post("/api/posts/:id/chat", func(c *fiber.Ctx) error {
		var body struct {
			Text       string `json:"text"`
			ReplyingTo string `json:"replyingTo"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).SendString("Invalid request body")
		}

		post, ok := config.Feed.Get(c.Params("id"))
		if !ok {
			return c.Status(404).SendString("Unknown post")
		}
		if post.Analysis == nil {
			return c.Status(409).SendString("Post has not been analyzed yet")
		}

		config.Chat.GetOrCreate(post.ID, post.Analysis)

		message, err := config.Chat.Send(context.Background(), post.ID, body.Text, body.ReplyingTo)
		switch {
		case errors.Is(err, chat.ErrBlankMessage):
			return c.Status(400).SendString("Chat message is blank")
		case errors.Is(err, chat.ErrReplyPending):
			return c.Status(409).SendString("A reply is already pending for this post")
		case err != nil:
			log.WithFields(log.Fields{
				"post":  post.ID,
				"error": err,
			}).Error("Error sending chat message")
			return c.Status(500).SendString("Error sending chat message")
		}

		return c.Status(201).JSON(message)
	})

	// Best-effort proofreading; never fails
	app.Post("/api/correct", func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
			Lang string `json:"lang"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).SendString("Invalid request body")
		}

		code := body.Lang
		if code == "" {
			code = lang.Detect(body.Text)
		}

		corrected := config.Corrector.Correct(context.Background(), body.Text, code)
		return c.JSON(fiber.Map{
			"text": corrected,
			"lang": code,
		})
	})

	app.Delete("/api/feed/sse", func(c *fiber.Ctx) error {
		key := c.Query("key", "")
		bc.RemoveClient(key)
		return c.Status(200).SendString("OK")
	})

	app.Get("/api/feed/sse", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("Transfer-Encoding", "chunked")

		// Unique client key
		key := uuid.New().String()
		eventChan := make(chan interface{}, 10) // Buffered channel
		aliveChan := time.NewTicker(5 * time.Second)

		defer aliveChan.Stop()

		// Register the client
		bc.AddClient(key, eventChan)

		// Cleanup function
		cleanup := func() {
			log.Infof("Cleaning up SSE stream for client: %s", key)
			bc.RemoveClient(key)
		}

		// Use StreamWriter to manage SSE streaming
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cleanup()

			// Send initial event with client key
			fmt.Fprintf(w, "event: init\ndata: %s\n\n", key)
			if err := w.Flush(); err != nil {
				log.Errorf("Failed to send init event: %v", err)
				return
			}

			// Start streaming loop
			for {
				select {
				case <-aliveChan.C:
					// Send keep-alive pings
					if _, err := fmt.Fprintf(w, "event: ping\ndata: \n\n"); err != nil {
						log.Warnf("Failed to send ping to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush ping for client %s: %v", key, err)
						return
					}

				case event, ok := <-eventChan:
					if !ok {
						log.Warnf("Event channel closed for client %s", key)
						return
					}
					if err := writeEvent(w, event); err != nil {
						log.Warnf("Failed to send event to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush event for client %s: %v", key, err)
						return
					}
				}
			}
		}))

		return nil
	})

	return app
}

func writeEvent(w *bufio.Writer, event interface{}) error {
	var name string
	var payload interface{}

	switch event := event.(type) {
	case models.CreatePostEvent:
		name, payload = "post-pending", event.Post
	case models.UpdatePostEvent:
		name, payload = "post-analyzed", event.Post
	case models.DeletePostEvent:
		name, payload = "post-removed", event.Post
	case RejectionEvent:
		name, payload = "analysis-error", event
	default:
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", name, err)
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
