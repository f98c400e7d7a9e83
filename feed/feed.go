package feed

import (
	"sync"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/AIConnect-rgb/aiconnct/models"
)

// Feed is the ordered post collection, newest first. It is the single
// owner of post lifecycle mutations; posts are copied on the way in and
// out so no caller can mutate a stored post's text or id.
type Feed struct {
	mu     sync.RWMutex
	posts  []models.Post
	events chan interface{}
}

func New() *Feed {
	return &Feed{
		events: make(chan interface{}, 64),
	}
}

// Events returns the single-consumer stream of feed mutations. The serve
// loop fans these out to SSE clients and the chat thread evictor.
func (f *Feed) Events() <-chan interface{} {
	return f.events
}

// InsertHead places a post at the head of the feed.
func (f *Feed) InsertHead(post models.Post) {
	f.mu.Lock()
	f.posts = append([]models.Post{post}, f.posts...)
	f.mu.Unlock()

	f.emit(models.CreatePostEvent{Post: post})
}

// ReplaceByID settles a post in place by id, not by position, so posts
// inserted meanwhile keep their slots.
func (f *Feed) ReplaceByID(id string, post models.Post) bool {
	f.mu.Lock()
	_, idx, found := lo.FindIndexOf(f.posts, func(p models.Post) bool {
		return p.ID == id
	})
	if !found {
		f.mu.Unlock()
		return false
	}
	f.posts[idx] = post
	f.mu.Unlock()

	f.emit(models.UpdatePostEvent{Post: post})
	return true
}

// RemoveByID drops a post from the feed entirely.
func (f *Feed) RemoveByID(id string) bool {
	f.mu.Lock()
	removed, _, found := lo.FindIndexOf(f.posts, func(p models.Post) bool {
		return p.ID == id
	})
	if !found {
		f.mu.Unlock()
		return false
	}
	f.posts = lo.Filter(f.posts, func(p models.Post, _ int) bool {
		return p.ID != id
	})
	f.mu.Unlock()

	f.emit(models.DeletePostEvent{Post: removed})
	return true
}

// Get returns a copy of the post with the given id.
func (f *Feed) Get(id string) (models.Post, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return lo.Find(f.posts, func(p models.Post) bool {
		return p.ID == id
	})
}

// Posts returns a copy of the feed, head first.
func (f *Feed) Posts() []models.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()

	posts := make([]models.Post, len(f.posts))
	copy(posts, f.posts)
	return posts
}

// IDs returns the ids of every post currently in the feed.
func (f *Feed) IDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return lo.Map(f.posts, func(p models.Post, _ int) string {
		return p.ID
	})
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.posts)
}

func (f *Feed) emit(event interface{}) {
	select {
	case f.events <- event: // Non-blocking send
	default:
		log.Warn("Feed event channel full, dropping event")
	}
}
