package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/postboard/internal/domain"
	"github.com/samvad-hq/postboard/internal/logger"
	"github.com/samvad-hq/postboard/pkg/httpclient"
	"github.com/samvad-hq/postboard/pkg/posts"
	"github.com/samvad-hq/postboard/pkg/publishers"
)

var (
	ErrEmptyFields  = errors.New("Kindly fill all field first!")
	ErrNotEditable  = errors.New("This post is not editable!")
	ErrPostNotFound = errors.New("post not found")
)

const defaultPublishTimeout = 10 * time.Second

// EventPublisher receives an event after every successful mutation.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// BoardConfig tunes a Board.
type BoardConfig struct {
	// UserID filters the loaded list and is sent with new posts.
	UserID         string
	PublishTimeout time.Duration
}

// Board keeps the in-memory post list in step with the remote API.
// Every operation returns a channel that receives exactly one value.
type Board struct {
	api            *posts.API
	events         EventPublisher
	log            logger.Logger
	userID         string
	publishTimeout time.Duration

	mu       sync.RWMutex
	posts    []domain.Post
	loaded   bool
	fetching bool
	waiters  []chan error
}

// NewBoard binds a board to api. events may be nil.
func NewBoard(api *posts.API, events EventPublisher, log logger.Logger, cfg BoardConfig) *Board {
	if log == nil {
		log = logger.NopLogger{}
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	return &Board{
		api:            api,
		events:         events,
		log:            log,
		userID:         strings.TrimSpace(cfg.UserID),
		publishTimeout: cfg.PublishTimeout,
	}
}

// Posts returns a snapshot of the current list.
func (b *Board) Posts() []domain.Post {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Post, len(b.posts))
	copy(out, b.posts)
	return out
}

// Find returns the first post with id.
func (b *Board) Find(id string) (domain.Post, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.indexOf(id); i >= 0 {
		return b.posts[i], true
	}
	return domain.Post{}, false
}

// Loaded reports whether a list fetch has been started on this board.
func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// Load fetches the list the first time it is called. Calls made while that fetch is
// in flight share its outcome; later calls resolve immediately unless it failed.
func (b *Board) Load(ctx context.Context) <-chan error {
	b.mu.Lock()
	if b.loaded && !b.fetching {
		b.mu.Unlock()
		return resolved(nil)
	}
	out := make(chan error, 1)
	b.waiters = append(b.waiters, out)
	if b.fetching {
		b.mu.Unlock()
		return out
	}
	b.loaded = true
	b.fetching = true
	b.mu.Unlock()

	b.fetch(ctx, b.finishLoad)
	return out
}

// Reload always fetches and replaces the list.
func (b *Board) Reload(ctx context.Context) <-chan error {
	b.mu.Lock()
	b.loaded = true
	b.mu.Unlock()

	out := make(chan error, 1)
	b.fetch(ctx, func(err error) { out <- err })
	return out
}

func (b *Board) fetch(ctx context.Context, done func(error)) {
	b.api.List(ctx, b.userID).Then(func(env httpclient.Envelope) {
		list, err := posts.ParsePosts(env)
		if list == nil && err != nil {
			done(err)
			return
		}
		if err != nil {
			b.log.WarnObj("skipped invalid posts", "board_load", map[string]any{
				"kept":  len(list),
				"error": err.Error(),
			})
		}
		b.mu.Lock()
		b.posts = list
		b.mu.Unlock()
		b.log.InfoObj("posts loaded", "board_load", map[string]any{
			"count":   len(list),
			"user_id": b.userID,
		})
		done(nil)
	}, done)
}

// finishLoad hands one outcome to every Load waiting on the in-flight fetch. A failure
// clears loaded so the next Load retries.
func (b *Board) finishLoad(err error) {
	b.mu.Lock()
	waiters := b.waiters
	b.waiters = nil
	b.fetching = false
	if err != nil {
		b.loaded = false
	}
	b.mu.Unlock()

	for _, w := range waiters {
		w <- err
	}
}

// Create posts a new entry and appends the server's copy, marked as created locally.
func (b *Board) Create(ctx context.Context, title, body string) <-chan error {
	if blank(title) || blank(body) {
		return resolved(ErrEmptyFields)
	}

	out := make(chan error, 1)
	draft := domain.Draft{UserID: b.userID, Title: title, Body: body}
	b.api.Create(ctx, draft).Then(func(env httpclient.Envelope) {
		post, err := posts.ParseEnvelope(env, true)
		if err != nil {
			out <- err
			return
		}
		b.mu.Lock()
		b.posts = append(b.posts, post)
		b.mu.Unlock()

		b.publish(ctx, publishers.ActionCreated, post)
		out <- nil
	}, func(err error) {
		out <- err
	})
	return out
}

// Edit replaces title and body of a post that came from the server.
func (b *Board) Edit(ctx context.Context, id, title, body string) <-chan error {
	if blank(title) || blank(body) {
		return resolved(ErrEmptyFields)
	}
	current, ok := b.Find(id)
	if !ok {
		return resolved(ErrPostNotFound)
	}
	if current.CreatedManually {
		return resolved(ErrNotEditable)
	}

	out := make(chan error, 1)
	draft := domain.Draft{UserID: current.UserID, Title: title, Body: body}
	b.api.Update(ctx, current.ID, draft).Then(func(env httpclient.Envelope) {
		updated, err := posts.ParseEnvelope(env, current.CreatedManually)
		if err != nil {
			out <- err
			return
		}
		b.mu.Lock()
		if i := b.indexOf(current.ID); i >= 0 {
			b.posts[i] = updated
		}
		b.mu.Unlock()

		b.publish(ctx, publishers.ActionUpdated, updated)
		out <- nil
	}, func(err error) {
		out <- err
	})
	return out
}

// Delete removes a post once the server accepts the request.
func (b *Board) Delete(ctx context.Context, id string) <-chan error {
	current, ok := b.Find(id)
	if !ok {
		return resolved(ErrPostNotFound)
	}

	out := make(chan error, 1)
	b.api.Delete(ctx, current.ID).Then(func(httpclient.Envelope) {
		b.mu.Lock()
		if i := b.indexOf(current.ID); i >= 0 {
			b.posts = append(b.posts[:i], b.posts[i+1:]...)
		}
		b.mu.Unlock()

		b.publish(ctx, publishers.ActionDeleted, current)
		out <- nil
	}, func(err error) {
		out <- err
	})
	return out
}

// publish runs on the dispatcher goroutine; sink failures are logged and never fail
// the mutation.
func (b *Board) publish(ctx context.Context, action publishers.Action, post domain.Post) {
	if b.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.publishTimeout)
	defer cancel()

	delivered, err := b.events.Publish(pctx, publishers.NewEvent(action, post))
	if err != nil {
		b.log.ErrorObj("publish post event failed", "board_publish", map[string]any{
			"action":    action,
			"post_id":   post.ID,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	b.log.DebugObj("post event published", "board_publish", map[string]any{
		"action":    action,
		"post_id":   post.ID,
		"delivered": delivered,
	})
}

// indexOf expects b.mu to be held.
func (b *Board) indexOf(id string) int {
	id = strings.TrimSpace(id)
	for i, p := range b.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func resolved(err error) <-chan error {
	out := make(chan error, 1)
	out <- err
	return out
}
