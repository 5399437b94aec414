package session

import (
	"context"
	"errors"
	"sync"
)

// State is the auth state observed by the rest of the application.
type State struct {
	Token         string
	Authenticated bool
}

// Context is the explicit auth context handed to everything that needs
// auth state. Writes go straight to the Store; the cached State only
// changes on Invalidate, which also notifies subscribers.
type Context struct {
	store Store

	mu     sync.RWMutex
	state  State
	subs   map[int]chan State
	nextID int
}

// NewContext loads the current token from store.
func NewContext(ctx context.Context, store Store) (*Context, error) {
	c := &Context{
		store: store,
		subs:  make(map[int]chan State),
	}
	state, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.state = state
	return c, nil
}

// State returns the last published auth state
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Token returns the token of the last published state
func (c *Context) Token() string {
	return c.State().Token
}

// Authenticated reports whether the last published state has a token
func (c *Context) Authenticated() bool {
	return c.State().Authenticated
}

// SetToken persists token. Observers see it after the next Invalidate.
func (c *Context) SetToken(ctx context.Context, token string) error {
	return c.store.SetToken(ctx, token)
}

// Clear removes the stored token and publishes the logged out state.
func (c *Context) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	return c.Invalidate(ctx)
}

// Invalidate reloads the state from the store and publishes it.
func (c *Context) Invalidate(ctx context.Context) error {
	state, err := c.load(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.state = state
	subs := make([]chan State, 0, len(c.subs))
	for _, ch := range c.subs {
		subs = append(subs, ch)
	}
	c.mu.Unlock()

	for _, ch := range subs {
		publish(ch, state)
	}
	return nil
}

// Subscribe returns a channel that receives every published state and a
// function that stops the subscription. Slow readers only see the latest
// state.
func (c *Context) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
	return ch, cancel
}

func (c *Context) load(ctx context.Context) (State, error) {
	token, err := c.store.Token(ctx)
	if errors.Is(err, ErrNoSession) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}
	return State{Token: token, Authenticated: true}, nil
}

// publish replaces any unread state with the new one.
func publish(ch chan State, s State) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
