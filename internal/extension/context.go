package extension

import (
	"sync"

	"github.com/snipline/snipline/internal/event"
	"github.com/snipline/snipline/internal/event/topic"
	"github.com/snipline/snipline/internal/log"
)

// Context is handed to a feature on activation. Subscriptions made
// through it are tracked and cancelled together on Dispose, so a
// feature cannot leak handlers past its own deactivation.
type Context struct {
	host   Host
	bus    *event.Bus
	logger *log.Logger

	mu   sync.Mutex
	subs []event.Subscription
}

// NewContext creates an activation context.
func NewContext(host Host, bus *event.Bus, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.Null
	}
	return &Context{
		host:   host,
		bus:    bus,
		logger: logger,
	}
}

// Host returns the editor surface.
func (c *Context) Host() Host {
	return c.host
}

// Logger returns the context logger.
func (c *Context) Logger() *log.Logger {
	return c.logger
}

// Subscribe registers a bus handler whose lifetime is bound to this
// context.
func (c *Context) Subscribe(pattern topic.Topic, handler event.Handler, opts ...event.SubscriptionOption) (event.Subscription, error) {
	sub, err := c.bus.Subscribe(pattern, handler, opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	return sub, nil
}

// Dispose cancels every subscription made through the context.
func (c *Context) Dispose() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}
