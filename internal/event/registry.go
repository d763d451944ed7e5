package event

import (
	"sort"
	"sync"

	"github.com/snipline/snipline/internal/event/topic"
)

// registry stores subscriptions and resolves which ones match a topic.
// Exact topics are indexed directly; wildcard patterns are scanned.
type registry struct {
	mu       sync.RWMutex
	exact    map[topic.Topic][]*subscription
	patterns []*subscription
	nextSeq  uint64
}

func newRegistry() *registry {
	return &registry{
		exact: make(map[topic.Topic][]*subscription),
	}
}

func (r *registry) add(s *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.seq = r.nextSeq
	r.nextSeq++

	if s.pattern.IsPattern() {
		r.patterns = append(r.patterns, s)
		return
	}
	r.exact[s.pattern] = append(r.exact[s.pattern], s)
}

// remove detaches a subscription by ID. Returns false if unknown.
func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.patterns {
		if s.id == id {
			r.patterns = append(r.patterns[:i], r.patterns[i+1:]...)
			return true
		}
	}
	for t, subs := range r.exact {
		for i, s := range subs {
			if s.id == id {
				subs = append(subs[:i], subs[i+1:]...)
				if len(subs) == 0 {
					delete(r.exact, t)
				} else {
					r.exact[t] = subs
				}
				return true
			}
		}
	}
	return false
}

// match returns the subscriptions whose pattern matches the topic,
// ordered by priority then registration order. The slice is a copy;
// handlers run without the registry lock held, so re-entrant publishes
// and subscribes from inside a handler are safe.
func (r *registry) match(t topic.Topic) []*subscription {
	r.mu.RLock()
	matched := make([]*subscription, 0, len(r.exact[t])+len(r.patterns))
	matched = append(matched, r.exact[t]...)
	for _, s := range r.patterns {
		if t.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].priority != matched[j].priority {
			return matched[i].priority < matched[j].priority
		}
		return matched[i].seq < matched[j].seq
	})
	return matched
}

// countActive returns the number of active subscriptions.
func (r *registry) countActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, subs := range r.exact {
		for _, s := range subs {
			if s.State() == StateActive {
				n++
			}
		}
	}
	for _, s := range r.patterns {
		if s.State() == StateActive {
			n++
		}
	}
	return n
}

// clear cancels and removes every subscription.
func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, subs := range r.exact {
		for _, s := range subs {
			s.Cancel()
		}
	}
	for _, s := range r.patterns {
		s.Cancel()
	}
	r.exact = make(map[topic.Topic][]*subscription)
	r.patterns = nil
}
