package timing

import (
	"sync"
	"time"

	"github.com/libradesk/libradesk/internal/event_bus"
	"github.com/libradesk/libradesk/internal/utils"
	"github.com/libradesk/libradesk/pkg/branch"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxSessions = 256
	DefaultSessionIdle = 30 * time.Minute
)

// CacheFactory builds the view cache of a new editor session.
type CacheFactory func(session string) Cache

type editorSession struct {
	page     *Page
	lastUsed time.Time
}

// Registry keeps one Page per editor session. Sessions unused for longer than
// the idle timeout are dropped, and once maxSessions are open the least
// recently used one makes room for a new session. Unsaved edits of a dropped
// session survive only in a shared cache backend.
type Registry struct {
	service  Service
	branches BranchDirectory
	clock    utils.Clock
	newCache CacheFactory

	maxSessions int
	idle        time.Duration

	mu       sync.Mutex
	sessions map[string]*editorSession
}

// NewRegistry creates the registry and, when bus is set, extends the branch
// list of every session whenever a branch is created.
func NewRegistry(service Service, branches BranchDirectory, clock utils.Clock, newCache CacheFactory, bus *event_bus.EventBus) *Registry {
	if newCache == nil {
		newCache = func(string) Cache { return NewMemoryCache() }
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	r := &Registry{
		service:     service,
		branches:    branches,
		clock:       clock,
		newCache:    newCache,
		maxSessions: DefaultMaxSessions,
		idle:        DefaultSessionIdle,
		sessions:    make(map[string]*editorSession),
	}
	if bus != nil {
		event_bus.SubscribeTyped[event_bus.BranchCreated](bus, event_bus.BranchCreatedEvent, r.onBranchCreated)
	}
	return r
}

// WithSessionLimits replaces the default session cap and idle timeout.
// Non-positive values keep the defaults.
func (r *Registry) WithSessionLimits(maxSessions int, idle time.Duration) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if maxSessions > 0 {
		r.maxSessions = maxSessions
	}
	if idle > 0 {
		r.idle = idle
	}
	return r
}

// Page returns the page of session, creating it on first use.
func (r *Registry) Page(name string) *Page {
	if name == "" {
		name = DefaultSession
	}
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropIdle(now)
	if s, ok := r.sessions[name]; ok {
		s.lastUsed = now
		return s.page
	}
	if len(r.sessions) >= r.maxSessions {
		r.dropOldest()
	}
	log.Debugf("opening editor session %q", name)
	page := NewPage(r.service, r.branches, r.newCache(name), r.clock)
	r.sessions[name] = &editorSession{page: page, lastUsed: now}
	return page
}

// Sessions returns the number of open editor sessions.
func (r *Registry) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// dropIdle must be called with r.mu held.
func (r *Registry) dropIdle(now time.Time) {
	for name, s := range r.sessions {
		if now.Sub(s.lastUsed) > r.idle {
			log.Debugf("closing idle editor session %q", name)
			delete(r.sessions, name)
		}
	}
}

// dropOldest must be called with r.mu held.
func (r *Registry) dropOldest() {
	var oldest string
	var oldestUsed time.Time
	for name, s := range r.sessions {
		if oldest == "" || s.lastUsed.Before(oldestUsed) {
			oldest, oldestUsed = name, s.lastUsed
		}
	}
	if oldest != "" {
		log.Infof("editor session limit of %d reached, closing session %q", r.maxSessions, oldest)
		delete(r.sessions, oldest)
	}
}

func (r *Registry) onBranchCreated(e event_bus.EventT[event_bus.BranchCreated]) error {
	b := branch.Branch{Id: e.Data.Id, Name: e.Data.Name, Address: e.Data.Address}
	r.mu.Lock()
	pages := make([]*Page, 0, len(r.sessions))
	for _, s := range r.sessions {
		pages = append(pages, s.page)
	}
	r.mu.Unlock()

	for _, page := range pages {
		page.addBranch(b)
	}
	return nil
}
