// Package session maps outstanding notification messages back to the
// (chore, assignee) pair they represent, so an incoming reaction event can
// be resolved to an engine call. The cache is ephemeral: it is rebuilt as
// messages are posted and never persisted.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Entry is one outstanding assignment notification.
type Entry struct {
	Chore    string
	Assignee string
}

// Cache is safe for concurrent handler use.
type Cache struct {
	mu          sync.RWMutex
	assignments map[string]Entry
	votes       map[string]string // handle -> chore with an open difficulty vote
}

func NewCache() *Cache {
	return &Cache{
		assignments: make(map[string]Entry),
		votes:       make(map[string]string),
	}
}

// NewHandle mints a handle for callers that do not have a platform message
// id yet.
func NewHandle() string {
	return uuid.New().String()
}

// Put registers a notification handle. Registering must happen in the same
// logical step as the engine call that produced the assignment, before the
// handler returns, so a reaction can never resolve to a stale assignee.
func (c *Cache) Put(handle, chore, assignee string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assignments[handle] = Entry{Chore: chore, Assignee: assignee}
}

// Resolve looks up the (chore, assignee) for a handle.
func (c *Cache) Resolve(handle string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.assignments[handle]
	return entry, ok
}

// Invalidate drops one handle.
func (c *Cache) Invalidate(handle string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.assignments, handle)
}

// InvalidateChore drops every handle that points at the given chore. Used
// when a reassignment replaces the outstanding notification.
func (c *Cache) InvalidateChore(chore string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for handle, entry := range c.assignments {
		if entry.Chore == chore {
			delete(c.assignments, handle)
		}
	}
}

// Clear drops all assignment handles. Called when a new cycle is posted.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assignments = make(map[string]Entry)
}

// PutVote registers an open difficulty vote message.
func (c *Cache) PutVote(handle, chore string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.votes[handle] = chore
}

// ResolveVote looks up the chore a vote message belongs to.
func (c *Cache) ResolveVote(handle string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	chore, ok := c.votes[handle]
	return chore, ok
}

// InvalidateVote drops a settled or cancelled vote handle.
func (c *Cache) InvalidateVote(handle string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.votes, handle)
}
