package notify

import (
	"sync"

	"qanda-service/internal/models"
)

// Registry tracks live connections by role. Guests are counted but never addressed.
type Registry struct {
	mu     sync.RWMutex
	tutors map[*Connection]struct{}
	studs  map[*Connection]struct{}
	guests map[*Connection]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		tutors: make(map[*Connection]struct{}),
		studs:  make(map[*Connection]struct{}),
		guests: make(map[*Connection]struct{}),
	}
}

func (r *Registry) set(c *Connection) map[*Connection]struct{} {
	switch models.Role(c.Role()) {
	case models.RoleTutor:
		return r.tutors
	case models.RoleStudent:
		return r.studs
	default:
		return r.guests
	}
}

func (r *Registry) Register(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.set(c)[c] = struct{}{}
}

// Unregister is safe to call more than once.
func (r *Registry) Unregister(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.set(c), c)
}

// Members returns a snapshot of the connections addressed by audience.
func (r *Registry) Members(audience Audience) ([]*Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Connection

	switch audience {
	case AudienceTutors:
		out = make([]*Connection, 0, len(r.tutors))
		for c := range r.tutors {
			out = append(out, c)
		}
	case AudienceStudents:
		out = make([]*Connection, 0, len(r.studs))
		for c := range r.studs {
			out = append(out, c)
		}
	case AudienceBroadcast:
		out = make([]*Connection, 0, len(r.tutors)+len(r.studs))
		for c := range r.tutors {
			out = append(out, c)
		}
		for c := range r.studs {
			out = append(out, c)
		}
	default:
		return nil, ErrUnknownAudience
	}

	return out, nil
}

// Count reports every live connection, guests included.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tutors) + len(r.studs) + len(r.guests)
}
