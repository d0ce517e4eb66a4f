package wizard

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/google/uuid"
	"github.com/tesseract-integrations/tesseract-api/internal/booking"
)

// Store keeps server-side booking wizard sessions in memory. Sessions
// expire after the configured TTL; every read or write refreshes the
// expiration so an active visitor never loses their progress mid-flow.
type Store struct {
	cache   *gocache.Cache
	ttl     time.Duration
	gateway booking.Gateway
}

func NewStore(gateway booking.Gateway, ttl time.Duration) *Store {
	return &Store{
		cache:   gocache.New(ttl, 10*time.Minute),
		ttl:     ttl,
		gateway: gateway,
	}
}

// Create starts a new wizard session and returns its ID along with the
// machine that will drive it.
func (s *Store) Create(timezone string) (string, *booking.Machine) {
	id := "wiz_" + uuid.New().String()
	m := booking.NewMachine(s.gateway, timezone)
	s.cache.Set(id, m, s.ttl)
	return id, m
}

// Get returns the machine for a session, or nil if the session does not
// exist or has expired.
func (s *Store) Get(id string) *booking.Machine {
	v, found := s.cache.Get(id)
	if !found {
		return nil
	}
	m, ok := v.(*booking.Machine)
	if !ok {
		return nil
	}
	// Sliding expiration: touching a session keeps it alive.
	s.cache.Set(id, m, s.ttl)
	return m
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
