package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tesseract-integrations/tesseract-api/internal/models"
)

type noopGateway struct{}

func (noopGateway) CheckAvailability(context.Context, models.AvailabilityRequest) []models.TimeSlot {
	return nil
}
func (noopGateway) CreateBooking(context.Context, models.BookingState) error { return nil }
func (noopGateway) SendFollowUp(models.FollowupRequest)                      {}

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(noopGateway{}, time.Minute)

	id, m := store.Create("Europe/Berlin")
	assert.Contains(t, id, "wiz_")
	assert.NotNil(t, m)

	got := store.Get(id)
	assert.Same(t, m, got)
	assert.Equal(t, 1, store.Count())
}

func TestStore_GetUnknownReturnsNil(t *testing.T) {
	store := NewStore(noopGateway{}, time.Minute)

	assert.Nil(t, store.Get("wiz_missing"))
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(noopGateway{}, time.Minute)

	id, _ := store.Create("")
	store.Delete(id)

	assert.Nil(t, store.Get(id))
	assert.Equal(t, 0, store.Count())
}

func TestStore_SessionsExpire(t *testing.T) {
	store := NewStore(noopGateway{}, 20*time.Millisecond)

	id, _ := store.Create("")
	time.Sleep(50 * time.Millisecond)

	assert.Nil(t, store.Get(id))
}
