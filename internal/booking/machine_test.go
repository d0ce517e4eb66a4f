package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tesseract-integrations/tesseract-api/internal/booking"
	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
)

func init() {
	_ = logger.Initialize(logger.Config{
		Level:       "error",
		Environment: "development",
	})
}

// stubGateway lets tests script availability and booking outcomes
type stubGateway struct {
	slots     []models.TimeSlot
	createErr error
	created   []models.BookingState
	followups []models.FollowupRequest
}

func (g *stubGateway) CheckAvailability(_ context.Context, _ models.AvailabilityRequest) []models.TimeSlot {
	return g.slots
}

func (g *stubGateway) CreateBooking(_ context.Context, state models.BookingState) error {
	if g.createErr != nil {
		return g.createErr
	}
	g.created = append(g.created, state)
	return nil
}

func (g *stubGateway) SendFollowUp(req models.FollowupRequest) {
	g.followups = append(g.followups, req)
}

func validContact() *models.ContactInfo {
	return &models.ContactInfo{
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		Company:   "Analytical Engines",
		Role:      "CTO",
		Challenge: "We need to automate our invoice processing pipeline",
	}
}

// walkToTimeSelection drives a fresh machine through steps 1 and 2
func walkToTimeSelection(t *testing.T, m *booking.Machine) {
	t.Helper()
	ctx := context.Background()

	m.Apply(ctx, booking.Action{Kind: booking.ActionSelectMeetingType, MeetingType: models.MeetingTypeDiscovery})
	snap := m.Apply(ctx, booking.Action{Kind: booking.ActionNext})
	assert.Equal(t, 2, snap.State.CurrentStep)

	m.Apply(ctx, booking.Action{Kind: booking.ActionUpdateContact, Contact: validContact()})
	snap = m.Apply(ctx, booking.Action{Kind: booking.ActionNext})
	assert.Equal(t, 3, snap.State.CurrentStep)
}

func TestMachine_StartsAtStepOneWithDefaults(t *testing.T) {
	m := booking.NewMachine(&stubGateway{}, "")

	snap := m.Snapshot()
	assert.Equal(t, 1, snap.State.CurrentStep)
	assert.Equal(t, "America/Chicago", snap.State.Timezone)
	assert.Empty(t, snap.Errors)
}

func TestMachine_NextWithoutMeetingTypeStaysOnStepOne(t *testing.T) {
	m := booking.NewMachine(&stubGateway{}, "")

	snap := m.Apply(context.Background(), booking.Action{Kind: booking.ActionNext})

	assert.Equal(t, 1, snap.State.CurrentStep)
	assert.Equal(t, "Please select a meeting type", snap.Errors["meetingType"])
}

func TestMachine_InvalidMeetingTypeRejected(t *testing.T) {
	m := booking.NewMachine(&stubGateway{}, "")

	snap := m.Apply(context.Background(), booking.Action{Kind: booking.ActionSelectMeetingType, MeetingType: "board-meeting"})

	assert.Equal(t, "", snap.State.MeetingType)
	assert.NotEmpty(t, snap.Errors["meetingType"])
}

func TestMachine_ContactValidationReportsAllFields(t *testing.T) {
	m := booking.NewMachine(&stubGateway{}, "")
	ctx := context.Background()

	m.Apply(ctx, booking.Action{Kind: booking.ActionSelectMeetingType, MeetingType: models.MeetingTypeTechnical})
	m.Apply(ctx, booking.Action{Kind: booking.ActionNext})

	// Invalid email and a too-short challenge, everything else missing
	snap := m.Apply(ctx, booking.Action{Kind: booking.ActionUpdateContact, Contact: &models.ContactInfo{
		Email:     "not-an-email",
		Challenge: "too short",
	}})
	snap = m.Apply(ctx, booking.Action{Kind: booking.ActionNext})

	assert.Equal(t, 2, snap.State.CurrentStep)
	assert.Equal(t, "Name is required", snap.Errors["name"])
	assert.Equal(t, "Invalid email format", snap.Errors["email"])
	assert.Equal(t, "Company is required", snap.Errors["company"])
	assert.Equal(t, "Role is required", snap.Errors["role"])
	assert.Equal(t, "Please provide more detail (min 20 characters)", snap.Errors["challenge"])
}

func TestMachine_BackPreservesDataAndClearsErrors(t *testing.T) {
	m := booking.NewMachine(&stubGateway{}, "")
	ctx := context.Background()
	walkToTimeSelection(t, m)

	// Trip validation on step 3, then go back
	snap := m.Apply(ctx, booking.Action{Kind: booking.ActionNext})
	assert.NotEmpty(t, snap.Errors)

	snap = m.Apply(ctx, booking.Action{Kind: booking.ActionBack})
	assert.Equal(t, 2, snap.State.CurrentStep)
	assert.Empty(t, snap.Errors)
	assert.Equal(t, "ada@example.com", snap.State.ContactInfo.Email)
	assert.Equal(t, models.MeetingTypeDiscovery, snap.State.MeetingType)

	// Forward again without retyping anything
	snap = m.Apply(ctx, booking.Action{Kind: booking.ActionNext})
	assert.Equal(t, 3, snap.State.CurrentStep)
}

func TestMachine_BackFromStepOneIsNoop(t *testing.T) {
	m := booking.NewMachine(&stubGateway{}, "")

	snap := m.Apply(context.Background(), booking.Action{Kind: booking.ActionBack})

	assert.Equal(t, 1, snap.State.CurrentStep)
}

func TestMachine_SelectDateFallsBackToDefaultSlots(t *testing.T) {
	m := booking.NewMachine(&stubGateway{slots: nil}, "")
	ctx := context.Background()
	walkToTimeSelection(t, m)

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	snap := m.Apply(ctx, booking.Action{Kind: booking.ActionSelectDate, Date: &date})

	assert.Len(t, snap.AvailableSlots, len(models.DefaultSlotTimes))
	for i, slot := range snap.AvailableSlots {
		assert.Equal(t, models.DefaultSlotTimes[i], slot.Time)
		assert.True(t, slot.Available)
	}
}

func TestMachine_SelectDateClearsChosenTime(t *testing.T) {
	m := booking.NewMachine(&stubGateway{}, "")
	ctx := context.Background()
	walkToTimeSelection(t, m)

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	m.Apply(ctx, booking.Action{Kind: booking.ActionSelectDate, Date: &date})
	m.Apply(ctx, booking.Action{Kind: booking.ActionSelectTime, Time: "10:00 AM"})

	other := date.AddDate(0, 0, 1)
	snap := m.Apply(ctx, booking.Action{Kind: booking.ActionSelectDate, Date: &other})

	assert.Equal(t, "", snap.State.SelectedTime)
}

func TestMachine_SubmitFailureKeepsStepThree(t *testing.T) {
	gw := &stubGateway{createErr: errors.New("upstream down")}
	m := booking.NewMachine(gw, "")
	ctx := context.Background()
	walkToTimeSelection(t, m)

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	m.Apply(ctx, booking.Action{Kind: booking.ActionSelectDate, Date: &date})
	m.Apply(ctx, booking.Action{Kind: booking.ActionSelectTime, Time: "10:00 AM"})

	snap := m.Apply(ctx, booking.Action{Kind: booking.ActionNext})

	assert.Equal(t, 3, snap.State.CurrentStep)
	assert.Equal(t, "Failed to confirm booking. Please try again.", snap.Errors["submit"])
	assert.Empty(t, gw.followups)

	// The visitor retries once the upstream recovers
	gw.createErr = nil
	snap = m.Apply(ctx, booking.Action{Kind: booking.ActionNext})
	assert.Equal(t, 4, snap.State.CurrentStep)
}

func TestMachine_SuccessfulSubmitConfirmsAndSendsFollowup(t *testing.T) {
	gw := &stubGateway{}
	m := booking.NewMachine(gw, "Europe/Berlin")
	ctx := context.Background()
	walkToTimeSelection(t, m)

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	m.Apply(ctx, booking.Action{Kind: booking.ActionSelectDate, Date: &date})
	m.Apply(ctx, booking.Action{Kind: booking.ActionSelectTime, Time: "2:00 PM"})

	snap := m.Apply(ctx, booking.Action{Kind: booking.ActionNext})

	assert.Equal(t, 4, snap.State.CurrentStep)
	assert.Empty(t, snap.Errors)
	assert.Len(t, gw.created, 1)
	assert.Equal(t, "Europe/Berlin", gw.created[0].Timezone)

	assert.Len(t, gw.followups, 1)
	assert.Equal(t, "ada@example.com", gw.followups[0].Email)
	assert.Equal(t, models.MeetingTypeDiscovery, gw.followups[0].MeetingType)
	assert.Equal(t, date.Format(time.RFC3339), gw.followups[0].MeetingDate)
}

func TestMachine_NextPastConfirmedIsTerminal(t *testing.T) {
	gw := &stubGateway{}
	m := booking.NewMachine(gw, "")
	ctx := context.Background()
	walkToTimeSelection(t, m)

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	m.Apply(ctx, booking.Action{Kind: booking.ActionSelectDate, Date: &date})
	m.Apply(ctx, booking.Action{Kind: booking.ActionSelectTime, Time: "9:00 AM"})
	m.Apply(ctx, booking.Action{Kind: booking.ActionNext})

	snap := m.Apply(ctx, booking.Action{Kind: booking.ActionNext})

	assert.Equal(t, 4, snap.State.CurrentStep)
	assert.Len(t, gw.created, 1)
}
