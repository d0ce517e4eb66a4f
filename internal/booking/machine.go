// Package booking implements the wizard's step/validation/submission state
// machine, independent of any transport or rendering layer.
package booking

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
	"go.uber.org/zap"
)

// Step identifies a wizard state
type Step int

const (
	StepMeetingType Step = iota + 1
	StepContactInfo
	StepTimeSelection
	StepConfirmed
)

// ActionKind enumerates the inputs a wizard accepts
type ActionKind string

const (
	ActionSelectMeetingType ActionKind = "select_meeting_type"
	ActionUpdateContact     ActionKind = "update_contact"
	ActionSelectDate        ActionKind = "select_date"
	ActionSelectTime        ActionKind = "select_time"
	ActionSetTimezone       ActionKind = "set_timezone"
	ActionNext              ActionKind = "next"
	ActionBack              ActionKind = "back"
)

// Action is a single user input applied to the machine
type Action struct {
	Kind        ActionKind
	MeetingType string
	Contact     *models.ContactInfo
	Date        *time.Time
	Time        string
	Timezone    string
}

// Gateway abstracts the backend calls a wizard transition may trigger.
// CheckAvailability must never be fatal to the flow; implementations fall
// back to default slots on any failure. SendFollowUp is fire-and-forget.
type Gateway interface {
	CheckAvailability(ctx context.Context, req models.AvailabilityRequest) []models.TimeSlot
	CreateBooking(ctx context.Context, state models.BookingState) error
	SendFollowUp(req models.FollowupRequest)
}

// Snapshot is the machine's externally visible state after an action
type Snapshot struct {
	State          models.BookingState `json:"state"`
	Errors         map[string]string   `json:"errors,omitempty"`
	AvailableSlots []models.TimeSlot   `json:"availableSlots,omitempty"`
}

// Machine drives one wizard session through its four steps. All data
// collected on earlier steps survives backward navigation; only the
// in-flight errors are cleared.
type Machine struct {
	mu      sync.Mutex
	state   models.BookingState
	errors  map[string]string
	slots   []models.TimeSlot
	gateway Gateway
}

// transition describes what a validated "next" does from a given step
type transition struct {
	next          Step
	validate      func(*models.BookingState) map[string]string
	submitBooking bool
}

// transitions is the explicit state × next table. Back is handled
// uniformly (unconditional, data-preserving) and is not listed.
var transitions = map[Step]transition{
	StepMeetingType:   {next: StepContactInfo, validate: validateMeetingType},
	StepContactInfo:   {next: StepTimeSelection, validate: validateContactInfo},
	StepTimeSelection: {next: StepConfirmed, validate: validateTimeSelection, submitBooking: true},
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewMachine creates a wizard session at step 1 with the given timezone
func NewMachine(gateway Gateway, timezone string) *Machine {
	if timezone == "" {
		timezone = "America/Chicago"
	}
	return &Machine{
		state: models.BookingState{
			CurrentStep: int(StepMeetingType),
			Timezone:    timezone,
		},
		errors:  map[string]string{},
		gateway: gateway,
	}
}

// Snapshot returns the current state, errors, and slots
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	errs := make(map[string]string, len(m.errors))
	for k, v := range m.errors {
		errs[k] = v
	}
	slots := make([]models.TimeSlot, len(m.slots))
	copy(slots, m.slots)
	return Snapshot{State: m.state, Errors: errs, AvailableSlots: slots}
}

// Apply processes one action and returns the resulting snapshot. Advancing
// past a step whose validation fails leaves CurrentStep unchanged and
// reports every failing field.
func (m *Machine) Apply(ctx context.Context, action Action) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch action.Kind {
	case ActionSelectMeetingType:
		if models.IsValidMeetingType(action.MeetingType) {
			m.state.MeetingType = action.MeetingType
			m.errors = map[string]string{}
		} else {
			m.errors = map[string]string{"meetingType": "Please select a meeting type"}
		}

	case ActionUpdateContact:
		if action.Contact != nil {
			m.state.ContactInfo = *action.Contact
			m.errors = map[string]string{}
		}

	case ActionSelectDate:
		if action.Date != nil {
			m.selectDate(ctx, *action.Date)
		}

	case ActionSelectTime:
		m.state.SelectedTime = action.Time
		m.errors = map[string]string{}

	case ActionSetTimezone:
		if action.Timezone != "" {
			m.state.Timezone = action.Timezone
		}

	case ActionNext:
		m.advance(ctx)

	case ActionBack:
		if m.state.CurrentStep > int(StepMeetingType) {
			m.state.CurrentStep--
		}
		m.errors = map[string]string{}
	}

	return m.snapshotLocked()
}

// selectDate records the date, invalidates any previously chosen time, and
// refreshes the slot list. Availability failures are absorbed inside the
// gateway; the user always gets a selectable set.
func (m *Machine) selectDate(ctx context.Context, date time.Time) {
	m.state.SelectedDate = &date
	m.state.SelectedTime = ""
	m.errors = map[string]string{}

	req := models.AvailabilityRequest{
		Date:        date.UTC().Format(time.RFC3339),
		MeetingType: m.state.MeetingType,
		Timezone:    m.state.Timezone,
	}
	m.slots = m.gateway.CheckAvailability(ctx, req)
	if len(m.slots) == 0 {
		m.slots = models.DefaultSlots()
	}
}

func (m *Machine) advance(ctx context.Context) {
	t, ok := transitions[Step(m.state.CurrentStep)]
	if !ok {
		// Confirmed is terminal; there is nothing past it
		return
	}

	if errs := t.validate(&m.state); len(errs) > 0 {
		m.errors = errs
		return
	}
	m.errors = map[string]string{}

	if t.submitBooking {
		if err := m.gateway.CreateBooking(ctx, m.state); err != nil {
			logger.Warn("Booking creation failed", zap.Error(err))
			m.errors = map[string]string{"submit": "Failed to confirm booking. Please try again."}
			return
		}

		m.state.CurrentStep = int(t.next)

		// Fire-and-forget follow-up: no ordering guarantee relative to the
		// confirmation, and its outcome never reaches the user.
		var meetingDate string
		if m.state.SelectedDate != nil {
			meetingDate = m.state.SelectedDate.UTC().Format(time.RFC3339)
		}
		m.gateway.SendFollowUp(models.FollowupRequest{
			Email:       m.state.ContactInfo.Email,
			Name:        m.state.ContactInfo.Name,
			MeetingType: m.state.MeetingType,
			MeetingDate: meetingDate,
		})
		return
	}

	m.state.CurrentStep = int(t.next)
}

func validateMeetingType(s *models.BookingState) map[string]string {
	if s.MeetingType == "" {
		return map[string]string{"meetingType": "Please select a meeting type"}
	}
	return nil
}

// validateContactInfo checks every field and reports all failures together
func validateContactInfo(s *models.BookingState) map[string]string {
	errs := map[string]string{}
	c := s.ContactInfo

	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(c.Email) == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(c.Email) {
		errs["email"] = "Invalid email format"
	}
	if strings.TrimSpace(c.Company) == "" {
		errs["company"] = "Company is required"
	}
	if strings.TrimSpace(c.Role) == "" {
		errs["role"] = "Role is required"
	}
	if strings.TrimSpace(c.Challenge) == "" {
		errs["challenge"] = "Please describe your challenge"
	} else if len(c.Challenge) < 20 {
		errs["challenge"] = "Please provide more detail (min 20 characters)"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateTimeSelection(s *models.BookingState) map[string]string {
	errs := map[string]string{}
	if s.SelectedDate == nil {
		errs["date"] = "Please select a date"
	}
	if s.SelectedTime == "" {
		errs["time"] = "Please select a time"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
