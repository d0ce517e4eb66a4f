package models

import "time"

// Meeting types offered by the booking wizard
const (
	MeetingTypeDiscovery = "discovery"
	MeetingTypeTechnical = "technical"
	MeetingTypeDemo      = "demo"
)

// ValidMeetingTypes is the fixed set a wizard session may choose from
var ValidMeetingTypes = []string{MeetingTypeDiscovery, MeetingTypeTechnical, MeetingTypeDemo}

// IsValidMeetingType reports whether t is one of the offered meeting types
func IsValidMeetingType(t string) bool {
	for _, v := range ValidMeetingTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ContactInfo holds the details collected on the wizard's second step
type ContactInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Role      string `json:"role"`
	Budget    string `json:"budget"` // optional
	Challenge string `json:"challenge"`
}

// BookingState is the full wizard state snapshot. It is created with
// defaults when a session starts, mutated only by user actions and async
// responses, and discarded when the session expires.
type BookingState struct {
	CurrentStep  int         `json:"currentStep"`
	MeetingType  string      `json:"meetingType,omitempty"`
	ContactInfo  ContactInfo `json:"contactInfo"`
	SelectedDate *time.Time  `json:"selectedDate,omitempty"`
	SelectedTime string      `json:"selectedTime,omitempty"`
	Timezone     string      `json:"timezone"`
}

// TimeSlot is a bookable slot for a given date
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// AvailabilityRequest asks the automation platform for open slots
type AvailabilityRequest struct {
	Date        string `json:"date" binding:"required"`
	MeetingType string `json:"meetingType"`
	Timezone    string `json:"timezone"`
}

// AvailabilityResponse carries slots keyed by ISO date (YYYY-MM-DD)
type AvailabilityResponse struct {
	Success bool                  `json:"success"`
	Slots   map[string][]TimeSlot `json:"slots"`
}

// BookingCreateResponse is returned when booking creation fails upstream
type BookingCreateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// FollowupRequest kicks off the post-booking follow-up sequence
type FollowupRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	MeetingType string `json:"meetingType"`
	MeetingDate string `json:"meetingDate"`
}

// FollowupResponse always reports success; follow-up failures are swallowed
type FollowupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DefaultSlotTimes is the fallback slot set used whenever the availability
// check fails or returns nothing usable for the requested date.
var DefaultSlotTimes = []string{"9:00 AM", "10:00 AM", "11:00 AM", "2:00 PM", "3:00 PM", "4:00 PM"}

// DefaultSlots returns the fallback slots, all marked available
func DefaultSlots() []TimeSlot {
	slots := make([]TimeSlot, 0, len(DefaultSlotTimes))
	for _, t := range DefaultSlotTimes {
		slots = append(slots, TimeSlot{Time: t, Available: true})
	}
	return slots
}

// DefaultAvailability builds the never-fail availability response for the
// given date key
func DefaultAvailability(dateKey string) *AvailabilityResponse {
	return &AvailabilityResponse{
		Success: true,
		Slots:   map[string][]TimeSlot{dateKey: DefaultSlots()},
	}
}

// DateKey extracts the YYYY-MM-DD key from an ISO timestamp string,
// falling back to today when the input is empty.
func DateKey(isoDate string) string {
	if len(isoDate) >= 10 {
		return isoDate[:10]
	}
	return time.Now().UTC().Format("2006-01-02")
}
