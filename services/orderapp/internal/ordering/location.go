package ordering

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Restaurant is the slice of the restaurant document this service reads.
type Restaurant struct {
	ID      string `json:"id" bson:"_id"`
	Name    string `json:"name" bson:"name"`
	Concept string `json:"concept,omitempty" bson:"concept,omitempty"`
	Logo    string `json:"logo,omitempty" bson:"logo,omitempty"`
}

// Location holds the per-location settings the order flow depends on:
// auto-accept, alert numbers, working hours and order timing.
type Location struct {
	ID              uuid.UUID         `json:"id" bson:"_id"`
	RestaurantID    string            `json:"restaurant_id" bson:"restaurant_id"`
	LocationSlug    string            `json:"location_slug" bson:"location_slug"`
	Name            string            `json:"name" bson:"name"`
	Timezone        string            `json:"timezone" bson:"timezone"`
	IsActive        bool              `json:"is_active" bson:"is_active"`
	AutoAcceptOrder bool              `json:"auto_accept_order" bson:"auto_accept_order"`
	AlertNumbers    []AlertNumber     `json:"alert_numbers,omitempty" bson:"alert_numbers,omitempty"`
	WorkingHours    []DayWorkingHours `json:"working_hours,omitempty" bson:"working_hours,omitempty"`
	OrderTiming     OrderTiming       `json:"order_timing" bson:"order_timing"`
	AcceptPayment   bool              `json:"accept_payment" bson:"accept_payment"`
}

type AlertNumber struct {
	PhoneNumber string `json:"phone_number" bson:"phone_number"`
}

type DayWorkingHours struct {
	Day       string `json:"day" bson:"day"` // lowercase weekday name
	StartTime string `json:"start_time" bson:"start_time"`
	EndTime   string `json:"end_time" bson:"end_time"`
	IsOpen    bool   `json:"is_open" bson:"is_open"`
}

// OrderTiming trims the ordering window inside the working hours.
type OrderTiming struct {
	AcceptOrdersAfterMinutes int `json:"accept_orders_after_minutes" bson:"accept_orders_after_minutes"`
	StopOrdersBeforeMinutes  int `json:"stop_orders_before_minutes" bson:"stop_orders_before_minutes"`
}

func (l *Location) GetID() uuid.UUID {
	return l.ID
}

func (l *Location) ResourceType() string {
	return "location"
}

var timeOfDay = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// IsOpenAt reports whether the location accepts orders at the given instant,
// evaluated in the location's own timezone and trimmed by the order timing
// window.
func (l *Location) IsOpenAt(now time.Time) (bool, error) {
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return false, fmt.Errorf("invalid timezone %q: %w", l.Timezone, err)
	}
	local := now.In(loc)

	day := strings.ToLower(local.Weekday().String())
	var hours *DayWorkingHours
	for i := range l.WorkingHours {
		if l.WorkingHours[i].Day == day {
			hours = &l.WorkingHours[i]
			break
		}
	}
	if hours == nil {
		return false, fmt.Errorf("no working hours configured for %s", day)
	}
	if !hours.IsOpen {
		return false, nil
	}
	if hours.StartTime == "" || hours.EndTime == "" {
		return false, fmt.Errorf("working hours for %s missing start or end time", day)
	}
	if !timeOfDay.MatchString(hours.StartTime) || !timeOfDay.MatchString(hours.EndTime) {
		return false, fmt.Errorf("working hours for %s not in HH:MM format", day)
	}

	current := local.Hour()*60 + local.Minute()
	from := minutesOfDay(hours.StartTime)
	to := minutesOfDay(hours.EndTime)

	return current >= from+l.OrderTiming.AcceptOrdersAfterMinutes &&
		current <= to-l.OrderTiming.StopOrdersBeforeMinutes, nil
}

func minutesOfDay(hhmm string) int {
	parts := strings.SplitN(hhmm, ":", 2)
	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])
	return hours*60 + minutes
}

// Campaign is an active promotional reward looked up by
// (restaurant, location, origin).
type Campaign struct {
	ID           uuid.UUID `json:"id" bson:"_id"`
	RestaurantID string    `json:"restaurant_id" bson:"restaurant_id"`
	LocationID   uuid.UUID `json:"location_id" bson:"location_id"`
	OriginID     string    `json:"origin_id" bson:"origin_id"`
	Name         string    `json:"name" bson:"name"`
	Type         string    `json:"type" bson:"type"`
	Reward       Reward    `json:"reward" bson:"reward"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
}

type Reward struct {
	FlatOffCents int `json:"flat_off_cents,omitempty" bson:"flat_off_cents,omitempty"`
}
