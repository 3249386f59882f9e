package orderstatus

import "strings"

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	parts := strings.Split(strings.ToLower(s.Name), "_")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

type Enum struct {
	Created        Status
	Accepted       Status
	ReadyForPickup Status
	PickedUp       Status
	Cancelled      Status
}

var Statuses = Enum{
	Created:        Status{Name: "CREATED"},
	Accepted:       Status{Name: "ACCEPTED"},
	ReadyForPickup: Status{Name: "READY_FOR_PICKUP"},
	PickedUp:       Status{Name: "PICKED_UP"},
	Cancelled:      Status{Name: "CANCELLED"},
}

var All = []Status{
	Statuses.Created,
	Statuses.Accepted,
	Statuses.ReadyForPickup,
	Statuses.PickedUp,
	Statuses.Cancelled,
}

// allowed captures the forward-only order workflow. Cancellation is only
// reachable before the order is ready for pickup.
var allowed = map[string][]string{
	Statuses.Created.Name:        {Statuses.Accepted.Name, Statuses.Cancelled.Name},
	Statuses.Accepted.Name:       {Statuses.ReadyForPickup.Name, Statuses.Cancelled.Name},
	Statuses.ReadyForPickup.Name: {Statuses.PickedUp.Name},
	Statuses.PickedUp.Name:       {},
	Statuses.Cancelled.Name:      {},
}

// ByName returns the status for a given code, or nil if not found.
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// CanTransition reports whether from -> to is a valid workflow step.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	next, ok := allowed[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(name string) bool {
	next, ok := allowed[name]
	return ok && len(next) == 0
}
