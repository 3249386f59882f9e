package itemaction

type Action struct {
	Name string
}

func (a Action) Code() string {
	return a.Name
}

type Enum struct {
	Started   Action
	Completed Action
}

var Actions = Enum{
	Started:   Action{Name: "STARTED"},
	Completed: Action{Name: "COMPLETED"},
}

var All = []Action{
	Actions.Started,
	Actions.Completed,
}

// ByName returns the action for a given code, or nil if not found.
func ByName(name string) *Action {
	for _, a := range All {
		if a.Name == name {
			return &a
		}
	}
	return nil
}
