package cascade

// FilterKind names the entity axis an active selection pins.
type FilterKind string

const (
	FilterNone    FilterKind = "none"
	FilterUnit    FilterKind = "unit"
	FilterProject FilterKind = "project"
	FilterTask    FilterKind = "task"
	FilterPerson  FilterKind = "person"
)

// Filter is the single active selection. Exactly one is active at a
// time; the zero value means no filter.
type Filter struct {
	Kind FilterKind `json:"kind"`
	ID   string     `json:"id"`
}

// None is the cleared filter state.
var None = Filter{Kind: FilterNone}

// IsNone reports whether no selection is active.
func (f Filter) IsNone() bool {
	return f.Kind == "" || f.Kind == FilterNone || f.ID == ""
}

// ViewMode selects whose data the unfiltered dashboard shows.
type ViewMode string

const (
	ModeFounder ViewMode = "founder" // see everything
	ModeTeam    ViewMode = "team"    // see only the signed-in person's work
)

// ParseViewMode maps a persisted or user-supplied string to a mode,
// falling back to founder on anything unrecognized.
func ParseViewMode(s string) ViewMode {
	if s == string(ModeTeam) {
		return ModeTeam
	}
	return ModeFounder
}

// Select applies a selection on top of the current filter. Selecting the
// selection already active toggles it off (click-to-clear); anything
// else replaces the current filter outright.
func Select(current Filter, kind FilterKind, id string) Filter {
	if kind == FilterNone || id == "" {
		return None
	}
	if current.Kind == kind && current.ID == id {
		return None
	}
	return Filter{Kind: kind, ID: id}
}

// Clear drops any active selection.
func Clear() Filter {
	return None
}
