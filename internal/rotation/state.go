package rotation

import (
	"strings"
	"time"
)

// State is the persisted per-cycle record. Field names match the original
// schedule data file so an existing record loads unchanged.
type State struct {
	LastPosted              *time.Time          `json:"last_posted"`
	CurrentAssignments      map[string]string   `json:"current_assignments"`
	PreviousAssignments     map[string]string   `json:"previous_assignments"`
	VotedFlatmates          []string            `json:"voted_flatmates"`
	PendingChores           []string            `json:"pending_chores"`
	CompletedBy             map[string][]string `json:"completed_by"`
	ExcludedForNextRotation []string            `json:"excluded_for_next_rotation"`
	LastRotationWeek        map[string]int      `json:"last_rotation_week"`
}

func newState() State {
	return State{
		CurrentAssignments:  map[string]string{},
		PreviousAssignments: map[string]string{},
		CompletedBy:         map[string][]string{},
		LastRotationWeek:    map[string]int{},
	}
}

// normalize fills nil maps on a record loaded from an older document.
func (s *State) normalize() {
	if s.CurrentAssignments == nil {
		s.CurrentAssignments = map[string]string{}
	}
	if s.PreviousAssignments == nil {
		s.PreviousAssignments = map[string]string{}
	}
	if s.CompletedBy == nil {
		s.CompletedBy = map[string][]string{}
	}
	if s.LastRotationWeek == nil {
		s.LastRotationWeek = map[string]int{}
	}
}

func cloneState(s State) State {
	next := s
	next.CurrentAssignments = copyStringMap(s.CurrentAssignments)
	next.PreviousAssignments = copyStringMap(s.PreviousAssignments)
	next.VotedFlatmates = append([]string(nil), s.VotedFlatmates...)
	next.PendingChores = append([]string(nil), s.PendingChores...)
	next.CompletedBy = make(map[string][]string, len(s.CompletedBy))
	for k, v := range s.CompletedBy {
		next.CompletedBy[k] = append([]string(nil), v...)
	}
	next.ExcludedForNextRotation = append([]string(nil), s.ExcludedForNextRotation...)
	next.LastRotationWeek = make(map[string]int, len(s.LastRotationWeek))
	for k, v := range s.LastRotationWeek {
		next.LastRotationWeek[k] = v
	}
	return next
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func containsFold(list []string, name string) bool {
	for _, v := range list {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}

func removeString(list []string, name string) []string {
	for i, v := range list {
		if strings.EqualFold(v, name) {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
