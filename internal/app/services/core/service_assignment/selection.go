package service_assignment

import "sort"

// SelectionSet is the set of service ids chosen for an appointment. Ids that
// are not in the catalog are allowed; they simply contribute nothing to the total.
type SelectionSet map[int64]struct{}

func NewSelectionSet(serviceIDs ...int64) SelectionSet {
	selection := make(SelectionSet, len(serviceIDs))
	for _, serviceID := range serviceIDs {
		selection[serviceID] = struct{}{}
	}
	return selection
}

func (s SelectionSet) Contains(serviceID int64) bool {
	_, ok := s[serviceID]
	return ok
}

func (s SelectionSet) Len() int {
	return len(s)
}

func (s SelectionSet) IsEmpty() bool {
	return len(s) == 0
}

// IDs returns the members in ascending order.
func (s SelectionSet) IDs() []int64 {
	serviceIDs := make([]int64, 0, len(s))
	for serviceID := range s {
		serviceIDs = append(serviceIDs, serviceID)
	}
	sort.Slice(serviceIDs, func(i, j int) bool { return serviceIDs[i] < serviceIDs[j] })
	return serviceIDs
}

func (s SelectionSet) Clone() SelectionSet {
	clone := make(SelectionSet, len(s))
	for serviceID := range s {
		clone[serviceID] = struct{}{}
	}
	return clone
}

func (s SelectionSet) Equal(other SelectionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for serviceID := range s {
		if !other.Contains(serviceID) {
			return false
		}
	}
	return true
}

// SelectionReconciler owns the working selection of a flow. It starts empty,
// is replaced once by the server-recorded assignment and is then only
// changed by toggles.
type SelectionReconciler struct {
	selection SelectionSet
}

func NewSelectionReconciler() *SelectionReconciler {
	return &SelectionReconciler{selection: SelectionSet{}}
}

// Initialize makes the working selection equal to serverIDs. Order and
// duplicates in serverIDs do not matter.
func (r *SelectionReconciler) Initialize(serverIDs []int64) SelectionSet {
	r.selection = NewSelectionSet(serverIDs...)
	return r.selection.Clone()
}

// Toggle removes serviceID if selected and adds it otherwise. It reports
// whether serviceID is selected afterwards.
func (r *SelectionReconciler) Toggle(serviceID int64) bool {
	if r.selection.Contains(serviceID) {
		delete(r.selection, serviceID)
		return false
	}
	r.selection[serviceID] = struct{}{}
	return true
}

// Selection returns a copy of the working selection.
func (r *SelectionReconciler) Selection() SelectionSet {
	return r.selection.Clone()
}

func (r *SelectionReconciler) Len() int {
	return r.selection.Len()
}
