package flow

import "strings"

// FlowState represents where a user is in the intake conversation.
type FlowState string

const (
	// StateNew is the state a user record is created in, before the greeting
	// is sent. It never recurs after the first contact.
	StateNew FlowState = "new"
	// StateAwaitingSubmissions means the user still owes files and nothing is
	// pending classification.
	StateAwaitingSubmissions FlowState = "awaiting_submissions"
	// StateAwaitingClassification means at least one submission has no real
	// class yet.
	StateAwaitingClassification FlowState = "awaiting_classification"
	// StateMandatorySatisfied means every mandatory class is covered but the
	// full set is not.
	StateMandatorySatisfied FlowState = "mandatory_satisfied"
	// StateCompleted is terminal. Further events from the user are absorbed.
	StateCompleted FlowState = "completed"
)

var allStates = []FlowState{
	StateNew,
	StateAwaitingSubmissions,
	StateAwaitingClassification,
	StateMandatorySatisfied,
	StateCompleted,
}

var stateSet = func() map[FlowState]struct{} {
	set := make(map[FlowState]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

// AllStates returns the ordered list of known flow states.
func AllStates() []FlowState {
	cp := make([]FlowState, len(allStates))
	copy(cp, allStates)
	return cp
}

// ParseState converts a string into a known FlowState.
func ParseState(value string) (FlowState, bool) {
	normalized := FlowState(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stateSet[normalized]
	return normalized, ok
}

// Terminal reports whether the state absorbs all further events.
func (s FlowState) Terminal() bool {
	return s == StateCompleted
}

// ComputeState derives the flow state from a document set. It is pure:
// order of documents and duplicate classes never change the result.
//
// Completion is checked before pending classifications, so a user who has
// covered every real class is completed even with stray unclassified
// uploads remaining.
func ComputeState(documents []DocumentRecord) FlowState {
	present := make(map[DocumentClass]bool, len(realClassOrder))
	pending := false
	for _, doc := range documents {
		if doc.Class.IsPending() {
			pending = true
			continue
		}
		if doc.Class.IsReal() {
			present[doc.Class] = true
		}
	}

	if len(present) == len(realClassOrder) {
		return StateCompleted
	}
	if pending {
		return StateAwaitingClassification
	}
	for _, class := range realClassOrder {
		if realClasses[class].mandatory && !present[class] {
			return StateAwaitingSubmissions
		}
	}
	return StateMandatorySatisfied
}
