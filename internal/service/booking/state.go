package booking

import "github.com/servipro/marketplace-api/internal/model"

// transitions is the complete edge set of the booking lifecycle. Every entry
// point (confirm, complete, cancel, the generic status endpoint) routes
// through this table; there is no second rule set anywhere.
//
//	pending   -> confirmed | cancelled
//	confirmed -> completed | cancelled
//	completed, cancelled: terminal
var transitions = map[model.BookingStatus]map[model.BookingStatus]bool{
	model.BookingStatusPending: {
		model.BookingStatusConfirmed: true,
		model.BookingStatusCancelled: true,
	},
	model.BookingStatusConfirmed: {
		model.BookingStatusCompleted: true,
		model.BookingStatusCancelled: true,
	},
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to model.BookingStatus) bool {
	return transitions[from][to]
}

// IsTerminal reports whether no edge leaves the given status.
func IsTerminal(status model.BookingStatus) bool {
	return len(transitions[status]) == 0
}
