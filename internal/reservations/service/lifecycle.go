package service

import (
	"sort"

	apperrors "hotelier/pkg/errors"
	"hotelier/pkg/model"
)

// transitions is the full lifecycle graph. Anything not listed is
// rejected; checked_out and cancelled have no outgoing edges.
var transitions = map[model.ReservationStatus][]model.ReservationStatus{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCheckedIn, model.StatusCancelled},
	model.StatusCheckedIn: {model.StatusCheckedOut},
}

// CanTransition reports whether current -> target is a legal lifecycle step.
func CanTransition(current, target model.ReservationStatus) bool {
	for _, allowed := range transitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionsFrom returns the legal targets from current, sorted for
// stable error messages.
func TransitionsFrom(current model.ReservationStatus) []model.ReservationStatus {
	targets := make([]model.ReservationStatus, len(transitions[current]))
	copy(targets, transitions[current])
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

// checkTransition maps an illegal step to the client-facing error.
func checkTransition(current, target model.ReservationStatus) error {
	if !model.ValidStatus(target) {
		return apperrors.InvalidInput("Unknown status: " + string(target))
	}
	if !CanTransition(current, target) {
		return apperrors.InvalidTransition(string(current), string(target))
	}
	return nil
}
