package statemachine

import (
	"fmt"

	"github.com/manivpc/manivpc-api/models"
)

// Actor identifies who is allowed to drive a given transition
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorAdmin    Actor = "admin"
	ActorSystem   Actor = "system"
)

// Transition is one allowed edge in the order lifecycle
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

// allowedTransitions is the full lifecycle. Anything not listed here is
// rejected, including self-transitions.
var allowedTransitions = []Transition{
	// intake
	{From: models.StatusPending, To: models.StatusApproved, Actor: ActorSystem},

	// consultation track
	{From: models.StatusApproved, To: models.StatusPendingInitialList, Actor: ActorSystem},
	{From: models.StatusPendingInitialList, To: models.StatusPendingConsultationPayment, Actor: ActorAdmin},
	{From: models.StatusPendingConsultationPayment, To: models.StatusPendingPartsUpload, Actor: ActorSystem},

	// build-only orders skip straight to parts upload
	{From: models.StatusApproved, To: models.StatusPendingPartsUpload, Actor: ActorSystem},

	{From: models.StatusPendingPartsUpload, To: models.StatusPendingSchedule, Actor: ActorAdmin},
	{From: models.StatusPendingSchedule, To: models.StatusSchedulePendingApproval, Actor: ActorCustomer},
	{From: models.StatusSchedulePendingApproval, To: models.StatusBuilding, Actor: ActorAdmin},
	{From: models.StatusSchedulePendingApproval, To: models.StatusPendingSchedule, Actor: ActorAdmin},
	{From: models.StatusBuilding, To: models.StatusReady, Actor: ActorAdmin},
	{From: models.StatusReady, To: models.StatusDelivered, Actor: ActorAdmin},

	// consultation-only orders finish once the consultation is done
	{From: models.StatusPendingPartsUpload, To: models.StatusDelivered, Actor: ActorAdmin},

	// cancellation branch
	{From: models.StatusApproved, To: models.StatusCancellationPending, Actor: ActorCustomer},
	{From: models.StatusPendingInitialList, To: models.StatusCancellationPending, Actor: ActorCustomer},
	{From: models.StatusPendingConsultationPayment, To: models.StatusCancellationPending, Actor: ActorCustomer},
	{From: models.StatusPendingPartsUpload, To: models.StatusCancellationPending, Actor: ActorCustomer},
	{From: models.StatusPendingSchedule, To: models.StatusCancellationPending, Actor: ActorCustomer},
	{From: models.StatusSchedulePendingApproval, To: models.StatusCancellationPending, Actor: ActorCustomer},
	{From: models.StatusCancellationPending, To: models.StatusCancelled, Actor: ActorAdmin},
}

var transitionSet map[Transition]struct{}

func init() {
	transitionSet = make(map[Transition]struct{}, len(allowedTransitions))
	for _, t := range allowedTransitions {
		transitionSet[t] = struct{}{}
	}
}

// IsValidStatus reports whether s is part of the closed status vocabulary
func IsValidStatus(s models.OrderStatus) bool {
	switch s {
	case models.StatusPending, models.StatusApproved, models.StatusPendingInitialList,
		models.StatusPendingConsultationPayment, models.StatusPendingPartsUpload,
		models.StatusPendingSchedule, models.StatusSchedulePendingApproval,
		models.StatusBuilding, models.StatusReady, models.StatusDelivered,
		models.StatusCancellationPending, models.StatusCancelled:
		return true
	}
	return false
}

// CanTransition checks whether actor may move an order from one status to
// another. It returns a descriptive error when the move is not modeled.
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if !IsValidStatus(from) {
		return fmt.Errorf("unknown order status %q", from)
	}
	if !IsValidStatus(to) {
		return fmt.Errorf("unknown order status %q", to)
	}
	if _, ok := transitionSet[Transition{From: from, To: to, Actor: actor}]; !ok {
		return fmt.Errorf("%s cannot move order from %q to %q", actor, from, to)
	}
	return nil
}

// PreviousStatus returns the status an order held before entering
// cancellation_pending, used when an admin denies the cancellation. The
// order's own history is authoritative; this helper only validates that
// the recorded previous status is a legal restore target.
func PreviousStatus(recorded models.OrderStatus) (models.OrderStatus, error) {
	for _, t := range allowedTransitions {
		if t.To == models.StatusCancellationPending && t.From == recorded {
			return recorded, nil
		}
	}
	return "", fmt.Errorf("status %q cannot precede a cancellation request", recorded)
}

// NextWorkStatus returns the status a newly approved order starts in,
// depending on whether its service includes a consultation.
func NextWorkStatus(serviceType models.ServiceType) models.OrderStatus {
	if serviceType.IncludesConsultation() {
		return models.StatusPendingInitialList
	}
	return models.StatusPendingPartsUpload
}
