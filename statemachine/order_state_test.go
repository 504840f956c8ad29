package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manivpc/manivpc-api/models"
)

func TestCanTransitionHappyPath(t *testing.T) {
	steps := []struct {
		from  models.OrderStatus
		to    models.OrderStatus
		actor Actor
	}{
		{models.StatusPending, models.StatusApproved, ActorSystem},
		{models.StatusApproved, models.StatusPendingInitialList, ActorSystem},
		{models.StatusPendingInitialList, models.StatusPendingConsultationPayment, ActorAdmin},
		{models.StatusPendingConsultationPayment, models.StatusPendingPartsUpload, ActorSystem},
		{models.StatusPendingPartsUpload, models.StatusPendingSchedule, ActorAdmin},
		{models.StatusPendingSchedule, models.StatusSchedulePendingApproval, ActorCustomer},
		{models.StatusSchedulePendingApproval, models.StatusBuilding, ActorAdmin},
		{models.StatusBuilding, models.StatusReady, ActorAdmin},
		{models.StatusReady, models.StatusDelivered, ActorAdmin},
	}

	for _, s := range steps {
		assert.NoError(t, CanTransition(s.from, s.to, s.actor),
			"expected %s -> %s by %s to be allowed", s.from, s.to, s.actor)
	}
}

func TestCanTransitionRejectsUnmodeledMoves(t *testing.T) {
	// skipping states outright
	assert.Error(t, CanTransition(models.StatusPending, models.StatusBuilding, ActorAdmin))
	// going backwards
	assert.Error(t, CanTransition(models.StatusReady, models.StatusBuilding, ActorAdmin))
	// self transition
	assert.Error(t, CanTransition(models.StatusBuilding, models.StatusBuilding, ActorAdmin))
	// delivered is terminal
	assert.Error(t, CanTransition(models.StatusDelivered, models.StatusPending, ActorSystem))
	// cancelled is terminal
	assert.Error(t, CanTransition(models.StatusCancelled, models.StatusApproved, ActorAdmin))
}

func TestCanTransitionEnforcesActor(t *testing.T) {
	// only customers request cancellation
	assert.Error(t, CanTransition(models.StatusBuilding, models.StatusCancellationPending, ActorCustomer))
	assert.NoError(t, CanTransition(models.StatusPendingSchedule, models.StatusCancellationPending, ActorCustomer))
	assert.Error(t, CanTransition(models.StatusPendingSchedule, models.StatusCancellationPending, ActorAdmin))

	// only admins confirm a cancellation
	assert.NoError(t, CanTransition(models.StatusCancellationPending, models.StatusCancelled, ActorAdmin))
	assert.Error(t, CanTransition(models.StatusCancellationPending, models.StatusCancelled, ActorCustomer))

	// schedule approval and rejection are admin moves
	assert.NoError(t, CanTransition(models.StatusSchedulePendingApproval, models.StatusPendingSchedule, ActorAdmin))
	assert.Error(t, CanTransition(models.StatusSchedulePendingApproval, models.StatusPendingSchedule, ActorCustomer))
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	assert.Error(t, CanTransition("in_limbo", models.StatusApproved, ActorSystem))
	assert.Error(t, CanTransition(models.StatusApproved, "in_limbo", ActorSystem))
}

func TestPreviousStatus(t *testing.T) {
	got, err := PreviousStatus(models.StatusPendingSchedule)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPendingSchedule, got)

	_, err = PreviousStatus(models.StatusBuilding)
	assert.Error(t, err)

	_, err = PreviousStatus(models.StatusCancelled)
	assert.Error(t, err)
}

func TestNextWorkStatus(t *testing.T) {
	assert.Equal(t, models.StatusPendingInitialList, NextWorkStatus(models.ServiceConsultationOnly))
	assert.Equal(t, models.StatusPendingInitialList, NextWorkStatus(models.ServiceConsultationAndBuild))
	assert.Equal(t, models.StatusPendingPartsUpload, NextWorkStatus(models.ServiceBuildOnly))
}
