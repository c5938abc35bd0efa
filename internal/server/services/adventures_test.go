package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/dmitrijs2005/questkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// B opens The Sunken Gate and enrolls Thorn; Thorn cannot join a second open
// adventure whoever runs it.
func TestEnroll_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	thorn := f.validatedCharacter(t, f.alice, f.bob, f.eldra, "Thorn")
	gate := f.adventure(t, f.bob, f.eldra, "The Sunken Gate")
	other := f.adventure(t, f.bob, f.eldra, "The Salt Road")
	foreign := f.adventure(t, f.carol, f.eldra, "Carol's Table")

	a, err := f.adventures.Enroll(ctx, f.bob, gate.ID, thorn.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.CharacterSummary{{ID: thorn.ID, Name: "Thorn"}}, a.Roster)

	_, err = f.adventures.Enroll(ctx, f.bob, gate.ID, thorn.ID)
	require.ErrorIs(t, err, common.ErrorConflict, "already a member")
	_, err = f.adventures.Enroll(ctx, f.bob, other.ID, thorn.ID)
	require.ErrorIs(t, err, common.ErrorConflict, "same gm")
	_, err = f.adventures.Enroll(ctx, f.carol, foreign.ID, thorn.ID)
	require.ErrorIs(t, err, common.ErrorConflict, "another gm")

	mine, err := f.adventures.ListFor(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, []models.AdventureSummary{{ID: gate.ID, Title: "The Sunken Gate"}}, mine)

	f.assertPendingRequestsConsistent(t)
}

func TestEnroll_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gate := f.adventure(t, f.bob, f.eldra, "The Sunken Gate")
	thorn := f.validatedCharacter(t, f.alice, f.bob, f.eldra, "Thorn")
	ysborn := f.validatedCharacter(t, f.alice, f.bob, f.ys, "Ysborn")
	fresh, err := f.characters.Create(ctx, f.alice, NewCharacter{Name: "Fresh", UniverseID: f.eldra})
	require.NoError(t, err)

	_, err = f.adventures.Enroll(ctx, f.carol, gate.ID, thorn.ID)
	require.ErrorIs(t, err, common.ErrorAccessDenied, "not the gm")
	_, err = f.adventures.Enroll(ctx, f.bob, gate.ID, ysborn.ID)
	require.ErrorIs(t, err, common.ErrorConflict, "other universe")
	_, err = f.adventures.Enroll(ctx, f.bob, gate.ID, fresh.ID)
	require.ErrorIs(t, err, common.ErrorConflict, "unvalidated")
	_, err = f.adventures.Enroll(ctx, f.bob, 999, thorn.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = f.adventures.Enroll(ctx, f.bob, gate.ID, 999)
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = f.characters.RequestTransfer(ctx, f.alice, thorn.ID, f.carol)
	require.NoError(t, err)
	_, err = f.adventures.Enroll(ctx, f.bob, gate.ID, thorn.ID)
	require.ErrorIs(t, err, common.ErrorConflict, "transfer pending")
}

// Once finished, the adventure and its roster are frozen.
func TestFinish_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	thorn := f.validatedCharacter(t, f.alice, f.bob, f.eldra, "Thorn")
	borin := f.validatedCharacter(t, f.carol, f.bob, f.eldra, "Borin")
	gate := f.adventure(t, f.bob, f.eldra, "The Sunken Gate")
	_, err := f.adventures.Enroll(ctx, f.bob, gate.ID, thorn.ID)
	require.NoError(t, err)

	_, err = f.adventures.Finish(ctx, f.carol, gate.ID, "nope")
	require.ErrorIs(t, err, common.ErrorAccessDenied)

	a, err := f.adventures.Finish(ctx, f.bob, gate.ID, "The gate falls")
	require.NoError(t, err)
	assert.True(t, a.Finished)
	assert.Equal(t, "The gate falls", a.ClosingEvents)

	_, err = f.adventures.Finish(ctx, f.bob, gate.ID, "again")
	require.ErrorIs(t, err, common.ErrorConflict)
	require.ErrorIs(t, f.adventures.Delete(ctx, f.bob, gate.ID), common.ErrorConflict)
	_, err = f.adventures.Remove(ctx, f.bob, gate.ID, thorn.ID)
	require.ErrorIs(t, err, common.ErrorConflict)
	_, err = f.adventures.Enroll(ctx, f.bob, gate.ID, borin.ID)
	require.ErrorIs(t, err, common.ErrorConflict)

	a, err = f.adventures.Get(ctx, gate.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.CharacterSummary{{ID: thorn.ID, Name: "Thorn"}}, a.Roster)

	history, err := f.adventures.ListForCharacter(ctx, thorn.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.AdventureSummary{{ID: gate.ID, Title: "The Sunken Gate", Finished: true}}, history)

	// finished memberships do not block a new enrollment
	next := f.adventure(t, f.bob, f.eldra, "The Deep")
	_, err = f.adventures.Enroll(ctx, f.bob, next.ID, thorn.ID)
	require.NoError(t, err)
	f.assertPendingRequestsConsistent(t)
}

func TestRemoveAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	thorn := f.validatedCharacter(t, f.alice, f.bob, f.eldra, "Thorn")
	gate := f.adventure(t, f.bob, f.eldra, "The Sunken Gate")
	_, err := f.adventures.Enroll(ctx, f.bob, gate.ID, thorn.ID)
	require.NoError(t, err)

	_, err = f.adventures.Remove(ctx, f.carol, gate.ID, thorn.ID)
	require.ErrorIs(t, err, common.ErrorAccessDenied)

	a, err := f.adventures.Remove(ctx, f.bob, gate.ID, thorn.ID)
	require.NoError(t, err)
	assert.Empty(t, a.Roster)

	_, err = f.adventures.Remove(ctx, f.bob, gate.ID, thorn.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = f.adventures.Enroll(ctx, f.bob, gate.ID, thorn.ID)
	require.NoError(t, err)

	require.ErrorIs(t, f.adventures.Delete(ctx, f.carol, gate.ID), common.ErrorAccessDenied)
	require.NoError(t, f.adventures.Delete(ctx, f.bob, gate.ID))

	_, err = f.adventures.Get(ctx, gate.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	free, err := f.characters.RequestTransfer(ctx, f.alice, thorn.ID, f.carol)
	require.NoError(t, err, "deleting the adventure frees the character")
	assert.NotNil(t, free.PendingTransferID)
}

func TestListEnrollmentCandidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	thorn := f.validatedCharacter(t, f.alice, f.bob, f.eldra, "Thorn")
	aria := f.validatedCharacter(t, f.carol, f.bob, f.eldra, "Aria")
	f.validatedCharacter(t, f.alice, f.bob, f.ys, "Ysborn")
	f.validatedCharacter(t, f.bob, f.carol, f.eldra, "Carols")
	_, err := f.characters.Create(ctx, f.alice, NewCharacter{Name: "Fresh", UniverseID: f.eldra})
	require.NoError(t, err)

	gate := f.adventure(t, f.bob, f.eldra, "The Sunken Gate")
	road := f.adventure(t, f.bob, f.eldra, "The Salt Road")
	_, err = f.adventures.Enroll(ctx, f.bob, road.ID, thorn.ID)
	require.NoError(t, err)

	got, err := f.adventures.ListEnrollmentCandidates(ctx, f.bob, gate.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.CharacterSummary{{ID: aria.ID, Name: "Aria"}}, got)

	_, err = f.adventures.ListEnrollmentCandidates(ctx, f.carol, gate.ID)
	require.ErrorIs(t, err, common.ErrorAccessDenied)

	_, err = f.adventures.Finish(ctx, f.bob, road.ID, "done")
	require.NoError(t, err)

	got, err = f.adventures.ListEnrollmentCandidates(ctx, f.bob, gate.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCreateAdventure_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.adventures.Create(context.Background(), f.bob, NewAdventure{UniverseID: f.eldra})
	require.ErrorIs(t, err, common.ErrorInvalidInput)

	_, err = f.adventures.Create(context.Background(), 0, NewAdventure{Title: "x", UniverseID: f.eldra})
	require.ErrorIs(t, err, common.ErrorAccessDenied)

	all, err := f.adventures.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	mastered, err := f.adventures.ListMastered(context.Background(), f.bob)
	require.NoError(t, err)
	assert.Empty(t, mastered)
}
