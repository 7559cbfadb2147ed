package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbscheck/internal/wire"
)

func TestCheckSeatSet_FullRoom(t *testing.T) {
	seats := make([]uint8, SeatCount)
	for i := range seats {
		seats[i] = uint8(i)
	}
	assert.NoError(t, CheckSeatSet(seats))
}

func TestCheckSeatSet_Empty(t *testing.T) {
	assert.NoError(t, CheckSeatSet(nil), "a sold-out room is a valid snapshot")
}

func TestCheckSeatSet_OutOfRange(t *testing.T) {
	err := CheckSeatSet([]uint8{0, 20})
	require.Error(t, err)
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, ErrCodeSeatRange, ie.Code)
	assert.Contains(t, ie.Message, "20")
}

func TestCheckSeatSet_Duplicate(t *testing.T) {
	err := CheckSeatSet([]uint8{5, 3, 5})
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, ErrCodeSeatDuplicate, ie.Code)
}

func TestCheckBookingEffect_ExactRemoval(t *testing.T) {
	err := CheckBookingEffect([]uint8{0, 3, 5}, []uint8{3}, []uint8{0, 5})
	assert.NoError(t, err)
}

func TestCheckBookingEffect_OrderInsensitive(t *testing.T) {
	// Snapshots are sets; listing order carries no meaning here.
	err := CheckBookingEffect([]uint8{5, 0, 3}, []uint8{3}, []uint8{5, 0})
	assert.NoError(t, err)
}

func TestCheckBookingEffect_BookedSeatStillListed(t *testing.T) {
	err := CheckBookingEffect([]uint8{0, 3, 5}, []uint8{3}, []uint8{0, 3, 5})
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, ErrCodeBookingEffect, ie.Code)
	assert.Contains(t, ie.Message, "still listed")
	assert.Contains(t, ie.Message, "3")
}

func TestCheckBookingEffect_UnchosenSeatVanished(t *testing.T) {
	err := CheckBookingEffect([]uint8{0, 3, 5}, []uint8{3}, []uint8{0})
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Message, "vanished")
	assert.Contains(t, ie.Message, "5")
}

func TestCheckBookingEffect_SeatAppeared(t *testing.T) {
	err := CheckBookingEffect([]uint8{0, 3, 5}, []uint8{3}, []uint8{0, 5, 7})
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Message, "appeared")
	assert.Contains(t, ie.Message, "7")
}

func TestCheckBookingEffect_EmptyChosenMeansUnchanged(t *testing.T) {
	// A rejected booking must leave availability untouched.
	assert.NoError(t, CheckBookingEffect([]uint8{1, 2, 4}, nil, []uint8{4, 2, 1}))

	err := CheckBookingEffect([]uint8{1, 2, 4}, nil, []uint8{1, 2})
	require.Error(t, err, "a seat disappearing after a rejection is a violation")
}

func TestCheckBookingEffect_BookEverything(t *testing.T) {
	assert.NoError(t, CheckBookingEffect([]uint8{2, 9}, []uint8{9, 2}, nil))
}

func TestCheckUniqueIDs_AllDistinct(t *testing.T) {
	err := CheckUniqueIDs([]wire.Entry{{ID: 1, Label: "a"}, {ID: 2, Label: "b"}})
	assert.NoError(t, err)
}

func TestCheckUniqueIDs_Duplicate(t *testing.T) {
	err := CheckUniqueIDs([]wire.Entry{
		{ID: 1, Label: "The Godfather"},
		{ID: 2, Label: "AKIRA"},
		{ID: 1, Label: "Pulp Fiction"},
	})
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, ErrCodeDuplicateID, ie.Code)
	assert.Contains(t, ie.Message, "id 1")
	assert.Contains(t, ie.Message, "The Godfather")
	assert.Contains(t, ie.Message, "Pulp Fiction")
}

func TestCheckRequiredLabels_AllPresent(t *testing.T) {
	entries := []wire.Entry{
		{ID: 1, Label: "The Godfather"},
		{ID: 2, Label: "Seven Samurai"},
		{ID: 3, Label: "Movie 3"},
	}
	err := CheckRequiredLabels(entries, []string{"Seven Samurai", "The Godfather"})
	assert.NoError(t, err)
}

func TestCheckRequiredLabels_ReportsAllMissing(t *testing.T) {
	entries := []wire.Entry{{ID: 1, Label: "Movie 1"}}
	err := CheckRequiredLabels(entries, []string{"AKIRA", "Fist of Fury"})
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, ErrCodeMissingLabel, ie.Code)
	assert.Contains(t, ie.Message, "AKIRA")
	assert.Contains(t, ie.Message, "Fist of Fury")
}

func TestCheckRequiredLabels_NormalizesUnicode(t *testing.T) {
	// U+00E9 composed vs "e" + U+0301 combining acute: same title either way.
	composed := "Amélie"
	decomposed := "Amélie"
	require.NotEqual(t, composed, decomposed, "the two spellings differ byte-wise")

	entries := []wire.Entry{{ID: 8, Label: decomposed}}
	assert.NoError(t, CheckRequiredLabels(entries, []string{composed}))

	// A genuinely different label still fails.
	err := CheckRequiredLabels(entries, []string{"Amelie"})
	assert.Error(t, err)
}

func TestCheckAtLeast(t *testing.T) {
	assert.NoError(t, CheckAtLeast("catalog entries", 10000, 10000))
	assert.NoError(t, CheckAtLeast("catalog entries", 10001, 10000))

	err := CheckAtLeast("theaters displayed", 499, 500)
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, ErrCodeThreshold, ie.Code)
	assert.Contains(t, ie.Message, "499")
	assert.Contains(t, ie.Message, "500")
}
