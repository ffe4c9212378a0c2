package leaderboard

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyventure/internal/domain/model"
)

func entry(id int64, score, levels, attempts int) model.LeaderboardEntry {
	return model.LeaderboardEntry{
		Rank:  int(id),
		User:  model.User{ID: id, Username: "u"},
		Stats: model.UserStats{UserID: id, TotalScore: score, TotalCompletedLevels: levels, TotalAttempts: attempts},
	}
}

func ids(entries []model.LeaderboardEntry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.User.ID
	}
	return out
}

func sample() []model.LeaderboardEntry {
	return []model.LeaderboardEntry{
		entry(1, 900, 8, 20),
		entry(2, 900, 7, 25),
		entry(3, 500, 8, 12),
		entry(4, 1200, 5, 40),
		entry(5, 500, 2, 12),
	}
}

func TestSortByField(t *testing.T) {
	data := sample()

	assert.Equal(t, []int64{4, 2, 1, 5, 3}, ids(Sort(data, State{FieldScore, Desc})))
	assert.Equal(t, []int64{3, 5, 1, 2, 4}, ids(Sort(data, State{FieldScore, Asc})))
	assert.Equal(t, []int64{3, 1, 2, 4, 5}, ids(Sort(data, State{FieldLevels, Desc})))
	assert.Equal(t, []int64{3, 5, 1, 2, 4}, ids(Sort(data, State{FieldAttempts, Asc})))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	data := sample()
	before := ids(data)
	Sort(data, State{FieldLevels, Asc})
	assert.Equal(t, before, ids(data))
}

func TestReverseDirectionIsExactReverse(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	var data []model.LeaderboardEntry
	for i := int64(1); i <= 60; i++ {
		// Small value ranges force plenty of ties.
		data = append(data, entry(i, r.Intn(4)*100, r.Intn(3), r.Intn(5)))
	}
	r.Shuffle(len(data), func(i, j int) { data[i], data[j] = data[j], data[i] })

	for _, f := range []Field{FieldScore, FieldLevels, FieldAttempts} {
		for _, d := range []Direction{Asc, Desc} {
			first := Sort(data, State{f, d})
			second := Sort(first, State{f, d.Reverse()})

			want := ids(first)
			slices.Reverse(want)
			require.Equal(t, want, ids(second), "field %s dir %s", f, d)
		}
	}
}

func TestSortIsStableAcrossInputOrder(t *testing.T) {
	a := sample()
	b := slices.Clone(a)
	slices.Reverse(b)
	for _, f := range []Field{FieldScore, FieldLevels, FieldAttempts} {
		assert.Equal(t, ids(Sort(a, State{f, Desc})), ids(Sort(b, State{f, Desc})))
	}
}

func TestToggle(t *testing.T) {
	s := DefaultState()
	assert.Equal(t, State{FieldScore, Desc}, s)

	s = s.Toggle(FieldScore)
	assert.Equal(t, State{FieldScore, Asc}, s)

	s = s.Toggle(FieldLevels)
	assert.Equal(t, State{FieldLevels, Desc}, s)

	s = s.Toggle(FieldLevels)
	assert.Equal(t, State{FieldLevels, Asc}, s)
}

func TestParse(t *testing.T) {
	f, err := ParseField("")
	require.NoError(t, err)
	assert.Equal(t, FieldScore, f)

	f, err = ParseField("attempts")
	require.NoError(t, err)
	assert.Equal(t, FieldAttempts, f)

	_, err = ParseField("streak")
	assert.Error(t, err)

	d, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestDecorate(t *testing.T) {
	out := Decorate(sample(), 8)
	assert.Equal(t, 100, out[0].Progress)
	assert.Equal(t, 87, out[1].Progress)
	assert.Equal(t, 25, out[4].Progress)

	assert.Equal(t, 0, ProgressPercent(3, 0))
	assert.Equal(t, 100, ProgressPercent(12, 8))
}
