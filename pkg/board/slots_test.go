package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkCard(id int64, position int) *Card {
	return &Card{ID: id, Column: 1, Position: position, Content: "card"}
}

func TestGroupSlots(t *testing.T) {
	t.Run("empty stack yields no slots", func(t *testing.T) {
		assert.Empty(t, GroupSlots(nil))
		assert.Empty(t, GroupSlots([]*Card{}))
	})

	t.Run("groups runs of equal positions", func(t *testing.T) {
		stack := []*Card{mkCard(1, 1), mkCard(2, 1), mkCard(3, 2), mkCard(4, 3), mkCard(5, 3)}

		slots := GroupSlots(stack)
		require.Len(t, slots, 3)
		assert.Equal(t, [][]int64{{1, 2}, {3}, {4, 5}}, Identifiers(slots))
	})

	t.Run("preserves order within a run", func(t *testing.T) {
		stack := []*Card{mkCard(7, 1), mkCard(3, 1), mkCard(9, 1)}

		slots := GroupSlots(stack)
		require.Len(t, slots, 1)
		assert.Equal(t, [][]int64{{7, 3, 9}}, Identifiers(slots))
	})

	t.Run("round-trips against naive grouping", func(t *testing.T) {
		stack := []*Card{
			mkCard(1, 1), mkCard(2, 2), mkCard(3, 2), mkCard(4, 2),
			mkCard(5, 3), mkCard(6, 4), mkCard(7, 4),
		}

		// Reference grouping: bucket by position, in input order.
		var want [][]int64
		byPos := map[int]int{}
		for _, c := range stack {
			if i, ok := byPos[c.Position]; ok {
				want[i] = append(want[i], c.ID)
			} else {
				byPos[c.Position] = len(want)
				want = append(want, []int64{c.ID})
			}
		}

		assert.Equal(t, want, Identifiers(GroupSlots(stack)))
	})
}

func TestExtractCard(t *testing.T) {
	t.Run("removes a card from a pile", func(t *testing.T) {
		slots := GroupSlots([]*Card{mkCard(1, 1), mkCard(2, 1), mkCard(3, 2)})

		slots, card, err := ExtractCard(slots, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2), card.ID)
		assert.Equal(t, [][]int64{{1}, {3}}, Identifiers(slots))
	})

	t.Run("removes the slot when it empties", func(t *testing.T) {
		slots := GroupSlots([]*Card{mkCard(1, 1), mkCard(2, 2), mkCard(3, 3)})

		slots, card, err := ExtractCard(slots, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2), card.ID)
		assert.Equal(t, [][]int64{{1}, {3}}, Identifiers(slots))
	})

	t.Run("missing card is an inconsistency", func(t *testing.T) {
		slots := GroupSlots([]*Card{mkCard(1, 1)})

		_, _, err := ExtractCard(slots, 42)
		require.Error(t, err)
		assert.True(t, IsInconsistency(err))
	})
}

func TestInsertSlot(t *testing.T) {
	t.Run("inserts in the middle", func(t *testing.T) {
		slots := GroupSlots([]*Card{mkCard(1, 1), mkCard(2, 2)})

		slots = insertSlot(slots, 1, Slot{mkCard(9, 0)})
		assert.Equal(t, [][]int64{{1}, {9}, {2}}, Identifiers(slots))
	})

	t.Run("clamps a trailing index to an append", func(t *testing.T) {
		slots := GroupSlots([]*Card{mkCard(1, 1)})

		slots = insertSlot(slots, 5, Slot{mkCard(9, 0)})
		assert.Equal(t, [][]int64{{1}, {9}}, Identifiers(slots))
	})
}

func TestRemoveSlot(t *testing.T) {
	slots := GroupSlots([]*Card{mkCard(1, 1), mkCard(2, 1), mkCard(3, 2)})

	slots, pile := removeSlot(slots, 0)
	assert.Equal(t, [][]int64{{3}}, Identifiers(slots))
	require.Len(t, pile, 2)
	assert.Equal(t, int64(1), pile[0].ID)
	assert.Equal(t, int64(2), pile[1].ID)
}
