package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wsharp07/lucidboard/pkg/board"
)

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		err := Error("Test Error", "This is a test error", []string{})
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
	})

	t.Run("returns error with title when including suggestions", func(t *testing.T) {
		err := Error("Test Error", "Explanation", []string{"Try this fix"})
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
	})

	t.Run("returns error with title for multiple suggestions", func(t *testing.T) {
		err := Error("Test Error", "Explanation", []string{
			"First option",
			"Second option",
		})
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
	})
}

func TestEventSummary(t *testing.T) {
	t.Run("move event lists columns deterministically", func(t *testing.T) {
		ev := &board.Event{
			Kind:  board.EventMoveCards,
			Board: 1,
			Columns: map[int64][][]int64{
				12: {{4}},
				11: {{1, 2}, {3}},
			},
		}

		assert.Equal(t, "column 11 -> [1 2|3]; column 12 -> [4]", EventSummary(ev))
	})

	t.Run("combine event names the card and source column", func(t *testing.T) {
		ev := &board.Event{
			Kind:         board.EventCombineCards,
			Board:        1,
			Card:         &board.Card{ID: 7},
			SourceColumn: 3,
			SourceMap:    [][]int64{{1}, {2, 7}},
		}

		assert.Equal(t, "card 7 combined; column 3 -> [1|2 7]", EventSummary(ev))
	})

	t.Run("vote event reports the tally", func(t *testing.T) {
		ev := &board.Event{Kind: board.EventCardVote, Board: 1, CardID: 9, Votes: 4}
		assert.Equal(t, "card 9 has 4 votes", EventSummary(ev))
	})

	t.Run("vaporize event names the card", func(t *testing.T) {
		ev := &board.Event{Kind: board.EventVaporize, Board: 1, CardID: 5}
		assert.Equal(t, "card 5 vaporized", EventSummary(ev))
	})
}
