package board

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBoard(t *testing.T) {
	ctx := context.Background()

	t.Run("creates trash plus the colset columns", func(t *testing.T) {
		e, client := setupEngine(t)

		detail, ev, err := e.CreateBoard(ctx, CreateBoardRequest{
			Title:        "Sprint 12 Retro",
			Creator:      "alice",
			ColsetID:     1,
			VotesPerUser: 3,
		})
		require.NoError(t, err)

		assert.Equal(t, EventBoardCreated, ev.Kind)
		assert.Equal(t, detail.Board.ID, ev.Board)

		require.Len(t, detail.Columns, 4)
		assert.Equal(t, "Trash", detail.Columns[0].Title)
		assert.Equal(t, 0, detail.Columns[0].Position)
		assert.Equal(t, "Went Well", detail.Columns[1].Title)
		assert.Equal(t, "To Improve", detail.Columns[2].Title)
		assert.Equal(t, "Action Items", detail.Columns[3].Title)

		// Persisted too, in position order.
		cols, err := client.BoardColumns(ctx, detail.Board.ID)
		require.NoError(t, err)
		require.Len(t, cols, 4)
		assert.Equal(t, "Trash", cols[0].Title)
	})

	t.Run("unknown colset falls back to the first configured set", func(t *testing.T) {
		e := NewEngine(setupTestClient(t), []Colset{
			{ID: 1, Name: "Small", Columns: []string{"Only"}},
			{ID: 2, Name: "Wide", Columns: []string{"A", "B"}},
		})

		detail, _, err := e.CreateBoard(ctx, CreateBoardRequest{Title: "t", Creator: "u", ColsetID: 99})
		require.NoError(t, err)
		require.Len(t, detail.Columns, 2)
		assert.Equal(t, "Only", detail.Columns[1].Title)
	})

	t.Run("rejects an invalid board", func(t *testing.T) {
		e, _ := setupEngine(t)

		_, _, err := e.CreateBoard(ctx, CreateBoardRequest{Title: "", Creator: "alice"})
		require.Error(t, err)
	})
}

func TestUpdateBoard(t *testing.T) {
	ctx := context.Background()
	e, client := setupEngine(t)
	b := seedBoard(t, client)

	updated, ev, err := e.UpdateBoard(ctx, UpdateBoardRequest{
		Board:        b.ID,
		Title:        "Renamed",
		VotesPerUser: 5,
		SeeVotes:     true,
		Lock:         true,
	})
	require.NoError(t, err)

	assert.Equal(t, EventBoardUpdated, ev.Kind)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 5, updated.VotesPerUser)
	assert.True(t, updated.SeeVotes)
	assert.True(t, updated.Lock)

	got, err := client.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	t.Run("missing board is not found", func(t *testing.T) {
		_, _, err := e.UpdateBoard(ctx, UpdateBoardRequest{Board: 9999, Title: "x"})
		assert.True(t, IsNotFound(err))
	})
}

func TestStartTimer(t *testing.T) {
	ctx := context.Background()
	e, client := setupEngine(t)
	b := seedBoard(t, client)

	t.Run("records the start and length", func(t *testing.T) {
		before := time.Now().UnixMilli()
		updated, ev, err := e.StartTimer(ctx, b.ID, 300)
		require.NoError(t, err)

		assert.Equal(t, EventTimerStart, ev.Kind)
		assert.Equal(t, 300, ev.Seconds)
		assert.Equal(t, 300, updated.TimerLength)
		assert.GreaterOrEqual(t, updated.TimerStartMs, before)

		left := updated.TimerLeftAt(time.Now())
		assert.Greater(t, left, 295)
		assert.LessOrEqual(t, left, 300)
	})

	t.Run("rejects a non-positive length", func(t *testing.T) {
		_, _, err := e.StartTimer(ctx, b.ID, 0)
		assert.True(t, IsBadRequest(err))
	})
}

func TestBoardDetail(t *testing.T) {
	ctx := context.Background()
	e, client := setupEngine(t)

	b := seedBoard(t, client)
	trash := seedColumn(t, client, b.ID, "Trash", 0)
	col := seedColumn(t, client, b.ID, "Went Well", 1)
	c1 := seedCard(t, client, col.ID, 1, "first")
	c2 := seedCard(t, client, col.ID, 2, "second")
	require.NoError(t, client.AddVote(ctx, b.ID, c1.ID, "alice"))
	require.NoError(t, client.AddVote(ctx, b.ID, c1.ID, "bob"))

	detail, err := e.BoardDetail(ctx, b.ID)
	require.NoError(t, err)

	assert.Equal(t, b.ID, detail.Board.ID)
	require.Len(t, detail.Columns, 2)
	assert.Equal(t, trash.ID, detail.Columns[0].ID)
	assert.Empty(t, detail.Columns[0].Cards)

	cards := detail.Columns[1].Cards
	require.Len(t, cards, 2)
	assert.Equal(t, c1.ID, cards[0].ID)
	assert.Len(t, cards[0].Votes, 2)
	assert.Equal(t, c2.ID, cards[1].ID)
	assert.Empty(t, cards[1].Votes)

	t.Run("missing board is not found", func(t *testing.T) {
		_, err := e.BoardDetail(ctx, 9999)
		assert.True(t, IsNotFound(err))
	})
}
