package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wsharp07/lucidboard/pkg/board"
)

// setupServer wires a server over a miniredis-backed store.
func setupServer(t *testing.T) (*Server, *board.Client) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	store, err := board.NewClient(&redis.Options{Addr: mr.Addr()}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewServer(board.NewEngine(store, nil), store), store
}

// doJSON issues a request with a JSON body and decodes the JSON response
// into out when it is non-nil.
func doJSON(t *testing.T, s *Server, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

// createBoard creates a board through the API and returns its detail.
func createBoard(t *testing.T, s *Server) *board.BoardDetail {
	t.Helper()

	var detail board.BoardDetail
	rec := doJSON(t, s, http.MethodPost, "/boards", board.CreateBoardRequest{
		Title:   "Sprint Retro",
		Creator: "alice",
	}, &detail)
	require.Equal(t, http.StatusCreated, rec.Code)
	return &detail
}

func TestCreateAndListBoards(t *testing.T) {
	s, _ := setupServer(t)

	detail := createBoard(t, s)
	assert.NotZero(t, detail.ID)
	require.Len(t, detail.Columns, 4)
	assert.Equal(t, "Trash", detail.Columns[0].Title)
	assert.Equal(t, "Went Well", detail.Columns[1].Title)

	var boards []board.Board
	rec := doJSON(t, s, http.MethodGet, "/boards", nil, &boards)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, boards, 1)
	assert.Equal(t, "Sprint Retro", boards[0].Title)
}

func TestBoardDetail(t *testing.T) {
	s, _ := setupServer(t)
	detail := createBoard(t, s)

	var got board.BoardDetail
	rec := doJSON(t, s, http.MethodGet, fmt.Sprintf("/boards/%d", detail.ID), nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, detail.ID, got.ID)
	assert.Len(t, got.Columns, 4)

	t.Run("missing board is 404", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/boards/9999", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/boards/banana", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateBoard(t *testing.T) {
	s, _ := setupServer(t)
	detail := createBoard(t, s)

	var updated board.Board
	rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/boards/%d", detail.ID), board.UpdateBoardRequest{
		Title:        "Renamed",
		VotesPerUser: 3,
	}, &updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 3, updated.VotesPerUser)
}

func TestStartTimer(t *testing.T) {
	s, _ := setupServer(t)
	detail := createBoard(t, s)

	var ev board.Event
	rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/boards/%d/timer", detail.ID),
		map[string]int{"seconds": 120}, &ev)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, board.EventTimerStart, ev.Kind)
	assert.Equal(t, 120, ev.Seconds)

	t.Run("zero seconds is 400", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/boards/%d/timer", detail.ID),
			map[string]int{"seconds": 0}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMoveCardEndpoint(t *testing.T) {
	s, _ := setupServer(t)
	detail := createBoard(t, s)
	col := detail.Columns[1]
	other := detail.Columns[2]

	var c1, c2 board.Card
	rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/columns/%d/cards", col.ID),
		board.CreateCardRequest{Content: "one"}, &c1)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/columns/%d/cards", col.ID),
		board.CreateCardRequest{Content: "two"}, &c2)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, c2.Position)

	var ev board.Event
	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/boards/%d/move-card", detail.ID),
		board.MoveCardRequest{Card: c2.ID, DestColumn: other.ID, DestPosition: 1}, &ev)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, board.EventMoveCards, ev.Kind)
	assert.Equal(t, [][]int64{{c2.ID}}, ev.Columns[other.ID])
	assert.Equal(t, [][]int64{{c1.ID}}, ev.Columns[col.ID])

	t.Run("out-of-range destination is 400", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/boards/%d/move-card", detail.ID),
			board.MoveCardRequest{Card: c1.ID, DestColumn: col.ID, DestPosition: 0}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing card is 404", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/boards/%d/move-card", detail.ID),
			board.MoveCardRequest{Card: 9999, DestColumn: col.ID, DestPosition: 1}, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCombineCardsEndpoint(t *testing.T) {
	s, _ := setupServer(t)
	detail := createBoard(t, s)
	col := detail.Columns[1]

	var c1, c2 board.Card
	doJSON(t, s, http.MethodPost, fmt.Sprintf("/columns/%d/cards", col.ID),
		board.CreateCardRequest{Content: "one"}, &c1)
	doJSON(t, s, http.MethodPost, fmt.Sprintf("/columns/%d/cards", col.ID),
		board.CreateCardRequest{Content: "two"}, &c2)

	var ev board.Event
	rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/boards/%d/combine-cards", detail.ID),
		board.CombineCardsRequest{SourceCard: c2.ID, DestCard: c1.ID}, &ev)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, board.EventCombineCards, ev.Kind)
	require.NotNil(t, ev.Card)
	assert.Equal(t, c2.ID, ev.Card.ID)
	assert.True(t, ev.Card.TopOfPile)

	t.Run("self-combination is 400", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/boards/%d/combine-cards", detail.ID),
			board.CombineCardsRequest{SourceCard: c1.ID, DestCard: c1.ID}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVoteEndpoints(t *testing.T) {
	s, _ := setupServer(t)
	detail := createBoard(t, s)
	col := detail.Columns[1]

	var card board.Card
	doJSON(t, s, http.MethodPost, fmt.Sprintf("/columns/%d/cards", col.ID),
		board.CreateCardRequest{Content: "idea"}, &card)

	var ev board.Event
	rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/cards/%d/vote?user=alice", card.ID), nil, &ev)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, board.EventCardVote, ev.Kind)
	assert.Equal(t, 1, ev.Votes)

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/cards/%d/vote?user=alice", card.ID), nil, &ev)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, ev.Votes)

	t.Run("missing user is 400", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/cards/%d/vote", card.ID), nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateCardEndpoint(t *testing.T) {
	s, _ := setupServer(t)
	detail := createBoard(t, s)
	col := detail.Columns[1]

	var card board.Card
	doJSON(t, s, http.MethodPost, fmt.Sprintf("/columns/%d/cards", col.ID),
		board.CreateCardRequest{Content: "draft"}, &card)

	var updated board.Card
	rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/cards/%d", card.ID),
		board.UpdateCardRequest{Content: "final"}, &updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "final", updated.Content)
}

func TestConfigEndpoint(t *testing.T) {
	s, _ := setupServer(t)

	var cfg struct {
		Colsets []struct {
			ID      int      `json:"id"`
			Name    string   `json:"name"`
			Columns []string `json:"columns"`
		} `json:"colsets"`
	}
	rec := doJSON(t, s, http.MethodGet, "/config", nil, &cfg)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, cfg.Colsets, 1)
	assert.Equal(t, "Retrospective", cfg.Colsets[0].Name)
	assert.Equal(t, []string{"Went Well", "To Improve", "Action Items"}, cfg.Colsets[0].Columns)
}

func TestMutationsBroadcast(t *testing.T) {
	s, store := setupServer(t)
	detail := createBoard(t, s)
	col := detail.Columns[1]

	sub, err := store.Subscribe(context.Background(), detail.ID)
	require.NoError(t, err)
	defer sub.Close()

	var card board.Card
	rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/columns/%d/cards", col.ID),
		board.CreateCardRequest{Content: "hello"}, &card)
	require.Equal(t, http.StatusCreated, rec.Code)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, board.EventCardCreated, ev.Kind)
		require.NotNil(t, ev.Card)
		assert.Equal(t, card.ID, ev.Card.ID)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for broadcast")
	}
}
