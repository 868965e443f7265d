package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wsharp07/lucidboard/pkg/board"
)

// respondJSON writes v as a JSON response body.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

// respondError maps an engine error to an HTTP status and writes it as a
// JSON body of the form {"error": "..."}.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case board.IsNotFound(err):
		status = http.StatusNotFound
	case board.IsBadRequest(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("[API] internal error: %v", err)
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// decode parses the request body into v.
func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// urlID parses a numeric URL parameter.
func urlID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, board.ErrBadRequest
	}
	return id, nil
}

// broadcast publishes the event on its board's channel and echoes it to the
// caller. A failed publish is logged but does not fail the request; the
// mutation is already durable.
func (s *Server) broadcast(w http.ResponseWriter, r *http.Request, ev *board.Event) {
	if err := s.store.Publish(r.Context(), ev); err != nil {
		log.Printf("[API] failed to publish %s event for board %d: %v", ev.Kind, ev.Board, err)
	}
	respondJSON(w, http.StatusOK, ev)
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.engine.Boards(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, boards)
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req board.CreateBoardRequest
	if err := decode(r, &req); err != nil {
		respondError(w, board.ErrBadRequest)
		return
	}

	detail, ev, err := s.engine.CreateBoard(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.store.Publish(r.Context(), ev); err != nil {
		log.Printf("[API] failed to publish %s event for board %d: %v", ev.Kind, ev.Board, err)
	}
	respondJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleBoardDetail(w http.ResponseWriter, r *http.Request) {
	boardID, err := urlID(r, "boardId")
	if err != nil {
		respondError(w, err)
		return
	}

	detail, err := s.engine.BoardDetail(r.Context(), boardID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	boardID, err := urlID(r, "boardId")
	if err != nil {
		respondError(w, err)
		return
	}

	var req board.UpdateBoardRequest
	if err := decode(r, &req); err != nil {
		respondError(w, board.ErrBadRequest)
		return
	}
	req.Board = boardID

	updated, ev, err := s.engine.UpdateBoard(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.store.Publish(r.Context(), ev); err != nil {
		log.Printf("[API] failed to publish %s event for board %d: %v", ev.Kind, ev.Board, err)
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	boardID, err := urlID(r, "boardId")
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, board.ErrBadRequest)
		return
	}

	_, ev, err := s.engine.StartTimer(r.Context(), boardID, req.Seconds)
	if err != nil {
		respondError(w, err)
		return
	}
	s.broadcast(w, r, ev)
}

func (s *Server) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	boardID, err := urlID(r, "boardId")
	if err != nil {
		respondError(w, err)
		return
	}

	var req board.MoveCardRequest
	if err := decode(r, &req); err != nil {
		respondError(w, board.ErrBadRequest)
		return
	}
	req.Board = boardID

	ev, err := s.engine.MoveCard(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	s.broadcast(w, r, ev)
}

func (s *Server) handleMovePile(w http.ResponseWriter, r *http.Request) {
	boardID, err := urlID(r, "boardId")
	if err != nil {
		respondError(w, err)
		return
	}

	var req board.MovePileRequest
	if err := decode(r, &req); err != nil {
		respondError(w, board.ErrBadRequest)
		return
	}
	req.Board = boardID

	ev, err := s.engine.MovePile(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	s.broadcast(w, r, ev)
}

func (s *Server) handleCombineCards(w http.ResponseWriter, r *http.Request) {
	boardID, err := urlID(r, "boardId")
	if err != nil {
		respondError(w, err)
		return
	}

	var req board.CombineCardsRequest
	if err := decode(r, &req); err != nil {
		respondError(w, board.ErrBadRequest)
		return
	}
	req.Board = boardID

	ev, err := s.engine.CombineCards(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	s.broadcast(w, r, ev)
}

func (s *Server) handleCombinePiles(w http.ResponseWriter, r *http.Request) {
	boardID, err := urlID(r, "boardId")
	if err != nil {
		respondError(w, err)
		return
	}

	var req board.CombinePilesRequest
	if err := decode(r, &req); err != nil {
		respondError(w, board.ErrBadRequest)
		return
	}
	req.Board = boardID

	ev, err := s.engine.CombinePiles(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	s.broadcast(w, r, ev)
}

func (s *Server) handleFlipCard(w http.ResponseWriter, r *http.Request) {
	boardID, err := urlID(r, "boardId")
	if err != nil {
		respondError(w, err)
		return
	}

	var req board.CardFlipRequest
	if err := decode(r, &req); err != nil {
		respondError(w, board.ErrBadRequest)
		return
	}
	req.Board = boardID

	ev, err := s.engine.CardFlip(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	s.broadcast(w, r, ev)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	columnID, err := urlID(r, "columnId")
	if err != nil {
		respondError(w, err)
		return
	}

	var req board.CreateCardRequest
	if err := decode(r, &req); err != nil {
		respondError(w, board.ErrBadRequest)
		return
	}
	req.Column = columnID

	card, ev, err := s.engine.CreateCard(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.store.Publish(r.Context(), ev); err != nil {
		log.Printf("[API] failed to publish %s event for board %d: %v", ev.Kind, ev.Board, err)
	}
	respondJSON(w, http.StatusCreated, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := urlID(r, "cardId")
	if err != nil {
		respondError(w, err)
		return
	}

	var req board.UpdateCardRequest
	if err := decode(r, &req); err != nil {
		respondError(w, board.ErrBadRequest)
		return
	}
	req.Card = cardID

	card, ev, err := s.engine.UpdateCard(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.store.Publish(r.Context(), ev); err != nil {
		log.Printf("[API] failed to publish %s event for board %d: %v", ev.Kind, ev.Board, err)
	}
	respondJSON(w, http.StatusOK, card)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	cardID, err := urlID(r, "cardId")
	if err != nil {
		respondError(w, err)
		return
	}

	ev, err := s.engine.Vote(r.Context(), cardID, r.URL.Query().Get("user"))
	if err != nil {
		respondError(w, err)
		return
	}
	s.broadcast(w, r, ev)
}

func (s *Server) handleUnvote(w http.ResponseWriter, r *http.Request) {
	cardID, err := urlID(r, "cardId")
	if err != nil {
		respondError(w, err)
		return
	}

	ev, err := s.engine.Unvote(r.Context(), cardID, r.URL.Query().Get("user"))
	if err != nil {
		respondError(w, err)
		return
	}
	s.broadcast(w, r, ev)
}

// handleConfig serves the data clients need before joining a board: the
// configured column-set presets.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	type colset struct {
		ID      int      `json:"id"`
		Name    string   `json:"name"`
		Columns []string `json:"columns"`
	}

	colsets := make([]colset, 0, len(s.engine.Colsets()))
	for _, cs := range s.engine.Colsets() {
		colsets = append(colsets, colset{ID: cs.ID, Name: cs.Name, Columns: cs.Columns})
	}
	respondJSON(w, http.StatusOK, map[string]any{"colsets": colsets})
}
