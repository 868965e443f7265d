// Package api exposes the board engine over HTTP. Every mutating endpoint
// runs one engine operation, broadcasts the resulting event on the board's
// channel, and echoes the event back to the caller.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wsharp07/lucidboard/pkg/board"
)

// Server holds the chi router, the engine, and the store used for event
// broadcast.
type Server struct {
	router chi.Router
	engine *board.Engine
	store  *board.Client
}

// NewServer creates a Server with all routes configured.
func NewServer(engine *board.Engine, store *board.Client) *Server {
	s := &Server{
		engine: engine,
		store:  store,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Board lifecycle
	r.Get("/boards", s.handleListBoards)
	r.Post("/boards", s.handleCreateBoard)
	r.Get("/boards/{boardId}", s.handleBoardDetail)
	r.Post("/boards/{boardId}", s.handleUpdateBoard)
	r.Post("/boards/{boardId}/timer", s.handleStartTimer)

	// Arrangement operations
	r.Post("/boards/{boardId}/move-card", s.handleMoveCard)
	r.Post("/boards/{boardId}/move-pile", s.handleMovePile)
	r.Post("/boards/{boardId}/combine-cards", s.handleCombineCards)
	r.Post("/boards/{boardId}/combine-piles", s.handleCombinePiles)
	r.Post("/boards/{boardId}/flip-card", s.handleFlipCard)

	// Cards and votes
	r.Post("/columns/{columnId}/cards", s.handleCreateCard)
	r.Post("/cards/{cardId}", s.handleUpdateCard)
	r.Post("/cards/{cardId}/vote", s.handleVote)
	r.Delete("/cards/{cardId}/vote", s.handleUnvote)

	// Client bootstrap data
	r.Get("/config", s.handleConfig)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
