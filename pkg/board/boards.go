package board

import (
	"context"
	"time"
)

// CreateBoardRequest carries the fields a user sets when creating a board.
type CreateBoardRequest struct {
	Title        string `json:"title"`
	Creator      string `json:"creator"`
	ColsetID     int    `json:"colsetId"`
	VotesPerUser int    `json:"votesPerUser"`
	SeeVotes     bool   `json:"p_seeVotes"`
	SeeContent   bool   `json:"p_seeContent"`
	CombineCards bool   `json:"p_combineCards"`
	Lock         bool   `json:"p_lock"`
}

// CreateBoard creates a board together with its starter columns: the special
// Trash column at position 0, then the working columns of the requested
// column set (falling back to the first configured set). Column creates are
// issued concurrently.
func (e *Engine) CreateBoard(ctx context.Context, req CreateBoardRequest) (*BoardDetail, *Event, error) {
	b := &Board{
		Title:        req.Title,
		Creator:      req.Creator,
		ColsetID:     req.ColsetID,
		VotesPerUser: req.VotesPerUser,
		SeeVotes:     req.SeeVotes,
		SeeContent:   req.SeeContent,
		CombineCards: req.CombineCards,
		Lock:         req.Lock,
	}
	if err := e.store.CreateBoard(ctx, b); err != nil {
		return nil, nil, err
	}

	colset := e.colsets[0]
	for _, cs := range e.colsets {
		if cs.ID == req.ColsetID {
			colset = cs
			break
		}
	}

	columns := make([]*Column, 0, len(colset.Columns)+1)
	columns = append(columns, &Column{Board: b.ID, Title: "Trash", Position: 0})
	for i, title := range colset.Columns {
		columns = append(columns, &Column{Board: b.ID, Title: title, Position: i + 1})
	}

	makers := make([]func() error, len(columns))
	for i := range columns {
		col := columns[i]
		makers[i] = func() error { return e.store.CreateColumn(ctx, col) }
	}
	if err := parallel(makers...); err != nil {
		return nil, nil, err
	}

	detail := &BoardDetail{Board: *b, Columns: make([]ColumnDetail, len(columns))}
	for i, col := range columns {
		detail.Columns[i] = ColumnDetail{Column: *col, Cards: []CardDetail{}}
	}

	return detail, &Event{Kind: EventBoardCreated, Board: b.ID}, nil
}

// UpdateBoardRequest carries the board fields a user may edit after creation.
type UpdateBoardRequest struct {
	Board        int64  `json:"boardId"`
	Title        string `json:"title"`
	VotesPerUser int    `json:"votesPerUser"`
	SeeVotes     bool   `json:"p_seeVotes"`
	SeeContent   bool   `json:"p_seeContent"`
	CombineCards bool   `json:"p_combineCards"`
	Lock         bool   `json:"p_lock"`
}

// UpdateBoard rewrites a board's editable settings.
func (e *Engine) UpdateBoard(ctx context.Context, req UpdateBoardRequest) (*Board, *Event, error) {
	b, err := e.store.GetBoard(ctx, req.Board)
	if IsNotFound(err) {
		return nil, nil, notFoundf("board %d", req.Board)
	}
	if err != nil {
		return nil, nil, err
	}

	b.Title = req.Title
	b.VotesPerUser = req.VotesPerUser
	b.SeeVotes = req.SeeVotes
	b.SeeContent = req.SeeContent
	b.CombineCards = req.CombineCards
	b.Lock = req.Lock

	if err := e.store.SaveBoard(ctx, b); err != nil {
		return nil, nil, err
	}

	return b, &Event{Kind: EventBoardUpdated, Board: b.ID}, nil
}

// StartTimer starts (or restarts) the board's countdown timer.
func (e *Engine) StartTimer(ctx context.Context, boardID int64, seconds int) (*Board, *Event, error) {
	if seconds < 1 {
		return nil, nil, badRequestf("timer length %d must be >= 1 second", seconds)
	}

	b, err := e.store.GetBoard(ctx, boardID)
	if IsNotFound(err) {
		return nil, nil, notFoundf("board %d", boardID)
	}
	if err != nil {
		return nil, nil, err
	}

	b.TimerStartMs = time.Now().UnixMilli()
	b.TimerLength = seconds

	if err := e.store.SaveBoard(ctx, b); err != nil {
		return nil, nil, err
	}

	return b, &Event{Kind: EventTimerStart, Board: b.ID, Seconds: seconds}, nil
}

// Boards lists every board as an id/title projection.
func (e *Engine) Boards(ctx context.Context) ([]*Board, error) {
	return e.store.Boards(ctx)
}

// BoardDetail loads the full board aggregate: the board, its columns ordered
// by position, each column's cards ordered by position, and each card's
// votes. Column stacks load concurrently.
func (e *Engine) BoardDetail(ctx context.Context, boardID int64) (*BoardDetail, error) {
	b, err := e.store.GetBoard(ctx, boardID)
	if IsNotFound(err) {
		return nil, notFoundf("board %d", boardID)
	}
	if err != nil {
		return nil, err
	}

	cols, err := e.store.BoardColumns(ctx, boardID)
	if err != nil {
		return nil, err
	}

	detail := &BoardDetail{
		Board:     *b,
		TimerLeft: b.TimerLeftAt(time.Now()),
		Columns:   make([]ColumnDetail, len(cols)),
	}

	loaders := make([]func() error, len(cols))
	for i := range cols {
		i := i
		loaders[i] = func() error {
			stack, err := e.store.ColumnStack(ctx, cols[i].ID)
			if err != nil {
				return err
			}

			cards := make([]CardDetail, len(stack))
			for j, card := range stack {
				votes, err := e.store.CardVotes(ctx, card.ID)
				if err != nil {
					return err
				}
				cards[j] = CardDetail{Card: *card, Votes: votes}
			}

			detail.Columns[i] = ColumnDetail{Column: *cols[i], Cards: cards}
			return nil
		}
	}
	if err := parallel(loaders...); err != nil {
		return nil, err
	}

	return detail, nil
}
