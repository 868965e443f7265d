package board

import "context"

// CreateCardRequest asks for a new card at the bottom of a column.
type CreateCardRequest struct {
	Column  int64  `json:"columnId"`
	Content string `json:"content"`
}

// CreateCard appends a new card as a trailing singleton slot of its column.
func (e *Engine) CreateCard(ctx context.Context, req CreateCardRequest) (*Card, *Event, error) {
	col, err := e.store.GetColumn(ctx, req.Column)
	if IsNotFound(err) {
		return nil, nil, notFoundf("column %d", req.Column)
	}
	if err != nil {
		return nil, nil, err
	}

	stack, err := e.store.ColumnStack(ctx, req.Column)
	if err != nil {
		return nil, nil, err
	}

	card := &Card{
		Column:    req.Column,
		Position:  len(GroupSlots(stack)) + 1,
		Content:   req.Content,
		TopOfPile: false,
	}
	if err := e.store.CreateCard(ctx, card); err != nil {
		return nil, nil, err
	}

	return card, &Event{Kind: EventCardCreated, Board: col.Board, Card: card}, nil
}

// UpdateCardRequest asks to replace a card's text content.
type UpdateCardRequest struct {
	Card    int64  `json:"cardId"`
	Content string `json:"content"`
}

// UpdateCard rewrites a card's content, leaving its geometry untouched.
func (e *Engine) UpdateCard(ctx context.Context, req UpdateCardRequest) (*Card, *Event, error) {
	card, err := e.store.GetCard(ctx, req.Card)
	if IsNotFound(err) {
		return nil, nil, notFoundf("card %d", req.Card)
	}
	if err != nil {
		return nil, nil, err
	}

	col, err := e.store.GetColumn(ctx, card.Column)
	if IsNotFound(err) {
		return nil, nil, notFoundf("column %d", card.Column)
	}
	if err != nil {
		return nil, nil, err
	}

	card.Content = req.Content
	if err := e.store.SaveCard(ctx, card); err != nil {
		return nil, nil, err
	}

	return card, &Event{Kind: EventCardUpdated, Board: col.Board, Card: card}, nil
}

// Vote adds one of user's votes to a card, honoring the board's votesPerUser
// allowance (0 means unlimited).
func (e *Engine) Vote(ctx context.Context, cardID int64, user string) (*Event, error) {
	if user == "" {
		return nil, badRequestf("user is required")
	}

	card, col, b, err := e.cardContext(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if b.VotesPerUser > 0 {
		held, err := e.store.UserVoteCount(ctx, b.ID, user)
		if err != nil {
			return nil, err
		}
		if held >= b.VotesPerUser {
			return nil, badRequestf("no votes left (%d of %d used)", held, b.VotesPerUser)
		}
	}

	if err := e.store.AddVote(ctx, b.ID, card.ID, user); err != nil {
		return nil, err
	}

	return e.voteEvent(ctx, col.Board, card.ID)
}

// Unvote takes back one of user's votes from a card. Removing a vote the
// user doesn't hold is a no-op.
func (e *Engine) Unvote(ctx context.Context, cardID int64, user string) (*Event, error) {
	if user == "" {
		return nil, badRequestf("user is required")
	}

	card, col, b, err := e.cardContext(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if err := e.store.RemoveVote(ctx, b.ID, card.ID, user); err != nil {
		return nil, err
	}

	return e.voteEvent(ctx, col.Board, card.ID)
}

// cardContext resolves a card along with its column and board.
func (e *Engine) cardContext(ctx context.Context, cardID int64) (*Card, *Column, *Board, error) {
	card, err := e.store.GetCard(ctx, cardID)
	if IsNotFound(err) {
		return nil, nil, nil, notFoundf("card %d", cardID)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	col, err := e.store.GetColumn(ctx, card.Column)
	if IsNotFound(err) {
		return nil, nil, nil, notFoundf("column %d", card.Column)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	b, err := e.store.GetBoard(ctx, col.Board)
	if IsNotFound(err) {
		return nil, nil, nil, notFoundf("board %d", col.Board)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	return card, col, b, nil
}

func (e *Engine) voteEvent(ctx context.Context, boardID, cardID int64) (*Event, error) {
	votes, err := e.store.CardVotes(ctx, cardID)
	if err != nil {
		return nil, err
	}

	return &Event{
		Kind:   EventCardVote,
		Board:  boardID,
		CardID: cardID,
		Votes:  len(votes),
	}, nil
}
