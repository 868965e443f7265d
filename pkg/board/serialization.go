package board

import "strconv"

// Serialization helpers for converting between Go structs and Redis hashes.
//
// Redis stores data as string-to-string maps (hashes). Every entity field is
// scalar, so each maps onto one hash field; numeric and boolean fields are
// parsed back with strconv.

// boardToHash converts a Board to Redis hash format.
func boardToHash(b *Board) map[string]interface{} {
	return map[string]interface{}{
		"id":             b.ID,
		"title":          b.Title,
		"creator":        b.Creator,
		"colset_id":      b.ColsetID,
		"votes_per_user": b.VotesPerUser,
		"timer_start_ms": b.TimerStartMs,
		"timer_length":   b.TimerLength,
		"see_votes":      b.SeeVotes,
		"see_content":    b.SeeContent,
		"combine_cards":  b.CombineCards,
		"lock":           b.Lock,
	}
}

// hashToBoard converts a Redis hash to a Board.
func hashToBoard(hash map[string]string) (*Board, error) {
	id, err := strconv.ParseInt(hash["id"], 10, 64)
	if err != nil {
		return nil, err
	}

	colsetID, _ := strconv.Atoi(hash["colset_id"])
	votesPerUser, _ := strconv.Atoi(hash["votes_per_user"])
	timerStartMs, _ := strconv.ParseInt(hash["timer_start_ms"], 10, 64)
	timerLength, _ := strconv.Atoi(hash["timer_length"])
	seeVotes, _ := strconv.ParseBool(hash["see_votes"])
	seeContent, _ := strconv.ParseBool(hash["see_content"])
	combineCards, _ := strconv.ParseBool(hash["combine_cards"])
	lock, _ := strconv.ParseBool(hash["lock"])

	return &Board{
		ID:           id,
		Title:        hash["title"],
		Creator:      hash["creator"],
		ColsetID:     colsetID,
		VotesPerUser: votesPerUser,
		TimerStartMs: timerStartMs,
		TimerLength:  timerLength,
		SeeVotes:     seeVotes,
		SeeContent:   seeContent,
		CombineCards: combineCards,
		Lock:         lock,
	}, nil
}

// columnToHash converts a Column to Redis hash format.
func columnToHash(c *Column) map[string]interface{} {
	return map[string]interface{}{
		"id":       c.ID,
		"board":    c.Board,
		"title":    c.Title,
		"position": c.Position,
	}
}

// hashToColumn converts a Redis hash to a Column.
func hashToColumn(hash map[string]string) (*Column, error) {
	id, err := strconv.ParseInt(hash["id"], 10, 64)
	if err != nil {
		return nil, err
	}
	boardID, err := strconv.ParseInt(hash["board"], 10, 64)
	if err != nil {
		return nil, err
	}
	position, err := strconv.Atoi(hash["position"])
	if err != nil {
		return nil, err
	}

	return &Column{
		ID:       id,
		Board:    boardID,
		Title:    hash["title"],
		Position: position,
	}, nil
}

// cardToHash converts a Card to Redis hash format.
func cardToHash(c *Card) map[string]interface{} {
	return map[string]interface{}{
		"id":          c.ID,
		"column":      c.Column,
		"position":    c.Position,
		"content":     c.Content,
		"top_of_pile": c.TopOfPile,
	}
}

// hashToCard converts a Redis hash to a Card.
func hashToCard(hash map[string]string) (*Card, error) {
	id, err := strconv.ParseInt(hash["id"], 10, 64)
	if err != nil {
		return nil, err
	}
	columnID, err := strconv.ParseInt(hash["column"], 10, 64)
	if err != nil {
		return nil, err
	}
	position, err := strconv.Atoi(hash["position"])
	if err != nil {
		return nil, err
	}
	topOfPile, _ := strconv.ParseBool(hash["top_of_pile"])

	return &Card{
		ID:        id,
		Column:    columnID,
		Position:  position,
		Content:   hash["content"],
		TopOfPile: topOfPile,
	}, nil
}
