// Package board implements the Lucidboard arrangement engine and its Redis
// persistence. A board is a set of ordered columns; each column holds cards in
// 1-based positions. Cards that share a position form a pile, and exactly one
// card in a pile carries the top-of-pile flag.
//
// All Redis keys and channels are namespaced so that multiple deployments can
// safely share a single Redis server.
package board

import (
	"fmt"
	"time"
)

// Board is the thing users collaborate over. The permission flags mirror the
// per-board settings exposed to clients (who may see votes/content, whether
// cards may be combined, whether cards may be locked while editing).
type Board struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Creator      string `json:"creator"`
	ColsetID     int    `json:"colsetId"`     // column-set preset used at creation
	VotesPerUser int    `json:"votesPerUser"` // 0 means unlimited
	TimerStartMs int64  `json:"timerStartMs"` // unix millis; 0 when no timer has run
	TimerLength  int    `json:"timerLength"`  // seconds
	SeeVotes     bool   `json:"p_seeVotes"`
	SeeContent   bool   `json:"p_seeContent"`
	CombineCards bool   `json:"p_combineCards"`
	Lock         bool   `json:"p_lock"`
}

// Column belongs to a board. Position 0 is reserved for the special Trash
// column; working columns are numbered 1..N.
type Column struct {
	ID       int64  `json:"id"`
	Board    int64  `json:"board"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// Card belongs to a column. Position is 1-based and dense within the column;
// cards sharing a position form a pile. Content of "" marks an unused trash
// placeholder, which is vaporized rather than repositioned when dropped on
// the Trash column.
type Card struct {
	ID        int64  `json:"id"`
	Column    int64  `json:"column"`
	Position  int    `json:"position"`
	Content   string `json:"content"`
	TopOfPile bool   `json:"topOfPile"`
}

// Vote is a "+1" from one user on one card. A user may hold several votes on
// the same card, up to the board's per-user allowance.
type Vote struct {
	User string `json:"user"`
	Card int64  `json:"card"`
}

// BoardDetail is the full aggregate served to clients joining a board.
type BoardDetail struct {
	Board
	TimerLeft int            `json:"timerLeft"` // seconds remaining, 0 when expired or never started
	Columns   []ColumnDetail `json:"columns"`
}

// ColumnDetail is a column plus its cards, ordered by position.
type ColumnDetail struct {
	Column
	Cards []CardDetail `json:"cards"`
}

// CardDetail is a card plus its votes.
type CardDetail struct {
	Card
	Votes []Vote `json:"votes"`
}

const maxTitleLen = 60

// Validate checks the Board's field values.
func (b *Board) Validate() error {
	if b.Title == "" || len(b.Title) > maxTitleLen {
		return fmt.Errorf("board title must be 1-%d characters", maxTitleLen)
	}
	if b.VotesPerUser < 0 {
		return fmt.Errorf("votesPerUser must be >= 0, got %d", b.VotesPerUser)
	}
	if b.TimerLength < 0 {
		return fmt.Errorf("timerLength must be >= 0, got %d", b.TimerLength)
	}
	return nil
}

// Validate checks the Column's field values.
func (c *Column) Validate() error {
	if c.Board == 0 {
		return fmt.Errorf("column must belong to a board")
	}
	if c.Title == "" {
		return fmt.Errorf("column title cannot be empty")
	}
	if c.Position < 0 {
		return fmt.Errorf("column position must be >= 0, got %d", c.Position)
	}
	return nil
}

// Validate checks the Card's field values.
func (c *Card) Validate() error {
	if c.Column == 0 {
		return fmt.Errorf("card must belong to a column")
	}
	if c.Position < 1 {
		return fmt.Errorf("card position must be >= 1, got %d", c.Position)
	}
	return nil
}

// TimerLeftAt reports the whole seconds remaining on the board timer at t.
// Returns 0 when the timer never started or has expired.
func (b *Board) TimerLeftAt(t time.Time) int {
	if b.TimerStartMs == 0 {
		return 0
	}
	elapsed := int(t.UnixMilli()-b.TimerStartMs) / 1000
	left := b.TimerLength - elapsed
	if left < 0 {
		return 0
	}
	return left
}
