package board

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Client provides namespace-scoped Redis operations for boards, columns,
// cards and votes, plus the board event channels. It is safe for concurrent
// use from multiple goroutines.
//
// Entities live in hashes; set indexes track membership (all boards, a
// board's columns, a column's cards) so filtered loads never scan the
// keyspace. Identifiers come from per-entity INCR sequences.
type Client struct {
	rdb       *redis.Client
	namespace string
}

// NewClient creates a store client for the given namespace.
// Returns an error if the namespace is empty.
func NewClient(redisOpts *redis.Options, namespace string) (*Client, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &Client{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// nextID allocates the next identifier for one entity kind.
func (c *Client) nextID(ctx context.Context, kind string) (int64, error) {
	id, err := c.rdb.Incr(ctx, SeqKey(c.namespace, kind)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", kind, err)
	}
	return id, nil
}

// CreateBoard assigns the board a fresh id and writes it.
func (c *Client) CreateBoard(ctx context.Context, b *Board) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}

	id, err := c.nextID(ctx, "board")
	if err != nil {
		return err
	}
	b.ID = id

	if err := c.rdb.HSet(ctx, BoardKey(c.namespace, b.ID), boardToHash(b)).Err(); err != nil {
		return fmt.Errorf("failed to write board: %w", err)
	}
	if err := c.rdb.SAdd(ctx, BoardsKey(c.namespace), b.ID).Err(); err != nil {
		return fmt.Errorf("failed to index board: %w", err)
	}

	return nil
}

// GetBoard retrieves a board by id.
// Returns (nil, redis.Nil) if the board doesn't exist; check with IsNotFound.
func (c *Client) GetBoard(ctx context.Context, boardID int64) (*Board, error) {
	hash, err := c.rdb.HGetAll(ctx, BoardKey(c.namespace, boardID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read board: %w", err)
	}
	if len(hash) == 0 {
		return nil, redis.Nil
	}

	b, err := hashToBoard(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize board %d: %w", boardID, err)
	}
	return b, nil
}

// SaveBoard persists the full current field state of a board.
func (c *Client) SaveBoard(ctx context.Context, b *Board) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}
	if err := c.rdb.HSet(ctx, BoardKey(c.namespace, b.ID), boardToHash(b)).Err(); err != nil {
		return fmt.Errorf("failed to write board: %w", err)
	}
	return nil
}

// Boards lists all boards, ordered by id.
func (c *Client) Boards(ctx context.Context) ([]*Board, error) {
	ids, err := c.rdb.SMembers(ctx, BoardsKey(c.namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}

	boards := make([]*Board, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt board index entry %q: %w", raw, err)
		}
		b, err := c.GetBoard(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue // index entry for a board deleted mid-listing
			}
			return nil, err
		}
		boards = append(boards, b)
	}

	sort.Slice(boards, func(i, j int) bool { return boards[i].ID < boards[j].ID })
	return boards, nil
}

// CreateColumn assigns the column a fresh id and writes it.
func (c *Client) CreateColumn(ctx context.Context, col *Column) error {
	if err := col.Validate(); err != nil {
		return fmt.Errorf("invalid column: %w", err)
	}

	id, err := c.nextID(ctx, "column")
	if err != nil {
		return err
	}
	col.ID = id

	if err := c.rdb.HSet(ctx, ColumnKey(c.namespace, col.ID), columnToHash(col)).Err(); err != nil {
		return fmt.Errorf("failed to write column: %w", err)
	}
	if err := c.rdb.SAdd(ctx, BoardColumnsKey(c.namespace, col.Board), col.ID).Err(); err != nil {
		return fmt.Errorf("failed to index column: %w", err)
	}

	return nil
}

// GetColumn retrieves a column by id.
// Returns (nil, redis.Nil) if the column doesn't exist.
func (c *Client) GetColumn(ctx context.Context, columnID int64) (*Column, error) {
	hash, err := c.rdb.HGetAll(ctx, ColumnKey(c.namespace, columnID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read column: %w", err)
	}
	if len(hash) == 0 {
		return nil, redis.Nil
	}

	col, err := hashToColumn(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize column %d: %w", columnID, err)
	}
	return col, nil
}

// BoardColumns lists a board's columns ordered by position (Trash first).
func (c *Client) BoardColumns(ctx context.Context, boardID int64) ([]*Column, error) {
	ids, err := c.rdb.SMembers(ctx, BoardColumnsKey(c.namespace, boardID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list board columns: %w", err)
	}

	cols := make([]*Column, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt column index entry %q: %w", raw, err)
		}
		col, err := c.GetColumn(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		cols = append(cols, col)
	}

	sort.Slice(cols, func(i, j int) bool { return cols[i].Position < cols[j].Position })
	return cols, nil
}

// CreateCard assigns the card a fresh id and writes it.
func (c *Client) CreateCard(ctx context.Context, card *Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("invalid card: %w", err)
	}

	id, err := c.nextID(ctx, "card")
	if err != nil {
		return err
	}
	card.ID = id

	if err := c.rdb.HSet(ctx, CardKey(c.namespace, card.ID), cardToHash(card)).Err(); err != nil {
		return fmt.Errorf("failed to write card: %w", err)
	}
	if err := c.rdb.SAdd(ctx, ColumnCardsKey(c.namespace, card.Column), card.ID).Err(); err != nil {
		return fmt.Errorf("failed to index card: %w", err)
	}

	return nil
}

// GetCard retrieves a card by id.
// Returns (nil, redis.Nil) if the card doesn't exist.
func (c *Client) GetCard(ctx context.Context, cardID int64) (*Card, error) {
	hash, err := c.rdb.HGetAll(ctx, CardKey(c.namespace, cardID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read card: %w", err)
	}
	if len(hash) == 0 {
		return nil, redis.Nil
	}

	card, err := hashToCard(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize card %d: %w", cardID, err)
	}
	return card, nil
}

// SaveCard persists the full current field state of a card. When the card has
// changed columns since it was last written, its index membership moves too.
func (c *Client) SaveCard(ctx context.Context, card *Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("invalid card: %w", err)
	}

	prevColumn, err := c.rdb.HGet(ctx, CardKey(c.namespace, card.ID), "column").Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read card column: %w", err)
	}

	if err := c.rdb.HSet(ctx, CardKey(c.namespace, card.ID), cardToHash(card)).Err(); err != nil {
		return fmt.Errorf("failed to write card: %w", err)
	}

	if prevColumn != "" && prevColumn != strconv.FormatInt(card.Column, 10) {
		prev, perr := strconv.ParseInt(prevColumn, 10, 64)
		if perr != nil {
			return fmt.Errorf("corrupt column field on card %d: %w", card.ID, perr)
		}
		if err := c.rdb.SMove(ctx, ColumnCardsKey(c.namespace, prev),
			ColumnCardsKey(c.namespace, card.Column), card.ID).Err(); err != nil {
			return fmt.Errorf("failed to move card index: %w", err)
		}
	}

	return nil
}

// DeleteCard removes a card, its votes, and its index membership.
func (c *Client) DeleteCard(ctx context.Context, cardID, columnID int64) error {
	if err := c.rdb.SRem(ctx, ColumnCardsKey(c.namespace, columnID), cardID).Err(); err != nil {
		return fmt.Errorf("failed to unindex card: %w", err)
	}
	if err := c.rdb.Del(ctx,
		CardKey(c.namespace, cardID),
		CardVotesKey(c.namespace, cardID)).Err(); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

// ColumnStack loads all cards of one column ordered by position ascending.
// Cards sharing a position (a pile) are ordered by id ascending so repeated
// loads observe the same intra-slot order.
func (c *Client) ColumnStack(ctx context.Context, columnID int64) ([]*Card, error) {
	cards, err := c.columnCards(ctx, columnID)
	if err != nil {
		return nil, err
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Position != cards[j].Position {
			return cards[i].Position < cards[j].Position
		}
		return cards[i].ID < cards[j].ID
	})
	return cards, nil
}

// CardsAt loads the cards at one (column, position) coordinate — a pile, or a
// single card. Ordered by id descending, the display convention for piles.
func (c *Client) CardsAt(ctx context.Context, columnID int64, position int) ([]*Card, error) {
	cards, err := c.columnCards(ctx, columnID)
	if err != nil {
		return nil, err
	}

	at := cards[:0]
	for _, card := range cards {
		if card.Position == position {
			at = append(at, card)
		}
	}
	sort.Slice(at, func(i, j int) bool { return at[i].ID > at[j].ID })
	return at, nil
}

func (c *Client) columnCards(ctx context.Context, columnID int64) ([]*Card, error) {
	ids, err := c.rdb.SMembers(ctx, ColumnCardsKey(c.namespace, columnID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list column cards: %w", err)
	}

	cards := make([]*Card, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt card index entry %q: %w", raw, err)
		}
		card, err := c.GetCard(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue // deleted between SMEMBERS and HGETALL
			}
			return nil, err
		}
		cards = append(cards, card)
	}

	return cards, nil
}

// AddVote records one vote from user on card. When the board caps votes per
// user, callers check the allowance first via UserVoteCount.
func (c *Client) AddVote(ctx context.Context, boardID, cardID int64, user string) error {
	if user == "" {
		return fmt.Errorf("vote user cannot be empty")
	}
	if err := c.rdb.HIncrBy(ctx, CardVotesKey(c.namespace, cardID), user, 1).Err(); err != nil {
		return fmt.Errorf("failed to add vote: %w", err)
	}
	if err := c.rdb.HIncrBy(ctx, BoardUserVotesKey(c.namespace, boardID), user, 1).Err(); err != nil {
		return fmt.Errorf("failed to count vote: %w", err)
	}
	return nil
}

// RemoveVote takes back one of user's votes on card. Removing a vote the user
// doesn't hold is a no-op.
func (c *Client) RemoveVote(ctx context.Context, boardID, cardID int64, user string) error {
	held, err := c.rdb.HGet(ctx, CardVotesKey(c.namespace, cardID), user).Int()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read vote: %w", err)
	}
	if held <= 0 {
		return nil
	}

	if err := c.rdb.HIncrBy(ctx, CardVotesKey(c.namespace, cardID), user, -1).Err(); err != nil {
		return fmt.Errorf("failed to remove vote: %w", err)
	}
	if err := c.rdb.HIncrBy(ctx, BoardUserVotesKey(c.namespace, boardID), user, -1).Err(); err != nil {
		return fmt.Errorf("failed to uncount vote: %w", err)
	}
	return nil
}

// CardVotes lists the votes on one card, one Vote entry per vote held.
func (c *Client) CardVotes(ctx context.Context, cardID int64) ([]Vote, error) {
	raw, err := c.rdb.HGetAll(ctx, CardVotesKey(c.namespace, cardID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read card votes: %w", err)
	}

	users := make([]string, 0, len(raw))
	for user := range raw {
		users = append(users, user)
	}
	sort.Strings(users)

	votes := []Vote{}
	for _, user := range users {
		n, err := strconv.Atoi(raw[user])
		if err != nil {
			return nil, fmt.Errorf("corrupt vote count for %q: %w", user, err)
		}
		for i := 0; i < n; i++ {
			votes = append(votes, Vote{User: user, Card: cardID})
		}
	}
	return votes, nil
}

// UserVoteCount reports how many votes user currently holds across a board.
func (c *Client) UserVoteCount(ctx context.Context, boardID int64, user string) (int, error) {
	n, err := c.rdb.HGet(ctx, BoardUserVotesKey(c.namespace, boardID), user).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read user vote count: %w", err)
	}
	return n, nil
}
