package board

import (
	"context"
	"log"
	"sync"
)

// Engine executes board arrangement operations: it loads the affected
// columns, computes the new slot arrangement in memory, persists the minimal
// set of card writes, and returns the event the caller broadcasts.
//
// Every operation is a one-shot transaction: independent reads run
// concurrently and are jointly awaited before any in-memory mutation, and the
// resulting mutation jobs run concurrently and are jointly awaited before the
// event is returned. There is no locking and no optimistic versioning; two
// concurrent operations on the same column can interleave and lose an update.
// The narrow write set computed by reconcile is the only mitigation.
type Engine struct {
	store   *Client
	colsets []Colset
}

// Colset is a column-set preset applied when creating a board.
type Colset struct {
	ID      int
	Name    string
	Columns []string
}

// NewEngine creates an engine over the given store. The colsets seed new
// boards' working columns; when empty, a single default retro set is used.
func NewEngine(store *Client, colsets []Colset) *Engine {
	if len(colsets) == 0 {
		colsets = []Colset{{
			ID:      1,
			Name:    "Retrospective",
			Columns: []string{"Went Well", "To Improve", "Action Items"},
		}}
	}
	return &Engine{store: store, colsets: colsets}
}

// Colsets returns the configured column-set presets.
func (e *Engine) Colsets() []Colset {
	return e.colsets
}

// parallel runs the given functions concurrently and waits for all of them,
// returning the first error observed.
func parallel(fns ...func() error) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(fns))

	for _, fn := range fns {
		wg.Add(1)
		go func(fn func() error) {
			defer wg.Done()
			if err := fn(); err != nil {
				errCh <- err
			}
		}(fn)
	}

	wg.Wait()
	close(errCh)

	return <-errCh
}

// MoveCardRequest asks to move one card to a destination column and slot
// position. DestPosition is 1-based; slot count + 1 appends a trailing slot.
type MoveCardRequest struct {
	Board        int64 `json:"boardId"`
	Card         int64 `json:"cardId"`
	DestColumn   int64 `json:"destColumnId"`
	DestPosition int   `json:"destPosition"`
}

// MoveCard moves a single card within or across columns. An empty card
// dropped on the Trash column is vaporized: deleted outright, with a
// card_vaporize event instead of the move event.
func (e *Engine) MoveCard(ctx context.Context, req MoveCardRequest) (*Event, error) {
	var (
		card       *Card
		destColumn *Column
		destStack  []*Card
	)

	err := parallel(
		func() (err error) {
			card, err = e.store.GetCard(ctx, req.Card)
			if IsNotFound(err) {
				return notFoundf("card %d", req.Card)
			}
			return err
		},
		func() (err error) {
			destColumn, err = e.boardColumn(ctx, req.Board, req.DestColumn)
			return err
		},
		func() (err error) {
			destStack, err = e.store.ColumnStack(ctx, req.DestColumn)
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	crossColumn := card.Column != req.DestColumn

	var sourceStack []*Card
	if crossColumn {
		err := parallel(
			func() error {
				_, err := e.boardColumn(ctx, req.Board, card.Column)
				return err
			},
			func() (err error) {
				sourceStack, err = e.store.ColumnStack(ctx, card.Column)
				return err
			},
		)
		if err != nil {
			return nil, err
		}
	}

	destSlots := GroupSlots(destStack)
	if req.DestPosition < 1 || req.DestPosition > len(destSlots)+1 {
		return nil, badRequestf("destPosition %d outside [1, %d]", req.DestPosition, len(destSlots)+1)
	}

	// Vaporize: an empty placeholder headed for the Trash column is deleted,
	// not repositioned.
	if card.Content == "" && destColumn.Position == 0 {
		return e.vaporize(ctx, req.Board, card, crossColumn, sourceStack, destStack)
	}

	if !crossColumn {
		orig := Identifiers(destSlots)
		slots, moved, err := ExtractCard(destSlots, card.ID)
		if err != nil {
			return nil, err
		}
		slots = insertSlot(slots, req.DestPosition-1, Slot{moved})

		if err := e.run(ctx, reconcile(slots, orig)); err != nil {
			return nil, err
		}

		return &Event{
			Kind:    EventMoveCards,
			Board:   req.Board,
			Columns: map[int64][][]int64{req.DestColumn: Identifiers(slots)},
		}, nil
	}

	sourceColumnID := card.Column
	sourceSlots := GroupSlots(sourceStack)
	origSource := Identifiers(sourceSlots)
	origDest := Identifiers(destSlots)

	sourceSlots, moved, err := ExtractCard(sourceSlots, card.ID)
	if err != nil {
		return nil, err
	}
	moved.Column = req.DestColumn
	destSlots = insertSlot(destSlots, req.DestPosition-1, Slot{moved})

	jobs := reconcile(sourceSlots, origSource)
	jobs = append(jobs, reconcile(destSlots, origDest)...)
	if err := e.run(ctx, jobs); err != nil {
		return nil, err
	}

	return &Event{
		Kind:  EventMoveCards,
		Board: req.Board,
		Columns: map[int64][][]int64{
			req.DestColumn: Identifiers(destSlots),
			sourceColumnID: Identifiers(sourceSlots),
		},
	}, nil
}

// vaporize deletes an empty card dropped on Trash: the card is spliced out of
// its source arrangement, a delete job replaces its save job, and the source
// stack is reconciled.
func (e *Engine) vaporize(ctx context.Context, boardID int64, card *Card, crossColumn bool, sourceStack, destStack []*Card) (*Event, error) {
	log.Printf("[Engine] vaporizing card %d", card.ID)

	stack := destStack
	if crossColumn {
		stack = sourceStack
	}

	slots := GroupSlots(stack)
	orig := Identifiers(slots)
	slots, doomed, err := ExtractCard(slots, card.ID)
	if err != nil {
		return nil, err
	}

	jobs := reconcile(slots, orig)
	jobs = append(jobs, mutation{card: doomed, delete: true})
	if err := e.run(ctx, jobs); err != nil {
		return nil, err
	}

	return &Event{
		Kind:   EventVaporize,
		Board:  boardID,
		CardID: doomed.ID,
	}, nil
}

// MovePileRequest asks to move the whole slot (pile, possibly of one card) at
// SourcePosition to DestPosition in the destination column.
type MovePileRequest struct {
	Board          int64 `json:"boardId"`
	SourceColumn   int64 `json:"sourceColumnId"`
	SourcePosition int   `json:"sourcePosition"`
	DestColumn     int64 `json:"destColumnId"`
	DestPosition   int   `json:"destPosition"`
}

// MovePile moves an entire slot within or across columns, keeping its cards
// stacked together.
func (e *Engine) MovePile(ctx context.Context, req MovePileRequest) (*Event, error) {
	crossColumn := req.SourceColumn != req.DestColumn

	var (
		sourceStack []*Card
		destStack   []*Card
	)

	loads := []func() error{
		func() error {
			_, err := e.boardColumn(ctx, req.Board, req.SourceColumn)
			return err
		},
		func() (err error) {
			sourceStack, err = e.store.ColumnStack(ctx, req.SourceColumn)
			return err
		},
	}
	if crossColumn {
		loads = append(loads,
			func() error {
				_, err := e.boardColumn(ctx, req.Board, req.DestColumn)
				return err
			},
			func() (err error) {
				destStack, err = e.store.ColumnStack(ctx, req.DestColumn)
				return err
			},
		)
	}
	if err := parallel(loads...); err != nil {
		return nil, err
	}

	sourceSlots := GroupSlots(sourceStack)
	var destSlots []Slot
	destCount := len(sourceSlots)
	if crossColumn {
		destSlots = GroupSlots(destStack)
		destCount = len(destSlots)
	}

	if req.SourcePosition < 1 || req.SourcePosition > len(sourceSlots) {
		return nil, badRequestf("sourcePosition %d outside [1, %d]", req.SourcePosition, len(sourceSlots))
	}
	if req.DestPosition < 1 || req.DestPosition > destCount+1 {
		return nil, badRequestf("destPosition %d outside [1, %d]", req.DestPosition, destCount+1)
	}

	origSource := Identifiers(sourceSlots)
	var origDest [][]int64
	if crossColumn {
		origDest = Identifiers(destSlots)
	}

	sourceSlots, pile := removeSlot(sourceSlots, req.SourcePosition-1)

	for _, card := range pile {
		card.Column = req.DestColumn
		card.Position = req.DestPosition
	}

	// Removing the source slot shifts everything after it up by one, so a
	// same-arrangement move to a later index lands one short of the request.
	extra := 0
	if !crossColumn && req.SourcePosition < req.DestPosition {
		extra = 1
	}

	if crossColumn {
		destSlots = insertSlot(destSlots, req.DestPosition-1, pile)
	} else {
		sourceSlots = insertSlot(sourceSlots, req.DestPosition-1-extra, pile)
	}

	jobs := reconcile(sourceSlots, origSource)
	if crossColumn {
		jobs = append(jobs, reconcile(destSlots, origDest)...)
	}
	if err := e.run(ctx, jobs); err != nil {
		return nil, err
	}

	columns := map[int64][][]int64{req.SourceColumn: Identifiers(sourceSlots)}
	if crossColumn {
		columns[req.DestColumn] = Identifiers(destSlots)
	}

	return &Event{
		Kind:    EventMoveCards,
		Board:   req.Board,
		Columns: columns,
	}, nil
}

// CombineCardsRequest asks to drop the source card onto the destination card,
// forming or extending a pile with the source on top.
type CombineCardsRequest struct {
	Board      int64 `json:"boardId"`
	SourceCard int64 `json:"sourceCardId"`
	DestCard   int64 `json:"destCardId"`
}

// CombineCards moves the source card into the destination card's slot and
// flags it top of pile, clearing the flag on every other occupant.
func (e *Engine) CombineCards(ctx context.Context, req CombineCardsRequest) (*Event, error) {
	if req.SourceCard == req.DestCard {
		return nil, badRequestf("cannot combine a card with itself")
	}
	if req.SourceCard == 0 || req.DestCard == 0 {
		return nil, badRequestf("sourceCardId and destCardId are required")
	}

	var source, dest *Card
	err := parallel(
		func() error {
			_, err := e.store.GetBoard(ctx, req.Board)
			if IsNotFound(err) {
				return notFoundf("board %d", req.Board)
			}
			return err
		},
		func() (err error) {
			source, err = e.store.GetCard(ctx, req.SourceCard)
			if IsNotFound(err) {
				return notFoundf("card %d", req.SourceCard)
			}
			return err
		},
		func() (err error) {
			dest, err = e.store.GetCard(ctx, req.DestCard)
			if IsNotFound(err) {
				return notFoundf("card %d", req.DestCard)
			}
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	var (
		sourceStack []*Card
		destPile    []*Card
	)
	err = parallel(
		func() error {
			_, err := e.store.GetColumn(ctx, source.Column)
			if IsNotFound(err) {
				return notFoundf("column %d", source.Column)
			}
			return err
		},
		func() error {
			_, err := e.store.GetColumn(ctx, dest.Column)
			if IsNotFound(err) {
				return notFoundf("column %d", dest.Column)
			}
			return err
		},
		func() (err error) {
			sourceStack, err = e.store.ColumnStack(ctx, source.Column)
			return err
		},
		func() (err error) {
			destPile, err = e.store.CardsAt(ctx, dest.Column, dest.Position)
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	sourceColumnID := source.Column
	sourcePosition := source.Position

	sourceSlots := GroupSlots(sourceStack)
	origSource := Identifiers(sourceSlots)

	if sourcePosition < 1 || sourcePosition > len(sourceSlots) {
		return nil, inconsistencyf("card %d claims position %d of %d slots", source.ID, sourcePosition, len(sourceSlots))
	}
	sourceIsFromPile := len(sourceSlots[sourcePosition-1]) > 1

	sourceSlots, moved, err := ExtractCard(sourceSlots, source.ID)
	if err != nil {
		return nil, err
	}

	var jobs []mutation
	seen := make(map[int64]bool)
	addJob := func(m mutation) {
		if !seen[m.card.ID] {
			seen[m.card.ID] = true
			jobs = append(jobs, m)
		}
	}
	for _, m := range reconcile(sourceSlots, origSource) {
		addJob(m)
	}

	// Joining a higher card onto a lower one in the same column: once the
	// source's emptied slot collapses, the destination sits one slot earlier
	// than requested.
	destPos := dest.Position
	if sourceColumnID == dest.Column && sourcePosition < dest.Position && !sourceIsFromPile {
		destPos--
	}

	moved.Column = dest.Column
	moved.Position = destPos
	moved.TopOfPile = true
	addJob(mutation{card: moved})

	if sourceColumnID == dest.Column {
		// The destination slot lives in the reconciled source arrangement;
		// clear flags on those records so the renumbered positions persist,
		// then reinsert the source so the broadcast map reflects the new
		// pile membership.
		idx := destPos - 1
		if idx < 0 || idx >= len(sourceSlots) {
			return nil, inconsistencyf("destination slot %d outside reconciled arrangement of %d slots", idx, len(sourceSlots))
		}
		for _, c := range sourceSlots[idx] {
			if c.TopOfPile && c.ID != moved.ID {
				c.TopOfPile = false
				addJob(mutation{card: c})
			}
		}
		sourceSlots[idx] = append(sourceSlots[idx], moved)
	} else {
		for _, c := range destPile {
			if c.TopOfPile && c.ID != moved.ID {
				c.TopOfPile = false
				addJob(mutation{card: c})
			}
		}
	}

	if err := e.run(ctx, jobs); err != nil {
		return nil, err
	}

	return &Event{
		Kind:         EventCombineCards,
		Board:        req.Board,
		Card:         moved,
		SourceMap:    Identifiers(sourceSlots),
		SourceColumn: sourceColumnID,
	}, nil
}

// CombinePilesRequest asks to drop the whole pile at SourcePosition onto the
// destination card's slot.
type CombinePilesRequest struct {
	Board          int64 `json:"boardId"`
	SourceColumn   int64 `json:"sourceColumnId"`
	SourcePosition int   `json:"sourcePosition"`
	DestCard       int64 `json:"destCardId"`
}

// CombinePiles merges an entire slot into the destination card's slot. The
// moving cards keep their own top-of-pile flags; pre-existing occupants of
// the destination slot lose theirs.
func (e *Engine) CombinePiles(ctx context.Context, req CombinePilesRequest) (*Event, error) {
	var (
		dest        *Card
		sourceStack []*Card
	)
	err := parallel(
		func() (err error) {
			dest, err = e.store.GetCard(ctx, req.DestCard)
			if IsNotFound(err) {
				return notFoundf("card %d", req.DestCard)
			}
			return err
		},
		func() (err error) {
			sourceStack, err = e.store.ColumnStack(ctx, req.SourceColumn)
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	sameColumn := req.SourceColumn == dest.Column

	// Same column: the destination view shares the source's card records so
	// the two in-memory arrangements cannot diverge on field state.
	var destSlots []Slot
	if sameColumn {
		destSlots = GroupSlots(sourceStack)
	} else {
		destStack, err := e.store.ColumnStack(ctx, dest.Column)
		if err != nil {
			return nil, err
		}
		destSlots = GroupSlots(destStack)
	}

	sourceSlots := GroupSlots(sourceStack)
	origSource := Identifiers(sourceSlots)

	if req.SourcePosition < 1 || req.SourcePosition > len(sourceSlots) {
		return nil, badRequestf("sourcePosition %d outside [1, %d]", req.SourcePosition, len(sourceSlots))
	}

	sourceSlots, pile := removeSlot(sourceSlots, req.SourcePosition-1)

	var jobs []mutation
	seen := make(map[int64]bool)
	addJob := func(m mutation) {
		if !seen[m.card.ID] {
			seen[m.card.ID] = true
			jobs = append(jobs, m)
		}
	}
	for _, m := range reconcile(sourceSlots, origSource) {
		addJob(m)
	}

	destPos := dest.Position
	if sameColumn && req.SourcePosition < dest.Position {
		destPos--
	}

	if sameColumn {
		destSlots, _ = removeSlot(destSlots, req.SourcePosition-1)
	}

	for _, c := range pile {
		c.Column = dest.Column
		c.Position = destPos
		addJob(mutation{card: c})
	}

	idx := destPos - 1
	if idx < 0 || idx >= len(destSlots) {
		return nil, inconsistencyf("destination slot %d outside arrangement of %d slots", idx, len(destSlots))
	}
	for _, c := range destSlots[idx] {
		if c.TopOfPile {
			c.TopOfPile = false
			addJob(mutation{card: c})
		}
	}
	destSlots[idx] = append(destSlots[idx], pile...)

	if err := e.run(ctx, jobs); err != nil {
		return nil, err
	}

	columns := map[int64][][]int64{dest.Column: Identifiers(destSlots)}
	if !sameColumn {
		columns[req.SourceColumn] = Identifiers(sourceSlots)
	}

	return &Event{
		Kind:    EventMoveCards,
		Board:   req.Board,
		Columns: columns,
	}, nil
}

// CardFlipRequest asks to put a different card on top of the pile at
// (Column, Position).
type CardFlipRequest struct {
	Board    int64 `json:"boardId"`
	Card     int64 `json:"cardId"`
	Column   int64 `json:"columnId"`
	Position int   `json:"position"`
}

// CardFlip reveals the requested card on top of its pile: the current
// top-of-pile loses its flag, the requested card gains it. Both flips are
// independent writes; in the common case at most one other card changes.
func (e *Engine) CardFlip(ctx context.Context, req CardFlipRequest) (*Event, error) {
	cards, err := e.store.CardsAt(ctx, req.Column, req.Position)
	if err != nil {
		return nil, err
	}

	var jobs []mutation
	for _, card := range cards {
		if card.TopOfPile && card.ID != req.Card {
			card.TopOfPile = false
			jobs = append(jobs, mutation{card: card})
		} else if !card.TopOfPile && card.ID == req.Card {
			card.TopOfPile = true
			jobs = append(jobs, mutation{card: card})
		}
	}

	if err := e.run(ctx, jobs); err != nil {
		return nil, err
	}

	return &Event{
		Kind:   EventFlipCard,
		Board:  req.Board,
		CardID: req.Card,
	}, nil
}

// boardColumn loads a column and verifies it belongs to the board.
func (e *Engine) boardColumn(ctx context.Context, boardID, columnID int64) (*Column, error) {
	col, err := e.store.GetColumn(ctx, columnID)
	if IsNotFound(err) {
		return nil, notFoundf("column %d", columnID)
	}
	if err != nil {
		return nil, err
	}
	if col.Board != boardID {
		return nil, notFoundf("column %d not on board %d", columnID, boardID)
	}
	return col, nil
}
