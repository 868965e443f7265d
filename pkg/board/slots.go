package board

import "fmt"

// Slot is the ordered run of cards sharing one position value within a
// column. A slot of length > 1 is a pile. Slots are derived in memory from a
// position-sorted stack and never persisted; the slice index of a slot is its
// position minus one.
type Slot []*Card

// GroupSlots partitions a position-sorted card stack into slots, so that
//
//	[{position: 1}, {position: 1}, {position: 2}]
//
// becomes
//
//	[[{position: 1}, {position: 1}], [{position: 2}]]
//
// Order within each run is preserved.
func GroupSlots(stack []*Card) []Slot {
	var buffer Slot
	var slots []Slot

	for _, card := range stack {
		if len(buffer) > 0 && card.Position != buffer[0].Position {
			slots = append(slots, buffer)
			buffer = nil
		}
		buffer = append(buffer, card)
	}

	if len(buffer) > 0 {
		slots = append(slots, buffer)
	}

	return slots
}

// ExtractCard splices the card with the given id out of the slot structure
// and returns the updated slots along with the card. A slot emptied by the
// extraction is removed entirely.
//
// A missing card wraps ErrInconsistency: in correct operation every extracted
// card was just loaded, so absence means a concurrent delete or caller defect.
func ExtractCard(slots []Slot, cardID int64) ([]Slot, *Card, error) {
	for x, slot := range slots {
		for y, card := range slot {
			if card.ID != cardID {
				continue
			}

			slots[x] = append(slot[:y:y], slot[y+1:]...)
			if len(slots[x]) == 0 {
				slots = append(slots[:x], slots[x+1:]...)
			}
			return slots, card, nil
		}
	}

	return nil, nil, fmt.Errorf("%w: card %d not in arrangement", ErrInconsistency, cardID)
}

// Identifiers maps each slot to the ordered list of its member card ids, so
//
//	[[{id: 1}, {id: 2}], [{id: 3}]]
//
// becomes
//
//	[[1, 2], [3]]
//
// This shape is both the reconcile baseline and the broadcast payload.
func Identifiers(slots []Slot) [][]int64 {
	ids := make([][]int64, len(slots))
	for i, slot := range slots {
		ids[i] = make([]int64, len(slot))
		for j, card := range slot {
			ids[i][j] = card.ID
		}
	}
	return ids
}

// insertSlot splices a slot into the arrangement at index i, shifting later
// slots down. An index past the end appends, which happens when the requested
// position trails an arrangement that just shrank by one slot.
func insertSlot(slots []Slot, i int, slot Slot) []Slot {
	if i > len(slots) {
		i = len(slots)
	}
	slots = append(slots, nil)
	copy(slots[i+1:], slots[i:])
	slots[i] = slot
	return slots
}

// removeSlot splices out and returns the slot at index i.
func removeSlot(slots []Slot, i int) ([]Slot, Slot) {
	slot := slots[i]
	return append(slots[:i:i], slots[i+1:]...), slot
}
