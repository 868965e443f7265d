package board

import "fmt"

// Redis key pattern helpers
//
// All keys and Pub/Sub channels are namespaced so multiple Lucidboard
// deployments can coexist on one Redis server.
//
// Key pattern: lucid:{namespace}:{entity}:{id}
// Channel pattern: lucid:{namespace}:board:{id}:events

// BoardKey returns the Redis key for a board hash.
// Pattern: lucid:{ns}:board:{id}
func BoardKey(ns string, boardID int64) string {
	return fmt.Sprintf("lucid:%s:board:%d", ns, boardID)
}

// BoardsKey returns the Redis key for the set of all board ids.
// Pattern: lucid:{ns}:boards
func BoardsKey(ns string) string {
	return fmt.Sprintf("lucid:%s:boards", ns)
}

// BoardColumnsKey returns the Redis key for the set of a board's column ids.
// Pattern: lucid:{ns}:board:{id}:columns
func BoardColumnsKey(ns string, boardID int64) string {
	return fmt.Sprintf("lucid:%s:board:%d:columns", ns, boardID)
}

// BoardUserVotesKey returns the Redis key for the per-user vote count hash of
// one board. Used to enforce the votesPerUser allowance.
// Pattern: lucid:{ns}:board:{id}:uservotes
func BoardUserVotesKey(ns string, boardID int64) string {
	return fmt.Sprintf("lucid:%s:board:%d:uservotes", ns, boardID)
}

// ColumnKey returns the Redis key for a column hash.
// Pattern: lucid:{ns}:column:{id}
func ColumnKey(ns string, columnID int64) string {
	return fmt.Sprintf("lucid:%s:column:%d", ns, columnID)
}

// ColumnCardsKey returns the Redis key for the set of a column's card ids.
// Pattern: lucid:{ns}:column:{id}:cards
func ColumnCardsKey(ns string, columnID int64) string {
	return fmt.Sprintf("lucid:%s:column:%d:cards", ns, columnID)
}

// CardKey returns the Redis key for a card hash.
// Pattern: lucid:{ns}:card:{id}
func CardKey(ns string, cardID int64) string {
	return fmt.Sprintf("lucid:%s:card:%d", ns, cardID)
}

// CardVotesKey returns the Redis key for a card's votes hash (user -> count).
// Pattern: lucid:{ns}:card:{id}:votes
func CardVotesKey(ns string, cardID int64) string {
	return fmt.Sprintf("lucid:%s:card:%d:votes", ns, cardID)
}

// SeqKey returns the Redis key of the id sequence for one entity kind
// ("board", "column", "card").
// Pattern: lucid:{ns}:seq:{kind}
func SeqKey(ns, kind string) string {
	return fmt.Sprintf("lucid:%s:seq:%s", ns, kind)
}

// BoardEventsChannel returns the Pub/Sub channel carrying one board's change
// events. Every client viewing the board subscribes here.
// Pattern: lucid:{ns}:board:{id}:events
func BoardEventsChannel(ns string, boardID int64) string {
	return fmt.Sprintf("lucid:%s:board:%d:events", ns, boardID)
}
