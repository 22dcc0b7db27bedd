package models

// Versioned is implemented by every persisted entity that carries an
// optimistic-lock version column. The version is a compare-token owned by the
// store: 0 after insert, incremented by exactly 1 on every successful update.
// Services never mutate it directly.
type Versioned interface {
	EntityID() int64
	EntityVersion() int64
}
