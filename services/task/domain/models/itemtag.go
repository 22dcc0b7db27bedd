package models

// ItemTag is one item↔tag link. The join table has no composite key at the
// storage layer, so each row carries a synthetic id; the reconciler keeps the
// (ItemID, TagID) pairs unique and computes minimal insert/delete sets so
// unchanged links keep their row id.
type ItemTag struct {
	ID     int64
	ItemID int64
	TagID  int64
}
