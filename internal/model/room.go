package model

// Room is a canonical operating room. Cases reference rooms by display name
// only, so this table is reference data rather than an owning relation.
type Room struct {
	ID   string `gorm:"primaryKey;size:32" json:"id"`
	Name string `gorm:"uniqueIndex;size:128;not null" json:"name"`
}
