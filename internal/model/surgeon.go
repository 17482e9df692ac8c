package model

// Surgeon is reference data for the scheduling UI; cases store the surgeon's
// display name.
type Surgeon struct {
	ID   string `gorm:"primaryKey;size:32" json:"id"`
	Name string `gorm:"uniqueIndex;size:128;not null" json:"name"`
}
