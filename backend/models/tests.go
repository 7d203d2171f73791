package models

import "time"

// Test is a catalog entry. Title, description and questions are not
// stored here; they live in the JSON file named by Filename.
type Test struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Filename    string    `gorm:"size:255;not null;uniqueIndex" json:"filename"`
	IsAvailable bool      `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (t *Test) Enable() {
	t.IsAvailable = true
}

func (t *Test) Disable() {
	t.IsAvailable = false
}
