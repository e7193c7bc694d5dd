package models

// SequenceModel backs the id allocator: one row per named counter.
type SequenceModel struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null"`
}

func (SequenceModel) TableName() string { return "sequences" }
