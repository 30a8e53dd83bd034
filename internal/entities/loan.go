package entities

import "time"

// Loan is a lending record. At most one loan per (UserID, VolumeID) has a nil ReturnedAt;
// once ReturnedAt is set the row is never modified again.
type Loan struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	VolumeID     uint       `gorm:"index;not null" json:"volume_id"`
	BorrowerName string     `gorm:"size:255;not null" json:"borrower_name"`
	LoanedAt     time.Time  `gorm:"not null" json:"loaned_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	Notes        string     `gorm:"type:text" json:"notes,omitempty"`
	Volume       *Volume    `gorm:"foreignKey:VolumeID" json:"volume,omitempty"`
}

// Active reports whether the volume is still out.
func (l Loan) Active() bool {
	return l.ReturnedAt == nil
}
