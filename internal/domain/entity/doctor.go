package entity

import "time"

// Doctor is referenced by id from services and appointments.
type Doctor struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Email          string    `gorm:"type:varchar(255);index" json:"email"`
	Phone          string    `gorm:"type:varchar(50)" json:"phone"`
	Specialization string    `gorm:"type:varchar(100);index" json:"specialization"`
	LicenseNumber  string    `gorm:"type:varchar(50)" json:"license_number"`
	Availability   JSON      `gorm:"type:jsonb" json:"availability"`
	IsAvailable    bool      `gorm:"not null" json:"is_available"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}
