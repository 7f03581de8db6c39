package entity

import "time"

// Patient is a clinic patient record.
type Patient struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	Email          string     `gorm:"type:varchar(255);index" json:"email"`
	Phone          string     `gorm:"type:varchar(50)" json:"phone"`
	FiscalCode     string     `gorm:"column:fiscal_code;type:varchar(32)" json:"fiscal_code,omitempty"`
	DateOfBirth    *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Address        string     `gorm:"type:text" json:"address"`
	MedicalHistory string     `gorm:"type:text;not null;default:''" json:"medical_history"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}
