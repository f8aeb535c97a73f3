package models

import "time"

// Pet belongs to a Client.
type Pet struct {
	Base
	Name           string    `json:"name" gorm:"size:255;not null"`
	Gender         Gender    `json:"gender" gorm:"size:16;not null"`
	DOB            time.Time `json:"dob"`
	Species        string    `json:"species" gorm:"size:100"`
	Breed          string    `json:"breed" gorm:"size:100"`
	WeightKg       float64   `json:"weight" gorm:"column:weight;type:numeric(5,2)"`
	Color          string    `json:"color" gorm:"size:50"`
	MedicalHistory string    `json:"medical_history"`
	ClientID       string    `json:"client_id" gorm:"size:36;not null;index"`
}
