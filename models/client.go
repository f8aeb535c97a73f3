package models

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Client struct {
	Base
	Name             string `json:"name" gorm:"size:255;not null"`
	Gender           Gender `json:"gender" gorm:"size:16;not null"`
	PhoneNumber      string `json:"phone_number" gorm:"size:15;uniqueIndex;not null"`
	OtherContactInfo string `json:"other_contact_info" gorm:"size:255"`
}
