package models

import (
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleVet   Role = "vet"
)

type User struct {
	Base
	FirstName      string `json:"first_name" gorm:"size:255;not null"`
	LastName       string `json:"last_name" gorm:"size:255;not null"`
	Email          string `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Phone          string `json:"phone" gorm:"size:15"`
	Password       []byte `json:"-" gorm:"not null"`
	Role           Role   `json:"role" gorm:"size:16;not null"`
	Specialization string `json:"specialization" gorm:"size:255"`
}

func (user *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	user.Password = hashedPassword
	return nil
}

func (user *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(user.Password, []byte(password))
}

func (user *User) Name() string {
	return user.FirstName + " " + user.LastName
}

// Actor is the authenticated caller every core operation acts on behalf of.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
