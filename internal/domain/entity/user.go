package entity

import "fmt"

type TestUser struct {
	Kind     string
	Email    string
	Password string
}

// String leaves the password out so users can be logged directly.
func (u TestUser) String() string {
	return fmt.Sprintf("TestUser{kind=%s, email=%s}", u.Kind, u.Email)
}

type AccountType string

const (
	AccountPersonal AccountType = "personal"
	AccountWork     AccountType = "work"
)
