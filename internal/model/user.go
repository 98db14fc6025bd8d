package model

type User struct {
	Base
	Email          string  `json:"email" db:"email"`
	PasswordHash   string  `json:"-" db:"password_hash"`
	Name           string  `json:"name" db:"name"`
	Phone          *string `json:"phone,omitempty" db:"phone"`
	MarketingOptIn bool    `json:"marketing_opt_in" db:"marketing_opt_in"`
}
