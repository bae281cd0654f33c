package domain

import "time"

type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeManager  UserType = "manager"
)

type User struct {
	ID        uint
	Type      UserType
	CreatedAt time.Time
}
