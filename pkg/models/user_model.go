package models

// UserCredential is the stored login record. HashedPassword never leaves the service layer.
type UserCredential struct {
	Name           string
	HashedPassword string
	Disabled       bool
}

// User is the public view of a credential record.
type User struct {
	Name     string `json:"name"`
	Disabled bool   `json:"disabled"`
}

func (u UserCredential) Public() User {
	return User{Name: u.Name, Disabled: u.Disabled}
}
