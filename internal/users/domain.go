package users

import "time"

// User is a registrant of the mobile app. A nil PasswordHash means the account is
// still awaiting admin verification.
type User struct {
	ID           int64
	Name         string
	Email        string
	Mobile       string
	PasswordHash *string
	DocumentPath *string
	IsAdmin      bool
	Revision     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Verified reports whether a password has been assigned.
func (u User) Verified() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// NewUser carries the fields persisted at registration.
type NewUser struct {
	Name         string
	Email        string
	Mobile       string
	DocumentPath *string
}

// ProfileUpdate overwrites a user's own fields. PasswordHash nil keeps the stored hash.
type ProfileUpdate struct {
	Email        string
	Name         string
	Mobile       string
	PasswordHash *string
}

// UpdateResult reports whether a profile update matched a record.
type UpdateResult struct {
	Matched bool
}

// View is the client facing representation of a User. It never carries the hash.
type View struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Mobile       string  `json:"mobile"`
	DocumentPath *string `json:"documentPath,omitempty"`
	IsAdmin      bool    `json:"isadmin"`
	Verified     bool    `json:"verified"`
}

// ToView maps the record to its public representation.
func (u User) ToView() View {
	return View{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Mobile:       u.Mobile,
		DocumentPath: u.DocumentPath,
		IsAdmin:      u.IsAdmin,
		Verified:     u.Verified(),
	}
}
