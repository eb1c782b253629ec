package models

import "time"

// User represents a user account.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Location       string    `json:"location,omitempty"`
	Currency       string    `json:"currency"`
	Language       string    `json:"language"`
	Notifications  bool      `json:"notifications"`
	Settings       Settings  `json:"settings"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Settings are the per-user display and notification preferences.
type Settings struct {
	Theme         string               `json:"theme"`
	Currency      string               `json:"currency"`
	Language      string               `json:"language"`
	Notifications NotificationSettings `json:"notifications"`
	Display       DisplaySettings      `json:"display"`
}

type NotificationSettings struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

type DisplaySettings struct {
	DateFormat string `json:"dateFormat"`
	TimeFormat string `json:"timeFormat"`
}

// DefaultSettings returns the settings a new account starts with.
func DefaultSettings() Settings {
	return Settings{
		Theme:    "light",
		Currency: "USD",
		Language: "en",
		Notifications: NotificationSettings{
			Email: true,
			Push:  true,
		},
		Display: DisplaySettings{
			DateFormat: "MM/DD/YYYY",
			TimeFormat: "12h",
		},
	}
}

// NewUser holds the fields needed to create an account.
type NewUser struct {
	Name           string
	Email          string
	PasswordHash   string
	ProfilePicture string
}

// ProfileUpdate holds client-editable profile fields. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Name          *string
	Email         *string
	Phone         *string
	Location      *string
	Currency      *string
	Language      *string
	Notifications *bool
}

// PublicUser is the subset of a user returned by the auth endpoints.
type PublicUser struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Public projects u onto the fields safe to hand to a client.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
