package domain

import "time"

// User is a registered account. Email is the login identifier and is matched
// exactly as stored.
type User struct {
	ID           int64
	Email        string
	PasswordHash string // PHC encoded (argon2id, or legacy bcrypt)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the only view of a user that leaves the service.
type PublicUser struct {
	ID    int64
	Email string
}

// Public strips everything but id and email.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}
