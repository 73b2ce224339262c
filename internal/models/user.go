package models

import "time"

// User is the full account record. HashedPassword and PrivateKey never leave
// the service except for PrivateKey on a successful login.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	PublicKey      string    `db:"public_key" json:"public_key"`
	PrivateKey     string    `db:"private_key" json:"-"`
	Avatar         string    `db:"avatar" json:"avatar"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Bio            string    `db:"bio" json:"bio"`
	IsOnline       bool      `db:"is_online" json:"is_online"`
	LastSeen       time.Time `db:"last_seen" json:"last_seen"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// PublicUser is the projection of a user exposed to other users.
type PublicUser struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Avatar    string    `db:"avatar" json:"avatar"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Bio       string    `db:"bio" json:"bio"`
	IsOnline  bool      `db:"is_online" json:"is_online"`
	LastSeen  time.Time `db:"last_seen" json:"last_seen"`
	PublicKey string    `db:"public_key" json:"public_key"`
}

// Public projects the exposable fields of a user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Avatar:    u.Avatar,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		IsOnline:  u.IsOnline,
		LastSeen:  u.LastSeen,
		PublicKey: u.PublicKey,
	}
}

// ProfileUpdate carries a partial profile change. Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Avatar    *string `json:"avatar"`
}

// Empty reports whether the update carries no fields at all.
func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Bio == nil && p.Avatar == nil
}
