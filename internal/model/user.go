package model

import "time"

// User represents an account record as stored in the `users` table.
// The json tags are omitted here because these structs are used by the
// repository layer; handlers define separate response contracts that
// never expose PasswordHash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// UserPatch carries a partial update. Nil fields keep their stored value.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string // plain text; hashed by the repository
}
