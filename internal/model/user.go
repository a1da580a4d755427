package model

import "time"

// User represents an account record as stored in the `users` table.
// Attendees reserve seats on spot-limited talks; organizers manage
// rooms, time slots and the schedule. The json tags are omitted
// because these structs are used by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  Username     – unique handle; embedded in confirmation tokens.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (ATTENDEE or ORGANIZER).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
