package model

import "time"

// Role names stored in users.role.
const (
    RoleCoordinator = "COORDINATOR" // manages rooms, rosters and charts
    RoleViewer      = "VIEWER"      // may read charts only
)

// User represents an application user record as stored in the
// `users` table.  Handlers define their own response types; this
// struct is used by the repository layer.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – COORDINATOR or VIEWER.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}
