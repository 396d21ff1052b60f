package domain

import (
	"time"
)

// AnonymousUserID is the owner sentinel used for learning paths created
// without an authenticated user.
const AnonymousUserID = "anonymous"

// User represents a registered learner.
type User struct {
	ID           string     `bson:"_id" json:"id"`
	Username     string     `bson:"username" json:"username"` // Unique
	Email        string     `bson:"email" json:"email"`       // Unique
	PasswordHash string     `bson:"passwordHash" json:"-"`    // Never expose via JSON
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	LastLogin    *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
}
