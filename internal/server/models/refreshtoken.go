package models

import "time"

// RefreshToken is an opaque rotating credential exchanged for new access
// tokens.
type RefreshToken struct {
	Token   string
	UserID  string
	Expires time.Time
}
