package models

import "time"

// ThemeMode values accepted for a room.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Room represents an ephemeral password-protected chat room. Rooms live
// for 24 hours from creation and are purged once expired.
type Room struct {
	ID                  string    `db:"id" json:"id"`
	PasswordHash        string    `db:"password_hash" json:"-"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	ExpiresAt           time.Time `db:"expires_at" json:"expires_at"`
	ThemeMode           string    `db:"theme_mode" json:"theme_mode"`
	MaxParticipants     *int      `db:"max_participants" json:"max_participants,omitempty"`
	CurrentParticipants int       `db:"current_participants" json:"current_participants"`
	EncryptionEnabled   bool      `db:"encryption_enabled" json:"encryption_enabled"`
}

// ValidTheme reports whether mode is one of the supported theme modes.
func ValidTheme(mode string) bool {
	return mode == ThemeDark || mode == ThemeLight
}
