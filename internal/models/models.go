package models

import "time"

// DefaultProfileImage is the placeholder picture assigned at registration.
const DefaultProfileImage = "default.jpg"

// User is a registered account. Username and email carry unique indexes so
// the store itself rejects duplicates even when two registrations race past
// the handler-level checks.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:20;uniqueIndex;not null"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:60;not null"` // bcrypt, never plaintext
	ImageFile    string `gorm:"size:40;not null;default:default.jpg"`
	Posts        []Post `gorm:"foreignKey:UserID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Post is a blog entry. CreatedAt is set once at creation and never
// mutated; UserID always references an existing author.
type Post struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:100;not null"`
	Content   string `gorm:"type:text;not null"`
	UserID    uint   `gorm:"not null;index"`
	Author    User   `gorm:"foreignKey:UserID"`
	CreatedAt time.Time
}

// GetUserID implements gate.Ownable so the ownership policy can compare
// the post's author against the acting identity.
func (p *Post) GetUserID() uint { return p.UserID }
