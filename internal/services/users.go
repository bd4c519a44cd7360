package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-blog/internal/mail"
	"github.com/diewo77/go-blog/internal/models"
	"github.com/diewo77/go-blog/internal/token"
)

// Users implements registration, authentication, account updates and the
// password-reset protocol over the credential store.
type Users struct {
	db      *gorm.DB
	tokens  *token.Service
	mailer  mail.Mailer
	baseURL string
}

func NewUsers(db *gorm.DB, tokens *token.Service, mailer mail.Mailer, baseURL string) *Users {
	return &Users{db: db, tokens: tokens, mailer: mailer, baseURL: strings.TrimRight(baseURL, "/")}
}

// normalizeEmail applies the same normalization at registration and login
// so case differences never make authentication silently fail.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with a hashed password. Username and email
// must be unique; a duplicate fails the whole operation with no partial
// write (the store's unique indexes back-stop concurrent registrations).
func (s *Users) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if err := s.checkAvailable(ctx, username, email, 0); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		ImageFile:    models.DefaultProfileImage,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent registration; report which
			// field collided.
			return nil, s.duplicateField(ctx, username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Users) checkAvailable(ctx context.Context, username, email string, selfID uint) error {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	q = s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return nil
}

func (s *Users) duplicateField(ctx context.Context, username string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err == nil && count > 0 {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

// Authenticate verifies email/password and returns the matching user.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Users) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetByID loads a user or returns ErrNotFound.
func (s *Users) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// GetByUsername loads a user by username or returns ErrNotFound.
func (s *Users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// UpdateAccount changes username/email and, when imageFile is non-empty,
// the profile picture reference. Keeping the current username or email is
// allowed; taking another user's fails with the duplicate sentinel.
func (s *Users) UpdateAccount(ctx context.Context, userID uint, username, email, imageFile string) error {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.checkAvailable(ctx, username, email, userID); err != nil {
		return err
	}
	updates := map[string]any{"username": username, "email": email}
	if imageFile != "" {
		updates["image_file"] = imageFile
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.duplicateField(ctx, username)
		}
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// RequestReset emails a time-limited reset link for the account behind
// email. An unknown address is not an error so responses cannot be used to
// probe for accounts, but a broken mail transport is: a reset request that
// silently fails to send would be a correctness bug.
func (s *Users) RequestReset(ctx context.Context, email string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	return s.mailer.SendPasswordReset(user.Email, s.baseURL+"/reset_password/"+tok)
}

// VerifyResetToken resolves a reset token to its user. Token failures pass
// through as token.ErrInvalid / token.ErrExpired so the boundary can decide
// how much to tell the caller.
func (s *Users) VerifyResetToken(ctx context.Context, tokenString string) (*models.User, error) {
	uid, err := s.tokens.Verify(tokenString, token.DefaultResetMaxAge)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, uid)
}

// ResetPassword verifies the token and replaces the user's password hash
// wholesale. The token is not invalidated afterwards; it stays usable
// until its natural expiry.
func (s *Users) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	user, err := s.VerifyResetToken(ctx, tokenString)
	if err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
