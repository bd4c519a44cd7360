package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/go-blog/gate"
	"github.com/diewo77/go-blog/internal/models"
)

// PostsPerPage is the page size for post listings.
const PostsPerPage = 10

// Posts implements post CRUD with ownership-gated mutation. The order of
// checks is fixed: authentication (caller), then existence, then
// ownership, and only then the mutation.
type Posts struct {
	db   *gorm.DB
	gate *gate.Gate[uint]
}

func NewPosts(db *gorm.DB) *Posts {
	g := gate.NewGate[uint]()
	g.Register("post", gate.NewOwnershipPolicy())
	return &Posts{db: db, gate: g}
}

// Create stores a new post authored by authorID. The author must exist;
// the acting identity is the author by construction.
func (s *Posts) Create(ctx context.Context, authorID uint, title, content string) (*models.Post, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check author: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	post := &models.Post{Title: title, Content: content, UserID: authorID}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Get loads a post with its author, or ErrNotFound.
func (s *Posts) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

// Authorize runs the ownership gate for an already-loaded post without
// mutating anything. Handlers use it to refuse the edit form itself.
func (s *Posts) Authorize(ctx context.Context, actorID uint, action gate.Action, post *models.Post) error {
	return s.gate.Authorize(ctx, actorID, action, "post", post)
}

// Update edits a post's title and content. Missing posts fail with
// ErrNotFound before ownership is considered; a non-owner gets
// gate.ErrForbidden and the post is left untouched.
func (s *Posts) Update(ctx context.Context, actorID, id uint, title, content string) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, actorID, gate.ActionUpdate, "post", post); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(post).Updates(map[string]any{"title": title, "content": content}).Error; err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

// Delete removes a post, subject to the same gate ordering as Update.
func (s *Posts) Delete(ctx context.Context, actorID, id uint) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.Authorize(ctx, actorID, gate.ActionDelete, "post", post); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(post).Error; err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// List returns a page of posts, newest first, with the total count.
func (s *Posts) List(ctx context.Context, page int) ([]models.Post, int64, error) {
	return s.list(ctx, page, nil)
}

// ListByAuthor returns a page of authorID's posts, newest first.
func (s *Posts) ListByAuthor(ctx context.Context, authorID uint, page int) ([]models.Post, int64, error) {
	return s.list(ctx, page, &authorID)
}

func (s *Posts) list(ctx context.Context, page int, authorID *uint) ([]models.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Post{})
		if authorID != nil {
			q = q.Where("user_id = ?", *authorID)
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	var posts []models.Post
	err := base().Preload("Author").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * PostsPerPage).
		Limit(PostsPerPage).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}
