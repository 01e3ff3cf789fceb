// Package store provides the memo storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/mind-note/internal/model"
)

var (
	// ErrNotFound is returned when no active memo has the requested ID.
	ErrNotFound = errors.New("memo not found")
	// ErrInvalid is returned when create or update input fails validation.
	ErrInvalid = errors.New("invalid memo")
)

// DefaultLimit is the page size used when none is given.
const DefaultLimit = 20

// CreateParams holds parameters for storing a memo.
type CreateParams struct {
	Refined      string   `json:"refined" validate:"required"`
	Tags         []string `json:"tags" validate:"min=1,max=3,dive,required"`
	Context      string   `json:"context" validate:"required"`
	Insight      string   `json:"insight"`
	OriginalText string   `json:"original_text" validate:"required"`
	AudioURL     string   `json:"audio_url" validate:"omitempty,url"`
	Language     string   `json:"language"`
	IsFallback   bool     `json:"is_fallback"`
}

// UpdateParams holds a partial update. Nil fields are left unchanged.
type UpdateParams struct {
	ID      string
	Refined *string
	Tags    []string
	Context *string
	Insight *string
}

// ListParams holds filters for listing memos.
type ListParams struct {
	Tags     []string // matches memos carrying any of these tags
	Context  string
	Language string
	Search   string
	Limit    int
	Offset   int
}

// ListResult is one page of memos plus the total matching count.
type ListResult struct {
	Memos  []model.Memo `json:"memos"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// DeleteParams holds parameters for deleting a memo.
type DeleteParams struct {
	ID   string
	Hard bool
}

// Store defines the memo storage interface.
type Store interface {
	Create(ctx context.Context, p CreateParams) (*model.Memo, error)
	Get(ctx context.Context, id string) (*model.Memo, error)
	List(ctx context.Context, p ListParams) (*ListResult, error)
	Update(ctx context.Context, p UpdateParams) (*model.Memo, error)
	Delete(ctx context.Context, p DeleteParams) error
	Search(ctx context.Context, p SearchParams) ([]SearchResult, error)
	ExportAll(ctx context.Context, contextFilter string) ([]model.Memo, error)
	Import(ctx context.Context, memos []model.Memo) (int, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}
