// Package model defines the core memo data types.
package model

import "time"

// Memo represents a stored memo entry.
type Memo struct {
	ID           string     `json:"id"`
	Refined      string     `json:"refined"`
	Tags         []string   `json:"tags"`
	Context      string     `json:"context"`
	Insight      string     `json:"insight,omitempty"`
	OriginalText string     `json:"original_text"`
	AudioURL     string     `json:"audio_url,omitempty"`
	Language     string     `json:"language"`
	IsFallback   bool       `json:"is_fallback"`
	Version      int        `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Refinement is the structured result of refining one raw memo. Success and
// fallback results share this shape; IsFallback tells them apart.
type Refinement struct {
	Refined      string   `json:"refined"`
	Tags         []string `json:"tags"`
	Context      string   `json:"context"`
	Insight      string   `json:"insight"`
	Language     string   `json:"language"`
	OriginalText string   `json:"original_text"`
	IsFallback   bool     `json:"isFallback"`
}

// Limits on memo tags.
const (
	MinTags = 1
	MaxTags = 3
)

// MaxRefinedLength bounds the refined text of every refinement, in runes.
const MaxRefinedLength = 1000
