package model

import "time"

type Post struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Content    *string   `json:"content,omitempty"`
	CoverImage *string   `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// StoredFile describes a payload written by a file store.
type StoredFile struct {
	StoredName string `json:"filename"`
	PublicPath string `json:"url"`
	Size       int64  `json:"size"`
}
