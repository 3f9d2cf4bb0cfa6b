// Package view turns stored posts into what the list page renders.
package view

import (
	"iter"
	"time"

	"github.com/gfdmit/web-forum/blog-service/internal/model"
)

const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders t in loc as "YYYY-MM-DD HH:MM:SS".
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimestampLayout)
}

type Card struct {
	ID         int64
	Name       string
	Content    string
	CoverImage string
	Timestamp  string
}

type Options struct {
	Location     *time.Location
	DefaultCover string
}

// Cards yields one card per post in the order given. A post without a cover
// image gets the default one; the post itself is left untouched.
func Cards(posts []model.Post, opts Options) iter.Seq[Card] {
	return func(yield func(Card) bool) {
		for _, post := range posts {
			if !yield(NewCard(post, opts)) {
				return
			}
		}
	}
}

func NewCard(post model.Post, opts Options) Card {
	card := Card{
		ID:         post.ID,
		Name:       post.Name,
		CoverImage: opts.DefaultCover,
		Timestamp:  FormatTimestamp(post.UpdatedAt, opts.Location),
	}
	if post.Content != nil {
		card.Content = *post.Content
	}
	if post.CoverImage != nil && *post.CoverImage != "" {
		card.CoverImage = *post.CoverImage
	}
	return card
}
