package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Title       string              `bson:"title" json:"title"`
	Slug        string              `bson:"slug" json:"slug"`
	Content     string              `bson:"content" json:"content"`
	Excerpt     string              `bson:"excerpt" json:"excerpt"`
	Author      primitive.ObjectID  `bson:"author" json:"author"`
	Category    *primitive.ObjectID `bson:"category,omitempty" json:"category,omitempty"`
	Tags        []string            `bson:"tags" json:"tags"`
	IsPublished bool                `bson:"isPublished" json:"isPublished"`
	ViewCount   int64               `bson:"viewCount" json:"viewCount"`
	Comments    []Comment           `bson:"comments" json:"comments"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (p *Post) OwnedBy(userID primitive.ObjectID) bool {
	return p.Author == userID
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// PostView is a post with its references resolved, as served by the API.
type PostView struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	Content     string             `json:"content"`
	ContentHTML string             `json:"contentHtml"`
	Excerpt     string             `json:"excerpt"`
	Author      *UserRef           `json:"author"`
	Category    *CategoryRef       `json:"category"`
	Tags        []string           `json:"tags"`
	IsPublished bool               `json:"isPublished"`
	ViewCount   int64              `json:"viewCount"`
	Comments    []CommentView      `json:"comments"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	User      *UserRef           `json:"user"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"createdAt"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}
