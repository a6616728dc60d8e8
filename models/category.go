package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultCategoryColor = "#3b82f6"

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Color       string             `bson:"color" json:"color"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type CategoryRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Slug  string             `json:"slug"`
	Color string             `json:"color"`
}

func (c *Category) Ref() *CategoryRef {
	return &CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug, Color: c.Color}
}
