package services

import (
	"context"
	"fmt"
	"log"

	"blogapi/markdown"
	"blogapi/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// populate resolves author, category and commenter references for posts
// with one batched lookup per collection.
func (s *PostService) populate(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	userSet := map[primitive.ObjectID]struct{}{}
	categorySet := map[primitive.ObjectID]struct{}{}
	for _, p := range posts {
		userSet[p.Author] = struct{}{}
		for _, c := range p.Comments {
			userSet[c.User] = struct{}{}
		}
		if p.Category != nil {
			categorySet[*p.Category] = struct{}{}
		}
	}

	users, err := s.users.FindByIDs(ctx, keys(userSet))
	if err != nil {
		return nil, fmt.Errorf("populate users: %w", err)
	}
	categories, err := s.categories.FindByIDs(ctx, keys(categorySet))
	if err != nil {
		return nil, fmt.Errorf("populate categories: %w", err)
	}

	userByID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		userByID[users[i].ID] = &users[i]
	}
	categoryByID := make(map[primitive.ObjectID]*models.Category, len(categories))
	for i := range categories {
		categoryByID[categories[i].ID] = &categories[i]
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, buildView(p, userByID, categoryByID))
	}
	return views, nil
}

func (s *PostService) populateOne(ctx context.Context, post *models.Post) (*models.PostView, error) {
	views, err := s.populate(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func buildView(p models.Post, users map[primitive.ObjectID]*models.User, categories map[primitive.ObjectID]*models.Category) models.PostView {
	html, err := markdown.ToHTML(p.Content)
	if err != nil {
		log.Printf("[populate] render post %s: %v", p.ID.Hex(), err)
	}

	view := models.PostView{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Content:     p.Content,
		ContentHTML: html,
		Excerpt:     p.Excerpt,
		Author:      userRef(users[p.Author], true),
		Tags:        p.Tags,
		IsPublished: p.IsPublished,
		ViewCount:   p.ViewCount,
		Comments:    make([]models.CommentView, 0, len(p.Comments)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if view.Tags == nil {
		view.Tags = []string{}
	}
	if p.Category != nil {
		if c, ok := categories[*p.Category]; ok {
			view.Category = c.Ref()
		}
	}
	for _, c := range p.Comments {
		view.Comments = append(view.Comments, models.CommentView{
			ID:        c.ID,
			User:      userRef(users[c.User], false),
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	return view
}

// userRef returns nil for a dangling reference.
func userRef(u *models.User, withEmail bool) *models.UserRef {
	if u == nil {
		return nil
	}
	ref := &models.UserRef{ID: u.ID, Name: u.Name}
	if withEmail {
		ref.Email = u.Email
	}
	return ref
}

func keys(set map[primitive.ObjectID]struct{}) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
