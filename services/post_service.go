package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"blogapi/common"
	"blogapi/markdown"
	"blogapi/models"
	"blogapi/repository"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	SearchLimit  = 20

	maxSlugAttempts = 50
)

type PostService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	events     EventPublisher
}

func NewPostService(posts repository.PostRepository, categories repository.CategoryRepository, users repository.UserRepository, events EventPublisher) *PostService {
	if events == nil {
		events = noopPublisher{}
	}
	return &PostService{posts: posts, categories: categories, users: users, events: events}
}

// Requester is the authenticated caller of a mutating operation.
type Requester struct {
	ID   primitive.ObjectID
	Role string
}

func (r Requester) CanModify(post *models.Post) bool {
	return post.OwnedBy(r.ID) || models.IsAdmin(r.Role)
}

type ListQuery struct {
	Page     int
	Limit    int
	Category string // category slug
	Search   string
}

type ListResult struct {
	Posts      []models.PostView
	Pagination models.Pagination
}

// PostInput carries create/update fields. Nil pointers mean "not supplied":
// on update the stored value is kept, on create the default applies.
type PostInput struct {
	Title       string
	Content     string
	Excerpt     *string
	Category    *string
	Tags        *[]string
	IsPublished *bool
}

func (s *PostService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	filter := repository.PostFilter{PublishedOnly: true, Search: strings.TrimSpace(q.Search)}
	if q.Category != "" {
		category, err := s.categories.FindBySlug(ctx, q.Category)
		switch {
		case err == nil:
			filter.CategoryID = &category.ID
		case errors.Is(err, common.ErrNotFound):
			log.Printf("[ListPosts] unknown category %q, filter ignored", q.Category)
		default:
			return nil, fmt.Errorf("resolve category: %w", err)
		}
	}

	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	posts, err := s.posts.Find(ctx, filter, repository.Page{
		Skip:  int64(page-1) * int64(limit),
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	views, err := s.populate(ctx, posts)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Posts:      views,
		Pagination: NewPagination(page, limit, total),
	}, nil
}

// NewPagination computes pages as ceil(total/limit).
func NewPagination(page, limit int, total int64) models.Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return models.Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Get resolves a post by id or slug and counts the view.
func (s *PostService) Get(ctx context.Context, idOrSlug string) (*models.PostView, error) {
	post, err := s.posts.IncrementViews(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errPostNotFound()
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return s.populateOne(ctx, post)
}

func (s *PostService) Create(ctx context.Context, authorID primitive.ObjectID, in PostInput) (*models.PostView, error) {
	post := &models.Post{
		Title:   strings.TrimSpace(in.Title),
		Content: strings.TrimSpace(in.Content),
		Author:  authorID,
		Tags:    []string{},
	}
	if in.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.Tags != nil {
		post.Tags = normalizeTags(*in.Tags)
	}
	if in.IsPublished != nil {
		post.IsPublished = *in.IsPublished
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		categoryID, err := s.resolveCategory(ctx, *in.Category)
		if err != nil {
			return nil, err
		}
		post.Category = &categoryID
	}
	if post.Excerpt == "" {
		post.Excerpt = markdown.Excerpt(post.Content, markdown.ExcerptLength)
	}

	if err := s.insertWithSlug(ctx, post); err != nil {
		return nil, err
	}

	view, err := s.populateOne(ctx, post)
	if err != nil {
		return nil, err
	}
	if post.IsPublished {
		s.events.Publish(EventPostCreated, view)
	}
	return view, nil
}

func (s *PostService) Update(ctx context.Context, req Requester, postID string, in PostInput) (*models.PostView, error) {
	post, err := s.loadForMutation(ctx, req, postID, "Not authorized to update this post")
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title != "" && title != post.Title {
		post.Title = title
		post.Slug, err = s.uniqueSlug(ctx, slugBase(title), post.ID)
		if err != nil {
			return nil, err
		}
	}
	// an excerpt derived from the old content follows the new content
	derived := post.Excerpt == "" || post.Excerpt == markdown.Excerpt(post.Content, markdown.ExcerptLength)
	if content := strings.TrimSpace(in.Content); content != "" && content != post.Content {
		post.Content = content
		if derived {
			post.Excerpt = ""
		}
	}
	if in.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if post.Excerpt == "" {
		post.Excerpt = markdown.Excerpt(post.Content, markdown.ExcerptLength)
	}
	if in.Category != nil {
		if strings.TrimSpace(*in.Category) == "" {
			post.Category = nil
		} else {
			categoryID, err := s.resolveCategory(ctx, *in.Category)
			if err != nil {
				return nil, err
			}
			post.Category = &categoryID
		}
	}
	if in.Tags != nil {
		post.Tags = normalizeTags(*in.Tags)
	}
	if in.IsPublished != nil {
		post.IsPublished = *in.IsPublished
	}

	updated, err := s.posts.Update(ctx, post)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errPostNotFound()
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	view, err := s.populateOne(ctx, updated)
	if err != nil {
		return nil, err
	}
	if updated.IsPublished {
		s.events.Publish(EventPostUpdated, view)
	}
	return view, nil
}

func (s *PostService) Delete(ctx context.Context, req Requester, postID string) error {
	post, err := s.loadForMutation(ctx, req, postID, "Not authorized to delete this post")
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errPostNotFound()
		}
		return fmt.Errorf("delete post: %w", err)
	}

	s.events.Publish(EventPostDeleted, map[string]interface{}{"_id": post.ID})
	return nil
}

func (s *PostService) AddComment(ctx context.Context, postID string, userID primitive.ObjectID, content string) (*models.PostView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.NewValidationError(common.FieldError{Field: "content", Message: "Comment content is required"})
	}

	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, errPostNotFound()
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	post, err := s.posts.AddComment(ctx, id, comment)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errPostNotFound()
		}
		return nil, fmt.Errorf("add comment: %w", err)
	}

	view, err := s.populateOne(ctx, post)
	if err != nil {
		return nil, err
	}
	if post.IsPublished {
		s.events.Publish(EventCommentAdded, map[string]interface{}{
			"postId":  post.ID,
			"comment": view.Comments[len(view.Comments)-1],
		})
	}
	return view, nil
}

// Search matches published posts by title, content or tag, newest first.
func (s *PostService) Search(ctx context.Context, term string) ([]models.PostView, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, common.NewError(common.ErrBadRequest, "Please provide a search query")
	}

	posts, err := s.posts.Find(ctx, repository.PostFilter{
		PublishedOnly: true,
		Search:        term,
		SearchTags:    true,
	}, repository.Page{Limit: SearchLimit})
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return s.populate(ctx, posts)
}

func (s *PostService) loadForMutation(ctx context.Context, req Requester, postID, forbidden string) (*models.Post, error) {
	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, errPostNotFound()
	}

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errPostNotFound()
		}
		return nil, fmt.Errorf("load post: %w", err)
	}

	if !req.CanModify(post) {
		return nil, common.NewError(common.ErrForbidden, forbidden)
	}
	return post, nil
}

func (s *PostService) resolveCategory(ctx context.Context, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, common.NewValidationError(common.FieldError{Field: "category", Message: "Invalid category ID"})
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return primitive.NilObjectID, common.NewValidationError(common.FieldError{Field: "category", Message: "Category not found"})
		}
		return primitive.NilObjectID, fmt.Errorf("resolve category: %w", err)
	}
	return id, nil
}

// insertWithSlug picks a free slug and inserts, retrying once with a random
// suffix if a concurrent insert claimed the same slug first.
func (s *PostService) insertWithSlug(ctx context.Context, post *models.Post) error {
	base := slugBase(post.Title)
	var err error
	post.Slug, err = s.uniqueSlug(ctx, base, primitive.NilObjectID)
	if err != nil {
		return err
	}

	err = s.posts.Create(ctx, post)
	if errors.Is(err, common.ErrConflict) {
		post.ID = primitive.NilObjectID
		post.Slug = base + "-" + randomSuffix()
		err = s.posts.Create(ctx, post)
	}
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *PostService) uniqueSlug(ctx context.Context, base string, exclude primitive.ObjectID) (string, error) {
	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		taken, err := s.posts.SlugExists(ctx, candidate, exclude)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + randomSuffix(), nil
}

func slugBase(title string) string {
	if s := slug.Make(title); s != "" {
		return s
	}
	return "post"
}

func randomSuffix() string {
	return primitive.NewObjectID().Hex()[16:]
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func errPostNotFound() error {
	return common.NewError(common.ErrNotFound, "Post not found")
}
