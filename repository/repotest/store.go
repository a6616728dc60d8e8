// Package repotest provides in-memory repositories that honour the same
// contracts as the MongoDB implementations, for use in tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"blogapi/common"
	"blogapi/models"
	"blogapi/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store backs all three repositories with one lock, so a test can inspect
// users, categories and posts consistently.
type Store struct {
	mu         sync.Mutex
	users      map[primitive.ObjectID]models.User
	categories map[primitive.ObjectID]models.Category
	posts      map[primitive.ObjectID]models.Post
	clock      time.Time
}

func NewStore() *Store {
	return &Store{
		users:      make(map[primitive.ObjectID]models.User),
		categories: make(map[primitive.ObjectID]models.Category),
		posts:      make(map[primitive.ObjectID]models.Post),
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so newest-first ordering is
// deterministic. Callers hold s.mu.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) Users() repository.UserRepository         { return userRepo{s} }
func (s *Store) Categories() repository.CategoryRepository { return categoryRepo{s} }
func (s *Store) Posts() repository.PostRepository         { return postRepo{s} }

// Post returns a copy of the stored post, or false.
func (s *Store) Post(id primitive.ObjectID) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	return clonePost(p), ok
}

func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// RemoveUser deletes a user directly, simulating an account removed out of band.
func (s *Store) RemoveUser(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// SetRole changes a stored user's role.
func (s *Store) SetRole(id primitive.ObjectID, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Role = role
		s.users[id] = u
	}
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return common.ErrConflict
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := r.s.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r userRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	u.Password = ""
	return &u, nil
}

func (r userRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			u.Password = ""
			out = append(out, u)
		}
	}
	return out, nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(_ context.Context, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if c.Slug == category.Slug || c.Name == category.Name {
			return common.ErrConflict
		}
	}
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	category.CreatedAt = r.s.tick()
	r.s.categories[category.ID] = *category
	return nil
}

func (r categoryRepo) List(_ context.Context) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r categoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &c, nil
}

func (r categoryRepo) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r categoryRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Category
	for _, id := range ids {
		if c, ok := r.s.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type postRepo struct{ s *Store }

func (r postRepo) Create(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.posts {
		if p.Slug == post.Slug {
			return common.ErrConflict
		}
	}
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	now := r.s.tick()
	post.CreatedAt, post.UpdatedAt = now, now
	r.s.posts[post.ID] = clonePost(*post)
	return nil
}

func (r postRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (r postRepo) IncrementViews(_ context.Context, idOrSlug string) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	oid, idErr := primitive.ObjectIDFromHex(idOrSlug)
	for id, p := range r.s.posts {
		if (idErr == nil && id == oid) || p.Slug == idOrSlug {
			p.ViewCount++
			r.s.posts[id] = p
			p = clonePost(p)
			return &p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r postRepo) Find(_ context.Context, filter repository.PostFilter, page repository.Page) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := r.matching(filter)
	if page.Skip >= int64(len(matched)) {
		return []models.Post{}, nil
	}
	matched = matched[page.Skip:]
	if page.Limit > 0 && int64(len(matched)) > page.Limit {
		matched = matched[:page.Limit]
	}
	return matched, nil
}

func (r postRepo) Count(_ context.Context, filter repository.PostFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r postRepo) Update(_ context.Context, post *models.Post) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.posts[post.ID]
	if !ok {
		return nil, common.ErrNotFound
	}
	for id, p := range r.s.posts {
		if id != post.ID && p.Slug == post.Slug {
			return nil, common.ErrConflict
		}
	}
	stored.Title = post.Title
	stored.Slug = post.Slug
	stored.Content = post.Content
	stored.Excerpt = post.Excerpt
	stored.Category = post.Category
	stored.Tags = append([]string{}, post.Tags...)
	stored.IsPublished = post.IsPublished
	stored.UpdatedAt = r.s.tick()
	r.s.posts[post.ID] = stored

	out := clonePost(stored)
	return &out, nil
}

func (r postRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r postRepo) AddComment(_ context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return nil, common.ErrNotFound
	}
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	p.Comments = append(p.Comments, comment)
	r.s.posts[postID] = p

	out := clonePost(p)
	return &out, nil
}

func (r postRepo) SlugExists(_ context.Context, slug string, exclude primitive.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, p := range r.s.posts {
		if p.Slug == slug && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

// matching returns copies of the posts selected by f, newest first. Callers hold s.mu.
func (r postRepo) matching(f repository.PostFilter) []models.Post {
	term := strings.ToLower(f.Search)
	out := []models.Post{}
	for _, p := range r.s.posts {
		if f.PublishedOnly && !p.IsPublished {
			continue
		}
		if f.CategoryID != nil && (p.Category == nil || *p.Category != *f.CategoryID) {
			continue
		}
		if term != "" && !matchesTerm(p, term, f.SearchTags) {
			continue
		}
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func matchesTerm(p models.Post, term string, tags bool) bool {
	if strings.Contains(strings.ToLower(p.Title), term) || strings.Contains(strings.ToLower(p.Content), term) {
		return true
	}
	if tags {
		for _, t := range p.Tags {
			if strings.Contains(strings.ToLower(t), term) {
				return true
			}
		}
	}
	return false
}

func clonePost(p models.Post) models.Post {
	p.Tags = append([]string(nil), p.Tags...)
	p.Comments = append([]models.Comment(nil), p.Comments...)
	if p.Category != nil {
		c := *p.Category
		p.Category = &c
	}
	return p
}
