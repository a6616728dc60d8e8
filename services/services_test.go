package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"blogapi/models"
	"blogapi/repository/repotest"
	"blogapi/security"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordedEvent struct {
	Type    string
	Payload interface{}
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Publish(eventType string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: eventType, Payload: payload})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      *repotest.Store
	tokens     *security.TokenManager
	auth       *AuthService
	posts      *PostService
	categories *CategoryService
	events     *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	tokens := security.NewTokenManager([]byte("test-secret"), time.Hour)
	events := &recorder{}
	return &fixture{
		store:      store,
		tokens:     tokens,
		auth:       NewAuthService(store.Users(), tokens),
		posts:      NewPostService(store.Posts(), store.Categories(), store.Users(), events),
		categories: NewCategoryService(store.Categories()),
		events:     events,
	}
}

func (f *fixture) register(t *testing.T, name, email string) primitive.ObjectID {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	return res.ID
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) post(t *testing.T, author primitive.ObjectID, title, content string, published bool) *models.PostView {
	t.Helper()
	p, err := f.posts.Create(context.Background(), author, PostInput{Title: title, Content: content, IsPublished: &published})
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
