package repository

import (
	"context"
	"testing"

	"blogapi/common"
	"blogapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestBuildPostFilter(t *testing.T) {
	catID := primitive.NewObjectID()

	assert.Equal(t, bson.M{}, BuildPostFilter(PostFilter{}))

	got := BuildPostFilter(PostFilter{PublishedOnly: true, CategoryID: &catID})
	assert.Equal(t, bson.M{"isPublished": true, "category": catID}, got)

	got = BuildPostFilter(PostFilter{PublishedOnly: true, Search: "c++ (intro)"})
	pattern := primitive.Regex{Pattern: `c\+\+ \(intro\)`, Options: "i"}
	assert.Equal(t, bson.A{bson.M{"title": pattern}, bson.M{"content": pattern}}, got["$or"])

	got = BuildPostFilter(PostFilter{Search: "go", SearchTags: true})
	assert.Len(t, got["$or"], 3)
}

func TestIdOrSlugFilter(t *testing.T) {
	oid := primitive.NewObjectID()

	assert.Equal(t, bson.M{"slug": "hello-world"}, idOrSlugFilter("hello-world"))
	assert.Equal(t, bson.M{"$or": bson.A{bson.M{"_id": oid}, bson.M{"slug": oid.Hex()}}}, idOrSlugFilter(oid.Hex()))
}

func TestMongoPostRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("increment views returns updated document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "_id", Value: id},
				{Key: "title", Value: "Hi"},
				{Key: "slug", Value: "hi"},
				{Key: "viewCount", Value: int64(4)},
			}},
		})

		post, err := NewMongoPostRepository(mt.Coll).IncrementViews(context.Background(), "hi")
		require.NoError(mt, err)
		assert.Equal(mt, id, post.ID)
		assert.Equal(mt, int64(4), post.ViewCount)
	})

	mt.Run("create fills empty slices", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		post := &models.Post{Title: "Hi", Slug: "hi", Content: "World"}
		require.NoError(mt, NewMongoPostRepository(mt.Coll).Create(context.Background(), post))
		assert.False(mt, post.ID.IsZero())
		assert.NotNil(mt, post.Tags)
		assert.NotNil(mt, post.Comments)
		assert.False(mt, post.CreatedAt.IsZero())
	})

	mt.Run("create with taken slug", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))

		err := NewMongoPostRepository(mt.Coll).Create(context.Background(), &models.Post{Slug: "hi"})
		assert.ErrorIs(mt, err, common.ErrConflict)
	})

	mt.Run("find decodes batch", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "title", Value: "B"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "title", Value: "A"}},
		))

		posts, err := NewMongoPostRepository(mt.Coll).Find(context.Background(), PostFilter{PublishedOnly: true}, Page{Limit: 10})
		require.NoError(mt, err)
		require.Len(mt, posts, 2)
		assert.Equal(mt, "B", posts[0].Title)
	})

	mt.Run("delete missing post", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})

		err := NewMongoPostRepository(mt.Coll).Delete(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, common.ErrNotFound)
	})

	mt.Run("add comment pushes atomically", func(mt *mtest.T) {
		postID := primitive.NewObjectID()
		userID := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "_id", Value: postID},
				{Key: "comments", Value: bson.A{
					bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user", Value: userID}, {Key: "content", Value: "Nice"}},
				}},
			}},
		})

		post, err := NewMongoPostRepository(mt.Coll).AddComment(context.Background(), postID, models.Comment{User: userID, Content: "Nice"})
		require.NoError(mt, err)
		require.Len(mt, post.Comments, 1)
		assert.Equal(mt, userID, post.Comments[0].User)
	})
}

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email maps to conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))

		user := &models.User{Name: "Ann", Email: "Ann@Example.com"}
		err := NewMongoUserRepository(mt.Coll).Create(context.Background(), user)
		assert.ErrorIs(mt, err, common.ErrConflict)
		assert.Equal(mt, "ann@example.com", user.Email)
	})

	mt.Run("find by email not found", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewMongoUserRepository(mt.Coll).FindByEmail(context.Background(), "ghost@example.com")
		assert.ErrorIs(mt, err, common.ErrNotFound)
	})

	mt.Run("find by email returns hash", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "email", Value: "ann@example.com"},
			{Key: "password", Value: "$2a$10$hash"},
			{Key: "role", Value: models.RoleUser},
		}))

		user, err := NewMongoUserRepository(mt.Coll).FindByEmail(context.Background(), "ANN@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "$2a$10$hash", user.Password)
	})
}
