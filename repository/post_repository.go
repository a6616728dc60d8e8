package repository

import (
	"context"
	"regexp"
	"time"

	"blogapi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

type mongoPostRepository struct {
	coll *mongo.Collection
}

func NewMongoPostRepository(coll *mongo.Collection) PostRepository {
	return &mongoPostRepository{coll: coll}
}

// BuildPostFilter translates a PostFilter into a MongoDB query document.
func BuildPostFilter(f PostFilter) bson.M {
	query := bson.M{}
	if f.PublishedOnly {
		query["isPublished"] = true
	}
	if f.CategoryID != nil {
		query["category"] = *f.CategoryID
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		or := bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		}
		if f.SearchTags {
			or = append(or, bson.M{"tags": pattern})
		}
		query["$or"] = or
	}
	return query
}

// idOrSlugFilter matches either key when the value parses as an ObjectID.
func idOrSlugFilter(idOrSlug string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(idOrSlug); err == nil {
		return bson.M{"$or": bson.A{
			bson.M{"_id": oid},
			bson.M{"slug": idOrSlug},
		}}
	}
	return bson.M{"slug": idOrSlug}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	// nil slices encode as null, which $push refuses
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}

	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		return mapError("mongoPostRepository.Create", err)
	}
	return nil
}

func (r *mongoPostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, mapError("mongoPostRepository.FindByID", err)
	}
	return &post, nil
}

func (r *mongoPostRepository) IncrementViews(ctx context.Context, idOrSlug string) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$inc": bson.M{"viewCount": 1}}

	var post models.Post
	err := r.coll.FindOneAndUpdate(ctx, idOrSlugFilter(idOrSlug), update, opts).Decode(&post)
	if err != nil {
		return nil, mapError("mongoPostRepository.IncrementViews", err)
	}
	return &post, nil
}

func (r *mongoPostRepository) Find(ctx context.Context, filter PostFilter, page Page) ([]models.Post, error) {
	opts := options.Find().SetSort(newestFirst)
	if page.Skip > 0 {
		opts.SetSkip(page.Skip)
	}
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}

	cursor, err := r.coll.Find(ctx, BuildPostFilter(filter), opts)
	if err != nil {
		return nil, mapError("mongoPostRepository.Find", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, mapError("mongoPostRepository.Find", err)
	}
	return posts, nil
}

func (r *mongoPostRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, BuildPostFilter(filter))
	if err != nil {
		return 0, mapError("mongoPostRepository.Count", err)
	}
	return total, nil
}

func (r *mongoPostRepository) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	set := bson.M{
		"title":       post.Title,
		"slug":        post.Slug,
		"content":     post.Content,
		"excerpt":     post.Excerpt,
		"tags":        tags,
		"isPublished": post.IsPublished,
		"updatedAt":   time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if post.Category != nil {
		set["category"] = *post.Category
	} else {
		update["$unset"] = bson.M{"category": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Post
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": post.ID}, update, opts).Decode(&updated); err != nil {
		return nil, mapError("mongoPostRepository.Update", err)
	}
	return &updated, nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError("mongoPostRepository.Delete", err)
	}
	if result.DeletedCount == 0 {
		return mapError("mongoPostRepository.Delete", mongo.ErrNoDocuments)
	}
	return nil
}

func (r *mongoPostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$push": bson.M{"comments": comment}}

	var post models.Post
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": postID}, update, opts).Decode(&post); err != nil {
		return nil, mapError("mongoPostRepository.AddComment", err)
	}
	return &post, nil
}

func (r *mongoPostRepository) SlugExists(ctx context.Context, slug string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"slug": slug}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, mapError("mongoPostRepository.SlugExists", err)
	}
	return n > 0, nil
}
