package repository

import (
	"context"
	"time"

	"blogapi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCategoryRepository struct {
	coll *mongo.Collection
}

func NewMongoCategoryRepository(coll *mongo.Collection) CategoryRepository {
	return &mongoCategoryRepository{coll: coll}
}

func (r *mongoCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	category.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, category); err != nil {
		return mapError("mongoCategoryRepository.Create", err)
	}
	return nil
}

func (r *mongoCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.find(ctx, "mongoCategoryRepository.List", bson.M{}, opts)
}

func (r *mongoCategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return r.findOne(ctx, "mongoCategoryRepository.FindByID", bson.M{"_id": id})
}

func (r *mongoCategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.findOne(ctx, "mongoCategoryRepository.FindBySlug", bson.M{"slug": slug})
}

func (r *mongoCategoryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, "mongoCategoryRepository.FindByIDs", bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoCategoryRepository) findOne(ctx context.Context, op string, filter bson.M) (*models.Category, error) {
	var category models.Category
	if err := r.coll.FindOne(ctx, filter).Decode(&category); err != nil {
		return nil, mapError(op, err)
	}
	return &category, nil
}

func (r *mongoCategoryRepository) find(ctx context.Context, op string, filter bson.M, opts ...*options.FindOptions) ([]models.Category, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, mapError(op, err)
	}
	return categories, nil
}
