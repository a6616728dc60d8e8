package repository

import (
	"context"
	"strings"
	"time"

	"blogapi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var withoutPassword = bson.M{"password": 0}

type mongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(coll *mongo.Collection) UserRepository {
	return &mongoUserRepository{coll: coll}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return mapError("mongoUserRepository.Create", err)
	}
	return nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err != nil {
		return nil, mapError("mongoUserRepository.FindByEmail", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user); err != nil {
		return nil, mapError("mongoUserRepository.FindByID", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	opts := options.Find().SetProjection(withoutPassword)
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, mapError("mongoUserRepository.FindByIDs", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, mapError("mongoUserRepository.FindByIDs", err)
	}
	return users, nil
}
