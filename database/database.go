package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection      = "users"
	PostsCollection      = "posts"
	CategoriesCollection = "categories"
)

type DB struct {
	Client     *mongo.Client
	Database   *mongo.Database
	Users      *mongo.Collection
	Posts      *mongo.Collection
	Categories *mongo.Collection
}

func Connect(ctx context.Context, uri, name string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return New(client, name), nil
}

// ConnectWithRetry makes up to attempts connection attempts, wait apart.
func ConnectWithRetry(ctx context.Context, uri, name string, attempts int, wait time.Duration) (*DB, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := Connect(ctx, uri, name)
		if err == nil {
			return db, nil
		}
		lastErr = err
		log.Printf("MongoDB connection attempt %d failed: %v", i, err)
		if i < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return nil, fmt.Errorf("connect to MongoDB after %d attempts: %w", attempts, lastErr)
}

func New(client *mongo.Client, name string) *DB {
	db := client.Database(name)
	return &DB{
		Client:     client,
		Database:   db,
		Users:      db.Collection(UsersCollection),
		Posts:      db.Collection(PostsCollection),
		Categories: db.Collection(CategoriesCollection),
	}
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, nil)
}

// EnsureIndexes creates the unique and sort indexes the repositories rely on.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		d.Users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		d.Categories: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		d.Posts: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (d *DB) Disconnect(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := d.Client.Disconnect(ctx); err != nil {
		return err
	}

	log.Println("Disconnected from MongoDB")
	return nil
}
