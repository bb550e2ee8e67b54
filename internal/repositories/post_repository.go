package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/snapgram-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository is the document-store collaborator for posts.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetRecentPosts(ctx context.Context, limit int64) ([]models.Post, error)
	GetFeedPage(ctx context.Context, cursor string, limit int64) ([]models.Post, error)
	SearchPosts(ctx context.Context, term string) ([]models.Post, error)
	GetPostsByCreator(ctx context.Context, creatorID string) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) error
	UpdateLikes(ctx context.Context, id string, likes []string) error
	DeletePost(ctx context.Context, id string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []string{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetRecentPosts retrieves the newest posts by creation time.
func (r *MongoPostRepository) GetRecentPosts(ctx context.Context, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return r.findPosts(ctx, bson.D{}, findOptions)
}

// GetFeedPage retrieves one feed page ordered by descending update time.
// The cursor is the id of the last post of the previous page; pagination is
// keyset-based on (updated_at, _id) so inserts at the head of the feed do not
// shift or duplicate later pages.
func (r *MongoPostRepository) GetFeedPage(ctx context.Context, cursor string, limit int64) ([]models.Post, error) {
	filter := bson.D{}
	if cursor != "" {
		after, err := r.GetPostByID(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid feed cursor: %w", err)
		}
		filter = bson.D{{Key: "$or", Value: bson.A{
			bson.M{"updated_at": bson.M{"$lt": after.UpdatedAt}},
			bson.M{"updated_at": after.UpdatedAt, "_id": bson.M{"$lt": after.ID}},
		}}}
	}

	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})
	return r.findPosts(ctx, filter, findOptions)
}

// SearchPosts matches the search term against captions, case-insensitive.
func (r *MongoPostRepository) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	filter := bson.M{"caption": bson.M{"$regex": primitive.Regex{Pattern: term, Options: "i"}}}
	return r.findPosts(ctx, filter, options.Find())
}

// GetPostsByCreator retrieves a user's posts, newest first.
func (r *MongoPostRepository) GetPostsByCreator(ctx context.Context, creatorID string) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.findPosts(ctx, bson.M{"creator": creatorID}, findOptions)
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Post, error) {
	posts := []models.Post{}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost updates an existing post in MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"caption":    post.Caption,
			"location":   post.Location,
			"tags":       post.Tags,
			"image_url":  post.ImageURL,
			"image_id":   post.ImageID,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateLikes replaces the likes array wholesale. Last writer wins; there is
// no merge with concurrent updates.
func (r *MongoPostRepository) UpdateLikes(ctx context.Context, id string, likes []string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	if likes == nil {
		likes = []string{}
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"likes": likes}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
