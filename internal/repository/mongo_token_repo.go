package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magcentre/object-identity/internal/models"
)

type mongoTokenRepo struct {
	col *mongo.Collection
}

// NewMongoTokenRepo builds the mongo-backed refresh token store. The TTL
// index lets unconsumed tokens expire out of the collection on their own.
func NewMongoTokenRepo(db *mongo.Database, collection string) TokenRepository {
	col := db.Collection(collection)
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}},
		{Keys: bson.D{{Key: "expires", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	})
	return &mongoTokenRepo{col: col}
}

func (r *mongoTokenRepo) Create(ctx context.Context, t *models.RefreshToken) error {
	t.CreatedAt = time.Now().UTC()
	res, err := r.col.InsertOne(ctx, t)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid
	}
	return nil
}

func activeFilter(token string, userID primitive.ObjectID) bson.M {
	return bson.M{
		"token":       token,
		"user":        userID,
		"type":        models.TokenTypeRefresh,
		"blacklisted": false,
	}
}

func (r *mongoTokenRepo) FindActive(ctx context.Context, token string, userID primitive.ObjectID) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.col.FindOne(ctx, activeFilter(token, userID)).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Consume deletes the matching active record and returns it. The delete is
// conditional, so of two concurrent refresh calls on the same token only the
// first observes the record; the loser gets ErrTokenNotFound.
func (r *mongoTokenRepo) Consume(ctx context.Context, token string, userID primitive.ObjectID) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.col.FindOneAndDelete(ctx, activeFilter(token, userID)).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *mongoTokenRepo) Delete(ctx context.Context, token string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"token": token, "type": models.TokenTypeRefresh})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTokenNotFound
	}
	return nil
}
