package mongodb

import (
	"context"

	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// findOne decodes the first document matching filter
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &doc, nil
}

// findMany decodes every document matching filter; never returns a nil slice
func findMany[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []*T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// insertOne inserts doc and maps duplicate-key failures onto repositories.ErrDuplicate
func insertOne(ctx context.Context, coll *mongo.Collection, doc interface{}) error {
	_, err := coll.InsertOne(ctx, doc)
	return mapWriteError(err)
}

// replaceByID replaces the document with the given id
func replaceByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, doc interface{}) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mapWriteError(err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// deleteByID deletes the document with the given id
func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(repositories.ErrDuplicate, err.Error())
	}
	return err
}

// byNewest sorts by creation time, newest first
func byNewest() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}
