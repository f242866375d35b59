package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func unique(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
}

func plain(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys}
}

var originalIndexes = []collectionIndexes{
	{"users", []mongo.IndexModel{
		unique(bson.D{{Key: "email", Value: 1}}),
		plain(bson.D{{Key: "roles", Value: 1}}),
		plain(bson.D{{Key: "organization", Value: 1}}),
	}},
	{"organizations", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(&options.Collation{Locale: "en", Strength: 2}),
		},
	}},
	{"roles", []mongo.IndexModel{
		unique(bson.D{{Key: "name", Value: 1}}),
	}},
	{"sessions", []mongo.IndexModel{
		plain(bson.D{{Key: "user", Value: 1}, {Key: "valid", Value: 1}}),
		{
			// Expired sessions are purged by the server
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}},
}

var termIndexes = []collectionIndexes{
	{"students", []mongo.IndexModel{
		unique(bson.D{{Key: "studentId", Value: 1}}),
		plain(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}}),
	}},
	{"categories", []mongo.IndexModel{
		unique(bson.D{{Key: "organization", Value: 1}, {Key: "code", Value: 1}}),
	}},
	{"transactions", []mongo.IndexModel{
		unique(bson.D{{Key: "receiptNo", Value: 1}}),
		plain(bson.D{{Key: "student", Value: 1}, {Key: "category", Value: 1}}),
		plain(bson.D{{Key: "category", Value: 1}}),
		plain(bson.D{{Key: "date", Value: -1}}),
	}},
	{"prelistings", []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "student", Value: 1}, {Key: "category", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "pending"}),
		},
		plain(bson.D{{Key: "category", Value: 1}}),
	}},
}

// EnsureOriginalIndexes creates the indexes of the fixed database
func EnsureOriginalIndexes(ctx context.Context, db *mongo.Database) error {
	return ensure(ctx, db, originalIndexes)
}

// EnsureTermIndexes creates the indexes of a term database. It is used as the client's term open hook.
func EnsureTermIndexes(ctx context.Context, db *mongo.Database) error {
	return ensure(ctx, db, termIndexes)
}

func ensure(ctx context.Context, db *mongo.Database, all []collectionIndexes) error {
	for _, ci := range all {
		if _, err := db.Collection(ci.collection).Indexes().CreateMany(ctx, ci.models); err != nil {
			return errors.Wrapf(err, "creating indexes on %s.%s", db.Name(), ci.collection)
		}
	}
	return nil
}
