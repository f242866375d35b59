package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ repositories.SessionRepository = (*SessionRepository)(nil)

// SessionRepository handles MongoDB operations for refresh sessions
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{
		collection: db.Collection("sessions"),
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	session.ID = primitive.NewObjectID()
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	return insertOne(ctx, r.collection, session)
}

func (r *SessionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	return findOne[models.Session](ctx, r.collection, bson.M{"_id": id})
}

func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now()
	return replaceByID(ctx, r.collection, session.ID, session)
}

// InvalidateByUser marks every session of the user invalid
func (r *SessionRepository) InvalidateByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"user": userID, "valid": true},
		bson.M{"$set": bson.M{"valid": false, "updatedAt": time.Now()}},
	)
	return err
}
