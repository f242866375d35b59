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

var _ repositories.PrelistingRepository = (*PrelistingRepository)(nil)

// PrelistingRepository handles MongoDB operations for prelistings in a term database
type PrelistingRepository struct {
	collection *mongo.Collection
}

// NewPrelistingRepository creates a new PrelistingRepository
func NewPrelistingRepository(db *mongo.Database) *PrelistingRepository {
	return &PrelistingRepository{
		collection: db.Collection("prelistings"),
	}
}

func (r *PrelistingRepository) Create(ctx context.Context, p *models.Prelisting) error {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	if p.Status == "" {
		p.Status = models.PrelistingPending
	}
	return insertOne(ctx, r.collection, p)
}

func (r *PrelistingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prelisting, error) {
	return findOne[models.Prelisting](ctx, r.collection, bson.M{"_id": id})
}

func (r *PrelistingRepository) FindAll(ctx context.Context) ([]*models.Prelisting, error) {
	return findMany[models.Prelisting](ctx, r.collection, bson.M{}, byNewest())
}

// FindPending finds the pending prelisting of a student for a category
func (r *PrelistingRepository) FindPending(ctx context.Context, studentID, categoryID primitive.ObjectID) (*models.Prelisting, error) {
	filter := bson.M{"student": studentID, "category": categoryID, "status": models.PrelistingPending}
	return findOne[models.Prelisting](ctx, r.collection, filter)
}

func (r *PrelistingRepository) Update(ctx context.Context, p *models.Prelisting) error {
	p.UpdatedAt = time.Now()
	return replaceByID(ctx, r.collection, p.ID, p)
}

func (r *PrelistingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id)
}

func (r *PrelistingRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"category": categoryID})
}

func (r *PrelistingRepository) CountByStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"student": studentID})
}
