package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository handles MongoDB operations for fee categories in a term database
type CategoryRepository struct {
	collection *mongo.Collection
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{
		collection: db.Collection("categories"),
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	category.ID = primitive.NewObjectID()
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	return insertOne(ctx, r.collection, category)
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return findOne[models.Category](ctx, r.collection, bson.M{"_id": id})
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]*models.Category, error) {
	return findMany[models.Category](ctx, r.collection, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *CategoryRepository) FindByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]*models.Category, error) {
	return findMany[models.Category](ctx, r.collection, bson.M{"organization": orgID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now()
	return replaceByID(ctx, r.collection, category.ID, category)
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id)
}

func (r *CategoryRepository) CountByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"organization": orgID})
}
