package mongodb

import (
	"context"
	"regexp"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.OrganizationRepository = (*OrganizationRepository)(nil)

// OrganizationRepository handles MongoDB operations for Organization
type OrganizationRepository struct {
	collection *mongo.Collection
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *mongo.Database) *OrganizationRepository {
	return &OrganizationRepository{
		collection: db.Collection("organizations"),
	}
}

// Create inserts a new organization
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	org.ID = primitive.NewObjectID()
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	return insertOne(ctx, r.collection, org)
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	return findOne[models.Organization](ctx, r.collection, bson.M{"_id": id})
}

// FindByName matches the name case-insensitively
func (r *OrganizationRepository) FindByName(ctx context.Context, name string) (*models.Organization, error) {
	pattern := "^" + regexp.QuoteMeta(name) + "$"
	return findOne[models.Organization](ctx, r.collection, bson.M{"name": primitive.Regex{Pattern: pattern, Options: "i"}})
}

func (r *OrganizationRepository) FindAll(ctx context.Context) ([]*models.Organization, error) {
	return findMany[models.Organization](ctx, r.collection, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	org.UpdatedAt = time.Now()
	return replaceByID(ctx, r.collection, org.ID, org)
}

func (r *OrganizationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id)
}
