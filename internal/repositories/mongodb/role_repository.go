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

var _ repositories.RoleRepository = (*RoleRepository)(nil)

// RoleRepository handles MongoDB operations for RBAC roles
type RoleRepository struct {
	collection *mongo.Collection
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{
		collection: db.Collection("roles"),
	}
}

func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	role.ID = primitive.NewObjectID()
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt
	return insertOne(ctx, r.collection, role)
}

func (r *RoleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Role, error) {
	return findOne[models.Role](ctx, r.collection, bson.M{"_id": id})
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	return findOne[models.Role](ctx, r.collection, bson.M{"name": name})
}

// FindByIDs returns the roles among ids that exist; unknown ids are ignored
func (r *RoleRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Role, error) {
	if len(ids) == 0 {
		return []*models.Role{}, nil
	}
	return findMany[models.Role](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *RoleRepository) FindAll(ctx context.Context) ([]*models.Role, error) {
	return findMany[models.Role](ctx, r.collection, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *RoleRepository) Update(ctx context.Context, role *models.Role) error {
	role.UpdatedAt = time.Now()
	return replaceByID(ctx, r.collection, role.ID, role)
}

func (r *RoleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id)
}
