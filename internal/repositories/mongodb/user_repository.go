package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure UserRepository implements the interface
var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository handles MongoDB operations for User
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Roles == nil {
		user.Roles = []primitive.ObjectID{}
	}
	return insertOne(ctx, r.collection, user)
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, r.collection, bson.M{"_id": id})
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.collection, bson.M{"email": strings.ToLower(email)})
}

// FindAll retrieves all users
func (r *UserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	return findMany[models.User](ctx, r.collection, bson.M{}, byNewest())
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	user.UpdatedAt = time.Now()
	return replaceByID(ctx, r.collection, user.ID, user)
}

// Delete deletes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id)
}

// CountByRole counts the users holding an RBAC role
func (r *UserRepository) CountByRole(ctx context.Context, roleID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"roles": roleID})
}

// CountByOrganization counts the officers of an organization
func (r *UserRepository) CountByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"organization": orgID})
}

// Count gets the total number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
