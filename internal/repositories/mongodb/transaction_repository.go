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

var _ repositories.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository handles MongoDB operations for payments in a term database
type TransactionRepository struct {
	collection *mongo.Collection
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{
		collection: db.Collection("transactions"),
	}
}

// Create inserts a new transaction. ReceiptNo must already be set.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	tx.ID = primitive.NewObjectID()
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	if tx.Date.IsZero() {
		tx.Date = tx.CreatedAt
	}
	return insertOne(ctx, r.collection, tx)
}

func (r *TransactionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	return findOne[models.Transaction](ctx, r.collection, bson.M{"_id": id})
}

// FindAll retrieves all transactions, most recent payment first
func (r *TransactionRepository) FindAll(ctx context.Context) ([]*models.Transaction, error) {
	return findMany[models.Transaction](ctx, r.collection, bson.M{}, byDate())
}

func (r *TransactionRepository) FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*models.Transaction, error) {
	return findMany[models.Transaction](ctx, r.collection, bson.M{"student": studentID}, byDate())
}

func (r *TransactionRepository) FindByStudentAndCategory(ctx context.Context, studentID, categoryID primitive.ObjectID) ([]*models.Transaction, error) {
	filter := bson.M{"student": studentID, "category": categoryID}
	return findMany[models.Transaction](ctx, r.collection, filter, byDate())
}

func (r *TransactionRepository) FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]*models.Transaction, error) {
	return findMany[models.Transaction](ctx, r.collection, bson.M{"category": categoryID}, byDate())
}

func (r *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	tx.UpdatedAt = time.Now()
	return replaceByID(ctx, r.collection, tx.ID, tx)
}

func (r *TransactionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id)
}

func (r *TransactionRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"category": categoryID})
}

func (r *TransactionRepository) CountByStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"student": studentID})
}

func byDate() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
}
