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
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.StudentRepository = (*StudentRepository)(nil)

// StudentRepository handles MongoDB operations for Student in a term database
type StudentRepository struct {
	collection *mongo.Collection
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *mongo.Database) *StudentRepository {
	return &StudentRepository{
		collection: db.Collection("students"),
	}
}

// Create inserts a new student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	student.ID = primitive.NewObjectID()
	student.StudentID = strings.TrimSpace(student.StudentID)
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	return insertOne(ctx, r.collection, student)
}

// FindByID finds a student by ID
func (r *StudentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error) {
	return findOne[models.Student](ctx, r.collection, bson.M{"_id": id})
}

// FindByStudentID finds a student by the school-issued id number
func (r *StudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	return findOne[models.Student](ctx, r.collection, bson.M{"studentId": strings.TrimSpace(studentID)})
}

// FindAll retrieves all students ordered by last name
func (r *StudentRepository) FindAll(ctx context.Context) ([]*models.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}})
	return findMany[models.Student](ctx, r.collection, bson.M{}, opts)
}

// Update updates an existing student
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.StudentID = strings.TrimSpace(student.StudentID)
	student.UpdatedAt = time.Now()
	return replaceByID(ctx, r.collection, student.ID, student)
}

// Delete deletes a student by ID
func (r *StudentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id)
}

// Count gets the total number of students in the term
func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
