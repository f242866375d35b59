package repositories

import (
	"context"
	"errors"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned by Find* methods when no document matches.
	ErrNotFound = mongo.ErrNoDocuments
	// ErrDuplicate is returned when a unique index would be violated.
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByRole(ctx context.Context, roleID primitive.ObjectID) (int64, error)
	CountByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// OrganizationRepository defines the interface for organization data operations
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error)
	FindByName(ctx context.Context, name string) (*models.Organization, error)
	FindAll(ctx context.Context) ([]*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// RoleRepository defines the interface for RBAC role data operations
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Role, error)
	FindAll(ctx context.Context) ([]*models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SessionRepository defines the interface for refresh-token sessions
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	InvalidateByUser(ctx context.Context, userID primitive.ObjectID) error
}

// StudentRepository defines the interface for student data operations
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	FindAll(ctx context.Context) ([]*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// CategoryRepository defines the interface for fee category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindAll(ctx context.Context) ([]*models.Category, error)
	FindByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error)
}

// TransactionRepository defines the interface for transaction data operations
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	FindAll(ctx context.Context) ([]*models.Transaction, error)
	FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*models.Transaction, error)
	FindByStudentAndCategory(ctx context.Context, studentID, categoryID primitive.ObjectID) ([]*models.Transaction, error)
	FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
	CountByStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error)
}

// PrelistingRepository defines the interface for prelisting data operations
type PrelistingRepository interface {
	Create(ctx context.Context, p *models.Prelisting) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prelisting, error)
	FindAll(ctx context.Context) ([]*models.Prelisting, error)
	FindPending(ctx context.Context, studentID, categoryID primitive.ObjectID) (*models.Prelisting, error)
	Update(ctx context.Context, p *models.Prelisting) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
	CountByStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error)
}

// TermRepositories are the repositories bound to one school-term database
type TermRepositories struct {
	Students     StudentRepository
	Categories   CategoryRepository
	Transactions TransactionRepository
	Prelistings  PrelistingRepository
}

// TermResolver hands out the repositories of a school term, opening its database on first use
type TermResolver interface {
	ForTerm(ctx context.Context, term models.SchoolTerm) (*TermRepositories, error)
}

// IsNotFound reports whether err means no document matched
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate reports whether err is a unique-index violation
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate) || mongo.IsDuplicateKeyError(err)
}
