package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.StudentRepository     = (*StudentRepository)(nil)
	_ repositories.CategoryRepository    = (*CategoryRepository)(nil)
	_ repositories.TransactionRepository = (*TransactionRepository)(nil)
	_ repositories.PrelistingRepository  = (*PrelistingRepository)(nil)
	_ repositories.TermResolver          = (*TermResolver)(nil)
)

// StudentRepository keeps the students of one term in memory
type StudentRepository struct {
	rows *table[models.Student]
}

func NewStudentRepository() *StudentRepository {
	return &StudentRepository{rows: newTable(func(s *models.Student) primitive.ObjectID { return s.ID }, nil)}
}

func sameStudentID(a, b *models.Student) bool { return a.StudentID == b.StudentID }

func (r *StudentRepository) Create(_ context.Context, student *models.Student) error {
	stamp(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	student.StudentID = strings.TrimSpace(student.StudentID)
	return r.rows.insert(student, sameStudentID)
}

func (r *StudentRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Student, error) {
	return r.rows.get(id)
}

func (r *StudentRepository) FindByStudentID(_ context.Context, studentID string) (*models.Student, error) {
	studentID = strings.TrimSpace(studentID)
	return r.rows.first(func(s *models.Student) bool { return s.StudentID == studentID })
}

func (r *StudentRepository) FindAll(_ context.Context) ([]*models.Student, error) {
	return r.rows.filter(nil, func(a, b *models.Student) bool {
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	}), nil
}

func (r *StudentRepository) Update(_ context.Context, student *models.Student) error {
	student.StudentID = strings.TrimSpace(student.StudentID)
	student.UpdatedAt = time.Now()
	return r.rows.replace(student, sameStudentID)
}

func (r *StudentRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.rows.remove(id)
}

func (r *StudentRepository) Count(_ context.Context) (int64, error) {
	return r.rows.count(nil), nil
}

// CategoryRepository keeps the fee categories of one term in memory
type CategoryRepository struct {
	rows *table[models.Category]
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{rows: newTable(func(c *models.Category) primitive.ObjectID { return c.ID }, nil)}
}

func sameCategoryCode(a, b *models.Category) bool {
	return a.Organization == b.Organization && a.Code == b.Code
}

func byCategoryName(a, b *models.Category) bool { return a.Name < b.Name }

func (r *CategoryRepository) Create(_ context.Context, category *models.Category) error {
	stamp(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	return r.rows.insert(category, sameCategoryCode)
}

func (r *CategoryRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	return r.rows.get(id)
}

func (r *CategoryRepository) FindAll(_ context.Context) ([]*models.Category, error) {
	return r.rows.filter(nil, byCategoryName), nil
}

func (r *CategoryRepository) FindByOrganization(_ context.Context, orgID primitive.ObjectID) ([]*models.Category, error) {
	return r.rows.filter(func(c *models.Category) bool { return c.Organization == orgID }, byCategoryName), nil
}

func (r *CategoryRepository) Update(_ context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now()
	return r.rows.replace(category, sameCategoryCode)
}

func (r *CategoryRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.rows.remove(id)
}

func (r *CategoryRepository) CountByOrganization(_ context.Context, orgID primitive.ObjectID) (int64, error) {
	return r.rows.count(func(c *models.Category) bool { return c.Organization == orgID }), nil
}

// TransactionRepository keeps the payments of one term in memory
type TransactionRepository struct {
	rows *table[models.Transaction]
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{rows: newTable(
		func(t *models.Transaction) primitive.ObjectID { return t.ID },
		func(t *models.Transaction) *models.Transaction {
			c := *t
			c.Prelisting = cloneIDPtr(t.Prelisting)
			return &c
		},
	)}
}

func sameReceipt(a, b *models.Transaction) bool { return a.ReceiptNo == b.ReceiptNo }

func byTransactionDate(a, b *models.Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (r *TransactionRepository) Create(_ context.Context, tx *models.Transaction) error {
	stamp(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if tx.Date.IsZero() {
		tx.Date = tx.CreatedAt
	}
	return r.rows.insert(tx, sameReceipt)
}

func (r *TransactionRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	return r.rows.get(id)
}

func (r *TransactionRepository) FindAll(_ context.Context) ([]*models.Transaction, error) {
	return r.rows.filter(nil, byTransactionDate), nil
}

func (r *TransactionRepository) FindByStudent(_ context.Context, studentID primitive.ObjectID) ([]*models.Transaction, error) {
	return r.rows.filter(func(t *models.Transaction) bool { return t.Student == studentID }, byTransactionDate), nil
}

func (r *TransactionRepository) FindByStudentAndCategory(_ context.Context, studentID, categoryID primitive.ObjectID) ([]*models.Transaction, error) {
	return r.rows.filter(func(t *models.Transaction) bool {
		return t.Student == studentID && t.Category == categoryID
	}, byTransactionDate), nil
}

func (r *TransactionRepository) FindByCategory(_ context.Context, categoryID primitive.ObjectID) ([]*models.Transaction, error) {
	return r.rows.filter(func(t *models.Transaction) bool { return t.Category == categoryID }, byTransactionDate), nil
}

func (r *TransactionRepository) Update(_ context.Context, tx *models.Transaction) error {
	tx.UpdatedAt = time.Now()
	return r.rows.replace(tx, sameReceipt)
}

func (r *TransactionRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.rows.remove(id)
}

func (r *TransactionRepository) CountByCategory(_ context.Context, categoryID primitive.ObjectID) (int64, error) {
	return r.rows.count(func(t *models.Transaction) bool { return t.Category == categoryID }), nil
}

func (r *TransactionRepository) CountByStudent(_ context.Context, studentID primitive.ObjectID) (int64, error) {
	return r.rows.count(func(t *models.Transaction) bool { return t.Student == studentID }), nil
}

// PrelistingRepository keeps the prelistings of one term in memory
type PrelistingRepository struct {
	rows *table[models.Prelisting]
}

func NewPrelistingRepository() *PrelistingRepository {
	return &PrelistingRepository{rows: newTable(
		func(p *models.Prelisting) primitive.ObjectID { return p.ID },
		func(p *models.Prelisting) *models.Prelisting {
			c := *p
			c.Transaction = cloneIDPtr(p.Transaction)
			return &c
		},
	)}
}

func bothPending(a, b *models.Prelisting) bool {
	return a.Status == models.PrelistingPending && b.Status == models.PrelistingPending &&
		a.Student == b.Student && a.Category == b.Category
}

func (r *PrelistingRepository) Create(_ context.Context, p *models.Prelisting) error {
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if p.Status == "" {
		p.Status = models.PrelistingPending
	}
	return r.rows.insert(p, bothPending)
}

func (r *PrelistingRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Prelisting, error) {
	return r.rows.get(id)
}

func (r *PrelistingRepository) FindAll(_ context.Context) ([]*models.Prelisting, error) {
	return r.rows.filter(nil, func(a, b *models.Prelisting) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (r *PrelistingRepository) FindPending(_ context.Context, studentID, categoryID primitive.ObjectID) (*models.Prelisting, error) {
	return r.rows.first(func(p *models.Prelisting) bool {
		return p.Student == studentID && p.Category == categoryID && p.Status == models.PrelistingPending
	})
}

func (r *PrelistingRepository) Update(_ context.Context, p *models.Prelisting) error {
	p.UpdatedAt = time.Now()
	return r.rows.replace(p, bothPending)
}

func (r *PrelistingRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.rows.remove(id)
}

func (r *PrelistingRepository) CountByCategory(_ context.Context, categoryID primitive.ObjectID) (int64, error) {
	return r.rows.count(func(p *models.Prelisting) bool { return p.Category == categoryID }), nil
}

func (r *PrelistingRepository) CountByStudent(_ context.Context, studentID primitive.ObjectID) (int64, error) {
	return r.rows.count(func(p *models.Prelisting) bool { return p.Student == studentID }), nil
}

// TermResolver hands out one independent set of in-memory repositories per term
type TermResolver struct {
	mu    sync.Mutex
	terms map[string]*repositories.TermRepositories
}

func NewTermResolver() *TermResolver {
	return &TermResolver{terms: make(map[string]*repositories.TermRepositories)}
}

func (r *TermResolver) ForTerm(_ context.Context, term models.SchoolTerm) (*repositories.TermRepositories, error) {
	if err := term.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	repos, ok := r.terms[term.Key()]
	if !ok {
		repos = &repositories.TermRepositories{
			Students:     NewStudentRepository(),
			Categories:   NewCategoryRepository(),
			Transactions: NewTransactionRepository(),
			Prelistings:  NewPrelistingRepository(),
		}
		r.terms[term.Key()] = repos
	}
	return repos, nil
}
