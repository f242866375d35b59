package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/logger"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"github.com/ArowuTest/orgfees-backend/internal/utils"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionService records and reports student payments
type TransactionService struct {
	orgRepo  repositories.OrganizationRepository
	userRepo repositories.UserRepository
	terms    repositories.TermResolver
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	orgRepo repositories.OrganizationRepository,
	userRepo repositories.UserRepository,
	terms repositories.TermResolver,
) *TransactionService {
	return &TransactionService{orgRepo: orgRepo, userRepo: userRepo, terms: terms}
}

// GetTransactions populates, filters, sorts and paginates the term's transactions
func (s *TransactionService) GetTransactions(ctx context.Context, term models.SchoolTerm, actor *models.Actor, q models.ListQuery) (models.Page[*models.TransactionDetail], error) {
	details, err := s.details(ctx, term, actor)
	if err != nil {
		return models.Page[*models.TransactionDetail]{}, err
	}
	return applyQuery(details, q, transactionView), nil
}

func (s *TransactionService) GetTransactionByID(ctx context.Context, term models.SchoolTerm, actor *models.Actor, id string) (*models.TransactionDetail, error) {
	txID, err := parseID(id, "transaction")
	if err != nil {
		return nil, err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	tx, err := repos.Transactions.FindByID(ctx, txID)
	if err != nil {
		return nil, repoError(err, "transaction")
	}
	return s.detail(ctx, repos, actor, tx)
}

// CreateTransaction records a payment
func (s *TransactionService) CreateTransaction(ctx context.Context, term models.SchoolTerm, actor *models.Actor, req *models.TransactionRequest) (*models.TransactionDetail, error) {
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	p, err := resolvePayment(ctx, s.orgRepo, repos, actor, req.Student, req.Category)
	if err != nil {
		return nil, err
	}
	tx, err := s.record(ctx, term, repos, actor, p, req.Amount, req.Date, req.Remarks, nil)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, repos, actor, tx)
}

// record checks the amount and inserts a transaction for an already resolved payment
func (s *TransactionService) record(
	ctx context.Context,
	term models.SchoolTerm,
	repos *repositories.TermRepositories,
	actor *models.Actor,
	p *payment,
	amount models.Money,
	date *time.Time,
	remarks string,
	prelisting *primitive.ObjectID,
) (*models.Transaction, error) {
	if err := p.checkAmount(ctx, repos, amount, primitive.NilObjectID); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		Student:    p.student.ID,
		Category:   p.category.ID,
		Amount:     models.MoneyFromDecimal(amount.Round(2)),
		Remarks:    strings.TrimSpace(remarks),
		ReceiptNo:  newReceiptNo(term),
		Prelisting: prelisting,
		CreatedBy:  actor.ID,
	}
	if date != nil {
		tx.Date = *date
	}
	if err := repos.Transactions.Create(ctx, tx); err != nil {
		return nil, repoError(err, "receipt number")
	}

	logger.Info().
		Str("term", term.Key()).
		Str("receipt", tx.ReceiptNo).
		Str("student", p.student.StudentID).
		Str("category", p.category.Code).
		Str("amount", tx.Amount.StringFixed(2)).
		Msg("Transaction recorded")
	return tx, nil
}

// UpdateTransaction edits a payment, re-checking every payment rule as if it were new
func (s *TransactionService) UpdateTransaction(ctx context.Context, term models.SchoolTerm, actor *models.Actor, id string, req *models.TransactionRequest) (*models.TransactionDetail, error) {
	txID, err := parseID(id, "transaction")
	if err != nil {
		return nil, err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	tx, err := repos.Transactions.FindByID(ctx, txID)
	if err != nil {
		return nil, repoError(err, "transaction")
	}
	if err := s.checkScope(ctx, repos, actor, tx.Category); err != nil {
		return nil, err
	}
	if err := apperrors.Assert(tx.Prelisting == nil || (req.Student == tx.Student.Hex() && req.Category == tx.Category.Hex()),
		http.StatusBadRequest, "the student and category of a confirmed prelisting cannot change"); err != nil {
		return nil, err
	}

	p, err := resolvePayment(ctx, s.orgRepo, repos, actor, req.Student, req.Category)
	if err != nil {
		return nil, err
	}
	if err := p.checkAmount(ctx, repos, req.Amount, tx.ID); err != nil {
		return nil, err
	}

	tx.Student = p.student.ID
	tx.Category = p.category.ID
	tx.Amount = models.MoneyFromDecimal(req.Amount.Round(2))
	tx.Remarks = strings.TrimSpace(req.Remarks)
	if req.Date != nil {
		tx.Date = *req.Date
	}
	if err := repos.Transactions.Update(ctx, tx); err != nil {
		return nil, repoError(err, "transaction")
	}
	return s.detail(ctx, repos, actor, tx)
}

// DeleteTransaction deletes a payment. A prelisting it confirmed goes back to pending.
func (s *TransactionService) DeleteTransaction(ctx context.Context, term models.SchoolTerm, actor *models.Actor, id string) error {
	txID, err := parseID(id, "transaction")
	if err != nil {
		return err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return err
	}
	tx, err := repos.Transactions.FindByID(ctx, txID)
	if err != nil {
		return repoError(err, "transaction")
	}
	if err := s.checkScope(ctx, repos, actor, tx.Category); err != nil {
		return err
	}

	if err := repos.Transactions.Delete(ctx, tx.ID); err != nil {
		return repoError(err, "transaction")
	}

	if tx.Prelisting != nil {
		p, err := repos.Prelistings.FindByID(ctx, *tx.Prelisting)
		if err == nil && p.Status == models.PrelistingConfirmed {
			p.Status = models.PrelistingPending
			p.Transaction = nil
			if err := repos.Prelistings.Update(ctx, p); err != nil {
				if !repositories.IsDuplicate(err) {
					return apperrors.Internal(err)
				}
				// Another pending prelisting exists for the pair
				p.Status = models.PrelistingCancelled
				if err := repos.Prelistings.Update(ctx, p); err != nil {
					return apperrors.Internal(err)
				}
			}
		}
	}
	logger.Info().Str("term", term.Key()).Str("receipt", tx.ReceiptNo).Msg("Transaction deleted")
	return nil
}

// Summary totals the term's transactions per category
func (s *TransactionService) Summary(ctx context.Context, term models.SchoolTerm, actor *models.Actor) ([]models.CategorySummary, error) {
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	l, err := loadLookup(ctx, s.orgRepo, repos)
	if err != nil {
		return nil, err
	}
	txs, err := repos.Transactions.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	counts := make(map[primitive.ObjectID]int)
	collected := make(map[primitive.ObjectID]decimal.Decimal)
	for _, tx := range txs {
		counts[tx.Category]++
		collected[tx.Category] = collected[tx.Category].Add(tx.Amount.Decimal)
	}

	categories, err := repos.Categories.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	out := make([]models.CategorySummary, 0, len(categories))
	for _, c := range categories {
		if !inScope(actor, c.Organization) {
			continue
		}
		out = append(out, models.CategorySummary{
			Category:     c,
			Organization: l.organizationOf(c),
			Count:        counts[c.ID],
			Collected:    models.MoneyFromDecimal(collected[c.ID]),
			Fee:          c.Fee,
		})
	}
	return out, nil
}

// ExportTransactions renders every transaction matching q, ignoring pagination
func (s *TransactionService) ExportTransactions(ctx context.Context, term models.SchoolTerm, actor *models.Actor, q models.ListQuery) (utils.Table, error) {
	details, err := s.details(ctx, term, actor)
	if err != nil {
		return utils.Table{}, err
	}
	rows := filterQuery(details, q, transactionView)

	table := utils.Table{
		Title:    "Transactions",
		Subtitle: "School term: " + term.String() + ", generated " + time.Now().Format("2006-01-02 15:04"),
		Header:   []string{"Receipt No.", "Date", "Student ID", "Name", "Course", "Organization", "Category", "Amount"},
		Widths:   []float64{38, 22, 28, 55, 22, 42, 42, 28},
	}
	total := decimal.Zero
	for _, d := range rows {
		total = total.Add(d.Amount.Decimal)
		row := []string{d.ReceiptNo, d.Date.Format("2006-01-02"), "", "", "", "", "", d.Amount.StringFixed(2)}
		if d.Student != nil {
			row[2], row[3], row[4] = d.Student.StudentID, d.Student.FullName(), d.Student.Course
		}
		if d.Organization != nil {
			row[5] = d.Organization.Name
		}
		if d.Category != nil {
			row[6] = d.Category.Name
		}
		table.Rows = append(table.Rows, row)
	}
	table.Footer = []string{"", "", "", "", "", "", "Total", total.StringFixed(2)}
	return table, nil
}

// Receipt builds the official receipt of a transaction
func (s *TransactionService) Receipt(ctx context.Context, term models.SchoolTerm, actor *models.Actor, id string) (utils.Receipt, error) {
	d, err := s.GetTransactionByID(ctx, term, actor, id)
	if err != nil {
		return utils.Receipt{}, err
	}
	r := utils.Receipt{
		Number:  d.ReceiptNo,
		Date:    d.Date.Format("January 2, 2006"),
		Term:    term.String(),
		Amount:  d.Amount.StringFixed(2),
		Remarks: d.Remarks,
	}
	if d.Student != nil {
		r.StudentID, r.StudentName, r.Course = d.Student.StudentID, d.Student.FullName(), d.Student.Course
	}
	if d.Category != nil {
		r.Category = d.Category.Name
	}
	if d.Organization != nil {
		r.Organization = d.Organization.Name
	}
	if user, err := s.userRepo.FindByID(ctx, d.CreatedBy); err == nil {
		r.IssuedBy = user.FullName()
	}
	return r, nil
}

func (s *TransactionService) details(ctx context.Context, term models.SchoolTerm, actor *models.Actor) ([]*models.TransactionDetail, error) {
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	l, err := loadLookup(ctx, s.orgRepo, repos)
	if err != nil {
		return nil, err
	}
	txs, err := repos.Transactions.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]*models.TransactionDetail, 0, len(txs))
	for _, tx := range txs {
		d := populateTransaction(tx, l)
		if d.Category != nil && !inScope(actor, d.Category.Organization) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *TransactionService) detail(ctx context.Context, repos *repositories.TermRepositories, actor *models.Actor, tx *models.Transaction) (*models.TransactionDetail, error) {
	l := &lookup{
		students:   map[primitive.ObjectID]*models.Student{},
		categories: map[primitive.ObjectID]*models.Category{},
		orgs:       map[primitive.ObjectID]*models.Organization{},
	}
	if st, err := repos.Students.FindByID(ctx, tx.Student); err == nil {
		l.students[st.ID] = st
	}
	if c, err := repos.Categories.FindByID(ctx, tx.Category); err == nil {
		l.categories[c.ID] = c
		if err := apperrors.Assert(inScope(actor, c.Organization), http.StatusNotFound, "transaction not found"); err != nil {
			return nil, err
		}
		if org, err := s.orgRepo.FindByID(ctx, c.Organization); err == nil {
			l.orgs[org.ID] = org
		}
	}
	return populateTransaction(tx, l), nil
}

// checkScope hides transactions of other organizations from officers
func (s *TransactionService) checkScope(ctx context.Context, repos *repositories.TermRepositories, actor *models.Actor, categoryID primitive.ObjectID) error {
	if actor.ScopedTo() == nil {
		return nil
	}
	c, err := repos.Categories.FindByID(ctx, categoryID)
	if err != nil {
		return repoError(err, "category")
	}
	return apperrors.Assert(inScope(actor, c.Organization), http.StatusForbidden,
		"you can only manage payments of your own organization")
}

func populateTransaction(tx *models.Transaction, l *lookup) *models.TransactionDetail {
	category := l.categories[tx.Category]
	return &models.TransactionDetail{
		ID:           tx.ID,
		Student:      l.students[tx.Student],
		Category:     category,
		Organization: l.organizationOf(category),
		Amount:       tx.Amount,
		Date:         tx.Date,
		Remarks:      tx.Remarks,
		ReceiptNo:    tx.ReceiptNo,
		Prelisting:   tx.Prelisting,
		CreatedBy:    tx.CreatedBy,
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
}

func transactionView(d *models.TransactionDetail) listView {
	return listView{
		student:   d.Student,
		category:  d.Category,
		amount:    d.Amount,
		date:      d.Date,
		createdAt: d.CreatedAt,
	}
}
