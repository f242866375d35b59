package mongodb

import (
	"context"
	"sync"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"github.com/ArowuTest/orgfees-backend/pkg/mongodb"
	"github.com/pkg/errors"
)

var _ repositories.TermResolver = (*TermResolver)(nil)

// TermResolver binds the term repositories to the database of each school term
type TermResolver struct {
	client *mongodb.Client

	mu    sync.RWMutex
	repos map[string]*repositories.TermRepositories
}

// NewTermResolver creates a TermResolver on top of client
func NewTermResolver(client *mongodb.Client) *TermResolver {
	return &TermResolver{
		client: client,
		repos:  make(map[string]*repositories.TermRepositories),
	}
}

// ForTerm returns the repositories of term, opening and indexing its database on first use
func (r *TermResolver) ForTerm(ctx context.Context, term models.SchoolTerm) (*repositories.TermRepositories, error) {
	if err := term.Validate(); err != nil {
		return nil, err
	}
	key := term.Key()

	r.mu.RLock()
	repos, ok := r.repos[key]
	r.mu.RUnlock()
	if ok {
		return repos, nil
	}

	db, err := r.client.TermDatabase(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "opening term %s", term)
	}

	repos = &repositories.TermRepositories{
		Students:     NewStudentRepository(db),
		Categories:   NewCategoryRepository(db),
		Transactions: NewTransactionRepository(db),
		Prelistings:  NewPrelistingRepository(db),
	}

	r.mu.Lock()
	if existing, ok := r.repos[key]; ok {
		repos = existing
	} else {
		r.repos[key] = repos
	}
	r.mu.Unlock()
	return repos, nil
}
