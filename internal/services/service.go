package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a variable so tests can use bcrypt.MinCost
var bcryptCost = bcrypt.DefaultCost

// SetBcryptCost overrides the password hashing cost
func SetBcryptCost(cost int) {
	bcryptCost = cost
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return string(hash), nil
}

// parseID parses a hex ObjectID from a path or payload
func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, apperrors.Newf(http.StatusBadRequest, "invalid %s id", what)
	}
	return id, nil
}

func parseIDs(hexes []string, what string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	seen := make(map[primitive.ObjectID]bool, len(hexes))
	for _, h := range hexes {
		id, err := parseID(h, what)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// repoError maps repository failures onto HTTP errors
func repoError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFound(err):
		return apperrors.NotFound(what + " not found")
	case repositories.IsDuplicate(err):
		return apperrors.Wrap(err, http.StatusConflict, what+" already exists")
	default:
		return apperrors.Internal(err)
	}
}

func termRepos(ctx context.Context, resolver repositories.TermResolver, term models.SchoolTerm) (*repositories.TermRepositories, error) {
	if err := term.Validate(); err != nil {
		return nil, apperrors.Wrap(err, http.StatusBadRequest, "invalid school term")
	}
	repos, err := resolver.ForTerm(ctx, term)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return repos, nil
}

// newReceiptNo builds "OR-<term key>-<8 upper-case hex chars>"
func newReceiptNo(term models.SchoolTerm) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "OR-" + term.Key() + "-" + strings.ToUpper(id[:8])
}

// inScope reports whether an actor restricted to an organization may touch orgID
func inScope(actor *models.Actor, orgID primitive.ObjectID) bool {
	scope := actor.ScopedTo()
	return scope == nil || *scope == orgID
}

func indexByID[T any](items []*T, id func(*T) primitive.ObjectID) map[primitive.ObjectID]*T {
	m := make(map[primitive.ObjectID]*T, len(items))
	for _, item := range items {
		m[id(item)] = item
	}
	return m
}
