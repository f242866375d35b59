package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListQuery holds the filters of the transaction and prelisting list endpoints.
// Zero values mean "any".
type ListQuery struct {
	Search       string
	Category     primitive.ObjectID
	Organization primitive.ObjectID
	Course       string
	YearLevel    int
	Status       string
	From         time.Time
	To           time.Time
	Sort         string
	Page         int
	Limit        int
}

// SortableFields are the values accepted by ListQuery.Sort, optionally prefixed with "-"
var SortableFields = []string{"date", "amount", "student", "category", "createdAt"}
