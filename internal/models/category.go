package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is a fee type of an organization, e.g. membership dues. Stored in the term database.
type Category struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Code         string             `bson:"code" json:"code"`
	Organization primitive.ObjectID `bson:"organization" json:"organization"`
	Fee          Money              `bson:"fee" json:"fee"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Active       bool               `bson:"active" json:"active"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CategoryRequest is the payload of POST/PUT /category
type CategoryRequest struct {
	Name         string `json:"name" binding:"required,notblank"`
	Code         string `json:"code" binding:"required,notblank,max=32"`
	Organization string `json:"organization" binding:"required,objectid"`
	Fee          Money  `json:"fee"`
	Description  string `json:"description"`
	Active       *bool  `json:"active"`
}

// CategorySummary aggregates the transactions of one category
type CategorySummary struct {
	Category     *Category     `json:"category"`
	Organization *Organization `json:"organization,omitempty"`
	Count        int           `json:"count"`
	Collected    Money         `json:"collected"`
	Fee          Money         `json:"fee"`
}
