package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is a student group. Departments lists the course codes it covers;
// an empty list means the organization is university-wide.
type Organization struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string               `bson:"name" json:"name"`
	Acronym     string               `bson:"acronym" json:"acronym"`
	Departments []string             `bson:"departments" json:"departments"`
	Officers    []primitive.ObjectID `bson:"officers" json:"officers"`
	Active      bool                 `bson:"active" json:"active"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// CoversCourse reports whether a student taking course may pay this organization's fees
func (o *Organization) CoversCourse(course string) bool {
	if len(o.Departments) == 0 {
		return true
	}
	course = strings.TrimSpace(course)
	for _, d := range o.Departments {
		if strings.EqualFold(strings.TrimSpace(d), course) {
			return true
		}
	}
	return false
}

// OrganizationRequest is the payload of POST/PUT /organization
type OrganizationRequest struct {
	Name        string   `json:"name" binding:"required,notblank"`
	Acronym     string   `json:"acronym" binding:"omitempty,max=16"`
	Departments []string `json:"departments" binding:"omitempty,dive,notblank"`
	Officers    []string `json:"officers" binding:"omitempty,dive,objectid"`
	Active      *bool    `json:"active"`
}
