package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student is enrolled in a school term. Stored in the term database.
type Student struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	StudentID  string             `bson:"studentId" json:"studentId"`
	FirstName  string             `bson:"firstName" json:"firstName"`
	MiddleName string             `bson:"middleName,omitempty" json:"middleName,omitempty"`
	LastName   string             `bson:"lastName" json:"lastName"`
	Course     string             `bson:"course" json:"course"`
	YearLevel  int                `bson:"yearLevel" json:"yearLevel"`
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FullName returns "Last, First Middle"
func (s *Student) FullName() string {
	name := s.LastName + ", " + s.FirstName
	if s.MiddleName != "" {
		name += " " + s.MiddleName
	}
	return strings.TrimSpace(name)
}

// Matches reports whether the student id or any name part contains term (case-insensitive)
func (s *Student) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{s.StudentID, s.FirstName, s.MiddleName, s.LastName, s.FirstName + " " + s.LastName, s.FullName()} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// StudentRequest is the payload of POST/PUT /student
type StudentRequest struct {
	StudentID  string `json:"studentId" binding:"required,notblank,max=32"`
	FirstName  string `json:"firstName" binding:"required,notblank"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName" binding:"required,notblank"`
	Course     string `json:"course" binding:"required,notblank"`
	YearLevel  int    `json:"yearLevel" binding:"required,min=1,max=6"`
	Email      string `json:"email" binding:"omitempty,email"`
}

// BalanceStatus describes how much of a fee a student has paid
type BalanceStatus string

const (
	BalanceUnpaid  BalanceStatus = "unpaid"
	BalancePartial BalanceStatus = "partial"
	BalancePaid    BalanceStatus = "paid"
)

// BalanceLine is one category of a student's balance sheet
type BalanceLine struct {
	Category  *Category     `json:"category"`
	Fee       Money         `json:"fee"`
	Paid      Money         `json:"paid"`
	Remaining Money         `json:"remaining"`
	Status    BalanceStatus `json:"status"`
}
