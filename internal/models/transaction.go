package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction is a payment by a student toward a category. Stored in the term database.
type Transaction struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Student    primitive.ObjectID  `bson:"student" json:"student"`
	Category   primitive.ObjectID  `bson:"category" json:"category"`
	Amount     Money               `bson:"amount" json:"amount"`
	Date       time.Time           `bson:"date" json:"date"`
	Remarks    string              `bson:"remarks,omitempty" json:"remarks,omitempty"`
	ReceiptNo  string              `bson:"receiptNo" json:"receiptNo"`
	Prelisting *primitive.ObjectID `bson:"prelisting,omitempty" json:"prelisting,omitempty"`
	CreatedBy  primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// TransactionDetail is a transaction with its references populated
type TransactionDetail struct {
	ID           primitive.ObjectID  `json:"id"`
	Student      *Student            `json:"student"`
	Category     *Category           `json:"category"`
	Organization *Organization       `json:"organization,omitempty"`
	Amount       Money               `json:"amount"`
	Date         time.Time           `json:"date"`
	Remarks      string              `json:"remarks,omitempty"`
	ReceiptNo    string              `json:"receiptNo"`
	Prelisting   *primitive.ObjectID `json:"prelisting,omitempty"`
	CreatedBy    primitive.ObjectID  `json:"createdBy"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// TransactionRequest is the payload of POST/PUT /transaction
type TransactionRequest struct {
	Student  string     `json:"student" binding:"required,objectid"`
	Category string     `json:"category" binding:"required,objectid"`
	Amount   Money      `json:"amount"`
	Date     *time.Time `json:"date"`
	Remarks  string     `json:"remarks" binding:"max=500"`
}

// PrelistingStatus is the lifecycle state of a prelisting
type PrelistingStatus string

const (
	PrelistingPending   PrelistingStatus = "pending"
	PrelistingConfirmed PrelistingStatus = "confirmed"
	PrelistingCancelled PrelistingStatus = "cancelled"
)

// Prelisting declares a student's intent to pay a category before the payment is recorded
type Prelisting struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Student     primitive.ObjectID  `bson:"student" json:"student"`
	Category    primitive.ObjectID  `bson:"category" json:"category"`
	Amount      Money               `bson:"amount" json:"amount"`
	Status      PrelistingStatus    `bson:"status" json:"status"`
	Transaction *primitive.ObjectID `bson:"transaction,omitempty" json:"transaction,omitempty"`
	Remarks     string              `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedBy   primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// PrelistingDetail is a prelisting with its references populated
type PrelistingDetail struct {
	ID           primitive.ObjectID  `json:"id"`
	Student      *Student            `json:"student"`
	Category     *Category           `json:"category"`
	Organization *Organization       `json:"organization,omitempty"`
	Amount       Money               `json:"amount"`
	Status       PrelistingStatus    `json:"status"`
	Transaction  *primitive.ObjectID `json:"transaction,omitempty"`
	Remarks      string              `json:"remarks,omitempty"`
	CreatedBy    primitive.ObjectID  `json:"createdBy"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// PrelistingRequest is the payload of POST/PUT /prelisting
type PrelistingRequest struct {
	Student  string `json:"student" binding:"required,objectid"`
	Category string `json:"category" binding:"required,objectid"`
	Amount   Money  `json:"amount"`
	Remarks  string `json:"remarks" binding:"max=500"`
}

// ConfirmPrelistingRequest is the optional payload of POST /prelisting/:id/confirm
type ConfirmPrelistingRequest struct {
	Amount  *Money     `json:"amount"`
	Date    *time.Time `json:"date"`
	Remarks string     `json:"remarks" binding:"max=500"`
}
