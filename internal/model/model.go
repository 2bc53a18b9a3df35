package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

type RecordStatus string

const (
	StatusBorrowed RecordStatus = "BORROWED"
	StatusReturned RecordStatus = "RETURNED"
)

type FineType string

const (
	FineLateReturn FineType = "LATE_RETURN"
	FineLostBook   FineType = "LOST_BOOK"
)

type FineStatus string

const (
	FinePending     FineStatus = "PENDING"
	FinePartialPaid FineStatus = "PARTIAL_PAID"
	FinePaid        FineStatus = "PAID"
	FineWaived      FineStatus = "WAIVED"
)

type User struct {
	ID                string          `json:"id" db:"id"`
	Username          string          `json:"username" db:"username"`
	Email             string          `json:"email" db:"email"`
	TotalFinesOwed    decimal.Decimal `json:"totalFinesOwed" db:"total_fines_owed"`
	IsRestricted      bool            `json:"isRestricted" db:"is_restricted"`
	RestrictionReason *string         `json:"restrictionReason,omitempty" db:"restriction_reason"`
	RestrictedAt      *time.Time      `json:"restrictedAt,omitempty" db:"restricted_at"`
}

type Book struct {
	ID               string              `json:"id" db:"id"`
	Title            string              `json:"title" db:"title"`
	Author           string              `json:"author" db:"author"`
	TotalCopies      int                 `json:"totalCopies" db:"total_copies"`
	AvailableCopies  int                 `json:"availableCopies" db:"available_copies"`
	ReserveOnRequest bool                `json:"reserveOnRequest" db:"reserve_on_request"`
	Price            decimal.NullDecimal `json:"price,omitempty" db:"price"`
}

type BorrowRequest struct {
	ID               string        `json:"id" db:"id"`
	UserID           string        `json:"userId" db:"user_id"`
	BookID           string        `json:"bookId" db:"book_id"`
	Status           RequestStatus `json:"status" db:"status"`
	IdempotencyKey   *string       `json:"idempotencyKey,omitempty" db:"idempotency_key"`
	ReservedOnCreate bool          `json:"-" db:"reserved_on_create"`
	BorrowRecordID   *string       `json:"borrowRecordId,omitempty" db:"borrow_record_id"`
	DueDate          *time.Time    `json:"dueDate,omitempty" db:"due_date"`
	ProcessedBy      *string       `json:"processedBy,omitempty" db:"processed_by"`
	ProcessingNotes  *string       `json:"processingNotes,omitempty" db:"processing_notes"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
}

type BorrowRecord struct {
	ID              string       `json:"id" db:"id"`
	UserID          string       `json:"userId" db:"user_id"`
	BookID          string       `json:"bookId" db:"book_id"`
	Status          RecordStatus `json:"status" db:"status"`
	BorrowDate      time.Time    `json:"borrowDate" db:"borrow_date"`
	DueDate         time.Time    `json:"dueDate" db:"due_date"`
	ReturnDate      *time.Time   `json:"returnDate,omitempty" db:"return_date"`
	DueSoonNotified bool         `json:"-" db:"due_soon_notified"`
	OverdueNotified bool         `json:"-" db:"overdue_notified"`
}

type ReturnRequest struct {
	ID              string        `json:"id" db:"id"`
	UserID          string        `json:"userId" db:"user_id"`
	BookID          string        `json:"bookId" db:"book_id"`
	BorrowRecordID  string        `json:"borrowRecordId" db:"borrow_record_id"`
	Status          RequestStatus `json:"status" db:"status"`
	ProcessedBy     *string       `json:"processedBy,omitempty" db:"processed_by"`
	ProcessingNotes *string       `json:"processingNotes,omitempty" db:"processing_notes"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
}

type Fine struct {
	ID             string          `json:"id" db:"id"`
	UserID         string          `json:"userId" db:"user_id"`
	BookID         string          `json:"bookId" db:"book_id"`
	BorrowRecordID string          `json:"borrowRecordId" db:"borrow_record_id"`
	FineType       FineType        `json:"fineType" db:"fine_type"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	PaidAmount     decimal.Decimal `json:"paidAmount" db:"paid_amount"`
	Status         FineStatus      `json:"status" db:"status"`
	DaysOverdue    int             `json:"daysOverdue" db:"days_overdue"`
	IsBookLost     bool            `json:"isBookLost" db:"is_book_lost"`
	Description    string          `json:"description" db:"description"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}

// Outstanding is the unpaid remainder of the fine.
func (f Fine) Outstanding() decimal.Decimal {
	return f.Amount.Sub(f.PaidAmount)
}

type FinePayment struct {
	ID               string          `json:"id" db:"id"`
	FineID           string          `json:"fineId" db:"fine_id"`
	UserID           string          `json:"userId" db:"user_id"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	PaymentReference string          `json:"paymentReference" db:"payment_reference"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

type NotificationPreference struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	BookID    string    `json:"bookId" db:"book_id"`
	Enabled   bool      `json:"enabled" db:"enabled"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type CreateBorrowRequestRequest struct {
	BookID           string `json:"bookId" validate:"required"`
	ConfirmationText string `json:"confirmationText" validate:"required"`
	IdempotencyKey   string `json:"idempotencyKey,omitempty"`
	Username         string `json:"-" validate:"required"`
}

type ProcessRequestRequest struct {
	Notes    string `json:"notes,omitempty"`
	Username string `json:"-" validate:"required"`
}

type CreateReturnRequestRequest struct {
	BorrowRecordID string `json:"borrowRecordId" validate:"required"`
	Username       string `json:"-" validate:"required"`
}

// PaymentWebhook is the payload delivered by the payment gateway.
// Only status "paid" triggers reconciliation.
type PaymentWebhook struct {
	SessionID       string          `json:"sessionId" validate:"required"`
	PaymentIntentID string          `json:"paymentIntentId"`
	AmountPaidCents int64           `json:"amountPaidCents" validate:"gte=0"`
	Status          string          `json:"status" validate:"required"`
	Metadata        WebhookMetadata `json:"metadata"`
}

type WebhookMetadata struct {
	UserID        string   `json:"userId" validate:"required"`
	TransactionID string   `json:"transactionId" validate:"required"`
	FineIDs       []string `json:"fineIds" validate:"required,min=1"`
}

// Notification is the contract handed to the dispatch collaborator.
type Notification struct {
	RecipientEmail string         `json:"recipientEmail"`
	Subject        string         `json:"subject"`
	BodyTemplate   string         `json:"bodyTemplate"`
	TemplateData   map[string]any `json:"templateData"`
}

// AuditEvent is a structured state-transition event for the audit sink.
type AuditEvent struct {
	Event      string         `json:"event"`
	EntityID   string         `json:"entityId"`
	UserID     string         `json:"userId,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	Details    map[string]any `json:"details,omitempty"`
}
