package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "USER"
	RoleOrganizer Role = "ORGANIZER"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	ReferralCode string
	CreatedAt    time.Time
}

type Category struct {
	ID   uuid.UUID
	Name string
}

type Location struct {
	ID   uuid.UUID
	Name string
}

type EventType string

const (
	EventFree EventType = "FREE"
	EventPaid EventType = "PAID"
)

// Event carries the seat ledger: AvailableSeat is the capacity resource
// contended by concurrent purchases and must never go negative.
type Event struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Type          EventType
	Price         int64
	StartDate     time.Time
	AvailableSeat int
	OrganizerID   uuid.UUID
	CategoryID    uuid.UUID
	LocationID    uuid.UUID
	CreatedAt     time.Time
}

type PromotionType string

const (
	PromotionDiscount PromotionType = "DISCOUNT"
	PromotionReferral PromotionType = "REFERRAL"
)

// Promotion is a discount code bound to exactly one event. UsedCount only
// ever grows and stays within UsageLimit; both are enforced in the same
// transaction as the purchase that consumes the code.
type Promotion struct {
	ID           uuid.UUID
	EventID      uuid.UUID
	Name         string
	ReferralCode string
	Discount     int64
	Type         PromotionType
	UsageLimit   int
	UsedCount    int
	IsActive     bool
	CreatedAt    time.Time
}

type PaymentStatus string

const (
	PaymentPending      PaymentStatus = "PENDING"
	PaymentVerification PaymentStatus = "VERIFICATION"
	PaymentCompleted    PaymentStatus = "COMPLETED"
)

// Transaction records one purchase covering 1..N tickets. Amounts are in
// minor currency units. ReferralCode and PromotionID are set only when a
// promotion was applied; PaymentProof is set on proof upload.
type Transaction struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	EventID       uuid.UUID
	TotalAmount   int64
	Discount      int64
	ReferralCode  *string
	PromotionID   *uuid.UUID
	PaymentStatus PaymentStatus
	PaymentProof  *string
	CreatedAt     time.Time
}

// Ticket is one reserved seat, always tied to exactly one transaction.
type Ticket struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	TransactionID uuid.UUID
	UserID        uuid.UUID
	CreatedAt     time.Time
}

type Rating struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   *string
	CreatedAt time.Time
}
