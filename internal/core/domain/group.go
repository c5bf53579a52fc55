package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Group represents a named collection of members sharing expenses in one currency.
type Group struct {
	GroupID      string `json:"groupID" db:"group_id"` // Primary Key (UUID)
	Name         string `json:"name" db:"name"`
	Description  string `json:"description" db:"description"`
	CurrencyCode string `json:"currencyCode" db:"currency_code"` // ISO 4217 tag; every expense in the group uses it

	// TotalExpenses is a cached sum of all expense amounts ever recorded in
	// the group. It is only ever updated inside the same database transaction
	// as the expense mutation it tracks, never independently.
	TotalExpenses decimal.Decimal `json:"totalExpenses" db:"total_expenses"`

	AuditFields
}

// GroupRole defines the possible roles a member can have within a group.
type GroupRole string

const (
	RoleAdmin  GroupRole = "ADMIN"
	RoleMember GroupRole = "MEMBER"
)

// GroupMember represents the membership of a registered user in a group.
// Invariants: a group always has at least one admin, and the group's creator
// cannot be removed.
type GroupMember struct {
	GroupID  string    `json:"groupID"`
	UserID   string    `json:"userID"`
	FullName string    `json:"fullName"` // Denormalized for member listings
	Role     GroupRole `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// MemberKind tags a member reference as a registered user or a pending
// placeholder. Expense participants and payers may reference either; a
// pending member's references are repointed to the registered user id when
// the invitee signs up.
type MemberKind string

const (
	MemberRegistered MemberKind = "REGISTERED"
	MemberPending    MemberKind = "PENDING"
)

// MemberRef identifies a participant in a group: either a registered user
// (Kind == MemberRegistered, ID is a user id) or a pending invitee
// (Kind == MemberPending, ID is a pending member id).
type MemberRef struct {
	ID   string     `json:"id"`
	Kind MemberKind `json:"kind"`
}

// PendingMemberStatus tracks the lifecycle of a pending member placeholder.
type PendingMemberStatus string

const (
	PendingStatusPending    PendingMemberStatus = "PENDING"
	PendingStatusRegistered PendingMemberStatus = "REGISTERED"
)

// PendingMember is a placeholder identity for an invited, not-yet-registered
// participant. Upon registration it is reconciled: all of its historical
// expense participations and paid_by references are repointed to the new
// registered user id in a single transaction.
type PendingMember struct {
	PendingID   string              `json:"pendingID"` // Primary Key (UUID)
	GroupID     string              `json:"groupID"`
	Email       string              `json:"email"`
	DisplayName string              `json:"displayName"`
	Phone       *string             `json:"phone,omitempty"`
	InvitedBy   string              `json:"invitedBy"` // UserID of the inviter
	Status      PendingMemberStatus `json:"status"`
	UserID      *string             `json:"userID,omitempty"` // Set once reconciled
	AuditFields
}
