// Package domain holds strongly typed identifiers shared across the scoring
// engine. Each ID is a distinct type over uuid.UUID so the compiler rejects
// cross-entity mixups (passing a loan ID where a user ID is expected).
//
// Construct IDs via the Parse* functions at trust boundaries; direct casting
// bypasses validation and is reserved for internal wiring and tests.
package domain

import (
	"github.com/google/uuid"

	dErrors "nexolend/pkg/domain-errors"
)

// UserID identifies a borrower or lender account.
type UserID uuid.UUID

// ProfileID identifies a KYC profile. A user has at most one active profile,
// but the profile is scored independently of the credit track.
type ProfileID uuid.UUID

// DocumentID identifies an uploaded KYC document.
type DocumentID uuid.UUID

// FlagID identifies a fraud flag instance.
type FlagID uuid.UUID

// EventID identifies a ledger entry.
type EventID uuid.UUID

// LoanID identifies a loan; used for event correlation only.
type LoanID uuid.UUID

// RepaymentID identifies a repayment; used for event correlation only.
type RepaymentID uuid.UUID

func parse(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

// ParseUserID validates external input into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parse(s)
	return UserID(u), err
}

// ParseProfileID validates external input into a ProfileID.
func ParseProfileID(s string) (ProfileID, error) {
	u, err := parse(s)
	return ProfileID(u), err
}

// ParseDocumentID validates external input into a DocumentID.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parse(s)
	return DocumentID(u), err
}

// ParseFlagID validates external input into a FlagID.
func ParseFlagID(s string) (FlagID, error) {
	u, err := parse(s)
	return FlagID(u), err
}

// ParseLoanID validates external input into a LoanID.
func ParseLoanID(s string) (LoanID, error) {
	u, err := parse(s)
	return LoanID(u), err
}

// ParseRepaymentID validates external input into a RepaymentID.
func ParseRepaymentID(s string) (RepaymentID, error) {
	u, err := parse(s)
	return RepaymentID(u), err
}

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id ProfileID) String() string   { return uuid.UUID(id).String() }
func (id DocumentID) String() string  { return uuid.UUID(id).String() }
func (id FlagID) String() string      { return uuid.UUID(id).String() }
func (id EventID) String() string     { return uuid.UUID(id).String() }
func (id LoanID) String() string      { return uuid.UUID(id).String() }
func (id RepaymentID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ProfileID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id FlagID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id LoanID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id RepaymentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewEventID mints a fresh ledger entry ID.
func NewEventID() EventID { return EventID(uuid.New()) }

// NewFlagID mints a fresh fraud flag ID.
func NewFlagID() FlagID { return FlagID(uuid.New()) }
