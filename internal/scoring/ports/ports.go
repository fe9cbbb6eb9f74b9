// Package ports defines the collaborator interfaces the scoring engine
// consumes. All inputs arrive as plain structured values fetched by the
// orchestrator before the pure scoring math runs.
package ports

import (
	"context"
	"time"

	id "nexolend/pkg/domain"
)

// RepaymentStatus mirrors the repayment lifecycle states relevant to scoring.
type RepaymentStatus string

const (
	RepaymentPaid    RepaymentStatus = "PAID"
	RepaymentOverdue RepaymentStatus = "OVERDUE"
	RepaymentPending RepaymentStatus = "PENDING"
)

// RepaymentRecord is one installment outcome for a borrower.
type RepaymentRecord struct {
	ID          id.RepaymentID
	LoanID      id.LoanID
	Status      RepaymentStatus
	DaysOverdue int
	PaidAmount  int64
}

// LoanStatus mirrors the loan lifecycle states relevant to scoring.
type LoanStatus string

const (
	LoanActive    LoanStatus = "ACTIVE"
	LoanFunding   LoanStatus = "FUNDING"
	LoanCompleted LoanStatus = "COMPLETED"
	LoanDefaulted LoanStatus = "DEFAULTED"
)

// LoanRecord is one loan of a borrower.
type LoanRecord struct {
	ID              id.LoanID
	Status          LoanStatus
	RequestedAmount int64
}

// KYCStatus is the verification state of a borrower's KYC profile.
type KYCStatus string

const (
	KYCNotSubmitted KYCStatus = "NOT_SUBMITTED"
	KYCPending      KYCStatus = "PENDING"
	KYCApproved     KYCStatus = "APPROVED"
	KYCRejected     KYCStatus = "REJECTED"
)

// ProfileRecord carries the KYC profile and account data the scorers read.
type ProfileRecord struct {
	ProfileID id.ProfileID
	UserID    id.UserID
	Status    KYCStatus

	FullName      string
	Gender        string
	Nationality   string
	DateOfBirth   *time.Time
	Address       string
	City          string
	Occupation    string
	EmployerName  string
	MonthlyIncome *int64

	IDCardNumber     string
	IDCardExpiryDate *time.Time

	BankName          string
	BankAccountNumber string
	BankAccountHolder string

	Email         string
	EmailVerified bool
	Phone         string
	PhoneVerified bool

	// MemberSince is the account creation time, used for history length.
	MemberSince time.Time

	// Submission metadata for behavior signals.
	SubmittedAt        *time.Time
	SubmissionDuration time.Duration
	SubmissionIP       string
	DeviceFingerprint  string
}

// DocumentType classifies an uploaded KYC document.
type DocumentType string

const (
	DocumentIDCardFront   DocumentType = "ID_CARD_FRONT"
	DocumentIDCardBack    DocumentType = "ID_CARD_BACK"
	DocumentSelfie        DocumentType = "SELFIE"
	DocumentIncomeProof   DocumentType = "INCOME_PROOF"
	DocumentBankStatement DocumentType = "BANK_STATEMENT"
	DocumentOther         DocumentType = "OTHER"
)

// DocumentAnalysis carries the vision/OCR collaborator's verdicts for one
// document. All confidences are in [0,1].
type DocumentAnalysis struct {
	ImageQuality    float64
	OCRAccuracy     float64
	Sharpness       float64
	Authenticity    float64
	FaceQuality     float64
	DataConsistency float64

	OCRConfidence       float64
	OCRExtractedName    string
	OCRExtractedID      string
	OCRExtractedDOB     string
	Expired             bool
	FacesDetected       int
	FaceMatchSimilarity float64
	// HasFaceMatch marks whether a face comparison was performed at all
	// (selfie vs ID photo); a zero similarity alone is ambiguous.
	HasFaceMatch bool
}

// DocumentRecord is one uploaded KYC document with its analysis.
type DocumentRecord struct {
	ID             id.DocumentID
	ProfileID      id.ProfileID
	Type           DocumentType
	FileName       string
	Hash           string
	PerceptualHash string
	ExtractedID    string
	Analysis       *DocumentAnalysis
}

// IPReputation carries categorical network signals for an address.
type IPReputation struct {
	Known       bool
	Blacklisted bool
	VPN         bool
}

// DeviceReputation carries categorical signals for a device fingerprint.
type DeviceReputation struct {
	Known           bool
	FraudAssociated bool
}

// DuplicateMatch is evidence that a document or identifier already exists
// under another profile. It is consumed by the fraud evaluator, never a
// score by itself.
type DuplicateMatch struct {
	MatchedProfileID id.ProfileID
	MatchType        string // EXACT_HASH, SAME_ID_NUMBER, PERCEPTUAL
	Similarity       float64
}

// ScoreNotification is published after each committed snapshot so downstream
// loan and notification services can react.
type ScoreNotification struct {
	SubjectID string    `json:"subject_id"`
	Track     string    `json:"track"`
	OldScore  int       `json:"old_score"`
	NewScore  int       `json:"new_score"`
	Tier      string    `json:"tier"`
	ChangedAt time.Time `json:"changed_at"`
}

// RepaymentSource provides a borrower's installment outcomes.
type RepaymentSource interface {
	ListByBorrower(ctx context.Context, userID id.UserID) ([]RepaymentRecord, error)
}

// LoanSource provides a borrower's loans.
type LoanSource interface {
	ListByBorrower(ctx context.Context, userID id.UserID) ([]LoanRecord, error)
}

// ProfileSource provides KYC profile and account data.
type ProfileSource interface {
	GetByProfileID(ctx context.Context, profileID id.ProfileID) (*ProfileRecord, error)
	GetByUserID(ctx context.Context, userID id.UserID) (*ProfileRecord, error)
}

// DocumentSource provides a profile's analyzed documents.
type DocumentSource interface {
	ListByProfile(ctx context.Context, profileID id.ProfileID) ([]DocumentRecord, error)
}

// ReputationSource answers device and network trust lookups.
type ReputationSource interface {
	CheckIP(ctx context.Context, ip string) (IPReputation, error)
	CheckDevice(ctx context.Context, fingerprint string) (DeviceReputation, error)
}

// DuplicateIndex answers cross-profile duplicate lookups and accepts new
// documents for indexing.
type DuplicateIndex interface {
	FindByHash(ctx context.Context, hash string, exclude id.ProfileID) ([]DuplicateMatch, error)
	FindByIDNumber(ctx context.Context, idNumber string, exclude id.ProfileID) ([]DuplicateMatch, error)
	FindSimilar(ctx context.Context, perceptualHash string, exclude id.ProfileID) ([]DuplicateMatch, error)
	Index(ctx context.Context, doc DocumentRecord) error
}

// Notifier publishes score change notifications. Implementations must not
// block scoring on delivery.
type Notifier interface {
	ScoreChanged(ctx context.Context, n ScoreNotification)
}
