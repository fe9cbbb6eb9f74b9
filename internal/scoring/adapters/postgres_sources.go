package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nexolend/internal/scoring/ports"
	id "nexolend/pkg/domain"
	"nexolend/pkg/platform/sentinel"
)

// PostgresEvidence reads borrower evidence from the platform database. The
// loan, repayment and KYC tables are owned by their respective services; the
// scoring engine only reads them.
//
// Expected tables (read-only):
//
//	loans           (id, borrower_id, status, requested_amount)
//	repayments      (id, loan_id, borrower_id, status, days_overdue, paid_amount)
//	kyc_profiles    (id, user_id, status, full_name, gender, nationality,
//	                 date_of_birth, address, city, occupation, employer_name,
//	                 monthly_income, id_card_number, id_card_expiry_date,
//	                 bank_name, bank_account_number, bank_account_holder,
//	                 email, email_verified, phone, phone_verified,
//	                 member_since, submitted_at, submission_duration_ms,
//	                 submission_ip, device_fingerprint)
//	kyc_documents   (id, profile_id, doc_type, file_name, hash,
//	                 perceptual_hash, extracted_id, analysis JSONB)
type PostgresEvidence struct {
	db *sql.DB
}

// NewPostgresEvidence builds the evidence sources over a shared handle.
func NewPostgresEvidence(db *sql.DB) *PostgresEvidence {
	return &PostgresEvidence{db: db}
}

// ListByBorrower implements ports.RepaymentSource.
func (p *PostgresEvidence) ListByBorrower(ctx context.Context, userID id.UserID) ([]ports.RepaymentRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, loan_id, status, days_overdue, paid_amount
		FROM repayments
		WHERE borrower_id = $1`,
		uuid.UUID(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("list repayments: %w", err)
	}
	defer rows.Close()

	var out []ports.RepaymentRecord
	for rows.Next() {
		var r ports.RepaymentRecord
		var repaymentID, loanID uuid.UUID
		if err := rows.Scan(&repaymentID, &loanID, &r.Status, &r.DaysOverdue, &r.PaidAmount); err != nil {
			return nil, fmt.Errorf("scan repayment: %w", err)
		}
		r.ID = id.RepaymentID(repaymentID)
		r.LoanID = id.LoanID(loanID)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoansByBorrower implements ports.LoanSource via the loanSource wrapper.
func (p *PostgresEvidence) LoansByBorrower(ctx context.Context, userID id.UserID) ([]ports.LoanRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, status, requested_amount
		FROM loans
		WHERE borrower_id = $1`,
		uuid.UUID(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var out []ports.LoanRecord
	for rows.Next() {
		var l ports.LoanRecord
		var loanID uuid.UUID
		if err := rows.Scan(&loanID, &l.Status, &l.RequestedAmount); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		l.ID = id.LoanID(loanID)
		out = append(out, l)
	}
	return out, rows.Err()
}

// Loans returns a ports.LoanSource view over the same handle. RepaymentSource
// and LoanSource share the ListByBorrower method name, so the loan side gets
// its own type.
func (p *PostgresEvidence) Loans() ports.LoanSource {
	return loanSource{p}
}

type loanSource struct {
	evidence *PostgresEvidence
}

func (l loanSource) ListByBorrower(ctx context.Context, userID id.UserID) ([]ports.LoanRecord, error) {
	return l.evidence.LoansByBorrower(ctx, userID)
}

const profileColumns = `
	id, user_id, status, full_name, gender, nationality, date_of_birth,
	address, city, occupation, employer_name, monthly_income,
	id_card_number, id_card_expiry_date,
	bank_name, bank_account_number, bank_account_holder,
	email, email_verified, phone, phone_verified,
	member_since, submitted_at, submission_duration_ms, submission_ip, device_fingerprint`

// GetByProfileID implements ports.ProfileSource.
func (p *PostgresEvidence) GetByProfileID(ctx context.Context, profileID id.ProfileID) (*ports.ProfileRecord, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM kyc_profiles WHERE id = $1`,
		uuid.UUID(profileID),
	)
	return scanProfile(row)
}

// GetByUserID implements ports.ProfileSource.
func (p *PostgresEvidence) GetByUserID(ctx context.Context, userID id.UserID) (*ports.ProfileRecord, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM kyc_profiles WHERE user_id = $1`,
		uuid.UUID(userID),
	)
	return scanProfile(row)
}

func scanProfile(row *sql.Row) (*ports.ProfileRecord, error) {
	var rec ports.ProfileRecord
	var profileID, userID uuid.UUID
	var gender, nationality, address, city, occupation, employer sql.NullString
	var idCard, bankName, bankAccount, bankHolder, email, phone sql.NullString
	var submissionIP, deviceFingerprint sql.NullString
	var dob, idExpiry, submittedAt sql.NullTime
	var monthlyIncome sql.NullInt64
	var submissionMs sql.NullInt64

	err := row.Scan(
		&profileID, &userID, &rec.Status, &rec.FullName, &gender, &nationality, &dob,
		&address, &city, &occupation, &employer, &monthlyIncome,
		&idCard, &idExpiry,
		&bankName, &bankAccount, &bankHolder,
		&email, &rec.EmailVerified, &phone, &rec.PhoneVerified,
		&rec.MemberSince, &submittedAt, &submissionMs, &submissionIP, &deviceFingerprint,
	)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan kyc profile: %w", err)
	}

	rec.ProfileID = id.ProfileID(profileID)
	rec.UserID = id.UserID(userID)
	rec.Gender = gender.String
	rec.Nationality = nationality.String
	rec.Address = address.String
	rec.City = city.String
	rec.Occupation = occupation.String
	rec.EmployerName = employer.String
	rec.IDCardNumber = idCard.String
	rec.BankName = bankName.String
	rec.BankAccountNumber = bankAccount.String
	rec.BankAccountHolder = bankHolder.String
	rec.Email = email.String
	rec.Phone = phone.String
	rec.SubmissionIP = submissionIP.String
	rec.DeviceFingerprint = deviceFingerprint.String
	if dob.Valid {
		t := dob.Time
		rec.DateOfBirth = &t
	}
	if idExpiry.Valid {
		t := idExpiry.Time
		rec.IDCardExpiryDate = &t
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		rec.SubmittedAt = &t
	}
	if monthlyIncome.Valid {
		v := monthlyIncome.Int64
		rec.MonthlyIncome = &v
	}
	if submissionMs.Valid {
		rec.SubmissionDuration = time.Duration(submissionMs.Int64) * time.Millisecond
	}
	return &rec, nil
}

// ListByProfile implements ports.DocumentSource. The analysis JSONB column is
// written by the vision pipeline; a NULL analysis means the document has not
// been processed yet.
func (p *PostgresEvidence) ListByProfile(ctx context.Context, profileID id.ProfileID) ([]ports.DocumentRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, profile_id, doc_type, file_name, hash, perceptual_hash, extracted_id, analysis
		FROM kyc_documents
		WHERE profile_id = $1
		ORDER BY id`,
		uuid.UUID(profileID),
	)
	if err != nil {
		return nil, fmt.Errorf("list kyc documents: %w", err)
	}
	defer rows.Close()

	var out []ports.DocumentRecord
	for rows.Next() {
		var doc ports.DocumentRecord
		var docID, docProfileID uuid.UUID
		var hash, phash, extractedID sql.NullString
		var analysis []byte
		if err := rows.Scan(&docID, &docProfileID, &doc.Type, &doc.FileName, &hash, &phash, &extractedID, &analysis); err != nil {
			return nil, fmt.Errorf("scan kyc document: %w", err)
		}
		doc.ID = id.DocumentID(docID)
		doc.ProfileID = id.ProfileID(docProfileID)
		doc.Hash = hash.String
		doc.PerceptualHash = phash.String
		doc.ExtractedID = extractedID.String
		if len(analysis) > 0 {
			parsed, err := parseAnalysis(analysis)
			if err != nil {
				return nil, fmt.Errorf("parse document analysis: %w", err)
			}
			doc.Analysis = parsed
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// analysisDoc is the JSONB wire shape written by the vision pipeline.
type analysisDoc struct {
	ImageQuality    float64 `json:"image_quality"`
	OCRAccuracy     float64 `json:"ocr_accuracy"`
	Sharpness       float64 `json:"sharpness"`
	Authenticity    float64 `json:"authenticity"`
	FaceQuality     float64 `json:"face_quality"`
	DataConsistency float64 `json:"data_consistency"`

	OCRConfidence       float64 `json:"ocr_confidence"`
	OCRExtractedName    string  `json:"ocr_extracted_name"`
	OCRExtractedID      string  `json:"ocr_extracted_id"`
	OCRExtractedDOB     string  `json:"ocr_extracted_dob"`
	Expired             bool    `json:"expired"`
	FacesDetected       int     `json:"faces_detected"`
	FaceMatchSimilarity float64 `json:"face_match_similarity"`
	HasFaceMatch        bool    `json:"has_face_match"`
}

func parseAnalysis(raw []byte) (*ports.DocumentAnalysis, error) {
	var doc analysisDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &ports.DocumentAnalysis{
		ImageQuality:        doc.ImageQuality,
		OCRAccuracy:         doc.OCRAccuracy,
		Sharpness:           doc.Sharpness,
		Authenticity:        doc.Authenticity,
		FaceQuality:         doc.FaceQuality,
		DataConsistency:     doc.DataConsistency,
		OCRConfidence:       doc.OCRConfidence,
		OCRExtractedName:    doc.OCRExtractedName,
		OCRExtractedID:      doc.OCRExtractedID,
		OCRExtractedDOB:     doc.OCRExtractedDOB,
		Expired:             doc.Expired,
		FacesDetected:       doc.FacesDetected,
		FaceMatchSimilarity: doc.FaceMatchSimilarity,
		HasFaceMatch:        doc.HasFaceMatch,
	}, nil
}
