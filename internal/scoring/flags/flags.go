// Package flags maintains the fraud flag registry for KYC profiles.
// Each flag type carries a fixed score penalty and a critical bit; unresolved
// flags reduce the KYC score and critical ones gate tiers and eligibility.
package flags

import (
	"time"

	id "nexolend/pkg/domain"
)

// FraudType identifies a catalogued fraud signal.
type FraudType string

const (
	// Document fraud
	DocumentDuplicate   FraudType = "DOCUMENT_DUPLICATE"
	DocumentTampering   FraudType = "DOCUMENT_TAMPERING"
	DocumentExpired     FraudType = "DOCUMENT_EXPIRED"
	DocumentLowQuality  FraudType = "DOCUMENT_LOW_QUALITY"
	DocumentBlurry      FraudType = "DOCUMENT_BLURRY"
	DocumentOCRMismatch FraudType = "DOCUMENT_OCR_MISMATCH"

	// ID card specific
	IDCardDuplicate     FraudType = "ID_CARD_DUPLICATE"
	IDCardInvalidFormat FraudType = "ID_CARD_INVALID_FORMAT"
	IDCardExpired       FraudType = "ID_CARD_EXPIRED"

	// Face match
	FaceMismatch         FraudType = "FACE_MISMATCH"
	FaceLowConfidence    FraudType = "FACE_LOW_CONFIDENCE"
	FaceMultipleDetected FraudType = "FACE_MULTIPLE_DETECTED"

	// Profile fraud
	ProfileUnderage        FraudType = "PROFILE_UNDERAGE"
	ProfileSuspiciousEmail FraudType = "PROFILE_SUSPICIOUS_EMAIL"
	ProfileSuspiciousPhone FraudType = "PROFILE_SUSPICIOUS_PHONE"
	ProfileKnownFraudDB    FraudType = "PROFILE_KNOWN_FRAUD_DB"
	ProfileIPBlacklisted   FraudType = "PROFILE_IP_BLACKLISTED"
	ProfileVPNDetected     FraudType = "PROFILE_VPN_DETECTED"
	ProfileDeviceFraud     FraudType = "PROFILE_DEVICE_FRAUD"

	// Behavior fraud
	BehaviorRapidSubmission   FraudType = "BEHAVIOR_RAPID_SUBMISSION"
	BehaviorCopyPasteDetected FraudType = "BEHAVIOR_COPY_PASTE_DETECTED"
	BehaviorMultipleAttempts  FraudType = "BEHAVIOR_MULTIPLE_ATTEMPTS"

	// Cross-check fraud
	CrossCheckBankMismatch    FraudType = "CROSS_CHECK_BANK_MISMATCH"
	CrossCheckAddressMismatch FraudType = "CROSS_CHECK_ADDRESS_MISMATCH"
)

type catalogEntry struct {
	description string
	penalty     int
	critical    bool
}

var catalog = map[FraudType]catalogEntry{
	DocumentDuplicate:   {"Document already exists in system", -500, true},
	DocumentTampering:   {"Document appears to be tampered/edited", -300, true},
	DocumentExpired:     {"Document has expired", -100, false},
	DocumentLowQuality:  {"Document image quality too low", -50, false},
	DocumentBlurry:      {"Document image is blurry", -30, false},
	DocumentOCRMismatch: {"OCR data doesn't match profile", -150, true},

	IDCardDuplicate:     {"ID card number already registered", -500, true},
	IDCardInvalidFormat: {"ID card number format invalid", -100, false},
	IDCardExpired:       {"ID card has expired", -100, false},

	FaceMismatch:         {"Selfie doesn't match ID photo", -200, true},
	FaceLowConfidence:    {"Low confidence in face match", -50, false},
	FaceMultipleDetected: {"Multiple faces detected in selfie", -100, true},

	ProfileUnderage:        {"User appears to be underage", -300, true},
	ProfileSuspiciousEmail: {"Email domain flagged as suspicious", -50, false},
	ProfileSuspiciousPhone: {"Phone number flagged as suspicious", -50, false},
	ProfileKnownFraudDB:    {"Found in known fraud database", -500, true},
	ProfileIPBlacklisted:   {"IP address is blacklisted", -200, true},
	ProfileVPNDetected:     {"VPN/Proxy detected during submission", -100, false},
	ProfileDeviceFraud:     {"Device fingerprint associated with fraud", -300, true},

	BehaviorRapidSubmission:   {"Unusually fast submission time", -30, false},
	BehaviorCopyPasteDetected: {"Copy-paste behavior detected", -20, false},
	BehaviorMultipleAttempts:  {"Multiple failed verification attempts", -50, false},

	CrossCheckBankMismatch:    {"Bank account name doesn't match ID", -100, false},
	CrossCheckAddressMismatch: {"Address inconsistency detected", -30, false},
}

// IsValid reports whether t is a catalogued fraud type.
func (t FraudType) IsValid() bool {
	_, ok := catalog[t]
	return ok
}

// Description returns the fixed wording for the fraud type.
func (t FraudType) Description() string {
	return catalog[t].description
}

// Penalty returns the fixed (negative) score penalty for the fraud type.
// Penalties never scale with detection confidence.
func (t FraudType) Penalty() int {
	return catalog[t].penalty
}

// Critical reports whether the fraud type gates tiers and eligibility.
func (t FraudType) Critical() bool {
	return catalog[t].critical
}

// Types returns all catalogued fraud types. Order is unspecified.
func Types() []FraudType {
	out := make([]FraudType, 0, len(catalog))
	for t := range catalog {
		out = append(out, t)
	}
	return out
}

// Flag is one raised fraud signal against a KYC profile.
type Flag struct {
	ID        id.FlagID
	ProfileID id.ProfileID
	Type      FraudType
	// Details carries detector evidence (hashes, similarity values).
	Details string
	// Confidence is detector metadata in [0,1]; it never scales the penalty.
	Confidence float64
	RaisedBy   string
	CreatedAt  time.Time

	Resolved       bool
	ResolvedBy     string
	ResolvedAt     *time.Time
	ResolutionNote string
}

// Penalty returns the catalogued penalty for the flag's type.
func (f *Flag) Penalty() int {
	return f.Type.Penalty()
}

// Critical reports whether the flag's type is critical.
func (f *Flag) Critical() bool {
	return f.Type.Critical()
}
