package handler

import (
	id "nexolend/pkg/domain"
	dErrors "nexolend/pkg/domain-errors"
)

// AdjustRequest is the body for POST /scores/credit/{userID}/adjust.
type AdjustRequest struct {
	Adjustment int    `json:"adjustment"`
	Reason     string `json:"reason"`
}

func (r *AdjustRequest) Validate() error {
	if r.Adjustment == 0 {
		return dErrors.New(dErrors.CodeValidation, "adjustment must be non-zero")
	}
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

// RecordEventRequest is the body for POST /events.
type RecordEventRequest struct {
	UserID    string            `json:"user_id"`
	EventType string            `json:"event_type"`
	Metadata  map[string]string `json:"metadata,omitempty"`

	parsedUserID id.UserID
}

func (r *RecordEventRequest) Validate() error {
	userID, err := id.ParseUserID(r.UserID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "user_id must be a valid UUID")
	}
	r.parsedUserID = userID
	if r.EventType == "" {
		return dErrors.New(dErrors.CodeValidation, "event_type is required")
	}
	return nil
}

// ParsedUserID returns the user ID parsed during validation.
func (r *RecordEventRequest) ParsedUserID() id.UserID { return r.parsedUserID }

// RaiseFlagRequest is the body for POST /scores/kyc/{profileID}/flags.
type RaiseFlagRequest struct {
	FraudType  string  `json:"fraud_type"`
	Details    string  `json:"details"`
	Confidence float64 `json:"confidence"`
}

func (r *RaiseFlagRequest) Validate() error {
	if r.FraudType == "" {
		return dErrors.New(dErrors.CodeValidation, "fraud_type is required")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return dErrors.New(dErrors.CodeValidation, "confidence must be between 0 and 1")
	}
	return nil
}

// ResolveFlagRequest is the body for POST /flags/{flagID}/resolve.
type ResolveFlagRequest struct {
	Note string `json:"note"`
}

func (r *ResolveFlagRequest) Validate() error {
	if r.Note == "" {
		return dErrors.New(dErrors.CodeValidation, "note is required")
	}
	return nil
}
