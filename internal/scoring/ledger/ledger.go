// Package ledger records the append-only history of score-affecting events.
// Every event carries a fixed description and impact hint from the catalog;
// the authoritative score is always recomputed from component state, so the
// impact column is an audit aid, not a running balance.
package ledger

import (
	"time"

	id "nexolend/pkg/domain"
)

// EventType identifies a catalogued score event.
type EventType string

const (
	// Positive events
	EventInitialScore       EventType = "INITIAL_SCORE"
	EventKYCVerified        EventType = "KYC_VERIFIED"
	EventRepaymentOnTime    EventType = "REPAYMENT_ON_TIME"
	EventRepaymentEarly     EventType = "REPAYMENT_EARLY"
	EventLoanCompleted      EventType = "LOAN_COMPLETED"
	EventIncomeVerified     EventType = "INCOME_VERIFIED"
	EventEmploymentVerified EventType = "EMPLOYMENT_VERIFIED"
	EventBankAccountLinked  EventType = "BANK_ACCOUNT_LINKED"
	EventProfileCompleted   EventType = "PROFILE_COMPLETED"
	EventLongTermMember     EventType = "LONG_TERM_MEMBER"

	// Negative events
	EventRepaymentLate1To7Days   EventType = "REPAYMENT_LATE_1_7_DAYS"
	EventRepaymentLate8To14Days  EventType = "REPAYMENT_LATE_8_14_DAYS"
	EventRepaymentLate15To30Days EventType = "REPAYMENT_LATE_15_30_DAYS"
	EventRepaymentLateOver30Days EventType = "REPAYMENT_LATE_OVER_30_DAYS"
	EventLoanDefaulted           EventType = "LOAN_DEFAULTED"
	EventFraudDetected           EventType = "FRAUD_DETECTED"
	EventKYCRejected             EventType = "KYC_REJECTED"
	EventLoanRejected            EventType = "LOAN_REJECTED"
	EventAccountWarning          EventType = "ACCOUNT_WARNING"

	// Neutral events
	EventScoreRecalculated EventType = "SCORE_RECALCULATED"
	EventManualAdjustment  EventType = "MANUAL_ADJUSTMENT"
)

// catalogEntry fixes the wording and impact hint per event type.
type catalogEntry struct {
	description string
	impact      int
}

var catalog = map[EventType]catalogEntry{
	EventInitialScore:       {"Initial credit score calculated", 0},
	EventKYCVerified:        {"KYC verification completed", 50},
	EventRepaymentOnTime:    {"Loan repayment made on time", 15},
	EventRepaymentEarly:     {"Loan repayment made early", 25},
	EventLoanCompleted:      {"Loan fully repaid", 50},
	EventIncomeVerified:     {"Income verification completed", 30},
	EventEmploymentVerified: {"Employment verification completed", 20},
	EventBankAccountLinked:  {"Bank account linked", 15},
	EventProfileCompleted:   {"Profile information completed", 10},
	EventLongTermMember:     {"Long-term platform member bonus", 20},

	EventRepaymentLate1To7Days:   {"Payment late by 1-7 days", -20},
	EventRepaymentLate8To14Days:  {"Payment late by 8-14 days", -40},
	EventRepaymentLate15To30Days: {"Payment late by 15-30 days", -70},
	EventRepaymentLateOver30Days: {"Payment late over 30 days", -100},
	EventLoanDefaulted:           {"Loan defaulted", -200},
	EventFraudDetected:           {"Fraudulent activity detected", -500},
	EventKYCRejected:             {"KYC verification rejected", -30},
	EventLoanRejected:            {"Loan application rejected", -10},
	EventAccountWarning:          {"Account warning issued", -25},

	EventScoreRecalculated: {"Periodic score recalculation", 0},
	EventManualAdjustment:  {"Manual admin adjustment", 0},
}

// IsValid reports whether t is a catalogued event type.
func (t EventType) IsValid() bool {
	_, ok := catalog[t]
	return ok
}

// Description returns the fixed human-readable wording for the event type.
func (t EventType) Description() string {
	return catalog[t].description
}

// Impact returns the catalogued impact hint for the event type.
func (t EventType) Impact() int {
	return catalog[t].impact
}

// Types returns all catalogued event types. Order is unspecified.
func Types() []EventType {
	out := make([]EventType, 0, len(catalog))
	for t := range catalog {
		out = append(out, t)
	}
	return out
}

// Event is one immutable entry in a borrower's score history.
type Event struct {
	ID          id.EventID
	UserID      id.UserID
	Type        EventType
	Description string
	// Impact is the catalogued hint, overridable for MANUAL_ADJUSTMENT.
	Impact      int
	ScoreBefore int
	ScoreAfter  int
	// ProcessedBy attributes the event to a system component or an admin
	// ("SYSTEM", "ADMIN:<id>").
	ProcessedBy string
	Metadata    map[string]string
	CreatedAt   time.Time
}
