package scoring

import (
	"fmt"
	"strings"
	"time"

	"nexolend/internal/scoring/flags"
	"nexolend/internal/scoring/ledger"
	"nexolend/internal/scoring/ports"
)

// All component scorers are pure: they read plain fetched inputs, return a
// sub-score in [0,100] plus explanation lines, and propose fraud flags as
// values. They never touch storage.

const (
	minAge = 18
	maxAge = 75

	// creditCeiling is the assumed maximum total exposure for utilization.
	creditCeiling int64 = 500_000_000

	// ocrConfidenceThreshold is the minimum usable OCR confidence; below it
	// the sub-score saturates at ocrConfidenceFloor instead of going lower.
	ocrConfidenceThreshold = 0.60
	ocrConfidenceFloor     = 40

	faceMatchThreshold     = 0.75
	faceLowConfidenceUpper = 0.85

	rapidSubmissionThreshold = 30 * time.Second
)

// ---------- Credit components ----------

// PaymentHistoryScore scores installment outcomes. No history is neutral.
// Late is paid 1-30 days overdue; default is paid beyond 30 days or unpaid
// beyond 90.
func PaymentHistoryScore(repayments []ports.RepaymentRecord) int {
	if len(repayments) == 0 {
		return 50
	}

	var onTime, late, defaults int
	for _, r := range repayments {
		switch {
		case r.Status == ports.RepaymentPaid && r.DaysOverdue == 0:
			onTime++
		case r.Status == ports.RepaymentPaid && r.DaysOverdue <= 30:
			late++
		case r.Status == ports.RepaymentPaid:
			defaults++
		case r.Status == ports.RepaymentOverdue && r.DaysOverdue > 90:
			defaults++
		}
	}

	total := float64(len(repayments))
	onTimeRate := float64(onTime) / total
	lateRate := float64(late) / total
	defaultRate := float64(defaults) / total

	score := int(100*onTimeRate - 30*lateRate - 70*defaultRate)
	return clampComponent(score)
}

// UtilizationScore scores current exposure against the platform ceiling.
// No active loans is the best outcome.
func UtilizationScore(loans []ports.LoanRecord) int {
	var borrowed int64
	active := 0
	for _, l := range loans {
		if l.Status == ports.LoanActive || l.Status == ports.LoanFunding {
			borrowed += l.RequestedAmount
			active++
		}
	}
	if active == 0 {
		return 100
	}

	rate := float64(borrowed) / float64(creditCeiling)
	switch {
	case rate <= 0.1:
		return 100
	case rate <= 0.3:
		return 85
	case rate <= 0.5:
		return 70
	case rate <= 0.7:
		return 50
	case rate <= 0.9:
		return 30
	default:
		return 10
	}
}

// HistoryLengthScore scores platform tenure in whole months.
func HistoryLengthScore(memberSince, now time.Time) int {
	if memberSince.IsZero() {
		return 30
	}
	months := monthsBetween(memberSince, now)
	switch {
	case months < 1:
		return 20
	case months < 3:
		return 35
	case months < 6:
		return 50
	case months < 12:
		return 65
	case months < 24:
		return 80
	case months < 36:
		return 90
	default:
		return 100
	}
}

func monthsBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	months := int(to.Month()) - int(from.Month()) + 12*(to.Year()-from.Year())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// IdentityScore scores verification depth: KYC status plus verified
// identifiers, capped at 100. A nil profile means nothing is verified.
func IdentityScore(profile *ports.ProfileRecord) int {
	if profile == nil {
		return 0
	}

	score := 0
	switch profile.Status {
	case ports.KYCApproved:
		score += 50
	case ports.KYCPending:
		score += 20
	case ports.KYCRejected:
		score += 0
	default:
		score += 10
	}

	if profile.IDCardNumber != "" {
		score += 15
	}
	if profile.BankAccountNumber != "" {
		score += 15
	}
	if profile.EmployerName != "" {
		score += 10
	}
	if profile.EmailVerified {
		score += 5
	}
	if profile.PhoneVerified {
		score += 5
	}

	if score > 100 {
		return 100
	}
	return score
}

// IncomeStabilityScore scores declared income and employment evidence.
func IncomeStabilityScore(profile *ports.ProfileRecord) int {
	if profile == nil || profile.MonthlyIncome == nil {
		return 30
	}

	income := *profile.MonthlyIncome
	score := 30
	if income >= 5_000_000 {
		score += 10
	}
	if income >= 10_000_000 {
		score += 15
	}
	if income >= 20_000_000 {
		score += 15
	}
	if income >= 50_000_000 {
		score += 15
	}
	if profile.EmployerName != "" {
		score += 15
	}
	if profile.Occupation != "" {
		score += 10
	}

	if score > 100 {
		return 100
	}
	return score
}

// BehaviorDelta returns the behavior component adjustment for an event type.
// FRAUD_DETECTED floors the component; callers apply that separately via the
// second return.
func BehaviorDelta(eventType ledger.EventType) (delta int, floorToZero bool) {
	switch eventType {
	case ledger.EventRepaymentOnTime, ledger.EventRepaymentEarly:
		return 2, false
	case ledger.EventRepaymentLate1To7Days, ledger.EventRepaymentLate8To14Days,
		ledger.EventRepaymentLate15To30Days, ledger.EventRepaymentLateOver30Days:
		return -5, false
	case ledger.EventLoanCompleted:
		return 10, false
	case ledger.EventKYCVerified:
		return 10, false
	case ledger.EventKYCRejected:
		return -5, false
	case ledger.EventLoanDefaulted:
		return -50, false
	case ledger.EventFraudDetected:
		return 0, true
	default:
		return 0, false
	}
}

// ApplyBehaviorDelta advances a stored behavior component for an event.
func ApplyBehaviorDelta(current int, eventType ledger.EventType) int {
	delta, floor := BehaviorDelta(eventType)
	if floor {
		return 0
	}
	return clampComponent(current + delta)
}

// RepaymentEventFor buckets lateness into the catalogued event type.
// Negative daysLate means early payment.
func RepaymentEventFor(daysLate int) ledger.EventType {
	switch {
	case daysLate < 0:
		return ledger.EventRepaymentEarly
	case daysLate == 0:
		return ledger.EventRepaymentOnTime
	case daysLate <= 7:
		return ledger.EventRepaymentLate1To7Days
	case daysLate <= 14:
		return ledger.EventRepaymentLate8To14Days
	case daysLate <= 30:
		return ledger.EventRepaymentLate15To30Days
	default:
		return ledger.EventRepaymentLateOver30Days
	}
}

// CreditStatisticsFrom summarizes loans and repayments for display.
func CreditStatisticsFrom(loans []ports.LoanRecord, repayments []ports.RepaymentRecord) CreditStatistics {
	stats := CreditStatistics{}
	for _, l := range loans {
		switch l.Status {
		case ports.LoanCompleted:
			stats.LoansCompleted++
		case ports.LoanDefaulted:
			stats.LoansDefaulted++
		}
		stats.TotalBorrowed += l.RequestedAmount
	}

	var lateDays, lateCount int
	for _, r := range repayments {
		if r.Status == ports.RepaymentPaid && r.DaysOverdue == 0 {
			stats.OnTimePayments++
		}
		if r.DaysOverdue > 0 {
			stats.LatePayments++
			lateDays += r.DaysOverdue
			lateCount++
		}
		stats.TotalRepaid += r.PaidAmount
	}
	if lateCount > 0 {
		stats.AverageDaysLate = float64(lateDays) / float64(lateCount)
	}
	return stats
}

// ---------- KYC document components ----------

// documentSubWeights combine the per-document analysis verdicts.
var documentSubWeights = struct {
	imageQuality, ocrAccuracy, blur, tampering, faceQuality, dataConsistency, expiration float64
}{0.15, 0.25, 0.10, 0.25, 0.10, 0.10, 0.05}

// DocumentTypeWeight returns the cross-document aggregation weight.
func DocumentTypeWeight(t ports.DocumentType) int {
	switch t {
	case ports.DocumentIDCardFront:
		return 30
	case ports.DocumentIDCardBack:
		return 20
	case ports.DocumentSelfie:
		return 25
	case ports.DocumentIncomeProof:
		return 15
	case ports.DocumentBankStatement:
		return 10
	default:
		return 10
	}
}

// ConfidenceToScore maps a [0,1] confidence to [0,100] monotonically.
// Below the usable threshold the score saturates at the floor instead of
// dropping further, so one weak detector cannot zero a document.
func ConfidenceToScore(confidence float64) int {
	if confidence < ocrConfidenceThreshold {
		return ocrConfidenceFloor
	}
	if confidence > 1 {
		confidence = 1
	}
	return int(confidence*100 + 0.5)
}

// DocumentScoreResult carries one document's scored verdict.
type DocumentScoreResult struct {
	DocumentID   string
	Type         ports.DocumentType
	Total        int // 0-100
	Breakdown    DocumentBreakdown
	Explanations []string
	Proposals    []FlagProposal
	// DataQuality notes missing analysis substituted with floors.
	DataQuality []string
}

// ScoreDocument computes one document's sub-score from its analysis.
// A missing analysis contributes the floor for every sub-score and records a
// data-quality note instead of failing the computation.
func ScoreDocument(doc ports.DocumentRecord) DocumentScoreResult {
	result := DocumentScoreResult{
		DocumentID: doc.ID.String(),
		Type:       doc.Type,
	}

	a := doc.Analysis
	if a == nil {
		result.Breakdown = DocumentBreakdown{
			ImageQuality:    ocrConfidenceFloor,
			OCRAccuracy:     ocrConfidenceFloor,
			BlurDetection:   ocrConfidenceFloor,
			Tampering:       ocrConfidenceFloor,
			FaceQuality:     ocrConfidenceFloor,
			DataConsistency: ocrConfidenceFloor,
			Expiration:      ocrConfidenceFloor,
		}
		result.Total = ocrConfidenceFloor
		result.DataQuality = append(result.DataQuality,
			fmt.Sprintf("Document %s: no analysis available, floor scores substituted", doc.FileName))
		result.Explanations = append(result.Explanations,
			fmt.Sprintf("Document %s (%s): %d/100 (no analysis)", doc.FileName, doc.Type, result.Total))
		return result
	}

	b := DocumentBreakdown{
		ImageQuality:    ConfidenceToScore(a.ImageQuality),
		OCRAccuracy:     ConfidenceToScore(a.OCRAccuracy),
		BlurDetection:   ConfidenceToScore(a.Sharpness),
		Tampering:       ConfidenceToScore(a.Authenticity),
		FaceQuality:     ConfidenceToScore(a.FaceQuality),
		DataConsistency: ConfidenceToScore(a.DataConsistency),
		Expiration:      100,
		OCRConfidence:   a.OCRConfidence,
	}
	if a.Expired {
		b.Expiration = 0
	}
	if doc.Type != ports.DocumentSelfie && doc.Type != ports.DocumentIDCardFront {
		// Face quality is not applicable without a face.
		b.FaceQuality = 100
	}

	total := float64(b.ImageQuality)*documentSubWeights.imageQuality +
		float64(b.OCRAccuracy)*documentSubWeights.ocrAccuracy +
		float64(b.BlurDetection)*documentSubWeights.blur +
		float64(b.Tampering)*documentSubWeights.tampering +
		float64(b.FaceQuality)*documentSubWeights.faceQuality +
		float64(b.DataConsistency)*documentSubWeights.dataConsistency +
		float64(b.Expiration)*documentSubWeights.expiration
	result.Total = int(total + 0.5)
	result.Breakdown = b

	result.Proposals = append(result.Proposals, documentFlagProposals(doc, a)...)

	result.Explanations = append(result.Explanations,
		fmt.Sprintf("Document %s (%s): %d/100", doc.FileName, doc.Type, result.Total))
	if a.OCRConfidence < ocrConfidenceThreshold {
		result.DataQuality = append(result.DataQuality,
			fmt.Sprintf("Document %s: OCR confidence %.2f below threshold %.2f, floor applied",
				doc.FileName, a.OCRConfidence, ocrConfidenceThreshold))
	}

	if doc.Type == ports.DocumentSelfie && a.HasFaceMatch {
		b.FaceMatchScore = a.FaceMatchSimilarity
		result.Breakdown = b
		result.Explanations = append(result.Explanations,
			fmt.Sprintf("Face match similarity: %.2f (threshold %.2f)", a.FaceMatchSimilarity, faceMatchThreshold))
	}

	return result
}

func documentFlagProposals(doc ports.DocumentRecord, a *ports.DocumentAnalysis) []FlagProposal {
	var proposals []FlagProposal

	if a.Authenticity > 0 && a.Authenticity < 0.5 {
		proposals = append(proposals, FlagProposal{
			Type:       flags.DocumentTampering,
			Details:    fmt.Sprintf("Authenticity confidence %.2f for %s", a.Authenticity, doc.FileName),
			Confidence: 1 - a.Authenticity,
		})
	}
	if a.ImageQuality > 0 && a.ImageQuality < 0.4 {
		proposals = append(proposals, FlagProposal{
			Type:       flags.DocumentLowQuality,
			Details:    fmt.Sprintf("Image quality confidence %.2f for %s", a.ImageQuality, doc.FileName),
			Confidence: 1 - a.ImageQuality,
		})
	}
	if a.Sharpness > 0 && a.Sharpness < 0.4 {
		proposals = append(proposals, FlagProposal{
			Type:       flags.DocumentBlurry,
			Details:    fmt.Sprintf("Sharpness confidence %.2f for %s", a.Sharpness, doc.FileName),
			Confidence: 1 - a.Sharpness,
		})
	}
	if a.Expired {
		proposals = append(proposals, FlagProposal{
			Type:       flags.DocumentExpired,
			Details:    fmt.Sprintf("Document %s has expired", doc.FileName),
			Confidence: 0.8,
		})
	}

	if doc.Type == ports.DocumentSelfie {
		if a.FacesDetected > 1 {
			proposals = append(proposals, FlagProposal{
				Type:       flags.FaceMultipleDetected,
				Details:    fmt.Sprintf("%d faces detected in selfie", a.FacesDetected),
				Confidence: 0.9,
			})
		}
		if a.HasFaceMatch {
			switch {
			case a.FaceMatchSimilarity < faceMatchThreshold:
				proposals = append(proposals, FlagProposal{
					Type:       flags.FaceMismatch,
					Details:    fmt.Sprintf("Face similarity %.2f below threshold %.2f", a.FaceMatchSimilarity, faceMatchThreshold),
					Confidence: 1 - a.FaceMatchSimilarity,
				})
			case a.FaceMatchSimilarity < faceLowConfidenceUpper:
				proposals = append(proposals, FlagProposal{
					Type:       flags.FaceLowConfidence,
					Details:    fmt.Sprintf("Face similarity %.2f in low-confidence range", a.FaceMatchSimilarity),
					Confidence: 0.6,
				})
			}
		}
	}

	return proposals
}

// AggregateDocumentScore combines per-document totals using type weights and
// scales the result to 0-1000. No documents means zero.
func AggregateDocumentScore(results []DocumentScoreResult) int {
	if len(results) == 0 {
		return 0
	}
	weightedSum, totalWeight := 0, 0
	for _, r := range results {
		w := DocumentTypeWeight(r.Type)
		weightedSum += r.Total * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return (weightedSum / totalWeight) * 10
}

// ---------- KYC profile components ----------

// profileSubWeights combine the profile-side sub-scores.
var profileSubWeights = struct {
	age, phone, email, completeness, income, behavior, ip, device float64
}{0.15, 0.10, 0.10, 0.20, 0.15, 0.10, 0.10, 0.10}

// ProfileScoreResult carries the profile-side verdict.
type ProfileScoreResult struct {
	Total        int // 0-1000
	Breakdown    ProfileBreakdown
	Explanations []string
	Proposals    []FlagProposal
	DataQuality  []string
}

// ScoreProfile computes the profile-side sub-scores from the KYC profile and
// reputation signals. Missing inputs contribute their defined floors with a
// data-quality note, never a failure.
func ScoreProfile(profile *ports.ProfileRecord, ip ports.IPReputation, device ports.DeviceReputation, now time.Time) ProfileScoreResult {
	result := ProfileScoreResult{}
	if profile == nil {
		result.DataQuality = append(result.DataQuality, "Profile: not available, floor scores substituted")
		result.Breakdown = ProfileBreakdown{
			Age: 50, PhoneTrust: 30, EmailTrust: 30, DataCompleteness: 0,
			IncomeVerified: 50, Behavior: 80, IPReputation: 80, DeviceTrust: 80,
		}
		result.Total = weightProfile(result.Breakdown)
		return result
	}

	b := ProfileBreakdown{}
	b.Age = ageScore(profile, now, &result)
	b.PhoneTrust = phoneTrustScore(profile, &result)
	b.EmailTrust = emailTrustScore(profile, &result)
	b.DataCompleteness = dataCompletenessScore(profile, &result)
	b.IncomeVerified = incomeVerificationScore(profile, &result)
	b.Behavior = behaviorSignalScore(profile, &result)
	b.IPReputation = ipReputationScore(profile, ip, &result)
	b.DeviceTrust = deviceTrustScore(profile, device, &result)

	result.Proposals = append(result.Proposals, profileFlagProposals(profile, ip, device, now)...)
	result.Breakdown = b
	result.Total = weightProfile(b)
	return result
}

func weightProfile(b ProfileBreakdown) int {
	score := float64(b.Age)*profileSubWeights.age +
		float64(b.PhoneTrust)*profileSubWeights.phone +
		float64(b.EmailTrust)*profileSubWeights.email +
		float64(b.DataCompleteness)*profileSubWeights.completeness +
		float64(b.IncomeVerified)*profileSubWeights.income +
		float64(b.Behavior)*profileSubWeights.behavior +
		float64(b.IPReputation)*profileSubWeights.ip +
		float64(b.DeviceTrust)*profileSubWeights.device
	return int(score*10 + 0.5)
}

func ageScore(profile *ports.ProfileRecord, now time.Time, result *ProfileScoreResult) int {
	if profile.DateOfBirth == nil {
		result.DataQuality = append(result.DataQuality, "Age: not provided")
		result.Explanations = append(result.Explanations, "Age: Not provided")
		return 50
	}
	age := yearsBetween(*profile.DateOfBirth, now)
	switch {
	case age < minAge:
		result.Explanations = append(result.Explanations, fmt.Sprintf("Age: %d (UNDERAGE)", age))
		return 0
	case age > maxAge:
		result.Explanations = append(result.Explanations, fmt.Sprintf("Age: %d (Above maximum)", age))
		return 60
	case age >= 25 && age <= 55:
		result.Explanations = append(result.Explanations, fmt.Sprintf("Age: %d (Optimal range)", age))
		return 100
	default:
		result.Explanations = append(result.Explanations, fmt.Sprintf("Age: %d", age))
		return 80
	}
}

func yearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	anniversary := from.AddDate(years, 0, 0)
	if anniversary.After(to) {
		years--
	}
	return years
}

func phoneTrustScore(profile *ports.ProfileRecord, result *ProfileScoreResult) int {
	if profile.Phone == "" {
		result.DataQuality = append(result.DataQuality, "Phone: not provided")
		result.Explanations = append(result.Explanations, "Phone: Not provided")
		return 30
	}
	result.Explanations = append(result.Explanations, "Phone: Verified")
	return 85
}

var trustedEmailDomains = []string{"gmail.com", "outlook.com", "yahoo.com", "hotmail.com"}

var suspiciousEmailDomains = []string{
	"tempmail.com", "throwaway.com", "guerrillamail.com",
	"10minutemail.com", "mailinator.com", "fakeemail.com",
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// SuspiciousEmailDomain reports whether the email's domain is on the
// disposable-provider list.
func SuspiciousEmailDomain(email string) bool {
	domain := emailDomain(email)
	for _, d := range suspiciousEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

func emailTrustScore(profile *ports.ProfileRecord, result *ProfileScoreResult) int {
	email := profile.Email
	if email == "" {
		result.DataQuality = append(result.DataQuality, "Email: not provided")
		result.Explanations = append(result.Explanations, "Email: Not provided")
		return 30
	}
	domain := emailDomain(email)
	for _, d := range trustedEmailDomains {
		if domain == d {
			result.Explanations = append(result.Explanations, "Email: Trusted domain")
			return 90
		}
	}
	if SuspiciousEmailDomain(email) {
		result.Explanations = append(result.Explanations, "Email: Suspicious domain")
		return 40
	}
	result.Explanations = append(result.Explanations, "Email: Standard domain")
	return 70
}

func dataCompletenessScore(profile *ports.ProfileRecord, result *ProfileScoreResult) int {
	filled := 0
	const totalFields = 12
	fields := []bool{
		profile.FullName != "",
		profile.IDCardNumber != "",
		profile.DateOfBirth != nil,
		profile.Gender != "",
		profile.Address != "",
		profile.City != "",
		profile.Occupation != "",
		profile.MonthlyIncome != nil,
		profile.BankName != "",
		profile.BankAccountNumber != "",
		profile.BankAccountHolder != "",
		profile.Nationality != "",
	}
	for _, ok := range fields {
		if ok {
			filled++
		}
	}
	score := (filled * 100) / totalFields
	result.Explanations = append(result.Explanations,
		fmt.Sprintf("Data Completeness: %d/%d fields (%d%%)", filled, totalFields, score))
	return score
}

func incomeVerificationScore(profile *ports.ProfileRecord, result *ProfileScoreResult) int {
	if profile.MonthlyIncome == nil {
		result.DataQuality = append(result.DataQuality, "Income: not provided")
		result.Explanations = append(result.Explanations, "Income: Not provided")
		return 50
	}
	income := *profile.MonthlyIncome
	switch {
	case income < 5_000_000:
		result.Explanations = append(result.Explanations, "Income: Below minimum threshold")
		return 60
	case income > 50_000_000:
		result.Explanations = append(result.Explanations, "Income: High income bracket")
		return 95
	default:
		result.Explanations = append(result.Explanations, "Income: Standard bracket")
		return 80
	}
}

func behaviorSignalScore(profile *ports.ProfileRecord, result *ProfileScoreResult) int {
	if profile.SubmissionDuration > 0 && profile.SubmissionDuration < rapidSubmissionThreshold {
		result.Explanations = append(result.Explanations, "Behavior: Unusually fast submission")
		return 50
	}
	return 80
}

func ipReputationScore(profile *ports.ProfileRecord, ip ports.IPReputation, result *ProfileScoreResult) int {
	if profile.SubmissionIP == "" || !ip.Known {
		if profile.SubmissionIP == "" {
			result.DataQuality = append(result.DataQuality, "IP: not recorded")
		}
		return 80
	}
	if ip.Blacklisted {
		result.Explanations = append(result.Explanations, "IP: Blacklisted")
		return 0
	}
	if ip.VPN {
		result.Explanations = append(result.Explanations, "IP: VPN/Proxy detected")
		return 40
	}
	return 80
}

func deviceTrustScore(profile *ports.ProfileRecord, device ports.DeviceReputation, result *ProfileScoreResult) int {
	if profile.DeviceFingerprint == "" || !device.Known {
		if profile.DeviceFingerprint == "" {
			result.DataQuality = append(result.DataQuality, "Device: no fingerprint recorded")
		}
		return 80
	}
	if device.FraudAssociated {
		result.Explanations = append(result.Explanations, "Device: Associated with fraud")
		return 0
	}
	return 80
}

func profileFlagProposals(profile *ports.ProfileRecord, ip ports.IPReputation, device ports.DeviceReputation, now time.Time) []FlagProposal {
	var proposals []FlagProposal

	if profile.DateOfBirth != nil {
		if age := yearsBetween(*profile.DateOfBirth, now); age < minAge {
			proposals = append(proposals, FlagProposal{
				Type:       flags.ProfileUnderage,
				Details:    fmt.Sprintf("User is %d years old, minimum age is %d", age, minAge),
				Confidence: 0.9,
			})
		}
	}
	if profile.IDCardExpiryDate != nil && profile.IDCardExpiryDate.Before(now) {
		proposals = append(proposals, FlagProposal{
			Type:       flags.IDCardExpired,
			Details:    fmt.Sprintf("ID card expired on %s", profile.IDCardExpiryDate.Format("2006-01-02")),
			Confidence: 0.8,
		})
	}
	if SuspiciousEmailDomain(profile.Email) {
		proposals = append(proposals, FlagProposal{
			Type:       flags.ProfileSuspiciousEmail,
			Details:    "Email domain flagged as suspicious: " + profile.Email,
			Confidence: 0.6,
		})
	}
	if ip.Known && ip.Blacklisted {
		proposals = append(proposals, FlagProposal{
			Type:       flags.ProfileIPBlacklisted,
			Details:    "Submission IP is blacklisted: " + profile.SubmissionIP,
			Confidence: 0.95,
		})
	}
	if ip.Known && ip.VPN && !ip.Blacklisted {
		proposals = append(proposals, FlagProposal{
			Type:       flags.ProfileVPNDetected,
			Details:    "VPN or proxy detected during submission",
			Confidence: 0.7,
		})
	}
	if device.Known && device.FraudAssociated {
		proposals = append(proposals, FlagProposal{
			Type:       flags.ProfileDeviceFraud,
			Details:    "Device fingerprint associated with fraud",
			Confidence: 0.9,
		})
	}
	if profile.SubmissionDuration > 0 && profile.SubmissionDuration < rapidSubmissionThreshold {
		proposals = append(proposals, FlagProposal{
			Type:       flags.BehaviorRapidSubmission,
			Details:    fmt.Sprintf("Submission completed in %s", profile.SubmissionDuration),
			Confidence: 0.5,
		})
	}

	return proposals
}
