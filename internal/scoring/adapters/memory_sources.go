package adapters

import (
	"context"
	"strings"
	"sync"

	"nexolend/internal/scoring/ports"
	id "nexolend/pkg/domain"
	"nexolend/pkg/platform/sentinel"
)

// MemoryEvidence is a seedable in-process implementation of the evidence
// sources, used when no database is configured.
type MemoryEvidence struct {
	mu         sync.RWMutex
	repayments map[id.UserID][]ports.RepaymentRecord
	loans      map[id.UserID][]ports.LoanRecord
	byProfile  map[id.ProfileID]*ports.ProfileRecord
	byUser     map[id.UserID]*ports.ProfileRecord
	documents  map[id.ProfileID][]ports.DocumentRecord
}

// NewMemoryEvidence builds an empty in-memory evidence set.
func NewMemoryEvidence() *MemoryEvidence {
	return &MemoryEvidence{
		repayments: make(map[id.UserID][]ports.RepaymentRecord),
		loans:      make(map[id.UserID][]ports.LoanRecord),
		byProfile:  make(map[id.ProfileID]*ports.ProfileRecord),
		byUser:     make(map[id.UserID]*ports.ProfileRecord),
		documents:  make(map[id.ProfileID][]ports.DocumentRecord),
	}
}

// PutProfile registers or replaces a KYC profile.
func (m *MemoryEvidence) PutProfile(rec ports.ProfileRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byProfile[rec.ProfileID] = &rec
	m.byUser[rec.UserID] = &rec
}

// AddRepayment records one installment outcome for a borrower.
func (m *MemoryEvidence) AddRepayment(userID id.UserID, rec ports.RepaymentRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repayments[userID] = append(m.repayments[userID], rec)
}

// AddLoan records one loan for a borrower.
func (m *MemoryEvidence) AddLoan(userID id.UserID, rec ports.LoanRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[userID] = append(m.loans[userID], rec)
}

// AddDocument records one analyzed document for a profile.
func (m *MemoryEvidence) AddDocument(rec ports.DocumentRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[rec.ProfileID] = append(m.documents[rec.ProfileID], rec)
}

// ListByBorrower implements ports.RepaymentSource.
func (m *MemoryEvidence) ListByBorrower(ctx context.Context, userID id.UserID) ([]ports.RepaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ports.RepaymentRecord(nil), m.repayments[userID]...), nil
}

// Loans returns a ports.LoanSource view. The repayment and loan sources share
// the ListByBorrower method name, so the loan side gets its own type.
func (m *MemoryEvidence) Loans() ports.LoanSource {
	return memoryLoanSource{m}
}

type memoryLoanSource struct {
	evidence *MemoryEvidence
}

func (l memoryLoanSource) ListByBorrower(ctx context.Context, userID id.UserID) ([]ports.LoanRecord, error) {
	l.evidence.mu.RLock()
	defer l.evidence.mu.RUnlock()
	return append([]ports.LoanRecord(nil), l.evidence.loans[userID]...), nil
}

// GetByProfileID implements ports.ProfileSource.
func (m *MemoryEvidence) GetByProfileID(ctx context.Context, profileID id.ProfileID) (*ports.ProfileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byProfile[profileID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

// GetByUserID implements ports.ProfileSource.
func (m *MemoryEvidence) GetByUserID(ctx context.Context, userID id.UserID) (*ports.ProfileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byUser[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

// ListByProfile implements ports.DocumentSource.
func (m *MemoryEvidence) ListByProfile(ctx context.Context, profileID id.ProfileID) ([]ports.DocumentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ports.DocumentRecord(nil), m.documents[profileID]...), nil
}

// MemoryReputation answers reputation lookups from static sets. Without a
// Redis backend every IP and device is simply unknown.
type MemoryReputation struct {
	mu          sync.RWMutex
	blacklisted map[string]bool
	vpn         map[string]bool
	fraudulent  map[string]bool
}

// NewMemoryReputation builds an empty reputation set.
func NewMemoryReputation() *MemoryReputation {
	return &MemoryReputation{
		blacklisted: make(map[string]bool),
		vpn:         make(map[string]bool),
		fraudulent:  make(map[string]bool),
	}
}

// BlacklistIP marks an address as blacklisted.
func (m *MemoryReputation) BlacklistIP(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blacklisted[ip] = true
}

// MarkVPN marks an address as a known VPN exit.
func (m *MemoryReputation) MarkVPN(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vpn[ip] = true
}

// MarkFraudDevice associates a device fingerprint with past fraud.
func (m *MemoryReputation) MarkFraudDevice(fingerprint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fraudulent[fingerprint] = true
}

// CheckIP implements ports.ReputationSource.
func (m *MemoryReputation) CheckIP(ctx context.Context, ip string) (ports.IPReputation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rep := ports.IPReputation{
		Blacklisted: m.blacklisted[ip],
		VPN:         m.vpn[ip],
	}
	rep.Known = rep.Blacklisted || rep.VPN
	return rep, nil
}

// CheckDevice implements ports.ReputationSource.
func (m *MemoryReputation) CheckDevice(ctx context.Context, fingerprint string) (ports.DeviceReputation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rep := ports.DeviceReputation{FraudAssociated: m.fraudulent[fingerprint]}
	rep.Known = rep.FraudAssociated
	return rep, nil
}

// MemoryDuplicateIndex is the in-process duplicate index. Perceptual matching
// degrades to exact hash equality here; the Redis adapter behaves the same.
type MemoryDuplicateIndex struct {
	mu      sync.RWMutex
	byHash  map[string][]id.ProfileID
	byIDNum map[string][]id.ProfileID
	byPHash map[string][]id.ProfileID
}

// NewMemoryDuplicateIndex builds an empty duplicate index.
func NewMemoryDuplicateIndex() *MemoryDuplicateIndex {
	return &MemoryDuplicateIndex{
		byHash:  make(map[string][]id.ProfileID),
		byIDNum: make(map[string][]id.ProfileID),
		byPHash: make(map[string][]id.ProfileID),
	}
}

// FindByHash implements ports.DuplicateIndex.
func (m *MemoryDuplicateIndex) FindByHash(ctx context.Context, hash string, exclude id.ProfileID) ([]ports.DuplicateMatch, error) {
	return m.lookup(m.byHash, hash, exclude, "EXACT_HASH", 1.0), nil
}

// FindByIDNumber implements ports.DuplicateIndex.
func (m *MemoryDuplicateIndex) FindByIDNumber(ctx context.Context, idNumber string, exclude id.ProfileID) ([]ports.DuplicateMatch, error) {
	return m.lookup(m.byIDNum, idNumber, exclude, "SAME_ID_NUMBER", 1.0), nil
}

// FindSimilar implements ports.DuplicateIndex.
func (m *MemoryDuplicateIndex) FindSimilar(ctx context.Context, perceptualHash string, exclude id.ProfileID) ([]ports.DuplicateMatch, error) {
	return m.lookup(m.byPHash, perceptualHash, exclude, "PERCEPTUAL", perceptualSimilarity), nil
}

// Index implements ports.DuplicateIndex.
func (m *MemoryDuplicateIndex) Index(ctx context.Context, doc ports.DocumentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.Hash != "" {
		m.byHash[doc.Hash] = appendProfile(m.byHash[doc.Hash], doc.ProfileID)
	}
	if extracted := strings.TrimSpace(doc.ExtractedID); extracted != "" {
		m.byIDNum[extracted] = appendProfile(m.byIDNum[extracted], doc.ProfileID)
	}
	if doc.PerceptualHash != "" {
		m.byPHash[doc.PerceptualHash] = appendProfile(m.byPHash[doc.PerceptualHash], doc.ProfileID)
	}
	return nil
}

func (m *MemoryDuplicateIndex) lookup(index map[string][]id.ProfileID, key string, exclude id.ProfileID, matchType string, similarity float64) []ports.DuplicateMatch {
	if key == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matches []ports.DuplicateMatch
	for _, profileID := range index[key] {
		if profileID == exclude {
			continue
		}
		matches = append(matches, ports.DuplicateMatch{
			MatchedProfileID: profileID,
			MatchType:        matchType,
			Similarity:       similarity,
		})
	}
	return matches
}

func appendProfile(list []id.ProfileID, profileID id.ProfileID) []id.ProfileID {
	for _, existing := range list {
		if existing == profileID {
			return list
		}
	}
	return append(list, profileID)
}
