// Package proof implements the artwork proof approval lifecycle.
//
//	awaiting-upload ──MarkArtworkReceived──▶ pending-review ──AddVersion──▶ ready-for-approval
//	ready-for-approval ──Approve──▶ approved
//	ready-for-approval ──RequestRevision──▶ revision-requested ──AddVersion──▶ ready-for-approval
//	ready-for-approval ──(deadline passes)──▶ expired
//
// Expiry is derived: EffectiveStatus reports expired as soon as now is strictly after the
// approval deadline, whether or not Expire has persisted it yet.
package proof

import (
	"time"

	"printsociety/internal/model"

	"github.com/google/uuid"
)

// Status is a proof lifecycle state.
type Status uint8

const (
	AwaitingUpload Status = iota
	PendingReview
	ReadyForApproval
	RevisionRequested
	Approved
	Expired
)

var statuses = model.Enum[Status]{
	Kind:  "proof status",
	Names: []string{"awaiting-upload", "pending-review", "ready-for-approval", "revision-requested", "approved", "expired"},
}

// ParseStatus parses a status name such as "ready-for-approval".
func ParseStatus(s string) (Status, error) { return statuses.Parse(s) }

func (s Status) String() string                { return statuses.Name(s) }
func (s Status) MarshalText() ([]byte, error)  { return statuses.Marshal(s) }
func (s *Status) UnmarshalText(b []byte) error { return statuses.Unmarshal(s, b) }

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	switch s {
	case Approved, Expired:
		return true
	}
	return false
}

// DefaultMaxRevisions is the number of revision requests included with an order.
const DefaultMaxRevisions = 3

// DefaultReviewWindow is how long the customer has to act on a new proof version.
const DefaultReviewWindow = 72 * time.Hour

// Version is one generated proof image.
type Version struct {
	VersionNumber int       `json:"versionNumber"`
	Status        Status    `json:"status"`
	GeneratedBy   string    `json:"generatedBy"`
	Changes       string    `json:"changes,omitempty"`
	ImageURL      string    `json:"imageUrl"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// RevisionRequest records a customer's change request against a version.
type RevisionRequest struct {
	ProofID       uuid.UUID       `json:"proofId"`
	VersionNumber int             `json:"versionNumber"`
	RequestedBy   string          `json:"requestedBy"`
	Role          model.ActorRole `json:"role"`
	Comment       string          `json:"comment"`
	RequestedAt   time.Time       `json:"requestedAt"`
}

// Proof is the approval record for one order's artwork.
//
// RowVersion is the optimistic concurrency token maintained by the repository; the methods
// here never touch it.
type Proof struct {
	ID                  uuid.UUID  `json:"id"`
	OrderID             uuid.UUID  `json:"orderId"`
	Status              Status     `json:"status"`
	TotalRevisions      int        `json:"totalRevisions"`
	MaxRevisionsAllowed int        `json:"maxRevisionsAllowed"`
	ApprovalDeadline    *time.Time `json:"approvalDeadline,omitempty"`
	FirstSentAt         *time.Time `json:"firstSentAt,omitempty"`
	ApprovedBy          string     `json:"approvedBy,omitempty"`
	ApprovedAt          *time.Time `json:"approvedAt,omitempty"`
	CurrentVersion      int        `json:"currentVersion"`
	Versions            []Version  `json:"versions"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	RowVersion          int64      `json:"-"`
}

// New creates a proof for orderID. artworkReady starts it in pending-review instead of
// awaiting-upload. maxRevisions below zero is treated as zero.
func New(id, orderID uuid.UUID, maxRevisions int, artworkReady bool, now time.Time) *Proof {
	status := AwaitingUpload
	if artworkReady {
		status = PendingReview
	}
	return &Proof{
		ID:                  id,
		OrderID:             orderID,
		Status:              status,
		MaxRevisionsAllowed: max(maxRevisions, 0),
		Versions:            []Version{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// EffectiveStatus is the stored status with expiry applied: a proof awaiting approval whose
// deadline is strictly before now reads as expired.
func (p *Proof) EffectiveStatus(now time.Time) Status {
	if p.Status == ReadyForApproval && p.ApprovalDeadline != nil && now.After(*p.ApprovalDeadline) {
		return Expired
	}
	return p.Status
}

// RevisionsRemaining is how many more revisions the customer may request.
func (p *Proof) RevisionsRemaining() int {
	return max(p.MaxRevisionsAllowed-p.TotalRevisions, 0)
}

// Latest returns the most recent version.
func (p *Proof) Latest() (Version, bool) {
	if len(p.Versions) == 0 {
		return Version{}, false
	}
	return p.Versions[len(p.Versions)-1], true
}
