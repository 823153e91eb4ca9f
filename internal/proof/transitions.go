package proof

import (
	"time"

	"printsociety/internal/model"
)

// MarkArtworkReceived moves a proof waiting on customer artwork into the review queue.
func (p *Proof) MarkArtworkReceived(now time.Time) error {
	if p.Status != AwaitingUpload {
		return notReady(p.Status)
	}
	p.Status = PendingReview
	p.UpdatedAt = now
	return nil
}

// AddVersion publishes a new proof image for customer approval and restarts the approval
// window. TotalRevisions is not changed. A version may be re-issued while the previous one is
// still awaiting approval. An expired proof stays expired whether or not the sweep has
// persisted it.
func (p *Proof) AddVersion(generatedBy, changes, imageURL string, now time.Time, window time.Duration) (Version, error) {
	switch status := p.EffectiveStatus(now); status {
	case PendingReview, RevisionRequested, ReadyForApproval:
	case Approved:
		return Version{}, model.ErrAlreadyApproved
	case Expired:
		return Version{}, model.ErrDeadlinePassed
	default:
		return Version{}, notReady(status)
	}

	v := Version{
		VersionNumber: p.CurrentVersion + 1,
		Status:        ReadyForApproval,
		GeneratedBy:   generatedBy,
		Changes:       changes,
		ImageURL:      imageURL,
		GeneratedAt:   now,
	}
	p.Versions = append(p.Versions, v)
	p.CurrentVersion = v.VersionNumber

	deadline := now.Add(window)
	p.ApprovalDeadline = &deadline
	if p.FirstSentAt == nil {
		sent := now
		p.FirstSentAt = &sent
	}
	p.Status = ReadyForApproval
	p.UpdatedAt = now

	return v, nil
}

// Approve accepts the current version. It is rejected once the approval deadline has passed.
func (p *Proof) Approve(actor string, now time.Time) error {
	if err := p.checkActionable(now); err != nil {
		return err
	}

	approvedAt := now
	p.Status = Approved
	p.ApprovedBy = actor
	p.ApprovedAt = &approvedAt
	p.UpdatedAt = now
	p.snapshotLatest(Approved)

	return nil
}

// RequestRevision records a change request against the current version. The revision limit
// is checked before the counter is incremented.
func (p *Proof) RequestRevision(actor string, role model.ActorRole, comment string, now time.Time) (RevisionRequest, error) {
	if err := p.checkActionable(now); err != nil {
		return RevisionRequest{}, err
	}
	if p.TotalRevisions >= p.MaxRevisionsAllowed {
		return RevisionRequest{}, model.ErrRevisionLimitExceeded
	}

	p.TotalRevisions++
	p.Status = RevisionRequested
	p.UpdatedAt = now
	p.snapshotLatest(RevisionRequested)

	return RevisionRequest{
		ProofID:       p.ID,
		VersionNumber: p.CurrentVersion,
		RequestedBy:   actor,
		Role:          role,
		Comment:       comment,
		RequestedAt:   now,
	}, nil
}

// Expire persists a derived expiry. It reports whether anything changed.
func (p *Proof) Expire(now time.Time) bool {
	if p.Status != ReadyForApproval || p.EffectiveStatus(now) != Expired {
		return false
	}
	p.Status = Expired
	p.UpdatedAt = now
	p.snapshotLatest(Expired)
	return true
}

// checkActionable guards the customer actions, which are only valid on a proof awaiting
// approval within its deadline.
func (p *Proof) checkActionable(now time.Time) error {
	switch status := p.EffectiveStatus(now); status {
	case ReadyForApproval:
		return nil
	case Approved:
		return model.ErrAlreadyApproved
	case Expired:
		return model.ErrDeadlinePassed
	case AwaitingUpload, PendingReview, RevisionRequested:
		return notReady(status)
	default:
		return notReady(status)
	}
}

func (p *Proof) snapshotLatest(status Status) {
	if n := len(p.Versions); n > 0 {
		p.Versions[n-1].Status = status
	}
}

func notReady(status Status) error {
	return model.ErrProofNotReady.WithMessage("This proof is not waiting for your approval (status: %s)", status)
}
