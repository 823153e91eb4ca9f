package repository

import (
	"context"
	"fmt"
	"time"

	"printsociety/internal/model"
	"printsociety/internal/proof"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const proofColumns = `id, order_id, status, total_revisions, max_revisions_allowed, approval_deadline,
	first_sent_at, approved_by, approved_at, current_version, row_version, created_at, updated_at`

const upsertVersionQuery = `
	INSERT INTO proof_versions (proof_id, version_number, status, generated_by, changes, image_url, generated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (proof_id, version_number) DO UPDATE SET status = EXCLUDED.status
`

// proofRepository implements the ProofRepository interface using PostgreSQL.
type proofRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewProofRepository creates a new PostgreSQL-backed proof repository.
func NewProofRepository(db DB, logger zerolog.Logger) ProofRepository {
	return &proofRepository{
		db:     db,
		logger: logger.With().Str("repository", "proof").Logger(),
	}
}

// Create inserts a new proof and starts its row version at 1.
func (r *proofRepository) Create(ctx context.Context, tx pgx.Tx, p *proof.Proof) error {
	query := `
		INSERT INTO proofs (` + proofColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $12)
	`

	_, err := tx.Exec(ctx, query, p.ID, p.OrderID, p.Status.String(), p.TotalRevisions, p.MaxRevisionsAllowed,
		p.ApprovalDeadline, p.FirstSentAt, p.ApprovedBy, p.ApprovedAt, p.CurrentVersion, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("proof_id", p.ID.String()).Msg("failed to create proof")
		return fmt.Errorf("failed to create proof: %w", err)
	}

	for _, v := range p.Versions {
		if err := r.saveVersion(ctx, tx, p.ID, v); err != nil {
			return err
		}
	}

	p.RowVersion = 1
	return nil
}

// GetByID retrieves a proof with its versions.
func (r *proofRepository) GetByID(ctx context.Context, id uuid.UUID) (*proof.Proof, error) {
	query := `SELECT ` + proofColumns + ` FROM proofs WHERE id = $1`

	var p proof.Proof
	var status string
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.OrderID, &status, &p.TotalRevisions,
		&p.MaxRevisionsAllowed, &p.ApprovalDeadline, &p.FirstSentAt, &p.ApprovedBy, &p.ApprovedAt,
		&p.CurrentVersion, &p.RowVersion, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("proof_id", id.String()).Msg("proof not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("proof_id", id.String()).Msg("failed to query proof")
		return nil, fmt.Errorf("failed to query proof: %w", err)
	}
	if p.Status, err = proof.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("failed to query proof: %w", err)
	}

	versionsQuery := `
		SELECT version_number, status, generated_by, changes, image_url, generated_at
		FROM proof_versions
		WHERE proof_id = $1
		ORDER BY version_number
	`

	rows, err := r.db.Query(ctx, versionsQuery, id)
	if err != nil {
		r.logger.Error().Err(err).Str("proof_id", id.String()).Msg("failed to query proof versions")
		return nil, fmt.Errorf("failed to query proof versions: %w", err)
	}
	defer rows.Close()

	p.Versions = []proof.Version{}
	for rows.Next() {
		var v proof.Version
		var vStatus string
		if err := rows.Scan(&v.VersionNumber, &vStatus, &v.GeneratedBy, &v.Changes, &v.ImageURL, &v.GeneratedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan proof version row")
			return nil, fmt.Errorf("failed to scan proof version: %w", err)
		}
		if v.Status, err = proof.ParseStatus(vStatus); err != nil {
			return nil, fmt.Errorf("failed to scan proof version: %w", err)
		}
		p.Versions = append(p.Versions, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating proof version rows")
		return nil, fmt.Errorf("error iterating proof versions: %w", err)
	}

	return &p, nil
}

// Update performs a compare-and-set on row_version, then writes the latest version snapshot.
func (r *proofRepository) Update(ctx context.Context, tx pgx.Tx, p *proof.Proof) error {
	query := `
		UPDATE proofs
		SET status = $3, total_revisions = $4, approval_deadline = $5, first_sent_at = $6,
			approved_by = $7, approved_at = $8, current_version = $9, updated_at = $10,
			row_version = row_version + 1
		WHERE id = $1 AND row_version = $2
	`

	tag, err := tx.Exec(ctx, query, p.ID, p.RowVersion, p.Status.String(), p.TotalRevisions,
		p.ApprovalDeadline, p.FirstSentAt, p.ApprovedBy, p.ApprovedAt, p.CurrentVersion, p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("proof_id", p.ID.String()).Msg("failed to update proof")
		return fmt.Errorf("failed to update proof: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("proof_id", p.ID.String()).
			Int64("row_version", p.RowVersion).
			Msg("stale proof write rejected")
		return model.ErrStaleProof
	}
	p.RowVersion++

	if v, ok := p.Latest(); ok {
		if err := r.saveVersion(ctx, tx, p.ID, v); err != nil {
			return err
		}
	}

	return nil
}

func (r *proofRepository) saveVersion(ctx context.Context, tx pgx.Tx, proofID uuid.UUID, v proof.Version) error {
	_, err := tx.Exec(ctx, upsertVersionQuery, proofID, v.VersionNumber, v.Status.String(), v.GeneratedBy,
		v.Changes, v.ImageURL, v.GeneratedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("proof_id", proofID.String()).
			Int("version", v.VersionNumber).
			Msg("failed to save proof version")
		return fmt.Errorf("failed to save proof version: %w", err)
	}
	return nil
}

// AddRevision records a customer change request.
func (r *proofRepository) AddRevision(ctx context.Context, tx pgx.Tx, rr proof.RevisionRequest) error {
	query := `
		INSERT INTO proof_revisions (proof_id, version_number, requested_by, role, comment, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query, rr.ProofID, rr.VersionNumber, rr.RequestedBy, rr.Role.String(), rr.Comment, rr.RequestedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("proof_id", rr.ProofID.String()).Msg("failed to record revision request")
		return fmt.Errorf("failed to record revision request: %w", err)
	}
	return nil
}

// ListOverdue returns proofs awaiting approval whose deadline is before now, oldest first.
func (r *proofRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM proofs
		WHERE status = $1 AND approval_deadline < $2
		ORDER BY approval_deadline
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, proof.ReadyForApproval.String(), now, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query overdue proofs")
		return nil, fmt.Errorf("failed to query overdue proofs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan overdue proof row")
			return nil, fmt.Errorf("failed to scan overdue proof: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating overdue proof rows")
		return nil, fmt.Errorf("error iterating overdue proofs: %w", err)
	}

	return ids, nil
}
