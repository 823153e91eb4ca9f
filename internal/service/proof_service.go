package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"printsociety/internal/clock"
	"printsociety/internal/model"
	"printsociety/internal/notify"
	"printsociety/internal/order"
	"printsociety/internal/proof"
	"printsociety/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const sweepBatchSize = 200

// errUnchanged ends a proof mutation without writing.
var errUnchanged = errors.New("proof unchanged")

// proofService implements ProofService.
type proofService struct {
	proofRepo  repository.ProofRepository
	orderRepo  repository.OrderRepository
	outboxRepo repository.OutboxRepository
	settings   Settings
	clock      clock.Clock
	logger     zerolog.Logger
	sweepBatch int
}

// NewProofService creates a new proof service.
func NewProofService(
	proofRepo repository.ProofRepository,
	orderRepo repository.OrderRepository,
	outboxRepo repository.OutboxRepository,
	settings Settings,
	clk clock.Clock,
	logger zerolog.Logger,
) ProofService {
	return &proofService{
		proofRepo:  proofRepo,
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		settings:   settings,
		clock:      clk,
		logger:     logger.With().Str("service", "proof").Logger(),
		sweepBatch: sweepBatchSize,
	}
}

func (s *proofService) GetByID(ctx context.Context, id uuid.UUID) (*proof.Proof, error) {
	p, err := s.proofRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("proof_id", id.String()).Msg("failed to get proof")
		return nil, fmt.Errorf("failed to get proof: %w", err)
	}
	if p == nil {
		return nil, model.ErrProofNotFound
	}
	return p, nil
}

func (s *proofService) MarkArtworkReceived(ctx context.Context, id uuid.UUID) (*proof.Proof, error) {
	return s.mutate(ctx, id, func(_ pgx.Tx, p *proof.Proof, now time.Time) error {
		return p.MarkArtworkReceived(now)
	})
}

// AddVersion publishes a proof image and emails the customer a link to review it.
func (s *proofService) AddVersion(ctx context.Context, id uuid.UUID, req model.ProofVersionRequest) (*proof.Proof, error) {
	return s.mutate(ctx, id, func(tx pgx.Tx, p *proof.Proof, now time.Time) error {
		v, err := p.AddVersion(req.GeneratedBy, req.Changes, req.ImageURL, now, s.settings.ReviewWindow)
		if err != nil {
			return err
		}

		o, err := s.lockOrder(ctx, tx, p.OrderID)
		if err != nil {
			return err
		}

		intent := orderIntent(notify.ProofReady, o)
		intent.ProofURL = s.settings.ProofBaseURL + p.ID.String()
		intent.VersionNumber = v.VersionNumber
		intent.Deadline = p.ApprovalDeadline
		return enqueue(ctx, tx, s.outboxRepo, intent, now)
	})
}

// Approve accepts the current version and moves the order into proof-approved in the same
// transaction.
func (s *proofService) Approve(ctx context.Context, id uuid.UUID, actor string) (*proof.Proof, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = model.RoleCustomer.String()
	}

	return s.mutate(ctx, id, func(tx pgx.Tx, p *proof.Proof, now time.Time) error {
		if err := p.Approve(actor, now); err != nil {
			return err
		}

		o, err := s.lockOrder(ctx, tx, p.OrderID)
		if err != nil {
			return err
		}
		if err := o.OnProofApproved(now); err != nil {
			s.logger.Error().Err(err).
				Str("proof_id", p.ID.String()).
				Str("order_id", o.ID.String()).
				Str("order_status", o.Status.String()).
				Msg("order cannot accept proof approval")
			return err
		}
		if err := s.orderRepo.Update(ctx, tx, o); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		return enqueue(ctx, tx, s.outboxRepo, orderIntent(notify.ProofApproved, o), now)
	})
}

func (s *proofService) RequestRevision(ctx context.Context, id uuid.UUID, req model.RevisionRequest) (*proof.Proof, error) {
	return s.mutate(ctx, id, func(tx pgx.Tx, p *proof.Proof, now time.Time) error {
		rev, err := p.RequestRevision(req.RequestedBy, req.Role, req.Comment, now)
		if err != nil {
			return err
		}
		if err := s.proofRepo.AddRevision(ctx, tx, rev); err != nil {
			return fmt.Errorf("failed to record revision: %w", err)
		}

		o, err := s.lockOrder(ctx, tx, p.OrderID)
		if err != nil {
			return err
		}

		intent := orderIntent(notify.RevisionRequested, o)
		intent.Comment = rev.Comment
		intent.RevisionsRemaining = p.RevisionsRemaining()
		return enqueue(ctx, tx, s.outboxRepo, intent, now)
	})
}

// SweepExpired persists expiry for overdue proofs, one batch at a time until the backlog is
// drained. A proof that fails to expire does not stop the sweep; the failures are returned
// together and the failed proofs are not retried within the same sweep.
func (s *proofService) SweepExpired(ctx context.Context) (int, error) {
	expired, overdue := 0, 0
	failed := make(map[uuid.UUID]bool)
	var errs []error

	for {
		ids, err := s.proofRepo.ListOverdue(ctx, s.clock.Now(), s.sweepBatch)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to list overdue proofs")
			errs = append(errs, fmt.Errorf("failed to list overdue proofs: %w", err))
			break
		}
		overdue += len(ids)

		progress := 0
		for _, id := range ids {
			if failed[id] {
				continue
			}
			changed := false
			_, err := s.mutate(ctx, id, func(_ pgx.Tx, p *proof.Proof, now time.Time) error {
				if !p.Expire(now) {
					return errUnchanged
				}
				changed = true
				return nil
			})
			if err != nil {
				s.logger.Warn().Err(err).Str("proof_id", id.String()).Msg("failed to expire proof")
				errs = append(errs, fmt.Errorf("proof %s: %w", id, err))
				failed[id] = true
				continue
			}
			if changed {
				progress++
			}
		}
		expired += progress

		// A short batch means the backlog is drained. A full batch without progress would
		// only list the same proofs again.
		if len(ids) < s.sweepBatch || progress == 0 || ctx.Err() != nil {
			break
		}
	}

	s.logger.Info().Int("overdue", overdue).Int("expired", expired).Msg("proof sweep finished")

	return expired, errors.Join(errs...)
}

// mutate loads the proof, applies fn and writes it back with a row version check. A write that
// loses the race is retried once against a fresh read.
func (s *proofService) mutate(ctx context.Context, id uuid.UUID, fn func(tx pgx.Tx, p *proof.Proof, now time.Time) error) (*proof.Proof, error) {
	for attempt := 1; ; attempt++ {
		p, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		from := p.Status
		err = inTx(ctx, s.orderRepo, s.logger, func(tx pgx.Tx) error {
			if err := fn(tx, p, now); err != nil {
				return err
			}
			return s.proofRepo.Update(ctx, tx, p)
		})

		switch {
		case err == nil:
			s.logger.Info().
				Str("proof_id", id.String()).
				Str("from", from.String()).
				Str("to", p.Status.String()).
				Int("version", p.CurrentVersion).
				Msg("proof updated")
			return p, nil
		case errors.Is(err, errUnchanged):
			return p, nil
		case errors.Is(err, model.ErrStaleProof) && attempt == 1:
			s.logger.Warn().Str("proof_id", id.String()).Msg("concurrent proof update, retrying")
			continue
		default:
			return nil, err
		}
	}
}

func (s *proofService) lockOrder(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if o == nil {
		return nil, model.ErrOrderNotFound
	}
	return o, nil
}
