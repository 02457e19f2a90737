package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	pkgerrors "github.com/khidmaty/khidmaty-backend/pkg/errors"
	"github.com/khidmaty/khidmaty-backend/pkg/logger"
	"github.com/khidmaty/khidmaty-backend/pkg/metrics"
	"github.com/khidmaty/khidmaty-backend/pkg/outbox"
	"github.com/khidmaty/khidmaty-backend/pkg/outbox/payloads"
	"github.com/khidmaty/khidmaty-backend/pkg/pagination"
	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

const defaultLockTTL = 15 * time.Second

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type contractLocker interface {
	AcquireContractLock(ctx context.Context, contractID string, ttl time.Duration) (bool, error)
	ReleaseContractLock(ctx context.Context, contractID string) error
}

// Service exposes the contract lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (uuid.UUID, error)
	Sign(ctx context.Context, input SignInput) error
	Withdraw(ctx context.Context, input WithdrawInput) error
	Reject(ctx context.Context, input RejectInput) error
	UpdateTerms(ctx context.Context, input UpdateTermsInput) error
	Get(ctx context.Context, contractID, actorUserID uuid.UUID) (*ContractDetail, error)
	List(ctx context.Context, actorUserID uuid.UUID, role enums.PartyRole, params pagination.Params, filters ListFilters) (*ContractList, error)
	SaveSignatureProfile(ctx context.Context, userID uuid.UUID, method enums.SignatureMethod, artifact string) error
}

type service struct {
	repo        Repository
	engagements EngagementReader
	propagator  EngagementPropagator
	profiles    SignatureProfiles
	outbox      outboxPublisher
	db          *gorm.DB
	locker      contractLocker
	lockTTL     time.Duration
	metrics     *metrics.ContractMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// Option tweaks optional service collaborators.
type Option func(*service)

// WithLocker enables the per-contract Redis mutation lock.
func WithLocker(locker contractLocker, ttl time.Duration) Option {
	return func(s *service) {
		s.locker = locker
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithMetrics wires transition counters.
func WithMetrics(m *metrics.ContractMetrics) Option {
	return func(s *service) {
		s.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds the contract lifecycle service.
func NewService(repo Repository, engagements EngagementReader, propagator EngagementPropagator, profiles SignatureProfiles, publisher outboxPublisher, db *gorm.DB, logg *logger.Logger, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contracts repository required")
	}
	if engagements == nil {
		return nil, fmt.Errorf("engagement reader required")
	}
	if propagator == nil {
		return nil, fmt.Errorf("engagement propagator required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("signature profiles required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	svc := &service{
		repo:        repo,
		engagements: engagements,
		propagator:  propagator,
		profiles:    profiles,
		outbox:      publisher,
		db:          db,
		lockTTL:     defaultLockTTL,
		logg:        logg,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// withLock serializes same-contract mutations from one deployment. Lock
// acquisition failure from a competing mutation surfaces as CONFLICT; the
// compare-and-swap updates below remain the correctness backstop.
func (s *service) withLock(ctx context.Context, contractID uuid.UUID, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	acquired, err := s.locker.AcquireContractLock(ctx, contractID.String(), s.lockTTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire contract lock")
	}
	if !acquired {
		return pkgerrors.New(pkgerrors.CodeConflict, "contract is being modified by another request")
	}
	defer func() {
		if err := s.locker.ReleaseContractLock(ctx, contractID.String()); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "release contract lock failed")
		}
	}()
	return fn()
}

func (s *service) Create(ctx context.Context, input CreateInput) (uuid.UUID, error) {
	if input.ActorUserID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.EngagementID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "engagement id required")
	}

	contract, err := s.buildContract(ctx, input)
	if err != nil {
		return uuid.Nil, err
	}

	existing, err := s.findExisting(ctx, input)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		switch {
		case existing.Status.IsPending():
			// Double-submission guard: hand back the in-flight contract.
			s.countTransition("create", "reused")
			return existing.ID, nil
		case existing.Status == enums.ContractStatusExecuted:
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "an active contract already exists for this engagement")
		default:
			if err := s.cleanupLeftover(ctx, existing.ID); err != nil {
				return uuid.Nil, err
			}
		}
	}

	created, err := s.repo.Create(ctx, contract)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contract")
	}

	if input.Terms != nil {
		terms := termsRow(created.ID, *input.Terms)
		if err := s.repo.UpsertTerms(ctx, terms); err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create binding terms")
		}
	}

	finalPrice := decimal.Zero
	if raw, ok := created.Metadata["final_price"].(string); ok {
		if parsed, err := decimal.NewFromString(raw); err == nil {
			finalPrice = parsed
		}
	}
	s.emitBestEffort(ctx, outbox.DomainEvent{
		EventType:     enums.EventContractCreated,
		AggregateType: enums.AggregateContract,
		AggregateID:   created.ID,
		Version:       1,
		Actor:         actorRef(input.ActorUserID, enums.PartyRoleBuyer),
		Data: payloads.ContractCreatedEvent{
			ContractID: created.ID,
			BuyerID:    created.BuyerID,
			SellerID:   created.SellerID,
			BookingID:  created.BookingID,
			QuoteID:    created.QuoteID,
			Status:     created.Status,
			Version:    created.Version,
			FinalPrice: finalPrice,
		},
	})
	s.notifyBestEffort(ctx, created.SellerID, enums.NotificationTypeContractCreated, created.ID, input.ActorUserID, enums.PartyRoleBuyer)

	s.countTransition("create", "created")
	return created.ID, nil
}

func (s *service) buildContract(ctx context.Context, input CreateInput) (*models.Contract, error) {
	var (
		snapshot MetadataSnapshot
		contract models.Contract
	)

	switch input.Kind {
	case EngagementKindBooking:
		booking, err := s.engagements.FindBooking(ctx, input.EngagementID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booking.BuyerID != input.ActorUserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer may accept this booking")
		}
		if booking.Status != enums.BookingStatusSellerResponded {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking has no seller response to accept")
		}
		price := booking.OfferedPrice
		if booking.CounterPrice != nil {
			price = *booking.CounterPrice
		}
		date := booking.ScheduledDate
		if booking.CounterDate != nil {
			date = *booking.CounterDate
		}
		location := booking.Location
		snapshot = MetadataSnapshot{
			FinalPrice:      price,
			ScheduledDate:   &date,
			TimePreference:  booking.TimePreference,
			ServiceCategory: booking.ServiceCategory,
			Location:        &location,
		}
		bookingID := booking.ID
		contract = models.Contract{
			BuyerID:   booking.BuyerID,
			SellerID:  booking.SellerID,
			BookingID: &bookingID,
		}

	case EngagementKindQuote:
		quote, err := s.engagements.FindQuote(ctx, input.EngagementID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
		}
		if quote.BuyerID != input.ActorUserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer may accept this quote")
		}
		if quote.Status != enums.QuoteStatusPending {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quote is not open for acceptance")
		}
		request, err := s.engagements.FindRequest(ctx, quote.RequestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "maintenance request not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load maintenance request")
		}
		location := request.Location
		snapshot = MetadataSnapshot{
			FinalPrice:      quote.Price,
			ScheduledDate:   request.PreferredDate,
			TimePreference:  request.TimePreference,
			ServiceCategory: request.ServiceCategory,
			Location:        &location,
		}
		quoteID := quote.ID
		contract = models.Contract{
			BuyerID:  quote.BuyerID,
			SellerID: quote.SellerID,
			QuoteID:  &quoteID,
		}

	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "engagement kind must be booking or quote")
	}

	metadata, err := snapshotMap(snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "freeze metadata snapshot")
	}
	contract.Status = enums.ContractStatusPendingBuyer
	contract.Version = 1
	contract.Metadata = metadata
	return &contract, nil
}

func (s *service) findExisting(ctx context.Context, input CreateInput) (*models.Contract, error) {
	var (
		existing *models.Contract
		err      error
	)
	if input.Kind == EngagementKindBooking {
		existing, err = s.repo.FindByBooking(ctx, input.EngagementID)
	} else {
		existing, err = s.repo.FindByQuote(ctx, input.EngagementID)
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup existing contract")
	}
	return existing, nil
}

// cleanupLeftover removes a rejected or orphaned contract child-first so a
// fresh one can take its place.
func (s *service) cleanupLeftover(ctx context.Context, contractID uuid.UUID) error {
	if err := s.repo.DeleteTermsByContract(ctx, contractID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete leftover terms")
	}
	if err := s.repo.DeleteSignaturesByContract(ctx, contractID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete leftover signatures")
	}
	if _, err := s.repo.DeleteByID(ctx, contractID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete leftover contract")
	}
	return nil
}

func (s *service) Sign(ctx context.Context, input SignInput) error {
	if input.ContractID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.withLock(ctx, input.ContractID, func() error {
		contract, err := s.repo.FindByID(ctx, input.ContractID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
		}

		role, isParty := contract.RoleOf(input.ActorUserID)
		if !isParty {
			return pkgerrors.New(pkgerrors.CodeForbidden, "user is not a party to this contract")
		}
		if !allows(opSign, contract.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "contract is not in a signable status")
		}
		if contract.SignedAt(role) != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "this party has already signed")
		}

		profile, err := s.profiles.FindByUser(ctx, input.ActorUserID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeValidation, "no stored signature artifact for user")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load signature profile")
		}

		checksum, err := MetadataChecksum(contract.Metadata)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checksum contract metadata")
		}

		signedAt := s.now()
		method := input.Method
		if method == "" {
			method = profile.Method
		}
		signature := &models.ContractSignature{
			ContractID:    contract.ID,
			UserID:        input.ActorUserID,
			Role:          role,
			Version:       contract.Version,
			SignatureHash: SignatureHash(profile.Artifact, contract.ID, contract.Version, checksum, signedAt),
			Method:        method,
			SignedAt:      signedAt,
		}
		if err := s.repo.InsertSignature(ctx, signature); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert signature")
		}

		updated, err := s.repo.SetSigned(ctx, contract.ID, role, signedAt, statusAfterSignature(role))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record signature timestamp")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "contract state changed while signing")
		}

		current, err := s.repo.FindByID(ctx, contract.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload contract")
		}

		if current.SignedAtBuyer != nil && current.SignedAtSeller != nil {
			return s.execute(ctx, current, input.ActorUserID, role)
		}

		s.emitBestEffort(ctx, outbox.DomainEvent{
			EventType:     enums.EventContractSigned,
			AggregateType: enums.AggregateContract,
			AggregateID:   current.ID,
			Version:       1,
			Actor:         actorRef(input.ActorUserID, role),
			Data: payloads.ContractSignedEvent{
				ContractID: current.ID,
				SignerID:   input.ActorUserID,
				SignerRole: role,
				Status:     current.Status,
				Version:    current.Version,
				SignedAt:   signedAt,
			},
		})
		counterparty := current.SellerID
		if role == enums.PartyRoleSeller {
			counterparty = current.BuyerID
		}
		s.notifyBestEffort(ctx, counterparty, enums.NotificationTypeContractSigned, current.ID, input.ActorUserID, role)

		s.countTransition("sign", "signed")
		return nil
	})
}

func (s *service) execute(ctx context.Context, contract *models.Contract, actorID uuid.UUID, role enums.PartyRole) error {
	executedAt := s.now()
	flipped, err := s.repo.MarkExecuted(ctx, contract.ID, executedAt)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark contract executed")
	}
	if !flipped {
		// Another request already moved the contract to executed.
		current, err := s.repo.FindByID(ctx, contract.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload contract after execute race")
		}
		if current.Status == enums.ContractStatusExecuted {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "contract state changed while executing")
	}

	contract.Status = enums.ContractStatusExecuted
	contract.ExecutedAt = &executedAt
	if err := s.propagator.OnExecuted(ctx, contract); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "propagate execution to engagement")
	}

	s.emitBestEffort(ctx, outbox.DomainEvent{
		EventType:     enums.EventContractExecuted,
		AggregateType: enums.AggregateContract,
		AggregateID:   contract.ID,
		Version:       1,
		Actor:         actorRef(actorID, role),
		Data: payloads.ContractExecutedEvent{
			ContractID: contract.ID,
			BuyerID:    contract.BuyerID,
			SellerID:   contract.SellerID,
			BookingID:  contract.BookingID,
			QuoteID:    contract.QuoteID,
			ExecutedAt: executedAt,
		},
	})
	counterparty := contract.SellerID
	if role == enums.PartyRoleSeller {
		counterparty = contract.BuyerID
	}
	s.notifyBestEffort(ctx, counterparty, enums.NotificationTypeContractExecuted, contract.ID, actorID, role)

	s.countTransition("sign", "executed")
	return nil
}

func (s *service) Withdraw(ctx context.Context, input WithdrawInput) error {
	if input.ContractID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.withLock(ctx, input.ContractID, func() error {
		// Re-fetch immediately before acting: the counterparty may have
		// signed, or another device may have already withdrawn.
		contract, err := s.repo.FindByID(ctx, input.ContractID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeAlreadyResolved, "contract no longer exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
		}

		role, isParty := contract.RoleOf(input.ActorUserID)
		if !isParty {
			return pkgerrors.New(pkgerrors.CodeForbidden, "user is not a party to this contract")
		}
		if !allows(opWithdraw, contract.Status) {
			return pkgerrors.New(pkgerrors.CodeAlreadyResolved, "contract already resolved")
		}
		if contract.SignedAt(role.Counterparty()) != nil {
			return pkgerrors.New(pkgerrors.CodeAlreadyResolved, "counterparty has already signed")
		}
		if contract.SignedAt(role) == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only the sole signer may withdraw")
		}

		// Child rows first so foreign keys never block the contract delete.
		// If the guarded parent delete below then fails, the survivor is a
		// contract whose signed_at stamps have no backing signature rows. The
		// Redis lock keeps that window to cross-deployment races; the
		// reconcile sweep exists for whatever slips through.
		if err := s.repo.DeleteTermsByContract(ctx, contract.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete binding terms")
		}
		if err := s.repo.DeleteSignaturesByContract(ctx, contract.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete signatures")
		}
		deleted, err := s.repo.DeleteIfSoleSigner(ctx, contract.ID, contract.Status, role)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete contract")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeAlreadyResolved, "contract state changed before deletion")
		}

		stillThere, err := s.repo.ExistsByID(ctx, contract.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify contract deletion")
		}
		if stillThere {
			return pkgerrors.New(pkgerrors.CodeDependency, "failed to delete contract")
		}

		if err := s.propagator.OnWithdrawn(ctx, contract); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert engagement status")
		}

		withdrawnAt := s.now()
		s.emitBestEffort(ctx, outbox.DomainEvent{
			EventType:     enums.EventContractWithdrawn,
			AggregateType: enums.AggregateContract,
			AggregateID:   contract.ID,
			Version:       1,
			Actor:         actorRef(input.ActorUserID, role),
			Data: payloads.ContractWithdrawnEvent{
				ContractID:  contract.ID,
				WithdrawnBy: input.ActorUserID,
				Role:        role,
				BookingID:   contract.BookingID,
				QuoteID:     contract.QuoteID,
				WithdrawnAt: withdrawnAt,
			},
		})
		counterparty := contract.SellerID
		if role == enums.PartyRoleSeller {
			counterparty = contract.BuyerID
		}
		s.notifyBestEffort(ctx, counterparty, enums.NotificationTypeContractWithdrawn, contract.ID, input.ActorUserID, role)

		s.countTransition("withdraw", "withdrawn")
		return nil
	})
}

func (s *service) Reject(ctx context.Context, input RejectInput) error {
	if input.ContractID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.withLock(ctx, input.ContractID, func() error {
		contract, err := s.repo.FindByID(ctx, input.ContractID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
		}

		role, isParty := contract.RoleOf(input.ActorUserID)
		if !isParty {
			return pkgerrors.New(pkgerrors.CodeForbidden, "user is not a party to this contract")
		}
		if !allows(opReject, contract.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "contract cannot be rejected in its current status")
		}

		flipped, err := s.repo.UpdateStatusIf(ctx, contract.ID, contract.Status, enums.ContractStatusRejected)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark contract rejected")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeAlreadyResolved, "contract state changed before rejection")
		}

		contract.Status = enums.ContractStatusRejected
		if err := s.propagator.OnRejected(ctx, contract); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "propagate rejection to engagement")
		}

		rejectedAt := s.now()
		s.emitBestEffort(ctx, outbox.DomainEvent{
			EventType:     enums.EventContractRejected,
			AggregateType: enums.AggregateContract,
			AggregateID:   contract.ID,
			Version:       1,
			Actor:         actorRef(input.ActorUserID, role),
			Data: payloads.ContractRejectedEvent{
				ContractID: contract.ID,
				RejectedBy: input.ActorUserID,
				Role:       role,
				Reason:     input.Reason,
				RejectedAt: rejectedAt,
			},
		})
		counterparty := contract.SellerID
		if role == enums.PartyRoleSeller {
			counterparty = contract.BuyerID
		}
		s.notifyBestEffort(ctx, counterparty, enums.NotificationTypeContractRejected, contract.ID, input.ActorUserID, role)

		s.countTransition("reject", "rejected")
		return nil
	})
}

func (s *service) UpdateTerms(ctx context.Context, input UpdateTermsInput) error {
	if input.ContractID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.withLock(ctx, input.ContractID, func() error {
		contract, err := s.repo.FindByID(ctx, input.ContractID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
		}

		if contract.BuyerID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer may edit binding terms")
		}
		if !allows(opUpdateTerms, contract.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "binding terms are frozen after resolution")
		}

		if err := s.repo.UpsertTerms(ctx, termsRow(contract.ID, input.Terms)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save binding terms")
		}

		// Any collected signature covered the old document. Advance the
		// version and drop the stamps so both parties must re-sign.
		bumped, err := s.repo.ResetForNewVersion(ctx, contract.ID, contract.Version)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance contract version")
		}
		if !bumped {
			return pkgerrors.New(pkgerrors.CodeAlreadyResolved, "contract state changed while updating terms")
		}
		if err := s.repo.DeleteSignaturesByContract(ctx, contract.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear stale signatures")
		}

		s.emitBestEffort(ctx, outbox.DomainEvent{
			EventType:     enums.EventContractTermsUpdated,
			AggregateType: enums.AggregateContract,
			AggregateID:   contract.ID,
			Version:       1,
			Actor:         actorRef(input.ActorUserID, enums.PartyRoleBuyer),
			Data: payloads.ContractTermsUpdatedEvent{
				ContractID:  contract.ID,
				UpdatedBy:   input.ActorUserID,
				FromVersion: contract.Version,
				ToVersion:   contract.Version + 1,
			},
		})
		s.notifyBestEffort(ctx, contract.SellerID, enums.NotificationTypeTermsUpdated, contract.ID, input.ActorUserID, enums.PartyRoleBuyer)

		s.countTransition("update_terms", "version_bumped")
		return nil
	})
}

func (s *service) Get(ctx context.Context, contractID, actorUserID uuid.UUID) (*ContractDetail, error) {
	contract, err := s.repo.FindByID(ctx, contractID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
	}
	if _, isParty := contract.RoleOf(actorUserID); !isParty {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "user is not a party to this contract")
	}

	detail := &ContractDetail{
		ID:             contract.ID,
		BuyerID:        contract.BuyerID,
		SellerID:       contract.SellerID,
		BookingID:      contract.BookingID,
		QuoteID:        contract.QuoteID,
		Status:         contract.Status,
		Version:        contract.Version,
		Metadata:       contract.Metadata,
		SignedAtBuyer:  contract.SignedAtBuyer,
		SignedAtSeller: contract.SignedAtSeller,
		ExecutedAt:     contract.ExecutedAt,
		CreatedAt:      contract.CreatedAt,
		Signatures:     make([]SignatureView, 0, len(contract.Signatures)),
	}
	if contract.Terms != nil {
		detail.Terms = &TermsView{
			StartDate:       contract.Terms.StartDate,
			CompletionDate:  contract.Terms.CompletionDate,
			WarrantyDays:    contract.Terms.WarrantyDays,
			PaymentSchedule: contract.Terms.PaymentSchedule,
		}
	}
	for _, sig := range contract.Signatures {
		detail.Signatures = append(detail.Signatures, SignatureView{
			UserID:   sig.UserID,
			Role:     sig.Role,
			Version:  sig.Version,
			Method:   sig.Method,
			SignedAt: sig.SignedAt,
		})
	}
	return detail, nil
}

func (s *service) List(ctx context.Context, actorUserID uuid.UUID, role enums.PartyRole, params pagination.Params, filters ListFilters) (*ContractList, error) {
	if actorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid party role")
	}
	list, err := s.repo.ListByParty(ctx, actorUserID, role, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contracts")
	}
	return list, nil
}

func (s *service) SaveSignatureProfile(ctx context.Context, userID uuid.UUID, method enums.SignatureMethod, artifact string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid signature method")
	}
	if artifact == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "signature artifact required")
	}
	profile := &models.SignatureProfile{
		UserID:   userID,
		Method:   method,
		Artifact: artifact,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save signature profile")
	}
	return nil
}

// emitBestEffort queues a domain event without letting outbox failures roll
// back the state transition that produced it.
func (s *service) emitBestEffort(ctx context.Context, event outbox.DomainEvent) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.Emit(ctx, s.db, event); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event_type":   event.EventType,
			"aggregate_id": event.AggregateID.String(),
		})
		s.logg.Error(logCtx, "emit contract event failed", err)
	}
}

func (s *service) notifyBestEffort(ctx context.Context, userID uuid.UUID, ntype enums.NotificationType, contractID, actorID uuid.UUID, role enums.PartyRole) {
	event := outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateNotification,
		AggregateID:   userID,
		Version:       1,
		Actor:         actorRef(actorID, role),
		Data: payloads.NotificationRequestedEvent{
			UserID: userID,
			Type:   ntype,
			Link:   "/contracts/" + contractID.String(),
		},
	}
	if err := s.outbox.Emit(ctx, s.db, event); err != nil && s.logg != nil {
		s.logg.Error(ctx, "queue notification failed", multierr.Append(err, fmt.Errorf("notification type %s", ntype)))
	}
}

func (s *service) countTransition(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.IncTransition(operation, outcome)
	}
}

func actorRef(userID uuid.UUID, role enums.PartyRole) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: userID,
		Role:   role.String(),
	}
}

func termsRow(contractID uuid.UUID, input TermsInput) *models.BindingTerms {
	schedule := input.PaymentSchedule
	if schedule == nil {
		schedule = types.JSONMap{}
	}
	return &models.BindingTerms{
		ContractID:      contractID,
		StartDate:       input.StartDate,
		CompletionDate:  input.CompletionDate,
		WarrantyDays:    input.WarrantyDays,
		PaymentSchedule: schedule,
	}
}

func snapshotMap(snapshot MetadataSnapshot) (types.JSONMap, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	var metadata types.JSONMap
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}
