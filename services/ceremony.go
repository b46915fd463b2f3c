package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"attendance_ms/domain"
	"attendance_ms/repository/command_repository"
	"attendance_ms/repository/query_repository"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Transactor is satisfied by *gorm.DB.
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

type ICeremonyService interface {
	BeginRegistration(ctx context.Context, userID uuid.UUID) (*protocol.PublicKeyCredentialCreationOptions, error)
	FinishRegistration(ctx context.Context, userID uuid.UUID, body []byte) error
	BeginAuthentication(ctx context.Context, userID uuid.UUID) (*protocol.PublicKeyCredentialRequestOptions, error)
	FinishAuthentication(ctx context.Context, userID uuid.UUID, body []byte) error
}

type CeremonyDeps struct {
	WebAuthn           *webauthn.WebAuthn
	DB                 *gorm.DB
	ProfileQuery       query_repository.IProfileQueryRepository
	ProfileCommand     command_repository.IProfileCommandRepository
	CredentialCommand  command_repository.ICredentialCommandRepository
	Challenges         IChallengeStore
	Events             IEventPublisher
	Metrics            *Metrics
	Clock              clockwork.Clock
	Logger             *zap.Logger
	VerificationWindow time.Duration
}

type CeremonyService struct {
	wa                 *webauthn.WebAuthn
	db                 *gorm.DB
	tx                 Transactor
	profileQuery       query_repository.IProfileQueryRepository
	profileCommand     command_repository.IProfileCommandRepository
	credentialCommand  command_repository.ICredentialCommandRepository
	challenges         IChallengeStore
	events             IEventPublisher
	metrics            *Metrics
	clock              clockwork.Clock
	logger             *zap.Logger
	verificationWindow time.Duration
}

func NewCeremonyService(d CeremonyDeps) *CeremonyService {
	s := &CeremonyService{
		wa:                 d.WebAuthn,
		db:                 d.DB,
		profileQuery:       d.ProfileQuery,
		profileCommand:     d.ProfileCommand,
		credentialCommand:  d.CredentialCommand,
		challenges:         d.Challenges,
		events:             d.Events,
		metrics:            d.Metrics,
		clock:              d.Clock,
		logger:             d.Logger,
		verificationWindow: d.VerificationWindow,
	}
	if d.DB != nil {
		s.tx = d.DB
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *CeremonyService) loadProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileQuery.GetWithCredentials(s.db.WithContext(ctx), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, storeUnavailable("list credentials", err)
	}
	return profile, nil
}

// loadChallenge also enforces the ceremony deadline that go-webauthn stamps
// into the session.
func (s *CeremonyService) loadChallenge(ctx context.Context, op string, userID uuid.UUID, ceremony Ceremony) (*StoredChallenge, error) {
	stored, err := s.challenges.Load(ctx, userID, ceremony)
	if err != nil {
		return nil, err
	}
	if !stored.Session.Expires.IsZero() && s.clock.Now().After(stored.Session.Expires) {
		return nil, ceremonyError(op, ErrChallengeExpiredOrMissing, "ceremony deadline passed")
	}
	return stored, nil
}

// BeginRegistration excludes every credential the user already holds so the
// same authenticator cannot enroll twice.
func (s *CeremonyService) BeginRegistration(ctx context.Context, userID uuid.UUID) (opts *protocol.PublicKeyCredentialCreationOptions, err error) {
	defer func() { s.metrics.ceremony("register-challenge", err) }()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	exclusions := make([]protocol.CredentialDescriptor, 0, len(profile.Credentials))
	for i := range profile.Credentials {
		exclusions = append(exclusions, profile.Credentials[i].Descriptor())
	}

	creation, session, err := s.wa.BeginRegistration(profile,
		webauthn.WithExclusions(exclusions),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			AuthenticatorAttachment: protocol.Platform,
			RequireResidentKey:      protocol.ResidentKeyRequired(),
			ResidentKey:             protocol.ResidentKeyRequirementRequired,
			UserVerification:        protocol.VerificationPreferred,
		}),
		webauthn.WithConveyancePreference(protocol.PreferNoAttestation),
	)
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}

	if err := s.challenges.Save(ctx, userID, CeremonyRegistration, *session); err != nil {
		return nil, err
	}
	return &creation.Response, nil
}

func (s *CeremonyService) FinishRegistration(ctx context.Context, userID uuid.UUID, body []byte) (err error) {
	const op = "register-verify"
	defer func() { s.metrics.ceremony(op, err) }()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return err
	}
	stored, err := s.loadChallenge(ctx, op, userID, CeremonyRegistration)
	if err != nil {
		return err
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(body))
	if err != nil {
		return ceremonyError(op, ErrVerificationFailed, "malformed attestation: "+webauthnReason(err))
	}
	cred, err := s.wa.CreateCredential(profile, stored.Session, parsed)
	if err != nil {
		return ceremonyError(op, ErrVerificationFailed, webauthnReason(err))
	}

	// The challenge is consumed last inside the transaction: a rejected or
	// failed insert keeps it, and losing the compare-and-delete rolls back.
	row := domain.NewCredential(userID, cred)
	err = s.tx.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		created, err := s.credentialCommand.Create(tx, row)
		if err != nil {
			return storeUnavailable("insert credential", err)
		}
		if !created {
			return ceremonyError(op, ErrVerificationFailed, "credential already registered")
		}
		if err := s.profileCommand.MarkBiometricEnrolled(tx, userID); err != nil {
			return storeUnavailable("mark biometric enrolled", err)
		}
		return s.challenges.Consume(ctx, userID, stored)
	})
	if err != nil {
		return err
	}

	publishAfterCommit(ctx, s.events, s.logger, Event{
		Type:       EventCredentialEnrolled,
		UserID:     userID,
		OccurredAt: s.clock.Now(),
		Data: map[string]any{
			"device_type": row.DeviceType,
			"backed_up":   row.BackedUp,
			"transports":  row.Transports,
		},
	})
	return nil
}

func (s *CeremonyService) BeginAuthentication(ctx context.Context, userID uuid.UUID) (opts *protocol.PublicKeyCredentialRequestOptions, err error) {
	defer func() { s.metrics.ceremony("authenticate-challenge", err) }()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(profile.Credentials) == 0 {
		return nil, ErrNoCredentialsEnrolled
	}

	assertion, session, err := s.wa.BeginLogin(profile,
		webauthn.WithUserVerification(protocol.VerificationPreferred),
	)
	if err != nil {
		return nil, fmt.Errorf("begin login: %w", err)
	}

	if err := s.challenges.Save(ctx, userID, CeremonyAuthentication, *session); err != nil {
		return nil, err
	}
	return &assertion.Response, nil
}

// FinishAuthentication accepts an assertion only if its signature verifies and
// its counter advanced past the stored one (or both are zero). The counter is
// written with a compare-and-set so concurrent uses of one credential cannot
// both succeed.
func (s *CeremonyService) FinishAuthentication(ctx context.Context, userID uuid.UUID, body []byte) (err error) {
	const op = "authenticate-verify"
	defer func() { s.metrics.ceremony(op, err) }()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return err
	}
	stored, err := s.loadChallenge(ctx, op, userID, CeremonyAuthentication)
	if err != nil {
		return err
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(body))
	if err != nil {
		return ceremonyError(op, ErrVerificationFailed, "malformed assertion: "+webauthnReason(err))
	}

	cred, ok := profile.CredentialByID(parsed.RawID)
	if !ok {
		return ceremonyError(op, ErrCredentialNotFound, "credential is not owned by the caller")
	}

	if _, err := s.wa.ValidateLogin(profile, stored.Session, parsed); err != nil {
		return ceremonyError(op, ErrVerificationFailed, webauthnReason(err))
	}

	next := parsed.Response.AuthenticatorData.Counter
	if !counterAdvances(cred.Counter, next) {
		s.suspectClone(ctx, userID, cred, next)
		return ceremonyError(op, ErrCounterRegressed,
			fmt.Sprintf("counter %d does not advance stored %d", next, cred.Counter))
	}

	err = s.tx.Transaction(func(tx *gorm.DB) error {
		advanced, err := s.credentialCommand.AdvanceCounter(tx.WithContext(ctx), cred.ID, cred.Counter, next, s.clock.Now())
		if err != nil {
			return storeUnavailable("update counter", err)
		}
		if !advanced {
			return ceremonyError(op, ErrCounterRegressed, "counter moved by a concurrent authentication")
		}
		return s.challenges.Consume(ctx, userID, stored)
	})
	if errors.Is(err, ErrCounterRegressed) {
		s.suspectClone(ctx, userID, cred, next)
	}
	if err != nil {
		return err
	}

	if err := s.challenges.MarkVerified(ctx, userID, s.verificationWindow); err != nil {
		s.logger.Warn("failed to record identity verification", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return nil
}

func counterAdvances(stored, next uint32) bool {
	return next > stored || (next == 0 && stored == 0)
}

// suspectClone records the event. There is no automatic lockout: the
// credential stays usable with a correctly advancing counter.
func (s *CeremonyService) suspectClone(ctx context.Context, userID uuid.UUID, cred *domain.Credential, reported uint32) {
	s.metrics.cloneSuspected()
	s.logger.Warn("possible cloned authenticator",
		zap.String("user_id", userID.String()),
		zap.Uint("credential_row", cred.ID),
		zap.Uint32("stored_counter", cred.Counter),
		zap.Uint32("reported_counter", reported))
	publishAfterCommit(ctx, s.events, s.logger, Event{
		Type:       EventCredentialCloneSuspect,
		UserID:     userID,
		OccurredAt: s.clock.Now(),
		Data: map[string]any{
			"credential_row":   cred.ID,
			"stored_counter":   cred.Counter,
			"reported_counter": reported,
		},
	})
}
