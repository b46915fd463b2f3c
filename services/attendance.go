package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"attendance_ms/domain"
	"attendance_ms/repository/command_repository"
	"attendance_ms/repository/query_repository"
	"attendance_ms/util"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxHistoryDays     = 93
	defaultHistoryDays = 30
)

type IAttendanceService interface {
	OpenSession(ctx context.Context, userID uuid.UUID) (*domain.AttendanceRecord, error)
	CheckIn(ctx context.Context, userID uuid.UUID, loc domain.Location, method string) (*domain.AttendanceRecord, error)
	CheckOut(ctx context.Context, userID, recordID uuid.UUID, loc domain.Location, notes string) (*domain.AttendanceRecord, error)
	Today(ctx context.Context, userID uuid.UUID) ([]domain.AttendanceRecord, error)
	// History takes calendar dates; a zero to is today in the attendance
	// timezone and a zero from is 30 days before to.
	History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.AttendanceRecord, error)
	Now() time.Time
}

type AttendancePolicy struct {
	Location         *time.Location
	RequireBiometric bool
	GeofenceEnabled  bool
}

type AttendanceDeps struct {
	DB                *gorm.DB
	AttendanceQuery   query_repository.IAttendanceQueryRepository
	AttendanceCommand command_repository.IAttendanceCommandRepository
	WorkLocations     query_repository.IWorkLocationQueryRepository
	Challenges        IChallengeStore
	Events            IEventPublisher
	Metrics           *Metrics
	Clock             clockwork.Clock
	Logger            *zap.Logger
	Policy            AttendancePolicy
}

type AttendanceService struct {
	db                *gorm.DB
	attendanceQuery   query_repository.IAttendanceQueryRepository
	attendanceCommand command_repository.IAttendanceCommandRepository
	workLocations     query_repository.IWorkLocationQueryRepository
	challenges        IChallengeStore
	events            IEventPublisher
	metrics           *Metrics
	clock             clockwork.Clock
	logger            *zap.Logger
	policy            AttendancePolicy
}

func NewAttendanceService(d AttendanceDeps) *AttendanceService {
	s := &AttendanceService{
		db:                d.DB,
		attendanceQuery:   d.AttendanceQuery,
		attendanceCommand: d.AttendanceCommand,
		workLocations:     d.WorkLocations,
		challenges:        d.Challenges,
		events:            d.Events,
		metrics:           d.Metrics,
		clock:             d.Clock,
		logger:            d.Logger,
		policy:            d.Policy,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.policy.Location == nil {
		s.policy.Location = time.UTC
	}
	return s
}

func (s *AttendanceService) Now() time.Time {
	return s.clock.Now().UTC()
}

func (s *AttendanceService) today() time.Time {
	return domain.Day(s.clock.Now(), s.policy.Location)
}

// OpenSession is the lookup that gates check-out.
func (s *AttendanceService) OpenSession(ctx context.Context, userID uuid.UUID) (*domain.AttendanceRecord, error) {
	rec, err := s.attendanceQuery.FindOpenForDay(s.db.WithContext(ctx), userID, s.today())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, storeUnavailable("find open session", err)
	}
	return rec, nil
}

func (s *AttendanceService) CheckIn(ctx context.Context, userID uuid.UUID, loc domain.Location, method string) (rec *domain.AttendanceRecord, err error) {
	defer func() { s.metrics.commit("check-in", err) }()

	if err := validateLocation(loc); err != nil {
		return nil, err
	}
	loc, err = s.resolveSite(ctx, loc)
	if err != nil {
		return nil, err
	}
	window, err := s.requireVerification(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			s.restoreVerification(ctx, userID, window)
		}
	}()
	if method == "" {
		method = domain.VerificationBiometric
	}

	now := s.Now()
	rec = &domain.AttendanceRecord{
		ID:                 uuid.New(),
		UserID:             userID,
		CheckInTime:        now,
		CheckInDate:        domain.Day(now, s.policy.Location),
		LocationLatitude:   loc.Latitude,
		LocationLongitude:  loc.Longitude,
		LocationAddress:    loc.Address,
		LocationAccuracy:   loc.Accuracy,
		VerificationMethod: method,
	}
	inserted, err := s.attendanceCommand.InsertIfNoOpenSession(s.db.WithContext(ctx), rec)
	if err != nil {
		return nil, storeUnavailable("insert attendance record", err)
	}
	if !inserted {
		return nil, ErrSessionAlreadyOpen
	}

	publishAfterCommit(ctx, s.events, s.logger, Event{
		Type:       EventAttendanceCheckedIn,
		UserID:     userID,
		OccurredAt: now,
		Data: map[string]any{
			"record_id": rec.ID.String(),
			"address":   rec.LocationAddress,
		},
	})
	return rec, nil
}

// CheckOut closes exactly recordID, the record captured by the open session
// lookup, never whichever record happens to be latest.
func (s *AttendanceService) CheckOut(ctx context.Context, userID, recordID uuid.UUID, loc domain.Location, notes string) (rec *domain.AttendanceRecord, err error) {
	defer func() { s.metrics.commit("check-out", err) }()

	if err := validateLocation(loc); err != nil {
		return nil, err
	}
	loc, err = s.resolveSite(ctx, loc)
	if err != nil {
		return nil, err
	}
	window, err := s.requireVerification(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			s.restoreVerification(ctx, userID, window)
		}
	}()

	now := s.Now()
	rec, err = s.attendanceCommand.CloseOpenSession(s.db.WithContext(ctx), recordID, userID, now, loc, strings.TrimSpace(notes))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, storeUnavailable("close attendance record", err)
	}

	publishAfterCommit(ctx, s.events, s.logger, Event{
		Type:       EventAttendanceCheckedOut,
		UserID:     userID,
		OccurredAt: now,
		Data: map[string]any{
			"record_id":      rec.ID.String(),
			"worked_seconds": int64(rec.Worked(now).Seconds()),
		},
	})
	return rec, nil
}

func (s *AttendanceService) Today(ctx context.Context, userID uuid.UUID) ([]domain.AttendanceRecord, error) {
	recs, err := s.attendanceQuery.ListForDay(s.db.WithContext(ctx), userID, s.today())
	if err != nil {
		return nil, storeUnavailable("list today's records", err)
	}
	return recs, nil
}

func (s *AttendanceService) History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.AttendanceRecord, error) {
	if to.IsZero() {
		to = s.today()
	} else {
		to = domain.Day(to, time.UTC)
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultHistoryDays)
	} else {
		from = domain.Day(from, time.UTC)
	}
	if to.Before(from) || to.Sub(from) > maxHistoryDays*24*time.Hour {
		return nil, ErrInvalidRange
	}
	recs, err := s.attendanceQuery.ListBetween(s.db.WithContext(ctx), userID, from, to)
	if err != nil {
		return nil, storeUnavailable("list history", err)
	}
	return recs, nil
}

func validateLocation(loc domain.Location) error {
	if !util.ValidCoordinates(loc.Latitude, loc.Longitude) || loc.Accuracy < 0 {
		return ErrInvalidLocation
	}
	return nil
}

// resolveSite fills the address from the covering work location when the
// geofence is on.
func (s *AttendanceService) resolveSite(ctx context.Context, loc domain.Location) (domain.Location, error) {
	if !s.policy.GeofenceEnabled {
		return loc, nil
	}
	sites, err := s.workLocations.ListAll(s.db.WithContext(ctx))
	if err != nil {
		return loc, storeUnavailable("list work locations", err)
	}
	site, ok := domain.NearestCovering(sites, loc)
	if !ok {
		return loc, ErrOutsideWorkLocation
	}
	if loc.Address == "" {
		loc.Address = site.Name
	}
	return loc, nil
}

// requireVerification takes the verified marker and returns the window it had
// left, zero when biometrics are not required.
func (s *AttendanceService) requireVerification(ctx context.Context, userID uuid.UUID) (time.Duration, error) {
	if !s.policy.RequireBiometric {
		return 0, nil
	}
	window, err := s.challenges.ConsumeVerified(ctx, userID)
	if err != nil {
		return 0, err
	}
	if window <= 0 {
		return 0, fmt.Errorf("%w: authenticate again before committing", ErrIdentityNotVerified)
	}
	return window, nil
}

// restoreVerification hands the marker back after a commit that wrote
// nothing, so a retry does not need a new ceremony.
func (s *AttendanceService) restoreVerification(ctx context.Context, userID uuid.UUID, window time.Duration) {
	if window <= 0 {
		return
	}
	if err := s.challenges.MarkVerified(ctx, userID, window); err != nil {
		s.logger.Warn("failed to restore identity verification", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
