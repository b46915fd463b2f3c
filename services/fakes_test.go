package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"attendance_ms/domain"
	"attendance_ms/repository/repository_test"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// memStore stands in for every repository. It mirrors the database
// constraints the services rely on: unique credential ids and the partial
// unique index on open sessions.
type memStore struct {
	mu          sync.Mutex
	profiles    map[uuid.UUID]domain.Profile
	credentials []domain.Credential
	records     []domain.AttendanceRecord
	sites       []domain.WorkLocation
	nextCredID  uint
	listErr     error
	writeErr    error
}

func newMemStore() *memStore {
	return &memStore{profiles: map[uuid.UUID]domain.Profile{}}
}

func (m *memStore) addProfile(status domain.Status, role domain.Role) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.profiles[id] = domain.Profile{
		ID:       id,
		Email:    id.String()[:8] + "@example.com",
		FullName: "Test Employee",
		Role:     role,
		Status:   status,
	}
	return id
}

func (m *memStore) profile(id uuid.UUID) domain.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[id]
}

func (m *memStore) credentialsOf(userID uuid.UUID) []domain.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Credential
	for _, c := range m.credentials {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

func (m *memStore) recordsOf(userID uuid.UUID) []domain.AttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AttendanceRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) GetByID(_ *gorm.DB, id uuid.UUID) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (m *memStore) GetWithCredentials(db *gorm.DB, id uuid.UUID) (*domain.Profile, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	p, err := m.GetByID(db, id)
	if err != nil {
		return nil, err
	}
	p.Credentials = m.credentialsOf(id)
	return p, nil
}

func (m *memStore) ListByUser(_ *gorm.DB, userID uuid.UUID) ([]domain.Credential, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.credentialsOf(userID), nil
}

func (m *memStore) MarkBiometricEnrolled(_ *gorm.DB, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.BiometricEnrolled = true
	m.profiles[userID] = p
	return nil
}

func (m *memStore) Create(_ *gorm.DB, cred *domain.Credential) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return false, m.writeErr
	}
	for _, c := range m.credentials {
		if string(c.CredentialID) == string(cred.CredentialID) {
			return false, nil
		}
	}
	m.nextCredID++
	cred.ID = m.nextCredID
	m.credentials = append(m.credentials, *cred)
	return true, nil
}

func (m *memStore) AdvanceCounter(_ *gorm.DB, id uint, from, to uint32, usedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return false, m.writeErr
	}
	for i := range m.credentials {
		if m.credentials[i].ID == id && m.credentials[i].Counter == from {
			m.credentials[i].Counter = to
			m.credentials[i].LastUsedAt = &usedAt
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) FindOpenForDay(_ *gorm.DB, userID uuid.UUID, day time.Time) (*domain.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.UserID == userID && r.CheckInDate.Equal(day) && r.CheckOutTime == nil {
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) ListForDay(_ *gorm.DB, userID uuid.UUID, day time.Time) ([]domain.AttendanceRecord, error) {
	return m.ListBetween(nil, userID, day, day)
}

func (m *memStore) ListBetween(_ *gorm.DB, userID uuid.UUID, from, to time.Time) ([]domain.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AttendanceRecord
	for _, r := range m.records {
		if r.UserID == userID && !r.CheckInDate.Before(from) && !r.CheckInDate.After(to) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.After(out[j].CheckInTime) })
	return out, nil
}

func (m *memStore) InsertIfNoOpenSession(_ *gorm.DB, rec *domain.AttendanceRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.UserID == rec.UserID && r.CheckInDate.Equal(rec.CheckInDate) && r.CheckOutTime == nil {
			return false, nil
		}
	}
	m.records = append(m.records, *rec)
	return true, nil
}

func (m *memStore) CloseOpenSession(_ *gorm.DB, id, userID uuid.UUID, checkOut time.Time, loc domain.Location, notes string) (*domain.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		r := &m.records[i]
		if r.ID != id || r.UserID != userID || r.CheckOutTime != nil || checkOut.Before(r.CheckInTime) {
			continue
		}
		r.CheckOutTime = &checkOut
		r.CheckOutLatitude = &loc.Latitude
		r.CheckOutLongitude = &loc.Longitude
		r.CheckOutAccuracy = &loc.Accuracy
		r.CheckOutAddress = &loc.Address
		r.Notes = notes
		out := *r
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) ListAll(_ *gorm.DB) ([]domain.WorkLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.WorkLocation(nil), m.sites...), nil
}

// passTx runs the callback on a connection that never reaches a database.
type passTx struct {
	db *gorm.DB
}

func (p passTx) Transaction(fc func(tx *gorm.DB) error, _ ...*sql.TxOptions) error {
	return fc(p.db)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestDB(t *testing.T) *gorm.DB {
	conn, _ := repository_test.SetupMockDB(t)
	return conn
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

var errBoom = errors.New("connection reset by peer")
