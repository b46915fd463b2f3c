package services

import (
	"context"
	"testing"

	"attendance_ms/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_Get(t *testing.T) {
	store := newMemStore()
	svc := NewProfileService(newTestDB(t), store, store)
	id := store.addProfile(domain.StatusPending, domain.RoleEmployee)

	p, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, p.Status)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestProfileService_Devices(t *testing.T) {
	store := newMemStore()
	svc := NewProfileService(newTestDB(t), store, store)
	id := store.addProfile(domain.StatusActive, domain.RoleEmployee)
	_, err := store.Create(nil, &domain.Credential{UserID: id, CredentialID: []byte("a"), DeviceType: domain.DeviceTypeMulti})
	require.NoError(t, err)

	devices, err := svc.Devices(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, domain.DeviceTypeMulti, devices[0].DeviceType)

	store.listErr = errBoom
	_, err = svc.Devices(context.Background(), id)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
