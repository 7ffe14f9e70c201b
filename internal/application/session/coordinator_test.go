package session

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedesk/storedesk/internal/application/auth"
	"github.com/storedesk/storedesk/internal/application/testutil"
	"github.com/storedesk/storedesk/internal/domain/employee"
	domainSession "github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

type device struct {
	cache       *testutil.IdentityCache
	auth        *auth.Service
	coordinator *Coordinator
}

func newDevice(t *testing.T, store *testutil.SessionStore, dir *testutil.EmployeeDirectory, now time.Time) *device {
	t.Helper()
	cache := testutil.NewIdentityCache()
	svc := auth.NewService(dir, store, cache, nil, nil, nil, auth.Config{
		Staleness: domainSession.StalenessPolicy{Threshold: 24 * time.Hour},
	}, logger.NewDiscard()).WithClock(func() time.Time { return now })
	t.Cleanup(svc.Wait)
	return &device{
		cache:       cache,
		auth:        svc,
		coordinator: NewCoordinator(store, dir, cache, logger.NewDiscard()),
	}
}

func directory() *testutil.EmployeeDirectory {
	return testutil.NewEmployeeDirectory(
		&employee.Employee{ID: "emp-1", EmployeeNo: "E001", Name: "Alice", Role: "cashier"},
		&employee.Employee{ID: "emp-2", EmployeeNo: "E002", Name: "Bob", Role: "manager"},
	)
}

func TestForceLogoutOthers_TwoDevices(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewSessionStore()
	dir := directory()
	now := time.Now().UTC()

	a := newDevice(t, store, dir, now)
	b := newDevice(t, store, dir, now.Add(time.Second))
	other := newDevice(t, store, dir, now)

	_, err := a.auth.Login(ctx, "E001", domainSession.DeviceInfo{Hostname: "till-a"})
	require.NoError(t, err)
	_, err = b.auth.Login(ctx, "E001", domainSession.DeviceInfo{Hostname: "till-b"})
	require.NoError(t, err)
	_, err = other.auth.Login(ctx, "E002", domainSession.DeviceInfo{Hostname: "office"})
	require.NoError(t, err)

	entryA, _ := a.cache.Load(ctx)
	entryB, _ := b.cache.Load(ctx)
	entryOther, _ := other.cache.Load(ctx)

	res, err := a.coordinator.ForceLogoutOthers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Invalidated)
	assert.Equal(t, entryA.SessionID, res.KeptSession)

	assert.Equal(t, domainSession.ReasonNone, a.auth.ValidateSession(ctx, entryA))
	assert.Equal(t, domainSession.ReasonInactive, b.auth.ValidateSession(ctx, entryB))
	assert.Equal(t, domainSession.ReasonNone, other.auth.ValidateSession(ctx, entryOther))

	assert.False(t, b.auth.Initialize(ctx))
	_, ok := b.cache.Load(ctx)
	assert.False(t, ok)
}

func TestForceLogoutOthers_NoCachedSession(t *testing.T) {
	d := newDevice(t, testutil.NewSessionStore(), directory(), time.Now())
	_, err := d.coordinator.ForceLogoutOthers(context.Background())
	assert.True(t, errors.IsSessionInvalidError(err))
}

func TestForceLogoutOthers_StoreError(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewSessionStore()
	d := newDevice(t, store, directory(), time.Now())
	_, err := d.auth.Login(ctx, "E001", domainSession.DeviceInfo{})
	require.NoError(t, err)

	store.InvalidateErr = errors.NewTransientStoreError("invalidate sessions", stderrors.New("broken pipe"))
	_, err = d.coordinator.ForceLogoutOthers(ctx)
	assert.True(t, errors.IsTransientStoreError(err))
}

func TestListActiveSessions(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewSessionStore()
	dir := directory()
	base := time.Now().UTC().Truncate(time.Second)

	first := newDevice(t, store, dir, base)
	second := newDevice(t, store, dir, base.Add(time.Minute))
	bob := newDevice(t, store, dir, base.Add(2*time.Minute))

	_, err := first.auth.Login(ctx, "E001", domainSession.DeviceInfo{})
	require.NoError(t, err)
	_, err = second.auth.Login(ctx, "E001", domainSession.DeviceInfo{})
	require.NoError(t, err)
	_, err = bob.auth.Login(ctx, "E002", domainSession.DeviceInfo{})
	require.NoError(t, err)

	all, err := second.coordinator.ListActiveSessions(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Bob", all[0].EmployeeName)
	assert.Equal(t, "manager", all[0].EmployeePosition)
	assert.Equal(t, "Alice", all[1].EmployeeName)
	assert.True(t, all[1].Current)
	assert.False(t, all[2].Current)

	mine, err := second.coordinator.ListActiveSessions(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].LoginTime.After(mine[1].LoginTime))

	require.NoError(t, first.auth.Logout(ctx))
	mine, err = second.coordinator.ListActiveSessions(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestListActiveSessions_MissingNamesAreBlank(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewSessionStore()
	store.Put(&domainSession.Session{SessionID: "session_x", EmployeeID: "ghost", LoginTime: time.Now(), IsActive: true})

	dir := directory()
	dir.LookupErr = errors.NewTransientStoreError("get employees", stderrors.New("timeout"))
	c := NewCoordinator(store, dir, testutil.NewIdentityCache(), logger.NewDiscard())

	got, err := c.ListActiveSessions(ctx, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].EmployeeName)
}

func TestListActiveSessions_LiveFlag(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewSessionStore()
	now := time.Now().UTC()
	recent := now.Add(-5 * time.Second)
	quiet := now.Add(-10 * time.Minute)
	store.Put(&domainSession.Session{SessionID: "session_recent", EmployeeID: "emp-1", LoginTime: now.Add(-time.Hour), LastActivity: &recent, IsActive: true})
	store.Put(&domainSession.Session{SessionID: "session_quiet", EmployeeID: "emp-1", LoginTime: now.Add(-2 * time.Hour), LastActivity: &quiet, IsActive: true})

	c := NewCoordinator(store, directory(), testutil.NewIdentityCache(), logger.NewDiscard()).
		WithLiveWindow(time.Minute)

	got, err := c.ListActiveSessions(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	live := map[string]bool{}
	for _, s := range got {
		live[s.SessionID] = s.Live
	}
	assert.True(t, live["session_recent"])
	assert.False(t, live["session_quiet"])
}
