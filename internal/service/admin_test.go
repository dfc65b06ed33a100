package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua-daily/internal/config"
	"lingua-daily/internal/model"
	"lingua-daily/internal/repository"
)

func newAdminFixture(t *testing.T) (*adminServiceImpl, repository.OrderRepository, repository.SubscriberRepository, time.Time) {
	t.Helper()
	dir := t.TempDir()

	orders, err := repository.NewOrderRepository(filepath.Join(dir, "orders.json"))
	require.NoError(t, err)
	subs, err := repository.NewSubscriberRepository(filepath.Join(dir, "subscribers.json"))
	require.NoError(t, err)

	cfg := &config.Admin{Username: "admin", Password: "secret", JWTSecret: "test-secret"}
	svc := NewAdminService(cfg, orders, subs).(*adminServiceImpl)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, orders, subs, now
}

func TestAdminLoginAndVerify(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)

	token, err := svc.Login("admin", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, svc.VerifyToken(token))
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)

	_, err := svc.Login("admin", "wrong")
	assert.Error(t, err)

	_, err = svc.Login("root", "secret")
	assert.Error(t, err)
}

func TestAdminVerifyTokenRejectsGarbage(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)

	assert.Error(t, svc.VerifyToken("not-a-token"))

	// token signed with a different secret
	other := &adminServiceImpl{cfg: &config.Admin{Username: "admin", Password: "secret", JWTSecret: "other"}, now: time.Now}
	foreign, err := other.Login("admin", "secret")
	require.NoError(t, err)
	assert.Error(t, svc.VerifyToken(foreign))
}

func TestAdminDashboardStats(t *testing.T) {
	svc, orders, subs, now := newAdminFixture(t)

	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)
	require.NoError(t, subs.Upsert(&model.Subscriber{Email: "active@example.com", IsSubscribed: true, ExpiresAt: &future, CreatedAt: now}))
	require.NoError(t, subs.Upsert(&model.Subscriber{Email: "lapsed@example.com", IsSubscribed: true, ExpiresAt: &past, CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, subs.Upsert(&model.Subscriber{Email: "left@example.com", IsSubscribed: false, CreatedAt: now.Add(-2 * time.Hour)}))

	require.NoError(t, orders.Create(&model.Order{Reference: "r1", Status: model.StatusPending, Amount: decimal.NewFromInt(2), CreatedAt: now}))
	require.NoError(t, orders.Create(&model.Order{Reference: "r2", Status: model.StatusPending, Amount: decimal.NewFromInt(12), CreatedAt: now.Add(-time.Hour)}))
	_, _, err := orders.MarkPaid("r2", now, "sig")
	require.NoError(t, err)

	dash := svc.Dashboard()
	assert.Equal(t, 3, dash.Stats.Total)
	assert.Equal(t, 1, dash.Stats.Active)
	assert.Equal(t, 1, dash.Stats.Expired)
	assert.Equal(t, "12.00", dash.Stats.Revenue, "only paid orders count")

	require.Len(t, dash.Subscribers, 3)
	assert.Equal(t, "active@example.com", dash.Subscribers[0].Email, "newest first")
}

func TestAdminCancelSubscription(t *testing.T) {
	svc, _, subs, now := newAdminFixture(t)

	future := now.Add(30 * 24 * time.Hour)
	require.NoError(t, subs.Upsert(&model.Subscriber{Email: "user@example.com", IsSubscribed: true, ExpiresAt: &future}))

	require.NoError(t, svc.CancelSubscription("user@example.com"))

	sub, err := subs.FindByEmail("user@example.com")
	require.NoError(t, err)
	assert.False(t, sub.IsSubscribed)
	assert.True(t, sub.ExpiresAt.Equal(now))

	assert.ErrorIs(t, svc.CancelSubscription("nobody@example.com"), repository.ErrSubscriberNotFound)
}

func TestAdminExtendSubscription(t *testing.T) {
	svc, _, subs, now := newAdminFixture(t)

	future := now.Add(10 * 24 * time.Hour)
	require.NoError(t, subs.Upsert(&model.Subscriber{Email: "user@example.com", ExpiresAt: &future}))

	expires, err := svc.ExtendSubscription("user@example.com", 7)
	require.NoError(t, err)
	assert.True(t, expires.Equal(future.Add(7*24*time.Hour)), "extends from the future expiry")

	sub, err := subs.FindByEmail("user@example.com")
	require.NoError(t, err)
	assert.True(t, sub.IsSubscribed, "extension reactivates the subscription")

	_, err = svc.ExtendSubscription("nobody@example.com", 7)
	assert.ErrorIs(t, err, repository.ErrSubscriberNotFound)
}

func TestAdminCleanupPending(t *testing.T) {
	svc, orders, _, now := newAdminFixture(t)

	require.NoError(t, orders.Create(&model.Order{Reference: "stale", Status: model.StatusPending, CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, orders.Create(&model.Order{Reference: "fresh", Status: model.StatusPending, CreatedAt: now.Add(-time.Hour)}))

	deleted, err := svc.CleanupPending()
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = orders.FindByReference("fresh")
	assert.NoError(t, err)
}
