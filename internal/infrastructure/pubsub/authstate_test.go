package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

type received struct {
	mu   sync.Mutex
	msgs []AuthStateMessage
}

func (r *received) add(m AuthStateMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *received) all() []AuthStateMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AuthStateMessage(nil), r.msgs...)
}

func TestRedisAuthStateBus_RelaysBetweenInstances(t *testing.T) {
	mr, client := setupTestRedis(t)
	log := logger.NewDiscard()

	a := NewRedisAuthStateBus(client, "", log)
	b := NewRedisAuthStateBus(client, "", log)
	require.NotEqual(t, a.InstanceID(), b.InstanceID())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var gotB received
	done := make(chan error, 1)
	go func() { done <- b.Subscribe(ctx, gotB.add) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(DefaultAuthStateChannel)[DefaultAuthStateChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	emp := &employee.Employee{ID: "emp-1", EmployeeNo: "E001", Name: "Amy", Role: "cashier", Permissions: []string{}}
	require.NoError(t, a.Publish(ctx, AuthStateMessage{IsLoggedIn: true, Employee: emp}))
	require.NoError(t, b.Publish(ctx, AuthStateMessage{IsLoggedIn: false}))

	require.Eventually(t, func() bool { return len(gotB.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	msgs := gotB.all()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsLoggedIn)
	assert.Equal(t, a.InstanceID(), msgs[0].InstanceID)
	require.NotNil(t, msgs[0].Employee)
	assert.Equal(t, "E001", msgs[0].Employee.EmployeeNo)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestRedisAuthStateBus_PublishFailure(t *testing.T) {
	mr, client := setupTestRedis(t)
	bus := NewRedisAuthStateBus(client, "custom", logger.NewDiscard())
	mr.Close()

	err := bus.Publish(context.Background(), AuthStateMessage{})
	assert.Error(t, err)
}

func TestRedisAuthStateBus_DeliversInOrder(t *testing.T) {
	mr, client := setupTestRedis(t)
	log := logger.NewDiscard()
	a := NewRedisAuthStateBus(client, "", log)
	b := NewRedisAuthStateBus(client, "", log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got received
	calls := 0
	go func() {
		_ = b.Subscribe(ctx, func(m AuthStateMessage) {
			calls++
			if calls == 1 {
				panic("handler bug")
			}
			// a slow handler must not let later messages overtake it
			if m.IsLoggedIn {
				time.Sleep(20 * time.Millisecond)
			}
			got.add(m)
		})
	}()
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(DefaultAuthStateChannel)[DefaultAuthStateChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.Publish(ctx, AuthStateMessage{IsLoggedIn: false}))
	for i := 0; i < 3; i++ {
		require.NoError(t, a.Publish(ctx, AuthStateMessage{IsLoggedIn: true}))
		require.NoError(t, a.Publish(ctx, AuthStateMessage{IsLoggedIn: false}))
	}

	require.Eventually(t, func() bool { return len(got.all()) == 6 }, 2*time.Second, 10*time.Millisecond)
	for i, m := range got.all() {
		assert.Equal(t, i%2 == 0, m.IsLoggedIn, "message %d", i)
	}
}
