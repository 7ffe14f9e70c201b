package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

func TestStateHub_Broadcast(t *testing.T) {
	hub := NewStateHub(4, logger.NewDiscard())
	a := hub.Register("a")
	b := hub.Register("b")
	require.NotNil(t, a)
	require.NotNil(t, b)

	hub.Broadcast(&AuthStateEvent{
		IsLoggedIn: true,
		Employee:   &employee.Employee{ID: "emp-1", EmployeeNo: "E001", Name: "Amy", Role: "cashier"},
	})

	for _, conn := range []*SSEConn{a, b} {
		select {
		case data := <-conn.Send:
			s := string(data)
			assert.True(t, strings.HasPrefix(s, "event: authStateChanged\ndata: "))
			assert.Contains(t, s, `"isLoggedIn":true`)
			assert.Contains(t, s, `"employee_id":"E001"`)
			assert.True(t, strings.HasSuffix(s, "\n\n"))
		default:
			t.Fatalf("connection %s received nothing", conn.ID)
		}
	}
}

func TestStateHub_ConnectionLimit(t *testing.T) {
	hub := NewStateHub(2, logger.NewDiscard())
	require.NotNil(t, hub.Register("a"))
	require.NotNil(t, hub.Register("b"))
	assert.Nil(t, hub.Register("c"))

	hub.Unregister("a")
	assert.Equal(t, 1, hub.ConnCount())
	assert.NotNil(t, hub.Register("c"))
}

func TestStateHub_FullBufferDoesNotBlock(t *testing.T) {
	hub := NewStateHub(1, logger.NewDiscard())
	conn := hub.Register("slow")
	require.NotNil(t, conn)

	for i := 0; i < cap(conn.Send)+5; i++ {
		hub.Broadcast(&AuthStateEvent{IsLoggedIn: i%2 == 0})
	}
	assert.Len(t, conn.Send, cap(conn.Send))
}

func TestStateHub_Shutdown(t *testing.T) {
	hub := NewStateHub(0, logger.NewDiscard())
	conn := hub.Register("a")
	require.NotNil(t, conn)

	hub.Shutdown()
	hub.Shutdown()

	_, open := <-conn.Send
	assert.False(t, open)
	assert.False(t, conn.TrySend([]byte("x")))
	assert.Nil(t, hub.Register("b"))
	assert.Zero(t, hub.ConnCount())
}

func TestFormatSSEEvent(t *testing.T) {
	data, err := FormatSSEEvent("ping", map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("event: ping\ndata: %s\n\n", `{"n":1}`), string(data))

	_, err = FormatSSEEvent("bad", make(chan int))
	assert.Error(t, err)
}
