package handlers

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedesk/storedesk/internal/application/auth"
	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/interfaces/http/handlers/testutil"
	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		loginErr   error
		wantStatus int
		wantType   string
	}{
		{
			name:       "success",
			body:       map[string]any{"employee_id": "E001", "device": map[string]any{"platform": "Win32"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing identifier",
			body:       map[string]any{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{"employee_id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown employee",
			body:       map[string]any{"employee_id": "E404"},
			loginErr:   errors.NewPrincipalNotFoundError("E404"),
			wantStatus: http.StatusNotFound,
			wantType:   string(errors.ErrorTypePrincipalNotFound),
		},
		{
			name:       "store unavailable",
			body:       map[string]any{"employee_id": "E001"},
			loginErr:   errors.NewTransientStoreError("get employee", stderrors.New("timeout")),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   string(errors.ErrorTypeTransientStore),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{principal: testEmployee(), sessionID: "sess_1", loginErr: tt.loginErr}
			h := NewAuthHandler(svc, logger.NewDiscard())

			c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/login", tt.body)
			h.Login(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var data LoginResponse
			resp, err := testutil.DecodeData(w, &data)
			require.NoError(t, err)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, resp.Success)
				assert.Equal(t, "E001", data.Employee.EmployeeNo)
				assert.Equal(t, "sess_1", data.SessionID)
				assert.Equal(t, "E001", svc.lastIdentifier)
				assert.Equal(t, "Win32", svc.lastDevice.Platform)
				return
			}
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, resp.Error.Type)
			}
		})
	}
}

func TestAuthHandler_LoginFillsUserAgent(t *testing.T) {
	svc := &mockAuthService{principal: testEmployee()}
	h := NewAuthHandler(svc, logger.NewDiscard())

	c, _ := testutil.NewTestContext(http.MethodPost, "/api/auth/login", map[string]any{"employee_id": "E001"})
	c.Request.Header.Set("User-Agent", "station-ui/1.0")
	h.Login(c)

	assert.Equal(t, "station-ui/1.0", svc.lastDevice.UserAgent)
}

func TestAuthHandler_Logout(t *testing.T) {
	for _, tc := range []struct {
		name      string
		logoutErr error
		remote    bool
	}{
		{name: "remote closed", remote: true},
		{name: "remote failed", logoutErr: errors.NewTransientStoreError("invalidate", stderrors.New("down"))},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockAuthService{principal: testEmployee(), logoutErr: tc.logoutErr}
			h := NewAuthHandler(svc, logger.NewDiscard())

			c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/logout", nil)
			h.Logout(c)

			assert.Equal(t, http.StatusOK, w.Code)
			var data map[string]bool
			_, err := testutil.DecodeData(w, &data)
			require.NoError(t, err)
			assert.Equal(t, tc.remote, data["remote_invalidated"])
			assert.Nil(t, svc.principal)
		})
	}
}

func TestAuthHandler_GetState(t *testing.T) {
	svc := &mockAuthService{principal: testEmployee(), sessionID: "sess_1", state: auth.StateLoggedIn}
	h := NewAuthHandler(svc, logger.NewDiscard())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/state", nil)
	h.GetState(c)

	var data StateResponse
	_, err := testutil.DecodeData(w, &data)
	require.NoError(t, err)
	assert.Equal(t, "logged_in", data.State)
	assert.True(t, data.IsLoggedIn)
	assert.Equal(t, "sess_1", data.SessionID)

	svc.principal = nil
	svc.state = auth.StateLoggedOut
	c, w = testutil.NewTestContext(http.MethodGet, "/api/auth/state", nil)
	h.GetState(c)

	data = StateResponse{}
	_, err = testutil.DecodeData(w, &data)
	require.NoError(t, err)
	assert.False(t, data.IsLoggedIn)
	assert.Nil(t, data.Employee)
	assert.Empty(t, data.SessionID)
}

func TestAuthHandler_CheckPermissions(t *testing.T) {
	svc := &mockAuthService{principal: testEmployee(), allowed: true}
	h := NewAuthHandler(svc, logger.NewDiscard())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/permissions/check", map[string]any{"required": []string{"sales"}})
	h.CheckPermissions(c)

	var data struct {
		Allowed bool `json:"allowed"`
	}
	_, err := testutil.DecodeData(w, &data)
	require.NoError(t, err)
	assert.True(t, data.Allowed)
	assert.Equal(t, []string{"sales"}, svc.lastRequired)
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	svc := &mockAuthService{principal: testEmployee()}
	h := NewAuthHandler(svc, logger.NewDiscard())

	c, w := testutil.NewTestContext(http.MethodPut, "/api/auth/profile", map[string]any{"name": "Amy Lin"})
	h.UpdateProfile(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var data employee.Employee
	_, err := testutil.DecodeData(w, &data)
	require.NoError(t, err)
	assert.Equal(t, "Amy Lin", data.Name)

	svc.profileErr = errors.NewSessionInvalidError()
	c, w = testutil.NewTestContext(http.MethodPut, "/api/auth/profile", map[string]any{"name": "Amy"})
	h.UpdateProfile(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = testutil.NewTestContext(http.MethodPut, "/api/auth/profile", map[string]any{})
	h.UpdateProfile(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
