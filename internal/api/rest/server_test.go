package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KevinKickass/OpenSwerveCore/internal/api/websocket"
	"github.com/KevinKickass/OpenSwerveCore/internal/config"
	"github.com/KevinKickass/OpenSwerveCore/internal/interfaces"
	"github.com/KevinKickass/OpenSwerveCore/internal/storage"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeLifecycle struct {
	modules map[string]interfaces.ModuleStatus
	setErr  error
	calls   []float64
}

func (f *fakeLifecycle) Config() *config.Config { return &config.Config{} }
func (f *fakeLifecycle) Storage() *storage.PostgresClient { return nil }
func (f *fakeLifecycle) Shutdown(ctx context.Context) error { return nil }

func (f *fakeLifecycle) GetCurrentStatus() interfaces.SystemStatus {
	return interfaces.SystemStatus{State: "RUNNING", ModuleCount: len(f.modules)}
}

func (f *fakeLifecycle) Modules() []interfaces.ModuleStatus {
	out := make([]interfaces.ModuleStatus, 0, len(f.modules))
	for _, m := range f.modules {
		out = append(out, m)
	}
	return out
}

func (f *fakeLifecycle) Module(name string) (interfaces.ModuleStatus, error) {
	m, ok := f.modules[name]
	if !ok {
		return interfaces.ModuleStatus{}, interfaces.ErrModuleNotFound
	}
	return m, nil
}

func (f *fakeLifecycle) SetModule(ctx context.Context, name string, driveVoltage, steerAngle float64) (interfaces.ModuleStatus, error) {
	m, err := f.Module(name)
	if err != nil {
		return m, err
	}
	if f.setErr != nil {
		return m, f.setErr
	}
	f.calls = append(f.calls, driveVoltage, steerAngle)
	m.TargetAngle = steerAngle
	return m, nil
}

func newTestServer(t *testing.T) (*Server, *fakeLifecycle) {
	t.Helper()
	lm := &fakeLifecycle{modules: map[string]interfaces.ModuleStatus{
		"front_left": {Name: "front_left", DriveMotor: "NEO", SteerMotor: "NEO"},
	}}
	logger := zaptest.NewLogger(t)
	s := NewServer(config.DashboardConfig{HTTPPort: 0}, lm, logger, websocket.NewHub(logger))
	return s, lm
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(s, http.MethodOptions, "/api/v1/modules", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSystemStatus(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(s, http.MethodGet, "/api/v1/system/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var status interfaces.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "RUNNING", status.State)
	assert.Equal(t, 1, status.ModuleCount)
}

func TestListAndGetModule(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/modules", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = do(s, http.MethodGet, "/api/v1/modules/front_left", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"front_left"`)

	w = do(s, http.MethodGet, "/api/v1/modules/rear_left", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "MODULE_404", resp.Error.Code)
}

func TestSetModule(t *testing.T) {
	s, lm := newTestServer(t)

	w := do(s, http.MethodPost, "/api/v1/modules/front_left/setpoint", `{"drive_voltage": 6, "steer_angle": 0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []float64{6, 0}, lm.calls)
}

func TestSetModule_BadRequests(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"missing angle", "/api/v1/modules/front_left/setpoint", `{"drive_voltage": 6}`, http.StatusBadRequest},
		{"not json", "/api/v1/modules/front_left/setpoint", `nope`, http.StatusBadRequest},
		{"unknown module", "/api/v1/modules/rear_left/setpoint", `{"drive_voltage": 1, "steer_angle": 1}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestSetModule_ControllerFailure(t *testing.T) {
	s, lm := newTestServer(t)
	lm.setErr = errors.New("bus off")

	w := do(s, http.MethodPost, "/api/v1/modules/front_left/setpoint", `{"drive_voltage": 1, "steer_angle": 1}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "bus off")
}

func TestSetModule_NotRunning(t *testing.T) {
	s, lm := newTestServer(t)
	lm.setErr = fmt.Errorf("%w: system is STOPPING", interfaces.ErrNotRunning)

	w := do(s, http.MethodPost, "/api/v1/modules/front_left/setpoint", `{"drive_voltage": 1, "steer_angle": 1}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "MODULE_409", resp.Error.Code)
}

func TestStart_PortInUse(t *testing.T) {
	taken, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer taken.Close()
	port := taken.Addr().(*net.TCPAddr).Port

	logger := zaptest.NewLogger(t)
	s := NewServer(config.DashboardConfig{HTTPPort: port}, &fakeLifecycle{}, logger, websocket.NewHub(logger))
	assert.Error(t, s.Start())
	assert.Nil(t, s.Addr())
}

func TestStart_Serves(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Start())
	defer s.Shutdown(context.Background())
	require.NotNil(t, s.Addr())

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/health", s.Addr().(*net.TCPAddr).Port))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHistoryWithoutStorage(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(s, http.MethodGet, "/api/v1/modules/front_left/history", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPresets(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/presets", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "MK4_L2")

	w = do(s, http.MethodGet, "/api/v1/presets/mk4_l2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"wheel_diameter":0.10033`)

	w = do(s, http.MethodGet, "/api/v1/presets/mk9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWsStatus(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(s, http.MethodGet, "/api/v1/ws/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"connected_clients":0`)
}
