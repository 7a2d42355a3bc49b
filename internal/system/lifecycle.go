package system

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/KevinKickass/OpenSwerveCore/internal/api/rest"
	"github.com/KevinKickass/OpenSwerveCore/internal/api/websocket"
	"github.com/KevinKickass/OpenSwerveCore/internal/config"
	"github.com/KevinKickass/OpenSwerveCore/internal/interfaces"
	"github.com/KevinKickass/OpenSwerveCore/internal/module"
	"github.com/KevinKickass/OpenSwerveCore/internal/storage"
	"github.com/KevinKickass/OpenSwerveCore/internal/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the gRPC health service name reported for the module set.
const HealthService = "swerve.Modules"

// ModuleStore persists module snapshots and their setpoint history.
// *storage.PostgresClient implements it.
type ModuleStore interface {
	EnsureSchema(ctx context.Context) error
	SaveModule(ctx context.Context, rec storage.ModuleRecord) (uuid.UUID, error)
	RecordSetpoint(ctx context.Context, moduleID uuid.UUID, driveVoltage, steerAngle float64) error
}

type managedModule struct {
	name    string
	builder string
	module  *module.SwerveModule
	// storeID is the id the store keeps the module under. It outlives
	// restarts, so it differs from module.ID() once the name was saved
	// before. uuid.Nil when the module was not persisted.
	storeID uuid.UUID
}

type LifecycleManager struct {
	config   *config.Config
	hardware module.Hardware
	storage  *storage.PostgresClient
	store    ModuleStore
	logger   *zap.Logger

	// controlMu serializes module commands against telemetry sampling.
	controlMu sync.Mutex
	modules   []*managedModule
	byName    map[string]*managedModule

	board  *telemetry.Board
	poller *telemetry.Poller
	wsHub  *websocket.Hub

	restServer   *rest.Server
	grpcServer   *grpc.Server
	healthServer *health.Server
	grpcAddr     net.Addr

	hubCancel context.CancelFunc
	hubDone   chan struct{}

	stateMu      sync.RWMutex
	currentState SystemState

	shutdownOnce sync.Once
}

// NewLifecycleManager wires the runtime around cfg. store may be nil, in
// which case nothing is persisted.
func NewLifecycleManager(cfg *config.Config, hw module.Hardware, store *storage.PostgresClient, logger *zap.Logger) *LifecycleManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	lm := &LifecycleManager{
		config:       cfg,
		hardware:     hw,
		storage:      store,
		logger:       logger,
		byName:       make(map[string]*managedModule),
		wsHub:        websocket.NewHub(logger),
		currentState: StateInitializing,
	}
	if store != nil {
		lm.store = store
	}
	lm.board = telemetry.NewBoard(&lm.controlMu)
	return lm
}

func (lm *LifecycleManager) Config() *config.Config {
	return lm.config
}

func (lm *LifecycleManager) Storage() *storage.PostgresClient {
	return lm.storage
}

func (lm *LifecycleManager) Board() *telemetry.Board {
	return lm.board
}

func (lm *LifecycleManager) Hub() *websocket.Hub {
	return lm.wsHub
}

// GRPCAddr is the address the health server listens on, nil when not started.
func (lm *LifecycleManager) GRPCAddr() net.Addr {
	return lm.grpcAddr
}

// Start builds every configured module and brings up the dashboard.
func (lm *LifecycleManager) Start(ctx context.Context) error {
	lm.logger.Info("Starting OpenSwerveCore", zap.Int("modules", len(lm.config.Modules)))

	if err := lm.buildModules(ctx); err != nil {
		lm.setError(err)
		return err
	}

	if lm.config.Dashboard.Enabled {
		if err := lm.startDashboard(); err != nil {
			lm.setError(err)
			return err
		}
	}

	if err := lm.setState(StateRunning); err != nil {
		return err
	}
	lm.broadcastStatus()

	lm.logger.Info("System started successfully",
		zap.Int("modules", len(lm.modules)),
		zap.Bool("dashboard_enabled", lm.config.Dashboard.Enabled),
		zap.Bool("storage_enabled", lm.store != nil))

	return nil
}

func (lm *LifecycleManager) buildModules(ctx context.Context) error {
	if lm.store != nil {
		if err := lm.store.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	lm.controlMu.Lock()
	defer lm.controlMu.Unlock()

	for _, mc := range lm.config.Modules {
		if _, dup := lm.byName[mc.Name]; dup {
			return fmt.Errorf("duplicate module name %q", mc.Name)
		}

		m, err := module.BuildFromConfig(lm.hardware, mc, lm.config.Profile, lm.config.CustomProfile,
			lm.board.Layout(mc.Name), lm.logger)
		if err != nil {
			lm.board.Remove(mc.Name)
			return fmt.Errorf("failed to build modules: %w", err)
		}

		mm := &managedModule{name: mc.Name, builder: mc.Builder, module: m}
		lm.modules = append(lm.modules, mm)
		lm.byName[mc.Name] = mm

		if lm.store != nil {
			id, err := lm.store.SaveModule(ctx, storage.NewModuleRecord(mc.Name, mc.Builder, m))
			if err != nil {
				lm.logger.Warn("Failed to persist module",
					zap.String("module", mc.Name),
					zap.Error(err))
			} else {
				mm.storeID = id
			}
		}
	}

	return nil
}

func (lm *LifecycleManager) startDashboard() error {
	hubCtx, cancel := context.WithCancel(context.Background())
	lm.hubCancel = cancel
	lm.hubDone = make(chan struct{})
	go func() {
		defer close(lm.hubDone)
		lm.wsHub.Run(hubCtx)
	}()

	lm.poller = telemetry.NewPoller(lm.board, lm.config.Dashboard.SampleInterval, func(snap telemetry.Snapshot) {
		lm.wsHub.Broadcast(websocket.NewTelemetryMessage(snap))
	}, lm.logger)
	lm.poller.Start()

	if err := lm.startGRPCServer(); err != nil {
		return fmt.Errorf("failed to start gRPC: %w", err)
	}

	lm.restServer = rest.NewServer(lm.config.Dashboard, lm, lm.logger, lm.wsHub)
	if err := lm.restServer.Start(); err != nil {
		return fmt.Errorf("failed to start REST API: %w", err)
	}

	return nil
}

func (lm *LifecycleManager) startGRPCServer() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", lm.config.Dashboard.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	lm.grpcAddr = lis.Addr()

	lm.grpcServer = grpc.NewServer()
	lm.healthServer = health.NewServer()
	healthpb.RegisterHealthServer(lm.grpcServer, lm.healthServer)
	lm.healthServer.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)

	go func() {
		lm.logger.Info("gRPC server listening",
			zap.String("address", lis.Addr().String()),
			zap.String("services", "grpc.health.v1.Health"))
		if err := lm.grpcServer.Serve(lis); err != nil {
			lm.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the system
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")

		lm.setState(StateStopping)
		lm.broadcastStatus()

		shutdownErr = lm.gracefulShutdown(ctx)

		lm.setState(StateStopped)
	})

	return shutdownErr
}

func (lm *LifecycleManager) gracefulShutdown(ctx context.Context) error {
	if lm.poller != nil {
		lm.poller.Stop()
	}

	// Stop every module before the transports go away.
	lm.controlMu.Lock()
	for _, mm := range lm.modules {
		if err := mm.module.DriveController().SetReferenceVoltage(0); err != nil {
			lm.logger.Warn("Failed to stop drive motor",
				zap.String("module", mm.name),
				zap.Error(err))
		}
	}
	lm.controlMu.Unlock()

	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	if lm.restServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shutdownCtx, cancel := context.WithTimeout(ctx, lm.config.Dashboard.ShutdownTimeout)
			defer cancel()

			if err := lm.restServer.Shutdown(shutdownCtx); err != nil {
				errChan <- fmt.Errorf("rest api shutdown failed: %w", err)
			}
		}()
	}

	if lm.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lm.healthServer.Shutdown()
			lm.logger.Info("Stopping gRPC server")
			lm.grpcServer.GracefulStop()
		}()
	}

	if lm.hubCancel != nil {
		lm.hubCancel()
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-lm.hubDone
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		select {
		case err := <-errChan:
			return err
		default:
		}
		lm.logger.Info("Graceful shutdown completed")
		return nil
	case <-ctx.Done():
		lm.logger.Warn("Shutdown timeout, forcing stop")
		if lm.grpcServer != nil {
			lm.grpcServer.Stop()
		}
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

// Modules returns the state of every module in configuration order.
func (lm *LifecycleManager) Modules() []interfaces.ModuleStatus {
	lm.controlMu.Lock()
	defer lm.controlMu.Unlock()

	out := make([]interfaces.ModuleStatus, 0, len(lm.modules))
	for _, mm := range lm.modules {
		out = append(out, mm.status())
	}
	return out
}

func (lm *LifecycleManager) Module(name string) (interfaces.ModuleStatus, error) {
	lm.controlMu.Lock()
	defer lm.controlMu.Unlock()

	mm, ok := lm.byName[name]
	if !ok {
		return interfaces.ModuleStatus{}, fmt.Errorf("%w: %s", interfaces.ErrModuleNotFound, name)
	}
	return mm.status(), nil
}

// SetModule commands one module. The setpoint is persisted when storage is
// enabled; a storage failure is logged and does not fail the command.
func (lm *LifecycleManager) SetModule(ctx context.Context, name string, driveVoltage, steerAngle float64) (interfaces.ModuleStatus, error) {
	lm.controlMu.Lock()
	// Checked under controlMu: Shutdown moves to STOPPING before it takes
	// the lock to zero the drives.
	if state := lm.State(); state != StateRunning {
		lm.controlMu.Unlock()
		return interfaces.ModuleStatus{}, fmt.Errorf("%w: system is %s", interfaces.ErrNotRunning, state)
	}
	mm, ok := lm.byName[name]
	if !ok {
		lm.controlMu.Unlock()
		return interfaces.ModuleStatus{}, fmt.Errorf("%w: %s", interfaces.ErrModuleNotFound, name)
	}
	err := mm.module.Set(driveVoltage, steerAngle)
	status := mm.status()
	lm.controlMu.Unlock()

	if err != nil {
		return status, fmt.Errorf("module %s: %w", name, err)
	}

	if lm.store != nil && mm.storeID != uuid.Nil {
		if err := lm.store.RecordSetpoint(ctx, mm.storeID, driveVoltage, steerAngle); err != nil {
			lm.logger.Warn("Failed to record setpoint",
				zap.String("module", name),
				zap.Error(err))
		}
	}

	lm.broadcast(websocket.NewModuleStateMessage(websocket.ModuleStateData{
		Module:        name,
		DriveVoltage:  driveVoltage,
		TargetAngle:   status.TargetAngle,
		SteerAngle:    status.SteerAngle,
		DriveVelocity: status.DriveVelocity,
	}))

	return status, nil
}

// status must be called with controlMu held.
func (mm *managedModule) status() interfaces.ModuleStatus {
	desc := mm.module.Description()
	return interfaces.ModuleStatus{
		Name:          mm.name,
		ID:            mm.module.ID().String(),
		Builder:       mm.builder,
		DriveMotor:    desc.DriveMotor.MotorType.String(),
		SteerMotor:    desc.SteerMotor.MotorType.String(),
		DriveVelocity: mm.module.DriveVelocity(),
		MaxVelocity:   mm.module.MaxVelocity(),
		SteerAngle:    mm.module.SteerAngle(),
		TargetAngle:   mm.module.TargetAngle(),
	}
}

func (lm *LifecycleManager) State() SystemState {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()
	return lm.currentState
}

func (lm *LifecycleManager) setState(state SystemState) error {
	lm.stateMu.Lock()
	defer lm.stateMu.Unlock()
	if err := ValidateTransition(lm.currentState, state); err != nil {
		lm.logger.Warn("Rejected state transition", zap.Error(err))
		return err
	}
	lm.currentState = state
	return nil
}

func (lm *LifecycleManager) setError(err error) {
	lm.logger.Error("System error", zap.Error(err))
	lm.stateMu.Lock()
	defer lm.stateMu.Unlock()
	lm.currentState = StateError
	if lm.healthServer != nil {
		lm.healthServer.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	}
}

// GetCurrentStatus returns current system status (Interface implementation)
func (lm *LifecycleManager) GetCurrentStatus() interfaces.SystemStatus {
	lm.stateMu.RLock()
	state := lm.currentState
	lm.stateMu.RUnlock()

	lm.controlMu.Lock()
	count := len(lm.modules)
	lm.controlMu.Unlock()

	return interfaces.SystemStatus{
		State:            state.String(),
		ModuleCount:      count,
		DashboardClients: lm.wsHub.GetClientCount(),
		StorageEnabled:   lm.store != nil,
	}
}

func (lm *LifecycleManager) broadcastStatus() {
	status := lm.GetCurrentStatus()
	lm.broadcast(websocket.NewSystemStatusMessage(status.State, status.ModuleCount))
}

// broadcast is a no-op while the dashboard is down.
func (lm *LifecycleManager) broadcast(msg websocket.Message) {
	if lm.hubCancel == nil {
		return
	}
	lm.wsHub.Broadcast(msg)
}
