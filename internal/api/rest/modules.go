package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/KevinKickass/OpenSwerveCore/internal/interfaces"
	"github.com/KevinKickass/OpenSwerveCore/internal/module"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type setpointRequest struct {
	DriveVoltage *float64 `json:"drive_voltage" binding:"required"`
	SteerAngle   *float64 `json:"steer_angle" binding:"required"`
}

// GET /api/v1/modules
func (s *Server) listModules(c *gin.Context) {
	modules := s.lm.Modules()
	c.JSON(http.StatusOK, gin.H{
		"modules": modules,
		"count":   len(modules),
	})
}

// GET /api/v1/modules/:name
func (s *Server) getModule(c *gin.Context) {
	name := c.Param("name")

	status, err := s.lm.Module(name)
	if err != nil {
		s.moduleError(c, name, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// POST /api/v1/modules/:name/setpoint
func (s *Server) setModule(c *gin.Context) {
	name := c.Param("name")

	var req setpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("MODULE_400", "Invalid request body", err.Error()))
		return
	}

	status, err := s.lm.SetModule(c.Request.Context(), name, *req.DriveVoltage, *req.SteerAngle)
	if err != nil {
		s.moduleError(c, name, err)
		return
	}

	s.logger.Debug("Setpoint applied",
		zap.String("module", name),
		zap.Float64("drive_voltage", *req.DriveVoltage),
		zap.Float64("steer_angle", *req.SteerAngle))

	c.JSON(http.StatusOK, status)
}

// GET /api/v1/modules/:name/history?limit=N
func (s *Server) getModuleHistory(c *gin.Context) {
	name := c.Param("name")

	store := s.lm.Storage()
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, types.NewErrorResponse("STORAGE_503", "Storage not enabled", nil))
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("MODULE_400", "Invalid limit", raw))
			return
		}
		limit = n
	}

	status, err := s.lm.Module(name)
	if err != nil {
		s.moduleError(c, name, err)
		return
	}

	rec, err := store.LoadModule(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse("MODULE_404", "Module not persisted", err.Error()))
		return
	}

	setpoints, err := store.LoadSetpoints(c.Request.Context(), rec.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse("STORAGE_500", "Failed to load setpoints", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"module":    status.Name,
		"setpoints": setpoints,
		"count":     len(setpoints),
	})
}

func (s *Server) moduleError(c *gin.Context, name string, err error) {
	if errors.Is(err, interfaces.ErrModuleNotFound) {
		c.JSON(http.StatusNotFound, types.NewErrorResponse("MODULE_404", "Module not found", name))
		return
	}
	if errors.Is(err, interfaces.ErrNotRunning) {
		c.JSON(http.StatusConflict, types.NewErrorResponse("MODULE_409", "System not running", err.Error()))
		return
	}
	s.logger.Error("Module operation failed", zap.String("module", name), zap.Error(err))
	c.JSON(http.StatusInternalServerError, types.NewErrorResponse("MODULE_500", "Module operation failed", err.Error()))
}

// GET /api/v1/presets
func (s *Server) listPresets(c *gin.Context) {
	names := module.PresetNames()
	c.JSON(http.StatusOK, gin.H{
		"presets": names,
		"count":   len(names),
	})
}

// GET /api/v1/presets/:name
func (s *Server) getPreset(c *gin.Context) {
	name := c.Param("name")

	mech, err := module.Preset(name)
	if err != nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse("PRESET_404", "Preset not found", name))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":       name,
		"mechanical": mech,
		"max_velocity": gin.H{
			types.MotorTypeNEO.String():    mech.MaxFreeSpeed(types.MotorTypeNEO),
			types.MotorTypeFalcon.String(): mech.MaxFreeSpeed(types.MotorTypeFalcon),
		},
	})
}
