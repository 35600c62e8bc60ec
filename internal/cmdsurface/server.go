// Package cmdsurface implements the HTTP command surface: the gin
// routes through which a supervising process upserts tasks and
// primitives, flips their lifecycle flags, and inspects the task
// manager's state, per spec.md §6's call table.
package cmdsurface

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/manager"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/state"
)

// StateProvider supplies the current robot snapshot a new task's
// dynamics are initialized against. The daemon's tick loop owns the
// live state; cmdsurface only ever reads it.
type StateProvider interface {
	CurrentState() state.Robot
}

// Server wraps a *manager.Manager behind the command surface's routes.
type Server struct {
	mgr    *manager.Manager
	states StateProvider
	engine *gin.Engine
	http   *http.Server
}

// NewServer builds a Server with routes registered, ready for Serve.
func NewServer(mgr *manager.Manager, states StateProvider) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(loggingMiddleware(), gin.Recovery())

	s := &Server{mgr: mgr, states: states, engine: engine}
	s.setupRoutes()
	return s
}

// Engine exposes the underlying gin.Engine, mainly for tests that want
// to drive it with httptest without opening a real listener.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Serve blocks, accepting connections on addr until Shutdown is
// called, mirroring the http.Server lifecycle the daemon's other
// listeners (visualizer, monitor) already follow.
func (s *Server) Serve(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.engine}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/tasks/:name", s.setTask)
	v1.DELETE("/tasks/:name", s.removeTask)
	v1.DELETE("/tasks", s.removeAllTasks)
	v1.GET("/tasks", s.listAllTasks)
	v1.GET("/tasks/monitored", s.listMonitoredTaskNames)
	v1.GET("/tasks/:name/measures", s.getTaskMeasures)
	v1.GET("/tasks/:name/telemetry", s.getTaskTelemetry)
	v1.POST("/tasks/:name/activate", s.taskFlag(s.mgr.ActivateTask))
	v1.POST("/tasks/:name/deactivate", s.taskFlag(s.mgr.DeactivateTask))
	v1.POST("/tasks/:name/monitor", s.taskFlag(s.mgr.MonitorTask))
	v1.POST("/tasks/:name/demonitor", s.taskFlag(s.mgr.DemonitorTask))

	v1.DELETE("/priorities/:priority", s.removePriorityLevel)
	v1.POST("/priorities/:priority/activate", s.priorityFlag(s.mgr.ActivatePriorityLevel))
	v1.POST("/priorities/:priority/deactivate", s.priorityFlag(s.mgr.DeactivatePriorityLevel))
	v1.POST("/priorities/:priority/monitor", s.priorityFlag(s.mgr.MonitorPriorityLevel))
	v1.POST("/priorities/:priority/demonitor", s.priorityFlag(s.mgr.DemonitorPriorityLevel))

	v1.POST("/primitives/:name", s.setPrimitive)
	v1.DELETE("/primitives/:name", s.removePrimitive)
	v1.DELETE("/primitives", s.removeAllPrimitives)
	v1.GET("/primitives", s.listAllPrimitives)
}

// errStatus maps the error taxonomy's Kind to an HTTP status, falling
// back to 500 for anything not recognized as a *hqperr.Error.
func errStatus(err error) int {
	var e *hqperr.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case hqperr.ConfigError, hqperr.DimensionError:
		return http.StatusBadRequest
	case hqperr.BindingError:
		return http.StatusNotFound
	case hqperr.SolverInfeasible:
		return http.StatusConflict
	case hqperr.OracleError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	log.Printf("[cmdsurface] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(errStatus(err), okResponse{OK: false, Message: err.Error()})
}

func (s *Server) setTask(c *gin.Context) {
	name := c.Param("name")
	var req setTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, hqperr.Wrap(hqperr.ConfigError, name, err))
		return
	}

	status, err := s.mgr.SetTask(name, manager.TaskRequest{
		Priority:  req.Priority,
		FnType:    req.Type,
		FnParams:  req.DefParams,
		DynType:   req.DynType,
		DynParams: req.DynParams,
		Active:    req.Active,
		Monitored: req.Monitored,
	}, s.states.CurrentState())
	if err != nil {
		writeError(c, err)
		return
	}
	if status != 0 {
		writeError(c, hqperr.New(hqperr.ConfigError, name, "task init did not reach StatusOK"))
		return
	}
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) removeTask(c *gin.Context) {
	s.mgr.RemoveTask(c.Param("name"))
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) removeAllTasks(c *gin.Context) {
	s.mgr.RemoveAllTasks()
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) removePriorityLevel(c *gin.Context) {
	p, err := strconv.Atoi(c.Param("priority"))
	if err != nil {
		writeError(c, hqperr.Wrap(hqperr.ConfigError, "priority", err))
		return
	}
	s.mgr.RemovePriorityLevel(p)
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) listAllTasks(c *gin.Context) {
	infos := s.mgr.ListAllTasks()
	out := make([]taskInfoResponse, len(infos))
	for i, ti := range infos {
		out[i] = taskInfoResponse{Name: ti.Name, Priority: ti.Priority, Active: ti.Active, Monitored: ti.Monitored}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getTaskMeasures(c *gin.Context) {
	name := c.Param("name")
	measures, err := s.mgr.GetTaskMeasures(name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, measuresResponse{Name: name, Measures: measures})
}

func (s *Server) listMonitoredTaskNames(c *gin.Context) {
	c.JSON(http.StatusOK, s.mgr.MonitoredTaskNames())
}

func (s *Server) getTaskTelemetry(c *gin.Context) {
	name := c.Param("name")
	e, eDotStar, measures, err := s.mgr.TaskTelemetry(name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, telemetryResponse{Name: name, E: e, EDotStar: eDotStar, Measures: measures})
}

func (s *Server) taskFlag(f func(name string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := f(c.Param("name")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, okResponse{OK: true})
	}
}

func (s *Server) priorityFlag(f func(priority int)) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := strconv.Atoi(c.Param("priority"))
		if err != nil {
			writeError(c, hqperr.Wrap(hqperr.ConfigError, "priority", err))
			return
		}
		f(p)
		c.JSON(http.StatusOK, okResponse{OK: true})
	}
}

func (s *Server) setPrimitive(c *gin.Context) {
	name := c.Param("name")
	var req setPrimitiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, hqperr.Wrap(hqperr.ConfigError, name, err))
		return
	}

	kind, err := parseKind(req.Type)
	if err != nil {
		writeError(c, err)
		return
	}
	params, err := parsePrimitiveParams(kind, req.Params)
	if err != nil {
		writeError(c, err)
		return
	}

	err = s.mgr.SetPrimitive(primitives.Primitive{
		Name:    name,
		Kind:    kind,
		FrameID: req.FrameID,
		Visible: req.Visible,
		Color:   primitives.RGBA{R: req.Color[0], G: req.Color[1], B: req.Color[2], A: req.Color[3]},
		Params:  params,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) removePrimitive(c *gin.Context) {
	s.mgr.RemovePrimitive(c.Param("name"))
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) removeAllPrimitives(c *gin.Context) {
	s.mgr.RemoveAllPrimitives()
	c.JSON(http.StatusOK, okResponse{OK: true})
}

type primitiveInfoCollector struct {
	out []primitiveInfoResponse
}

func (c *primitiveInfoCollector) Visit(p primitives.Primitive) {
	c.out = append(c.out, primitiveInfoResponse{
		Name: p.Name, Kind: p.Kind.String(), FrameID: p.FrameID, Visible: p.Visible,
	})
}

func (s *Server) listAllPrimitives(c *gin.Context) {
	var collector primitiveInfoCollector
	s.mgr.RenderPrimitives(&collector)
	c.JSON(http.StatusOK, collector.out)
}
