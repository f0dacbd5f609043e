// Package server exposes the back office over HTTP.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkacorp/solicitudes/internal/dashboard"
	"github.com/inkacorp/solicitudes/internal/metrics"
	"github.com/inkacorp/solicitudes/internal/session"
	"github.com/inkacorp/solicitudes/internal/storage"
	"github.com/inkacorp/solicitudes/internal/store"
)

// Deps are the collaborators of a Server. Archive may be nil.
type Deps struct {
	Store     store.Store
	Gate      *session.Gate
	Generator dashboard.Generator
	Archive   storage.Sink
	Status    dashboard.StatusMapping
}

type Server struct {
	deps       Deps
	registry   *dashboard.Registry
	dispatcher *dashboard.Dispatcher
	engine     *gin.Engine
}

// New builds the router. Workspaces of users that sign out are dropped.
func New(deps Deps) *Server {
	s := &Server{
		deps:       deps,
		dispatcher: dashboard.NewDispatcher(),
	}
	s.registry = dashboard.NewRegistry(s.newWorkspace)
	deps.Gate.OnChange(func(e session.Event, u session.User) {
		if e == session.SignedOut && u.ID != "" {
			s.registry.Drop(u.ID)
		}
	})
	s.engine = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Registry exposes the per-user workspaces.
func (s *Server) Registry() *dashboard.Registry { return s.registry }

func (s *Server) newWorkspace() *dashboard.Workspace {
	ws := dashboard.NewWorkspace(s.deps.Store, s.deps.Generator, s.deps.Status)
	if s.deps.Archive != nil {
		ws.SetArchive(s.deps.Archive)
	}
	return ws
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery())
	router.Use(RequestLogger())
	router.Use(CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", s.login)
			auth.POST("/logout", Auth(s.deps.Gate), s.logout)
		}

		protected := api.Group("")
		protected.Use(Auth(s.deps.Gate))
		{
			solicitudes := protected.Group("/solicitudes")
			{
				solicitudes.GET("", s.listSolicitudes)
				solicitudes.GET("/:id", s.getSolicitud)
				solicitudes.PATCH("/:id", s.updateSolicitud)
				solicitudes.DELETE("/:id", s.deleteSolicitud)
				solicitudes.GET("/:id/photos", s.getPhotos)
				solicitudes.GET("/:id/pdf", s.downloadPDF)
			}

			protected.GET("/workspace", s.getWorkspace)
			protected.POST("/commands/:action", s.runCommand)
		}
	}

	return router
}

// statusFor maps an action error to an HTTP status.
func statusFor(err error) int {
	var apiErr *store.APIError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, dashboard.ErrNoRecord),
		errors.Is(err, dashboard.ErrEditing),
		errors.Is(err, dashboard.ErrNotEditing):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrUnknownAction),
		errors.Is(err, dashboard.ErrUnknownGroup):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON error payload. The alert text wins over the raw error.
func errorBody(c *gin.Context, alert *dashboard.Alert, err error) gin.H {
	body := gin.H{"request_id": GetRequestID(c)}
	if alert != nil {
		body["error"] = alert.Message
		body["title"] = alert.Title
		body["alert"] = alert
	} else {
		body["error"] = err.Error()
		body["title"] = "Error"
	}
	return body
}

func writeError(c *gin.Context, out dashboard.Outcome, err error) {
	c.JSON(statusFor(err), errorBody(c, out.Alert, err))
}
