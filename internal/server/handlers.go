package server

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/inkacorp/solicitudes/internal/dashboard"
	"github.com/inkacorp/solicitudes/internal/session"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ingrese correo y contraseña", "title": "Error"})
		return
	}

	sess, err := s.deps.Gate.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, session.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": "Error: " + err.Error(), "title": "Error", "request_id": GetRequestID(c)})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) logout(c *gin.Context) {
	if err := s.deps.Gate.SignOut(c.Request.Context(), c.GetString(keyToken)); err != nil {
		log.Warn().Err(err).Str("request_id", GetRequestID(c)).Msg("sign out reported an error")
	}
	c.Status(http.StatusNoContent)
}

// scratch runs cmds in order on a throwaway workspace. On the first failure
// the error response is written and ok is false.
func (s *Server) scratch(c *gin.Context, cmds ...dashboard.Command) (out dashboard.Outcome, ok bool) {
	ws := s.newWorkspace()
	for _, cmd := range cmds {
		var err error
		out, err = s.dispatcher.Dispatch(c.Request.Context(), ws, cmd)
		if err != nil {
			writeError(c, out, err)
			return out, false
		}
	}
	return out, true
}

func (s *Server) listSolicitudes(c *gin.Context) {
	out, ok := s.scratch(c, dashboard.Command{Action: dashboard.ActionRefresh})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"groups": out.State.Groups,
		"total":  out.State.Total,
	})
}

func (s *Server) getSolicitud(c *gin.Context) {
	out, ok := s.scratch(c, dashboard.Command{Action: dashboard.ActionViewDetails, ID: c.Param("id")})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"record": out.State.Record,
		"photos": out.State.Photos,
	})
}

func (s *Server) updateSolicitud(c *gin.Context) {
	var inputs map[string]string
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos: " + err.Error(), "title": "Error"})
		return
	}

	out, ok := s.scratch(c,
		dashboard.Command{Action: dashboard.ActionViewDetails, ID: c.Param("id")},
		dashboard.Command{Action: dashboard.ActionEdit},
		dashboard.Command{Action: dashboard.ActionSave, Inputs: inputs},
	)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alert":  out.Alert,
		"record": out.State.Record,
	})
}

func (s *Server) deleteSolicitud(c *gin.Context) {
	out, ok := s.scratch(c, dashboard.Command{Action: dashboard.ActionDelete, ID: c.Param("id")})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"alert": out.Alert})
}

func (s *Server) getPhotos(c *gin.Context) {
	out, ok := s.scratch(c,
		dashboard.Command{Action: dashboard.ActionViewDetails, ID: c.Param("id")},
		dashboard.Command{Action: dashboard.ActionViewPhotos},
	)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":  out.State.PhotoTitle,
		"photos": out.State.Photos,
		"alert":  out.Alert,
	})
}

func (s *Server) downloadPDF(c *gin.Context) {
	out, ok := s.scratch(c,
		dashboard.Command{Action: dashboard.ActionViewDetails, ID: c.Param("id")},
		dashboard.Command{Action: dashboard.ActionGeneratePDF},
	)
	if !ok {
		return
	}
	writeDocument(c, out.Document)
}

func writeDocument(c *gin.Context, doc *dashboard.Document) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name}))
	if doc.URL != "" {
		c.Header("X-Archive-URL", doc.URL)
	}
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}

func (s *Server) getWorkspace(c *gin.Context) {
	ws := s.registry.Get(GetUser(c).ID)
	c.JSON(http.StatusOK, gin.H{"state": ws.State()})
}

// runCommand dispatches one action on the caller's workspace. A generated
// document is sent as the response body.
func (s *Server) runCommand(c *gin.Context) {
	var cmd dashboard.Command
	if err := c.ShouldBindJSON(&cmd); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos: " + err.Error(), "title": "Error"})
		return
	}
	cmd.Action = dashboard.Action(c.Param("action"))

	ws := s.registry.Get(GetUser(c).ID)
	out, err := s.dispatcher.Dispatch(c.Request.Context(), ws, cmd)
	if err != nil {
		body := errorBody(c, out.Alert, err)
		body["state"] = out.State
		c.JSON(statusFor(err), body)
		return
	}
	if out.Document != nil {
		writeDocument(c, out.Document)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alert": out.Alert,
		"state": out.State,
	})
}
