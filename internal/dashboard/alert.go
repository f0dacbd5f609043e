// Package dashboard holds the back office state of one signed-in user: which
// view is open, the grouped list, the record being inspected or edited and the
// photo viewer. Every user action goes through a Dispatcher.
package dashboard

import (
	"errors"
	"strings"
)

var (
	// ErrNoRecord is returned by actions that need a loaded record.
	ErrNoRecord = errors.New("no record loaded")
	// ErrEditing is returned by actions not allowed while a draft is open.
	ErrEditing = errors.New("record is being edited")
	// ErrNotEditing is returned by Save and Cancel outside edit mode.
	ErrNotEditing = errors.New("record is not being edited")
	// ErrUnknownAction is returned for an action with no handler.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownGroup is returned when toggling a group that is not listed.
	ErrUnknownGroup = errors.New("unknown group")
)

// AlertKind is the severity of an Alert.
type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
	AlertWarning AlertKind = "warning"
	AlertInfo    AlertKind = "info"
)

// Alert is a message shown to the user.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
}

// NewAlert builds an alert. An empty title defaults to the capitalised kind.
func NewAlert(kind AlertKind, title, message string) *Alert {
	if title == "" {
		k := string(kind)
		if k != "" {
			title = strings.ToUpper(k[:1]) + k[1:]
		}
	}
	return &Alert{Kind: kind, Title: title, Message: message}
}

// Alert texts shown by the back office.
const (
	titleError   = "Error"
	titleSuccess = "Éxito"

	msgNotFound        = "Solicitud no encontrada"
	msgLoadFailed      = "Error al cargar la solicitud: "
	msgListFailed      = "Error al cargar las solicitudes: "
	msgDeleteFailed    = "Error al eliminar la solicitud: "
	msgDeleted         = "Solicitud eliminada exitosamente"
	msgSaved           = "Cambios guardados correctamente"
	msgSaveFailed      = "Error al guardar los cambios: "
	msgNoChanges       = "No se detectaron cambios para guardar"
	msgNoData          = "No hay datos de solicitud cargados"
	msgNoPhotos        = "No hay fotos disponibles para esta solicitud"
	msgPDFDone         = "PDF generado exitosamente con imágenes"
	msgPDFFailed       = "Error al generar el PDF: "
	msgPDFNoData       = "No hay datos de solicitud para generar el PDF"
	msgFinishEditFirst = "Guarde o cancele los cambios antes de continuar"

	// MsgSessionExpired is shown when an action arrives without a session.
	MsgSessionExpired = "No hay una sesión activa. Redirigiendo al login..."
	// TitleSessionExpired goes with MsgSessionExpired.
	TitleSessionExpired = "Sesión Expirada"
)
