package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/inkacorp/solicitudes/internal/store"
)

// Action names a user action.
type Action string

const (
	ActionNavigate       Action = "navigate"
	ActionRefresh        Action = "refresh"
	ActionViewDetails    Action = "view-details"
	ActionBack           Action = "back"
	ActionEdit           Action = "edit"
	ActionSave           Action = "save"
	ActionCancel         Action = "cancel"
	ActionViewPhotos     Action = "view-photos"
	ActionBackFromPhotos Action = "back-from-photos"
	ActionGeneratePDF    Action = "generate-pdf"
	ActionDelete         Action = "delete"
	ActionToggleGroup    Action = "toggle-group"
)

// Command is one user action with its arguments.
type Command struct {
	Action Action            `json:"action"`
	ID     string            `json:"id,omitempty"`
	View   string            `json:"view,omitempty"`
	Group  string            `json:"group,omitempty"`
	Inputs map[string]string `json:"inputs,omitempty"`
}

// Outcome is what an action produced. On failure Alert carries the text for
// the user and the handler also returns the error.
type Outcome struct {
	Alert    *Alert
	Document *Document
	State    State
}

// Handler runs one action against a locked workspace.
type Handler func(ctx context.Context, w *Workspace, cmd Command) (Outcome, error)

// Dispatcher maps actions to handlers.
type Dispatcher struct {
	handlers map[Action]Handler
}

// NewDispatcher returns a dispatcher with every back office action registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{handlers: make(map[Action]Handler)}
	d.Register(ActionNavigate, navigate)
	d.Register(ActionRefresh, refresh)
	d.Register(ActionViewDetails, viewDetails)
	d.Register(ActionBack, back)
	d.Register(ActionEdit, edit)
	d.Register(ActionSave, save)
	d.Register(ActionCancel, cancelEdit)
	d.Register(ActionViewPhotos, viewPhotos)
	d.Register(ActionBackFromPhotos, backFromPhotos)
	d.Register(ActionGeneratePDF, generatePDF)
	d.Register(ActionDelete, deleteRecord)
	d.Register(ActionToggleGroup, toggleGroup)
	return d
}

// Register binds h to a, replacing any previous handler.
func (d *Dispatcher) Register(a Action, h Handler) {
	d.handlers[a] = h
}

// Actions lists the registered actions, sorted.
func (d *Dispatcher) Actions() []Action {
	out := make([]Action, 0, len(d.handlers))
	for a := range d.handlers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dispatch runs cmd against w. The returned outcome always carries the state
// after the action.
func (d *Dispatcher) Dispatch(ctx context.Context, w *Workspace, cmd Command) (Outcome, error) {
	h, ok := d.handlers[cmd.Action]
	if !ok {
		return Outcome{State: w.State()}, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	out, err := h(ctx, w, cmd)
	if err != nil {
		log.Debug().Err(err).Str("action", string(cmd.Action)).Str("id", cmd.ID).Msg("action failed")
	}
	out.State = w.state()
	return out, err
}

func failed(err error, kind AlertKind, title, msg string) (Outcome, error) {
	return Outcome{Alert: NewAlert(kind, title, msg)}, err
}

func errorText(err error) string {
	var apiErr *store.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// editing reports whether a draft is open; actions that would drop it are refused.
func editing(w *Workspace) bool { return w.detail.Mode() == Editing }

func editingRefused() (Outcome, error) {
	return failed(ErrEditing, AlertWarning, "Edición en curso", msgFinishEditFirst)
}

func navigate(ctx context.Context, w *Workspace, cmd Command) (Outcome, error) {
	if editing(w) {
		return editingRefused()
	}
	v, reload := w.router.Navigate(cmd.View)
	if (v == ViewDetails || v == ViewPhotos) && !hasRecord(w) {
		w.router.Navigate(string(ViewDashboard))
		return failed(ErrNoRecord, AlertError, titleError, msgNoData)
	}
	if reload {
		return load(ctx, w)
	}
	return Outcome{}, nil
}

func hasRecord(w *Workspace) bool {
	_, ok := w.detail.Record()
	return ok
}

func refresh(ctx context.Context, w *Workspace, _ Command) (Outcome, error) {
	return load(ctx, w)
}

func load(ctx context.Context, w *Workspace) (Outcome, error) {
	records, err := w.store.List(ctx)
	if err != nil {
		return failed(err, AlertError, "Error de Carga", msgListFailed+errorText(err))
	}
	w.list.Load(records)
	log.Debug().Int("records", w.list.Total()).Int("groups", len(w.list.Groups())).Msg("solicitudes loaded")
	return Outcome{}, nil
}

func viewDetails(ctx context.Context, w *Workspace, cmd Command) (Outcome, error) {
	if editing(w) {
		return editingRefused()
	}
	rec, err := w.store.Get(ctx, cmd.ID)
	if errors.Is(err, store.ErrNotFound) {
		return failed(err, AlertError, titleError, msgNotFound)
	}
	if err != nil {
		return failed(err, AlertError, titleError, msgLoadFailed+errorText(err))
	}
	w.detail.Show(rec)
	w.photos.Show(rec)
	w.router.Navigate(string(ViewDetails))
	return Outcome{}, nil
}

func back(_ context.Context, w *Workspace, _ Command) (Outcome, error) {
	if editing(w) {
		return editingRefused()
	}
	w.detail.Clear()
	w.photos.Clear()
	w.router.Navigate(string(ViewSolicitudes))
	return Outcome{}, nil
}

func edit(_ context.Context, w *Workspace, _ Command) (Outcome, error) {
	if err := w.detail.Edit(); err != nil {
		return failed(err, AlertError, titleError, msgNoData)
	}
	w.router.Navigate(string(ViewDetails))
	return Outcome{}, nil
}

func save(ctx context.Context, w *Workspace, cmd Command) (Outcome, error) {
	changed, err := w.detail.Save(ctx, w.store, cmd.Inputs)
	switch {
	case errors.Is(err, ErrNoRecord):
		return failed(err, AlertError, titleError, msgNoData)
	case err != nil:
		return failed(err, AlertError, titleError, msgSaveFailed+errorText(err))
	case !changed:
		return Outcome{Alert: NewAlert(AlertInfo, "Sin cambios", msgNoChanges)}, nil
	}
	rec, _ := w.detail.Record()
	w.photos.Show(rec)
	return Outcome{Alert: NewAlert(AlertSuccess, titleSuccess, msgSaved)}, nil
}

func cancelEdit(_ context.Context, w *Workspace, _ Command) (Outcome, error) {
	if err := w.detail.Cancel(); err != nil {
		return failed(err, AlertInfo, "", "No hay cambios en curso")
	}
	return Outcome{}, nil
}

func viewPhotos(_ context.Context, w *Workspace, _ Command) (Outcome, error) {
	if !hasRecord(w) {
		return failed(ErrNoRecord, AlertError, titleError, msgNoData)
	}
	if w.photos.Empty() {
		return Outcome{Alert: NewAlert(AlertInfo, "Sin Fotos", msgNoPhotos)}, nil
	}
	w.router.Navigate(string(ViewPhotos))
	return Outcome{}, nil
}

func backFromPhotos(_ context.Context, w *Workspace, _ Command) (Outcome, error) {
	if !hasRecord(w) {
		w.router.Navigate(string(ViewSolicitudes))
		return Outcome{}, nil
	}
	w.router.Navigate(string(ViewDetails))
	return Outcome{}, nil
}

func generatePDF(ctx context.Context, w *Workspace, _ Command) (Outcome, error) {
	rec, ok := w.detail.Record()
	if !ok {
		return failed(ErrNoRecord, AlertError, "", msgPDFNoData)
	}
	if editing(w) {
		return editingRefused()
	}

	data, err := w.gen.GenerateBytes(ctx, rec)
	if err != nil {
		return failed(err, AlertError, "", msgPDFFailed+err.Error())
	}

	doc := &Document{Name: w.gen.FileName(rec), Data: data}
	if w.archive != nil {
		url, err := w.archive.Put(ctx, doc.Name, data)
		if err != nil {
			log.Warn().Err(err).Str("solicitud", rec.ID).Msg("failed to archive report")
		} else {
			doc.URL = url
		}
	}
	return Outcome{Document: doc, Alert: NewAlert(AlertSuccess, titleSuccess, msgPDFDone)}, nil
}

func deleteRecord(ctx context.Context, w *Workspace, cmd Command) (Outcome, error) {
	if editing(w) {
		return editingRefused()
	}
	id := cmd.ID
	if id == "" {
		rec, ok := w.detail.Record()
		if !ok {
			return failed(ErrNoRecord, AlertError, titleError, msgNoData)
		}
		id = rec.ID
	}

	if err := w.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return failed(err, AlertError, titleError, msgNotFound)
		}
		return failed(err, AlertError, titleError, msgDeleteFailed+errorText(err))
	}
	log.Info().Str("solicitud", id).Msg("solicitud deleted")

	if rec, ok := w.detail.Record(); ok && rec.ID == id {
		w.detail.Clear()
		w.photos.Clear()
	}
	w.router.Navigate(string(ViewSolicitudes))
	out, err := load(ctx, w)
	if err != nil {
		return out, err
	}
	return Outcome{Alert: NewAlert(AlertSuccess, titleSuccess, msgDeleted)}, nil
}

func toggleGroup(_ context.Context, w *Workspace, cmd Command) (Outcome, error) {
	if !w.list.Toggle(cmd.Group) {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownGroup, cmd.Group)
	}
	return Outcome{}, nil
}
