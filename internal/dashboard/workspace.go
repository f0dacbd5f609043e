package dashboard

import (
	"context"
	"sync"

	"github.com/inkacorp/solicitudes/internal/record"
	"github.com/inkacorp/solicitudes/internal/storage"
	"github.com/inkacorp/solicitudes/internal/store"
)

// Generator renders a record as a PDF.
type Generator interface {
	GenerateBytes(ctx context.Context, rec record.Record) ([]byte, error)
	FileName(rec record.Record) string
}

// Document is a generated report ready for download.
type Document struct {
	Name string
	Data []byte
	// URL is where the archived copy lives, empty when not archived.
	URL string
}

// Workspace is the back office state of one user. Access goes through a
// Dispatcher, which serialises actions.
type Workspace struct {
	mu sync.Mutex

	store   store.Store
	gen     Generator
	archive storage.Sink
	mapping StatusMapping

	router *Router
	list   *ListView
	detail *DetailView
	photos *PhotoViewer
}

// NewWorkspace creates a workspace on the dashboard view.
func NewWorkspace(st store.Store, gen Generator, mapping StatusMapping) *Workspace {
	return &Workspace{
		store:   st,
		gen:     gen,
		mapping: mapping,
		router:  NewRouter(),
		list:    NewListView(mapping),
		detail:  NewDetailView(mapping),
		photos:  &PhotoViewer{},
	}
}

// SetArchive stores a copy of every generated report in sink.
func (w *Workspace) SetArchive(sink storage.Sink) {
	w.mu.Lock()
	w.archive = sink
	w.mu.Unlock()
}

// Section is a titled block of the detail view.
type Section struct {
	Title  string         `json:"title"`
	Fields []record.Field `json:"fields"`
}

// RecordView is the loaded record as shown on screen.
type RecordView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Sections []Section `json:"sections"`
}

// State is a read-only snapshot of a workspace.
type State struct {
	View       View              `json:"view"`
	Groups     []Group           `json:"groups"`
	Total      int               `json:"total"`
	Mode       Mode              `json:"mode"`
	Record     *RecordView       `json:"record,omitempty"`
	Fields     []EditableField   `json:"fields,omitempty"`
	Draft      map[string]string `json:"draft,omitempty"`
	Photos     []record.Photo    `json:"photos,omitempty"`
	PhotoTitle string            `json:"photo_title,omitempty"`
}

// State returns a snapshot.
func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state()
}

func (w *Workspace) state() State {
	s := State{
		View:   w.router.Current(),
		Groups: w.list.Groups(),
		Total:  w.list.Total(),
		Mode:   w.detail.Mode(),
	}
	if rec, ok := w.detail.Record(); ok {
		s.Record = recordView(rec)
		s.Photos = w.photos.Photos()
		s.PhotoTitle = w.photos.Title()
		if s.Mode == Editing {
			s.Fields = w.detail.Fields()
			s.Draft = copyDraft(w.detail.Draft())
		}
	}
	return s
}

func recordView(rec record.Record) *RecordView {
	return &RecordView{
		ID:   rec.ID,
		Name: rec.DisplayName(record.NotSpecified),
		Sections: []Section{
			{Title: "Información Personal", Fields: shown(rec.PersonalFields())},
			{Title: "Información Familiar", Fields: shown(rec.FamilyFields())},
			{Title: "Información del Crédito", Fields: shown(rec.CreditFields())},
		},
	}
}

// shown replaces missing values with the placeholder.
func shown(fields []record.Field) []record.Field {
	out := make([]record.Field, len(fields))
	for i, f := range fields {
		if record.IsEmpty(f.Value) {
			f.Value = record.NotSpecified
		}
		out[i] = f
	}
	return out
}

func copyDraft(d map[string]string) map[string]string {
	if d == nil {
		return nil
	}
	out := make(map[string]string, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Registry hands out one workspace per user.
type Registry struct {
	mu     sync.RWMutex
	spaces map[string]*Workspace
	newWS  func() *Workspace
}

// NewRegistry creates a registry building workspaces with newWS.
func NewRegistry(newWS func() *Workspace) *Registry {
	return &Registry{spaces: make(map[string]*Workspace), newWS: newWS}
}

// Get returns the workspace of user, creating it on first use.
func (r *Registry) Get(user string) *Workspace {
	r.mu.RLock()
	ws, ok := r.spaces[user]
	r.mu.RUnlock()
	if ok {
		return ws
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.spaces[user]; ok {
		return ws
	}
	ws = r.newWS()
	r.spaces[user] = ws
	return ws
}

// Drop forgets the workspace of user.
func (r *Registry) Drop(user string) {
	r.mu.Lock()
	delete(r.spaces, user)
	r.mu.Unlock()
}

// Len is the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.spaces)
}
