package dashboard

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/inkacorp/solicitudes/internal/record"
	"github.com/inkacorp/solicitudes/internal/store"
)

func rows() []map[string]any {
	return []map[string]any{
		{"solicitudid": "202401151430001", "nombresocio": "María López", "estado": "pendiente", "monto": 1500,
			"fotoidentidad": "https://cdn.example/id.jpg", "fotobien": "https://cdn.example/bien.jpg"},
		{"solicitudid": "202402011015002", "nombresocio": "Juan Pérez", "estado": "APROBADO"},
		{"solicitudid": "202312240900003", "nombresocio": "Ana Torres", "estado": "ANULADA"},
		{"solicitudid": "202312010800004", "nombresocio": "Luis Díaz"},
		{"solicitudid": "202311010800005", "nombresocio": "Rosa Vera", "estado": "En Revisión"},
	}
}

type fakeGenerator struct {
	calls int
	err   error
}

func (g *fakeGenerator) GenerateBytes(_ context.Context, rec record.Record) ([]byte, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-1.4 " + rec.ID), nil
}

func (g *fakeGenerator) FileName(rec record.Record) string { return "Solicitud_" + rec.ID + ".pdf" }

type fakeSink struct {
	names []string
	err   error
}

func (s *fakeSink) Put(_ context.Context, name string, _ []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.names = append(s.names, name)
	return "s3://reports/" + name, nil
}

func newTestWorkspace() (*Workspace, *store.MemoryStore, *fakeGenerator) {
	st := store.NewMemoryStore(rows()...)
	gen := &fakeGenerator{}
	return NewWorkspace(st, gen, DefaultStatusMapping()), st, gen
}

func TestListGrouping(t *testing.T) {
	st := store.NewMemoryStore(rows()...)
	records, _ := st.List(context.Background())

	l := NewListView(DefaultStatusMapping())
	l.Load(records)

	var got []string
	for _, g := range l.Groups() {
		got = append(got, g.Status)
	}
	want := []string{"PENDIENTE", "APROBADO", "EN REVISIÓN", "ANULADA"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected groups %v, got %v", want, got)
	}

	groups := l.Groups()
	if groups[0].Count != 2 || !groups[0].Expanded {
		t.Errorf("Expected 2 expanded pending records, got %+v", groups[0])
	}
	if groups[1].Expanded {
		t.Error("Only the pending group starts expanded")
	}
	if groups[0].Rows[0].ID != "202401151430001" || groups[0].Rows[0].Amount != "$1,500" {
		t.Errorf("Unexpected first pending row %+v", groups[0].Rows[0])
	}
	if groups[0].Rows[1].Amount != record.NotSpecified {
		t.Errorf("Expected placeholder amount, got %s", groups[0].Rows[1].Amount)
	}
	if l.Total() != 5 {
		t.Errorf("Expected 5 records, got %d", l.Total())
	}

	if !l.Toggle("aprobado") || !l.Groups()[1].Expanded {
		t.Error("Toggle did not expand the approved group")
	}
	if l.Toggle("COLOCADA") {
		t.Error("Toggle accepted a hidden empty group")
	}
}

func TestStatusInconsistencies(t *testing.T) {
	got := DefaultStatusMapping().Inconsistencies()
	want := []string{"EN REVISION", "ANULADA"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if !DefaultStatusMapping().ValidStatus("COLOCADA") || DefaultStatusMapping().ValidStatus("EN PROCESO") {
		t.Error("Unexpected ValidStatus result")
	}
}

func TestRouter(t *testing.T) {
	r := NewRouter()
	if r.Current() != ViewDashboard {
		t.Fatalf("Expected dashboard, got %s", r.Current())
	}

	tests := []struct {
		name   string
		want   View
		reload bool
	}{
		{"solicitudes", ViewSolicitudes, true},
		{"details", ViewDetails, false},
		{"photos", ViewPhotos, false},
		{"reports", ViewDashboard, false},
		{"", ViewDashboard, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, reload := r.Navigate(tt.name)
			if v != tt.want || reload != tt.reload || r.Current() != tt.want {
				t.Errorf("Navigate(%q) = %s, %v", tt.name, v, reload)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	fields := EditableFields(DefaultStatusMapping())
	got := Coerce(fields, map[string]string{
		"monto":              "$1,500.75",
		"whatsappreferencia": "099-123-4567",
		"whatsappsocio":      "+593 99 123 4567",
		"whatsappconyuge":    "  ",
		"nombresocio":        "  Ana Torres ",
		"estado":             "APROBADO",
		"fotoidentidad":      "https://evil.example/x.jpg",
		"solicitudid":        "1",
	})
	want := map[string]any{
		"monto":              int64(1500),
		"whatsappreferencia": int64(991234567),
		"whatsappsocio":      "+593991234567",
		"nombresocio":        "Ana Torres",
		"estado":             "APROBADO",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	dropped := Coerce(fields, map[string]string{"monto": "-5", "whatsappreferencia": "abc"})
	if len(dropped) != 0 {
		t.Errorf("Expected invalid numbers dropped, got %v", dropped)
	}
}

func TestDetailViewStateMachine(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(rows()...)
	d := NewDetailView(DefaultStatusMapping())

	if err := d.Edit(); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("Expected ErrNoRecord, got %v", err)
	}
	if err := d.Cancel(); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("Expected ErrNotEditing, got %v", err)
	}

	rec, _ := st.Get(ctx, "202401151430001")
	d.Show(rec)
	if err := d.Edit(); err != nil || d.Mode() != Editing {
		t.Fatalf("Edit failed: %v", err)
	}
	if d.Draft()["monto"] != "1500" || d.Draft()["nombresocio"] != "María López" {
		t.Errorf("Unexpected draft %v", d.Draft())
	}

	if err := d.Cancel(); err != nil || d.Mode() != Viewing || d.Draft() != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	_ = d.Edit()
	changed, err := d.Save(ctx, st, map[string]string{"estado": "APROBADO", "monto": "2000"})
	if err != nil || !changed {
		t.Fatalf("Save failed: %v, changed %v", err, changed)
	}
	if d.Mode() != Viewing {
		t.Error("Expected viewing after save")
	}
	got, _ := d.Record()
	if got.Status != "APROBADO" || got.Amount.Decimal.IntPart() != 2000 {
		t.Errorf("Record not merged: %+v", got)
	}
	stored, _ := st.Get(ctx, "202401151430001")
	if stored.Status != "APROBADO" {
		t.Errorf("Store not updated: %s", stored.Status)
	}
}

func TestDetailViewSaveWithoutChanges(t *testing.T) {
	d := NewDetailView(DefaultStatusMapping())
	d.Show(record.FromMap(map[string]any{"solicitudid": "9"}))
	_ = d.Edit()

	changed, err := d.Save(context.Background(), store.NewMemoryStore(), nil)
	if err != nil || changed {
		t.Fatalf("Expected no change and no error, got %v, %v", changed, err)
	}
	if d.Mode() != Editing {
		t.Error("Expected to stay in edit mode")
	}
}

func TestDispatchFlow(t *testing.T) {
	ctx := context.Background()
	w, st, gen := newTestWorkspace()
	sink := &fakeSink{}
	w.SetArchive(sink)
	d := NewDispatcher()

	out, err := d.Dispatch(ctx, w, Command{Action: ActionNavigate, View: "solicitudes"})
	if err != nil {
		t.Fatalf("navigate returned error: %v", err)
	}
	if out.State.View != ViewSolicitudes || out.State.Total != 5 {
		t.Fatalf("Expected the loaded list, got %+v", out.State)
	}

	out, err = d.Dispatch(ctx, w, Command{Action: ActionViewDetails, ID: "202401151430001"})
	if err != nil {
		t.Fatalf("view-details returned error: %v", err)
	}
	if out.State.View != ViewDetails || out.State.Record == nil || len(out.State.Photos) != 2 {
		t.Fatalf("Unexpected state %+v", out.State)
	}
	if out.State.PhotoTitle != "Documentos - Solicitud #202401151430001" {
		t.Errorf("Unexpected photo title %q", out.State.PhotoTitle)
	}

	out, _ = d.Dispatch(ctx, w, Command{Action: ActionViewPhotos})
	if out.State.View != ViewPhotos {
		t.Errorf("Expected photos view, got %s", out.State.View)
	}
	out, _ = d.Dispatch(ctx, w, Command{Action: ActionBackFromPhotos})
	if out.State.View != ViewDetails {
		t.Errorf("Expected details view, got %s", out.State.View)
	}

	if _, err := d.Dispatch(ctx, w, Command{Action: ActionEdit}); err != nil {
		t.Fatalf("edit returned error: %v", err)
	}
	out, err = d.Dispatch(ctx, w, Command{Action: ActionGeneratePDF})
	if !errors.Is(err, ErrEditing) || gen.calls != 0 {
		t.Fatalf("Expected generation refused while editing, got %v", err)
	}
	if _, err := d.Dispatch(ctx, w, Command{Action: ActionBack}); !errors.Is(err, ErrEditing) {
		t.Errorf("Expected back refused while editing, got %v", err)
	}

	out, err = d.Dispatch(ctx, w, Command{Action: ActionSave, Inputs: map[string]string{"bien": "Terreno"}})
	if err != nil || out.Alert == nil || out.Alert.Message != "Cambios guardados correctamente" {
		t.Fatalf("Unexpected save outcome %+v, %v", out.Alert, err)
	}
	if rec, _ := st.Get(ctx, "202401151430001"); rec.Collateral != "Terreno" {
		t.Errorf("Expected saved collateral, got %q", rec.Collateral)
	}

	out, err = d.Dispatch(ctx, w, Command{Action: ActionGeneratePDF})
	if err != nil {
		t.Fatalf("generate-pdf returned error: %v", err)
	}
	if out.Document == nil || out.Document.Name != "Solicitud_202401151430001.pdf" || out.Document.URL == "" {
		t.Fatalf("Unexpected document %+v", out.Document)
	}
	if out.Alert.Message != "PDF generado exitosamente con imágenes" || len(sink.names) != 1 {
		t.Errorf("Unexpected alert %q or archive %v", out.Alert.Message, sink.names)
	}

	out, err = d.Dispatch(ctx, w, Command{Action: ActionDelete})
	if err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if out.Alert.Message != "Solicitud eliminada exitosamente" || out.State.Record != nil || out.State.Total != 4 {
		t.Errorf("Unexpected delete outcome %+v / %+v", out.Alert, out.State)
	}
	if out.State.View != ViewSolicitudes {
		t.Errorf("Expected the list after delete, got %s", out.State.View)
	}
}

func TestDispatchErrors(t *testing.T) {
	ctx := context.Background()
	w, _, gen := newTestWorkspace()
	d := NewDispatcher()

	tests := []struct {
		name    string
		cmd     Command
		wantErr error
		message string
	}{
		{"unknown action", Command{Action: "explode"}, ErrUnknownAction, ""},
		{"missing record", Command{Action: ActionViewDetails, ID: "404"}, store.ErrNotFound, "Solicitud no encontrada"},
		{"edit without record", Command{Action: ActionEdit}, ErrNoRecord, "No hay datos de solicitud cargados"},
		{"pdf without record", Command{Action: ActionGeneratePDF}, ErrNoRecord, "No hay datos de solicitud para generar el PDF"},
		{"photos without record", Command{Action: ActionViewPhotos}, ErrNoRecord, "No hay datos de solicitud cargados"},
		{"delete missing", Command{Action: ActionDelete, ID: "404"}, store.ErrNotFound, "Solicitud no encontrada"},
		{"cancel outside edit", Command{Action: ActionCancel}, ErrNotEditing, ""},
		{"toggle unknown group", Command{Action: ActionToggleGroup, Group: "X"}, ErrUnknownGroup, ""},
		{"details view without record", Command{Action: ActionNavigate, View: "details"}, ErrNoRecord, "No hay datos de solicitud cargados"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := d.Dispatch(ctx, w, tt.cmd)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if tt.message != "" && (out.Alert == nil || out.Alert.Message != tt.message) {
				t.Errorf("Expected alert %q, got %+v", tt.message, out.Alert)
			}
		})
	}

	_, _ = d.Dispatch(ctx, w, Command{Action: ActionViewDetails, ID: "202402011015002"})
	gen.err = errors.New("surface broke")
	out, err := d.Dispatch(ctx, w, Command{Action: ActionGeneratePDF})
	if err == nil || out.Alert == nil || !strings.HasPrefix(out.Alert.Message, "Error al generar el PDF: ") {
		t.Errorf("Expected generation failure alert, got %+v, %v", out.Alert, err)
	}
	if out.Document != nil {
		t.Error("No document on failure")
	}

	out, err = d.Dispatch(ctx, w, Command{Action: ActionViewPhotos})
	if err != nil || out.Alert == nil || out.Alert.Title != "Sin Fotos" {
		t.Errorf("Expected the no photos notice, got %+v, %v", out.Alert, err)
	}
}

func TestArchiveFailureStillReturnsDocument(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWorkspace()
	w.SetArchive(&fakeSink{err: errors.New("bucket gone")})
	d := NewDispatcher()

	_, _ = d.Dispatch(ctx, w, Command{Action: ActionViewDetails, ID: "202401151430001"})
	out, err := d.Dispatch(ctx, w, Command{Action: ActionGeneratePDF})
	if err != nil || out.Document == nil || out.Document.URL != "" {
		t.Errorf("Expected an unarchived document, got %+v, %v", out.Document, err)
	}
}

func TestDispatcherActions(t *testing.T) {
	if got := len(NewDispatcher().Actions()); got != 12 {
		t.Errorf("Expected 12 actions, got %d", got)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(func() *Workspace {
		w, _, _ := newTestWorkspace()
		return w
	})
	a := reg.Get("u-1")
	if reg.Get("u-1") != a || reg.Get("u-2") == a || reg.Len() != 2 {
		t.Fatal("Registry must keep one workspace per user")
	}
	reg.Drop("u-1")
	if reg.Get("u-1") == a {
		t.Error("Drop did not forget the workspace")
	}
}

func TestNewAlertDefaultTitle(t *testing.T) {
	if a := NewAlert(AlertWarning, "", "x"); a.Title != "Warning" {
		t.Errorf("Expected Warning, got %s", a.Title)
	}
}
