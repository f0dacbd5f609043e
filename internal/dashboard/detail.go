package dashboard

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/inkacorp/solicitudes/internal/record"
)

// Mode is the state of the detail view.
type Mode string

const (
	Viewing Mode = "viewing"
	Editing Mode = "editing"
)

// FieldType is the input kind of an editable field.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldSelect FieldType = "select"
	FieldTel    FieldType = "tel"
	FieldNumber FieldType = "number"
)

// EditableField describes one input of the edit form.
type EditableField struct {
	Section string         `json:"section"`
	Label   string         `json:"label"`
	Column  string         `json:"field"`
	Type    FieldType      `json:"type"`
	Options []StatusOption `json:"options,omitempty"`
}

var maritalStatuses = []StatusOption{
	{Value: "Soltero", Label: "Soltero"},
	{Value: "Casado", Label: "Casado"},
	{Value: "Divorciado", Label: "Divorciado"},
	{Value: "Viudo", Label: "Viudo"},
	{Value: "Unión Libre", Label: "Unión Libre"},
}

// EditableFields returns the edit form. The request date and the documents
// are never editable.
func EditableFields(mapping StatusMapping) []EditableField {
	return []EditableField{
		{Section: "personal", Label: "Nombre Completo", Column: record.ColumnName, Type: FieldText},
		{Section: "personal", Label: "Cédula", Column: record.ColumnNationalID, Type: FieldText},
		{Section: "personal", Label: "Estado Civil", Column: record.ColumnMaritalStatus, Type: FieldSelect, Options: maritalStatuses},
		{Section: "personal", Label: "Dirección", Column: record.ColumnAddress, Type: FieldText},
		{Section: "personal", Label: "País de Residencia", Column: record.ColumnCountry, Type: FieldText},
		{Section: "personal", Label: "WhatsApp", Column: record.ColumnPhone, Type: FieldTel},

		{Section: "familiar", Label: "Nombre del Cónyuge", Column: record.ColumnSpouseName, Type: FieldText},
		{Section: "familiar", Label: "País Residencia Cónyuge", Column: record.ColumnSpouseCountry, Type: FieldText},
		{Section: "familiar", Label: "WhatsApp Cónyuge", Column: record.ColumnSpousePhone, Type: FieldTel},
		{Section: "familiar", Label: "Nombre de Referencia", Column: record.ColumnReferenceName, Type: FieldText},
		{Section: "familiar", Label: "WhatsApp Referencia", Column: record.ColumnReferencePhone, Type: FieldNumber},

		{Section: "credito", Label: "Monto Solicitado", Column: record.ColumnAmount, Type: FieldNumber},
		{Section: "credito", Label: "Bien como Garantía", Column: record.ColumnCollateral, Type: FieldText},
		{Section: "credito", Label: "Estado de la Solicitud", Column: record.ColumnStatus, Type: FieldSelect, Options: mapping.EditOptions},
	}
}

var (
	nonDigits     = regexp.MustCompile(`[^\d]`)
	nonPhoneChars = regexp.MustCompile(`[^\d+]`)
	numberNoise   = regexp.MustCompile(`[$,\s]`)
	phoneColumns  = map[string]bool{record.ColumnPhone: true, record.ColumnSpousePhone: true}
)

// Coerce turns raw form inputs into column values. Inputs for columns not in
// fields are ignored; blank or invalid values are dropped.
func Coerce(fields []EditableField, inputs map[string]string) map[string]any {
	types := make(map[string]FieldType, len(fields))
	for _, f := range fields {
		types[f.Column] = f.Type
	}

	out := make(map[string]any)
	for column, raw := range inputs {
		typ, ok := types[column]
		if !ok {
			continue
		}
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}

		switch {
		case column == record.ColumnReferencePhone:
			n, err := strconv.ParseInt(nonDigits.ReplaceAllString(value, ""), 10, 64)
			if err != nil || n <= 0 {
				log.Warn().Str("field", column).Str("value", value).Msg("invalid whatsapp number dropped")
				continue
			}
			out[column] = n
		case column == record.ColumnAmount:
			n, ok := leadingInt(numberNoise.ReplaceAllString(value, ""))
			if !ok || n <= 0 {
				log.Warn().Str("field", column).Str("value", value).Msg("invalid amount dropped")
				continue
			}
			out[column] = n
		case phoneColumns[column]:
			if v := nonPhoneChars.ReplaceAllString(value, ""); v != "" {
				out[column] = v
			}
		case typ == FieldNumber:
			f, err := strconv.ParseFloat(numberNoise.ReplaceAllString(value, ""), 64)
			if err != nil {
				continue
			}
			out[column] = f
		default:
			out[column] = value
		}
	}
	return out
}

// leadingInt parses the integer part of a decimal string, so "1500.75" is 1500.
func leadingInt(s string) (int64, bool) {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// Updater persists edits.
type Updater interface {
	Update(ctx context.Context, id string, fields map[string]any) error
}

// DetailView is the record being inspected, with an optional edit draft.
type DetailView struct {
	fields []EditableField
	rec    *record.Record
	mode   Mode
	draft  map[string]string
}

// NewDetailView creates an empty detail view.
func NewDetailView(mapping StatusMapping) *DetailView {
	return &DetailView{fields: EditableFields(mapping), mode: Viewing}
}

// Show loads rec in viewing mode, discarding any draft.
func (d *DetailView) Show(rec record.Record) {
	d.rec = &rec
	d.mode = Viewing
	d.draft = nil
}

// Clear unloads the record.
func (d *DetailView) Clear() {
	d.rec = nil
	d.mode = Viewing
	d.draft = nil
}

// Record returns the loaded record.
func (d *DetailView) Record() (record.Record, bool) {
	if d.rec == nil {
		return record.Record{}, false
	}
	return *d.rec, true
}

func (d *DetailView) Mode() Mode               { return d.mode }
func (d *DetailView) Fields() []EditableField  { return d.fields }
func (d *DetailView) Draft() map[string]string { return d.draft }

// Edit enters edit mode with a draft seeded from the record.
func (d *DetailView) Edit() error {
	if d.rec == nil {
		return ErrNoRecord
	}
	if d.mode == Editing {
		return nil
	}
	d.draft = make(map[string]string, len(d.fields))
	for _, f := range d.fields {
		v := d.rec.Value(f.Column)
		if f.Type == FieldNumber {
			v = numberNoise.ReplaceAllString(v, "")
		}
		d.draft[f.Column] = v
	}
	d.mode = Editing
	return nil
}

// Cancel drops the draft and returns to viewing.
func (d *DetailView) Cancel() error {
	if d.mode != Editing {
		return ErrNotEditing
	}
	d.draft = nil
	d.mode = Viewing
	return nil
}

// Save applies inputs to the draft, coerces the whole draft, writes it
// through u and merges it into the record. changed is false when nothing
// survived coercion; the view then stays in edit mode.
func (d *DetailView) Save(ctx context.Context, u Updater, inputs map[string]string) (changed bool, err error) {
	if d.rec == nil {
		return false, ErrNoRecord
	}
	if d.mode != Editing {
		return false, ErrNotEditing
	}
	for k, v := range inputs {
		d.draft[k] = v
	}

	fields := Coerce(d.fields, d.draft)
	if len(fields) == 0 {
		return false, nil
	}
	if err := u.Update(ctx, d.rec.ID, fields); err != nil {
		return false, fmt.Errorf("failed to update %s: %w", d.rec.ID, err)
	}

	merged := d.rec.Merge(fields)
	d.rec = &merged
	d.draft = nil
	d.mode = Viewing
	return true, nil
}
