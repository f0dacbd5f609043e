// Package record holds the credit application model and the formatting rules
// used by the list, the detail view and the PDF report.
package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Storage column names.
const (
	ColumnID             = "solicitudid"
	ColumnName           = "nombresocio"
	ColumnNationalID     = "cedulasocio"
	ColumnMaritalStatus  = "estadocivil"
	ColumnAddress        = "direccionsocio"
	ColumnCountry        = "paisresidencia"
	ColumnPhone          = "whatsappsocio"
	ColumnSpouseName     = "nombreconyuge"
	ColumnSpouseCountry  = "paisresidenciaconyuge"
	ColumnSpousePhone    = "whatsappconyuge"
	ColumnReferenceName  = "nombrereferencia"
	ColumnReferencePhone = "whatsappreferencia"
	ColumnAmount         = "monto"
	ColumnCollateral     = "bien"
	ColumnStatus         = "estado"
)

// NotSpecified is the placeholder shown for missing values. It never reaches
// the PDF as a value.
const NotSpecified = "No especificado"

// Record is one credit application.
type Record struct {
	ID            string
	Name          string
	NationalID    string
	MaritalStatus string
	Address       string
	Country       string
	Phone         string

	SpouseName     string
	SpouseCountry  string
	SpousePhone    string
	ReferenceName  string
	ReferencePhone string

	Amount     decimal.NullDecimal
	Collateral string
	Status     Status

	// PhotoURLs maps photo columns to their URL; only non-empty entries are kept.
	PhotoURLs map[string]string

	// Raw is the row as returned by the store.
	Raw map[string]any
}

// Field is a labelled value rendered as one row.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FromMap builds a Record from a raw store row.
func FromMap(raw map[string]any) Record {
	r := Record{
		ID:             stringValue(raw[ColumnID]),
		Name:           stringValue(raw[ColumnName]),
		NationalID:     stringValue(raw[ColumnNationalID]),
		MaritalStatus:  stringValue(raw[ColumnMaritalStatus]),
		Address:        stringValue(raw[ColumnAddress]),
		Country:        stringValue(raw[ColumnCountry]),
		Phone:          stringValue(raw[ColumnPhone]),
		SpouseName:     stringValue(raw[ColumnSpouseName]),
		SpouseCountry:  stringValue(raw[ColumnSpouseCountry]),
		SpousePhone:    stringValue(raw[ColumnSpousePhone]),
		ReferenceName:  stringValue(raw[ColumnReferenceName]),
		ReferencePhone: stringValue(raw[ColumnReferencePhone]),
		Amount:         decimalValue(raw[ColumnAmount]),
		Collateral:     stringValue(raw[ColumnCollateral]),
		Status:         Status(stringValue(raw[ColumnStatus])),
		PhotoURLs:      make(map[string]string),
		Raw:            make(map[string]any, len(raw)),
	}
	for k, v := range raw {
		r.Raw[k] = v
	}
	for _, p := range PhotoFields {
		if u := stringValue(raw[p.Column]); u != "" {
			r.PhotoURLs[p.Column] = u
		}
	}
	return r
}

// Merge returns a copy of r with fields applied on top of its raw row.
func (r Record) Merge(fields map[string]any) Record {
	raw := make(map[string]any, len(r.Raw)+len(fields))
	for k, v := range r.Raw {
		raw[k] = v
	}
	for k, v := range fields {
		raw[k] = v
	}
	return FromMap(raw)
}

// Value returns the display string of any column.
func (r Record) Value(column string) string {
	return stringValue(r.Raw[column])
}

// Columns lists the raw columns in sorted order.
func (r Record) Columns() []string {
	cols := make([]string, 0, len(r.Raw))
	for k := range r.Raw {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// PersonalFields is the "DATOS PERSONALES" section.
func (r Record) PersonalFields() []Field {
	return []Field{
		{Label: "Nombre Completo", Value: r.Name},
		{Label: "Cédula", Value: r.NationalID},
		{Label: "Estado Civil", Value: r.MaritalStatus},
		{Label: "Dirección", Value: r.Address},
		{Label: "País de Residencia", Value: r.Country},
		{Label: "WhatsApp", Value: r.Phone},
	}
}

// FamilyFields is the "INFORMACIÓN FAMILIAR Y REFERENCIAS" section.
func (r Record) FamilyFields() []Field {
	return []Field{
		{Label: "Nombre del Cónyuge", Value: r.SpouseName},
		{Label: "País Residencia Cónyuge", Value: r.SpouseCountry},
		{Label: "WhatsApp Cónyuge", Value: r.SpousePhone},
		{Label: "Nombre de Referencia", Value: r.ReferenceName},
		{Label: "WhatsApp Referencia", Value: r.ReferencePhone},
	}
}

// CreditFields is the "INFORMACIÓN DEL CRÉDITO" section.
func (r Record) CreditFields() []Field {
	amount := ""
	if r.Amount.Valid {
		amount = FormatAmount(r.Amount.Decimal)
	}
	return []Field{
		{Label: "Fecha de Solicitud", Value: FormatRequestDate(r.ID)},
		{Label: "Monto Solicitado", Value: amount},
		{Label: "Bien como Garantía", Value: r.Collateral},
		{Label: "Estado de la Solicitud", Value: r.Status.Display()},
	}
}

// DisplayName is the applicant name or the given fallback.
func (r Record) DisplayName(fallback string) string {
	if n := strings.TrimSpace(r.Name); n != "" {
		return n
	}
	return fallback
}

// IsEmpty reports whether a value should be treated as missing.
func IsEmpty(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == NotSpecified
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case decimal.Decimal:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func decimalValue(v any) decimal.NullDecimal {
	switch t := v.(type) {
	case nil:
		return decimal.NullDecimal{}
	case decimal.Decimal:
		return decimal.NewNullDecimal(t)
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(t))
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(t)))
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(t))
	}
	s := stringValue(v)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
