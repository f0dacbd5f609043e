package report

import (
	"fmt"
	"strings"

	"github.com/inkacorp/solicitudes/internal/record"
	"github.com/inkacorp/solicitudes/internal/render/pdf"
)

// Section titles.
const (
	titlePersonal   = "DATOS PERSONALES"
	titleFamily     = "INFORMACIÓN FAMILIAR Y REFERENCIAS"
	titleCredit     = "INFORMACIÓN DEL CRÉDITO"
	titleDocuments  = "DOCUMENTOS ADJUNTOS"
	titleDisclaimer = "DESCARGO DE RESPONSABILIDAD Y AUTORIZACIÓN"
	titleSignature  = "FIRMA ELECTRÓNICA"
	reportTitle     = "SOLICITUD DE CRÉDITO"
	missingName     = "[NOMBRE NO ESPECIFICADO]"
)

// Row geometry.
const (
	lineHeight  = 4.0
	blankHeight = 3.0
	rowPadding  = 2.0
	labelOffset = 2.0
	valueOffset = 55.0
	valueInset  = 60.0
)

func (w *writer) header() error {
	t := w.cfg.Theme
	w.s.SetFillColor(t.Primary)
	w.s.Rect(0, 0, w.cfg.Page.PageWidth, headerHeight, "F")

	if !w.logo() {
		w.s.SetFillColor(pdf.White)
		w.s.Rect(15, 10, 25, 20, "F")
		w.s.SetTextColor(t.Primary)
		w.s.SetFont(pdf.FontBold, 8)
		w.s.Text(16, 18, w.cfg.Company)
		w.s.Text(24, 25, "LOGO")
	}

	w.s.SetTextColor(pdf.White)
	w.s.SetFont(pdf.FontBold, 18)
	w.s.Text(55, 20, reportTitle)
	w.s.SetFont(pdf.FontRegular, 12)
	w.s.Text(55, 30, "Solicitud #"+w.rec.ID)

	w.s.SetDrawColor(t.Contrast2)
	w.s.SetLineWidth(2)
	w.s.Line(Margin, 45, w.cfg.Page.PageWidth-Margin, 45)
	w.s.SetLineWidth(0.2)
	return nil
}

// logo draws the configured logo on a white tile and reports success.
func (w *writer) logo() bool {
	if w.cfg.LogoURL == "" || w.images == nil {
		return false
	}
	img := w.images.ResolveLogo(w.ctx, w.cfg.LogoURL)
	if !img.OK() {
		return false
	}
	w.s.SetFillColor(pdf.White)
	w.s.Rect(15, 8, 25, 25, "F")
	if err := w.s.Image("logo", img.Data, img.Type, 15, 8, 25, 25); err != nil {
		w.skipped("logo", err)
		return false
	}
	return true
}

// disclaimerLines returns the authorisation text; empty strings are
// paragraph gaps.
func disclaimerLines(name, company, termsURL string) []string {
	return []string{
		fmt.Sprintf("Yo, %s, por medio del presente documento autorizo expresamente a %s a:", name, company),
		"",
		"• Tomar esta solicitud como una autorización formal para la revisión y verificación de mis datos personales.",
		"• Realizar consultas en centrales de riesgo, buró de crédito y demás entidades financieras para evaluar mi historial crediticio.",
		"• Verificar la información laboral, referencias personales y familiares proporcionadas en esta solicitud.",
		"• Procesar y almacenar mis datos personales conforme a las políticas de privacidad vigentes.",
		"",
		"DECLARO BAJO LA GRAVEDAD DEL JURAMENTO que toda la información proporcionada en esta solicitud es VERAZ, COMPLETA Y ACTUALIZADA. Asumo total responsabilidad por cualquier inexactitud u omisión en los datos suministrados.",
		"",
		"Entiendo que cualquier falsedad en la información puede ser causal de rechazo inmediato de mi solicitud o terminación del contrato de crédito si ya ha sido aprobado.",
		"",
		"NOTA: Todos los términos y condiciones fueron compartidos con el solicitante al momento de llenar la solicitud en " + termsURL,
		"",
		"Esta autorización se otorga de manera libre, voluntaria e informada.",
	}
}

func (w *writer) disclaimer() error {
	name := record.UpperName(w.rec.DisplayName(missingName))
	width := ContentWidth - 4

	w.s.SetFont(pdf.FontRegular, 9)
	var lines []string
	height := 12.0
	for _, paragraph := range disclaimerLines(name, w.cfg.Company, w.cfg.TermsURL) {
		if paragraph == "" {
			lines = append(lines, "")
			height += blankHeight
			continue
		}
		wrapped := w.wrap(paragraph, width)
		lines = append(lines, wrapped...)
		height += float64(len(wrapped)) * lineHeight
	}
	height += 10

	w.ensure("disclaimer", height)
	w.band(w.cur.Y(), w.cfg.Theme.Tertiary, titleDisclaimer, 10)
	w.cur.Advance(12)

	w.s.SetTextColor(w.cfg.Theme.TextDark)
	w.s.SetFont(pdf.FontRegular, 9)
	for _, line := range lines {
		if line == "" {
			w.cur.Advance(blankHeight)
			continue
		}
		w.s.Text(Margin+2, w.cur.Y(), line)
		w.cur.Advance(lineHeight)
	}
	w.cur.Advance(10)
	return nil
}

// section draws a titled label/value table. Empty values produce no row and
// the whole section moves to a new page when it does not fit.
func (w *writer) section(title string, fields []record.Field) error {
	type row struct {
		label string
		lines []string
	}

	w.s.SetFont(pdf.FontRegular, 9)
	var rows []row
	height := 12.0
	for _, f := range fields {
		if record.IsEmpty(f.Value) {
			continue
		}
		lines := w.wrap(strings.TrimSpace(f.Value), ContentWidth-valueInset)
		rows = append(rows, row{label: f.Label, lines: lines})
		height += float64(len(lines))*lineHeight + rowPadding
	}
	height += 10

	w.ensure(title, height)
	w.band(w.cur.Y(), w.cfg.Theme.Secondary, title, 11)
	w.cur.Advance(12)

	w.s.SetTextColor(w.cfg.Theme.TextDark)
	for i, r := range rows {
		y := w.cur.Y()
		if i%2 == 0 {
			w.s.SetFillColor(w.cfg.Theme.LightGray)
			w.s.Rect(Margin, y-2, ContentWidth, 6, "F")
		}
		w.s.SetFont(pdf.FontBold, 9)
		w.s.Text(Margin+labelOffset, y+2, r.label+":")
		w.s.SetFont(pdf.FontRegular, 9)
		for j, line := range r.lines {
			w.s.Text(Margin+valueOffset, y+2+float64(j)*lineHeight, line)
		}
		w.cur.Advance(float64(len(r.lines))*lineHeight + rowPadding)
	}
	w.cur.Advance(5)
	return nil
}

// ensure moves to a new page when a block of height h does not fit.
func (w *writer) ensure(block string, h float64) {
	if w.cur.Ensure(h) && w.cfg.Debug {
		logBreak(block, w.cur.Page(), h)
	}
}
