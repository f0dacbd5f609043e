package report

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/inkacorp/solicitudes/internal/record"
	"github.com/inkacorp/solicitudes/internal/render/pdf"
)

const (
	signatureHeight = 40.0
	qrSize          = 25.0
	signedBy        = "FIRMADO ELECTRÓNICAMENTE POR:"
)

var errNoEncoder = errors.New("no qr encoder configured")

// SignaturePayload is the text encoded in the signature code.
func SignaturePayload(name, date string) string {
	return fmt.Sprintf("FIRMADO ELECTRONICAMENTE POR:\n%s\n%s", name, date)
}

// signature closes the report on its last page with the signature code.
func (w *writer) signature() error {
	w.s.SetPage(w.s.PageCount())
	w.ensure(titleSignature, signatureHeight)

	name := record.UpperName(w.rec.DisplayName(missingName))
	date := record.SignatureDate(w.now)

	w.band(w.cur.Y(), w.cfg.Theme.Contrast1, titleSignature, 11)
	w.cur.Advance(15)

	if err := w.signatureCode(name, date); err != nil {
		log.Warn().Err(err).Str("solicitud", w.rec.ID).Msg("signature code unavailable")

		w.s.SetTextColor(w.cfg.Theme.TextDark)
		w.s.SetFont(pdf.FontBold, 10)
		text := fmt.Sprintf("%s %s - %s", signedBy, name, date)
		for _, line := range w.wrap(text, ContentWidth) {
			w.centered(w.cur.Y(), line)
			w.cur.Advance(5)
		}
	}
	return nil
}

func (w *writer) signatureCode(name, date string) error {
	if w.qr == nil {
		return errNoEncoder
	}
	png, err := w.qr.Encode(SignaturePayload(name, date))
	if err != nil {
		return err
	}
	x := (w.cfg.Page.PageWidth - qrSize) / 2
	if err := w.s.Image("signature", png, pdf.ImagePNG, x, w.cur.Y(), qrSize, qrSize); err != nil {
		return err
	}
	w.cur.Advance(qrSize + 5)

	w.s.SetTextColor(w.cfg.Theme.TextDark)
	w.s.SetFont(pdf.FontBold, 9)
	for _, line := range []string{signedBy, name, date} {
		w.centered(w.cur.Y(), line)
		w.cur.Advance(4)
	}
	return nil
}

// footer stamps every page once the page count is known.
func (w *writer) footer() error {
	total := w.s.PageCount()
	top := w.cfg.Page.PageHeight - footerHeight
	stamp := "Generado el: " + record.GeneratedAt(w.now)
	company := w.cfg.Company + " - " + w.cfg.SystemName

	for i := 1; i <= total; i++ {
		w.s.SetPage(i)
		w.s.SetFillColor(w.cfg.Theme.Tertiary)
		w.s.Rect(0, top, w.cfg.Page.PageWidth, footerHeight, "F")
		w.s.SetTextColor(pdf.White)
		w.s.SetFont(pdf.FontRegular, 8)
		w.s.Text(Margin, top+8, company)
		w.s.Text(Margin, top+15, stamp)
		w.s.Text(w.cfg.Page.PageWidth-Margin-20, top+8, fmt.Sprintf("Página %d de %d", i, total))
	}
	return nil
}

func (w *writer) skipped(what string, err error) {
	log.Warn().Err(err).Str("solicitud", w.rec.ID).Str("image", what).Msg("image not drawn")
}

func logBreak(block string, page int, height float64) {
	log.Debug().Str("block", block).Int("page", page).Float64("height", height).Msg("page break")
}
