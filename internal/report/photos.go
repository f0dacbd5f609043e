package report

import (
	"math"
	"unicode/utf8"

	"github.com/inkacorp/solicitudes/internal/layout"
	"github.com/inkacorp/solicitudes/internal/record"
	"github.com/inkacorp/solicitudes/internal/render/pdf"
	"github.com/inkacorp/solicitudes/internal/res"
)

// Photo card geometry.
const (
	captionLineHeight = 3.0
	captionGap        = 2.0
	cardPadding       = 10.0
	failedCardHeight  = 20.0
	gridTitleHeight   = 20.0
)

type card struct {
	photo record.Photo
	img   res.Image
	box   layout.Box
}

// photos draws the document grid. Photos are fetched one at a time in
// report order; the unreadable ones are left out.
func (w *writer) photos() error {
	present := w.rec.Photos()
	if len(present) == 0 {
		return nil
	}
	if w.images == nil {
		w.summary.Skipped += len(present)
		return nil
	}

	var cards []card
	for _, p := range present {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		img := w.images.ResolveImage(w.ctx, p.URL)
		if !img.OK() {
			w.summary.Skipped++
			continue
		}
		box := layout.ComputeBox(float64(img.Width), float64(img.Height), w.cfg.MaxImageWidth, w.cfg.MaxImageHeight)
		cards = append(cards, card{photo: p, img: img, box: box})
	}
	if len(cards) == 0 {
		return nil
	}

	columnWidth := (ContentWidth - columnGap) / 2

	// Start on a new page only when not even the title and the tallest card
	// fit here and the grid as a whole would not fit either.
	tallest := 0.0
	for _, c := range cards {
		captionH := math.Ceil(float64(utf8.RuneCountInString(c.photo.Title))/30) * captionLineHeight
		tallest = math.Max(tallest, captionH+c.box.Height+cardPadding)
	}
	estimated := gridTitleHeight + math.Ceil(float64(len(cards))/2)*tallest
	if available := w.cur.Remaining(); available < gridTitleHeight+tallest && estimated > available && !w.cur.AtTop() {
		w.cur.Break()
		if w.cfg.Debug {
			logBreak(titleDocuments, w.cur.Page(), estimated)
		}
	}

	w.band(w.cur.Y(), w.cfg.Theme.Secondary, titleDocuments, 11)
	w.cur.Advance(15)

	flow := w.cur.Columns(Margin, Margin+columnWidth+columnGap)
	for _, c := range cards {
		w.s.SetTextColor(w.cfg.Theme.TextDark)
		w.s.SetFont(pdf.FontBold, 9)
		caption := w.wrap(c.photo.Title, columnWidth)
		captionH := float64(len(caption)) * captionLineHeight

		slot := flow.Place(captionH + c.box.Height + cardPadding)
		for i, line := range caption {
			w.s.Text(slot.X, slot.Y+float64(i)*captionLineHeight, line)
		}

		x := slot.X + (columnWidth-c.box.Width)/2
		y := slot.Y + captionH + captionGap
		if err := w.s.Image(c.photo.Column, c.img.Data, c.img.Type, x, y, c.box.Width, c.box.Height); err != nil {
			w.skipped(c.photo.Column, err)
			w.summary.Skipped++
			flow.Settle(slot, captionH+failedCardHeight)
			continue
		}
		w.summary.Photos++
	}

	w.cur.SetY(flow.Bottom() + 10)
	return nil
}
