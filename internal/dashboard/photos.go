package dashboard

import (
	"github.com/inkacorp/solicitudes/internal/record"
)

// PhotoViewer lists the document photos of the loaded record.
type PhotoViewer struct {
	id     string
	photos []record.Photo
}

// Show loads the photos of rec.
func (p *PhotoViewer) Show(rec record.Record) {
	p.id = rec.ID
	p.photos = rec.Photos()
}

// Clear empties the viewer.
func (p *PhotoViewer) Clear() {
	p.id = ""
	p.photos = nil
}

// Photos returns the present photos in report order.
func (p *PhotoViewer) Photos() []record.Photo {
	return append([]record.Photo(nil), p.photos...)
}

func (p *PhotoViewer) Empty() bool { return len(p.photos) == 0 }

// Title is the viewer heading.
func (p *PhotoViewer) Title() string {
	id := p.id
	if id == "" {
		id = "N/A"
	}
	return "Documentos - Solicitud #" + id
}
