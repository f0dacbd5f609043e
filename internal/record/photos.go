package record

// PhotoField is a document photo column and its caption.
type PhotoField struct {
	Column string
	Title  string
}

// PhotoFields lists the document photos in report order.
var PhotoFields = []PhotoField{
	{Column: "fotoidentidad", Title: "Foto de Identidad"},
	{Column: "fotoconid", Title: "Foto con ID"},
	{Column: "fotodireccion", Title: "Foto de Dirección"},
	{Column: "fotofirma", Title: "Foto de Firma"},
	{Column: "fotoidentidadconyuge", Title: "Foto ID Cónyuge"},
	{Column: "fotofirmaconyuge", Title: "Foto Firma Cónyuge"},
	{Column: "fotoidentidadreferencia", Title: "Foto ID Referencia"},
	{Column: "fotobien", Title: "Foto del Bien"},
}

// Photo is a present document photo.
type Photo struct {
	Column string `json:"key"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// Photos returns the record's photos in report order, skipping missing ones.
func (r Record) Photos() []Photo {
	var out []Photo
	for _, p := range PhotoFields {
		if u, ok := r.PhotoURLs[p.Column]; ok && u != "" {
			out = append(out, Photo{Column: p.Column, Title: p.Title, URL: u})
		}
	}
	return out
}

// IsPhotoColumn reports whether column holds a document photo.
func IsPhotoColumn(column string) bool {
	for _, p := range PhotoFields {
		if p.Column == column {
			return true
		}
	}
	return false
}
