package dashboard

import (
	"github.com/inkacorp/solicitudes/internal/record"
)

// Row is one line of the list.
type Row struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NationalID string `json:"cedula"`
	Amount     string `json:"monto"`
	Status     string `json:"estado"`
	Date       string `json:"fecha"`
}

// Group is the list section for one status.
type Group struct {
	Status   string `json:"status"`
	Count    int    `json:"count"`
	Expanded bool   `json:"expanded"`
	Rows     []Row  `json:"rows"`
}

// ListView groups records by status.
type ListView struct {
	mapping StatusMapping
	groups  []Group
	loaded  bool
}

// NewListView creates an empty list using mapping.
func NewListView(mapping StatusMapping) *ListView {
	return &ListView{mapping: mapping}
}

// Load replaces the list content. records are expected newest first and keep
// that order within each group.
func (l *ListView) Load(records []record.Record) {
	index := make(map[string]int)
	var groups []Group
	for _, g := range l.mapping.GroupOrder {
		key := string(record.Status(g).Normalize())
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = len(groups)
		groups = append(groups, Group{Status: key, Expanded: l.mapping.expanded(key)})
	}

	for _, rec := range records {
		key := rec.Status.Display()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Status: key, Expanded: l.mapping.expanded(key)})
		}
		groups[i].Rows = append(groups[i].Rows, newRow(rec))
	}

	l.groups = l.groups[:0]
	for _, g := range groups {
		if len(g.Rows) == 0 {
			continue
		}
		g.Count = len(g.Rows)
		l.groups = append(l.groups, g)
	}
	l.loaded = true
}

func newRow(rec record.Record) Row {
	amount := record.NotSpecified
	if rec.Amount.Valid {
		amount = record.FormatAmount(rec.Amount.Decimal)
	}
	id := rec.ID
	if id == "" {
		id = "N/A"
	}
	return Row{
		ID:         id,
		Name:       orNotSpecified(rec.Name),
		NationalID: orNotSpecified(rec.NationalID),
		Amount:     amount,
		Status:     rec.Status.Display(),
		Date:       rec.ListDate(),
	}
}

func orNotSpecified(v string) string {
	if v == "" {
		return record.NotSpecified
	}
	return v
}

// Groups returns the non-empty groups in display order.
func (l *ListView) Groups() []Group {
	out := make([]Group, len(l.groups))
	copy(out, l.groups)
	return out
}

// Loaded reports whether Load ran at least once.
func (l *ListView) Loaded() bool { return l.loaded }

// Total is the number of listed records.
func (l *ListView) Total() int {
	n := 0
	for _, g := range l.groups {
		n += g.Count
	}
	return n
}

// Toggle flips the expanded state of a group and reports whether it exists.
func (l *ListView) Toggle(status string) bool {
	key := string(record.Status(status).Normalize())
	for i := range l.groups {
		if l.groups[i].Status == key {
			l.groups[i].Expanded = !l.groups[i].Expanded
			return true
		}
	}
	return false
}
