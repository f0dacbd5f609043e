package dashboard

import (
	"github.com/inkacorp/solicitudes/internal/record"
)

// StatusOption is one choice of the status select in edit mode.
type StatusOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// StatusMapping ties the list grouping to the status values the editor offers.
type StatusMapping struct {
	// GroupOrder is the order of the list groups. Statuses not listed are
	// appended in first-seen order.
	GroupOrder []string `yaml:"group_order"`
	// Expanded lists the groups open when the list loads.
	Expanded []string `yaml:"expanded"`
	// EditOptions are the values the status select offers.
	EditOptions []StatusOption `yaml:"edit_options"`
}

// DefaultStatusMapping is the grouping used by the back office.
func DefaultStatusMapping() StatusMapping {
	return StatusMapping{
		GroupOrder: []string{
			string(record.StatusPending),
			string(record.StatusPlaced),
			string(record.StatusApproved),
			string(record.StatusInReview),
			string(record.StatusRejected),
		},
		Expanded: []string{string(record.StatusPending)},
		EditOptions: []StatusOption{
			{Value: string(record.StatusPending), Label: string(record.StatusPending)},
			{Value: string(record.StatusApproved), Label: string(record.StatusApproved)},
			{Value: string(record.StatusRejected), Label: string(record.StatusRejected)},
			{Value: string(record.StatusPlaced), Label: string(record.StatusPlaced)},
			{Value: string(record.StatusInReviewUnaccented), Label: string(record.StatusInReview)},
			{Value: string(record.StatusVoided), Label: string(record.StatusVoided)},
		},
	}
}

// Inconsistencies lists edit values that no group in GroupOrder matches.
// Records saved with them land in trailing groups.
func (m StatusMapping) Inconsistencies() []string {
	var out []string
	for _, opt := range m.EditOptions {
		if !m.grouped(record.Status(opt.Value)) {
			out = append(out, opt.Value)
		}
	}
	return out
}

func (m StatusMapping) grouped(s record.Status) bool {
	for _, g := range m.GroupOrder {
		if record.Status(g).Equal(s) {
			return true
		}
	}
	return false
}

func (m StatusMapping) expanded(group string) bool {
	for _, g := range m.Expanded {
		if record.Status(g).Equal(record.Status(group)) {
			return true
		}
	}
	return false
}

// ValidStatus reports whether v is one of the edit options.
func (m StatusMapping) ValidStatus(v string) bool {
	for _, opt := range m.EditOptions {
		if opt.Value == v {
			return true
		}
	}
	return false
}
