package record

import "strings"

// Status is the free-form application state stored in the "estado" column.
type Status string

// Known status values.
const (
	StatusPending            Status = "PENDIENTE"
	StatusInProcess          Status = "EN PROCESO"
	StatusApproved           Status = "APROBADO"
	StatusRejected           Status = "RECHAZADO"
	StatusVoided             Status = "ANULADA"
	StatusPlaced             Status = "COLOCADA"
	StatusInReview           Status = "EN REVISIÓN"
	StatusInReviewUnaccented Status = "EN REVISION"
)

// Normalize upper-cases and trims the status for comparisons.
func (s Status) Normalize() Status {
	return Status(strings.ToUpper(strings.TrimSpace(string(s))))
}

// Display is the normalized status, PENDIENTE when missing.
func (s Status) Display() string {
	n := s.Normalize()
	if n == "" {
		return string(StatusPending)
	}
	return string(n)
}

// Equal compares two statuses case-insensitively.
func (s Status) Equal(o Status) bool {
	return s.Normalize() == o.Normalize()
}
