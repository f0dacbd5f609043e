package record

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidIdentifier is returned for identifiers that do not start with a
// yyyyMMddHHmm timestamp.
var ErrInvalidIdentifier = errors.New("invalid solicitud identifier")

// InvalidDate is shown when the identifier cannot be read as a date.
const InvalidDate = "Fecha no válida"

var monthsLong = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var monthsShort = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

var digits = regexp.MustCompile(`^[0-9]+$`)

// ParseIdentifier reads the creation time encoded at the start of an
// identifier (yyyyMMddHHmmss...). Identifiers shorter than 14 characters are
// rejected; only the minute-precision prefix is read.
func ParseIdentifier(id string) (time.Time, error) {
	if len(id) < 14 || !digits.MatchString(id[:12]) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return parseDigits(id[:12])
}

// parseDateOnly reads yyyyMMdd from the first 8 characters.
func parseDateOnly(id string) (time.Time, error) {
	if len(id) < 8 || !digits.MatchString(id[:8]) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return parseDigits(id[:8] + "0000")
}

func parseDigits(s string) (time.Time, error) {
	n := func(from, to int) int {
		v, _ := strconv.Atoi(s[from:to])
		return v
	}
	year, month, day := n(0, 4), n(4, 6), n(6, 8)
	hour, minute := n(8, 10), n(10, 12)
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: %q out of range", ErrInvalidIdentifier, s)
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), nil
}

// DayPart names the part of the day for an hour.
func DayPart(hour int) string {
	switch {
	case hour >= 18 || hour < 6:
		return "de la noche"
	case hour < 12:
		return "de la mañana"
	case hour < 13:
		return "del día"
	default:
		return "de la tarde"
	}
}

// FormatRequestDate renders the identifier as
// "15 de enero de 2024 a las 14 y 30 de la tarde".
func FormatRequestDate(id string) string {
	t, err := ParseIdentifier(id)
	if err != nil {
		return InvalidDate
	}
	return fmt.Sprintf("%s a las %02d y %02d %s", LongDate(t), t.Hour(), t.Minute(), DayPart(t.Hour()))
}

// LongDate renders "15 de enero de 2024".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsLong[t.Month()-1], t.Year())
}

// ShortDate renders "15 ene 2024".
func ShortDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthsShort[t.Month()-1], t.Year())
}

// SignatureDate renders "15 de enero de 2024, 14:30:05".
func SignatureDate(t time.Time) string {
	return fmt.Sprintf("%s, %s", LongDate(t), t.Format("15:04:05"))
}

// GeneratedAt renders the footer timestamp "15/1/2024 a las 14:30:05".
func GeneratedAt(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d a las %s", t.Day(), int(t.Month()), t.Year(), t.Format("15:04:05"))
}

var listDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ListDate picks the first parseable date among created_at, fechasolicitud,
// fecha and updated_at, then the identifier, and renders it as ShortDate.
func (r Record) ListDate() string {
	for _, col := range []string{"created_at", "fechasolicitud", "fecha", "updated_at"} {
		v := r.Value(col)
		if v == "" {
			continue
		}
		for _, layout := range listDateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return ShortDate(t)
			}
		}
	}
	if t, err := parseDateOnly(r.ID); err == nil {
		return ShortDate(t)
	}
	return "N/A"
}

// FormatAmount renders an amount as "$1,500"; fractions are rounded to at
// most three digits. The digits come from the decimal itself, so large
// amounts print exactly.
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(3)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	frac := strings.TrimPrefix(d.Sub(whole).String(), "0")
	return "$" + sign + groupThousands(whole.String()) + frac
}

// groupThousands inserts commas every three digits of an unsigned integer.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// UpperName is the name used in the disclaimer and the signature.
func UpperName(name string) string {
	return cases.Upper(language.Spanish).String(strings.TrimSpace(name))
}
