// Package units renders walked distances the way a road sign would: meters
// for short walks, kilometers once past one kilometer.
package units

import (
	"math"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DistanceFormatter formats meters using the number conventions of a locale.
// It is safe for concurrent use.
type DistanceFormatter struct {
	mu      sync.Mutex
	printer *message.Printer
}

// NewDistanceFormatter returns a formatter for tag. An unparsable tag falls
// back to English.
func NewDistanceFormatter(tag string) *DistanceFormatter {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.English
	}
	return &DistanceFormatter{printer: message.NewPrinter(lang)}
}

// Format renders meters as an abbreviated string. Output is non-decreasing
// in magnitude as meters grows:
//
//	0–99 m       whole meters        "45 m"
//	100–999 m    nearest 10 meters   "120 m"
//	1–99.9 km    one decimal         "1.2 km"
//	100 km+      whole kilometers    "1,234 km"
func (f *DistanceFormatter) Format(meters float64) string {
	if meters < 0 || math.IsNaN(meters) {
		meters = 0
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if m := math.Round(meters); m < 100 {
		return f.printer.Sprintf("%d m", int64(m))
	}
	if m := math.Round(meters/10) * 10; m < 1000 {
		return f.printer.Sprintf("%d m", int64(m))
	}

	km := meters / 1000
	if k := math.Round(km*10) / 10; k < 100 {
		return f.printer.Sprintf("%.1f km", k)
	}
	return f.printer.Sprintf("%d km", int64(math.Round(km)))
}
