package ocrtext

import (
	"regexp"
	"strings"
)

const streetTypes = `(KRA|CRA|CR|CARRERA|CL|CALLE|AV|AVENIDA)`

// OCR usually reads "#" as "4" or drops it.
var addressFixes = []struct {
	rx   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(streetTypes + `\s*([0-9]+[A-Z]?)\s+4\s+([0-9]+-\d+)`), "${1} ${2} # ${3}"},
	{regexp.MustCompile(streetTypes + `\s*([0-9]+)\s+4([0-9])-(\d+)`), "${1} ${2} # ${3}-${4}"},
	{regexp.MustCompile(streetTypes + `\s*([0-9]+[A-Z]?)#([0-9]+)`), "${1} ${2} # ${3}"},
	{regexp.MustCompile(streetTypes + `\s*([0-9]+[A-Z]?)\s+([0-9]+-\d+)`), "${1} ${2} # ${3}"},
}

var multiSpaceRx = regexp.MustCompile(`\s{2,}`)

// FixAddress upper-cases a Colombian street address and restores the "#"
// between street and house number.
func FixAddress(address string) string {
	if address == "" {
		return address
	}

	a := strings.ToUpper(strings.TrimSpace(address))
	a = strings.ReplaceAll(a, "＃", "#")

	for _, f := range addressFixes {
		a = f.rx.ReplaceAllString(a, f.repl)
	}

	return strings.TrimSpace(multiSpaceRx.ReplaceAllString(a, " "))
}

// WithCity appends the city suffix unless the address already names the
// suffix's city.
func WithCity(address, suffix string) string {
	if suffix == "" {
		return address
	}

	parts := strings.Split(suffix, ",")
	city := strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		city = strings.TrimSpace(parts[1])
	}

	if city != "" && strings.Contains(strings.ToLower(address), strings.ToLower(city)) {
		return address
	}

	return address + ", " + suffix
}
