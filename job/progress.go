package job

import (
	"regexp"
	"strconv"
	"strings"
)

// progressLine matches progress-bar output such as "42% |####   | 42/100".
var progressLine = regexp.MustCompile(`^\s*(?P<percentage>\d+)%\s*\|.+?\|\s*(?P<current>\d+)/(?P<total>\d+)`)

// Progress is a reading derived from log output. It is never persisted.
type Progress struct {
	// Fraction is the percentage normalized to 0.0–1.0.
	Fraction float64
	Current  int
	Total    int
}

// ParseProgress scans logs from the last line backwards and returns the
// first progress line found. Later lines win over earlier ones.
func ParseProgress(logs string) (Progress, bool) {
	if logs == "" {
		return Progress{}, false
	}

	lines := strings.Split(logs, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		m := progressLine.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		pct, pctErr := strconv.Atoi(m[1])
		cur, curErr := strconv.Atoi(m[2])
		tot, totErr := strconv.Atoi(m[3])
		if pctErr != nil || curErr != nil || totErr != nil {
			// Digit runs too long for int.
			continue
		}
		return Progress{
			Fraction: float64(pct) / 100.0,
			Current:  cur,
			Total:    tot,
		}, true
	}
	return Progress{}, false
}
