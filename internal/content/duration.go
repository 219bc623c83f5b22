package content

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxDurationSeconds bounds accepted durations to something a radio episode could be
const maxDurationSeconds = 7 * 24 * 60 * 60

var (
	errDurationInvalid  = errors.New("duration must be a number of seconds or a length like \"30 minutes\" or \"1:30:00\"")
	errDurationNegative = errors.New("duration must not be negative")
	errDurationTooLong  = errors.New("duration must be at most 7 days")

	clockPattern  = regexp.MustCompile(`^\d+(:\d{1,2}){1,2}$`)
	phraseToken   = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-z]+)`)
	phraseJoiners = strings.NewReplacer(",", " ", " and ", " ")
)

var unitSeconds = map[string]float64{
	"h": 3600, "hr": 3600, "hrs": 3600, "hour": 3600, "hours": 3600,
	"m": 60, "min": 60, "mins": 60, "minute": 60, "minutes": 60,
	"s": 1, "sec": 1, "secs": 1, "second": 1, "seconds": 1,
}

// Duration is a podcast length as clients send it: a JSON number of seconds,
// or text such as "1800", "30 minutes", "30:00", "1h30m".
type Duration string

func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Duration(s)
		return nil
	}
	*d = Duration(strings.TrimSpace(string(b)))
	return nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	*d = Duration(b)
	return nil
}

// Seconds normalizes the value to whole seconds
func (d Duration) Seconds() (int, error) {
	return ParseDuration(string(d))
}

// ParseDuration converts a duration to whole seconds. Negative or
// unparseable values are rejected, never clamped.
func ParseDuration(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, errDurationInvalid
	}
	if strings.HasPrefix(s, "-") {
		return 0, errDurationNegative
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSeconds(n)
	}

	if clockPattern.MatchString(s) {
		return parseClock(s)
	}

	if d, err := time.ParseDuration(s); err == nil {
		return fromSeconds(d.Seconds())
	}

	return parsePhrase(s)
}

func fromSeconds(n float64) (int, error) {
	switch {
	case math.IsNaN(n) || math.IsInf(n, 0):
		return 0, errDurationInvalid
	case n < 0:
		return 0, errDurationNegative
	case n > maxDurationSeconds:
		return 0, errDurationTooLong
	}
	return int(math.Round(n)), nil
}

// parseClock handles m:ss and h:mm:ss
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, errDurationInvalid
		}
		if i > 0 && n >= 60 {
			return 0, errDurationInvalid
		}
		total = total*60 + n
	}
	return fromSeconds(float64(total))
}

// parsePhrase handles "30 minutes", "1 hour 15 mins", "1h, 20m and 5s"
func parsePhrase(s string) (int, error) {
	rest := strings.TrimSpace(phraseJoiners.Replace(" " + s + " "))
	var total float64
	matched := false

	for rest != "" {
		m := phraseToken.FindStringSubmatch(rest)
		if m == nil {
			return 0, errDurationInvalid
		}
		unit, ok := unitSeconds[m[2]]
		if !ok {
			return 0, errDurationInvalid
		}
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, errDurationInvalid
		}
		total += n * unit
		matched = true
		rest = strings.TrimSpace(rest[len(m[0]):])
	}

	if !matched {
		return 0, errDurationInvalid
	}
	return fromSeconds(total)
}
