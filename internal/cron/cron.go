package cron

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// searchHorizonYears bounds Next. Eight years always contains a Feb 29,
// including across a non-leap century year such as 2100.
const searchHorizonYears = 8

// Schedule is a parsed cron expression. The zero value matches nothing;
// use Parse to build one.
type Schedule struct {
	expression  string
	minutes     bitset
	hours       bitset
	daysOfMonth bitset
	months      bitset
	daysOfWeek  bitset

	// Standard cron ORs the two day fields when both are restricted.
	domRestricted bool
	dowRestricted bool
}

// bitset is a set of small integers 0-63.
type bitset uint64

func (b bitset) has(v int) bool { return b&(1<<uint(v)) != 0 }
func (b *bitset) set(v int)     { *b |= 1 << uint(v) }

type fieldSpec struct {
	name     string
	min, max int
	names    map[string]int
}

var (
	monthNames = map[string]int{
		"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
		"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
	}
	dayNames = map[string]int{
		"SUN": 0, "MON": 1, "TUE": 2, "WED": 3, "THU": 4, "FRI": 5, "SAT": 6,
	}

	fieldSpecs = [5]fieldSpec{
		{name: "minute", min: 0, max: 59},
		{name: "hour", min: 0, max: 23},
		{name: "day-of-month", min: 1, max: 31},
		{name: "month", min: 1, max: 12, names: monthNames},
		{name: "day-of-week", min: 0, max: 7, names: dayNames},
	}

	macros = map[string]string{
		"@yearly":   "0 0 1 1 *",
		"@annually": "0 0 1 1 *",
		"@monthly":  "0 0 1 * *",
		"@weekly":   "0 0 * * 0",
		"@daily":    "0 0 * * *",
		"@midnight": "0 0 * * *",
		"@hourly":   "0 * * * *",
	}
)

// Parse parses a 5-field cron expression or macro. Errors are *RuleError
// values matching ErrMalformedRule.
func Parse(expression string) (Schedule, error) {
	text := strings.TrimSpace(expression)
	if strings.HasPrefix(text, "@") {
		expanded, ok := macros[strings.ToLower(text)]
		if !ok {
			return Schedule{}, malformed(expression, "expression", "unknown macro %q", text)
		}
		text = expanded
	}

	fields := strings.Fields(text)
	if len(fields) != len(fieldSpecs) {
		return Schedule{}, malformed(expression, "expression", "expected %d fields, got %d", len(fieldSpecs), len(fields))
	}

	var sets [5]bitset
	for i, spec := range fieldSpecs {
		set, err := parseField(fields[i], spec)
		if err != nil {
			return Schedule{}, malformed(expression, spec.name, "%s", err.Error())
		}
		sets[i] = set
	}

	// 7 is an alias for Sunday.
	if sets[4].has(7) {
		sets[4].set(0)
		sets[4] &^= 1 << 7
	}

	return Schedule{
		expression:    expression,
		minutes:       sets[0],
		hours:         sets[1],
		daysOfMonth:   sets[2],
		months:        sets[3],
		daysOfWeek:    sets[4],
		domRestricted: !strings.HasPrefix(fields[2], "*"),
		dowRestricted: !strings.HasPrefix(fields[4], "*"),
	}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level rules known to be valid.
func MustParse(expression string) Schedule {
	s, err := Parse(expression)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the expression the schedule was parsed from.
func (s Schedule) String() string {
	return s.expression
}

// Next returns the earliest whole minute strictly after t that matches the
// schedule, in UTC. It fails with a *RuleError matching ErrUnsatisfiable
// when nothing matches within the search horizon.
func (s Schedule) Next(t time.Time) (time.Time, error) {
	t = t.UTC().Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(searchHorizonYears, 0, 0)

	for t.Before(limit) {
		if !s.months.has(int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
			continue
		}
		if !s.dayMatches(t) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
			continue
		}
		if !s.hours.has(t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, time.UTC)
			continue
		}
		if !s.minutes.has(t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}
		return t, nil
	}

	return time.Time{}, &RuleError{
		Expression: s.expression,
		Message:    "no matching time within " + strconv.Itoa(searchHorizonYears) + " years",
		kind:       ErrUnsatisfiable,
	}
}

func (s Schedule) dayMatches(t time.Time) bool {
	dom := s.daysOfMonth.has(t.Day())
	dow := s.daysOfWeek.has(int(t.Weekday()))
	if s.domRestricted && s.dowRestricted {
		return dom || dow
	}
	return dom && dow
}

// parseField parses a comma-separated list of terms.
func parseField(text string, spec fieldSpec) (bitset, error) {
	var result bitset
	for _, term := range strings.Split(text, ",") {
		bits, err := parseTerm(term, spec)
		if err != nil {
			return 0, err
		}
		result |= bits
	}
	return result, nil
}

// parseTerm parses one of: *, */N, V, V/N, V-V, V-V/N.
func parseTerm(term string, spec fieldSpec) (bitset, error) {
	if term == "" {
		return 0, fmt.Errorf("empty term")
	}

	rangeText, stepText, hasStep := strings.Cut(term, "/")
	step := 1
	if hasStep {
		n, err := strconv.Atoi(stepText)
		if err != nil {
			return 0, fmt.Errorf("invalid step %q", stepText)
		}
		if n <= 0 {
			return 0, fmt.Errorf("step must be positive, got %d", n)
		}
		if n > spec.max-spec.min {
			return 0, fmt.Errorf("step %d exceeds field span %d", n, spec.max-spec.min)
		}
		step = n
	}

	var lo, hi int
	switch {
	case rangeText == "*":
		lo, hi = spec.min, spec.max
		if spec.name == "day-of-week" {
			hi = 6
		}
	case strings.Contains(rangeText, "-"):
		loText, hiText, _ := strings.Cut(rangeText, "-")
		var err error
		if lo, err = parseValue(loText, spec); err != nil {
			return 0, err
		}
		if hi, err = parseValue(hiText, spec); err != nil {
			return 0, err
		}
		if lo > hi {
			return 0, fmt.Errorf("range start %d > end %d", lo, hi)
		}
	default:
		v, err := parseValue(rangeText, spec)
		if err != nil {
			return 0, err
		}
		lo, hi = v, v
		if hasStep {
			hi = spec.max
		}
	}

	if lo < spec.min || hi > spec.max {
		return 0, fmt.Errorf("value out of range [%d-%d]: got %d-%d", spec.min, spec.max, lo, hi)
	}

	var result bitset
	for v := lo; v <= hi; v += step {
		result.set(v)
	}
	return result, nil
}

func parseValue(text string, spec fieldSpec) (int, error) {
	if v, ok := spec.names[strings.ToUpper(text)]; ok {
		return v, nil
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", text)
	}
	return v, nil
}

