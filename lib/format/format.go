/*package format handles eclio's miniature formatting languages for report
steps and output files, e.g:

   Steps = 0..100 - 63
   Output = "dump/{%04d,step}/PRESSURE.txt"

Sequence formats are a generic way to specify non-contiguous sequences of
natural numbers. They consist of a series of n tokens separated by "+" or "-".
Each token can be either a number or two numbers separted by "..". E.g.:

  100
  0..100
  0..10 + 100
  0..100 - 63 - 10..20

These strings build up sequences of numbers by adding/removing individual
numbers and contiguous sequences. For example, 1, 2, 3, 15, 16, 17 could be
written as 1..17 - 4..14. This is useful for skipping report steps.

File format strings are a combination of fixed text and variables. Variables
are written as {verb,rule}. "verb" is a printf() verb (e.g. %03d) and "rule"
names the value the variable takes. The only rule is "step", the report step
being written.

All spaces around "-", "+", and "," symbols are ignored.
*/
package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// Any expanded formats which would have more than BigNumber elements are
	// assumed to be bugs.
	BigNumber = 1<<20
)

// ExpandSequenceFormat expands a sequence format string into a sorted sequence
// of integers.
func ExpandSequenceFormat(format string) ([]int, error) {
	tok, err := tokeniseSequenceFormat(format)
	if err != nil { return nil, err }
	adds, subs, err := addsSubsSequenceFormat(tok)
	if err != nil { return nil, err }

	m := map[int]bool{ }
	for i := range adds {
		for _, n := range parseSequenceFormatToken(adds[i]) {
			if m[n] {
				return nil, fmt.Errorf("The number %d is added more than once.", n)
			}
			m[n] = true
			if len(m) > BigNumber {
				return nil, fmt.Errorf("This sequence has more than %d " +
					"elements, which is almost certainly a bug.", BigNumber)
			}
		}
	}

	for i := range subs {
		for _, n := range parseSequenceFormatToken(subs[i]) {
			if !m[n] {
				return nil, fmt.Errorf("The number %d is removed more times " +
					"than it was added.", n)
			}
			delete(m, n)
		}
	}

	out := []int{ }
	for n := range m { out = append(out, n) }
	sort.Ints(out)
	return out, nil
}

// tokeniseSequenceFormat splits a sequence format into numbers, ranges and
// operators.
func tokeniseSequenceFormat(format string) ([]string, error) {
	clean := strings.ReplaceAll(format, "+", " + ")
	clean = strings.ReplaceAll(clean, "-", " - ")

	tok := strings.Fields(clean)
	if len(tok) == 0 {
		return nil, fmt.Errorf("The format string is empty.")
	}
	return tok, nil
}

func addsSubsSequenceFormat(tok []string) (adds, subs []string, err error) {
	if len(tok) == 0 {
		return nil, nil, fmt.Errorf("Format string is empty")
	}

	// The leading "+" may be dropped.
	adds, subs = []string{}, []string{}
	start := 0
	if tok[0] != "+" && tok[0] != "-" {
		if err := isSequenceFormatToken(tok[0]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				1, tok[0], err.Error(),
			)
		}
		adds = append(adds, tok[0])
		start = 1
	}

	for i := start; i < len(tok); i += 2 {
		if tok[i] != "-" && tok[i] != "+" {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', should be a '-' or '+', but isn't.",
				i+1, tok[i])
		} else if i + 1 >= len(tok) {
			return nil, nil, fmt.Errorf(
				"The format string ends in a trailing '%s'", tok[i],
			)
		} else if err := isSequenceFormatToken(tok[i+1]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				i+2, tok[i+1], err.Error(),
			)
		}

		if tok[i] == "+" {
			adds = append(adds, tok[i+1])
		} else {
			subs = append(subs, tok[i+1])
		}
	}

	return adds, subs, nil
}

// isSequenceFormatToken returns a nil error is tok is a valid token for
// a sequence format and an error describing the problem otherwise. The error
// message assumes it is printed after a trailing "because"
func isSequenceFormatToken(tok string) error {
	if len(tok) == 0 {
		return fmt.Errorf("the token is empty.")
	}

	bounds := strings.Split(tok, "..")
	switch len(bounds) {
	case 1:
		if _, err := strconv.Atoi(bounds[0]); err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		return nil
	case 2:
		start, err := strconv.Atoi(bounds[0])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		end, err := strconv.Atoi(bounds[1])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[1])
		}
		if end < start {
			return fmt.Errorf("lower bound %d is larger than upper bound %d.",
				start, end)
		}
		return nil
	}
	return fmt.Errorf("it has more than one '..'.")
}

// parseSequenceFormatToken parses a single token that has already passed
// isSequenceFormatToken.
func parseSequenceFormatToken(tok string) []int {
	bounds := strings.Split(tok, "..")
	start, _ := strconv.Atoi(bounds[0])
	end := start
	if len(bounds) == 2 { end, _ = strconv.Atoi(bounds[1]) }

	out := make([]int, 0, end - start + 1)
	for n := start; n <= end; n++ { out = append(out, n) }
	return out
}

// startsEndsFormatString returns the indices of the '{' and one past the '}'
// of each variable in a file format.
func startsEndsFormatString(format string) (starts, ends []int, err error) {
	starts, ends = []int{ }, []int{ }
	nested := 0
	ending := "Make sure variables in file formats are enclosed in matching " +
		"{ ... } pairs."

	for i := range format {
		switch format[i] {
		case '{':
			nested++
			starts = append(starts, i)
		case '}':
			nested--
			ends = append(ends, i+1)
		}

		if nested > 1 {
			return nil, nil, fmt.Errorf("The file format '%s' has nested '{' " +
				"characters at index %d. " + ending, format, i)
		} else if nested < 0 {
			return nil, nil, fmt.Errorf("The file format '%s' has a '}' at " +
				"index %d that doesn't come after a '{'. " + ending, format, i)
		}
	}

	if nested != 0 {
		return nil, nil, fmt.Errorf("The file format '%s' has a '{' at index " +
			"%d without a matching '}'. " + ending, format, starts[len(starts)-1])
	}
	return starts, ends, nil
}

// FileFormat is a parsed file format string.
type FileFormat struct {
	format string
	separators []string
	verbs []string
}

// ParseFileFormat parses a file format string.
func ParseFileFormat(format string) (*FileFormat, error) {
	starts, ends, err := startsEndsFormatString(format)
	if err != nil { return nil, err }

	ff := &FileFormat{ format: format }
	prev := 0
	for i := range starts {
		ff.separators = append(ff.separators, format[prev: starts[i]])
		prev = ends[i]

		v := format[starts[i] + 1: ends[i] - 1]
		tok := strings.Split(v, ",")
		if len(tok) != 2 {
			return nil, fmt.Errorf("The file format '%s' has an invalid " +
				"variable, '{%s}'. Variables should contain a formatting verb " +
				"(e.g. '%%d', '%%03d'), a comma, and the rule 'step'.", format, v)
		}
		verb, rule := strings.TrimSpace(tok[0]), strings.TrimSpace(tok[1])
		if rule != "step" {
			return nil, fmt.Errorf("The file format '%s' has a variable with " +
				"the rule '%s', but the only rule is 'step'.", format, rule)
		} else if !strings.HasPrefix(verb, "%") || !strings.HasSuffix(verb, "d") {
			return nil, fmt.Errorf("The file format '%s' has a variable with " +
				"the verb '%s', which isn't an integer verb like '%%d'.",
				format, verb)
		}
		ff.verbs = append(ff.verbs, verb)
	}
	ff.separators = append(ff.separators, format[prev:])

	return ff, nil
}

// HasVariables returns true if the format has any variables.
func (ff *FileFormat) HasVariables() bool { return len(ff.verbs) > 0 }

// Expand returns the file name for a report step.
func (ff *FileFormat) Expand(step int) string {
	sb := &strings.Builder{ }
	for i := range ff.verbs {
		sb.WriteString(ff.separators[i])
		fmt.Fprintf(sb, ff.verbs[i], step)
	}
	sb.WriteString(ff.separators[len(ff.separators) - 1])
	return sb.String()
}
