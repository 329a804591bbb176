package triggers

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"cerebro/internal/logging"
)

// Kind is the change class a trigger reacts to.
type Kind byte

const (
	KindCreate Kind = 'C'
	KindDelete Kind = 'D'
	KindUpdate Kind = 'U'
)

// ParseKind maps the single-letter file form to a Kind.
func ParseKind(value string) (Kind, bool) {
	switch value {
	case "C":
		return KindCreate, true
	case "D":
		return KindDelete, true
	case "U":
		return KindUpdate, true
	default:
		return 0, false
	}
}

func (k Kind) String() string { return string(rune(k)) }

// Operator compares the observed value against the trigger threshold.
type Operator string

const (
	OperatorNone        Operator = "*"
	OperatorLowerThan   Operator = "<"
	OperatorGreaterThan Operator = ">"
	OperatorDifferent   Operator = "!="
	OperatorEqual       Operator = "=="
)

// Trigger is one loaded rule.
type Trigger struct {
	Kind     Kind
	Path     string
	Operator Operator
	Value    string
	Command  string
	// Source and Line locate the rule for diagnostics.
	Source string
	Line   int

	re *regexp.Regexp
}

// lineFormat is the accepted rule syntax. Lines that do not match are
// skipped with a log entry.
var lineFormat = regexp.MustCompile(`^(C|D|U) ([^ ]+) (\*|<|>|!=|==) (\*|[0-9a-zA-Z]+) (.*)`)

// Load reads every *.triggers file in dir. A missing directory yields an
// empty rule set. Rules with an invalid path pattern are rejected with a
// file and line diagnostic.
func Load(dir string, logger *slog.Logger) ([]Trigger, error) {
	log := logging.NewComponentLogger(logger, "triggers")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read trigger directory: %w", err)
	}

	var triggers []Trigger
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".triggers") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		loaded, err := loadFile(path, log)
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, loaded...)
	}

	log.Info("triggers loaded", logging.Int("count", len(triggers)))
	return triggers, nil
}

func loadFile(path string, log *slog.Logger) ([]Trigger, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trigger file: %w", err)
	}
	defer file.Close()

	var triggers []Trigger
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		captures := lineFormat.FindStringSubmatch(line)
		if captures == nil {
			log.Debug("invalid trigger line skipped",
				logging.String("file", path),
				logging.Int("line", lineNo),
			)
			continue
		}

		kind, _ := ParseKind(captures[1])
		re, err := regexp.Compile(captures[2])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: compile trigger pattern %q: %w", path, lineNo, captures[2], err)
		}

		triggers = append(triggers, Trigger{
			Kind:     kind,
			Path:     captures[2],
			Operator: Operator(captures[3]),
			Value:    captures[4],
			Command:  captures[5],
			Source:   path,
			Line:     lineNo,
			re:       re,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trigger file %s: %w", path, err)
	}
	return triggers, nil
}

// ShouldFire reports whether the trigger applies to one observed change.
// The path is the full entry path, /<module>/<entry>.
func (t *Trigger) ShouldFire(kind Kind, path, oldValue, newValue string) bool {
	if t.Kind != kind {
		return false
	}
	if !t.re.MatchString(path) {
		return false
	}

	switch t.Operator {
	case OperatorEqual:
		return newValue == t.Value
	case OperatorDifferent:
		return newValue != t.Value
	case OperatorLowerThan:
		return crossesBelow(oldValue, newValue, t.Value)
	case OperatorGreaterThan:
		return crossesAbove(oldValue, newValue, t.Value)
	default:
		return true
	}
}

// crossesBelow fires only when the value moves from at-or-above the
// threshold to strictly below it. Non-integer values never fire.
func crossesBelow(oldValue, newValue, threshold string) bool {
	before, oldErr := strconv.ParseInt(oldValue, 10, 64)
	limit, limitErr := strconv.ParseInt(threshold, 10, 64)
	after, newErr := strconv.ParseInt(newValue, 10, 64)
	if oldErr != nil || limitErr != nil || newErr != nil {
		return false
	}
	return before >= limit && after < limit
}

// crossesAbove mirrors crossesBelow for the > operator.
func crossesAbove(oldValue, newValue, threshold string) bool {
	before, oldErr := strconv.ParseInt(oldValue, 10, 64)
	limit, limitErr := strconv.ParseInt(threshold, 10, 64)
	after, newErr := strconv.ParseInt(newValue, 10, 64)
	if oldErr != nil || limitErr != nil || newErr != nil {
		return false
	}
	return before <= limit && after > limit
}
