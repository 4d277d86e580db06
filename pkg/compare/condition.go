package compare

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/pipoke/pkg/errors"
)

// conditionFactory builds a predicate from a condition argument.
type conditionFactory struct {
	needsArg bool
	help     string
	build    func(arg string) (Predicate, error)
}

var conditions = map[string]conditionFactory{
	"prefix": {true, "starts with ARG", func(arg string) (Predicate, error) {
		return func(s string) bool { return strings.HasPrefix(s, arg) }, nil
	}},
	"suffix": {true, "ends with ARG", func(arg string) (Predicate, error) {
		return func(s string) bool { return strings.HasSuffix(s, arg) }, nil
	}},
	"contains": {true, "contains ARG anywhere", func(arg string) (Predicate, error) {
		return func(s string) bool { return strings.Contains(s, arg) }, nil
	}},
	"equals": {true, "is exactly ARG", func(arg string) (Predicate, error) {
		return func(s string) bool { return s == arg }, nil
	}},
	"minlen": {true, "has at least ARG characters", lengthCondition(func(n, limit int) bool { return n >= limit })},
	"maxlen": {true, "has at most ARG characters", lengthCondition(func(n, limit int) bool { return n <= limit })},
	"alpha": {false, "consists of letters only", func(string) (Predicate, error) {
		return func(s string) bool {
			if s == "" {
				return false
			}
			for _, r := range s {
				if !unicode.IsLetter(r) {
					return false
				}
			}
			return true
		}, nil
	}},
}

func lengthCondition(cmp func(n, limit int) bool) func(string) (Predicate, error) {
	return func(arg string) (Predicate, error) {
		limit, err := strconv.Atoi(arg)
		if err != nil || limit < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "length must be a non-negative integer, got %q", arg)
		}
		return func(s string) bool { return cmp(utf8.RuneCountInString(s), limit) }, nil
	}
}

// Condition looks up a named literal condition and binds its argument.
// Conditions that take no argument ignore arg.
func Condition(name, arg string) (Predicate, error) {
	f, ok := conditions[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown condition %q (available: %s)",
			name, strings.Join(ConditionNames(), ", "))
	}
	if f.needsArg && arg == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "condition %q requires an argument", name)
	}
	return f.build(arg)
}

// ConditionNames lists the registered condition names in sorted order.
func ConditionNames() []string {
	names := make([]string, 0, len(conditions))
	for n := range conditions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ConditionHelp returns a one-line description of a named condition.
func ConditionHelp(name string) string {
	return conditions[name].help
}
