// Package poem implements the placeholder engine behind poem templates:
// extraction, validation, fit analysis, rendering and template selection.
//
// Template text is plain UTF-8 whose only structured content is tokens of the
// form {{ identifier }}. The vocabulary is fixed to {{userName}} and
// {{friendName1}}..{{friendNameN}} with N = MaxFriends.
package poem

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxFriends is the highest supported friendNameN index.
const MaxFriends = 10

const (
	userNameToken     = "userName"
	friendTokenPrefix = "friendName"
)

// placeholderRe matches {{ identifier }} with optional interior whitespace.
// RE2 guarantees linear-time matching, so no hand-written tokenizer is needed.
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Analysis is the result of scanning a template.
type Analysis struct {
	Tokens                 []string `json:"tokens"`
	UnknownTokens          []string `json:"unknownTokens"`
	MaxFriendIndexRequired int      `json:"maxFriendIndexRequired"`
}

// Extract returns the distinct placeholder identifiers referenced by text, in
// order of first occurrence. Unmatched braces are ignored.
func Extract(text string) []string {
	matches := placeholderRe.FindAllStringSubmatch(text, -1)
	tokens := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		tokens = append(tokens, m[1])
	}
	return tokens
}

// friendIndex reports the N of a friendNameN token. Any run of digits is
// accepted so that out-of-range indexes can be reported by the validator.
func friendIndex(token string) (int, bool) {
	digits, ok := strings.CutPrefix(token, friendTokenPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Overflowing index; still a friend token, just absurdly large.
		return int(^uint(0) >> 1), true
	}
	return n, true
}

// isKnown reports whether token belongs to the fixed vocabulary.
func isKnown(token string) bool {
	if token == userNameToken {
		return true
	}
	if !strings.HasPrefix(token, friendTokenPrefix) {
		return false
	}
	for i := 1; i <= MaxFriends; i++ {
		if token == friendTokenPrefix+strconv.Itoa(i) {
			return true
		}
	}
	return false
}

// Analyze scans text and classifies its tokens. It never fails.
func Analyze(text string) Analysis {
	tokens := Extract(text)
	a := Analysis{Tokens: tokens, UnknownTokens: []string{}}
	for _, t := range tokens {
		if !isKnown(t) {
			a.UnknownTokens = append(a.UnknownTokens, t)
		}
		if n, ok := friendIndex(t); ok && n > a.MaxFriendIndexRequired {
			a.MaxFriendIndexRequired = n
		}
	}
	return a
}

// MaxFriendIndex returns the highest N for which {{friendNameN}} appears in
// text, or 0 when there are no friend placeholders.
func MaxFriendIndex(text string) int {
	return Analyze(text).MaxFriendIndexRequired
}

// ValidateAndAnalyze checks text against the placeholder vocabulary. It must
// run before any template write.
func ValidateAndAnalyze(text string) (Analysis, error) {
	a := Analyze(text)
	if len(a.UnknownTokens) > 0 {
		return a, &ValidationError{
			Message:       "unknown placeholders: " + strings.Join(a.UnknownTokens, ", "),
			UnknownTokens: a.UnknownTokens,
		}
	}
	if a.MaxFriendIndexRequired > MaxFriends {
		return a, &ValidationError{
			Message: fmt.Sprintf("supports up to {{%s1}}..{{%s%d}} only", friendTokenPrefix, friendTokenPrefix, MaxFriends),
		}
	}
	return a, nil
}
