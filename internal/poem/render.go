package poem

import (
	"strconv"
	"strings"
)

// DefaultUserName replaces {{userName}} when no name is supplied.
const DefaultUserName = "यार"

// defaultFriendPrefix builds the per-index fallback, e.g. "दोस्त3".
const defaultFriendPrefix = "दोस्त"

// DefaultFriendName returns the fallback used for {{friendNameI}} when fewer
// than i names were supplied. Each index gets a distinct value.
func DefaultFriendName(i int) string {
	return defaultFriendPrefix + strconv.Itoa(i)
}

// Render substitutes placeholders in an already validated template. The text
// is scanned once; substituted values are never scanned again, so a name such
// as "{{friendName2}}" is emitted literally. Tokens outside the vocabulary are
// left as they are.
func Render(text, userName string, friendNames []string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		token := strings.TrimSpace(match[2 : len(match)-2])
		if token == userNameToken {
			if userName == "" {
				return DefaultUserName
			}
			return userName
		}
		if !isKnown(token) {
			return match
		}
		i, _ := friendIndex(token)
		if i <= len(friendNames) && friendNames[i-1] != "" {
			return friendNames[i-1]
		}
		return DefaultFriendName(i)
	})
}

// CleanNames trims each name and drops blank entries, preserving order.
func CleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
