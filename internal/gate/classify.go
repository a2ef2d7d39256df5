package gate

import "strings"

// Kind classifies a statement by its leading keyword.
type Kind string

// Statement kinds.
const (
	KindSelect   Kind = "SELECT"
	KindInsert   Kind = "INSERT"
	KindUpdate   Kind = "UPDATE"
	KindDelete   Kind = "DELETE"
	KindDrop     Kind = "DROP"
	KindTruncate Kind = "TRUNCATE"
	KindAlter    Kind = "ALTER"
	KindOther    Kind = "OTHER"
)

// KindFromString parses a kind name, matching the constant spelling.
func KindFromString(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindSelect, KindInsert, KindUpdate, KindDelete, KindDrop, KindTruncate, KindAlter, KindOther:
		return k, true
	}
	return "", false
}

// Mutating reports whether statements of this kind modify data or schema.
func (k Kind) Mutating() bool {
	switch k {
	case KindInsert, KindUpdate, KindDelete, KindDrop, KindTruncate, KindAlter:
		return true
	}
	return false
}

// Classify determines the statement kind from the first keyword, skipping
// leading whitespace and SQL comments.
func Classify(text string) Kind {
	word := firstKeyword(text)
	switch k := Kind(strings.ToUpper(word)); k {
	case KindSelect, KindInsert, KindUpdate, KindDelete, KindDrop, KindTruncate, KindAlter:
		return k
	default:
		return KindOther
	}
}

// firstKeyword returns the first word of the statement after comments.
func firstKeyword(text string) string {
	s := text
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return ""
			}
			s = s[idx+1:]
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return ""
			}
			s = s[idx+2:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == ';' || r == '('
			})
			if end < 0 {
				return s
			}
			return s[:end]
		}
	}
}
