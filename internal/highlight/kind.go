package highlight

// Kind classifies a span.
type Kind int

const (
	KindHeader Kind = iota
	KindBold
	KindItalic
	KindCode
	KindLink
	KindGrammarError
)

// SyntaxKinds are the kinds produced from the Markdown source.
var SyntaxKinds = []Kind{KindHeader, KindBold, KindItalic, KindCode, KindLink}

var kindNames = map[Kind]string{
	KindHeader:       "header",
	KindBold:         "bold",
	KindItalic:       "italic",
	KindCode:         "code",
	KindLink:         "link",
	KindGrammarError: "grammarError",
}

// String returns the kind name used in configuration files.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind returns the kind with the given name.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Span marks the rune range [Start, End) with a kind.
type Span struct {
	Kind  Kind
	Start int
	End   int
}
