package parser

// Kind classifies source units and the mentions found in them.
type Kind string

const (
	KindStyle  Kind = "style"
	KindMarkup Kind = "markup"
	KindScript Kind = "script"
)

// Unit is one source file handed to the parser. Language may be left empty,
// in which case it is detected from the path.
type Unit struct {
	Path     string
	Language string
	Source   []byte
}

// Mention is one syntactic occurrence of a feature-like construct.
//
// Style mentions carry the property in Name and the declared value text in
// Value. Markup mentions carry the lower-cased tag, script mentions the
// candidate identifier chain.
type Mention struct {
	Kind  Kind
	Name  string
	Value string
	// Line is 1-based; 0 means unknown.
	Line int
}

// Candidate is an API-like identifier found in script text.
type Candidate struct {
	Text string
	Line int
}
