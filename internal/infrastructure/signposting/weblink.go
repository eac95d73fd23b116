package signposting

import (
	"strings"
)

// Target attributes defined by RFC 8288
const (
	ParamRel      = "rel"
	ParamRev      = "rev"
	ParamAnchor   = "anchor"
	ParamType     = "type"
	ParamTitle    = "title"
	ParamTitleExt = "title*"
	ParamHreflang = "hreflang"
	ParamMedia    = "media"
)

// Relation types used for FAIR signposting
const (
	RelCiteAs      = "cite-as"
	RelDescribedBy = "describedby"
	RelLicense     = "license"
	RelItem        = "item"
	RelType        = "type"
	RelAuthor      = "author"
)

var standardParams = map[string]bool{
	ParamRel: true, ParamRev: true, ParamAnchor: true, ParamType: true,
	ParamTitle: true, ParamTitleExt: true, ParamHreflang: true, ParamMedia: true,
}

// Param is a link parameter; HasValue is false for bare names
type Param struct {
	Name     string
	Value    string
	HasValue bool
}

// WebLink is a link target with its parameters in header order
type WebLink struct {
	Reference string
	Params    []Param
}

// NewWebLink creates a link with a single relation type
func NewWebLink(reference, rel string) WebLink {
	return WebLink{Reference: reference, Params: []Param{{Name: ParamRel, Value: rel, HasValue: true}}}
}

// With returns a copy of the link with an additional parameter
func (l WebLink) With(name, value string) WebLink {
	params := append(append([]Param(nil), l.Params...), Param{Name: strings.ToLower(name), Value: value, HasValue: true})
	return WebLink{Reference: l.Reference, Params: params}
}

func (l WebLink) first(name string) (string, bool) {
	for _, p := range l.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Rel returns the relation types, split on whitespace
func (l WebLink) Rel() []string {
	v, _ := l.first(ParamRel)
	return strings.Fields(v)
}

// Rev returns the reverse relation types, split on whitespace
func (l WebLink) Rev() []string {
	v, _ := l.first(ParamRev)
	return strings.Fields(v)
}

// HasRel reports whether the link carries the relation type
func (l WebLink) HasRel(rel string) bool {
	for _, r := range l.Rel() {
		if strings.EqualFold(r, rel) {
			return true
		}
	}
	return false
}

// Anchor returns the anchor parameter
func (l WebLink) Anchor() (string, bool) {
	return l.first(ParamAnchor)
}

// Type returns the media type hint
func (l WebLink) Type() (string, bool) {
	return l.first(ParamType)
}

// Title returns the title parameter
func (l WebLink) Title() (string, bool) {
	return l.first(ParamTitle)
}

// ExtensionAttributes returns the parameters not defined by RFC 8288
func (l WebLink) ExtensionAttributes() []Param {
	var ext []Param
	for _, p := range l.Params {
		if !standardParams[p.Name] {
			ext = append(ext, p)
		}
	}
	return ext
}

// String renders the link as a single Link header link-value
func (l WebLink) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(l.Reference)
	sb.WriteByte('>')
	for _, p := range l.Params {
		sb.WriteString("; ")
		sb.WriteString(p.Name)
		if p.HasValue {
			sb.WriteString(`="`)
			sb.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(p.Value))
			sb.WriteByte('"')
		}
	}
	return sb.String()
}

// Format renders links as a Link header value
func Format(links ...WebLink) string {
	parts := make([]string, len(links))
	for i, l := range links {
		parts[i] = l.String()
	}
	return strings.Join(parts, ", ")
}
