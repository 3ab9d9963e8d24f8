// Package models defines the domain types for decisionlog.
package models

// Kind identifies a document category. ADR and idea numbers are independent
// namespaces.
type Kind string

const (
	KindADR  Kind = "adr"
	KindIdea Kind = "idea"
)

// Unknown is the value used for a status or date missing from the header.
const Unknown = "알 수 없음"

// Prefix returns the identifier prefix used in headings and references.
func (k Kind) Prefix() string {
	switch k {
	case KindADR:
		return "ADR"
	case KindIdea:
		return "IDEA"
	}
	return ""
}

// Valid reports whether k is a known category.
func (k Kind) Valid() bool {
	return k == KindADR || k == KindIdea
}

// Header holds the fields shared by every document category.
type Header struct {
	Number   string   `json:"number"`
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Date     string   `json:"date"`
	Filename string   `json:"filename"`
	Related  []string `json:"related"`
	Checksum string   `json:"checksum,omitempty"`
}

// ID returns the display identifier, e.g. "ADR-0003".
func (h Header) ID(k Kind) string {
	return k.Prefix() + "-" + h.Number
}

// Document is a parsed ADR or idea. The concrete types are *ADR and *Idea.
type Document interface {
	Kind() Kind
	Meta() Header
}

// ADR is an architecture decision record.
type ADR struct {
	Header
	// Supersedes is the number of the ADR this one replaces, without
	// leading zeros. Empty when absent.
	Supersedes string `json:"supersedes,omitempty"`
}

// Kind implements Document.
func (*ADR) Kind() Kind { return KindADR }

// Meta implements Document.
func (a *ADR) Meta() Header { return a.Header }

// Idea is a lightweight proposal note.
type Idea struct {
	Header
}

// Kind implements Document.
func (*Idea) Kind() Kind { return KindIdea }

// Meta implements Document.
func (i *Idea) Meta() Header { return i.Header }

// FileMetadata is a lightweight representation returned by list operations.
type FileMetadata struct {
	Name string `json:"name"`
}
