package input

import "net/url"

// Input is the fully classified form of the command line. The item
// sequence is built once by ParseArgs and must not be mutated afterwards;
// headers, query parameters and the body are derived from it on demand.
type Input struct {
	Method     Method
	URL        *url.URL
	Items      []Item
	Form       bool
	Multipart  bool
	RawBody    []byte
	HasRawBody bool
}

type Method string

// ItemKind discriminates the request item variants. Consumers switch over
// it exhaustively, so adding a kind is a compile-visible change everywhere.
type ItemKind int

const (
	// HeaderItem sets a header ("name:value").
	HeaderItem ItemKind = iota
	// HeaderUnsetItem removes a header, including defaults ("name:").
	HeaderUnsetItem
	// ParamItem appends a URL query parameter ("name==value").
	ParamItem
	// JSONFieldItem is a body field whose value is a JSON literal ("name:=value").
	JSONFieldItem
	// DataFieldItem is a body field with an opaque string value ("name=value").
	DataFieldItem
	// FileFieldItem is a multipart file field ("name@path").
	FileFieldItem
)

// Item is one classified request item. Value holds the raw JSON text for
// JSONFieldItem and the file path for FileFieldItem.
type Item struct {
	Kind  ItemKind
	Name  string
	Value string
}

// Options are the CLI options that affect argument interpretation.
type Options struct {
	JSON          bool
	Form          bool
	Multipart     bool
	ReadStdin     bool
	DefaultScheme string
}
