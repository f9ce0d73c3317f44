package exchange

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/hx-cli/hx/input"
	"github.com/pkg/errors"
)

var (
	// ErrFileFieldInJSONBody is returned when a file field appears while
	// the body is JSON encoded.
	ErrFileFieldInJSONBody = errors.New("sending files is not supported when the request body is JSON (use --form)")
	// ErrJSONFieldInFormBody is returned when a raw JSON field appears
	// while --form is active.
	ErrJSONFieldInFormBody = errors.New("JSON request items cannot be used with --form")
)

type BodyType int

const (
	EmptyBody BodyType = iota
	JSONBody
	FormBody
	MultipartBody
	RawBody
)

// Pair is a name/value field with list semantics: duplicates are kept in
// the order they were classified.
type Pair struct {
	Name  string
	Value string
}

// JSONMember is one member of a JSON object body. Value is the member's
// raw JSON encoding, so nested structure and formatting survive intact.
type JSONMember struct {
	Name  string
	Value json.RawMessage
}

// Body is the assembled request body variant.
type Body struct {
	Type        BodyType
	JSONMembers []JSONMember // JSONBody: insertion order, duplicate names overwrite in place
	FormFields  []Pair       // FormBody: duplicates preserved
	TextParts   []Pair       // MultipartBody: text parts, in classified order
	FileParts   []Pair       // MultipartBody: file parts, after all text parts
	Raw         []byte       // RawBody
}

// AssembleBody derives the body variant from the classified items. It
// only inspects body-contributing item kinds; headers and parameters are
// handled elsewhere.
func AssembleBody(in *input.Input) (*Body, error) {
	if in.HasRawBody {
		return &Body{Type: RawBody, Raw: in.RawBody}, nil
	}
	if in.Form || in.Multipart {
		return assembleFormBody(in)
	}
	return assembleJSONBody(in)
}

func assembleJSONBody(in *input.Input) (*Body, error) {
	body := Body{Type: JSONBody}
	for _, item := range in.Items {
		switch item.Kind {
		case input.JSONFieldItem:
			raw := json.RawMessage(bytes.TrimSpace([]byte(item.Value)))
			body.setJSONMember(item.Name, raw)
		case input.DataFieldItem:
			// Data field values stay opaque strings; no type inference.
			raw, err := json.Marshal(item.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "encoding value of '%s'", item.Name)
			}
			body.setJSONMember(item.Name, raw)
		case input.FileFieldItem:
			return nil, errors.WithStack(ErrFileFieldInJSONBody)
		case input.HeaderItem, input.HeaderUnsetItem, input.ParamItem:
			// not body-contributing
		}
	}
	if len(body.JSONMembers) == 0 {
		return &Body{Type: EmptyBody}, nil
	}
	return &body, nil
}

func assembleFormBody(in *input.Input) (*Body, error) {
	var texts []Pair
	var files []Pair
	for _, item := range in.Items {
		switch item.Kind {
		case input.JSONFieldItem:
			return nil, errors.WithStack(ErrJSONFieldInFormBody)
		case input.DataFieldItem:
			texts = append(texts, Pair{Name: item.Name, Value: item.Value})
		case input.FileFieldItem:
			files = append(files, Pair{Name: item.Name, Value: item.Value})
		case input.HeaderItem, input.HeaderUnsetItem, input.ParamItem:
			// not body-contributing
		}
	}
	switch {
	case len(texts) == 0 && len(files) == 0:
		return &Body{Type: EmptyBody}, nil
	case len(files) > 0 || in.Multipart:
		return &Body{Type: MultipartBody, TextParts: texts, FileParts: files}, nil
	default:
		return &Body{Type: FormBody, FormFields: texts}, nil
	}
}

// setJSONMember applies mapping semantics: the last occurrence of a name
// wins, keeping the position of the first.
func (b *Body) setJSONMember(name string, value json.RawMessage) {
	for i := range b.JSONMembers {
		if b.JSONMembers[i].Name == name {
			b.JSONMembers[i].Value = value
			return
		}
	}
	b.JSONMembers = append(b.JSONMembers, JSONMember{Name: name, Value: value})
}

type bodyTuple struct {
	body          []byte
	contentLength int64
	contentType   string
}

func encodeBody(body *Body) (bodyTuple, error) {
	switch body.Type {
	case EmptyBody:
		return bodyTuple{}, nil
	case JSONBody:
		return encodeJSONBody(body)
	case FormBody:
		return encodeFormBody(body)
	case MultipartBody:
		return encodeMultipartBody(body)
	case RawBody:
		return bodyTuple{
			body:          body.Raw,
			contentLength: int64(len(body.Raw)),
			contentType:   "application/json",
		}, nil
	default:
		return bodyTuple{}, errors.Errorf("unknown body type: %v", body.Type)
	}
}

// encodeJSONBody writes the object by hand because encoding/json sorts
// map keys, and member order must match the command line.
func encodeJSONBody(body *Body) (bodyTuple, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, member := range body.JSONMembers {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(member.Name)
		if err != nil {
			return bodyTuple{}, errors.Wrap(err, "marshaling JSON of HTTP body")
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(member.Value)
	}
	buf.WriteByte('}')
	return bodyTuple{
		body:          buf.Bytes(),
		contentLength: int64(buf.Len()),
		contentType:   "application/json",
	}, nil
}

// encodeFormBody keeps the classified field order; url.Values.Encode
// would sort by name.
func encodeFormBody(body *Body) (bodyTuple, error) {
	var buf strings.Builder
	for i, field := range body.FormFields {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(url.QueryEscape(field.Name))
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(field.Value))
	}
	encoded := buf.String()
	return bodyTuple{
		body:          []byte(encoded),
		contentLength: int64(len(encoded)),
		contentType:   "application/x-www-form-urlencoded; charset=utf-8",
	}, nil
}

func encodeMultipartBody(body *Body) (bodyTuple, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, field := range body.TextParts {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return bodyTuple{}, errors.Wrapf(err, "writing field '%s'", field.Name)
		}
	}
	for _, field := range body.FileParts {
		if err := writeFilePart(writer, field.Name, field.Value); err != nil {
			return bodyTuple{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return bodyTuple{}, errors.Wrap(err, "finalizing multipart body")
	}
	return bodyTuple{
		body:          buf.Bytes(),
		contentLength: int64(buf.Len()),
		contentType:   writer.FormDataContentType(),
	}, nil
}

func writeFilePart(writer *multipart.Writer, name, path string) error {
	part, err := writer.CreateFormFile(name, filepath.Base(path))
	if err != nil {
		return errors.Wrapf(err, "creating file part '%s'", name)
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading file of field '%s'", name)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "writing file part '%s'", name)
	}
	return nil
}
