package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
)

type PrettyPrinter struct {
	writer        io.Writer
	plain         Printer
	aurora        aurora.Aurora
	headerPalette *HeaderPalette
	jsonPalette   *JSONPalette
	enableFormat  bool
	indentWidth   int
}

type PrettyPrinterConfig struct {
	Writer       io.Writer
	EnableColor  bool
	EnableFormat bool
}

type HeaderPalette struct {
	Method         aurora.Color
	URL            aurora.Color
	Proto          aurora.Color
	SuccessStatus  aurora.Color
	RedirectStatus aurora.Color
	ErrorStatus    aurora.Color
	FieldName      aurora.Color
	FieldValue     aurora.Color
	FieldSeparator aurora.Color
}

var defaultHeaderPalette = HeaderPalette{
	Method:         aurora.MagentaFg,
	URL:            aurora.CyanFg,
	Proto:          aurora.BlueFg,
	SuccessStatus:  aurora.GreenFg | aurora.BoldFm,
	RedirectStatus: aurora.BrownFg | aurora.BoldFm,
	ErrorStatus:    aurora.RedFg | aurora.BoldFm,
	FieldName:      aurora.GrayFg,
	FieldValue:     aurora.CyanFg,
	FieldSeparator: aurora.GrayFg,
}

type JSONPalette struct {
	Name    aurora.Color
	String  aurora.Color
	Number  aurora.Color
	Boolean aurora.Color
	Null    aurora.Color
	Symbol  aurora.Color
}

var defaultJSONPalette = JSONPalette{
	Name:    aurora.BlueFg,
	String:  aurora.BrownFg,
	Number:  aurora.CyanFg,
	Boolean: aurora.MagentaFg,
	Null:    aurora.RedFg,
	Symbol:  aurora.GrayFg,
}

func NewPrettyPrinter(config PrettyPrinterConfig) Printer {
	return &PrettyPrinter{
		writer:        config.Writer,
		plain:         NewPlainPrinter(config.Writer),
		aurora:        aurora.NewAurora(config.EnableColor),
		headerPalette: &defaultHeaderPalette,
		jsonPalette:   &defaultJSONPalette,
		enableFormat:  config.EnableFormat,
		indentWidth:   4,
	}
}

func (p *PrettyPrinter) PrintStatusLine(proto string, status string, statusCode int) error {
	statusColor := p.headerPalette.SuccessStatus
	switch {
	case statusCode >= 300 && statusCode < 400:
		statusColor = p.headerPalette.RedirectStatus
	case statusCode >= 400:
		statusColor = p.headerPalette.ErrorStatus
	}
	fmt.Fprintf(p.writer, "%s %s\n",
		p.aurora.Colorize(proto, p.headerPalette.Proto),
		p.aurora.Colorize(status, statusColor))
	return nil
}

func (p *PrettyPrinter) PrintRequestLine(request *http.Request) error {
	fmt.Fprintf(p.writer, "%s %s %s\n",
		p.aurora.Colorize(request.Method, p.headerPalette.Method),
		p.aurora.Colorize(request.URL, p.headerPalette.URL),
		p.aurora.Colorize(requestProto(request), p.headerPalette.Proto))
	return nil
}

func (p *PrettyPrinter) PrintHeader(header http.Header) error {
	for _, name := range sortedHeaderNames(header) {
		for _, value := range header[name] {
			fmt.Fprintf(p.writer, "%s%s %s\n",
				p.aurora.Colorize(name, p.headerPalette.FieldName),
				p.aurora.Colorize(":", p.headerPalette.FieldSeparator),
				p.aurora.Colorize(value, p.headerPalette.FieldValue))
		}
	}
	fmt.Fprintln(p.writer)
	return nil
}

// PrintBody re-serializes recognized JSON bodies with the original member
// order and four-space indentation. Anything that is not JSON, or fails
// to parse as JSON, passes through byte-for-byte.
func (p *PrettyPrinter) PrintBody(body io.Reader, contentType string) error {
	if !p.enableFormat || !isJSON(contentType) {
		return p.plain.PrintBody(body, contentType)
	}

	content, err := ioutil.ReadAll(body)
	if err != nil {
		return errors.Wrap(err, "reading body")
	}

	formatted, ok := p.formatJSON(content)
	if !ok {
		_, err := p.writer.Write(content)
		return errors.Wrap(err, "printing body")
	}
	_, err = p.writer.Write(formatted)
	return errors.Wrap(err, "printing body")
}

func isJSON(contentType string) bool {
	contentType = strings.TrimSpace(contentType)

	semicolon := strings.Index(contentType, ";")
	if semicolon != -1 {
		contentType = contentType[:semicolon]
	}

	// application/json plus structured suffixes like application/problem+json
	return contentType == "application/json" || strings.HasSuffix(contentType, "+json")
}

// formatJSON walks the token stream so member order survives; a decode
// through interface{} would sort object keys.
func (p *PrettyPrinter) formatJSON(content []byte) ([]byte, bool) {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	var buf bytes.Buffer
	token, err := decoder.Token()
	if err != nil {
		return nil, false
	}
	if err := p.writeValue(&buf, decoder, token, 0); err != nil {
		return nil, false
	}
	if decoder.More() {
		// trailing garbage; not a single JSON document
		return nil, false
	}
	buf.WriteByte('\n')
	return buf.Bytes(), true
}

func (p *PrettyPrinter) writeValue(buf *bytes.Buffer, decoder *json.Decoder, token json.Token, depth int) error {
	switch value := token.(type) {
	case json.Delim:
		switch value {
		case '{':
			return p.writeObject(buf, decoder, depth)
		case '[':
			return p.writeArray(buf, decoder, depth)
		default:
			return errors.Errorf("unexpected delimiter: %v", value)
		}
	case string:
		p.writeColored(buf, quoteString(value), p.jsonPalette.String)
	case json.Number:
		p.writeColored(buf, value.String(), p.jsonPalette.Number)
	case bool:
		p.writeColored(buf, strconv.FormatBool(value), p.jsonPalette.Boolean)
	case nil:
		p.writeColored(buf, "null", p.jsonPalette.Null)
	}
	return nil
}

func (p *PrettyPrinter) writeObject(buf *bytes.Buffer, decoder *json.Decoder, depth int) error {
	if !decoder.More() {
		if _, err := decoder.Token(); err != nil {
			return err
		}
		p.writeColored(buf, "{}", p.jsonPalette.Symbol)
		return nil
	}
	p.writeColored(buf, "{", p.jsonPalette.Symbol)
	first := true
	for decoder.More() {
		if !first {
			p.writeColored(buf, ",", p.jsonPalette.Symbol)
		}
		first = false
		buf.WriteByte('\n')
		p.writeIndent(buf, depth+1)

		keyToken, err := decoder.Token()
		if err != nil {
			return err
		}
		key, ok := keyToken.(string)
		if !ok {
			return errors.Errorf("unexpected object key: %v", keyToken)
		}
		p.writeColored(buf, quoteString(key), p.jsonPalette.Name)
		p.writeColored(buf, ":", p.jsonPalette.Symbol)
		buf.WriteByte(' ')

		valueToken, err := decoder.Token()
		if err != nil {
			return err
		}
		if err := p.writeValue(buf, decoder, valueToken, depth+1); err != nil {
			return err
		}
	}
	if _, err := decoder.Token(); err != nil {
		return err
	}
	buf.WriteByte('\n')
	p.writeIndent(buf, depth)
	p.writeColored(buf, "}", p.jsonPalette.Symbol)
	return nil
}

func (p *PrettyPrinter) writeArray(buf *bytes.Buffer, decoder *json.Decoder, depth int) error {
	if !decoder.More() {
		if _, err := decoder.Token(); err != nil {
			return err
		}
		p.writeColored(buf, "[]", p.jsonPalette.Symbol)
		return nil
	}
	p.writeColored(buf, "[", p.jsonPalette.Symbol)
	first := true
	for decoder.More() {
		if !first {
			p.writeColored(buf, ",", p.jsonPalette.Symbol)
		}
		first = false
		buf.WriteByte('\n')
		p.writeIndent(buf, depth+1)

		token, err := decoder.Token()
		if err != nil {
			return err
		}
		if err := p.writeValue(buf, decoder, token, depth+1); err != nil {
			return err
		}
	}
	if _, err := decoder.Token(); err != nil {
		return err
	}
	buf.WriteByte('\n')
	p.writeIndent(buf, depth)
	p.writeColored(buf, "]", p.jsonPalette.Symbol)
	return nil
}

func (p *PrettyPrinter) writeIndent(buf *bytes.Buffer, depth int) {
	buf.WriteString(strings.Repeat(" ", p.indentWidth*depth))
}

func (p *PrettyPrinter) writeColored(buf *bytes.Buffer, s string, color aurora.Color) {
	buf.WriteString(p.aurora.Colorize(s, color).String())
}

func quoteString(s string) string {
	var sb strings.Builder
	encoder := json.NewEncoder(&sb)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		// strings always encode
		panic(err)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
