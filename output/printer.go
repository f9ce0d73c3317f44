package output

import (
	"io"
	"net/http"
)

type Printer interface {
	PrintStatusLine(proto string, status string, statusCode int) error
	PrintRequestLine(request *http.Request) error
	PrintHeader(header http.Header) error
	PrintBody(body io.Reader, contentType string) error
}

// NewPrinter selects a printer for the configured pretty mode.
func NewPrinter(writer io.Writer, options *Options) Printer {
	if !options.EnableColor && !options.EnableFormat {
		return NewPlainPrinter(writer)
	}
	return NewPrettyPrinter(PrettyPrinterConfig{
		Writer:       writer,
		EnableColor:  options.EnableColor,
		EnableFormat: options.EnableFormat,
	})
}
