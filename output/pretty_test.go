package output

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func parseURL(t *testing.T, rawurl string) *url.URL {
	u, err := url.Parse(rawurl)
	if err != nil {
		t.Fatalf("failed to parse URL: url=%s, err=%s", rawurl, err)
	}
	return u
}

func newTestPrinter(buffer *strings.Builder) Printer {
	return NewPrettyPrinter(PrettyPrinterConfig{
		Writer:       buffer,
		EnableColor:  false,
		EnableFormat: true,
	})
}

func TestPrettyPrinter_PrintStatusLine(t *testing.T) {
	// Setup
	var buffer strings.Builder
	printer := newTestPrinter(&buffer)

	// Exercise
	err := printer.PrintStatusLine("HTTP/1.1", "200 OK", 200)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	// Verify
	expected := "HTTP/1.1 200 OK\n"
	if buffer.String() != expected {
		t.Errorf("unexpected output: expected=%s, actual=%s", expected, buffer.String())
	}
}

func TestPrettyPrinter_PrintRequestLine(t *testing.T) {
	// Setup
	var buffer strings.Builder
	printer := newTestPrinter(&buffer)
	request := &http.Request{
		Method: "GET",
		URL:    parseURL(t, "http://example.com/hello?foo=bar&hoge=piyo"),
		Proto:  "HTTP/1.1",
	}

	// Exercise
	err := printer.PrintRequestLine(request)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	// Verify
	expected := "GET http://example.com/hello?foo=bar&hoge=piyo HTTP/1.1\n"
	if buffer.String() != expected {
		t.Errorf("unexpected output: expected=%s, actual=%s", expected, buffer.String())
	}
}

func TestPrettyPrinter_PrintHeader(t *testing.T) {
	// Setup
	var buffer strings.Builder
	printer := newTestPrinter(&buffer)
	header := http.Header{
		"Content-Type": []string{"application/json"},
		"X-Foo":        []string{"hello", "world", "aaa"},
		"Date":         []string{"Tue, 12 Feb 2019 16:01:54 GMT"},
	}

	// Exercise
	err := printer.PrintHeader(header)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	// Verify
	expected := strings.Join([]string{
		"Content-Type: application/json\n",
		"Date: Tue, 12 Feb 2019 16:01:54 GMT\n",
		"X-Foo: hello\n",
		"X-Foo: world\n",
		"X-Foo: aaa\n",
		"\n",
	}, "")
	if buffer.String() != expected {
		t.Errorf("unexpected output: expected=\n%s\n (len=%d)\nactual=\n%s\n (len=%d)",
			expected, len(expected), buffer.String(), len(buffer.String()))
	}
}

func TestPrettyPrinter_PrintBody(t *testing.T) {
	testCases := []struct {
		title       string
		body        string
		contentType string
		expected    string
	}{
		{
			title:       "Key order is preserved, only re-indented",
			body:        `{"b":2,"a":1}`,
			contentType: "application/json",
			expected: strings.Join([]string{
				`{`,
				`    "b": 2,`,
				`    "a": 1`,
				"}\n",
			}, "\n"),
		},
		{
			title:       "Nested structures",
			body:        `{"zzz": "hello", "aaa": [3.14, true, false, null], "123": {}, "": []}`,
			contentType: "application/json",
			expected: strings.Join([]string{
				`{`,
				`    "zzz": "hello",`,
				`    "aaa": [`,
				`        3.14,`,
				`        true,`,
				`        false,`,
				`        null`,
				`    ],`,
				`    "123": {},`,
				`    "": []`,
				"}\n",
			}, "\n"),
		},
		{
			title:       "Unicode is not HTML-escaped",
			body:        `{"\"": "aaa\nbbb", "x": "<&>"}`,
			contentType: "application/json",
			expected: strings.Join([]string{
				`{`,
				`    "\"": "aaa\nbbb",`,
				`    "x": "<&>"`,
				"}\n",
			}, "\n"),
		},
		{
			title:       "Top-level scalar",
			body:        `42`,
			contentType: "application/json",
			expected:    "42\n",
		},
		{
			title:       "Body is empty",
			body:        "",
			contentType: "application/json",
			expected:    "",
		},
		{
			title:       "Body contains only whitespaces",
			body:        "    \n",
			contentType: "application/json",
			expected:    "    \n",
		},
		{
			title:       "Malformed JSON falls back to raw bytes",
			body:        `{"hello": "world"`,
			contentType: "application/json",
			expected:    `{"hello": "world"`,
		},
		{
			title:       "Not a JSON",
			body:        "xyz",
			contentType: "application/json",
			expected:    "xyz",
		},
		{
			title:       "Trailing garbage falls back to raw bytes",
			body:        `{"a":1} trailing`,
			contentType: "application/json",
			expected:    `{"a":1} trailing`,
		},
		{
			title:       "Structured suffix type is formatted",
			body:        `{"title":"oops"}`,
			contentType: "application/problem+json",
			expected: strings.Join([]string{
				`{`,
				`    "title": "oops"`,
				"}\n",
			}, "\n"),
		},
		{
			title:       "Non-JSON content type passes through",
			body:        `{"b":2,"a":1}`,
			contentType: "text/plain",
			expected:    `{"b":2,"a":1}`,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			// Setup
			var buffer strings.Builder
			printer := newTestPrinter(&buffer)

			// Exercise
			err := printer.PrintBody(strings.NewReader(tt.body), tt.contentType)
			if err != nil {
				t.Fatalf("unexpected error: err=%+v", err)
			}

			// Verify
			if buffer.String() != tt.expected {
				t.Errorf("unexpected output: expected=\n%s\nactual=\n%s\n", tt.expected, buffer.String())
			}
		})
	}
}

// When formatting is off, bytes must survive the round trip untouched.
func TestPrettyPrinter_PrintBodyFormatDisabled(t *testing.T) {
	var buffer strings.Builder
	printer := NewPrettyPrinter(PrettyPrinterConfig{
		Writer:       &buffer,
		EnableColor:  true,
		EnableFormat: false,
	})
	body := "\x00\x01binary {json: no}\xff"
	if err := printer.PrintBody(strings.NewReader(body), "application/octet-stream"); err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	if buffer.String() != body {
		t.Errorf("bytes were altered: expected=%q, actual=%q", body, buffer.String())
	}
}

func TestPrettyPrinter_DetectJSON(t *testing.T) {
	if !isJSON("application/json") {
		t.Errorf("didn't detect application/json as JSON")
	}

	// See https://tools.ietf.org/html/rfc7807
	if !isJSON("application/problem+json") {
		t.Errorf("didn't detect application/problem+json as JSON")
	}

	if !isJSON("application/json; charset=utf-8") {
		t.Errorf("didn't detect application/json with parameters as JSON")
	}

	if isJSON("text/html") {
		t.Errorf("detected text/html as JSON")
	}
}
