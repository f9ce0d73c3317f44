package exchange

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/hx-cli/hx/input"
	"github.com/hx-cli/hx/version"
	"github.com/pkg/errors"
)

// BuildHTTPRequest assembles a complete http.Request from the classified
// input. Header unsets are applied as the very last step so they win
// over defaults, explicit sets, range and auth headers alike.
func BuildHTTPRequest(in *input.Input, options *Options) (*http.Request, error) {
	u, err := buildURL(in)
	if err != nil {
		return nil, err
	}

	body, err := AssembleBody(in)
	if err != nil {
		return nil, err
	}
	tuple, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	header := buildHTTPHeader(in)
	applyDefaultHeaders(header, body, tuple)

	if options.ResumeFrom > 0 && header.Get("Range") == "" {
		header.Set("Range", fmt.Sprintf("bytes=%d-", options.ResumeFrom))
	}

	r := http.Request{
		Method:        string(in.Method),
		URL:           u,
		Header:        header,
		Host:          header.Get("Host"),
		ContentLength: tuple.contentLength,
	}
	if tuple.body != nil {
		raw := tuple.body
		r.Body = ioutil.NopCloser(bytes.NewReader(raw))
		r.GetBody = func() (io.ReadCloser, error) {
			return ioutil.NopCloser(bytes.NewReader(raw)), nil
		}
	}

	if options.Auth.Enabled {
		r.SetBasicAuth(options.Auth.UserName, options.Auth.Password)
	}
	if options.Bearer != "" {
		header.Set("Authorization", "Bearer "+options.Bearer)
	}

	for _, name := range headersToUnset(in) {
		header.Del(name)
	}

	return &r, nil
}

// buildURL appends the classified query parameters after any query string
// already present in the URL. Parameters are never deduplicated and their
// order is preserved, so url.Values (which sorts on Encode) is avoided.
func buildURL(in *input.Input) (*url.URL, error) {
	var query strings.Builder
	query.WriteString(in.URL.RawQuery)
	for _, item := range in.Items {
		if item.Kind != input.ParamItem {
			continue
		}
		if query.Len() > 0 {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape(item.Name))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(item.Value))
	}

	u := *in.URL
	u.RawQuery = query.String()
	return &u, nil
}

// buildHTTPHeader projects the header items with map semantics: a later
// set of the same name overwrites an earlier one.
func buildHTTPHeader(in *input.Input) http.Header {
	header := make(http.Header)
	for _, item := range in.Items {
		if item.Kind == input.HeaderItem {
			header.Set(item.Name, item.Value)
		}
	}
	return header
}

func headersToUnset(in *input.Input) []string {
	var names []string
	for _, item := range in.Items {
		if item.Kind == input.HeaderUnsetItem {
			names = append(names, item.Name)
		}
	}
	return names
}

func applyDefaultHeaders(header http.Header, body *Body, tuple bodyTuple) {
	if header.Get("Accept") == "" {
		switch body.Type {
		case JSONBody, RawBody:
			header.Set("Accept", "application/json, */*")
		case EmptyBody, FormBody, MultipartBody:
			header.Set("Accept", "*/*")
		}
	}
	if header.Get("Content-Type") == "" && tuple.contentType != "" {
		header.Set("Content-Type", tuple.contentType)
	}
	if header.Get("User-Agent") == "" {
		header.Set("User-Agent", fmt.Sprintf("hx/%s", version.Current()))
	}
}

// SendRequest builds and executes the request in one step.
func SendRequest(in *input.Input, options *Options) (*http.Response, error) {
	client, err := BuildHTTPClient(options)
	if err != nil {
		return nil, err
	}
	r, err := BuildHTTPRequest(in, options)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "sending HTTP request")
	}
	return resp, nil
}
