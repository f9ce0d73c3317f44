package input

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	reMethod          = regexp.MustCompile(`^[a-zA-Z]+$`)
	reHeaderFieldName = regexp.MustCompile("^[-!#$%&'*+.^_|~a-zA-Z0-9]+$")
	reScheme          = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+-.]*://`)
	emptyMethod       = Method("")
)

// ParseArgs turns positional arguments into an Input: an optional method,
// a URL, and zero or more request items classified by their separator.
// When options.ReadStdin is set the raw stdin bytes become the request
// body; mixing them with body items is an error.
func ParseArgs(args []string, stdin io.Reader, options *Options) (*Input, error) {
	var argMethod string
	var argURL string
	var argItems []string
	switch len(args) {
	case 0:
		return nil, newUsageError("URL is required")
	case 1:
		argURL = args[0]
	default:
		if reMethod.MatchString(args[0]) {
			argMethod = args[0]
			argURL = args[1]
			argItems = args[2:]
		} else {
			argURL = args[0]
			argItems = args[1:]
		}
	}

	if options.JSON && options.Form {
		return nil, errors.New("you cannot specify both of --json and --form")
	}

	in := Input{
		Form:      options.Form,
		Multipart: options.Multipart,
	}

	u, err := parseUrl(argURL, options.DefaultScheme)
	if err != nil {
		return nil, err
	}
	in.URL = u

	for _, arg := range argItems {
		item, err := parseItem(arg)
		if err != nil {
			return nil, err
		}
		in.Items = append(in.Items, item)
	}

	if options.ReadStdin {
		if hasBodyItems(in.Items) {
			return nil, errors.WithStack(ErrConflictingBody)
		}
		raw, err := ioutil.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "reading stdin")
		}
		in.RawBody = raw
		in.HasRawBody = true
	}

	if argMethod != "" {
		method, err := parseMethod(argMethod)
		if err != nil {
			return nil, err
		}
		in.Method = method
	} else {
		in.Method = guessMethod(&in)
	}

	return &in, nil
}

func parseMethod(s string) (Method, error) {
	if !reMethod.MatchString(s) {
		return emptyMethod, errors.Errorf("METHOD must consist of alphabets: %s", s)
	}
	return Method(strings.ToUpper(s)), nil
}

func guessMethod(in *Input) Method {
	if in.HasRawBody || hasBodyItems(in.Items) {
		return Method("POST")
	}
	return Method("GET")
}

func hasBodyItems(items []Item) bool {
	for _, item := range items {
		switch item.Kind {
		case JSONFieldItem, DataFieldItem, FileFieldItem:
			return true
		case HeaderItem, HeaderUnsetItem, ParamItem:
			// not body-contributing
		}
	}
	return false
}

func parseUrl(s string, defaultScheme string) (*url.URL, error) {
	if defaultScheme == "" {
		defaultScheme = "https"
	}
	defaultHost := "localhost"

	orig := s

	// ex) :8080/hello or /hello
	if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "/") {
		s = defaultHost + s
	}

	// ex) example.com/hello
	if !reScheme.MatchString(s) {
		s = defaultScheme + "://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return nil, errors.WithStack(&InvalidURLError{URL: orig})
	}
	u.Host = strings.TrimSuffix(u.Host, ":")
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

func parseItem(s string) (Item, error) {
	kind, name, value, err := splitItem(s)
	if err != nil {
		return Item{}, err
	}
	switch kind {
	case HeaderItem, HeaderUnsetItem:
		if !isValidHeaderFieldName(name) {
			return Item{}, errors.Errorf("invalid header field name: %s", name)
		}
	case JSONFieldItem:
		if !json.Valid([]byte(value)) {
			return Item{}, errors.Errorf("invalid JSON at '%s': %s", name, value)
		}
	case ParamItem, DataFieldItem, FileFieldItem:
		// no syntactic constraints beyond the separator
	}
	return Item{Kind: kind, Name: name, Value: value}, nil
}

// splitItem classifies a single token by its first unescaped separator.
// Two-character separators (":=", "==") take precedence over their
// one-character prefixes. A backslash escapes a literal separator in the
// name part; escaping anything else is an error.
func splitItem(s string) (ItemKind, string, string, error) {
	var name strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return 0, "", "", newMalformedItemError(s, "dangling escape character")
			}
			next := s[i+1]
			if next != '\\' && next != ':' && next != '=' && next != '@' {
				return 0, "", "", newMalformedItemError(s, "invalid escape sequence")
			}
			name.WriteByte(next)
			i++
		case ':':
			if i+1 < len(s) && s[i+1] == '=' {
				return JSONFieldItem, name.String(), s[i+2:], nil
			}
			if i+1 == len(s) {
				return HeaderUnsetItem, name.String(), "", nil
			}
			return HeaderItem, name.String(), s[i+1:], nil
		case '=':
			if i+1 < len(s) && s[i+1] == '=' {
				return ParamItem, name.String(), s[i+2:], nil
			}
			return DataFieldItem, name.String(), s[i+1:], nil
		case '@':
			return FileFieldItem, name.String(), s[i+1:], nil
		default:
			name.WriteByte(s[i])
		}
	}
	return 0, "", "", newMalformedItemError(s, "")
}

func isValidHeaderFieldName(s string) bool {
	return reHeaderFieldName.MatchString(s)
}
