package flags

import (
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/hx-cli/hx/exchange"
	"github.com/hx-cli/hx/input"
	"github.com/hx-cli/hx/output"
	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt"
	"github.com/pkg/errors"
)

var reNumber = regexp.MustCompile(`^[0-9.]+$`)

// Usage prints the flag summary; returned so the caller can show it on
// argument errors.
type Usage interface {
	PrintUsage(w io.Writer)
}

type OptionSet struct {
	InputOptions    input.Options
	ExchangeOptions exchange.Options
	OutputOptions   output.Options

	Offline  bool
	Version  bool
	Licenses bool
}

type terminalInfo struct {
	stdinIsTerminal  bool
	stdoutIsTerminal bool
}

// Parse processes the command line. osArgs is the full argv including
// the program name. It returns the remaining positional arguments
// ([METHOD] URL [REQUEST_ITEM ...]) and the assembled option set.
func Parse(osArgs []string) ([]string, Usage, *OptionSet, error) {
	return parse(osArgs, terminalInfo{
		stdinIsTerminal:  isatty.IsTerminal(os.Stdin.Fd()),
		stdoutIsTerminal: isatty.IsTerminal(os.Stdout.Fd()),
	})
}

func parse(osArgs []string, tinfo terminalInfo) ([]string, Usage, *OptionSet, error) {
	inputOptions := input.Options{}
	exchangeOptions := exchange.Options{}
	outputOptions := output.Options{}

	var ignoreStdin bool
	var verbose bool
	var headersOnly bool
	var bodyOnly bool
	var quiet bool
	var offline bool
	var versionFlag bool
	var licensesFlag bool
	printFlag := "\000" // "\000" means "--print not specified"
	prettyFlag := "auto"
	timeout := "30s"
	verify := "yes"
	defaultScheme := "https"
	auth := ""
	maxRedirects := 10

	flagSet := getopt.New()
	flagSet.SetParameters("[METHOD] URL [REQUEST_ITEM [REQUEST_ITEM ...]]")
	flagSet.BoolVarLong(&inputOptions.JSON, "json", 'j', "(default) serialize body as JSON")
	flagSet.BoolVarLong(&inputOptions.Form, "form", 'f', "serialize body in application/x-www-form-urlencoded")
	flagSet.BoolVarLong(&inputOptions.Multipart, "multipart", 0, "always serialize body as multipart/form-data")
	flagSet.BoolVarLong(&ignoreStdin, "ignore-stdin", 0, "do not attempt to read stdin")
	flagSet.StringVarLong(&defaultScheme, "default-scheme", 0, "scheme used when the URL does not specify one")
	flagSet.BoolVarLong(&exchangeOptions.FollowRedirects, "follow", 'F', "follow redirects")
	flagSet.IntVarLong(&maxRedirects, "max-redirects", 0, "maximum number of redirects to follow")
	flagSet.StringVarLong(&timeout, "timeout", 0, "timeout for the whole operation (number of seconds or duration)")
	flagSet.BoolVarLong(&exchangeOptions.CheckStatus, "check-status", 0, "exit with an error code on 3xx, 4xx and 5xx responses")
	flagSet.StringVarLong(&auth, "auth", 'a', "username[:password] for basic authentication")
	flagSet.StringVarLong(&exchangeOptions.Bearer, "bearer", 0, "token for bearer authentication")
	flagSet.StringVarLong(&verify, "verify", 0, "verify the server TLS certificate (yes|no)")
	flagSet.BoolVarLong(&exchangeOptions.ForceHTTP1, "http1", 0, "force HTTP/1.1")
	flagSet.StringVarLong(&printFlag, "print", 'p', "specifies what the output should contain (HBhb)")
	flagSet.BoolVarLong(&verbose, "verbose", 'v', "print the whole request as well as the response")
	flagSet.BoolVarLong(&headersOnly, "headers", 'h', "print only the response headers")
	flagSet.BoolVarLong(&bodyOnly, "body", 'b', "print only the response body")
	flagSet.BoolVarLong(&quiet, "quiet", 'q', "print nothing")
	flagSet.StringVarLong(&prettyFlag, "pretty", 0, "controls output formatting (all|colors|format|none)")
	flagSet.BoolVarLong(&outputOptions.Download, "download", 'd', "save the response body to a file")
	flagSet.BoolVarLong(&outputOptions.Resume, "continue", 'c', "resume an interrupted download")
	flagSet.StringVarLong(&outputOptions.OutputFile, "output", 'o', "write output to this file instead of stdout")
	flagSet.BoolVarLong(&outputOptions.Overwrite, "overwrite", 0, "overwrite an existing file instead of picking a new name")
	flagSet.BoolVarLong(&offline, "offline", 0, "build and print the request without sending it")
	flagSet.BoolVarLong(&versionFlag, "version", 0, "print version and exit")
	flagSet.BoolVarLong(&licensesFlag, "licenses", 0, "print license information of dependencies")
	flagSet.Parse(osArgs)

	// Check stdin
	if !ignoreStdin && !tinfo.stdinIsTerminal {
		inputOptions.ReadStdin = true
	}
	inputOptions.DefaultScheme = defaultScheme

	if outputOptions.Resume && !outputOptions.Download {
		return nil, nil, nil, errors.New("--continue only works with --download")
	}
	if outputOptions.Resume && outputOptions.OutputFile == "" {
		return nil, nil, nil, errors.New("--continue requires --output")
	}
	if outputOptions.Resume && outputOptions.Overwrite {
		return nil, nil, nil, errors.New("--continue and --overwrite are mutually exclusive")
	}

	// Parse --pretty
	if err := parsePrettyFlag(prettyFlag, tinfo, &outputOptions); err != nil {
		return nil, nil, nil, err
	}

	// Parse --print and friends
	if err := parsePrintFlag(printFlag, printDefaults{
		verbose:     verbose,
		headersOnly: headersOnly,
		bodyOnly:    bodyOnly,
		quiet:       quiet,
		offline:     offline,
	}, tinfo, &outputOptions); err != nil {
		return nil, nil, nil, err
	}
	outputOptions.Quiet = quiet
	outputOptions.OutputRedirected = !tinfo.stdoutIsTerminal || outputOptions.OutputFile != ""

	// Parse --timeout
	d, err := parseDurationOrSeconds(timeout)
	if err != nil {
		return nil, nil, nil, err
	}
	exchangeOptions.Timeout = d
	exchangeOptions.MaxRedirects = maxRedirects

	// Parse --verify
	switch verify {
	case "yes":
		exchangeOptions.SkipVerify = false
	case "no":
		exchangeOptions.SkipVerify = true
	default:
		return nil, nil, nil, errors.Errorf("value of --verify must be yes or no: %s", verify)
	}

	// Parse --auth
	authOptions, err := parseAuth(auth)
	if err != nil {
		return nil, nil, nil, err
	}
	exchangeOptions.Auth = authOptions

	optionSet := &OptionSet{
		InputOptions:    inputOptions,
		ExchangeOptions: exchangeOptions,
		OutputOptions:   outputOptions,
		Offline:         offline,
		Version:         versionFlag,
		Licenses:        licensesFlag,
	}
	return flagSet.Args(), flagSet, optionSet, nil
}

type printDefaults struct {
	verbose     bool
	headersOnly bool
	bodyOnly    bool
	quiet       bool
	offline     bool
}

func parsePrintFlag(printFlag string, defaults printDefaults, tinfo terminalInfo, outputOptions *output.Options) error {
	if printFlag != "\000" {
		for _, c := range printFlag {
			switch c {
			case 'H':
				outputOptions.PrintRequestHeader = true
			case 'B':
				outputOptions.PrintRequestBody = true
			case 'h':
				outputOptions.PrintResponseHeader = true
			case 'b':
				outputOptions.PrintResponseBody = true
			default:
				return errors.Errorf("invalid char in --print value (must consist of HBhb): %c", c)
			}
		}
		return nil
	}

	switch {
	case defaults.quiet:
		// print nothing
	case defaults.verbose:
		outputOptions.PrintRequestHeader = true
		outputOptions.PrintRequestBody = true
		outputOptions.PrintResponseHeader = true
		outputOptions.PrintResponseBody = true
	case defaults.headersOnly:
		outputOptions.PrintResponseHeader = true
	case defaults.bodyOnly:
		outputOptions.PrintResponseBody = true
	case defaults.offline:
		outputOptions.PrintRequestHeader = true
		outputOptions.PrintRequestBody = true
	case outputOptions.Download:
		outputOptions.PrintResponseHeader = true
	case tinfo.stdoutIsTerminal && outputOptions.OutputFile == "":
		outputOptions.PrintResponseHeader = true
		outputOptions.PrintResponseBody = true
	default:
		outputOptions.PrintResponseBody = true
	}
	return nil
}

func parsePrettyFlag(prettyFlag string, tinfo terminalInfo, outputOptions *output.Options) error {
	switch prettyFlag {
	case "auto":
		pretty := tinfo.stdoutIsTerminal && outputOptions.OutputFile == ""
		outputOptions.EnableColor = pretty
		outputOptions.EnableFormat = pretty
	case "all":
		outputOptions.EnableColor = true
		outputOptions.EnableFormat = true
	case "colors":
		outputOptions.EnableColor = true
	case "format":
		outputOptions.EnableFormat = true
	case "none":
		// leave both off
	default:
		return errors.Errorf("value of --pretty must be one of all, colors, format, none: %s", prettyFlag)
	}
	return nil
}

func parseAuth(auth string) (exchange.AuthOptions, error) {
	if auth == "" {
		return exchange.AuthOptions{}, nil
	}
	if i := strings.IndexByte(auth, ':'); i >= 0 {
		return exchange.AuthOptions{
			Enabled:  true,
			UserName: auth[:i],
			Password: auth[i+1:],
		}, nil
	}
	password, err := askPassword()
	if err != nil {
		return exchange.AuthOptions{}, err
	}
	return exchange.AuthOptions{
		Enabled:  true,
		UserName: auth,
		Password: password,
	}, nil
}

func parseDurationOrSeconds(timeout string) (time.Duration, error) {
	if reNumber.MatchString(timeout) {
		timeout += "s"
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return time.Duration(0), errors.Errorf("value of --timeout must be a number or duration string: %v", timeout)
	}
	return d, nil
}
