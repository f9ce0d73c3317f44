package flags

import (
	"reflect"
	"testing"
	"time"

	"github.com/hx-cli/hx/exchange"
	"github.com/hx-cli/hx/input"
	"github.com/hx-cli/hx/output"
)

func defaultOptionSet() *OptionSet {
	return &OptionSet{
		InputOptions: input.Options{
			DefaultScheme: "https",
		},
		ExchangeOptions: exchange.Options{
			Timeout:      30 * time.Second,
			MaxRedirects: 10,
		},
		OutputOptions: output.Options{
			PrintResponseHeader: true,
			PrintResponseBody:   true,
			EnableColor:         true,
			EnableFormat:        true,
		},
	}
}

func TestParse(t *testing.T) {
	args, _, optionSet, err := parse([]string{"hx"}, terminalInfo{
		stdinIsTerminal:  true,
		stdoutIsTerminal: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	if len(args) != 0 {
		t.Errorf("unexpected returned args: %v", args)
	}
	expected := defaultOptionSet()
	if !reflect.DeepEqual(expected, optionSet) {
		t.Errorf("unexpected option set: expected=\n%+v\nactual=\n%+v", expected, optionSet)
	}
}

func TestParsePipedStdout(t *testing.T) {
	_, _, optionSet, err := parse([]string{"hx"}, terminalInfo{
		stdinIsTerminal:  true,
		stdoutIsTerminal: false,
	})
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	expected := defaultOptionSet()
	expected.OutputOptions = output.Options{
		PrintResponseBody: true,
		OutputRedirected:  true,
	}
	if !reflect.DeepEqual(expected, optionSet) {
		t.Errorf("unexpected option set: expected=\n%+v\nactual=\n%+v", expected, optionSet)
	}
}

func TestParsePipedStdin(t *testing.T) {
	_, _, optionSet, err := parse([]string{"hx"}, terminalInfo{
		stdinIsTerminal:  false,
		stdoutIsTerminal: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	if !optionSet.InputOptions.ReadStdin {
		t.Error("expected ReadStdin to be set")
	}

	_, _, optionSet, err = parse([]string{"hx", "--ignore-stdin"}, terminalInfo{
		stdinIsTerminal:  false,
		stdoutIsTerminal: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	if optionSet.InputOptions.ReadStdin {
		t.Error("expected ReadStdin to be unset with --ignore-stdin")
	}
}

func TestParseDownload(t *testing.T) {
	args, _, optionSet, err := parse([]string{"hx", "--download", "example.com"}, terminalInfo{
		stdinIsTerminal:  true,
		stdoutIsTerminal: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	if !reflect.DeepEqual(args, []string{"example.com"}) {
		t.Errorf("unexpected args: %v", args)
	}
	if !optionSet.OutputOptions.Download {
		t.Error("expected Download to be set")
	}
	if !optionSet.OutputOptions.PrintResponseHeader || optionSet.OutputOptions.PrintResponseBody {
		t.Errorf("unexpected print gates for download: %+v", optionSet.OutputOptions)
	}
}

func TestParsePrintFlagValue(t *testing.T) {
	testCases := []struct {
		title    string
		value    string
		expected output.Options
	}{
		{
			title: "Request parts only",
			value: "HB",
			expected: output.Options{
				PrintRequestHeader: true,
				PrintRequestBody:   true,
			},
		},
		{
			title: "Everything",
			value: "HBhb",
			expected: output.Options{
				PrintRequestHeader:  true,
				PrintRequestBody:    true,
				PrintResponseHeader: true,
				PrintResponseBody:   true,
			},
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			options := output.Options{}
			err := parsePrintFlag(tt.value, printDefaults{}, terminalInfo{}, &options)
			if err != nil {
				t.Fatalf("unexpected error: err=%+v", err)
			}
			if !reflect.DeepEqual(options, tt.expected) {
				t.Errorf("unexpected options: expected=%+v, actual=%+v", tt.expected, options)
			}
		})
	}

	options := output.Options{}
	if err := parsePrintFlag("HX", printDefaults{}, terminalInfo{}, &options); err == nil {
		t.Error("expected an error for an invalid --print value")
	}
}

func TestParseResumeRequiresDownloadAndOutput(t *testing.T) {
	_, _, _, err := parse([]string{"hx", "--continue"}, terminalInfo{})
	if err == nil {
		t.Error("expected an error for --continue without --download")
	}

	_, _, _, err = parse([]string{"hx", "--download", "--continue"}, terminalInfo{})
	if err == nil {
		t.Error("expected an error for --continue without --output")
	}

	_, _, _, err = parse([]string{"hx", "--download", "--continue", "--output", "file.bin"}, terminalInfo{})
	if err != nil {
		t.Errorf("unexpected error: err=%+v", err)
	}
}

func TestParseDurationOrSeconds(t *testing.T) {
	testCases := []struct {
		input    string
		expected time.Duration
	}{
		{input: "30s", expected: 30 * time.Second},
		{input: "5", expected: 5 * time.Second},
		{input: "1.5", expected: 1500 * time.Millisecond},
		{input: "2m", expected: 2 * time.Minute},
	}
	for _, tt := range testCases {
		d, err := parseDurationOrSeconds(tt.input)
		if err != nil {
			t.Fatalf("unexpected error: input=%s, err=%v", tt.input, err)
		}
		if d != tt.expected {
			t.Errorf("unexpected duration: input=%s, expected=%v, actual=%v", tt.input, tt.expected, d)
		}
	}

	if _, err := parseDurationOrSeconds("bogus"); err == nil {
		t.Error("expected an error for an invalid timeout")
	}
}

func TestParseAuthWithPassword(t *testing.T) {
	auth, err := parseAuth("alice:open sesame")
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	expected := exchange.AuthOptions{
		Enabled:  true,
		UserName: "alice",
		Password: "open sesame",
	}
	if !reflect.DeepEqual(auth, expected) {
		t.Errorf("unexpected auth options: expected=%+v, actual=%+v", expected, auth)
	}
}
