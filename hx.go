package hx

import (
	"bufio"
	"fmt"
	"os"

	"github.com/hx-cli/hx/exchange"
	"github.com/hx-cli/hx/flags"
	"github.com/hx-cli/hx/input"
	"github.com/hx-cli/hx/output"
	"github.com/hx-cli/hx/version"
	"github.com/pkg/errors"
)

// Main runs the whole pipeline: parse flags and arguments, assemble the
// request, send it, and render or download the response. The returned
// int is the process exit code (0, or 3/4/5 when status checking is on).
func Main() (int, error) {
	args, usage, optionSet, err := flags.Parse(os.Args)
	if err != nil {
		return 1, err
	}

	if optionSet.Version {
		fmt.Printf("hx %s\n", version.Current())
		return 0, nil
	}
	if optionSet.Licenses {
		version.PrintLicenses(os.Stdout)
		return 0, nil
	}

	// Parse positional arguments
	in, err := input.ParseArgs(args, os.Stdin, &optionSet.InputOptions)
	if _, ok := errors.Cause(err).(*input.UsageError); ok {
		usage.PrintUsage(os.Stderr)
		return 1, err
	}
	if err != nil {
		return 1, err
	}

	exOptions := &optionSet.ExchangeOptions
	outOptions := &optionSet.OutputOptions

	// The resume offset changes the request headers, so it must be read
	// before the request is built.
	if outOptions.Download && outOptions.Resume {
		if size, ok := output.GetFileSize(outOptions.OutputFile); ok {
			exOptions.ResumeFrom = size
		}
	}

	req, err := exchange.BuildHTTPRequest(in, exOptions)
	if err != nil {
		return 1, err
	}

	writer, closeWriter, err := openOutput(outOptions)
	if err != nil {
		return 1, err
	}
	defer closeWriter()

	printer := output.NewPrinter(writer, outOptions)

	if outOptions.PrintRequestHeader {
		if err := printer.PrintRequestLine(req); err != nil {
			return 1, err
		}
		if err := printer.PrintHeader(req.Header); err != nil {
			return 1, err
		}
	}
	if outOptions.PrintRequestBody && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return 1, err
		}
		if err := printer.PrintBody(body, req.Header.Get("Content-Type")); err != nil {
			return 1, err
		}
	}

	if optionSet.Offline {
		return 0, nil
	}

	client, err := exchange.BuildHTTPClient(exOptions)
	if err != nil {
		return 1, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 1, errors.Wrap(err, "sending HTTP request")
	}
	defer resp.Body.Close()

	if outOptions.PrintResponseHeader {
		if err := printer.PrintStatusLine(resp.Proto, resp.Status, resp.StatusCode); err != nil {
			return 1, err
		}
		if err := printer.PrintHeader(resp.Header); err != nil {
			return 1, err
		}
		// Headers must reach the terminal before download progress
		// starts writing to stderr.
		writer.Flush()
	}

	exitCode := exchange.ExitCode(resp.StatusCode, exOptions.FollowRedirects, exOptions.CheckStatus, outOptions.Download)
	if exitCode != 0 && (outOptions.Download || outOptions.OutputRedirected) {
		// The body is not going to a terminal; make sure the error
		// status is still visible.
		fmt.Fprintf(os.Stderr, "\nhx: warning: HTTP %s\n", resp.Status)
	}

	if outOptions.Download {
		if exitCode == 0 {
			downloader := output.NewDownloader(outOptions, os.Stderr)
			downloader.SetResumeFrom(exOptions.ResumeFrom)
			if err := downloader.Download(resp, req.URL); err != nil {
				return 1, err
			}
		}
	} else if outOptions.PrintResponseBody {
		if err := printer.PrintBody(resp.Body, resp.Header.Get("Content-Type")); err != nil {
			return 1, err
		}
	}

	return exitCode, nil
}

// openOutput picks where rendered output goes: stdout, or the --output
// file when not downloading (downloads write the file themselves).
func openOutput(options *output.Options) (*bufio.Writer, func(), error) {
	if options.OutputFile != "" && !options.Download {
		file, err := os.Create(options.OutputFile)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "creating '%s'", options.OutputFile)
		}
		writer := bufio.NewWriter(file)
		return writer, func() {
			writer.Flush()
			file.Close()
		}, nil
	}
	writer := bufio.NewWriter(os.Stdout)
	return writer, func() { writer.Flush() }, nil
}
