package output

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
)

type downloadState int

const (
	downloadStart downloadState = iota
	downloadResuming
	downloadInProgress
	downloadComplete
	downloadFailed
)

const downloadChunkSize = 32 * 1024

// GetFileSize returns the size of an existing regular file. Callers use
// it to compute the resume offset before the request is built; the Range
// header must match the bytes already on disk.
func GetFileSize(path string) (int64, bool) {
	if path == "" {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}

// Downloader streams a response body to a file in bounded chunks. It
// never retries; on failure the partial file stays on disk so a later
// run can resume from its size.
type Downloader struct {
	options    *Options
	progress   io.Writer
	state      downloadState
	resumeFrom int64
}

func NewDownloader(options *Options, progress io.Writer) *Downloader {
	return &Downloader{
		options:  options,
		progress: progress,
		state:    downloadStart,
	}
}

// SetResumeFrom records the partial-file offset that was already sent as
// the Range header. The download appends only when the server honored
// the range; otherwise the file is truncated and written from scratch.
func (d *Downloader) SetResumeFrom(offset int64) {
	d.resumeFrom = offset
}

func (d *Downloader) Download(resp *http.Response, u *url.URL) error {
	path := d.destinationPath(resp, u)

	resuming := d.resumeFrom > 0 && resp.StatusCode == http.StatusPartialContent
	var file *os.File
	var err error
	if resuming {
		d.state = downloadResuming
		file, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	} else {
		d.resumeFrom = 0
		file, err = os.Create(path)
	}
	if err != nil {
		d.state = downloadFailed
		return errors.Wrapf(err, "opening '%s'", path)
	}
	defer file.Close()

	total := resp.ContentLength
	d.reportStart(path, total)

	d.state = downloadInProgress
	start := time.Now()
	var written int64
	buf := make([]byte, downloadChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := file.Write(buf[:n]); writeErr != nil {
				d.state = downloadFailed
				return errors.Wrapf(writeErr, "writing to '%s'", path)
			}
			written += int64(n)
			d.reportProgress(written, total)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			d.state = downloadFailed
			return errors.Wrapf(readErr, "reading response body of %s", u)
		}
	}

	if err := file.Sync(); err != nil {
		d.state = downloadFailed
		return errors.Wrapf(err, "flushing '%s'", path)
	}

	d.state = downloadComplete
	d.reportDone(written, time.Since(start))
	return nil
}

func (d *Downloader) destinationPath(resp *http.Response, u *url.URL) string {
	if d.options.OutputFile != "" {
		return d.options.OutputFile
	}
	fullPath := fmt.Sprintf("./%s", filenameFromResponse(resp, u))
	if !d.options.Overwrite {
		fullPath = makeNonOverlappingFilename(fullPath)
	}
	return fullPath
}

func filenameFromResponse(resp *http.Response, u *url.URL) string {
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return filepath.Base(name)
			}
		}
	}
	base := filepath.Base(u.Path)
	if base != "/" && base != "." && base != "" {
		return base
	}
	return "index.html"
}

func makeNonOverlappingFilename(path string) string {
	_, err := os.Stat(path)
	if err == nil {
		re := regexp.MustCompile(`\.(\d+)$`)
		newPath := re.ReplaceAllStringFunc(path, func(index string) string {
			i, err := strconv.Atoi(strings.TrimPrefix(index, "."))
			if err != nil {
				panic(err)
			}
			i++
			return fmt.Sprintf(".%d", i)
		})
		if path == newPath {
			path = fmt.Sprintf("%s.%d", path, 1)
		} else {
			path = newPath
		}
		path = makeNonOverlappingFilename(path)
	}
	return path
}

// Progress goes to stderr and is best effort; write errors are ignored
// so a broken progress pipe cannot abort the transfer.

func (d *Downloader) reportStart(path string, total int64) {
	if d.options.Quiet {
		return
	}
	if total >= 0 {
		fmt.Fprintf(d.progress, "Downloading %s to %q\n", bytefmt.ByteSize(uint64(total)), path)
	} else {
		fmt.Fprintf(d.progress, "Downloading to %q\n", path)
	}
}

func (d *Downloader) reportProgress(written, total int64) {
	if d.options.Quiet {
		return
	}
	if total > 0 {
		percent := written * 100 / total
		fmt.Fprintf(d.progress, "\r%s / %s (%d%%)",
			bytefmt.ByteSize(uint64(written)), bytefmt.ByteSize(uint64(total)), percent)
	} else {
		fmt.Fprintf(d.progress, "\r%s", bytefmt.ByteSize(uint64(written)))
	}
}

func (d *Downloader) reportDone(written int64, elapsed time.Duration) {
	if d.options.Quiet {
		return
	}
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		seconds = 0.001
	}
	rate := float64(written) / seconds
	fmt.Fprintf(d.progress, "\rDone. %s in %.2fs (%s/s)\n",
		bytefmt.ByteSize(uint64(written)), seconds, bytefmt.ByteSize(uint64(rate)))
}
