package exchange

// ExitCode maps an HTTP status to the process exit code. Statuses are
// only checked when --check-status or --download is active; a redirect
// counts as an error only when redirects are not being followed.
func ExitCode(statusCode int, followRedirects, checkStatus, download bool) int {
	if !checkStatus && !download {
		return 0
	}
	switch {
	case statusCode >= 300 && statusCode < 400 && !followRedirects:
		return 3
	case statusCode >= 400 && statusCode < 500:
		return 4
	case statusCode >= 500 && statusCode < 600:
		return 5
	default:
		return 0
	}
}
