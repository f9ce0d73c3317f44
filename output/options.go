package output

type Options struct {
	PrintRequestHeader  bool
	PrintRequestBody    bool
	PrintResponseHeader bool
	PrintResponseBody   bool

	EnableFormat bool
	EnableColor  bool

	Download   bool
	Resume     bool
	OutputFile string
	Overwrite  bool
	Quiet      bool

	// OutputRedirected is true when the body does not go to a terminal
	// (piped stdout or --output). Used to decide whether an error status
	// deserves a warning on stderr.
	OutputRedirected bool
}
