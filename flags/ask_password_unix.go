// +build !windows

package flags

import (
	"fmt"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

// askPassword prompts for the basic-auth password when --auth only
// carries a user name. Stdin may be occupied by the request body, so the
// prompt falls back to the controlling terminal.
func askPassword() (string, error) {
	var fd int
	if terminal.IsTerminal(syscall.Stdin) {
		fd = syscall.Stdin
	} else {
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return "", errors.Wrap(err, "allocating terminal for password prompt")
		}
		defer tty.Close()
		fd = int(tty.Fd())
	}

	fmt.Fprintf(os.Stderr, "Password: ")
	password, err := terminal.ReadPassword(fd)
	if err != nil {
		return "", errors.Wrap(err, "reading password from terminal")
	}
	fmt.Fprintln(os.Stderr)
	return string(password), nil
}
