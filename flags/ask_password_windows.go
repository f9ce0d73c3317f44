// +build windows

package flags

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

// askPassword prompts for the basic-auth password when --auth only
// carries a user name.
func askPassword() (string, error) {
	fmt.Fprintf(os.Stderr, "Password: ")
	fd := int(os.Stdin.Fd())
	password, err := terminal.ReadPassword(fd)
	if err != nil {
		return "", errors.Wrap(err, "reading password from terminal")
	}
	fmt.Fprintln(os.Stderr)
	return string(password), nil
}
