package wallet

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

var (
	ErrEmptyPassword    = errors.New("password must not be empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// PasswordReader asks for one password.
type PasswordReader func(prompt string) (string, error)

// TerminalPasswordReader reads passwords from in without echo when in is a
// terminal, or line by line otherwise. Prompts go to out.
func TerminalPasswordReader(in *os.File, out io.Writer) PasswordReader {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return func(prompt string) (string, error) {
			fmt.Fprint(out, prompt)
			b, err := term.ReadPassword(int(in.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return "", fmt.Errorf("reading password: %w", err)
			}
			return string(b), nil
		}
	}
	return LinePasswordReader(in, out)
}

// LinePasswordReader reads one line per prompt from in.
func LinePasswordReader(in io.Reader, out io.Writer) PasswordReader {
	r := bufio.NewReader(in)
	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}

// NewPassword asks for a password twice and checks both entries match.
func NewPassword(read PasswordReader) (string, error) {
	first, err := read("New password: ")
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", ErrEmptyPassword
	}
	second, err := read("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", ErrPasswordMismatch
	}
	return first, nil
}
