package main

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var errEmptySecret = errors.New("empty password")

// readSecret reads one secret line. With fromStdin, or when stdin is not a
// terminal, the first line of cmd's input is used; otherwise the user is
// prompted without echo.
func readSecret(cmd *cobra.Command, prompt string, fromStdin bool) (string, error) {
	in := cmd.InOrStdin()
	f, isFile := in.(*os.File)

	if fromStdin || !isFile || !isTerminal(int(f.Fd())) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return nonEmpty(strings.TrimRight(line, "\r\n"))
	}

	cmd.Print(prompt)
	pw, err := readPassword(int(f.Fd()))
	cmd.Println()
	if err != nil {
		return "", err
	}
	return nonEmpty(string(pw))
}

func nonEmpty(s string) (string, error) {
	if s == "" {
		return "", errEmptySecret
	}
	return s, nil
}
