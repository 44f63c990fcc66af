package commands

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptPassword asks for the extranet password on the terminal, echoing asterisks
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password configured and stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// Fallback to hidden input if we can't set raw mode
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(password), err
	}
	defer func() {
		if err := term.Restore(fd, oldState); err != nil {
			fmt.Fprintf(os.Stderr, "Error restoring terminal: %v\n", err)
		}
	}()

	var password []rune
	reader := bufio.NewReader(os.Stdin)
	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			fmt.Fprint(os.Stderr, "\r\n")
			return string(password), nil
		}

		switch char {
		case '\n', '\r': // Enter key
			fmt.Fprint(os.Stderr, "\r\n")
			return string(password), nil
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Fprint(os.Stderr, "\b \b")
			}
		case 3: // Ctrl+C
			fmt.Fprint(os.Stderr, "\r\n")
			return "", fmt.Errorf("aborted")
		default:
			if char >= 32 && char != 127 {
				password = append(password, char)
				fmt.Fprint(os.Stderr, "*")
			}
		}
	}
}
