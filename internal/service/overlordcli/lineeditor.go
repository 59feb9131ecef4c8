package overlordcli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	// historyFileName is kept in the user's home directory.
	historyFileName = ".overlord_history"
	// historySize is the number of remembered commands.
	historySize = 500
)

// LineReader supplies user input one line at a time.
type LineReader interface {
	// ReadLine returns the next line, io.EOF when input is exhausted.
	ReadLine(prompt string) (string, error)
	// Close releases the terminal.
	Close() error
}

// lineEditor reads with readline on a terminal and with a scanner otherwise.
type lineEditor struct {
	// rl is set in interactive mode.
	rl *readline.Instance
	// scanner is set when input is piped.
	scanner *bufio.Scanner
}

// NewLineEditor picks readline when stdin is a terminal.
func NewLineEditor() LineReader {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return newScannerEditor(os.Stdin)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyPath(),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return newScannerEditor(os.Stdin)
	}

	return &lineEditor{rl: rl}
}

func newScannerEditor(r io.Reader) *lineEditor {
	return &lineEditor{scanner: bufio.NewScanner(r)}
}

// ReadLine shows prompt only in interactive mode.
func (e *lineEditor) ReadLine(prompt string) (string, error) {
	if e.rl == nil {
		if !e.scanner.Scan() {
			if err := e.scanner.Err(); err != nil {
				return "", err
			}

			return "", io.EOF
		}

		return e.scanner.Text(), nil
	}

	e.rl.SetPrompt(prompt)

	line, err := e.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}

		return "", err
	}

	if trimmed := strings.TrimSpace(line); trimmed != "" {
		e.rl.SaveToHistory(trimmed)
	}

	return line, nil
}

// Close restores the terminal. It is safe to call more than once.
func (e *lineEditor) Close() error {
	if e.rl == nil {
		return nil
	}

	e.rl.Close()
	e.rl = nil

	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, historyFileName)
}
