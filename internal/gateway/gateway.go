// Package gateway is the operator-facing side of a run: the per-step
// confirmation prompt and the rendered report.
package gateway

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Messenger writes operator-facing text.
type Messenger interface {
	Send(text string) error
}

// Console reads confirmations from in and writes prompts to out.
type Console struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Confirm asks whether to run capability with input. Only "n" or "N"
// declines; anything else, including an empty line or a closed input,
// confirms.
func (c *Console) Confirm(_ context.Context, capability, input string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "Execute %s: `%s`? (Y/n): ", capability, input)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
	}

	answer := strings.TrimSpace(line)
	if answer == "n" || answer == "N" {
		fmt.Fprintf(c.out, "Skipped %s\n\n", capability)
		return false
	}
	return true
}

func (c *Console) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, text)
	return err
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
