// Package cli is an interactive completion prompt for trying the engine
// against snippets of Java source.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tranleduy2000/javaide-sub031/pkg/suggest"
)

// InputHandler reads source snippets from stdin and prints the suggestions
// for the end of each snippet. A literal `\n` in the input stands for a
// line break and `|` marks the cursor when it is not at the end.
//
// Commands:
//
//	:N       accept suggestion N of the last list
//	:status  print engine counters
type InputHandler struct {
	completer    suggest.Engine
	suggestLimit int
	showDiff     bool
	requestCount int

	lastText  string
	lastItems []suggest.SuggestionItem
}

func NewInputHandler(completer suggest.Engine, limit int, showDiff bool) *InputHandler {
	return &InputHandler{
		completer:    completer,
		suggestLimit: limit,
		showDiff:     showDiff,
	}
}

// Start runs the prompt on stdin until EOF.
func (h *InputHandler) Start() error {
	log.Print("javacomplete CLI")
	log.Print(`type Java source and press Enter ("\n" for line breaks, "|" for the cursor, ":N" to accept):`)
	err := h.Run(os.Stdin)
	if err == io.EOF {
		return nil
	}
	return err
}

// Run processes lines from r until it is exhausted.
func (h *InputHandler) Run(r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if line = strings.TrimRight(line, "\r\n"); strings.TrimSpace(line) != "" {
			h.handleInput(line)
		}
		if err != nil {
			return err
		}
	}
}

func (h *InputHandler) handleInput(line string) {
	if cmd, ok := strings.CutPrefix(strings.TrimSpace(line), ":"); ok {
		h.handleCommand(cmd)
		return
	}
	text, cursor := parseSnippet(line)
	h.complete(text, cursor)
}

// parseSnippet expands `\n` and finds the cursor marker.
func parseSnippet(line string) (string, int) {
	text := strings.ReplaceAll(line, `\n`, "\n")
	if i := strings.LastIndexByte(text, '|'); i >= 0 {
		return text[:i] + text[i+1:], i
	}
	return text, len(text)
}

func (h *InputHandler) handleCommand(cmd string) {
	if cmd == "status" {
		log.Printf("state: %s", h.completer.State())
		printStats(h.completer.Stats())
		return
	}
	n, err := strconv.Atoi(cmd)
	if err != nil {
		log.Errorf("Unknown command: %s", cmd)
		return
	}
	text, diff, err := h.accept(n)
	if err != nil {
		log.Error(err)
		return
	}
	if h.showDiff && diff != "" {
		printDiff(diff)
	}
	log.Print(renderSource(text))
}

func (h *InputHandler) complete(text string, cursor int) {
	h.requestCount++
	start := time.Now()
	items, ctx := h.completer.Complete(text, cursor, h.suggestLimit)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for %s, partial %q", elapsed, ctx.Kind, ctx.Partial)

	h.lastText = text
	h.lastItems = items
	if len(items) == 0 {
		log.Warnf("No suggestions (%s)", ctx.Kind)
		return
	}
	log.Printf("Found %d suggestions (%s):", len(items), ctx.Kind)
	for i, it := range items {
		log.Print(renderItem(i+1, it))
	}
}

// accept applies suggestion n (1-based) of the last list and returns the
// new text with the unified diff of its import edit, if any.
func (h *InputHandler) accept(n int) (string, string, error) {
	if n < 1 || n > len(h.lastItems) {
		return "", "", fmt.Errorf("no suggestion %d, last list has %d", n, len(h.lastItems))
	}
	acc, _, err := h.completer.AcceptID(h.lastText, h.lastItems[n-1].ID)
	if err != nil {
		return "", "", err
	}
	var diff string
	if acc.Import != nil {
		if diff, err = acc.Import.Diff(h.lastText, "source"); err != nil {
			return "", "", err
		}
	}
	text := acc.Apply(h.lastText)
	h.lastText = text
	h.lastItems = nil
	return text, diff, nil
}
