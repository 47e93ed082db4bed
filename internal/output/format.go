// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"chaintodo/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// NotConnected is shown in place of an account.
	NotConnected = "not connected"
)

// FormatTask formats a task line.
// Format: "{INDEX:>4}  [ ] {TEXT}\n", with [x] for completed tasks.
func FormatTask(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", task.Index, Checkbox(task.Completed), NormalizeText(task.Text))
}

// FormatHeader formats the account header printed above a task list.
func FormatHeader(w io.Writer, account string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, ShortAccount(account))
	fmt.Fprintln(w, ListSeparator)
}

// Checkbox renders a completion flag.
func Checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// ShortAccount abbreviates a 42-character address to its first four and
// last five characters. Shorter identities are shown whole.
func ShortAccount(account string) string {
	if account == "" {
		return NotConnected
	}
	if len(account) < 42 {
		return account
	}
	return account[:4] + "..." + account[37:]
}

// NormalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func NormalizeText(text string) string {
	// Replace newlines with spaces
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
