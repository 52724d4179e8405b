// Package ocr extracts text from sticker images so it can seed tags.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode"
)

var ErrUnavailable = errors.New("text recognition unavailable")

var (
	lookPathFn = exec.LookPath
	runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).Output()
	}
)

// Recognizer turns an image file into plain text.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// Tesseract runs the tesseract command line tool.
type Tesseract struct {
	Command   string
	Languages string
}

func (t Tesseract) Recognize(ctx context.Context, path string) (string, error) {
	cmd := t.Command
	if cmd == "" {
		cmd = "tesseract"
	}
	bin, err := lookPathFn(cmd)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found", ErrUnavailable, cmd)
	}

	args := []string{path, "stdout"}
	if t.Languages != "" {
		args = append(args, "-l", t.Languages)
	}
	out, err := runCommand(ctx, bin, args...)
	if err != nil {
		return "", fmt.Errorf("ocr %s: %w", path, err)
	}
	return string(out), nil
}

// Keywords splits recognised text into candidate tags: one per line, with
// inner whitespace collapsed and lines without a letter or digit dropped.
// Repeats keep their first position.
func Keywords(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, line := range strings.Split(text, "\n") {
		k := strings.Join(strings.Fields(line), " ")
		if k == "" || seen[k] || !strings.ContainsFunc(k, isWordRune) {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
