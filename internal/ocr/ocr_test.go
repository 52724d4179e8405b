package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubCommands(t *testing.T, look func(string) (string, error), run func(context.Context, string, ...string) ([]byte, error)) {
	t.Helper()
	oldLook, oldRun := lookPathFn, runCommand
	t.Cleanup(func() {
		lookPathFn = oldLook
		runCommand = oldRun
	})
	lookPathFn = look
	runCommand = run
}

func TestTesseractRecognize(t *testing.T) {
	var gotName string
	var gotArgs []string
	stubCommands(t,
		func(name string) (string, error) { return "/usr/bin/" + name, nil },
		func(_ context.Context, name string, args ...string) ([]byte, error) {
			gotName, gotArgs = name, args
			return []byte("hello\n"), nil
		},
	)

	text, err := Tesseract{Languages: "eng+chi_sim"}.Recognize(context.Background(), "/tmp/a.png")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", text)
	assert.Equal(t, "/usr/bin/tesseract", gotName)
	assert.Equal(t, []string{"/tmp/a.png", "stdout", "-l", "eng+chi_sim"}, gotArgs)
}

func TestTesseractMissingBinary(t *testing.T) {
	stubCommands(t,
		func(string) (string, error) { return "", errors.New("not found") },
		func(context.Context, string, ...string) ([]byte, error) {
			t.Fatal("must not run")
			return nil, nil
		},
	)

	_, err := Tesseract{}.Recognize(context.Background(), "x.png")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestKeywords(t *testing.T) {
	text := "  Good   morning \n\n!!!\nGood morning\n早上好\n\f"
	assert.Equal(t, []string{"Good morning", "早上好"}, Keywords(text))
	assert.Empty(t, Keywords(""))
}
