package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"
)

func TestTerminalPasswordReaderReadsPipedLines(t *testing.T) {
	stdinReader, stdinWriter, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() unexpected error: %v", err)
	}
	t.Cleanup(func() {
		_ = stdinReader.Close()
	})

	if _, err := stdinWriter.WriteString("first-secret\r\nsecond-secret\n"); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
	_ = stdinWriter.Close()

	var prompts bytes.Buffer
	read := TerminalPasswordReader(stdinReader, &prompts)

	for _, want := range []string{"first-secret", "second-secret"} {
		got, err := read("Password: ")
		if err != nil {
			t.Fatalf("read() unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("read() = %q, want %q", got, want)
		}
	}
	if _, err := read("Password: "); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected EOF after input ends, got %v", err)
	}
	if prompts.String() != "Password: Password: Password: " {
		t.Fatalf("unexpected prompts %q", prompts.String())
	}
}
