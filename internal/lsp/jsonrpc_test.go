package lsp

import (
	"bufio"
	"bytes"
	"testing"
)

func TestJSONRPCFramingMultipleMessages(t *testing.T) {
	var buf bytes.Buffer
	msg1 := []byte(`{"jsonrpc":"2.0","method":"one"}`)
	msg2 := []byte(`{"jsonrpc":"2.0","method":"two"}`)

	if err := writeMessage(&buf, msg1); err != nil {
		t.Fatalf("write message 1: %v", err)
	}
	if err := writeMessage(&buf, msg2); err != nil {
		t.Fatalf("write message 2: %v", err)
	}

	reader := bufio.NewReader(bytes.NewReader(buf.Bytes()))
	got1, err := readMessage(reader)
	if err != nil {
		t.Fatalf("read message 1: %v", err)
	}
	got2, err := readMessage(reader)
	if err != nil {
		t.Fatalf("read message 2: %v", err)
	}

	if string(got1) != string(msg1) {
		t.Fatalf("unexpected message 1: %s", string(got1))
	}
	if string(got2) != string(msg2) {
		t.Fatalf("unexpected message 2: %s", string(got2))
	}
}

func TestReadMessageMissingContentLength(t *testing.T) {
	reader := bufio.NewReader(bytes.NewReader([]byte("X-Header: 1\r\n\r\n{}")))
	if _, err := readMessage(reader); err == nil {
		t.Fatal("expected error for missing Content-Length")
	}
}

func TestApplyChanges(t *testing.T) {
	text := "one\ntwo\n"
	got := applyChanges(text, []textDocumentContentChangeEvent{
		{
			Range: &lspRange{
				Start: position{Line: 1, Character: 0},
				End:   position{Line: 1, Character: 3},
			},
			Text: "TWO",
		},
	})
	if got != "one\nTWO\n" {
		t.Fatalf("applyChanges = %q", got)
	}

	// A rangeless change replaces the whole document.
	got = applyChanges(text, []textDocumentContentChangeEvent{{Text: "fresh"}})
	if got != "fresh" {
		t.Fatalf("full replace = %q", got)
	}
}

func TestOffsetForPositionUTF16(t *testing.T) {
	// The emoji occupies two UTF-16 code units.
	text := "a\U0001F600b"
	if got := offsetForPosition(text, position{Line: 0, Character: 3}); got != 5 {
		t.Fatalf("offset after surrogate pair = %d, want 5", got)
	}
	if got := offsetForPosition(text, position{Line: 5, Character: 0}); got != len(text) {
		t.Fatalf("offset past end = %d, want %d", got, len(text))
	}
}
