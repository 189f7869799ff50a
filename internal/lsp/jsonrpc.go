package lsp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The base protocol frames every message as MIME-style headers, a blank
// line, then a JSON payload of exactly the announced size. Only
// Content-Length is meaningful; other headers such as Content-Type are
// read and dropped.
func readMessage(r *bufio.Reader) ([]byte, error) {
	size := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		value = strings.TrimSpace(value)
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad Content-Length %q", value)
		}
		size = n
	}
	if size < 0 {
		return nil, fmt.Errorf("message frame carries no Content-Length")
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// writeMessage frames one payload. Callers must serialize writes so the
// header and body of concurrent messages cannot interleave.
func writeMessage(w io.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
