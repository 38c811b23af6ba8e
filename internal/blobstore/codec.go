package blobstore

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeDocument renders v as indented JSON with a trailing newline.
func EncodeDocument(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(b, '\n'), nil
}

func DecodeDocument(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// EncodeLines writes one compact JSON value per line, each line terminated
// by '\n'. An empty list encodes to empty content.
func EncodeLines[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	for i, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode line %d: %w", i+1, err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	if buf.Len() == 0 {
		return []byte{}, nil
	}
	return buf.Bytes(), nil
}

// DecodeLines is the inverse of EncodeLines. Blank lines are skipped, so a
// missing final newline and an empty file are both fine.
func DecodeLines[T any](data []byte) ([]T, error) {
	out := []T{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var r T
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode line %d: %w", line, err)
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan lines: %w", err)
	}
	return out, nil
}
