package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-postgrest-client/internal/wire"
)

func marshalIndent(v any) ([]byte, error) {
	data, err := wire.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func printJSON(w io.Writer, v any) error {
	data, err := marshalIndent(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printRows[T any](w io.Writer, rows []T) error {
	entries := make([][]byte, 0, len(rows))
	for _, row := range rows {
		data, err := marshalIndent(row)
		if err != nil {
			return err
		}
		entries = append(entries, data)
	}
	return printJSONArray(w, entries)
}

func printJSONArray(w io.Writer, entries [][]byte) error {
	if _, err := fmt.Fprintln(w, "["); err != nil {
		return err
	}
	for i, entry := range entries {
		if i > 0 {
			if _, err := fmt.Fprintln(w, ","); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, string(entry)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "]")
	return err
}
