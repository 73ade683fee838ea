package cmd

import (
	"encoding/json"
	"fmt"
	"io"
)

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeText(out io.Writer, text string) error {
	_, err := fmt.Fprintln(out, text)
	return err
}
