// Package output provides output formatting for hapi-core commands.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// Format is the command output format
type Format string

const (
	// FormatPlain human-readable output (default)
	FormatPlain Format = "plain"
	// FormatJSON JSON envelope {"data": ...}
	FormatJSON Format = "json"
)

// ParseFormat parses --output; "text" is accepted as plain
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain", "text":
		return FormatPlain, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Formatter writes command results
type Formatter struct {
	format    Format
	writer    io.Writer // results
	logWriter io.Writer // errors and notices
	silent    bool
}

// NewFormatter creates a formatter
func NewFormatter(format Format, writer io.Writer) *Formatter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Formatter{
		format:    format,
		writer:    writer,
		logWriter: os.Stderr,
	}
}

// SetLogWriter sets the notice and error destination (stderr by default)
func (f *Formatter) SetLogWriter(writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	f.logWriter = writer
}

// SetSilent suppresses result output
func (f *Formatter) SetSilent(silent bool) {
	f.silent = silent
}

// Format returns the active format
func (f *Formatter) Format() Format {
	return f.format
}

// Envelope is the JSON output shape
type Envelope struct {
	Data any `json:"data"`
}

// Print writes a command result
func (f *Formatter) Print(data any) error {
	if f.silent {
		return nil
	}
	switch f.format {
	case FormatJSON:
		return f.printJSON(Envelope{Data: data})
	default:
		return f.printPlain(data)
	}
}

func (f *Formatter) printJSON(data any) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := fmt.Fprintln(f.writer, string(out)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// printPlain prints scalars and transaction hashes bare, records as aligned key/value rows
func (f *Formatter) printPlain(data any) error {
	switch v := data.(type) {
	case types.Tx:
		return f.printLine(v.Hash)
	case string, fmt.Stringer:
		return f.printLine(fmt.Sprint(v))
	case int, int64, uint, uint8, uint64:
		return f.printLine(fmt.Sprintf("%d", v))
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	raw = bytes.TrimSpace(raw)

	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	defer func() {
		_ = tw.Flush()
	}()

	if len(raw) > 0 && raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("decode output: %w", err)
		}
		for i, item := range items {
			if i > 0 {
				if _, err := fmt.Fprintln(tw); err != nil {
					return fmt.Errorf("write separator: %w", err)
				}
			}
			if err := printRecord(tw, item); err != nil {
				return err
			}
		}
		return nil
	}
	return printRecord(tw, raw)
}

func (f *Formatter) printLine(s string) error {
	if _, err := fmt.Fprintln(f.writer, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// PrintError writes "Error: <reason>"
func (f *Formatter) PrintError(err error) {
	_, _ = fmt.Fprintf(f.logWriter, "Error: %v\n", err)
}

// PrintInfo writes a notice
func (f *Formatter) PrintInfo(message string) {
	if f.silent {
		return
	}
	_, _ = fmt.Fprintln(f.logWriter, message)
}

// printRecord writes one JSON object as rows, keeping field order
func printRecord(tw *tabwriter.Writer, raw json.RawMessage) error {
	fields, err := orderedFields(raw)
	if err != nil {
		if _, err := fmt.Fprintln(tw, formatValue(raw)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		return nil
	}
	for _, field := range fields {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", field.key, formatValue(field.value)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

type field struct {
	key   string
	value json.RawMessage
}

func orderedFields(raw json.RawMessage) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("not an object")
	}
	var fields []field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, value: value})
	}
	return fields, nil
}

// formatValue unquotes JSON strings and prints everything else as JSON
func formatValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
