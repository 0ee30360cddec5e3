package profile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dpup/vprofile/internal/logging"
	"github.com/dpup/vprofile/internal/vector"
)

// MaxPrecision is the largest number of decimal places accepted for output
const MaxPrecision = 32

// ErrOutput wraps failures writing to the output destination
var ErrOutput = errors.New("unable to write output")

// Column is an attribute column printed after the fixed fields
type Column struct {
	Name   string
	Quoted bool
}

// AttributeLookup fetches the attribute row of a category.
// found is false when no row matches.
type AttributeLookup interface {
	Row(ctx context.Context, cat int) (values []string, found bool, err error)
}

// FormatConfig decides the shape of every output line. It is resolved once
// per run.
type FormatConfig struct {
	Separator string
	Precision int
	WithZ     bool
	Header    bool
	// Quote wraps values of quoted columns, empty disables quoting
	Quote string
	// Columns is nil when the input has no attribute table
	Columns []Column
}

// Validate checks the configuration
func (c FormatConfig) Validate() error {
	if c.Separator == "" {
		return errors.New("separator must not be empty")
	}
	if c.Precision < 0 || c.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d, got %d", MaxPrecision, c.Precision)
	}
	return nil
}

// Fields returns the header names in output order
func (c FormatConfig) Fields() []string {
	fields := []string{"Number", "Distance"}
	if c.WithZ {
		fields = append(fields, "Z")
	}
	for _, col := range c.Columns {
		fields = append(fields, col.Name)
	}
	return fields
}

// ParseSeparator resolves a separator name (pipe, comma, space, tab,
// newline) or returns the literal with \t and \n escapes expanded
func ParseSeparator(s string) string {
	switch s {
	case "pipe":
		return "|"
	case "comma":
		return ","
	case "space":
		return " "
	case "tab", `\t`:
		return "\t"
	case "newline", `\n`:
		return "\n"
	default:
		return strings.NewReplacer(`\t`, "\t", `\n`, "\n").Replace(s)
	}
}

// Formatter prints sorted records, joining attribute rows by category
type Formatter struct {
	cfg   FormatConfig
	attrs AttributeLookup
	out   *bufio.Writer
}

// NewFormatter returns a formatter writing to w. attrs may be nil, in which
// case every attribute column is left empty.
func NewFormatter(w io.Writer, cfg FormatConfig, attrs AttributeLookup) *Formatter {
	return &Formatter{cfg: cfg, attrs: attrs, out: bufio.NewWriter(w)}
}

// WriteHeader prints the header line when enabled
func (f *Formatter) WriteHeader() error {
	if !f.cfg.Header {
		return nil
	}
	return f.writeLine(strings.Join(f.cfg.Fields(), f.cfg.Separator))
}

// WriteRecords prints one line per record, numbered from 1
func (f *Formatter) WriteRecords(ctx context.Context, records []Record) error {
	for i, r := range records {
		if err := f.writeLine(f.formatRecord(ctx, i+1, r)); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return nil
}

func (f *Formatter) formatRecord(ctx context.Context, seq int, r Record) string {
	fields := make([]string, 0, 3+len(f.cfg.Columns))
	fields = append(fields, strconv.Itoa(seq), strconv.FormatFloat(r.Distance, 'f', f.cfg.Precision, 64))
	if f.cfg.WithZ {
		fields = append(fields, strconv.FormatFloat(r.Z, 'f', f.cfg.Precision, 64))
	}
	if f.cfg.Columns == nil {
		return strings.Join(fields, f.cfg.Separator)
	}

	values := f.lookup(ctx, r.Category)
	for i, col := range f.cfg.Columns {
		var v string
		if i < len(values) {
			v = values[i]
		}
		if values != nil && col.Quoted {
			v = f.quote(v)
		}
		fields = append(fields, v)
	}
	return strings.Join(fields, f.cfg.Separator)
}

// lookup returns nil when the row is missing or cannot be read
func (f *Formatter) lookup(ctx context.Context, cat int) []string {
	if f.attrs == nil || cat == vector.NoCategory {
		return nil
	}
	values, found, err := f.attrs.Row(ctx, cat)
	if err != nil {
		logging.Warnw(ctx, "Unable to select attributes, leaving columns empty", "cat", cat, "error", err)
		return nil
	}
	if !found {
		logging.Debugw(ctx, "No attribute row for category", "cat", cat)
		return nil
	}
	return values
}

func (f *Formatter) quote(v string) string {
	if f.cfg.Quote == "" {
		return v
	}
	return f.cfg.Quote + strings.ReplaceAll(v, f.cfg.Quote, f.cfg.Quote+f.cfg.Quote) + f.cfg.Quote
}

// writeLine writes a complete line and flushes it
func (f *Formatter) writeLine(line string) error {
	if _, err := f.out.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}
	if err := f.out.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}
	return nil
}
