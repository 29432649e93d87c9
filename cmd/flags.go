// cmd/flags.go
package cmd

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// flagName turns a field key into its flag name (no_4_passing -> no-4-passing)
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// flagUsage describes a field's flag including unit and bounds
func flagUsage(f soil.Field) string {
	label := f.DisplayLabel()
	if f.HasMax {
		return fmt.Sprintf("%s [%s..%s]", label, f.FormatValue(f.Min), f.FormatValue(f.Max))
	}
	return fmt.Sprintf("%s [>= %s]", label, f.FormatValue(f.Min))
}

// classValue is a pflag.Value restricted to a variant's soil classes
type classValue struct {
	options []string
	value   string
}

func (c *classValue) String() string { return c.value }

func (c *classValue) Set(s string) error {
	s = strings.TrimSpace(s)
	for _, opt := range c.options {
		if strings.EqualFold(opt, s) {
			c.value = opt
			return nil
		}
	}
	return fmt.Errorf("%w %q (choose one of: %s)", soil.ErrUnknownSoilClass, s, strings.Join(c.options, ", "))
}

func (c *classValue) Type() string { return "class" }

// Output formats
const (
	outputText = "text"
	outputJSON = "json"
)

// outputValue is a pflag.Value accepting text or json
type outputValue string

func (o *outputValue) String() string { return string(*o) }

func (o *outputValue) Set(s string) error {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case outputText, outputJSON:
		*o = outputValue(s)
		return nil
	}
	return fmt.Errorf("invalid output format %q (use text or json)", s)
}

func (o *outputValue) Type() string { return "format" }

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
