package txtrecord

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FlagBit labels a single bit of a hex bitmask value
type FlagBit struct {
	Bit   uint   `yaml:"bit" json:"bit"`
	Label string `yaml:"label" json:"label"`
}

// DefaultFlagBits is the bit table applied to "sf" and "flags" values.
// Bit meanings differ between services; this table is a best guess.
var DefaultFlagBits = []FlagBit{
	{Bit: 0, Label: "Ready"},
	{Bit: 1, Label: "Supports Pairing"},
	{Bit: 2, Label: "Configured"},
	{Bit: 3, Label: "Supports Remote Access"},
}

// flagKeys are the keys whose values are decoded as hex bitmasks
var flagKeys = map[string]bool{
	"sf":    true,
	"flags": true,
}

// Interpretation is a readable rendering of a single TXT entry
type Interpretation struct {
	Key   string
	Value string
}

// Field is an interpreted TXT entry with its category and raw form
type Field struct {
	RawKey   string   `json:"raw_key" yaml:"raw_key"`
	RawValue string   `json:"raw_value" yaml:"raw_value"`
	Key      string   `json:"key" yaml:"key"`
	Value    string   `json:"value" yaml:"value"`
	Category Category `json:"category" yaml:"category"`
}

// Interpreter renders TXT entries. The zero value is not usable; use New.
type Interpreter struct {
	flagBits []FlagBit
}

// Option configures an Interpreter
type Option func(*Interpreter)

// WithFlagBits replaces the bit table used for hex bitmask keys
func WithFlagBits(bits []FlagBit) Option {
	return func(i *Interpreter) {
		if len(bits) == 0 {
			return
		}
		sorted := make([]FlagBit, len(bits))
		copy(sorted, bits)
		sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Bit < sorted[b].Bit })
		i.flagBits = sorted
	}
}

// New creates an Interpreter with the default tables
func New(opts ...Option) *Interpreter {
	i := &Interpreter{flagBits: DefaultFlagBits}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

var defaultInterpreter = New()

// Interpret returns the readable key and value for a TXT entry using the
// default tables
func Interpret(key, value string) Interpretation {
	return defaultInterpreter.Interpret(key, value)
}

// Describe interprets every entry of a TXT map using the default tables
func Describe(metadata map[string]string) []Field {
	return defaultInterpreter.Describe(metadata)
}

// Interpret returns the readable key and value for a TXT entry
func (i *Interpreter) Interpret(key, value string) Interpretation {
	return Interpretation{
		Key:   ReadableKey(key),
		Value: i.InterpretValue(key, value),
	}
}

// InterpretValue renders a TXT value. See the package documentation for
// the order in which rules are applied.
func (i *Interpreter) InterpretValue(key, value string) string {
	lowerKey := strings.ToLower(key)

	if value == "" {
		return EmptyValue
	}

	if labels, ok := booleanKeys[lowerKey]; ok {
		if b, ok := parseBool(value); ok {
			if b {
				return labels.True
			}
			return labels.False
		}
		return value
	}

	if label, ok := lookupEnum(lowerKey, value); ok {
		return label
	}

	if flagKeys[lowerKey] {
		return i.decodeFlags(value)
	}

	if mapped, ok := mapList(lowerKey, value); ok {
		return mapped
	}

	return value
}

// decodeFlags renders a hex bitmask as "<raw> (<label>, ...)"
func (i *Interpreter) decodeFlags(value string) string {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(value), "0x"), "0X")
	mask, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return value
	}

	var labels []string
	for _, fb := range i.flagBits {
		if fb.Bit < 64 && mask&(1<<fb.Bit) != 0 {
			labels = append(labels, fb.Label)
		}
	}
	if len(labels) == 0 {
		return value
	}
	return fmt.Sprintf("%s (%s)", value, strings.Join(labels, ", "))
}

// Describe interprets every entry of a TXT map. Fields are ordered by
// category, then by key.
func (i *Interpreter) Describe(metadata map[string]string) []Field {
	fields := make([]Field, 0, len(metadata))
	for key, value := range metadata {
		in := i.Interpret(key, value)
		fields = append(fields, Field{
			RawKey:   key,
			RawValue: value,
			Key:      in.Key,
			Value:    in.Value,
			Category: Categorize(key),
		})
	}
	sort.Slice(fields, func(a, b int) bool {
		if fields[a].Category != fields[b].Category {
			return fields[a].Category < fields[b].Category
		}
		return fields[a].RawKey < fields[b].RawKey
	})
	return fields
}
