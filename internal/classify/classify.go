// Package classify turns a device's advertisement, metadata and vendor into a
// display name and an icon tag.
//
// Classification is an ordered list of rules; the first rule whose predicate
// matches produces the result. All keyword matching is case-insensitive
// substring matching against fixed hint lists, so false positives such as
// "cam" inside "campus" are expected and tolerated.
package classify

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Input is everything known about a device at classification time
type Input struct {
	Name            string
	Category        string
	HostName        string
	Port            int
	Addresses       []string
	Metadata        map[string]string
	HardwareAddress string
	Vendor          string
}

// Result is a classification
type Result struct {
	DisplayName string `json:"display_name" yaml:"display_name"`
	Icon        Icon   `json:"icon" yaml:"icon"`
}

// Fallback is an optional classifier consulted only when the rule set is
// inconclusive. It returns false to decline.
type Fallback interface {
	Classify(in Input) (Result, bool)
}

// FallbackFunc adapts a function to the Fallback interface
type FallbackFunc func(in Input) (Result, bool)

// Classify calls f(in)
func (f FallbackFunc) Classify(in Input) (Result, bool) {
	return f(in)
}

// Engine runs the rule set. The zero value is ready to use.
type Engine struct {
	// Rules overrides DefaultRules when non-empty
	Rules []Rule

	// Fallback is consulted when the matching rule produced IconUnknown
	Fallback Fallback
}

// Classify returns the display name and icon for a device
func (e *Engine) Classify(in Input) Result {
	rules := DefaultRules
	if e != nil && len(e.Rules) > 0 {
		rules = e.Rules
	}

	f := newFacts(in)
	result := Result{DisplayName: f.hostLabel, Icon: IconUnknown}
	for _, rule := range rules {
		if rule.Match(f) {
			result = rule.Produce(f)
			break
		}
	}

	if result.Icon == IconUnknown && e != nil && e.Fallback != nil {
		if fb, ok := e.Fallback.Classify(in); ok {
			if fb.DisplayName == "" {
				fb.DisplayName = result.DisplayName
			}
			if fb.Icon == "" {
				fb.Icon = IconUnknown
			}
			return fb
		}
	}
	return result
}

// Classify runs the default rule set without a fallback
func Classify(in Input) Result {
	var e Engine
	return e.Classify(in)
}

// Facts is the normalized view of an Input that rules match against
type Facts struct {
	Input

	name     string // lower-cased fields
	host     string
	category string
	vendor   string

	model     string
	friendly  string
	product   string
	note      string
	hostLabel string
}

func newFacts(in Input) *Facts {
	f := &Facts{
		Input:    in,
		name:     strings.ToLower(in.Name),
		host:     strings.ToLower(in.HostName),
		category: strings.ToLower(in.Category),
		vendor:   strings.ToLower(in.Vendor),
	}
	f.model = f.meta("md")
	if f.model == "" {
		f.model = f.meta("model")
	}
	if f.model == "" {
		f.model = f.meta("ty")
	}
	f.friendly = f.meta("fn")
	f.product = f.meta("product")
	f.note = f.meta("note")
	f.hostLabel = HostLabel(in.HostName, in.Name)
	return f
}

// meta returns a trimmed metadata value, matching the key exactly first and
// then case-insensitively
func (f *Facts) meta(key string) string {
	if v, ok := f.Metadata[key]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range f.Metadata {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (f *Facts) hasMeta(key string) bool {
	if _, ok := f.Metadata[key]; ok {
		return true
	}
	for k := range f.Metadata {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func (f *Facts) guessIcon() Icon {
	return GuessIcon(f.Category, f.Vendor, f.Name, f.model)
}

// vendorOr returns the correlated vendor, or def when there is none
func (f *Facts) vendorOr(def string) string {
	if v := strings.TrimSpace(f.Vendor); v != "" {
		return v
	}
	return def
}

// hintLabel finds a hint in the vendor, then the name, then the host. A
// vendor match returns the vendor as reported; name and host matches return
// the hint's display spelling.
func (f *Facts) hintLabel(hints []string) (string, bool) {
	if matchHint(f.vendor, hints) != "" {
		return strings.TrimSpace(f.Vendor), true
	}
	if h := matchHint(f.name, hints); h != "" {
		return labelFor(h), true
	}
	if h := matchHint(f.host, hints); h != "" {
		return labelFor(h), true
	}
	return "", false
}

// HostLabel returns the first label of a host name, or fallback when the host
// name is empty
func HostLabel(hostName, fallback string) string {
	hostName = strings.TrimSuffix(strings.TrimSpace(hostName), ".")
	if hostName == "" {
		return fallback
	}
	if i := strings.IndexByte(hostName, '.'); i > 0 {
		return hostName[:i]
	}
	return hostName
}

// CategoryWords turns a service category into title-cased words
// ("_ftp._tcp" → "Ftp", "_home-assistant._tcp" → "Home-Assistant")
func CategoryWords(category string) string {
	s := strings.ReplaceAll(category, ".", "")
	s = strings.ReplaceAll(s, "_tcp", "")
	s = strings.ReplaceAll(s, "_udp", "")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.Und).String(s)
}
