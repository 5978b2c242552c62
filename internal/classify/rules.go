package classify

import (
	"fmt"
	"strings"
)

// Rule is one step of the classification chain
type Rule struct {
	Name    string
	Match   func(f *Facts) bool
	Produce func(f *Facts) Result
}

// DefaultRules is the rule chain in evaluation order
var DefaultRules = []Rule{
	{
		Name:  "friendly-name",
		Match: func(f *Facts) bool { return f.friendly != "" },
		Produce: func(f *Facts) Result {
			return Result{DisplayName: f.friendly, Icon: f.guessIcon()}
		},
	},
	{
		Name:  "product-name",
		Match: func(f *Facts) bool { return f.product != "" },
		Produce: func(f *Facts) Result {
			return Result{DisplayName: f.product, Icon: f.guessIcon()}
		},
	},
	{
		Name: "printer",
		Match: func(f *Facts) bool {
			return containsAny(f.category, printerCategories) ||
				(f.model != "" && (f.hasMeta("ty") || f.hasMeta("pdl")))
		},
		Produce: func(f *Facts) Result {
			name := f.model
			if name == "" {
				name = f.vendorOr("Network Printer")
			}
			return Result{DisplayName: name, Icon: IconPrinter}
		},
	},
	{
		Name:  "streaming",
		Match: func(f *Facts) bool { return containsAny(f.category, streamingCategories) },
		Produce: func(f *Facts) Result {
			device := f.meta("am")
			if device == "" {
				device = f.meta("model")
			}
			if device == "" {
				device = f.model
			}
			name := device
			if name == "" {
				name = f.Name
			}

			if containsAny(f.name, tvHints) || containsAny(f.category, tvCategoryHints) ||
				containsAny(strings.ToLower(device), tvHints) {
				return Result{DisplayName: name, Icon: IconTV}
			}
			return Result{DisplayName: name, Icon: IconSpeaker}
		},
	},
	{
		Name: "workstation",
		Match: func(f *Facts) bool {
			return containsAny(f.category, workstationCategories) ||
				containsAny(f.name, desktopNameHints) ||
				containsAny(f.host, desktopNameHints) ||
				containsAny(f.vendor, desktopVendorHints)
		},
		Produce: func(f *Facts) Result {
			name := f.note
			if name == "" {
				name = f.hostLabel
			}
			return Result{DisplayName: name, Icon: IconDesktop}
		},
	},
	{
		Name:  "file-sharing",
		Match: func(f *Facts) bool { return containsAny(f.category, fileSharingCategories) },
		Produce: func(f *Facts) Result {
			if label, ok := f.hintLabel(storageVendorHints); ok {
				return Result{DisplayName: fmt.Sprintf("%s - %s", label, f.hostLabel), Icon: IconDisk}
			}
			return Result{DisplayName: f.hostLabel, Icon: IconDisk}
		},
	},
	{
		Name:  "remote-shell",
		Match: func(f *Facts) bool { return containsAny(f.category, remoteShellCategories) },
		Produce: func(f *Facts) Result {
			if label, ok := f.hintLabel(networkingVendorHints); ok {
				return Result{DisplayName: fmt.Sprintf("%s - %s", label, f.hostLabel), Icon: IconRouter}
			}
			if containsAny(f.name, routerNameHints) || containsAny(f.host, routerNameHints) {
				return Result{DisplayName: fmt.Sprintf("%s - %s", f.vendorOr("Router"), f.hostLabel), Icon: IconRouter}
			}
			return Result{DisplayName: "SSH Server - " + f.hostLabel, Icon: IconServer}
		},
	},
	{
		Name:  "screen-sharing",
		Match: func(f *Facts) bool { return containsAny(f.category, screenSharingCategories) },
		Produce: func(f *Facts) Result {
			return Result{DisplayName: "Screen Sharing - " + f.hostLabel, Icon: IconDesktop}
		},
	},
	{
		Name:  "web",
		Match: func(f *Facts) bool { return containsAny(f.category, webCategories) },
		Produce: func(f *Facts) Result {
			if containsAny(f.name, cameraNameHints) || containsAny(f.host, cameraNameHints) ||
				containsAny(f.vendor, cameraVendorHints) {
				if f.model != "" {
					return Result{DisplayName: f.model, Icon: IconCamera}
				}
				return Result{DisplayName: fmt.Sprintf("%s - %s", f.vendorOr("IP Camera"), f.hostLabel), Icon: IconCamera}
			}
			if label, ok := f.hintLabel(networkingVendorHints); ok {
				return Result{DisplayName: fmt.Sprintf("%s - %s", label, f.hostLabel), Icon: IconRouter}
			}
			if label, ok := f.hintLabel(storageVendorHints); ok {
				return Result{DisplayName: fmt.Sprintf("%s - %s", label, f.hostLabel), Icon: IconDisk}
			}
			return Result{DisplayName: "Web Server - " + f.hostLabel, Icon: IconServer}
		},
	},
	{
		Name:  "home-automation",
		Match: func(f *Facts) bool { return containsAny(f.category, homeCategories) },
		Produce: func(f *Facts) Result {
			name := f.meta("name")
			if name == "" {
				name = f.Name
			}
			return Result{DisplayName: name, Icon: IconHome}
		},
	},
	{
		Name:  "media-server",
		Match: func(f *Facts) bool { return containsAny(f.category, mediaServerCategories) },
		Produce: func(f *Facts) Result {
			return Result{DisplayName: "Plex Media Server", Icon: IconTV}
		},
	},
	{
		Name:  "desktop-vendor",
		Match: func(f *Facts) bool { return containsAny(f.vendor, desktopVendorHints) },
		Produce: func(f *Facts) Result {
			if f.model != "" {
				return Result{DisplayName: f.model, Icon: IconDesktop}
			}
			return Result{DisplayName: fmt.Sprintf("%s Device - %s", f.vendorOr("Apple"), f.hostLabel), Icon: IconDesktop}
		},
	},
	{
		Name:  "printer-vendor",
		Match: func(f *Facts) bool { return containsAny(f.vendor, printerVendorHints) },
		Produce: func(f *Facts) Result {
			if f.model != "" {
				return Result{DisplayName: f.model, Icon: IconPrinter}
			}
			return Result{DisplayName: f.vendorOr("Printer"), Icon: IconPrinter}
		},
	},
	{
		Name:  "networking-vendor",
		Match: func(f *Facts) bool { return containsAny(f.vendor, networkingVendorHints) },
		Produce: func(f *Facts) Result {
			return Result{DisplayName: fmt.Sprintf("%s - %s", f.vendorOr("Network Device"), f.hostLabel), Icon: IconRouter}
		},
	},
	{
		Name:  "last-resort",
		Match: func(f *Facts) bool { return true },
		Produce: func(f *Facts) Result {
			words := CategoryWords(f.Category)
			if words == "" {
				return Result{DisplayName: f.hostLabel, Icon: f.guessIcon()}
			}
			return Result{DisplayName: fmt.Sprintf("%s - %s", words, f.hostLabel), Icon: f.guessIcon()}
		},
	},
}

// RuleNamed returns the default rule with the given name
func RuleNamed(name string) (Rule, bool) {
	for _, r := range DefaultRules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}
