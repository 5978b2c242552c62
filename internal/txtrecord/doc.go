// Package txtrecord interprets the key/value metadata carried in DNS-SD TXT
// records.
//
// Service advertisements describe themselves with short, loosely
// standardised keys ("fn", "md", "pw", "sf", "pdl", ...). This package maps
// those keys to a category, a readable label and a readable value. Every
// function is pure: the same input always yields the same output and nothing
// is cached or logged.
//
// # Categories
//
// Keys are grouped into a fixed set of categories:
//   - Identity: friendly names, models, identifiers
//   - Capabilities: printer features, audio channels, feature lists
//   - Network & Security: access control, passwords, keys, transport
//   - Version & Firmware: firmware, protocol and record versions
//   - Status: activity and state counters, status flags
//   - Configuration: paths, URLs, queues
//   - Other: anything not recognised
//
// # Value interpretation
//
// Values are interpreted in a fixed order, the first step that applies wins:
//  1. An empty value becomes "(empty)".
//  2. Boolean tokens (0/1, true/false, yes/no) on boolean keys.
//  3. Enumerated codes (activity, access level, HomeKit category, ...).
//  4. Hex bitmasks decoded into flag labels.
//  5. Comma separated lists mapped token by token.
//  6. The raw value.
//
// Malformed values never fail; they fall through to the raw value.
//
// # Usage Example
//
//	category := txtrecord.Categorize("pw")        // NetworkSecurity
//	in := txtrecord.Interpret("pw", "1")
//	fmt.Println(in.Key, "=", in.Value)            // Password Required = Password required
//
//	for _, f := range txtrecord.Describe(entry.Metadata) {
//	    fmt.Printf("[%s] %s: %s\n", f.Category, f.Key, f.Value)
//	}
//
// The flag bit labels are not standardised across services, so they can be
// replaced with WithFlagBits when building an Interpreter.
package txtrecord
