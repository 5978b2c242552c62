package correlate

import (
	"strings"
)

// ouiLength is the number of hex characters in an organizationally unique
// identifier
const ouiLength = 6

// vendors maps OUI prefixes to manufacturer names
var vendors = map[string]string{
	// Apple
	"0016CB": "Apple",
	"001451": "Apple",
	"001CB3": "Apple",
	"002332": "Apple",
	"002436": "Apple",
	"002500": "Apple",
	"00254B": "Apple",
	"3451C9": "Apple",
	"7C6D62": "Apple",
	"A4C361": "Apple",
	"B853AC": "Apple",
	"BCEC5D": "Apple",
	"F0DCE2": "Apple",

	// Single-board computers and networking
	"B827EB": "Raspberry Pi Foundation",
	"DCA632": "Raspberry Pi Foundation",
	"E45F01": "Raspberry Pi Foundation",
	"F4F5E8": "Ubiquiti",
	"FC9FB6": "Ubiquiti",
	"80EA96": "Ubiquiti",
	"F0D1A9": "Cisco",
	"001E14": "Cisco",
	"0019E8": "Cisco",
	"D4E8B2": "Netgear",
	"A0040A": "Netgear",
	"10DA43": "TP-Link",
	"50C7BF": "TP-Link",

	// Printers
	"3C5A37": "Hewlett Packard",
	"A8667F": "Hewlett Packard",
	"00236C": "Canon",
	"002583": "Brother",
	"008004": "Epson",

	// Other
	"983B16": "Intel",
	"000C29": "VMware",
	"0050F2": "Microsoft",
	"00155D": "Microsoft",
	"18B169": "Synology",
	"001132": "Synology",
}

// NormalizeHardwareAddress returns the address as upper-case hex with
// separators removed. Single-digit octets ("0:11:2:..." as printed by
// macOS arp) are zero-padded first.
func NormalizeHardwareAddress(hw string) string {
	hw = strings.TrimSpace(hw)
	if hw == "" {
		return ""
	}

	var octets []string
	switch {
	case strings.Contains(hw, ":"):
		octets = strings.Split(hw, ":")
	case strings.Contains(hw, "-"):
		octets = strings.Split(hw, "-")
	default:
		return strings.ToUpper(strings.ReplaceAll(hw, ".", ""))
	}

	var b strings.Builder
	for _, octet := range octets {
		if len(octet) == 1 {
			b.WriteByte('0')
		}
		b.WriteString(octet)
	}
	return strings.ToUpper(b.String())
}

// FormatHardwareAddress returns the canonical colon-separated lower-case
// form ("3c:52:82:aa:bb:cc"). Addresses that do not normalize to an even
// number of hex characters are returned lower-cased and otherwise unchanged.
func FormatHardwareAddress(hw string) string {
	hex := NormalizeHardwareAddress(hw)
	if hex == "" || len(hex)%2 != 0 {
		return strings.ToLower(hw)
	}

	parts := make([]string, 0, len(hex)/2)
	for i := 0; i < len(hex); i += 2 {
		parts = append(parts, hex[i:i+2])
	}
	return strings.ToLower(strings.Join(parts, ":"))
}

// OUI returns the first six hex characters of a hardware address, or "" when
// the address is too short
func OUI(hw string) string {
	hex := NormalizeHardwareAddress(hw)
	if len(hex) < ouiLength {
		return ""
	}
	return hex[:ouiLength]
}

// VendorFor returns the manufacturer registered for the address prefix, or ""
// when the prefix is unknown
func VendorFor(hw string) string {
	return vendorFrom(vendors, hw)
}

func vendorFrom(table map[string]string, hw string) string {
	oui := OUI(hw)
	if oui == "" {
		return ""
	}
	return table[oui]
}
