package txtrecord

import "strings"

// EmptyValue is returned for keys advertised without a value
const EmptyValue = "(empty)"

// booleanLabels holds the true/false phrasing for boolean keys
type booleanLabels struct {
	True  string
	False string
}

var genericBoolean = booleanLabels{True: "Supported", False: "Not Supported"}

var booleanKeys = map[string]booleanLabels{
	"pw":     {True: "Password required", False: "No password required"},
	"color":  {True: "Color printing supported", False: "Black & white only"},
	"duplex": {True: "Duplex printing supported", False: "Single-sided only"},
	"scan":   {True: "Scanning supported", False: "Not supported"},
	"fax":    {True: "Fax supported", False: "Not supported"},

	"copies":      genericBoolean,
	"collate":     genericBoolean,
	"bind":        genericBoolean,
	"punch":       genericBoolean,
	"sort":        genericBoolean,
	"staple":      genericBoolean,
	"papercustom": genericBoolean,
	"binary":      genericBoolean,
	"tbcp":        genericBoolean,
	"transparent": genericBoolean,
}

// parseBool recognises the boolean spellings used in TXT records
func parseBool(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "t":
		return true, true
	case "0", "false", "no", "f":
		return false, true
	}
	return false, false
}

// enumValues maps coded values to labels, per key. Lookups for
// papermax are case-insensitive, every other key is exact.
var enumValues = map[string]map[string]string{
	"act": {
		"0": "Idle",
		"1": "Active",
		"2": "Processing",
	},
	"acl": {
		"0": "Public (no restrictions)",
		"1": "Password protected",
		"2": "Device pin required",
	},
	"ci": {
		"1":  "Other",
		"2":  "Bridge",
		"3":  "Fan",
		"4":  "Garage Door Opener",
		"5":  "Lightbulb",
		"6":  "Door Lock",
		"7":  "Outlet",
		"8":  "Switch",
		"9":  "Thermostat",
		"10": "Sensor",
		"11": "Security System",
		"12": "Door",
		"13": "Window",
		"14": "Window Covering",
		"15": "Programmable Switch",
		"16": "Range Extender",
		"17": "IP Camera",
		"18": "Video Doorbell",
		"19": "Air Purifier",
		"20": "Heater",
		"21": "Air Conditioner",
		"22": "Humidifier",
		"23": "Dehumidifier",
		"28": "Sprinkler",
		"29": "Faucet",
		"30": "Shower System",
		"31": "Television",
		"32": "Target Remote",
		"33": "Router",
	},
	"et": {
		"0": "No encryption",
		"1": "RSA (Legacy)",
		"2": "FairPlay",
		"3": "MFiSAP",
		"4": "FairPlay SAPv2.5",
	},
	"tp": {
		"UDP": "UDP (User Datagram Protocol)",
		"TCP": "TCP (Transmission Control Protocol)",
	},
	"papermax": {
		"letter":  "Letter (8.5\" × 11\")",
		"legal":   "Legal (8.5\" × 14\")",
		"a4":      "A4 (210mm × 297mm)",
		"a3":      "A3 (297mm × 420mm)",
		"tabloid": "Tabloid (11\" × 17\")",
		"ledger":  "Ledger (17\" × 11\")",
	},
}

func lookupEnum(key, value string) (string, bool) {
	table, ok := enumValues[key]
	if !ok {
		return "", false
	}
	if key == "papermax" {
		value = strings.ToLower(value)
	}
	label, ok := table[value]
	return label, ok
}

// listValues maps tokens of comma separated list keys. Tokens are matched
// upper-cased.
var listValues = map[string]map[string]string{
	"pdl": {
		"POSTSCRIPT": "PostScript",
		"PCL":        "PCL (HP Printer Language)",
		"PCLXL":      "PCL XL",
		"PDF":        "PDF Direct",
		"URF":        "URF (AirPrint)",
		"PWG":        "PWG Raster",

		"APPLICATION/POSTSCRIPT":          "PostScript",
		"APPLICATION/VND.HP-PCL":          "PCL (HP Printer Language)",
		"APPLICATION/VND.HP-PCLXL":        "PCL XL",
		"APPLICATION/PDF":                 "PDF Direct",
		"IMAGE/URF":                       "URF (AirPrint)",
		"IMAGE/PWG-RASTER":                "PWG Raster",
		"APPLICATION/OCTET-STREAM":        "Raw",
		"IMAGE/JPEG":                      "JPEG",
		"APPLICATION/VND.CUPS-PDF":        "PDF (CUPS)",
		"APPLICATION/VND.CUPS-RAW":        "Raw (CUPS)",
		"APPLICATION/VND.CUPS-POSTSCRIPT": "PostScript (CUPS)",
	},
}

func mapList(key, value string) (string, bool) {
	table, ok := listValues[key]
	if !ok {
		return "", false
	}
	tokens := strings.Split(value, ",")
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			continue
		}
		if label, ok := table[strings.ToUpper(trimmed)]; ok {
			out = append(out, label)
		} else {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, ", "), true
}
