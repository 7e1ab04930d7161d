package template

// Per-kind style defaults. Every ElementType has a complete default record;
// missing wire fields are resolved against these exactly once, at the
// decoding boundary (see codec.go), never at use sites.

var styleDefaults = map[ElementType]Style{
	ElementLogo: {
		Opacity: 100,
		Width:   120,
		Height:  120,
	},
	ElementFreeText: {
		Text:       "Text",
		FontSize:   16,
		FontFamily: "Helvetica",
		Color:      "#000000",
		Opacity:    100,
	},
	ElementCopyrightText: {
		Text:       "© All rights reserved",
		FontSize:   12,
		FontFamily: "Helvetica",
		Color:      "#333333",
		Opacity:    100,
	},
	ElementURL: {
		Text:       "https://",
		FontSize:   12,
		FontFamily: "Helvetica",
		Color:      "#1a0dab",
		Opacity:    100,
	},
	ElementUserInfo: {
		FontSize:   12,
		FontFamily: "Helvetica",
		Color:      "#333333",
		Opacity:    100,
	},
	ElementBox: {
		Width:      160,
		Height:     90,
		Opacity:    100,
		Border:     1,
		BorderCol:  "#000000",
		Background: "#ffffff",
	},
	ElementLine: {
		Width:     200,
		Height:    0,
		Opacity:   100,
		Border:    2,
		BorderCol: "#000000",
	},
	ElementDottedLine: {
		Width:     200,
		Height:    0,
		Opacity:   100,
		Border:    2,
		BorderCol: "#000000",
	},
	ElementCircle: {
		Width:      100,
		Height:     100,
		Opacity:    100,
		Border:     1,
		BorderCol:  "#000000",
		Background: "#ffffff",
	},
	ElementWatermarkLogo: {
		Opacity: 30,
		Width:   240,
		Height:  240,
	},
	ElementWatermarkText: {
		Text:       "CONFIDENTIAL",
		FontSize:   48,
		FontFamily: "Helvetica",
		Color:      "#888888",
		Opacity:    30,
		Rotation:   -45,
	},
}

// DefaultStyle returns the complete default style record for an element kind.
func DefaultStyle(t ElementType) Style {
	return styleDefaults[t] // zero Style for unknown kinds
}
