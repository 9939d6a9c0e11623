package printing

import (
	"html/template"
	"strconv"
	"strings"
)

// Theme is the set of CSS tokens that distinguishes one invoice style from
// another. Every theme shares the same layout and content.
type Theme struct {
	Key         string
	Name        string
	Description string

	PageBackground  string
	PanelBackground string
	Text            string
	Muted           string
	Accent          string

	// HeaderBackground and HeaderText style the title band. An empty
	// background leaves the band transparent.
	HeaderBackground string
	HeaderText       string

	FontFamily   string
	TitleWeight  int
	TitleSpacing string

	Border          string
	TableHeaderBg   string
	TableHeaderText string
	Radius          string
}

const (
	fontSans  = `"Inter", "Helvetica Neue", Arial, sans-serif`
	fontSerif = `Georgia, "Times New Roman", serif`
	fontMono  = `"JetBrains Mono", "Fira Code", Menlo, monospace`
)

// DefaultThemeKey is used whenever a requested key is unknown.
const DefaultThemeKey = "classic"

// themes is ordered as presented to users.
var themes = []Theme{
	{
		Key: "classic", Name: "Classic",
		Description: "A clean, professional design suitable for any business",
		PageBackground: "#ffffff", PanelBackground: "#ffffff",
		Text: "#1f2937", Muted: "#4b5563", Accent: "#1f2937",
		HeaderText: "#1f2937",
		FontFamily: fontSans, TitleWeight: 700, TitleSpacing: "0",
		Border: "1px solid #e5e7eb", TableHeaderBg: "#ffffff", TableHeaderText: "#1f2937",
		Radius: "8px",
	},
	{
		Key: "modern", Name: "Modern",
		Description: "Contemporary design with a minimal aesthetic",
		PageBackground: "#eff6ff", PanelBackground: "#f9fafb",
		Text: "#111827", Muted: "#6b7280", Accent: "#2563eb",
		HeaderBackground: "#2563eb", HeaderText: "#ffffff",
		FontFamily: fontSans, TitleWeight: 700, TitleSpacing: "0.02em",
		Border: "1px solid #dbeafe", TableHeaderBg: "#dbeafe", TableHeaderText: "#1e3a8a",
		Radius: "12px",
	},
	{
		Key: "creative", Name: "Creative",
		Description: "Bold design perfect for creative professionals",
		PageBackground: "#fdf2f8", PanelBackground: "#f9fafb",
		Text: "#1f2937", Muted: "#6b7280", Accent: "#ff6b6b",
		HeaderText: "#ff6b6b",
		FontFamily: fontSans, TitleWeight: 800, TitleSpacing: "0.04em",
		Border: "4px solid #ff6b6b", TableHeaderBg: "#fff1f2", TableHeaderText: "#be123c",
		Radius: "12px",
	},
	{
		Key: "corporate", Name: "Corporate",
		Description: "Formal design ideal for corporate businesses",
		PageBackground: "#f8fafc", PanelBackground: "#334155",
		Text: "#0f172a", Muted: "#cbd5e1", Accent: "#334155",
		HeaderBackground: "#1e293b", HeaderText: "#ffffff",
		FontFamily: fontSans, TitleWeight: 700, TitleSpacing: "0.08em",
		Border: "1px solid #334155", TableHeaderBg: "#334155", TableHeaderText: "#ffffff",
		Radius: "12px",
	},
	{
		Key: "minimalist", Name: "Minimalist",
		Description: "Simple and elegant design focused on essential information",
		PageBackground: "#ffffff", PanelBackground: "#ffffff",
		Text: "#111827", Muted: "#9ca3af", Accent: "#111827",
		HeaderText: "#111827",
		FontFamily: fontSans, TitleWeight: 300, TitleSpacing: "0.2em",
		Border: "1px solid #f3f4f6", TableHeaderBg: "#ffffff", TableHeaderText: "#9ca3af",
		Radius: "0",
	},
	{
		Key: "elegant", Name: "Elegant",
		Description: "Sophisticated design with premium styling",
		PageBackground: "#ffffff", PanelBackground: "#fafaf9",
		Text: "#1a1a1a", Muted: "#57534e", Accent: "#daa520",
		HeaderBackground: "#1a1a1a", HeaderText: "#daa520",
		FontFamily: fontSerif, TitleWeight: 400, TitleSpacing: "0.15em",
		Border: "2px solid #daa520", TableHeaderBg: "#1a1a1a", TableHeaderText: "#daa520",
		Radius: "8px",
	},
	{
		Key: "premium", Name: "Premium Dark",
		Description: "Modern dark theme with gradient accents and sleek design",
		PageBackground: "linear-gradient(135deg, #0f172a, #1e293b)", PanelBackground: "#1e293b",
		Text: "#f8fafc", Muted: "#94a3b8", Accent: "#38bdf8",
		HeaderText: "#38bdf8",
		FontFamily: fontSans, TitleWeight: 700, TitleSpacing: "0.05em",
		Border: "1px solid #334155", TableHeaderBg: "#1e293b", TableHeaderText: "#38bdf8",
		Radius: "8px",
	},
	{
		Key: "minimalistpro", Name: "Minimalist Pro",
		Description: "Enhanced minimalist design with modern touches and clean typography",
		PageBackground: "#ffffff", PanelBackground: "#f9fafb",
		Text: "#111827", Muted: "#6b7280", Accent: "#4f46e5",
		HeaderText: "#111827",
		FontFamily: fontSans, TitleWeight: 600, TitleSpacing: "0.1em",
		Border: "1px solid #e5e7eb", TableHeaderBg: "#f9fafb", TableHeaderText: "#4f46e5",
		Radius: "8px",
	},
	{
		Key: "businesspro", Name: "Business Pro",
		Description: "Professional template with advanced layout and elegant styling",
		PageBackground: "#ffffff", PanelBackground: "#f9fafb",
		Text: "#111827", Muted: "#6b7280", Accent: "#0f766e",
		HeaderBackground: "#0f766e", HeaderText: "#ffffff",
		FontFamily: fontSans, TitleWeight: 700, TitleSpacing: "0.03em",
		Border: "1px solid #e5e7eb", TableHeaderBg: "#f9fafb", TableHeaderText: "#0f766e",
		Radius: "8px",
	},
	{
		Key: "boutique", Name: "Boutique",
		Description: "Soft pastel styling for shops and studios",
		PageBackground: "#ffffff", PanelBackground: "#fdf2f8",
		Text: "#831843", Muted: "#9d174d", Accent: "#db2777",
		HeaderText: "#db2777",
		FontFamily: fontSerif, TitleWeight: 600, TitleSpacing: "0.06em",
		Border: "1px solid #fbcfe8", TableHeaderBg: "#fce7f3", TableHeaderText: "#831843",
		Radius: "8px",
	},
	{
		Key: "tech", Name: "Tech",
		Description: "Dark console look with monospaced figures",
		PageBackground: "#0f172a", PanelBackground: "#1e293b",
		Text: "#e2e8f0", Muted: "#94a3b8", Accent: "#22d3ee",
		HeaderText: "#22d3ee",
		FontFamily: fontMono, TitleWeight: 700, TitleSpacing: "0.12em",
		Border: "1px solid #334155", TableHeaderBg: "#1e293b", TableHeaderText: "#22d3ee",
		Radius: "8px",
	},
	{
		Key: "nature", Name: "Nature",
		Description: "Calm greens with rounded panels",
		PageBackground: "#f0fdf4", PanelBackground: "#ffffff",
		Text: "#14532d", Muted: "#15803d", Accent: "#16a34a",
		HeaderText: "#166534",
		FontFamily: fontSans, TitleWeight: 700, TitleSpacing: "0.02em",
		Border: "2px solid #bbf7d0", TableHeaderBg: "#dcfce7", TableHeaderText: "#14532d",
		Radius: "12px",
	},
	{
		Key: "vintage", Name: "Vintage",
		Description: "Warm paper tones with classic serif type",
		PageBackground: "#fffbeb", PanelBackground: "#fef3c7",
		Text: "#78350f", Muted: "#92400e", Accent: "#b45309",
		HeaderText: "#78350f",
		FontFamily: fontSerif, TitleWeight: 700, TitleSpacing: "0.1em",
		Border: "1px double #d97706", TableHeaderBg: "#fef3c7", TableHeaderText: "#78350f",
		Radius: "4px",
	},
	{
		Key: "artistic", Name: "Artistic",
		Description: "Playful purple accents with lifted cards",
		PageBackground: "#faf5ff", PanelBackground: "#ffffff",
		Text: "#3b0764", Muted: "#7e22ce", Accent: "#9333ea",
		HeaderText: "#9333ea",
		FontFamily: fontSans, TitleWeight: 800, TitleSpacing: "0.05em",
		Border: "1px solid #e9d5ff", TableHeaderBg: "#f3e8ff", TableHeaderText: "#581c87",
		Radius: "8px",
	},
	{
		Key: "luxury", Name: "Luxury",
		Description: "Charcoal and gold for high-end services",
		PageBackground: "linear-gradient(135deg, #111827, #1f2937)", PanelBackground: "#1f2937",
		Text: "#f9fafb", Muted: "#d1d5db", Accent: "#eab308",
		HeaderText: "#eab308",
		FontFamily: fontSerif, TitleWeight: 400, TitleSpacing: "0.2em",
		Border: "1px solid rgba(234, 179, 8, 0.2)", TableHeaderBg: "#1f2937", TableHeaderText: "#eab308",
		Radius: "8px",
	},
	{
		Key: "gradient", Name: "Gradient",
		Description: "Vivid blue to purple gradient with frosted panels",
		PageBackground: "linear-gradient(135deg, #3b82f6, #9333ea)", PanelBackground: "rgba(255, 255, 255, 0.1)",
		Text: "#ffffff", Muted: "#e0e7ff", Accent: "#ffffff",
		HeaderText: "#ffffff",
		FontFamily: fontSans, TitleWeight: 700, TitleSpacing: "0.04em",
		Border: "1px solid rgba(255, 255, 255, 0.2)", TableHeaderBg: "rgba(255, 255, 255, 0.1)", TableHeaderText: "#ffffff",
		Radius: "8px",
	},
	{
		Key: "clean", Name: "Clean",
		Description: "Plain white layout with light grey table header",
		PageBackground: "#ffffff", PanelBackground: "#ffffff",
		Text: "#111827", Muted: "#6b7280", Accent: "#374151",
		HeaderText: "#111827",
		FontFamily: fontSans, TitleWeight: 600, TitleSpacing: "0",
		Border: "1px solid #e5e7eb", TableHeaderBg: "#f9fafb", TableHeaderText: "#374151",
		Radius: "8px",
	},
	{
		Key: "professional", Name: "Professional",
		Description: "Navy header band with structured sections",
		PageBackground: "#ffffff", PanelBackground: "#f8fafc",
		Text: "#0f172a", Muted: "#475569", Accent: "#1e3a8a",
		HeaderBackground: "#1e3a8a", HeaderText: "#ffffff",
		FontFamily: fontSans, TitleWeight: 700, TitleSpacing: "0.06em",
		Border: "1px solid #cbd5e1", TableHeaderBg: "#1e3a8a", TableHeaderText: "#ffffff",
		Radius: "4px",
	},
}

// CSSVars returns the theme as CSS custom property declarations. Theme values
// come from the built-in table and are trusted.
func (t Theme) CSSVars() template.CSS {
	headerBg := t.HeaderBackground
	if headerBg == "" {
		headerBg = "transparent"
	}
	vars := [][2]string{
		{"--inv-page-bg", t.PageBackground},
		{"--inv-panel-bg", t.PanelBackground},
		{"--inv-text", t.Text},
		{"--inv-muted", t.Muted},
		{"--inv-accent", t.Accent},
		{"--inv-header-bg", headerBg},
		{"--inv-header-text", t.HeaderText},
		{"--inv-font", t.FontFamily},
		{"--inv-title-weight", strconv.Itoa(t.TitleWeight)},
		{"--inv-title-spacing", t.TitleSpacing},
		{"--inv-border", t.Border},
		{"--inv-th-bg", t.TableHeaderBg},
		{"--inv-th-text", t.TableHeaderText},
		{"--inv-radius", t.Radius},
	}
	var b strings.Builder
	for _, v := range vars {
		b.WriteString(v[0])
		b.WriteString(": ")
		b.WriteString(v[1])
		b.WriteString("; ")
	}
	return template.CSS(strings.TrimSpace(b.String()))
}
