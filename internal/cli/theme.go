package cli

import "github.com/charmbracelet/lipgloss"

// Theme defines the Sky Blue color palette used for terminal output
var Theme = struct {
	Primary     lipgloss.Color // PATCH - Sky Blue 400 #38BDF8
	PrimaryDark lipgloss.Color // HEAD - Sky Blue 500 #0EA5E9
	Cyan        lipgloss.Color // Cyan 400 #22D3EE

	// Semantic colors, also used for HTTP methods
	Success lipgloss.Color // GET - Emerald 400 #34D399
	Error   lipgloss.Color // DELETE - Rose 400 #FB7185
	Warning lipgloss.Color // PUT - Amber 400 #FBBF24
	Info    lipgloss.Color // POST - Sky Blue 400 #38BDF8

	TextMuted  lipgloss.Color // Slate 300 #CBD5E1
	TextSubtle lipgloss.Color // Slate 400 #94A3B8
	Violet     lipgloss.Color // OPTIONS - Violet 400 #A78BFA
}{
	Primary:     lipgloss.Color("#38BDF8"),
	PrimaryDark: lipgloss.Color("#0EA5E9"),
	Cyan:        lipgloss.Color("#22D3EE"),

	Success: lipgloss.Color("#34D399"),
	Error:   lipgloss.Color("#FB7185"),
	Warning: lipgloss.Color("#FBBF24"),
	Info:    lipgloss.Color("#38BDF8"),

	TextMuted:  lipgloss.Color("#CBD5E1"),
	TextSubtle: lipgloss.Color("#94A3B8"),
	Violet:     lipgloss.Color("#A78BFA"),
}
