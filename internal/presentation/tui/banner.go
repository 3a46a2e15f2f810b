package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// Banner art paired with a subtle gradient-like color scheme (Indigo/Rose).
var bannerLines = []struct {
	art   string
	color string
}{
	{`______           _`, "#818cf8"},
	{`| ___ \         | |`, "#a78bfa"},
	{`| |_/ /__ _ _ __| | ___ _   _`, "#c084fc"},
	{"|  __/ _` | '__| |/ _ \\ | | |", "#e879f9"},
	{`| | | (_| | |  | |  __/ |_| |`, "#f472b6"},
	{`\_|  \__,_|_|  |_|\___|\__, |`, "#fb7185"},
	{`                        __/ |`, "#fb7185"},
	{`                       |___/`, "#fb7185"},
}

// PrintBanner outputs the ASCII art banner for Parley along with the build
// version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()

	fmt.Println()
	for _, line := range bannerLines {
		fmt.Printf("  %s\n", termenv.String(line.art).Foreground(p.Color(line.color)))
	}
	if version = strings.TrimSpace(version); version != "" {
		fmt.Printf("  %s\n", termenv.String("interactive dialogue engine "+version).Faint())
	}
	fmt.Println()
}
