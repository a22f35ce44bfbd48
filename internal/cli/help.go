package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpDescStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// StyledHelpPrinter returns a kong help printer with Lipgloss styling. It
// describes the selected command, or the application when none is chosen.
func StyledHelpPrinter(title, description string) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		node := ctx.Selected()
		if node == nil {
			node = ctx.Model.Node
		}

		var sb strings.Builder

		sb.WriteString(TitleStyle.Render(title))
		sb.WriteString("\n")

		desc := description
		if node != ctx.Model.Node && node.Help != "" {
			desc = node.Help
		}
		if desc != "" {
			sb.WriteString(helpDescStyle.Render(desc))
			sb.WriteString("\n")
		}

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(usageLine(ctx, node))
		sb.WriteString("\n")

		writeSection(&sb, "Commands:", helpArgStyle, commandEntries(node))
		writeSection(&sb, "Arguments:", helpArgStyle, argumentEntries(node))
		writeSection(&sb, "Flags:", helpFlagStyle, flagEntries(node))

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

type entry struct {
	name       string
	help       string
	defaultVal string
}

func writeSection(sb *strings.Builder, heading string, nameStyle lipgloss.Style, entries []entry) {
	if len(entries) == 0 {
		return
	}

	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(heading))
	sb.WriteString("\n")

	for _, e := range entries {
		sb.WriteString("  ")
		sb.WriteString(nameStyle.Render(e.name))
		if e.help != "" {
			sb.WriteString("  ")
			sb.WriteString(e.help)
		}
		if e.defaultVal != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render("(default: " + e.defaultVal + ")"))
		}
		sb.WriteString("\n")
	}
}

func usageLine(ctx *kong.Context, node *kong.Node) string {
	if node == ctx.Model.Node {
		if len(node.Children) > 0 {
			return ctx.Model.Name + " <command> [flags]"
		}
		return ctx.Model.Name + " [flags]"
	}

	parts := []string{ctx.Model.Name}
	var path []string
	for n := node; n != nil && n != ctx.Model.Node; n = n.Parent {
		path = append([]string{n.Name}, path...)
	}
	parts = append(parts, path...)

	for _, arg := range node.Positional {
		parts = append(parts, arg.Summary())
	}

	return strings.Join(parts, " ") + " [flags]"
}

func commandEntries(node *kong.Node) []entry {
	var out []entry
	for _, child := range node.Children {
		if child.Hidden {
			continue
		}
		out = append(out, entry{name: child.Name, help: child.Help})
	}
	return out
}

func argumentEntries(node *kong.Node) []entry {
	var out []entry
	for _, arg := range node.Positional {
		out = append(out, entry{name: arg.Summary(), help: arg.Help})
	}
	return out
}

// flagEntries lists the flags of node and its parents, help first.
func flagEntries(node *kong.Node) []entry {
	out := []entry{{name: "-h, --help", help: "Show context-sensitive help."}}

	for n := node; n != nil; n = n.Parent {
		for _, f := range n.Flags {
			if f.Name == "help" || f.Hidden {
				continue
			}

			name := "--" + f.Name
			if f.Short != 0 {
				name = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
			}
			if !f.IsBool() {
				name += "=" + strings.ToUpper(f.FormatPlaceHolder())
			}

			out = append(out, entry{name: name, help: f.Help, defaultVal: f.Default})
		}
	}

	return out
}
