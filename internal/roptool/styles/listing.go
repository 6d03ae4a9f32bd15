package styles

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

// Listing colors, the classic terminal palette of disassembly output.
var (
	Address  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	Mnemonic = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	Operands = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	Symbol   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	Bad      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	Prot     = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("7"))
	Arrow    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	Match    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	Summary  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Pager chrome.
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(charmtone.Zest.Hex())).
		Background(lipgloss.Color(charmtone.Charple.Hex())).
		Padding(0, 1)
	Help         = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Squid.Hex()))
	SelectedAddr = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	NormalAddr   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	Namespace    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	FuncName     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)
