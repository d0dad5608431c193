package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"github.com/thanhnguyen2187/d2-savior/d2s/dprop"
	"github.com/thanhnguyen2187/d2-savior/ds"
)

type (
	// Level is one list on screen: the top level items, or the items inside a socketed item.
	Level struct {
		Title  string
		Items  []ditem.Item
		Cursor int
	}

	Browser struct {
		title  string
		levels *ds.Stack[Level]
	}
)

func NewBrowser(title string, items []ditem.Item) Browser {
	return Browser{
		title: title,
		levels: ds.NewStack(Level{
			Title: "items",
			Items: items,
		}),
	}
}

func (b Browser) Current() Level {
	level, _ := b.levels.Peek()
	return level
}

func (b Browser) Selected() (ditem.Item, bool) {
	level := b.Current()
	if level.Cursor < 0 || level.Cursor >= len(level.Items) {
		return ditem.Item{}, false
	}
	return level.Items[level.Cursor], true
}

func (b Browser) move(delta int) {
	level, ok := b.levels.Pop()
	if !ok {
		return
	}
	level.Cursor = lo.Clamp(level.Cursor+delta, 0, lo.Max([]int{len(level.Items) - 1, 0}))
	b.levels.Push(level)
}

func (b Browser) descend() {
	item, ok := b.Selected()
	if !ok || len(item.SocketedItems) == 0 {
		return
	}
	b.levels.Push(Level{
		Title: DisplayName(item),
		Items: item.SocketedItems,
	})
}

func (b Browser) ascend() {
	if b.levels.Len() > 1 {
		b.levels.Pop()
	}
}

func (b Browser) Init() tea.Cmd {
	return nil
}

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}
	switch keyMsg.String() {
	case "ctrl+c", "q":
		return b, tea.Quit
	case "up", "k":
		b.move(-1)
	case "down", "j":
		b.move(1)
	case "enter", "right", "l":
		b.descend()
	case "esc", "backspace", "left", "h":
		b.ascend()
	}
	return b, nil
}

func (b Browser) viewDetails(item ditem.Item) string {
	lines := []string{
		fmt.Sprintf("type: %s (%s)", item.Type, item.TypeName),
	}
	if !item.Simple {
		lines = append(
			lines,
			fmt.Sprintf("quality: %s, item level %d", item.Quality, item.Level),
		)
	}
	if item.DefenseRating > 0 {
		lines = append(lines, fmt.Sprintf("defense: %d", item.DefenseRating))
	}
	if item.MaxDurability > 0 {
		lines = append(lines, fmt.Sprintf("durability: %d/%d", item.CurrentDurability, item.MaxDurability))
	}
	if item.Quantity > 0 {
		lines = append(lines, "quantity: "+humanize.Comma(int64(item.Quantity)))
	}
	if item.Socketed {
		lines = append(lines, fmt.Sprintf("sockets: %d/%d", len(item.SocketedItems), item.TotalNrOfSockets))
	}
	lines = append(lines, lo.Map(item.MagicAttributes, func(property dprop.Property, _ int) string {
		return "  " + describeProperty(property)
	})...)
	lines = append(lines, lo.Map(item.RunewordAttributes, func(property dprop.Property, _ int) string {
		return "  " + describeProperty(property) + " (runeword)"
	})...)
	lines = append(lines, lo.Map(item.SocketModifiers, func(property dprop.Property, _ int) string {
		return "  " + describeProperty(property) + " (socketed)"
	})...)
	return strings.Join(lines, "\n")
}

func (b Browser) View() string {
	breadcrumb := lo.Map(b.levels.Items(), func(level Level, _ int) string {
		return level.Title
	})
	output := "D2 SAVIOR\n\n"
	output += b.title + "\n"
	output += strings.Join(breadcrumb, " > ") + "\n\n"

	level := b.Current()
	if len(level.Items) == 0 {
		output += "  (no items)\n"
	}
	for i, item := range level.Items {
		cursor := lo.Ternary(i == level.Cursor, ">", " ")
		output += fmt.Sprintf("%s %-4s %s\n", cursor, item.Type, DisplayName(item))
	}
	if item, ok := b.Selected(); ok {
		output += "\n" + b.viewDetails(item) + "\n"
	}
	output += "\nup/down: move, enter: open sockets, esc: back, q: quit\n"
	return output
}
