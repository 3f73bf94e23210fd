package menu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MenuItem is a node in a hierarchical menu.
type MenuItem struct {
	Label     string
	Icon      string
	Action    string
	IsDivider bool
	Submenu   []MenuItem
}

// IsParent reports whether the item opens a submenu.
func (m MenuItem) IsParent() bool { return len(m.Submenu) > 0 }

const (
	backAction    = "__back__"
	submenuPrefix = "__submenu__:"
	noopAction    = "__noop__"
)

// Tree walks a hierarchical menu one picker invocation per level.
type Tree struct {
	backend Backend
	prompt  string
	root    []MenuItem
	at      Anchor
}

// NewTree creates a menu over items.
func NewTree(backend Backend, prompt string, items []MenuItem, at Anchor) *Tree {
	return &Tree{backend: backend, prompt: prompt, root: items, at: at}
}

// Show runs the menu and returns the action of the chosen leaf.
func (t *Tree) Show() (string, error) {
	return t.level(t.root, nil)
}

func (t *Tree) level(items []MenuItem, path []string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("menu: no items to show")
	}
	for {
		rows := make([]Item, 0, len(items)+1)
		if len(path) > 0 {
			rows = append(rows, Item{Label: "← Back", Action: backAction, Icon: "go-previous"})
		}
		for i, item := range items {
			row := Item{Label: item.Label, Icon: item.Icon, Action: item.Action, IsDivider: item.IsDivider}
			switch {
			case item.IsDivider:
				if row.Label == "" {
					row.Label = "────────"
				}
				row.Action = noopAction
			case item.IsParent():
				row.Label += " →"
				if row.Icon == "" {
					row.Icon = "folder"
				}
				row.Action = submenuPrefix + strconv.Itoa(i)
			case strings.TrimSpace(row.Action) == "":
				row.Action = noopAction
			}
			rows = append(rows, row)
		}

		prompt := t.prompt
		if len(path) > 0 {
			prompt = path[len(path)-1]
		}
		chosen, err := t.backend.Show(prompt, rows, t.at)
		if err != nil {
			return "", err
		}

		switch {
		case chosen.IsDivider || chosen.IsHeader || chosen.Action == noopAction:
			continue
		case chosen.Action == backAction:
			return "", ErrCancelled
		case strings.HasPrefix(chosen.Action, submenuPrefix):
			idx, err := strconv.Atoi(strings.TrimPrefix(chosen.Action, submenuPrefix))
			if err != nil || idx < 0 || idx >= len(items) || !items[idx].IsParent() {
				continue
			}
			action, err := t.level(items[idx].Submenu, append(path, items[idx].Label))
			if errors.Is(err, ErrCancelled) {
				continue
			}
			return action, err
		default:
			return chosen.Action, nil
		}
	}
}
