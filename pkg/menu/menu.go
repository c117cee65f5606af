package menu

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrCycle is returned when a submenu can reach itself.
	ErrCycle = errors.New("menu cycle")

	// ErrUnknownMenu is returned when an item references a menu that does not exist.
	ErrUnknownMenu = errors.New("unknown menu")

	// ErrInvalidItem is returned for items that are neither an action nor a submenu.
	ErrInvalidItem = errors.New("invalid menu item")
)

// Menu is an ordered list of items. Order decides where each item sits
// on the ring.
type Menu struct {
	// Name identifies the menu in configuration files.
	Name string

	// Items is the list of menu items.
	Items []Item
}

// Tree is an immutable arena of menus with one designated root. Items
// refer to their submenus by MenuID, so the same menu may be reachable
// from several parents.
type Tree struct {
	menus []Menu
	root  MenuID
}

// New validates menus and returns a Tree rooted at root. Every submenu
// reference must resolve and no menu reachable from root may reach
// itself. The tree keeps its own copy of menus.
func New(menus []Menu, root MenuID) (*Tree, error) {
	t := &Tree{menus: cloneMenus(menus), root: root}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func cloneMenus(menus []Menu) []Menu {
	out := slices.Clone(menus)
	for i := range out {
		out[i].Items = slices.Clone(out[i].Items)
		for j, it := range out[i].Items {
			if it.Default != nil {
				d := *it.Default
				out[i].Items[j].Default = &d
			}
		}
	}
	return out
}

// MustNew is New for statically defined trees. It panics on error.
func MustNew(menus []Menu, root MenuID) *Tree {
	t, err := New(menus, root)
	if err != nil {
		panic(err)
	}
	return t
}

// Root returns the root menu.
func (t *Tree) Root() Menu {
	return t.menus[t.root]
}

// Menu returns the menu with the given id.
func (t *Tree) Menu(id MenuID) (Menu, bool) {
	if !t.valid(id) {
		return Menu{}, false
	}
	return t.menus[id], true
}

// Len returns the number of menus in the arena.
func (t *Tree) Len() int {
	return len(t.menus)
}

// CurrentItems walks the tree from the root along path and returns the
// items of the menu it ends on. The walk stops at the last valid menu
// when an index is out of range or points at an action item. The
// returned slice belongs to the tree and must not be modified.
func (t *Tree) CurrentItems(path []int) []Item {
	return t.menus[t.walk(path, nil)].Items
}

// Breadcrumb renders path as "Root > Label > Label", dropping a trailing
// " >" from labels. Invalid path elements end the breadcrumb.
func (t *Tree) Breadcrumb(path []int) string {
	parts := []string{"Root"}
	t.walk(path, func(it Item) {
		parts = append(parts, strings.TrimSuffix(it.Label, " >"))
	})
	return strings.Join(parts, " > ")
}

// MaxDepth returns how many submenu levels can be stacked below the root.
func (t *Tree) MaxDepth() int {
	var depth func(id MenuID) int
	depth = func(id MenuID) int {
		best := 0
		for _, it := range t.menus[id].Items {
			if it.Kind == KindSubmenu {
				if d := 1 + depth(it.Submenu); d > best {
					best = d
				}
			}
		}
		return best
	}
	return depth(t.root)
}

// walk follows path from the root, calling visit for every submenu item
// it descends through, and returns the menu it stops on.
func (t *Tree) walk(path []int, visit func(Item)) MenuID {
	id := t.root
	for _, idx := range path {
		items := t.menus[id].Items
		if idx < 0 || idx >= len(items) {
			break
		}
		it := items[idx]
		if it.Kind != KindSubmenu {
			break
		}
		if visit != nil {
			visit(it)
		}
		id = it.Submenu
	}
	return id
}

func (t *Tree) valid(id MenuID) bool {
	return id >= 0 && int(id) < len(t.menus)
}

// validate checks item shapes and references, then runs a depth-first
// search from the root looking for back edges.
func (t *Tree) validate() error {
	if !t.valid(t.root) {
		return fmt.Errorf("root %d: %w", t.root, ErrUnknownMenu)
	}

	for _, m := range t.menus {
		for i, it := range m.Items {
			switch it.Kind {
			case KindAction:
				if it.Action.Command == "" {
					return fmt.Errorf("menu %q item %d (%s): empty command: %w", m.Name, i, it.Label, ErrInvalidItem)
				}
			case KindSubmenu:
				if !t.valid(it.Submenu) {
					return fmt.Errorf("menu %q item %d (%s) -> %d: %w", m.Name, i, it.Label, it.Submenu, ErrUnknownMenu)
				}
			default:
				return fmt.Errorf("menu %q item %d (%s): kind %d: %w", m.Name, i, it.Label, it.Kind, ErrInvalidItem)
			}
		}
	}

	const (
		unvisited = iota
		active
		done
	)
	marks := make([]int, len(t.menus))

	var visit func(id MenuID, trail []string) error
	visit = func(id MenuID, trail []string) error {
		trail = append(trail, t.menus[id].Name)
		switch marks[id] {
		case active:
			return fmt.Errorf("%s: %w", strings.Join(trail, " -> "), ErrCycle)
		case done:
			return nil
		}
		marks[id] = active
		for _, it := range t.menus[id].Items {
			if it.Kind != KindSubmenu {
				continue
			}
			if err := visit(it.Submenu, trail); err != nil {
				return err
			}
		}
		marks[id] = done
		return nil
	}

	return visit(t.root, nil)
}
