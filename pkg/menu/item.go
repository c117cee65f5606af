package menu

// Kind tells an action entry apart from a submenu entry.
type Kind int

const (
	// KindAction entries fire an Action when selected.
	KindAction Kind = iota

	// KindSubmenu entries open another Menu when selected.
	KindSubmenu
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindSubmenu:
		return "submenu"
	default:
		return "unknown"
	}
}

// MenuID is a stable handle to a Menu inside a Tree.
type MenuID int

// Action is an opaque command plus whether firing it closes the overlay.
type Action struct {
	// Command is handed to the dispatcher verbatim.
	Command string `json:"command" yaml:"command"`

	// Close hides the menu before the command fires.
	Close bool `json:"close,omitempty" yaml:"close,omitempty"`
}

// Item is a single selectable entry in a Menu. Items are immutable once
// the Tree is built.
type Item struct {
	// Label is the text drawn on the item.
	Label string

	// Kind selects which of the fields below are meaningful.
	Kind Kind

	// Color is a display hint in #rrggbb form. Optional.
	Color string

	// Action is fired for KindAction items.
	Action Action

	// Submenu is opened for KindSubmenu items.
	Submenu MenuID

	// Default is an optional action for KindSubmenu items, fired when the
	// submenu item is clicked.
	Default *Action
}

// NewAction returns an action item.
func NewAction(label, command string, closes bool) Item {
	return Item{
		Label:  label,
		Kind:   KindAction,
		Action: Action{Command: command, Close: closes},
	}
}

// NewSubmenu returns an item that opens sub.
func NewSubmenu(label string, sub MenuID) Item {
	return Item{
		Label:   label,
		Kind:    KindSubmenu,
		Submenu: sub,
	}
}

// WithColor returns a copy of the item with the display color set.
func (i Item) WithColor(color string) Item {
	i.Color = color
	return i
}

// WithDefault returns a copy of a submenu item carrying a default action.
func (i Item) WithDefault(command string, closes bool) Item {
	i.Default = &Action{Command: command, Close: closes}
	return i
}
