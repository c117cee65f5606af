package menu

// Menu ids of the built-in tree.
const (
	RootMenu MenuID = iota
	ActionMenu
	FocusMenu
	MovementMenu
	MiscMenu
	AppMenu
)

const (
	colorSubmenu = "#3a7bd1"
	colorAction  = "#262626"
	colorTool    = "#bf3333"
)

// Default returns the built-in menu tree used when no menu file is
// configured. Compositor commands target niri; key- commands are sent
// through ydotool.
func Default() *Tree {
	menus := make([]Menu, AppMenu+1)

	menus[RootMenu] = Menu{Name: "root", Items: []Item{
		NewSubmenu("Action >", ActionMenu).WithColor(colorSubmenu),
		NewSubmenu("Workspace >", FocusMenu).WithColor(colorSubmenu),
		NewSubmenu("Misc >", MiscMenu).WithColor(colorSubmenu),
		NewAction("Tools", "key-ctrl-6", true).WithColor(colorTool),
		NewAction("Selector", "key-ctrl-5", true).WithColor(colorTool),
		NewAction("Brush", "key-ctrl-1", true).WithColor(colorTool),
		NewSubmenu("App >", AppMenu).WithColor(colorSubmenu),
	}}

	menus[ActionMenu] = Menu{Name: "action", Items: []Item{
		NewAction("Fullscreen", "fullscreen-window", false),
		NewAction("Maximize", "maximize-window-to-edges", false),
		NewAction("Toggle Float", "toggle-window-floating", false),
		NewAction("Close", "close-window", false),
		NewAction("Screenshot", "screenshot -p false", true),
	}}

	// Movement is reachable twice from the focus ring so it stays
	// under the pointer on either side.
	menus[FocusMenu] = Menu{Name: "focus", Items: []Item{
		NewAction("Up", "focus-workspace-up", false),
		NewAction("Switch", "switch-focus-between-floating-and-tiling", false),
		NewAction("Right", "focus-column-right", false),
		NewSubmenu("Move >", MovementMenu).WithColor(colorSubmenu),
		NewAction("Down", "focus-workspace-down", false),
		NewSubmenu("Move >", MovementMenu).WithColor(colorSubmenu),
		NewAction("Left", "focus-column-left", false),
		NewAction("Switch", "switch-focus-between-floating-and-tiling", false),
	}}

	menus[MovementMenu] = Menu{Name: "movement", Items: []Item{
		NewAction("Up", "move-window-to-workspace-up", false),
		NewAction("Right", "swap-window-right", false),
		NewAction("Down", "move-window-to-workspace-down", false),
		NewAction("Left", "swap-window-left", false),
	}}

	menus[MiscMenu] = Menu{Name: "misc", Items: []Item{
		NewAction("Page Up", "key-pageup", false),
		NewAction("Undo", "key-ctrl-z", false),
		NewAction("Redo", "key-ctrl-shift-z", false),
		NewAction("Zoom Out", "key-ctrl-minus", false),
		NewAction("Page Down", "key-pagedown", false),
		NewAction("Zoom In", "key-ctrl-plus", false),
		NewAction("Delete", "key-delete", false),
		NewAction("Duplicate", "key-ctrl-d", false),
	}}

	menus[AppMenu] = Menu{Name: "app", Items: []Item{
		NewAction("Neovide", "spawn -- fish -c ~/.local/bin/neovide-focus", true),
		NewAction("Zen Browser", "spawn -- flatpak run app.zen_browser.zen", true),
		NewAction("Files", "spawn -- nautilus", true),
		NewAction("Zotero", "spawn -- flatpak run org.zotero.Zotero", true),
		NewAction("Btop", "spawn -- alacritty --title 'Btop' -e btop", true),
	}}

	return MustNew(menus, RootMenu)
}
