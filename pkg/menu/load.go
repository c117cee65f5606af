package menu

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Document is the serialized form of a Tree, used for menu files and
// the /menu endpoint.
type Document struct {
	// Root names the root menu.
	Root string `json:"root" yaml:"root"`

	// Menus maps menu names to their items.
	Menus map[string][]ItemDocument `json:"menus" yaml:"menus"`
}

// ItemDocument is one item of a Document. Exactly one of Command and
// Submenu must be set.
type ItemDocument struct {
	Label   string  `json:"label" yaml:"label"`
	Color   string  `json:"color,omitempty" yaml:"color,omitempty"`
	Command string  `json:"command,omitempty" yaml:"command,omitempty"`
	Close   bool    `json:"close,omitempty" yaml:"close,omitempty"`
	Submenu string  `json:"submenu,omitempty" yaml:"submenu,omitempty"`
	Default *Action `json:"default,omitempty" yaml:"default,omitempty"`
}

// LoadFile reads a YAML menu document from path.
func LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}

	t, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("menu file %s: %w", path, err)
	}

	return t, nil
}

// Load decodes a YAML menu document and builds a validated Tree.
func Load(r io.Reader) (*Tree, error) {
	var doc Document

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty menu document")
		}
		return nil, fmt.Errorf("failed to decode menu document: %w", err)
	}

	return doc.Build()
}

// Build converts the document into a Tree. The root menu gets id 0, the
// rest follow in name order.
func (d *Document) Build() (*Tree, error) {
	if d.Root == "" {
		return nil, fmt.Errorf("document has no root: %w", ErrUnknownMenu)
	}
	if _, ok := d.Menus[d.Root]; !ok {
		return nil, fmt.Errorf("root %q: %w", d.Root, ErrUnknownMenu)
	}

	names := make([]string, 0, len(d.Menus))
	for name := range d.Menus {
		if name != d.Root {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{d.Root}, names...)

	ids := make(map[string]MenuID, len(names))
	for i, name := range names {
		ids[name] = MenuID(i)
	}

	menus := make([]Menu, len(names))
	for i, name := range names {
		docs := d.Menus[name]
		items := make([]Item, len(docs))
		for j, doc := range docs {
			it, err := doc.item(ids)
			if err != nil {
				return nil, fmt.Errorf("menu %q item %d (%s): %w", name, j, doc.Label, err)
			}
			items[j] = it
		}
		menus[i] = Menu{Name: name, Items: items}
	}

	return New(menus, 0)
}

func (d ItemDocument) item(ids map[string]MenuID) (Item, error) {
	switch {
	case d.Command != "" && d.Submenu != "":
		return Item{}, fmt.Errorf("both command and submenu set: %w", ErrInvalidItem)
	case d.Command != "":
		if d.Default != nil {
			return Item{}, fmt.Errorf("default on an action item: %w", ErrInvalidItem)
		}
		return NewAction(d.Label, d.Command, d.Close).WithColor(d.Color), nil
	case d.Submenu != "":
		id, ok := ids[d.Submenu]
		if !ok {
			return Item{}, fmt.Errorf("submenu %q: %w", d.Submenu, ErrUnknownMenu)
		}
		it := NewSubmenu(d.Label, id).WithColor(d.Color)
		if d.Default != nil {
			if d.Default.Command == "" {
				return Item{}, fmt.Errorf("default has no command: %w", ErrInvalidItem)
			}
			it = it.WithDefault(d.Default.Command, d.Default.Close)
		}
		return it, nil
	default:
		return Item{}, fmt.Errorf("neither command nor submenu set: %w", ErrInvalidItem)
	}
}

// Document returns the serializable form of the tree.
func (t *Tree) Document() Document {
	doc := Document{
		Root:  t.menus[t.root].Name,
		Menus: make(map[string][]ItemDocument, len(t.menus)),
	}

	for _, m := range t.menus {
		items := make([]ItemDocument, len(m.Items))
		for i, it := range m.Items {
			items[i] = ItemDocument{Label: it.Label, Color: it.Color}
			switch it.Kind {
			case KindAction:
				items[i].Command = it.Action.Command
				items[i].Close = it.Action.Close
			case KindSubmenu:
				items[i].Submenu = t.menus[it.Submenu].Name
				if it.Default != nil {
					def := *it.Default
					items[i].Default = &def
				}
			}
		}
		doc.Menus[m.Name] = items
	}

	return doc
}
