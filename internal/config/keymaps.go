package config

// KeyMappings defines the configurable key bindings of the checklist view
type KeyMappings struct {
	// Items
	AddItem      string `yaml:"add_item"`
	EditItem     string `yaml:"edit_item"`
	ToggleItem   string `yaml:"toggle_item"`
	DeleteItem   string `yaml:"delete_item"`
	AssignToMe   string `yaml:"assign_to_me"`
	UnassignItem string `yaml:"unassign_item"`
	MoveItemUp   string `yaml:"move_item_up"`
	MoveItemDown string `yaml:"move_item_down"`

	// Navigation
	PrevItem string `yaml:"prev_item"`
	NextItem string `yaml:"next_item"`
	Refresh  string `yaml:"refresh"`

	// Other
	Quit string `yaml:"quit"`
}

// DefaultKeyMappings returns the default key mappings
func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		AddItem:      "a",
		EditItem:     "e",
		ToggleItem:   "space",
		DeleteItem:   "d",
		AssignToMe:   "m",
		UnassignItem: "u",
		MoveItemUp:   "K",
		MoveItemDown: "J",
		PrevItem:     "k",
		NextItem:     "j",
		Refresh:      "r",
		Quit:         "q",
	}
}

// applyDefaults fills in missing key mappings with defaults
func (k *KeyMappings) applyDefaults() {
	defaults := DefaultKeyMappings()
	fill := func(target *string, def string) {
		if *target == "" {
			*target = def
		}
	}

	fill(&k.AddItem, defaults.AddItem)
	fill(&k.EditItem, defaults.EditItem)
	fill(&k.ToggleItem, defaults.ToggleItem)
	fill(&k.DeleteItem, defaults.DeleteItem)
	fill(&k.AssignToMe, defaults.AssignToMe)
	fill(&k.UnassignItem, defaults.UnassignItem)
	fill(&k.MoveItemUp, defaults.MoveItemUp)
	fill(&k.MoveItemDown, defaults.MoveItemDown)
	fill(&k.PrevItem, defaults.PrevItem)
	fill(&k.NextItem, defaults.NextItem)
	fill(&k.Refresh, defaults.Refresh)
	fill(&k.Quit, defaults.Quit)
}
