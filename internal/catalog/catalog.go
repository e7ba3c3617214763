// Package catalog holds the static leader registry and the ruleset
// categories a session votes on. It is pure lookup data; nothing here
// carries session state.
package catalog

// Leader is one selectable catalog entry with its display attributes.
type Leader struct {
	Name         string `json:"name"`
	Civilization string `json:"civilization"`
	Emoji        string `json:"emoji"`
}

// Category is one ruleset dimension put to a vote. The first option is the
// category default, used when a forced resolution finds no votes.
type Category struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

var leaders = []Leader{
	{Name: "Teddy Roosevelt", Civilization: "America", Emoji: "🦅"},
	{Name: "Saladin", Civilization: "Arabia", Emoji: "🏜️"},
	{Name: "John Curtin", Civilization: "Australia", Emoji: "🦘"},
	{Name: "Montezuma", Civilization: "Aztec", Emoji: "🐆"},
	{Name: "Hammurabi", Civilization: "Babylon", Emoji: "📜"},
	{Name: "Basil II", Civilization: "Byzantium", Emoji: "☦️"},
	{Name: "Pedro II", Civilization: "Brazil", Emoji: "🌴"},
	{Name: "Wilfrid Laurier", Civilization: "Canada", Emoji: "🍁"},
	{Name: "Qin Shi Huang", Civilization: "China", Emoji: "🐉"},
	{Name: "Cleopatra", Civilization: "Egypt", Emoji: "🐪"},
	{Name: "Victoria", Civilization: "England", Emoji: "👑"},
	{Name: "Menelik II", Civilization: "Ethiopia", Emoji: "🦁"},
	{Name: "Catherine de Medici", Civilization: "France", Emoji: "🥖"},
	{Name: "Eleanor of Aquitaine", Civilization: "France", Emoji: "🎭"},
	{Name: "Ambiorix", Civilization: "Gaul", Emoji: "🐗"},
	{Name: "Tamar", Civilization: "Georgia", Emoji: "⛰️"},
	{Name: "Frederick Barbarossa", Civilization: "Germany", Emoji: "🍺"},
	{Name: "Simon Bolivar", Civilization: "Gran Colombia", Emoji: "🐎"},
	{Name: "Gorgo", Civilization: "Greece", Emoji: "🛡️"},
	{Name: "Pericles", Civilization: "Greece", Emoji: "🏛️"},
	{Name: "Matthias Corvinus", Civilization: "Hungary", Emoji: "🐦‍⬛"},
	{Name: "Pachacuti", Civilization: "Inca", Emoji: "🦙"},
	{Name: "Gandhi", Civilization: "India", Emoji: "🕊️"},
	{Name: "Chandragupta", Civilization: "India", Emoji: "🐘"},
	{Name: "Hojo Tokimune", Civilization: "Japan", Emoji: "🌸"},
	{Name: "Jayavarman VII", Civilization: "Khmer", Emoji: "🛕"},
	{Name: "Mvemba a Nzinga", Civilization: "Kongo", Emoji: "🌿"},
	{Name: "Seondeok", Civilization: "Korea", Emoji: "🔭"},
	{Name: "Kupe", Civilization: "Maori", Emoji: "🛶"},
	{Name: "Mansa Musa", Civilization: "Mali", Emoji: "🪙"},
	{Name: "Lady Six Sky", Civilization: "Maya", Emoji: "🗿"},
	{Name: "Lautaro", Civilization: "Mapuche", Emoji: "🏹"},
	{Name: "Genghis Khan", Civilization: "Mongolia", Emoji: "🏇"},
	{Name: "Kublai Khan", Civilization: "Mongolia", Emoji: "🧭"},
	{Name: "Wilhelmina", Civilization: "Netherlands", Emoji: "🌷"},
	{Name: "Harald Hardrada", Civilization: "Norway", Emoji: "⛵"},
	{Name: "Amanitore", Civilization: "Nubia", Emoji: "🏹"},
	{Name: "Suleiman", Civilization: "Ottoman", Emoji: "🌙"},
	{Name: "Dido", Civilization: "Phoenicia", Emoji: "🚢"},
	{Name: "Jadwiga", Civilization: "Poland", Emoji: "🪽"},
	{Name: "Joao III", Civilization: "Portugal", Emoji: "🧿"},
	{Name: "Trajan", Civilization: "Rome", Emoji: "🏺"},
	{Name: "Peter", Civilization: "Russia", Emoji: "❄️"},
	{Name: "Robert the Bruce", Civilization: "Scotland", Emoji: "🎻"},
	{Name: "Tomyris", Civilization: "Scythia", Emoji: "🗡️"},
	{Name: "Philip II", Civilization: "Spain", Emoji: "⚓"},
	{Name: "Gilgamesh", Civilization: "Sumeria", Emoji: "🛞"},
	{Name: "Kristina", Civilization: "Sweden", Emoji: "🎨"},
	{Name: "Ba Trieu", Civilization: "Vietnam", Emoji: "🎋"},
	{Name: "Shaka", Civilization: "Zulu", Emoji: "🪃"},
}

var categories = []Category{
	{Name: "Map", Options: []string{"Continents", "Pangaea", "Archipelago", "Fractal", "Island Plates", "Seven Seas"}},
	{Name: "Speed", Options: []string{"Standard", "Quick", "Epic", "Marathon", "Online"}},
	{Name: "Starting Era", Options: []string{"Ancient", "Classical", "Medieval", "Renaissance", "Industrial"}},
	{Name: "Disaster Intensity", Options: []string{"2", "0", "1", "3", "4"}},
	{Name: "Barbarians", Options: []string{"Standard", "Raging", "Civilized", "None"}},
	{Name: "City-States", Options: []string{"9", "6", "12", "15"}},
	{Name: "Resources", Options: []string{"Standard", "Abundant", "Sparse", "Strategic Balanced"}},
	{Name: "Temperature", Options: []string{"Standard", "Hot", "Cold"}},
	{Name: "Rainfall", Options: []string{"Standard", "Wet", "Arid"}},
	{Name: "Sea Level", Options: []string{"Standard", "Low", "High"}},
}

var leaderIndex = buildLeaderIndex()

func buildLeaderIndex() map[string]Leader {
	idx := make(map[string]Leader, len(leaders))
	for _, l := range leaders {
		idx[l.Name] = l
	}
	return idx
}

// Leaders returns every catalog entry in catalog order.
func Leaders() []Leader {
	return append([]Leader(nil), leaders...)
}

// Names returns every leader name in catalog order.
func Names() []string {
	names := make([]string, len(leaders))
	for i, l := range leaders {
		names[i] = l.Name
	}
	return names
}

// Size returns the number of catalog entries.
func Size() int {
	return len(leaders)
}

// Lookup finds a leader by name.
func Lookup(name string) (Leader, bool) {
	l, ok := leaderIndex[name]
	return l, ok
}

// AvailableExcluding returns leader names not present in banned, preserving
// catalog order. Ordering only matters for deterministic fixtures; pool
// allocation reshuffles anyway.
func AvailableExcluding(banned []string) []string {
	excluded := make(map[string]bool, len(banned))
	for _, b := range banned {
		excluded[b] = true
	}
	var available []string
	for _, l := range leaders {
		if !excluded[l.Name] {
			available = append(available, l.Name)
		}
	}
	return available
}

// Categories returns the ruleset categories in vote order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// CategoryByName finds a category by name.
func CategoryByName(name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Default returns the fallback option for the category.
func (c Category) Default() string {
	return c.Options[0]
}

// HasOption reports whether opt is a valid choice for the category.
func (c Category) HasOption(opt string) bool {
	for _, o := range c.Options {
		if o == opt {
			return true
		}
	}
	return false
}
