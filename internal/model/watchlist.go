package model

// IndexRef names one index tracked for a market.
type IndexRef struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// Sector is an ordered list of member symbols.
type Sector struct {
	Name    string   `yaml:"name"`
	Symbols []string `yaml:"symbols"`
}

// DiscoveryConfig describes where a market's discovery candidates come from.
// A market with screeners is screener-driven; otherwise Universe is scanned.
type DiscoveryConfig struct {
	Universe  []string `yaml:"universe,omitempty"`
	Screeners []string `yaml:"screeners,omitempty"`
}

// Market is one market's watchlist.
type Market struct {
	Key       string          `yaml:"key"`
	Name      string          `yaml:"name"`
	Indices   []IndexRef      `yaml:"indices"`
	Sectors   []Sector        `yaml:"sectors"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// PrimaryIndex returns the index the market outlook is based on.
func (m *Market) PrimaryIndex() (IndexRef, bool) {
	if len(m.Indices) == 0 {
		return IndexRef{}, false
	}
	return m.Indices[0], true
}

// Symbols returns the set of every watchlisted symbol in the market.
func (m *Market) Symbols() map[string]bool {
	set := make(map[string]bool)
	for _, s := range m.Sectors {
		for _, sym := range s.Symbols {
			set[sym] = true
		}
	}
	return set
}

// Watchlist is the market->sector->symbol configuration. Callers treat it as read-only.
type Watchlist struct {
	Markets []Market `yaml:"markets"`
}

// Market looks up a market by key, case-sensitively.
func (w *Watchlist) Market(key string) (*Market, bool) {
	for i := range w.Markets {
		if w.Markets[i].Key == key {
			return &w.Markets[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so the caller can hand out an immutable snapshot.
func (w *Watchlist) Clone() Watchlist {
	out := Watchlist{Markets: make([]Market, len(w.Markets))}
	for i, m := range w.Markets {
		cm := m
		cm.Indices = append([]IndexRef(nil), m.Indices...)
		cm.Sectors = make([]Sector, len(m.Sectors))
		for j, s := range m.Sectors {
			cm.Sectors[j] = Sector{Name: s.Name, Symbols: append([]string(nil), s.Symbols...)}
		}
		cm.Discovery = DiscoveryConfig{
			Universe:  append([]string(nil), m.Discovery.Universe...),
			Screeners: append([]string(nil), m.Discovery.Screeners...),
		}
		out.Markets[i] = cm
	}
	return out
}
