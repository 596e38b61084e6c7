package watchlist

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"MarketPulse/internal/model"
)

var (
	ErrUnknownMarket = errors.New("unknown market")
	ErrUnknownSector = errors.New("unknown sector")
	ErrDuplicate     = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)

// Manager edits the watchlist file with concurrency safety. Every mutation is
// saved before it returns.
type Manager struct {
	mu       sync.Mutex
	wl       *model.Watchlist
	filePath string
}

// NewManager creates a Manager, loading the watchlist or seeding the defaults.
func NewManager(filePath string) (*Manager, error) {
	wl, ok, err := Load(filePath)
	if err != nil {
		return nil, err
	}
	m := &Manager{wl: wl, filePath: filePath}
	if !ok {
		def := Default()
		m.wl = &def
		if err := m.save(); err != nil {
			return nil, fmt.Errorf("seed watchlist: %w", err)
		}
		log.Info().Str("path", filePath).Msg("seeded default watchlist")
	}
	return m, nil
}

// Snapshot returns a deep copy of the current watchlist.
func (m *Manager) Snapshot() model.Watchlist {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wl.Clone()
}

// AddStock appends symbol to a sector.
func (m *Manager) AddStock(market, sector, symbol string) error {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return errors.New("empty symbol")
	}
	return m.mutate(market, func(mk *model.Market) error {
		s, err := findSector(mk, sector)
		if err != nil {
			return err
		}
		for _, existing := range s.Symbols {
			if existing == symbol {
				return fmt.Errorf("%s in %s: %w", symbol, sector, ErrDuplicate)
			}
		}
		s.Symbols = append(s.Symbols, symbol)
		return nil
	})
}

// RemoveStock removes symbol from a sector.
func (m *Manager) RemoveStock(market, sector, symbol string) error {
	symbol = normalizeSymbol(symbol)
	return m.mutate(market, func(mk *model.Market) error {
		s, err := findSector(mk, sector)
		if err != nil {
			return err
		}
		for i, existing := range s.Symbols {
			if existing == symbol {
				s.Symbols = append(s.Symbols[:i], s.Symbols[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%s in %s: %w", symbol, sector, ErrNotFound)
	})
}

// AddSector creates a sector with optional initial symbols.
func (m *Manager) AddSector(market, sector string, symbols []string) error {
	sector = strings.TrimSpace(sector)
	if sector == "" {
		return errors.New("empty sector name")
	}
	return m.mutate(market, func(mk *model.Market) error {
		if _, err := findSector(mk, sector); err == nil {
			return fmt.Errorf("sector %s: %w", sector, ErrDuplicate)
		}
		seen := make(map[string]bool)
		var syms []string
		for _, s := range symbols {
			s = normalizeSymbol(s)
			if s != "" && !seen[s] {
				seen[s] = true
				syms = append(syms, s)
			}
		}
		mk.Sectors = append(mk.Sectors, model.Sector{Name: sector, Symbols: syms})
		return nil
	})
}

// RemoveSector deletes a sector and its symbols.
func (m *Manager) RemoveSector(market, sector string) error {
	return m.mutate(market, func(mk *model.Market) error {
		for i := range mk.Sectors {
			if mk.Sectors[i].Name == sector {
				mk.Sectors = append(mk.Sectors[:i], mk.Sectors[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("sector %s: %w", sector, ErrUnknownSector)
	})
}

func (m *Manager) mutate(market string, fn func(*model.Market) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mk, ok := m.wl.Market(market)
	if !ok {
		return fmt.Errorf("market %q: %w", market, ErrUnknownMarket)
	}
	before := m.wl.Clone()
	if err := fn(mk); err != nil {
		return err
	}
	if err := m.save(); err != nil {
		*m.wl = before
		return fmt.Errorf("save watchlist: %w", err)
	}
	return nil
}

func (m *Manager) save() error {
	return Save(m.filePath, m.wl)
}

func findSector(mk *model.Market, name string) (*model.Sector, error) {
	for i := range mk.Sectors {
		if mk.Sectors[i].Name == name {
			return &mk.Sectors[i], nil
		}
	}
	return nil, fmt.Errorf("sector %s: %w", name, ErrUnknownSector)
}

// normalizeSymbol trims and upper-cases a ticker, so "2330.tw" becomes "2330.TW".
func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
