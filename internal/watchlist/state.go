package watchlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"MarketPulse/internal/model"
)

// Load reads the watchlist from a YAML file. ok is false if the file doesn't exist.
func Load(filePath string) (wl *model.Watchlist, ok bool, err error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &model.Watchlist{}, false, nil
		}
		return nil, false, err
	}
	var w model.Watchlist
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, false, fmt.Errorf("parse watchlist %s: %w", filePath, err)
	}
	return &w, true, nil
}

// Save writes the watchlist to a YAML file, creating the parent directory.
func Save(filePath string, w *model.Watchlist) error {
	data, err := yaml.Marshal(w)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0o644)
}

// Default is the watchlist seeded on first run.
func Default() model.Watchlist {
	return model.Watchlist{Markets: []model.Market{
		{
			Key:  "tw",
			Name: "Taiwan",
			Indices: []model.IndexRef{
				{Name: "TAIEX", Symbol: "^TWII"},
			},
			Sectors: []model.Sector{
				{Name: "Semiconductors", Symbols: []string{"2330.TW", "2454.TW", "2303.TW", "3711.TW", "2379.TW"}},
				{Name: "Electronic Components", Symbols: []string{"2317.TW", "2382.TW", "3008.TW", "2408.TW", "2327.TW"}},
				{Name: "Financials", Symbols: []string{"2881.TW", "2882.TW", "2883.TW", "2884.TW", "2891.TW"}},
				{Name: "Traditional Industry", Symbols: []string{"1301.TW", "1303.TW", "1326.TW", "2002.TW", "2105.TW"}},
				{Name: "Shipping", Symbols: []string{"2603.TW", "2609.TW", "2615.TW", "2618.TW", "5880.TW"}},
				{Name: "Biotech & Healthcare", Symbols: []string{"4904.TW", "1476.TW", "6446.TW", "4743.TW", "1707.TW"}},
				{Name: "Green Energy", Symbols: []string{"3481.TW", "6803.TW", "3576.TW", "6443.TW", "6488.TW"}},
			},
			Discovery: model.DiscoveryConfig{Universe: []string{
				"2344.TW", "3034.TW", "3443.TW", "6669.TW", "2449.TW", "3661.TW", "2458.TW",
				"2354.TW", "2356.TW", "2395.TW", "3231.TW", "6239.TW",
				"2886.TW", "2887.TW", "2885.TW", "2892.TW", "5876.TW",
				"1101.TW", "1102.TW", "1216.TW", "2912.TW", "1227.TW",
				"2412.TW", "3045.TW", "4904.TW",
				"2006.TW", "2014.TW", "1110.TW",
				"1402.TW", "1434.TW",
				"2207.TW", "9910.TW", "2633.TW", "5871.TW", "2801.TW",
				"3037.TW", "2049.TW", "6581.TW",
			}},
		},
		{
			Key:  "us",
			Name: "United States",
			Indices: []model.IndexRef{
				{Name: "S&P 500", Symbol: "^GSPC"},
				{Name: "Dow Jones", Symbol: "^DJI"},
				{Name: "Nasdaq", Symbol: "^IXIC"},
				{Name: "PHLX Semiconductor", Symbol: "^SOX"},
			},
			Sectors: []model.Sector{
				{Name: "Mega-cap Tech", Symbols: []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA"}},
				{Name: "Semiconductors", Symbols: []string{"NVDA", "AMD", "INTC", "TSM", "AVGO", "QCOM"}},
				{Name: "AI", Symbols: []string{"NVDA", "MSFT", "GOOGL", "PLTR", "AI", "SNOW"}},
				{Name: "EV", Symbols: []string{"TSLA", "RIVN", "LCID", "NIO", "LI", "XPEV"}},
				{Name: "Financials", Symbols: []string{"JPM", "BAC", "WFC", "GS", "MS", "C"}},
				{Name: "Healthcare", Symbols: []string{"JNJ", "UNH", "PFE", "ABBV", "MRK", "LLY"}},
				{Name: "Energy", Symbols: []string{"XOM", "CVX", "COP", "SLB", "EOG", "PXD"}},
			},
			Discovery: model.DiscoveryConfig{Screeners: []string{"most_actives", "day_gainers"}},
		},
	}}
}
