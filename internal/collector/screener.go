package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Screener lists symbols from Yahoo's predefined screeners such as
// "most_actives" and "day_gainers".
type Screener struct {
	client  *resty.Client
	baseURL string
	count   int
}

// screenerResponse is the subset of the predefined screener payload we read.
type screenerResponse struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol string `json:"symbol"`
			} `json:"quotes"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"finance"`
}

// NewScreener creates a screener client returning up to count symbols per screener.
func NewScreener(proxyURL string, timeout time.Duration, count int) *Screener {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "Mozilla/5.0")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	if count <= 0 {
		count = 25
	}
	return &Screener{client: client, baseURL: defaultYahooBaseURL, count: count}
}

// WithBaseURL points the screener at another host.
func (s *Screener) WithBaseURL(u string) *Screener {
	s.baseURL = u
	return s
}

// Symbols returns the symbols of one predefined screener in ranking order.
func (s *Screener) Symbols(ctx context.Context, screenerID string) ([]string, error) {
	var out screenerResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"scrIds": screenerID,
			"count":  strconv.Itoa(s.count),
		}).
		SetResult(&out).
		Get(s.baseURL + "/v1/finance/screener/predefined/saved")
	if err != nil {
		return nil, fmt.Errorf("screener %s: %w", screenerID, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("screener %s: API error %d: %s", screenerID, resp.StatusCode(), resp.String())
	}
	if out.Finance.Error != nil {
		return nil, fmt.Errorf("screener %s: %s", screenerID, out.Finance.Error.Description)
	}
	if len(out.Finance.Result) == 0 {
		return nil, fmt.Errorf("screener %s: %w", screenerID, ErrNoData)
	}

	symbols := make([]string, 0, len(out.Finance.Result[0].Quotes))
	for _, q := range out.Finance.Result[0].Quotes {
		if q.Symbol != "" {
			symbols = append(symbols, q.Symbol)
		}
	}
	return symbols, nil
}
