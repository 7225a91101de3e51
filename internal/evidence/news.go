package evidence

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/savegress/riskwatch/internal/config"
)

// negativeKeywords are scanned in headlines to flag adverse coverage
var negativeKeywords = []string{"fraud", "scandal", "investigation", "lawsuit", "fine", "penalty"}

// NewsReport summarizes external news coverage for an entity name
type NewsReport struct {
	ItemCount    int            `json:"item_count"`
	NegativeHits map[string]int `json:"negative_hits,omitempty"`
}

// Adverse reports whether any negative keyword appeared in the coverage
func (r *NewsReport) Adverse() bool {
	return len(r.NegativeHits) > 0
}

// NewsClient looks up news coverage for an entity over an RSS feed.
// Callers treat any error as "no coverage found"; a lookup failure must
// never fail an analysis.
type NewsClient struct {
	cfg    config.EvidenceConfig
	client *http.Client
}

// NewNewsClient creates a news client. A nil http.Client falls back to
// http.DefaultClient; the per-call timeout comes from configuration.
func NewNewsClient(cfg config.EvidenceConfig, client *http.Client) *NewsClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &NewsClient{cfg: cfg, client: client}
}

// Enabled reports whether lookups are turned on
func (c *NewsClient) Enabled() bool {
	return c.cfg.NewsEnabled
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
}

// Lookup fetches news coverage for the entity name. The request runs
// under the configured timeout.
func (c *NewsClient) Lookup(ctx context.Context, name string) (*NewsReport, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s?q=%s", c.cfg.NewsURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news lookup: unexpected status %d", resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("news lookup: decode feed: %w", err)
	}

	report := &NewsReport{ItemCount: len(feed.Channel.Items)}
	for _, item := range feed.Channel.Items {
		text := strings.ToLower(item.Title + " " + item.Description)
		for _, keyword := range negativeKeywords {
			if strings.Contains(text, keyword) {
				if report.NegativeHits == nil {
					report.NegativeHits = make(map[string]int)
				}
				report.NegativeHits[keyword]++
			}
		}
	}
	return report, nil
}
