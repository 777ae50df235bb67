// Package mediawiki implements harvest.ContentSource over the MediaWiki
// action API (api.php).
package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wikicorpus/wikiharvest/internal/harvest"
)

// Config captures the parameters for the API client.
type Config struct {
	// Endpoint is the full api.php URL, e.g. https://uz.wikipedia.org/w/api.php.
	Endpoint string
	// UserAgent identifies the crawler to the site.
	UserAgent string
	// Timeout bounds every single API request. The site imposes no timeout of
	// its own, so a stuck connection would otherwise hang a worker forever.
	Timeout time.Duration
	// CategoryPrefix is the category-namespace title prefix used to tell
	// subcategories apart from articles in member listings.
	CategoryPrefix string
	// PageLimit is the aplimit/cmlimit value for listing calls.
	PageLimit int
}

// Client talks to a MediaWiki site.
type Client struct {
	endpoint       string
	userAgent      string
	categoryPrefix string
	pageLimit      int
	httpClient     *http.Client
	logger         *zap.Logger
}

// New creates a Client. The logger may not be nil.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CategoryPrefix == "" {
		cfg.CategoryPrefix = "Category:"
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 500
	}
	return &Client{
		endpoint:       cfg.Endpoint,
		userAgent:      cfg.UserAgent,
		categoryPrefix: cfg.CategoryPrefix,
		pageLimit:      cfg.PageLimit,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		logger:         logger,
	}, nil
}

type apiResponse struct {
	Continue struct {
		Apcontinue string `json:"apcontinue"`
	} `json:"continue"`
	Query struct {
		AllPages []struct {
			Title string `json:"title"`
		} `json:"allpages"`
		CategoryMembers []struct {
			Title string `json:"title"`
		} `json:"categorymembers"`
		Statistics struct {
			Articles int `json:"articles"`
		} `json:"statistics"`
		Pages []apiPage `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type apiPage struct {
	Title   string `json:"title"`
	Missing bool   `json:"missing"`
	Extract string `json:"extract"`
	FullURL string `json:"fullurl"`
}

// PageExists reports whether the titled page exists on the site.
func (c *Client) PageExists(ctx context.Context, title string) (bool, error) {
	resp, err := c.get(ctx, url.Values{
		"action":        {"query"},
		"titles":        {title},
		"redirects":     {"1"},
		"formatversion": {"2"},
	})
	if err != nil {
		return false, err
	}
	if len(resp.Query.Pages) == 0 {
		return false, nil
	}
	return !resp.Query.Pages[0].Missing, nil
}

// FetchPage retrieves the plaintext extract and canonical URL for a title.
// A page the site does not know returns harvest.ErrPageMissing.
func (c *Client) FetchPage(ctx context.Context, title string) (harvest.PageRecord, error) {
	resp, err := c.get(ctx, url.Values{
		"action":        {"query"},
		"prop":          {"extracts|info"},
		"explaintext":   {"1"},
		"inprop":        {"url"},
		"redirects":     {"1"},
		"titles":        {title},
		"formatversion": {"2"},
	})
	if err != nil {
		return harvest.PageRecord{}, err
	}
	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].Missing {
		return harvest.PageRecord{}, fmt.Errorf("fetch %q: %w", title, harvest.ErrPageMissing)
	}
	page := resp.Query.Pages[0]
	return harvest.PageRecord{
		Title:  page.Title,
		Text:   page.Extract,
		URL:    page.FullURL,
		Length: len(page.Extract),
	}, nil
}

// ListCategoryMembers lists the direct members of a category. Subcategories
// are recognized by the category-namespace prefix on the member title and are
// returned with that prefix stripped, ready to feed back into another listing.
func (c *Client) ListCategoryMembers(ctx context.Context, category string) ([]harvest.CategoryMember, error) {
	cmtitle := category
	if !strings.HasPrefix(cmtitle, c.categoryPrefix) {
		cmtitle = c.categoryPrefix + cmtitle
	}
	resp, err := c.get(ctx, url.Values{
		"action":        {"query"},
		"list":          {"categorymembers"},
		"cmtitle":       {cmtitle},
		"cmlimit":       {strconv.Itoa(c.pageLimit)},
		"formatversion": {"2"},
	})
	if err != nil {
		return nil, err
	}

	members := make([]harvest.CategoryMember, 0, len(resp.Query.CategoryMembers))
	for _, m := range resp.Query.CategoryMembers {
		if strings.HasPrefix(m.Title, c.categoryPrefix) {
			members = append(members, harvest.CategoryMember{
				Title:       strings.TrimPrefix(m.Title, c.categoryPrefix),
				Subcategory: true,
			})
			continue
		}
		members = append(members, harvest.CategoryMember{Title: m.Title})
	}
	return members, nil
}

// ListAllPages retrieves one page of the namespace-0 article listing. Pass an
// empty token for the first page; an empty Continue in the result means the
// listing is exhausted.
func (c *Client) ListAllPages(ctx context.Context, continueToken string) (harvest.AllPagesResult, error) {
	params := url.Values{
		"action":      {"query"},
		"list":        {"allpages"},
		"aplimit":     {strconv.Itoa(c.pageLimit)},
		"apnamespace": {"0"},
	}
	if continueToken != "" {
		params.Set("apcontinue", continueToken)
	}
	resp, err := c.get(ctx, params)
	if err != nil {
		return harvest.AllPagesResult{}, err
	}

	titles := make([]string, 0, len(resp.Query.AllPages))
	for _, p := range resp.Query.AllPages {
		titles = append(titles, p.Title)
	}
	return harvest.AllPagesResult{
		Titles:   titles,
		Continue: resp.Continue.Apcontinue,
	}, nil
}

// SiteArticleCount returns the site-reported number of articles. The value is
// advisory; it can be stale relative to the listing.
func (c *Client) SiteArticleCount(ctx context.Context) (int, error) {
	resp, err := c.get(ctx, url.Values{
		"action": {"query"},
		"meta":   {"siteinfo"},
		"siprop": {"statistics"},
	})
	if err != nil {
		return 0, err
	}
	return resp.Query.Statistics.Articles, nil
}

func (c *Client) get(ctx context.Context, params url.Values) (apiResponse, error) {
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return apiResponse{}, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, fmt.Errorf("api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiResponse{}, fmt.Errorf("api request: unexpected status %d", resp.StatusCode)
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return apiResponse{}, fmt.Errorf("decode api response: %w", err)
	}
	if decoded.Error != nil {
		return apiResponse{}, fmt.Errorf("api error %s: %s", decoded.Error.Code, decoded.Error.Info)
	}
	return decoded, nil
}
