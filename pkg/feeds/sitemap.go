package feeds

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"transcript-fetcher/pkg/domain"
	"transcript-fetcher/pkg/httpclient"
)

// Some publishers expose no usable feed; their episode pages are still
// discoverable through a sitemap, and a page URL alone is enough for the
// scraper strategy to run.

// sitemapURLSet represents a regular sitemap structure
type sitemapURLSet struct {
	XMLName xml.Name          `xml:"urlset"`
	URLs    []sitemapURLEntry `xml:"url"`
}

type sitemapURLEntry struct {
	Location string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
}

// sitemapIndex represents a sitemap index structure
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Location string `xml:"loc"`
}

// SitemapDiscoverer finds episode page URLs via sitemaps.
type SitemapDiscoverer struct {
	client *httpclient.HTTPClient
}

// NewSitemapDiscoverer creates a sitemap-based page discoverer.
func NewSitemapDiscoverer() *SitemapDiscoverer {
	return &SitemapDiscoverer{client: httpclient.NewClient(httpclient.FeedClient)}
}

// PageEpisodes fetches a sitemap (or sitemap index) and returns one
// page-URL-only acquisition request per location. Sitemap indexes are
// followed one level deep; a sub-sitemap that fails to fetch is skipped
// rather than failing the whole discovery.
func (d *SitemapDiscoverer) PageEpisodes(sitemapURL string) ([]Episode, error) {
	locations, err := d.fetchLocations(sitemapURL, true)
	if err != nil {
		return nil, err
	}

	episodes := make([]Episode, 0, len(locations))
	for _, loc := range locations {
		episodes = append(episodes, Episode{
			Request: domain.AcquisitionRequest{
				ContentID: loc,
				PageURL:   loc,
			},
		})
	}
	return episodes, nil
}

func (d *SitemapDiscoverer) fetchLocations(sitemapURL string, followIndex bool) ([]string, error) {
	resp, err := d.client.Get(sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sitemap: %w", err)
	}

	// A sitemap index points at further sitemaps instead of pages.
	if strings.Contains(string(body), "<sitemapindex") {
		if !followIndex {
			return nil, fmt.Errorf("nested sitemap index at %s", sitemapURL)
		}
		return d.fetchFromIndex(body)
	}

	return parseSitemapLocations(body)
}

func (d *SitemapDiscoverer) fetchFromIndex(body []byte) ([]string, error) {
	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap index XML: %w", err)
	}

	var all []string
	for _, ref := range index.Sitemaps {
		if ref.Location == "" {
			continue
		}
		locations, err := d.fetchLocations(ref.Location, false)
		if err != nil {
			continue
		}
		all = append(all, locations...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no page URLs found in any sitemap from index")
	}
	return all, nil
}

func parseSitemapLocations(body []byte) ([]string, error) {
	var set sitemapURLSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap XML: %w", err)
	}

	locations := make([]string, 0, len(set.URLs))
	for _, entry := range set.URLs {
		if loc := strings.TrimSpace(entry.Location); loc != "" {
			locations = append(locations, loc)
		}
	}
	return locations, nil
}
