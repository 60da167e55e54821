package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/justsurfingit/jobsprint/internal/models"
)

// PlatformAdapter scopes a search to one job board host.
type PlatformAdapter struct {
	Platform models.Platform
	Host     string
}

// DefaultPlatforms are the boards the sniper queries, in submission order.
var DefaultPlatforms = []PlatformAdapter{
	{Platform: models.PlatformGreenhouse, Host: "greenhouse.io"},
	{Platform: models.PlatformLever, Host: "lever.co"},
	{Platform: models.PlatformAshby, Host: "ashbyhq.com"},
}

// Query restricts the search to the adapter host, remote postings and the
// exact role phrase.
func (p PlatformAdapter) Query(role string) string {
	return fmt.Sprintf(`site:%s "Remote" "%s"`, p.Host, role)
}

const unknownCompany = "Unknown"

// titleSuffix matches " - Acme" / " | Acme" tails search engines append.
// Hyphens inside words ("Full-Stack") are left alone.
var titleSuffix = regexp.MustCompile(`\s+[-|]\s+.*$`)

func parseJobURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

// DetectPlatform classifies a posting by its URL host. Unparsable URLs are "other".
func DetectPlatform(rawURL string) models.Platform {
	u, ok := parseJobURL(rawURL)
	if !ok {
		return models.PlatformOther
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range DefaultPlatforms {
		if strings.Contains(host, p.Host) {
			return p.Platform
		}
	}
	return models.PlatformOther
}

// ExtractCompany returns the first path segment after the host, e.g. "acme"
// for https://boards.greenhouse.io/acme/jobs/123.
func ExtractCompany(rawURL string) string {
	u, ok := parseJobURL(rawURL)
	if !ok {
		return unknownCompany
	}
	for _, segment := range strings.Split(u.Path, "/") {
		if segment != "" {
			return segment
		}
	}
	return unknownCompany
}

// CleanTitle cuts the title at the first spaced " - " or " | " separator.
// Hyphenated words such as "Full-Stack" are kept.
func CleanTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	cleaned := strings.TrimSpace(titleSuffix.ReplaceAllString(trimmed, ""))
	if cleaned == "" {
		return trimmed
	}
	return cleaned
}

// Normalize turns one search hit into a posting. The platform is derived from
// the hit URL, not from the adapter that found it.
func Normalize(hit SearchHit, source models.Platform, ordinal int, discoveredAt time.Time) models.JobPosting {
	return models.JobPosting{
		ID:           fmt.Sprintf("%s-%d-%d", source, discoveredAt.UnixMilli(), ordinal),
		Title:        CleanTitle(hit.Title),
		Company:      ExtractCompany(hit.Link),
		URL:          hit.Link,
		Platform:     DetectPlatform(hit.Link),
		Snippet:      hit.Snippet,
		DiscoveredAt: discoveredAt,
	}
}
