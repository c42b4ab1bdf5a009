// Package catalog retrieves emotes from the 7TV GraphQL search API and merges
// them into a deduplicated name to image URL table.
package catalog

import "strings"

// SortBy is one of the ranking categories understood by the search API.
type SortBy string

const (
	SortTopAllTime      SortBy = "TOP_ALL_TIME"
	SortTrendingWeekly  SortBy = "TRENDING_WEEKLY"
	SortTrendingMonthly SortBy = "TRENDING_MONTHLY"
	SortTrendingDaily   SortBy = "TRENDING_DAILY"
	SortUploadDate      SortBy = "UPLOAD_DATE"
)

// DefaultCategories are queried when no categories are configured.
var DefaultCategories = []SortBy{
	SortTopAllTime,
	SortTrendingWeekly,
	SortTrendingMonthly,
	SortTrendingDaily,
	SortUploadDate,
}

// Image is one rendition of an emote.
type Image struct {
	URL        string `json:"url"`
	Mime       string `json:"mime"`
	Size       int    `json:"size"`
	Scale      int    `json:"scale"`
	Width      int    `json:"width"`
	FrameCount int    `json:"frameCount"`
}

// Item is a search result entry. Only the fields used for the table are decoded.
type Item struct {
	ID          string  `json:"id"`
	DefaultName string  `json:"defaultName"`
	Images      []Image `json:"images"`
}

// Entry is an admitted catalog entry.
type Entry struct {
	Name     string `json:"name"`
	ImageURL string `json:"url"`
}

// SearchResult is the emotes.search payload of one page.
type SearchResult struct {
	Items      []Item `json:"items"`
	TotalCount int    `json:"totalCount"`
	PageCount  int    `json:"pageCount"`
}

// State is the lifecycle of a catalog fetch.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const webpMime = "image/webp"

// SelectImageURL picks the rendition used for an emote: the 1x webp, then the
// 2x webp, then any webp, then whatever is listed first.
func SelectImageURL(images []Image) string {
	if len(images) == 0 {
		return ""
	}
	var webp1x, webp2x, anyWebp string
	for _, img := range images {
		if img.Mime != webpMime || img.URL == "" {
			continue
		}
		switch {
		case webp1x == "" && strings.Contains(img.URL, "/1x.webp"):
			webp1x = img.URL
		case webp2x == "" && strings.Contains(img.URL, "/2x.webp"):
			webp2x = img.URL
		}
		if anyWebp == "" {
			anyWebp = img.URL
		}
	}
	switch {
	case webp1x != "":
		return webp1x
	case webp2x != "":
		return webp2x
	case anyWebp != "":
		return anyWebp
	}
	return images[0].URL
}
