package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/fetchmixes/internal/shared"
)

// Creator is a Mixcloud user whose sets are crawled.
type Creator struct {
	ID         int64  `json:"id"`          // store-assigned id, zero until persisted
	Username   string `json:"username"`    // human-readable handle supplied on the command line
	MixcloudID string `json:"mixcloud_id"` // opaque platform id, unique in the store
}

// Validate checks that the creator can be persisted.
func (c Creator) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("%w: creator username is empty", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(c.MixcloudID) == "" {
		return fmt.Errorf("%w: creator mixcloud id is empty", shared.ErrInvalidInput)
	}
	return nil
}

// PublishedSet is one audio set as stored locally.
type PublishedSet struct {
	ID          int64     `json:"id"`
	CreatorID   *int64    `json:"creator_id,omitempty"` // nil for rows stored before sets were linked to creators
	URL         string    `json:"url"`
	CoverURL    string    `json:"cover_url"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks that the set can be persisted.
func (s PublishedSet) Validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("%w: set url is empty", shared.ErrInvalidInput)
	}
	if s.PublishedAt.IsZero() {
		return fmt.Errorf("%w: set %s has no publish date", shared.ErrInvalidInput, s.URL)
	}
	return nil
}

// NewSetFromSummary builds a set from a REST cloudcasts listing entry.
func NewSetFromSummary(s CloudcastSummary) PublishedSet {
	return PublishedSet{
		URL:         s.URL,
		CoverURL:    s.CoverURL,
		PublishedAt: s.CreatedTime.UTC(),
		UpdatedAt:   s.UpdatedTime.UTC(),
	}
}

// NewSetFromCloudcast builds a set from a GraphQL upload node.
//
// The uploads connection carries no last-updated instant, so the publish date
// stands in for it. A node without a picture gets an empty cover URL.
func NewSetFromCloudcast(c Cloudcast) PublishedSet {
	set := PublishedSet{
		URL:         c.URL,
		PublishedAt: c.PublishDate.UTC(),
		UpdatedAt:   c.PublishDate.UTC(),
	}
	if c.Picture != nil {
		set.CoverURL = c.Picture.CoverURL()
	}
	return set
}

// CrawlRun records one successful crawl.
type CrawlRun struct {
	ID         string    `json:"id"`
	CreatorID  int64     `json:"creator_id"`
	Source     string    `json:"source"`   // "graphql" or "rest"
	Fetched    int       `json:"fetched"`  // sets received from the platform
	Inserted   int       `json:"inserted"` // sets that were new to the store
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration reports how long the crawl took.
func (r CrawlRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
