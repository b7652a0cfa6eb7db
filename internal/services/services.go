// package services defines interface Platform for crawling a creator's uploads
package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/fetchmixes/internal/models"
)

// Platform defines the remote operations a crawl needs.
type Platform interface {
	// EstablishSession fetches the creator's profile page and returns the session it grants.
	EstablishSession(ctx context.Context, username string) (*Session, error)

	// Profile reads the public REST user document.
	Profile(ctx context.Context, username string) (*models.Profile, error)

	// ResolveCreator looks up the platform id for username.
	ResolveCreator(ctx context.Context, sess Session, username string) (*models.UserLookup, error)

	// Uploads walks every upload edge of the user with the given platform id.
	Uploads(ctx context.Context, sess Session, userID string, opts UploadOpts) ([]models.Upload, error)

	// Cloudcasts walks the public REST cloudcasts listing by following paging.next.
	Cloudcasts(ctx context.Context, username string, maxPages int) ([]models.CloudcastSummary, error)
}

// Session carries the CSRF token granted by a profile page.
type Session struct {
	Username   string
	ProfileURL string
	CSRFToken  string
}

// Header returns the headers the GraphQL endpoint requires from an authenticated caller.
func (s Session) Header() http.Header {
	h := http.Header{}
	h.Set("X-CSRFToken", s.CSRFToken)
	h.Set("Referer", s.ProfileURL)
	h.Set("Cookie", CSRFCookieName+"="+s.CSRFToken)
	return h
}

// UploadOpts tunes an uploads walk.
type UploadOpts struct {
	PageSize int
	OrderBy  string
	MaxPages int // 0 means no limit

	// OnPage, if set, is called after each page is decoded.
	OnPage func(page, edges int)
}
