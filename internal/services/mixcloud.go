// Mixcloud implementation of [Platform]
package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/fetchmixes/internal/models"
	"github.com/desertthunder/fetchmixes/internal/shared"
)

const (
	defaultFrontendURL = "https://www.mixcloud.com/"
	defaultAPIURL      = "https://api.mixcloud.com/"
	defaultGraphQLURL  = "https://www.mixcloud.com/graphql"

	// CSRFCookieName is the cookie a profile page sets to open a GraphQL session.
	CSRFCookieName = "csrftoken"

	DefaultPageSize = 20
	DefaultOrderBy  = "LATEST"
)

//go:embed queries/user_lookup.graphql
var userLookupText string

//go:embed queries/user_uploads.graphql
var userUploadsText string

// Query is a GraphQL document together with the id the endpoint expects alongside it.
type Query struct {
	ID   string
	Text string
}

var (
	UserLookupQuery  = Query{ID: "q59", Text: userLookupText}
	UserUploadsQuery = Query{ID: "q75", Text: userUploadsText}
)

type graphQLRequest struct {
	ID        string         `json:"id"`
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// MixcloudService implements [Platform] against the Mixcloud web and API hosts.
type MixcloudService struct {
	api        *APIService
	frontend   *url.URL
	restAPI    *url.URL
	graphQLURL string
	logger     *log.Logger
}

// MixcloudOpts contains configuration options for creating a MixcloudService.
// Empty URLs fall back to the public Mixcloud hosts.
type MixcloudOpts struct {
	API         *APIService
	FrontendURL string
	APIURL      string
	GraphQLURL  string
	Logger      *log.Logger
}

// NewMixcloudService creates a new MixcloudService.
func NewMixcloudService(opts MixcloudOpts) (*MixcloudService, error) {
	if opts.API == nil {
		opts.API = NewAPIService(APIOpts{})
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.FrontendURL == "" {
		opts.FrontendURL = defaultFrontendURL
	}
	if opts.APIURL == "" {
		opts.APIURL = defaultAPIURL
	}
	if opts.GraphQLURL == "" {
		opts.GraphQLURL = defaultGraphQLURL
	}

	frontend, err := parseBase(opts.FrontendURL)
	if err != nil {
		return nil, err
	}
	restAPI, err := parseBase(opts.APIURL)
	if err != nil {
		return nil, err
	}
	if _, err := parseBase(opts.GraphQLURL); err != nil {
		return nil, err
	}

	return &MixcloudService{
		api:        opts.API,
		frontend:   frontend,
		restAPI:    restAPI,
		graphQLURL: opts.GraphQLURL,
		logger:     opts.Logger,
	}, nil
}

func parseBase(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: bad url %q: %v", shared.ErrInvalidConfig, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: url %q must be absolute", shared.ErrInvalidConfig, raw)
	}
	return u, nil
}

// userPath joins base and the given segments, ending with a slash as Mixcloud URLs do.
func userPath(base *url.URL, segments ...string) string {
	return strings.TrimSuffix(base.JoinPath(segments...).String(), "/") + "/"
}

// ProfileURL returns the public profile page for username.
func (m *MixcloudService) ProfileURL(username string) string {
	return userPath(m.frontend, username)
}

// EstablishSession fetches the profile page and harvests its csrftoken cookie.
//
// A missing cookie means either the profile does not exist or the platform changed
// how sessions work; both are fatal and never retried.
func (m *MixcloudService) EstablishSession(ctx context.Context, username string) (*Session, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is empty", shared.ErrMissingArgument)
	}

	profileURL := m.ProfileURL(username)
	m.logger.Debug("fetching profile page", "url", profileURL)

	resp, err := m.api.Get(ctx, profileURL, nil)
	if err != nil {
		return nil, err
	}

	token := ""
	if c := resp.Cookie(CSRFCookieName); c != nil {
		token = c.Value
	}
	if token == "" {
		token = m.jarCookie(profileURL, CSRFCookieName)
	}

	if token == "" {
		return nil, fmt.Errorf("%w: no %s cookie on %s (status %d)", shared.ErrAuth, CSRFCookieName, profileURL, resp.StatusCode)
	}

	return &Session{Username: username, ProfileURL: profileURL, CSRFToken: token}, nil
}

// jarCookie returns the value the client's jar would send to rawURL for name, or "".
func (m *MixcloudService) jarCookie(rawURL, name string) string {
	jar := m.api.Jar()
	if jar == nil {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Profile reads the REST user document.
func (m *MixcloudService) Profile(ctx context.Context, username string) (*models.Profile, error) {
	body, err := m.getJSON(ctx, userPath(m.restAPI, username))
	if err != nil {
		return nil, err
	}
	return models.DecodeProfile(body)
}

// Cloudcasts walks the REST cloudcasts listing by following paging.next.
func (m *MixcloudService) Cloudcasts(ctx context.Context, username string, maxPages int) ([]models.CloudcastSummary, error) {
	next := userPath(m.restAPI, username, "cloudcasts")
	seen := map[string]bool{}
	var summaries []models.CloudcastSummary

	for page := 1; ; page++ {
		seen[next] = true
		m.logger.Debug("fetching cloudcasts page", "page", page, "url", next)

		body, err := m.getJSON(ctx, next)
		if err != nil {
			return nil, err
		}

		decoded, err := models.DecodeCloudcastPage(body)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		summaries = append(summaries, decoded.Data...)

		if decoded.Next == nil || len(decoded.Data) == 0 {
			m.logger.Debug("hit end of cloudcasts pagination", "pages", page)
			break
		}
		if maxPages > 0 && page >= maxPages {
			m.logger.Debug("stopping at page limit", "pages", page)
			break
		}
		if seen[*decoded.Next] {
			return nil, fmt.Errorf("%w: paging.next repeats %s", shared.ErrData, *decoded.Next)
		}
		next = *decoded.Next
	}

	return summaries, nil
}

// Query posts a GraphQL document with the session's credentials and returns the response data.
func (m *MixcloudService) Query(ctx context.Context, sess Session, q Query, vars map[string]any) (json.RawMessage, error) {
	if sess.CSRFToken == "" {
		return nil, fmt.Errorf("%w: session has no csrf token", shared.ErrAuth)
	}
	if vars == nil {
		vars = map[string]any{}
	}

	header := sess.Header()
	// The jar appends its own cookie to an explicit Cookie header.
	if m.jarCookie(m.graphQLURL, CSRFCookieName) != "" {
		header.Del("Cookie")
	}

	resp, err := m.api.PostJSON(ctx, m.graphQLURL, graphQLRequest{ID: q.ID, Query: q.Text, Variables: vars}, header)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: POST %s: status %d", shared.ErrNetwork, m.graphQLURL, resp.StatusCode)
	}

	return models.DecodeGraphQLResponse(resp.Body)
}

// ResolveCreator looks up the platform id for username.
func (m *MixcloudService) ResolveCreator(ctx context.Context, sess Session, username string) (*models.UserLookup, error) {
	data, err := m.Query(ctx, sess, UserLookupQuery, map[string]any{
		"lookup": map[string]any{"username": username},
		"first":  1,
	})
	if err != nil {
		return nil, err
	}

	lookup, err := models.DecodeUserLookup(data)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", username, err)
	}
	if lookup.Username == "" {
		lookup.Username = username
	}
	return lookup, nil
}

// Uploads walks every upload of the user with the given platform id.
func (m *MixcloudService) Uploads(ctx context.Context, sess Session, userID string, opts UploadOpts) ([]models.Upload, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.OrderBy == "" {
		opts.OrderBy = DefaultOrderBy
	}

	result, err := Paginate(ctx, m, sess, PageRequest{
		Query: UserUploadsQuery,
		Variables: map[string]any{
			"userId":  userID,
			"orderBy": opts.OrderBy,
		},
		PageSize: opts.PageSize,
		MaxPages: opts.MaxPages,
		OnPage:   opts.OnPage,
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("uploads walk finished", "requests", result.Requests, "uploads", len(result.Uploads), "reason", result.Stop)
	return result.Uploads, nil
}

func (m *MixcloudService) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := m.api.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: GET %s: status %d", shared.ErrNetwork, rawURL, resp.StatusCode)
	}
	return resp.Body, nil
}
