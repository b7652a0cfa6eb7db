package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/fetchmixes/internal/models"
	"github.com/desertthunder/fetchmixes/internal/repositories"
	"github.com/desertthunder/fetchmixes/internal/services"
	"github.com/desertthunder/fetchmixes/internal/shared"
)

const (
	SourceGraphQL = shared.SourceGraphQL
	SourceREST    = shared.SourceREST
)

// Store persists the outcome of a crawl in one all-or-nothing write.
//
// [repositories.SyncRepository] is the production implementation.
type Store interface {
	Save(ctx context.Context, req repositories.SyncRequest) (*repositories.SyncResult, error)
}

// CrawlOpts tunes a [CrawlEngine].
type CrawlOpts struct {
	Source   string // SourceGraphQL or SourceREST; empty means SourceGraphQL
	PageSize int
	OrderBy  string
	MaxPages int // 0 means no limit

	// Progress, if set, receives non-blocking updates.
	Progress chan<- ProgressUpdate
}

// CrawlResult describes a persisted crawl.
type CrawlResult struct {
	Creator  models.Creator  `json:"creator"`
	Source   string          `json:"source"`
	Expected int             `json:"expected"` // cloudcast_count from the profile, -1 when it could not be read
	Fetched  int             `json:"fetched"`
	Inserted int             `json:"inserted"`
	Run      models.CrawlRun `json:"run"`
}

// CrawlEngine crawls one creator at a time.
type CrawlEngine struct {
	platform services.Platform
	store    Store
	logger   *log.Logger
	opts     CrawlOpts
	state    State
	now      func() time.Time
}

// NewCrawlEngine creates a new crawl engine.
func NewCrawlEngine(platform services.Platform, store Store, logger *log.Logger, opts CrawlOpts) *CrawlEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if opts.Source == "" {
		opts.Source = SourceGraphQL
	}
	return &CrawlEngine{
		platform: platform,
		store:    store,
		logger:   logger,
		opts:     opts,
		state:    Unauthenticated,
		now:      time.Now,
	}
}

// State returns the state the last crawl reached.
func (e *CrawlEngine) State() State {
	return e.state
}

func (e *CrawlEngine) sendProgress(update ProgressUpdate) {
	if e.opts.Progress == nil {
		return
	}
	select {
	case e.opts.Progress <- update:
	default:
	}
}

func (e *CrawlEngine) transition(next State) {
	e.logger.Debug("crawl state", "from", e.state, "to", next)
	e.state = next
}

// abort moves the engine to [Aborted] and wraps err with the state it failed in.
func (e *CrawlEngine) abort(username string, err error) error {
	from := e.state
	e.transition(Aborted)
	e.sendProgress(abortedUpdate(from, err))
	e.logger.Error("crawl aborted", "username", username, "state", from, "err", err)
	return fmt.Errorf("crawl %s aborted while %s: %w", username, from, err)
}

// Crawl fetches every set of username and persists them together with the creator.
//
// Nothing is written unless every page was fetched and decoded.
func (e *CrawlEngine) Crawl(ctx context.Context, username string) (*CrawlResult, error) {
	if e.opts.Source != SourceGraphQL && e.opts.Source != SourceREST {
		return nil, fmt.Errorf("%w: unknown source %q", shared.ErrInvalidArgument, e.opts.Source)
	}

	e.state = Unauthenticated
	started := e.now()
	e.logger.Info("starting crawl", "username", username, "source", e.opts.Source)

	sess, err := e.platform.EstablishSession(ctx, username)
	if err != nil {
		return nil, e.abort(username, err)
	}
	e.transition(SessionEstablished)
	e.sendProgress(sessionUpdate(username))

	expected := e.expectedCount(ctx, username)

	lookup, err := e.platform.ResolveCreator(ctx, *sess, username)
	if err != nil {
		return nil, e.abort(username, err)
	}
	creator := models.Creator{Username: username, MixcloudID: lookup.ID}
	e.transition(CreatorResolved)
	e.sendProgress(resolvedUpdate(username, lookup.ID, expected))
	e.logger.Info("resolved creator", "username", username, "id", lookup.ID, "has_uploads", lookup.HasUploads)

	e.transition(PagesFetching)
	sets, err := e.fetch(ctx, *sess, username, lookup.ID, expected)
	if err != nil {
		return nil, e.abort(username, err)
	}
	if expected >= 0 && len(sets) != expected && e.opts.MaxPages == 0 {
		e.logger.Warn("fetched count differs from profile", "fetched", len(sets), "expected", expected)
	}

	run := &models.CrawlRun{
		ID:         shared.GenerateID(),
		Source:     e.opts.Source,
		Fetched:    len(sets),
		StartedAt:  started,
		FinishedAt: e.now(),
	}
	saved, err := e.store.Save(ctx, repositories.SyncRequest{Creator: creator, Sets: sets, Run: run})
	if err != nil {
		return nil, e.abort(username, err)
	}
	creator.ID = saved.CreatorID
	e.transition(Persisted)

	result := &CrawlResult{
		Creator:  creator,
		Source:   e.opts.Source,
		Expected: expected,
		Fetched:  len(sets),
		Inserted: saved.Inserted,
		Run:      *run,
	}
	e.sendProgress(persistedUpdate(result))
	e.logger.Info("crawl persisted", "username", username, "fetched", result.Fetched, "inserted", result.Inserted, "took", run.Duration())
	return result, nil
}

// expectedCount reads cloudcast_count from the REST profile. The count is only
// informational, so a failure is logged and reported as -1.
func (e *CrawlEngine) expectedCount(ctx context.Context, username string) int {
	profile, err := e.platform.Profile(ctx, username)
	if err != nil {
		e.logger.Warn("could not read profile", "username", username, "err", err)
		return -1
	}
	e.logger.Info("profile", "username", profile.Username, "cloudcasts", profile.CloudcastCount)
	return profile.CloudcastCount
}

func (e *CrawlEngine) fetch(ctx context.Context, sess services.Session, username, userID string, expected int) ([]models.PublishedSet, error) {
	switch e.opts.Source {
	case SourceREST:
		summaries, err := e.platform.Cloudcasts(ctx, username, e.opts.MaxPages)
		if err != nil {
			return nil, err
		}
		sets := make([]models.PublishedSet, 0, len(summaries))
		for _, s := range summaries {
			sets = append(sets, models.NewSetFromSummary(s))
		}
		e.sendProgress(pageUpdate(1, len(sets), len(sets), expected))
		return sets, nil
	default:
		fetched := 0
		uploads, err := e.platform.Uploads(ctx, sess, userID, services.UploadOpts{
			PageSize: e.opts.PageSize,
			OrderBy:  e.opts.OrderBy,
			MaxPages: e.opts.MaxPages,
			OnPage: func(page, edges int) {
				fetched += edges
				e.logger.Debug("fetched page", "page", page, "edges", edges)
				e.sendProgress(pageUpdate(page, edges, fetched, expected))
			},
		})
		if err != nil {
			return nil, err
		}
		sets := make([]models.PublishedSet, 0, len(uploads))
		for _, u := range uploads {
			sets = append(sets, models.NewSetFromCloudcast(u.Cloudcast))
		}
		return sets, nil
	}
}
