package services

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/desertthunder/fetchmixes/internal/models"
	"github.com/desertthunder/fetchmixes/internal/shared"
)

// GraphQLQuerier issues one authenticated GraphQL request and returns its data.
type GraphQLQuerier interface {
	Query(ctx context.Context, sess Session, q Query, vars map[string]any) (json.RawMessage, error)
}

// PageRequest describes an uploads walk.
//
// Variables are sent with every request; "first" and "afterCursor" are set by
// the driver.
type PageRequest struct {
	Query     Query
	Variables map[string]any
	PageSize  int
	MaxPages  int // 0 means no limit
	OnPage    func(page, edges int)
}

// StopReason says why a walk ended.
type StopReason string

const (
	StopNoNextPage StopReason = "no_next_page"
	StopEmptyPage  StopReason = "empty_page"
	StopPageLimit  StopReason = "page_limit"
)

// PageResult is the outcome of a completed walk.
type PageResult struct {
	Uploads  []models.Upload
	Requests int
	Stop     StopReason
}

// Paginate walks an uploads connection sequentially.
//
// Each request after the first carries the cursor of the last edge of the previous
// page. The walk ends when pageInfo.hasNextPage is false or a page has no edges.
// Any error discards everything accumulated so far.
func Paginate(ctx context.Context, q GraphQLQuerier, sess Session, req PageRequest) (*PageResult, error) {
	if req.PageSize <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive, got %d", shared.ErrInvalidArgument, req.PageSize)
	}

	result := &PageResult{Uploads: []models.Upload{}}
	var cursor *string

	for {
		vars := maps.Clone(req.Variables)
		if vars == nil {
			vars = map[string]any{}
		}
		vars["first"] = req.PageSize
		if cursor != nil {
			vars["afterCursor"] = *cursor
		} else {
			vars["afterCursor"] = nil
		}

		data, err := q.Query(ctx, sess, req.Query, vars)
		result.Requests++
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", result.Requests, err)
		}

		page, err := models.DecodeUploadsPage(data)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", result.Requests, err)
		}

		result.Uploads = append(result.Uploads, page.Edges...)
		if req.OnPage != nil {
			req.OnPage(result.Requests, len(page.Edges))
		}

		if len(page.Edges) == 0 {
			result.Stop = StopEmptyPage
			return result, nil
		}
		if !page.PageInfo.HasNextPage {
			result.Stop = StopNoNextPage
			return result, nil
		}
		if req.MaxPages > 0 && result.Requests >= req.MaxPages {
			result.Stop = StopPageLimit
			return result, nil
		}

		next := page.LastCursor()
		if cursor != nil && *next == *cursor {
			return nil, fmt.Errorf("%w: page %d: cursor %q did not advance", shared.ErrData, result.Requests, *next)
		}
		cursor = next
	}
}
