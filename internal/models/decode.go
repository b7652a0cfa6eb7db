package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/fetchmixes/internal/shared"
)

// GraphQLError is one entry of a GraphQL response's "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func dataError(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", shared.ErrData, what, err)
}

// DecodeGraphQLResponse unwraps a GraphQL response body and returns its "data" member.
//
// A response carrying errors, or no data at all, is a [shared.ErrData].
func DecodeGraphQLResponse(body []byte) (json.RawMessage, error) {
	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []GraphQLError  `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, dataError("graphql response", err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return nil, fmt.Errorf("%w: graphql errors: %s", shared.ErrData, strings.Join(messages, "; "))
	}

	if isNull(envelope.Data) {
		return nil, fmt.Errorf("%w: graphql response has no data", shared.ErrData)
	}

	return envelope.Data, nil
}

// DecodeUploadsPage decodes the data of a user uploads query (data.user.uploads).
//
// One malformed edge fails the whole page.
func DecodeUploadsPage(data json.RawMessage) (*UploadsPage, error) {
	var payload struct {
		User *struct {
			Uploads *struct {
				Edges    []Upload  `json:"edges"`
				PageInfo *PageInfo `json:"pageInfo"`
			} `json:"uploads"`
		} `json:"user"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, dataError("uploads page", err)
	}

	check := fieldCheck{record: "uploads page"}
	check.require("user", payload.User != nil)
	check.require("user.uploads", payload.User != nil && payload.User.Uploads != nil)
	check.require("user.uploads.pageInfo", payload.User != nil && payload.User.Uploads != nil && payload.User.Uploads.PageInfo != nil)
	if err := check.err(); err != nil {
		return nil, dataError("uploads page", err)
	}

	uploads := payload.User.Uploads
	page := &UploadsPage{Edges: uploads.Edges, PageInfo: *uploads.PageInfo}
	if page.Edges == nil {
		page.Edges = []Upload{}
	}
	return page, nil
}

// DecodeUserLookup decodes the data of a user lookup query (data.userLookup).
//
// A null userLookup means the platform knows no such user.
func DecodeUserLookup(data json.RawMessage) (*UserLookup, error) {
	var payload struct {
		UserLookup *struct {
			ID       *string `json:"id"`
			Username *string `json:"username"`
			Uploads  *struct {
				Edges    []Upload `json:"edges"`
				PageInfo PageInfo `json:"pageInfo"`
			} `json:"uploads"`
		} `json:"userLookup"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, dataError("user lookup", err)
	}

	if payload.UserLookup == nil {
		return nil, shared.ErrCreatorNotFound
	}

	user := payload.UserLookup
	check := fieldCheck{record: "user lookup"}
	check.require("id", user.ID != nil && *user.ID != "")
	if err := check.err(); err != nil {
		return nil, dataError("user lookup", err)
	}

	lookup := &UserLookup{ID: *user.ID}
	if user.Username != nil {
		lookup.Username = *user.Username
	}
	if user.Uploads != nil && len(user.Uploads.Edges) > 0 {
		first := user.Uploads.Edges[0]
		lookup.FirstUpload = &first
		lookup.HasUploads = true
	}
	return lookup, nil
}

// DecodeProfile decodes the REST user document.
func DecodeProfile(body []byte) (*Profile, error) {
	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, dataError("profile", err)
	}
	return &profile, nil
}

// DecodeCloudcastPage decodes one page of the REST cloudcasts listing.
//
// Every summary must be complete; one malformed record fails the whole page.
func DecodeCloudcastPage(body []byte) (*CloudcastPage, error) {
	var payload struct {
		Data   *[]CloudcastSummary `json:"data"`
		Paging *struct {
			Next *string `json:"next"`
		} `json:"paging"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, dataError("cloudcast page", err)
	}

	if payload.Data == nil {
		return nil, dataError("cloudcast page", &FieldError{Record: "cloudcast page", Fields: []string{"data"}})
	}

	page := &CloudcastPage{Data: *payload.Data}
	if payload.Paging != nil && payload.Paging.Next != nil && *payload.Paging.Next != "" {
		page.Next = payload.Paging.Next
	}
	return page, nil
}

// DecodeSummaries decodes a bare array of REST cloudcast summaries.
func DecodeSummaries(body []byte) ([]CloudcastSummary, error) {
	var summaries []CloudcastSummary
	if err := json.Unmarshal(body, &summaries); err != nil {
		return nil, dataError("cloudcast summaries", err)
	}
	return summaries, nil
}
