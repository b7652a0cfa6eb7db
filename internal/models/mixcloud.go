package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ThumbnailerBase prefixes a picture's url root to build a full-size cover URL.
const ThumbnailerBase = "https://thumbnailer.mixcloud.com/unsafe/1200x1200/"

// FieldError reports mandatory fields missing from a decoded record.
type FieldError struct {
	Record string
	Fields []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: missing mandatory field(s) %s", e.Record, strings.Join(e.Fields, ", "))
}

type fieldCheck struct {
	record  string
	missing []string
}

func (f *fieldCheck) require(name string, present bool) {
	if !present {
		f.missing = append(f.missing, name)
	}
}

func (f *fieldCheck) err() error {
	if len(f.missing) == 0 {
		return nil
	}
	return &FieldError{Record: f.record, Fields: f.missing}
}

// CloudcastSummary is one entry of the REST cloudcasts listing. Every field is mandatory.
type CloudcastSummary struct {
	URL         string    `json:"url"`
	CoverURL    string    `json:"cover_url"`
	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

func (c *CloudcastSummary) UnmarshalJSON(b []byte) error {
	var raw struct {
		URL      *string `json:"url"`
		Pictures *struct {
			ExtraLarge *string `json:"extra_large"`
		} `json:"pictures"`
		CreatedTime *time.Time `json:"created_time"`
		UpdatedTime *time.Time `json:"updated_time"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	check := fieldCheck{record: "cloudcast summary"}
	check.require("url", raw.URL != nil)
	check.require("pictures.extra_large", raw.Pictures != nil && raw.Pictures.ExtraLarge != nil)
	check.require("created_time", raw.CreatedTime != nil)
	check.require("updated_time", raw.UpdatedTime != nil)
	if err := check.err(); err != nil {
		return err
	}

	*c = CloudcastSummary{
		URL:         *raw.URL,
		CoverURL:    *raw.Pictures.ExtraLarge,
		CreatedTime: *raw.CreatedTime,
		UpdatedTime: *raw.UpdatedTime,
	}
	return nil
}

// Profile is the REST user document.
type Profile struct {
	Username       string `json:"username"`
	Name           string `json:"name"`
	CloudcastCount int    `json:"cloudcast_count"`
}

func (p *Profile) UnmarshalJSON(b []byte) error {
	var raw struct {
		Username       *string `json:"username"`
		Name           *string `json:"name"`
		CloudcastCount *int    `json:"cloudcast_count"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	check := fieldCheck{record: "profile"}
	check.require("username", raw.Username != nil)
	check.require("cloudcast_count", raw.CloudcastCount != nil)
	if err := check.err(); err != nil {
		return err
	}

	*p = Profile{Username: *raw.Username, CloudcastCount: *raw.CloudcastCount}
	if raw.Name != nil {
		p.Name = *raw.Name
	}
	return nil
}

// CloudcastPage is one page of the REST cloudcasts listing.
type CloudcastPage struct {
	Data []CloudcastSummary
	Next *string // nil on the last page
}

// StreamInfo locates a cloudcast's audio. Absent entirely for region-restricted content.
type StreamInfo struct {
	URL     string  `json:"url"`
	UUID    string  `json:"uuid"`
	HLSURL  *string `json:"hlsUrl,omitempty"`
	DashURL *string `json:"dashUrl,omitempty"`
}

func (s *StreamInfo) UnmarshalJSON(b []byte) error {
	var raw struct {
		URL     *string `json:"url"`
		UUID    *string `json:"uuid"`
		HLSURL  *string `json:"hlsUrl"`
		DashURL *string `json:"dashUrl"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	check := fieldCheck{record: "stream info"}
	check.require("url", raw.URL != nil)
	check.require("uuid", raw.UUID != nil)
	if err := check.err(); err != nil {
		return err
	}

	*s = StreamInfo{URL: *raw.URL, UUID: *raw.UUID, HLSURL: raw.HLSURL, DashURL: raw.DashURL}
	return nil
}

// Picture is a cloudcast's cover image as exposed by the GraphQL API.
type Picture struct {
	URLRoot string `json:"urlRoot"`
}

// CoverURL resolves the picture to a full-size image URL.
func (p Picture) CoverURL() string {
	if p.URLRoot == "" || strings.HasPrefix(p.URLRoot, "http://") || strings.HasPrefix(p.URLRoot, "https://") {
		return p.URLRoot
	}
	return ThumbnailerBase + strings.TrimPrefix(p.URLRoot, "/")
}

// Cloudcast is a GraphQL upload node.
type Cloudcast struct {
	ID          string      `json:"id"`
	AudioLength int         `json:"audioLength"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	Picture     *Picture    `json:"picture,omitempty"`
	StreamInfo  *StreamInfo `json:"streamInfo,omitempty"`
	PublishDate time.Time   `json:"publishDate"`
}

// Duration returns the audio length as a [time.Duration].
func (c Cloudcast) Duration() time.Duration {
	return time.Duration(c.AudioLength) * time.Second
}

func (c *Cloudcast) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID          *string     `json:"id"`
		AudioLength *int        `json:"audioLength"`
		Name        *string     `json:"name"`
		Description *string     `json:"description"`
		URL         *string     `json:"url"`
		Picture     *Picture    `json:"picture"`
		StreamInfo  *StreamInfo `json:"streamInfo"`
		PublishDate *time.Time  `json:"publishDate"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	check := fieldCheck{record: "cloudcast"}
	check.require("id", raw.ID != nil)
	check.require("audioLength", raw.AudioLength != nil)
	check.require("name", raw.Name != nil)
	check.require("description", raw.Description != nil)
	check.require("url", raw.URL != nil)
	check.require("publishDate", raw.PublishDate != nil)
	if err := check.err(); err != nil {
		return err
	}

	*c = Cloudcast{
		ID:          *raw.ID,
		AudioLength: *raw.AudioLength,
		Name:        *raw.Name,
		Description: *raw.Description,
		URL:         *raw.URL,
		Picture:     raw.Picture,
		StreamInfo:  raw.StreamInfo,
		PublishDate: *raw.PublishDate,
	}
	return nil
}

// Upload is one edge of a user's uploads connection.
type Upload struct {
	Cloudcast Cloudcast `json:"node"`
	Cursor    string    `json:"cursor"`
}

func (u *Upload) UnmarshalJSON(b []byte) error {
	var raw struct {
		Node   *Cloudcast `json:"node"`
		Cursor *string    `json:"cursor"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	check := fieldCheck{record: "upload edge"}
	check.require("node", raw.Node != nil)
	check.require("cursor", raw.Cursor != nil)
	if err := check.err(); err != nil {
		return err
	}

	*u = Upload{Cloudcast: *raw.Node, Cursor: *raw.Cursor}
	return nil
}

// PageInfo is the paging state of a connection.
type PageInfo struct {
	EndCursor   *string `json:"endCursor,omitempty"`
	HasNextPage bool    `json:"hasNextPage"`
}

func (p *PageInfo) UnmarshalJSON(b []byte) error {
	var raw struct {
		EndCursor   *string `json:"endCursor"`
		HasNextPage *bool   `json:"hasNextPage"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	check := fieldCheck{record: "page info"}
	check.require("hasNextPage", raw.HasNextPage != nil)
	if err := check.err(); err != nil {
		return err
	}

	*p = PageInfo{EndCursor: raw.EndCursor, HasNextPage: *raw.HasNextPage}
	return nil
}

// UploadsPage is one page of a user's uploads connection.
type UploadsPage struct {
	Edges    []Upload
	PageInfo PageInfo
}

// LastCursor returns the cursor of the final edge, or nil for an empty page.
func (p UploadsPage) LastCursor() *string {
	if len(p.Edges) == 0 {
		return nil
	}
	cursor := p.Edges[len(p.Edges)-1].Cursor
	return &cursor
}

// UserLookup is the result of resolving a username through GraphQL.
type UserLookup struct {
	ID          string
	Username    string
	FirstUpload *Upload // nil when the user has no uploads
	HasUploads  bool
}
