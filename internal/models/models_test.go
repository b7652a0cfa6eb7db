package models

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/fetchmixes/internal/shared"
)

func TestCreatorValidate(t *testing.T) {
	if err := (Creator{Username: "alice", MixcloudID: "42"}).Validate(); err != nil {
		t.Errorf("expected valid creator, got %v", err)
	}
	if err := (Creator{Username: " ", MixcloudID: "42"}).Validate(); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank username, got %v", err)
	}
	if err := (Creator{Username: "alice"}).Validate(); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing id, got %v", err)
	}
}

func TestPublishedSet(t *testing.T) {
	published := time.Date(2021, 3, 4, 5, 6, 7, 0, time.FixedZone("CET", 3600))

	t.Run("From Summary", func(t *testing.T) {
		set := NewSetFromSummary(CloudcastSummary{
			URL:         "https://m/a/",
			CoverURL:    "https://img/a.jpg",
			CreatedTime: published,
			UpdatedTime: published.Add(time.Hour),
		})

		if set.PublishedAt.Location() != time.UTC {
			t.Error("expected instants to be normalized to UTC")
		}
		if !set.PublishedAt.Equal(published) {
			t.Errorf("expected same instant, got %v", set.PublishedAt)
		}
		if set.UpdatedAt.Sub(set.PublishedAt) != time.Hour {
			t.Errorf("expected updated an hour later, got %v", set.UpdatedAt)
		}
		if err := set.Validate(); err != nil {
			t.Errorf("expected valid set, got %v", err)
		}
	})

	t.Run("From Cloudcast", func(t *testing.T) {
		set := NewSetFromCloudcast(Cloudcast{
			URL:         "https://m/b/",
			Picture:     &Picture{URLRoot: "extaudio/x.jpg"},
			PublishDate: published,
		})

		if set.CoverURL != ThumbnailerBase+"extaudio/x.jpg" {
			t.Errorf("unexpected cover url %q", set.CoverURL)
		}
		if !set.UpdatedAt.Equal(set.PublishedAt) {
			t.Error("expected updated date to fall back to the publish date")
		}
	})

	t.Run("From Cloudcast Without Picture", func(t *testing.T) {
		set := NewSetFromCloudcast(Cloudcast{URL: "https://m/c/", PublishDate: published})
		if set.CoverURL != "" {
			t.Errorf("expected empty cover url, got %q", set.CoverURL)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := (PublishedSet{PublishedAt: published}).Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for missing url, got %v", err)
		}
		if err := (PublishedSet{URL: "u"}).Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for missing date, got %v", err)
		}
	})
}

func TestPictureCoverURL(t *testing.T) {
	tc := []struct {
		root string
		want string
	}{
		{root: "", want: ""},
		{root: "extaudio/a.jpg", want: ThumbnailerBase + "extaudio/a.jpg"},
		{root: "/extaudio/a.jpg", want: ThumbnailerBase + "extaudio/a.jpg"},
		{root: "https://cdn/a.jpg", want: "https://cdn/a.jpg"},
	}

	for _, tt := range tc {
		if got := (Picture{URLRoot: tt.root}).CoverURL(); got != tt.want {
			t.Errorf("CoverURL(%q) = %q, want %q", tt.root, got, tt.want)
		}
	}
}

func TestCrawlRunDuration(t *testing.T) {
	start := time.Now()
	run := CrawlRun{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}
	if run.Duration() != 90*time.Second {
		t.Errorf("expected 90s, got %v", run.Duration())
	}
}
