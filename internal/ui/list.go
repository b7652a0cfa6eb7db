package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/fetchmixes/internal/models"
)

var _ list.Item = setItem{}

// setItem wraps [models.PublishedSet] to implement [list.Item].
type setItem struct {
	set models.PublishedSet
}

func (i setItem) FilterValue() string { return i.set.URL }
func (i setItem) Title() string       { return setSlug(i.set.URL) }
func (i setItem) Description() string {
	desc := fmt.Sprintf("published %s", i.set.PublishedAt.UTC().Format(dateLayout))
	if !i.set.UpdatedAt.Equal(i.set.PublishedAt) {
		desc = fmt.Sprintf("%s • updated %s", desc, i.set.UpdatedAt.UTC().Format(dateLayout))
	}
	return fmt.Sprintf("%s • %s", desc, i.set.URL)
}

func setSlug(rawURL string) string {
	trimmed := strings.TrimSuffix(rawURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 && i < len(trimmed)-1 {
		return trimmed[i+1:]
	}
	return rawURL
}
