package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/fetchmixes/internal/models"
	"github.com/desertthunder/fetchmixes/internal/repositories"
	"github.com/desertthunder/fetchmixes/internal/shared"
	"github.com/desertthunder/fetchmixes/internal/tasks"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02 15:04"
	urlWidth   = 64
)

var (
	headerStyle = NewBold("#7D56F4").Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = NewStyle("#626262")
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// CreatorsTable renders stored creators with their set counts.
func CreatorsTable(creators []repositories.CreatorSummary) string {
	t := newTable("ID", "Username", "Mixcloud ID", "Sets")
	for _, c := range creators {
		t.Row(strconv.FormatInt(c.ID, 10), c.Username, c.MixcloudID, strconv.Itoa(c.Sets))
	}
	return t.String()
}

// SetsTable renders sets newest first as stored.
func SetsTable(sets []models.PublishedSet) string {
	t := newTable("ID", "Published", "Updated", "URL")
	for _, s := range sets {
		t.Row(
			strconv.FormatInt(s.ID, 10),
			s.PublishedAt.UTC().Format(dateLayout),
			s.UpdatedAt.UTC().Format(dateLayout),
			shared.Truncate(s.URL, urlWidth),
		)
	}
	return t.String()
}

// CrawlsTable renders the crawl history.
func CrawlsTable(runs []repositories.CrawlRunEntry) string {
	t := newTable("Finished", "Creator", "Source", "Fetched", "New", "Took")
	for _, r := range runs {
		t.Row(
			r.FinishedAt.Local().Format(timeLayout),
			r.Username,
			r.Source,
			strconv.Itoa(r.Fetched),
			strconv.Itoa(r.Inserted),
			r.Duration().Round(time.Millisecond).String(),
		)
	}
	return t.String()
}

// FormatUpdate renders one progress update as a single line.
func FormatUpdate(update tasks.ProgressUpdate) string {
	prefix := fmt.Sprintf("[%s]", Styles.State(update.State))
	if update.State == tasks.PagesFetching && update.Total > 0 {
		return fmt.Sprintf("%s %s (expecting %d)", prefix, update.Message, update.Total)
	}
	return fmt.Sprintf("%s %s", prefix, update.Message)
}
