package ui

import (
	"github.com/desertthunder/fetchmixes/internal/tasks"
)

type progressUpdateMsg tasks.ProgressUpdate

type crawlCompleteMsg struct {
	result *tasks.CrawlResult
	err    error
}
