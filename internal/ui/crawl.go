package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/fetchmixes/internal/tasks"
)

// ViewState represents the current view of a [CrawlModel].
type ViewState int

const (
	CrawlingView ViewState = iota
	ResultView
)

// CrawlFunc runs a crawl that reports to progress and stops when ctx is cancelled.
// It must not close progress.
type CrawlFunc func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.CrawlResult, error)

// crawlRun is one started crawl. outcome is only read after finished is closed.
type crawlRun struct {
	cancel   context.CancelFunc
	progress chan tasks.ProgressUpdate
	finished chan struct{}
	outcome  crawlCompleteMsg
}

const maxLogLines = 8

// CrawlModel follows one crawl from start to finish.
type CrawlModel struct {
	ctx      context.Context
	username string
	run      CrawlFunc
	crawl    *crawlRun
	view     ViewState
	spinner  spinner.Model
	bar      progress.Model
	help     help.Model
	keys     keyMap
	progress tasks.ProgressUpdate
	fetched  int
	lines    []string
	result   *tasks.CrawlResult
	err      error
	width    int
}

// NewCrawlModel creates a model that starts run under ctx when the program starts.
func NewCrawlModel(ctx context.Context, username string, run CrawlFunc) *CrawlModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = NewStyle("#7D56F4")

	return &CrawlModel{
		ctx:      ctx,
		username: username,
		run:      run,
		view:     CrawlingView,
		spinner:  s,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Result stops a crawl that is still running, waits for it to return and reports
// its outcome. A crawl that ended without a result or an error was interrupted.
func (m *CrawlModel) Result() (*tasks.CrawlResult, error) {
	result, err := m.result, m.err
	if m.crawl != nil {
		m.crawl.cancel()
		<-m.crawl.finished
		result, err = m.crawl.outcome.result, m.crawl.outcome.err
	}
	if result == nil && err == nil {
		return nil, fmt.Errorf("crawl of %s interrupted: %w", m.username, context.Canceled)
	}
	return result, err
}

// Init starts the crawl and the spinner.
func (m *CrawlModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startCrawl())
}

// Update handles incoming messages and updates the model state.
func (m *CrawlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-4, 10), 60)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			if m.crawl != nil && m.view == CrawlingView {
				m.crawl.cancel()
			}
			return m, tea.Quit
		}
		if m.view == ResultView && key.Matches(msg, m.keys.enter) {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != CrawlingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		update := tasks.ProgressUpdate(msg)
		m.progress = update
		if update.State == tasks.PagesFetching {
			m.fetched = fetchedSoFar(update, m.fetched)
		}
		m.lines = append(m.lines, FormatUpdate(update))
		if len(m.lines) > maxLogLines {
			m.lines = m.lines[len(m.lines)-maxLogLines:]
		}
		return m, m.waitForProgress()

	case crawlCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m, nil
}

// fetchedSoFar reads the running total carried in a page update's Data, if any.
func fetchedSoFar(update tasks.ProgressUpdate, current int) int {
	if n, ok := update.Data.(int); ok {
		return n
	}
	return current
}

func (m *CrawlModel) startCrawl() tea.Cmd {
	parent := m.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	c := &crawlRun{
		cancel:   cancel,
		progress: make(chan tasks.ProgressUpdate, 50),
		finished: make(chan struct{}),
	}
	m.crawl = c

	go func() {
		defer cancel()
		result, err := m.run(ctx, c.progress)
		c.outcome = crawlCompleteMsg{result: result, err: err}
		close(c.progress)
		close(c.finished)
	}()

	return m.waitForProgress()
}

func (m *CrawlModel) waitForProgress() tea.Cmd {
	c := m.crawl
	return func() tea.Msg {
		update, ok := <-c.progress
		if !ok {
			<-c.finished
			return c.outcome
		}
		return progressUpdateMsg(update)
	}
}

// View renders the UI based on the current view state.
func (m *CrawlModel) View() string {
	if m.view == ResultView {
		return m.renderResult()
	}
	return m.renderCrawling()
}

func (m *CrawlModel) renderCrawling() string {
	var b strings.Builder
	b.WriteString(Styles.Title(fmt.Sprintf("Crawling %s", m.username)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), Styles.State(m.progress.State))

	if m.progress.State == tasks.PagesFetching {
		fmt.Fprintf(&b, "page %d, %d sets\n", m.progress.Step, m.fetched)
		if m.progress.Total > 0 {
			b.WriteString(m.bar.ViewAs(min(float64(m.fetched)/float64(m.progress.Total), 1)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Join(m.lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	return b.String()
}

func (m *CrawlModel) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s\n", Styles.Err(fmt.Sprintf("Crawl failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s\n", Styles.Err("No result available"), helpView)
	}

	title := Styles.OK(fmt.Sprintf("✓ Crawled %s", m.result.Creator.Username))
	info := fmt.Sprintf(
		"\nSource: %s\nFetched: %d sets\nNew: %d\nTook: %s",
		m.result.Source,
		m.result.Fetched,
		m.result.Inserted,
		m.result.Run.Duration().Round(time.Millisecond),
	)
	if m.result.Expected >= 0 && m.result.Expected != m.result.Fetched {
		info += "\n" + Styles.Warn(fmt.Sprintf("Profile lists %d sets", m.result.Expected))
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n", title, info, helpView)
}
