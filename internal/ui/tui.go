// Package ui provides the terminal task board.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/storage"
	"github.com/nibzard/tasks-go/internal/task"
)

// BoardOption configures the board.
type BoardOption func(*boardConfig)

type boardConfig struct {
	interval time.Duration
	log      *log.Logger
}

// WithRefreshInterval sets how often the board re-reads the state file when
// no change notification arrives.
func WithRefreshInterval(d time.Duration) BoardOption {
	return func(c *boardConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger for watcher problems.
func WithLogger(l *log.Logger) BoardOption {
	return func(c *boardConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// RunBoard shows the tasks in statePath and redraws whenever the file changes.
func RunBoard(ctx context.Context, statePath string, opts ...BoardOption) error {
	c := &boardConfig{
		interval: 2 * time.Second,
		log:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes, err := watchFile(ctx, statePath)
	if err != nil {
		c.log.Warn("live reload unavailable, polling instead", "err", err)
	}

	model := newBoardModel(statePath, changes, c.interval)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}

type boardModel struct {
	statePath    string
	changes      <-chan struct{}
	tickInterval time.Duration
	loadErr      error
	data         *boardData
	filter       task.Status
	showHelp     bool
}

type boardData struct {
	tasks        []task.Task
	counts       map[task.Status]int
	waitingOn    map[int][]int
	currentLabel string
	currentTask  *task.Task
	allDone      bool
	recent       []task.Task
}

type tickMsg time.Time

type fileChangedMsg struct{}

func newBoardModel(statePath string, changes <-chan struct{}, interval time.Duration) *boardModel {
	return &boardModel{
		statePath:    statePath,
		changes:      changes,
		tickInterval: interval,
	}
}

func (m *boardModel) Init() tea.Cmd {
	m.refresh()
	cmds := []tea.Cmd{tickCmd(m.tickInterval)}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

var filterKeys = map[string]task.Status{
	"1": task.StatusOpen,
	"2": task.StatusInProgress,
	"3": task.StatusBlocked,
	"4": task.StatusCompleted,
	"0": "",
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		}
		if status, ok := filterKeys[key]; ok {
			m.filter = status
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	case fileChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)
	}
	return m, nil
}

func (m *boardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tasks") + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.statePath)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading task file:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.statePath)
		return b.String()
	}
	if m.data == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.statePath)
		return b.String()
	}

	writeOverview(&b, m.data)
	writeCurrentTask(&b, m.data)
	writeTaskList(&b, m.data, m.filter)
	writeRecent(&b, m.data)
	writeFooter(&b, m.statePath)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func (m *boardModel) refresh() {
	p := storage.NewPersister(task.NewStore())
	if _, err := p.Restore(m.statePath); err != nil {
		m.loadErr = err
		m.data = nil
		return
	}
	m.loadErr = nil
	m.data = buildBoardData(p.Store())
}

func buildBoardData(s *task.Store) *boardData {
	data := &boardData{
		tasks:     s.Snapshot(),
		counts:    make(map[task.Status]int, len(task.Statuses)),
		waitingOn: make(map[int][]int),
	}

	byID := make(map[int]task.Task, len(data.tasks))
	for _, t := range data.tasks {
		byID[t.ID] = t
		data.counts[t.Status]++
	}
	for _, t := range data.tasks {
		for _, dep := range t.Dependencies {
			if byID[dep].Status != task.StatusCompleted {
				data.waitingOn[t.ID] = append(data.waitingOn[t.ID], dep)
			}
		}
	}

	if current := firstWithStatus(data.tasks, task.StatusInProgress); current != nil {
		data.currentLabel = "Current Task"
		data.currentTask = current
	} else if next := nextReady(data.tasks, data.waitingOn); next != nil {
		data.currentLabel = "Next Task"
		data.currentTask = next
	} else if data.counts[task.StatusCompleted] == len(data.tasks) {
		data.currentLabel = "All Tasks Done"
		data.allDone = true
	} else {
		data.currentLabel = "Next Task"
	}

	var done []task.Task
	for _, t := range data.tasks {
		if t.Status == task.StatusCompleted {
			done = append(done, t)
		}
	}
	slices.SortStableFunc(done, func(a, b task.Task) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if len(done) > 5 {
		done = done[:5]
	}
	data.recent = done
	return data
}

func firstWithStatus(tasks []task.Task, status task.Status) *task.Task {
	for i := range tasks {
		if tasks[i].Status == status {
			return &tasks[i]
		}
	}
	return nil
}

// nextReady picks the open task with no unfinished dependencies, highest
// priority first, then lowest id.
func nextReady(tasks []task.Task, waitingOn map[int][]int) *task.Task {
	var best *task.Task
	for i := range tasks {
		t := &tasks[i]
		if t.Status != task.StatusOpen || len(waitingOn[t.ID]) > 0 {
			continue
		}
		if best == nil || priorityRank(t.Priority) > priorityRank(best.Priority) {
			best = t
		}
	}
	return best
}

func priorityRank(p task.Priority) int {
	return slices.Index(task.Priorities, p)
}

func writeOverview(b *strings.Builder, data *boardData) {
	b.WriteString(sectionStyle.Render("Overview") + "\n\n")
	b.WriteString(fmt.Sprintf("  Open: %d  In progress: %d  Blocked: %d  Completed: %d\n\n",
		data.counts[task.StatusOpen],
		data.counts[task.StatusInProgress],
		data.counts[task.StatusBlocked],
		data.counts[task.StatusCompleted],
	))
}

func writeCurrentTask(b *strings.Builder, data *boardData) {
	b.WriteString(sectionStyle.Render(data.currentLabel) + "\n\n")
	switch {
	case data.allDone:
		b.WriteString("  No pending tasks remaining.\n\n")
	case data.currentTask != nil:
		b.WriteString(formatTask(*data.currentTask, data.waitingOn, true))
		b.WriteString("\n\n")
	default:
		b.WriteString("  Nothing ready: every open task is waiting on a dependency.\n\n")
	}
}

func writeTaskList(b *strings.Builder, data *boardData, filter task.Status) {
	heading := "All Tasks"
	if filter != "" {
		heading = fmt.Sprintf("Tasks: %s (0 to clear)", filter)
	}
	b.WriteString(sectionStyle.Render(heading) + "\n\n")

	shown := 0
	for _, t := range data.tasks {
		if filter != "" && t.Status != filter {
			continue
		}
		b.WriteString(formatTask(t, data.waitingOn, false) + "\n")
		shown++
	}
	if shown == 0 {
		b.WriteString(mutedStyle.Render("  No tasks.") + "\n")
	}
	b.WriteString("\n")
}

func writeRecent(b *strings.Builder, data *boardData) {
	b.WriteString(sectionStyle.Render("Recently Completed") + "\n\n")
	if len(data.recent) == 0 {
		b.WriteString("  No completed tasks yet.\n\n")
		return
	}
	for _, t := range data.recent {
		b.WriteString(formatTask(t, data.waitingOn, false) + "\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString(sectionStyle.Render("Keyboard Shortcuts") + "\n\n")
	rows := [][2]string{
		{"q, ctrl+c", "Quit"},
		{"r, F5", "Reload the task file"},
		{"h, ?", "Toggle this help screen"},
		{"1", "Show open tasks"},
		{"2", "Show in-progress tasks"},
		{"3", "Show blocked tasks"},
		{"4", "Show completed tasks"},
		{"0", "Show all tasks"},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-10s", row[0])), row[1]))
	}
	b.WriteString("\n")
}

func writeFooter(b *strings.Builder, statePath string) {
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s | h for help | q to quit", statePath)) + "\n")
}

var statusIcons = map[task.Status]string{
	task.StatusOpen:       " ",
	task.StatusInProgress: ">",
	task.StatusBlocked:    "!",
	task.StatusCompleted:  "x",
}

func formatTask(t task.Task, waitingOn map[int][]int, verbose bool) string {
	icon := statusStyle(t.Status).Render(statusIcons[t.Status])
	line := fmt.Sprintf("  %s [%d] (%s) %s", icon, t.ID, t.Priority, t.Title)
	if deps := waitingOn[t.ID]; len(deps) > 0 {
		line += mutedStyle.Render(fmt.Sprintf("  waits on %s", formatIDs(deps)))
	}
	if len(t.Tags) > 0 {
		line += mutedStyle.Render("  #" + strings.Join(t.Tags, " #"))
	}
	if !verbose || t.Notes == "" {
		return line
	}
	notes := []rune(t.Notes)
	if len(notes) > 60 {
		notes = append(notes[:57], []rune("...")...)
	}
	return line + "\n      " + string(notes)
}

func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
