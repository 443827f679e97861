package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tanq16/parget/internal/utils"
	"golang.org/x/term"
)

const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusSuccess = "success"
	StatusError   = "error"
)

type JobOutput struct {
	ID          int
	Label       string
	Status      string
	Message     string
	StreamLines []string
	Complete    bool
	StartTime   time.Time
	LastUpdated time.Time
	Error       error
}

type ErrorReport struct {
	Label string
	Error error
	Time  time.Time
}

type Manager struct {
	out         io.Writer
	fd          int
	interactive bool // redraw in place with cursor movement
	outputs     map[int]*JobOutput
	mutex       sync.RWMutex
	numLines    int
	maxStreams  int
	errors      []ErrorReport
	doneCh      chan struct{}
	displayTick time.Duration
	jobCount    int
	displayWg   sync.WaitGroup
	stopOnce    sync.Once
}

func NewManager() *Manager {
	return NewManagerWithWriter(os.Stdout)
}

// NewManagerWithWriter renders to w. In-place redraws only happen when w is a
// terminal; otherwise the final state and summary are written once on stop.
func NewManagerWithWriter(w io.Writer) *Manager {
	m := &Manager{
		out:         w,
		fd:          -1,
		outputs:     make(map[int]*JobOutput),
		maxStreams:  5,
		doneCh:      make(chan struct{}),
		displayTick: 200 * time.Millisecond,
	}
	if f, ok := w.(*os.File); ok {
		m.fd = int(f.Fd())
		m.interactive = term.IsTerminal(m.fd)
	}
	return m
}

func (m *Manager) RegisterFunction(label string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.jobCount++
	now := time.Now()
	m.outputs[m.jobCount] = &JobOutput{
		ID:          m.jobCount,
		Label:       label,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
	}
	return m.jobCount
}

func (m *Manager) SetMessage(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Message = message
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) SetStatus(id int, status string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Status = status
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) Complete(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.StreamLines = nil
		if message == "" {
			info.Message = fmt.Sprintf("Completed %s", info.Label)
		} else {
			info.Message = message
		}
		info.Complete = true
		info.Status = StatusSuccess
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) ReportError(id int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.StreamLines = nil
		info.Complete = true
		info.Status = StatusError
		info.Error = err
		info.Message = fmt.Sprintf("Failed %s", info.Label)
		info.LastUpdated = time.Now()
		m.errors = append(m.errors, ErrorReport{
			Label: info.Label,
			Error: err,
			Time:  time.Now(),
		})
	}
}

// AddProgressBarToStream replaces the job's stream with a single progress line
// built from a (completed, total) snapshot.
func (m *Manager) AddProgressBarToStream(id int, completed, total int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		bar := PrintProgressBar(completed, total, 30)
		sizes := fmt.Sprintf("%s / %s", FormatBytes(completed), FormatBytes(total))
		speed := FormatSpeed(completed, time.Since(info.StartTime))
		info.StreamLines = []string{fmt.Sprintf("%s%s %s %s", bar, debugStyle.Render(sizes), barEdge, debugStyle.Render(speed))}
		info.LastUpdated = time.Now()
	}
}

// sortedOutputs returns jobs in registration order, active ones first.
func (m *Manager) sortedOutputs() []*JobOutput {
	all := make([]*JobOutput, 0, len(m.outputs))
	for _, info := range m.outputs {
		all = append(all, info)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Complete != all[j].Complete {
			return !all[i].Complete
		}
		return all[i].ID < all[j].ID
	})
	return all
}

// renderLines lays out every job for a terminal width cells wide. Messages
// wrap so each returned string occupies exactly one terminal row.
func (m *Manager) renderLines(width int) []string {
	var lines []string
	for _, info := range m.sortedOutputs() {
		elapsed := time.Since(info.StartTime)
		if info.Complete {
			elapsed = info.LastUpdated.Sub(info.StartTime)
		}
		message := info.Message
		if message == "" && info.Status == StatusPending {
			message = "Waiting..."
		}
		look := lookFor(info.Status)
		elapsedStr := elapsed.Round(time.Millisecond).String()
		prefix := fmt.Sprintf("  %s %s ", look.style.Render(look.symbol), debugStyle.Render(elapsedStr))
		for i, part := range wrapText(message, width-lipgloss.Width(prefix)) {
			if i == 0 {
				lines = append(lines, prefix+look.style.Render(part))
			} else {
				lines = append(lines, strings.Repeat(" ", lipgloss.Width(prefix))+look.style.Render(part))
			}
		}
		for _, line := range info.StreamLines {
			lines = append(lines, "      "+streamStyle.Render(line))
		}
	}
	return lines
}

func (m *Manager) updateDisplay() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	width, height := terminalSize(m.fd)
	lines := m.renderLines(width)
	if m.interactive {
		if available := height - 3; len(lines) > available && available > 0 {
			lines = lines[len(lines)-available:]
		}
		if m.numLines > 0 {
			fmt.Fprintf(m.out, "\033[%dA\033[J", m.numLines)
		}
	}
	for _, line := range lines {
		fmt.Fprintln(m.out, line)
	}
	m.numLines = len(lines)
}

func (m *Manager) StartDisplay() {
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if m.interactive {
					m.updateDisplay()
				}
			case <-m.doneCh:
				m.updateDisplay()
				m.ShowSummary()
				return
			}
		}
	}()
}

// StopDisplay renders the final state and the summary. Safe to call twice.
func (m *Manager) StopDisplay() {
	m.stopOnce.Do(func() {
		close(m.doneCh)
	})
	m.displayWg.Wait()
}

func (m *Manager) displayErrors() {
	if len(m.errors) == 0 {
		return
	}
	fmt.Fprintln(m.out)
	errorStyle := lookFor(StatusError).style
	fmt.Fprintln(m.out, "  "+errorStyle.Bold(true).Render("Errors:"))
	for i, report := range m.errors {
		fmt.Fprintf(m.out, "    %s %s %s\n",
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", report.Time.Format("15:04:05"))),
			errorStyle.Render(report.Label))
		fmt.Fprintf(m.out, "      %s\n", errorStyle.Render(fmt.Sprintf("%s: %v", utils.ErrorKind(report.Error), report.Error)))
	}
}

func (m *Manager) ShowSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	success, failures := m.counts()
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "  "+summaryStyle.Render(fmt.Sprintf("Completed %d of %d", success, len(m.outputs))))
	if failures > 0 {
		fmt.Fprintln(m.out, "  "+FError(fmt.Sprintf("Failed %d of %d", failures, len(m.outputs))))
	}
	m.displayErrors()
	fmt.Fprintln(m.out)
}

// Counts returns how many jobs succeeded and failed so far.
func (m *Manager) Counts() (success, failures int) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.counts()
}

func (m *Manager) counts() (success, failures int) {
	for _, info := range m.outputs {
		switch info.Status {
		case StatusSuccess:
			success++
		case StatusError:
			failures++
		}
	}
	return success, failures
}
