package output

import (
	"fmt"
	"sync"
	"time"
)

type taskOutput struct {
	id        int
	name      string
	status    string
	message   string
	progress  string
	complete  bool
	startTime time.Time
	updated   time.Time
}

type ErrorReport struct {
	Name string
	Err  error
	Time time.Time
}

// Manager renders one live line per in-flight transfer plus a progress bar,
// redrawing in place with ANSI cursor movement. All methods are safe for
// concurrent use by scheduler workers.
type Manager struct {
	mu       sync.RWMutex
	tasks    map[int]*taskOutput
	errors   []ErrorReport
	count    int
	numLines int
	tick     time.Duration
	doneCh   chan struct{}
	wg       sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{
		tasks:  make(map[int]*taskOutput),
		tick:   300 * time.Millisecond,
		doneCh: make(chan struct{}),
	}
}

// Register adds a row for one transfer and returns its ID.
func (m *Manager) Register(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	m.tasks[m.count] = &taskOutput{
		id:        m.count,
		name:      name,
		status:    "pending",
		startTime: time.Now(),
		updated:   time.Now(),
	}
	return m.count
}

func (m *Manager) SetStatus(id int, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.status = status
		t.updated = time.Now()
	}
}

func (m *Manager) SetMessage(id int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.message = message
		t.updated = time.Now()
	}
}

// SetProgress renders the task's progress line. A non-positive total means
// the remote did not declare a length, so only the byte count is shown.
func (m *Manager) SetProgress(id int, current, total int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return
	}
	elapsed := time.Since(t.startTime).Round(time.Second).Seconds()
	if total > 0 {
		bar := PrintProgressBar(max(0, current), total, 30)
		t.progress = fmt.Sprintf("%s%s %s %s", bar, debugStyle.Render(FormatBytes(uint64(current))), StyleSymbols["bullet"], debugStyle.Render(FormatSpeed(current, elapsed)))
	} else {
		t.progress = debugStyle.Render(fmt.Sprintf("%s %s %s", FormatBytes(uint64(current)), StyleSymbols["bullet"], FormatSpeed(current, elapsed)))
	}
	t.updated = time.Now()
}

func (m *Manager) Complete(id int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		if message == "" {
			message = fmt.Sprintf("Completed %s", t.name)
		}
		t.message = message
		t.progress = ""
		t.complete = true
		t.status = "success"
		t.updated = time.Now()
	}
}

func (m *Manager) ReportError(id int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.complete = true
		t.status = "error"
		t.progress = ""
		t.updated = time.Now()
		m.errors = append(m.errors, ErrorReport{Name: t.name, Err: err, Time: time.Now()})
	}
}

func statusIndicator(status string) string {
	switch status {
	case "success":
		return successStyle.Render(StyleSymbols["pass"])
	case "error":
		return errorStyle.Render(StyleSymbols["fail"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func styledMessage(status, message string) string {
	switch status {
	case "success":
		return successStyle.Render(message)
	case "error":
		return errorStyle.Render(message)
	default:
		return pendingStyle.Render(message)
	}
}

func (m *Manager) sortedTasks() (active, completed []*taskOutput) {
	for id := 1; id <= m.count; id++ {
		t := m.tasks[id]
		if t == nil {
			continue
		}
		if t.complete {
			completed = append(completed, t)
		} else {
			active = append(active, t)
		}
	}
	return active, completed
}

func (m *Manager) updateDisplay() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	availableLines := getTerminalHeight() - 3 // Leave some buffer for prompt
	if m.numLines > 0 {
		fmt.Printf("\033[%dA\033[J", m.numLines)
	}

	active, completed := m.sortedTasks()
	needed := 0
	for _, t := range active {
		needed++
		if t.progress != "" {
			needed++
		}
	}
	if needed+len(completed) > availableLines {
		maxCompleted := max(availableLines-needed, 0)
		if len(completed) > maxCompleted {
			completed = completed[len(completed)-maxCompleted:]
		}
	}

	lineCount := 0
	for _, t := range completed {
		if lineCount >= availableLines {
			break
		}
		totalTime := t.updated.Sub(t.startTime).Round(time.Second)
		fmt.Printf("  %s %s %s\n", statusIndicator(t.status), debugStyle.Render(totalTime.String()), styledMessage(t.status, t.message))
		lineCount++
	}
	for _, t := range active {
		if lineCount >= availableLines {
			break
		}
		elapsed := time.Since(t.startTime).Round(time.Second)
		message := t.message
		if message == "" {
			message = "Waiting..."
		}
		fmt.Printf("  %s %s %s\n", statusIndicator(t.status), debugStyle.Render(elapsed.String()), styledMessage(t.status, message))
		lineCount++
		if t.progress != "" && lineCount < availableLines {
			fmt.Printf("      %s\n", t.progress)
			lineCount++
		}
	}
	m.numLines = lineCount
}

func (m *Manager) StartDisplay() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.updateDisplay()
			case <-m.doneCh:
				m.updateDisplay()
				m.showErrors()
				return
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	close(m.doneCh)
	m.wg.Wait()
}

func (m *Manager) showErrors() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.errors) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("  " + errorStyle.Bold(true).Render("Errors:"))
	for i, report := range m.errors {
		fmt.Printf("    %s %s %s\n",
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", report.Time.Format("15:04:05"))),
			errorStyle.Render(report.Name))
		fmt.Printf("      %s\n", errorStyle.Render(fmt.Sprintf("Error: %v", report.Err)))
	}
	fmt.Println()
}
