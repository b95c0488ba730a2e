package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskman/internal/todo"
)

func newTestModel(t *testing.T, titles ...string) (*tuiModel, *todo.List, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	list := todo.New(todo.NewFileStore(path), todo.WithClock(func() time.Time { return fixedNow }))
	for _, title := range titles {
		if r := list.Add(title, "", ""); !r.OK() {
			t.Fatalf("Add(%q): %v", title, r.Err)
		}
	}
	return newTUIModel(list, WithStyles(PlainStyles())), list, path
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *tuiModel, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func reload(t *testing.T, path string) *todo.List {
	t.Helper()
	l := todo.New(todo.NewFileStore(path))
	if r := l.Load(); !r.OK() {
		t.Fatalf("reload: %v %v", r.Notices, r.Err)
	}
	return l
}

func TestTUIAddTask(t *testing.T) {
	m, list, path := newTestModel(t)
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	send(m, runes("a"), runes("Buy milk"), enter, runes("1"), enter, runes("2030-01-01"), enter)

	if m.mode != modeBrowse {
		t.Fatalf("mode: got %v, want browse", m.mode)
	}
	task, ok := list.Get(1)
	if !ok {
		t.Fatal("task not added")
	}
	if task.Title != "Buy milk" || task.Priority != todo.PriorityHigh || task.DeadlineString() != "2030-01-01" {
		t.Errorf("task: got %+v", task)
	}
	if got := reload(t, path).Len(); got != 1 {
		t.Errorf("saved tasks: got %d, want 1", got)
	}
	if !strings.Contains(m.View(), "1 - [ ] Buy milk (High) due 2030-01-01") {
		t.Errorf("View missing task:\n%s", m.View())
	}
}

func TestTUIAddLongTitle(t *testing.T) {
	m, list, path := newTestModel(t)
	enter := tea.KeyMsg{Type: tea.KeyEnter}
	title := strings.Repeat("x", 250)

	send(m, runes("a"), runes(title), enter, enter, enter)

	task, ok := list.Get(1)
	if !ok || task.Title != title {
		t.Fatalf("title: got %d chars, want 250", len(task.Title))
	}
	if saved, _ := reload(t, path).Get(1); saved.Title != title {
		t.Errorf("saved title: got %d chars, want 250", len(saved.Title))
	}
}

func TestTUIAddCancelled(t *testing.T) {
	m, list, _ := newTestModel(t)
	send(m, runes("a"), runes("Buy milk"), tea.KeyMsg{Type: tea.KeyEsc})

	if list.Len() != 0 {
		t.Errorf("Len: got %d, want 0", list.Len())
	}
	if m.mode != modeBrowse {
		t.Errorf("mode: got %v, want browse", m.mode)
	}
}

func TestTUIMarkDoneAndRemove(t *testing.T) {
	m, list, path := newTestModel(t, "a", "b", "c")

	send(m, runes("j"), tea.KeyMsg{Type: tea.KeySpace})
	if task, _ := list.Get(2); !task.Done {
		t.Error("b should be done")
	}
	if task, _ := reload(t, path).Get(2); !task.Done {
		t.Error("done state not saved")
	}

	send(m, runes("d"))
	if got := list.Len(); got != 2 {
		t.Fatalf("Len: got %d, want 2", got)
	}
	if task, _ := list.Get(2); task.Title != "c" {
		t.Errorf("second task: got %q, want c", task.Title)
	}
}

func TestTUIRename(t *testing.T) {
	m, list, _ := newTestModel(t, "old")
	send(m, runes("e"))
	if got := m.input.Value(); got != "old" {
		t.Errorf("rename prefill: got %q", got)
	}
	m.input.SetValue("")
	send(m, runes("new"), tea.KeyMsg{Type: tea.KeyEnter})
	if task, _ := list.Get(1); task.Title != "new" {
		t.Errorf("title: got %q, want new", task.Title)
	}
}

func TestTUISearchAndFilter(t *testing.T) {
	m, list, _ := newTestModel(t, "Buy milk", "Walk dog", "Buy bread")
	list.MarkDone(3)

	send(m, runes("/"), runes("buy"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := len(m.visible()); got != 2 {
		t.Errorf("search: got %d visible, want 2", got)
	}

	send(m, runes("f")) // incomplete
	if got := len(m.visible()); got != 1 {
		t.Errorf("search+incomplete: got %d visible, want 1", got)
	}

	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := len(m.visible()); got != 2 {
		t.Errorf("incomplete: got %d visible, want 2", got)
	}
}

func TestTUISortCycles(t *testing.T) {
	m, list, _ := newTestModel(t, "b", "a")
	list.Add("c", "1", "")

	send(m, runes("s"))
	if m.sortIdx != 0 {
		t.Fatalf("sortIdx: got %d, want 0", m.sortIdx)
	}
	if task, _ := list.Get(1); task.Title != "c" {
		t.Errorf("priority sort: first got %q, want c", task.Title)
	}

	send(m, runes("s"), runes("s"))
	var got []string
	for _, task := range list.Tasks() {
		got = append(got, task.Title)
	}
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("title sort: got %v", got)
	}
}

func TestTUIQuit(t *testing.T) {
	for _, key := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		m, _, _ := newTestModel(t)
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", key)
		}
		if m.View() != "" {
			t.Errorf("%s: view should be empty after quit", key)
		}
	}
}

func TestTUIHelpToggle(t *testing.T) {
	m, _, _ := newTestModel(t)
	send(m, runes("?"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help not shown")
	}
	send(m, runes("h"))
	if strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help still shown")
	}
}
