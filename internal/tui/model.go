// Package tui はタスククライアントのターミナルUIです。
// 画面は状態コンテナのスナップショットからのみ描画し、変更はすべてStore経由で行います。
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"task_backend/internal/api"
	"task_backend/internal/client/apiclient"
	"task_backend/internal/client/state"
	"task_backend/internal/feature/tasks/domain/entity"
)

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenList
	screenDetail
	screenDashboard
	screenCreate
)

// opDoneMsg はStoreの非同期操作の完了を通知します。結果は既にStoreに反映済み。
type opDoneMsg struct {
	op  state.Op
	err error
}

// Model はルートのbubbletea Modelです。
type Model struct {
	ctx    context.Context
	store  *state.Store
	screen screen
	cursor int
	// selected は詳細画面で表示中のタスクID
	selected string

	login    form
	register form
	create   form
	// localErr は送信前の入力チェックのエラー
	localErr string
}

// New はstoreの状態から初期画面を決めてModelを生成します。
func New(ctx context.Context, store *state.Store) Model {
	m := Model{
		ctx:      ctx,
		store:    store,
		screen:   screenLogin,
		login:    newLoginForm(),
		register: newRegisterForm(),
		create:   newCreateForm(),
	}
	if store.Snapshot().Authenticated() {
		m.screen = screenList
	}
	return m
}

func newLoginForm() form {
	return newForm(
		field{label: "Email", placeholder: "demo@example.com"},
		field{label: "Password", placeholder: "password", secret: true},
	)
}

func newRegisterForm() form {
	return newForm(
		field{label: "Name", placeholder: "your name"},
		field{label: "Email", placeholder: "you@example.com"},
		field{label: "Password", placeholder: "at least 6 characters", secret: true},
	)
}

func newCreateForm() form {
	return newForm(
		field{label: "Title", placeholder: "Buy milk"},
		field{label: "Description", placeholder: "2 liters"},
		field{label: "Priority", placeholder: "low / medium / high / urgent", value: string(entity.PriorityMedium)},
		field{label: "Due date", placeholder: "YYYY-MM-DD", value: time.Now().AddDate(0, 0, 7).Format("2006-01-02")},
	)
}

// Init は認証済みの場合、一覧と統計を読み込みます。
func (m Model) Init() tea.Cmd {
	if m.store.Snapshot().Authenticated() {
		return m.refresh()
	}
	return nil
}

func (m Model) run(op state.Op, f func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: f(m.ctx)}
	}
}

func (m Model) refresh() tea.Cmd {
	return tea.Batch(
		m.run(state.OpList, func(ctx context.Context) error {
			return m.store.FetchTasks(ctx, apiclient.ListParams{})
		}),
		m.run(state.OpStats, m.store.FetchStats),
	)
}

// Update はキー入力と操作完了を処理します。
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case opDoneMsg:
		return m.handleDone(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin, screenRegister:
			return m.updateAuth(msg)
		case screenCreate:
			return m.updateCreate(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) handleDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	snap := m.store.Snapshot()
	if !snap.Authenticated() {
		m.screen = screenLogin
		return m, nil
	}
	if msg.err != nil {
		return m, nil
	}
	switch msg.op {
	case state.OpAuth:
		m.screen = screenList
		m.cursor = 0
		m.login = newLoginForm()
		m.register = newRegisterForm()
		return m, m.refresh()
	case state.OpCreate:
		m.screen = screenList
		m.cursor = 0
		m.create = newCreateForm()
		return m, m.run(state.OpStats, m.store.FetchStats)
	case state.OpUpdate, state.OpDelete:
		m.clampCursor(len(snap.Tasks))
		if msg.op == state.OpDelete && m.screen == screenDetail {
			m.screen = screenList
		}
		return m, m.run(state.OpStats, m.store.FetchStats)
	case state.OpList:
		m.clampCursor(len(snap.Tasks))
	}
	return m, nil
}

func (m *Model) clampCursor(n int) {
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.login
	if m.screen == screenRegister {
		f = &m.register
	}

	switch {
	case msg.String() == "ctrl+r":
		m.localErr = ""
		if m.screen == screenLogin {
			m.screen = screenRegister
		} else {
			m.screen = screenLogin
		}
		return m, nil
	case key.Matches(msg, keys.tab), key.Matches(msg, keys.down):
		f.next()
		return m, nil
	case key.Matches(msg, keys.backtab), key.Matches(msg, keys.up):
		f.prev()
		return m, nil
	case key.Matches(msg, keys.esc):
		return m, tea.Quit
	case key.Matches(msg, keys.enter):
		if m.store.Snapshot().Op(state.OpAuth).Phase == state.Pending {
			return m, nil
		}
		m.localErr = ""
		if m.screen == screenRegister {
			name, email, pw := f.value(0), f.value(1), f.raw(2)
			if name == "" || email == "" || pw == "" {
				m.localErr = "All fields are required"
				return m, nil
			}
			return m, m.run(state.OpAuth, func(ctx context.Context) error {
				return m.store.Register(ctx, name, email, pw)
			})
		}
		email, pw := f.value(0), f.raw(1)
		if email == "" || pw == "" {
			m.localErr = "Email and password are required"
			return m, nil
		}
		return m, m.run(state.OpAuth, func(ctx context.Context) error {
			return m.store.Login(ctx, email, pw)
		})
	}

	var cmd tea.Cmd
	*f, cmd = f.update(msg)
	return m, cmd
}

func (m Model) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.screen = screenList
		m.localErr = ""
		return m, nil
	case key.Matches(msg, keys.tab), key.Matches(msg, keys.down):
		m.create.next()
		return m, nil
	case key.Matches(msg, keys.backtab), key.Matches(msg, keys.up):
		m.create.prev()
		return m, nil
	case key.Matches(msg, keys.enter):
		m.localErr = ""
		req := api.CreateTaskRequest{
			Title:       m.create.value(0),
			Description: m.create.value(1),
			Priority:    m.create.value(2),
			DueDate:     m.create.value(3),
		}
		return m, m.run(state.OpCreate, func(ctx context.Context) error {
			return m.store.CreateTask(ctx, req)
		})
	}

	var cmd tea.Cmd
	m.create, cmd = m.create.update(msg)
	return m, cmd
}

// current はカーソル位置（詳細画面では選択中）のタスクを返します。
func (m Model) current(snap state.State) (api.TaskResponse, bool) {
	if m.screen == screenDetail {
		for _, t := range snap.Tasks {
			if t.ID == m.selected {
				return t, true
			}
		}
		return api.TaskResponse{}, false
	}
	if m.cursor < 0 || m.cursor >= len(snap.Tasks) {
		return api.TaskResponse{}, false
	}
	return snap.Tasks[m.cursor], true
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.store.Snapshot()

	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.logout):
		m.store.Logout()
		m.screen = screenLogin
		m.cursor = 0
		return m, nil
	case key.Matches(msg, keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, keys.newItem):
		m.screen = screenCreate
		m.create = newCreateForm()
		return m, nil
	case key.Matches(msg, keys.dashboard):
		m.screen = screenDashboard
		return m, m.run(state.OpStats, m.store.FetchStats)
	case key.Matches(msg, keys.esc):
		m.screen = screenList
		return m, nil
	}

	if m.screen == screenList {
		switch {
		case key.Matches(msg, keys.up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, keys.down):
			if m.cursor < len(snap.Tasks)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, keys.enter):
			if t, ok := m.current(snap); ok {
				m.selected = t.ID
				m.screen = screenDetail
			}
			return m, nil
		}
	}

	if m.screen == screenList || m.screen == screenDetail {
		t, ok := m.current(snap)
		if !ok {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.status):
			next := string(entity.Status(t.Status).Next())
			return m, m.run(state.OpUpdate, func(ctx context.Context) error {
				return m.store.UpdateTask(ctx, t.ID, api.UpdateTaskRequest{Status: &next})
			})
		case key.Matches(msg, keys.delete):
			return m, m.run(state.OpDelete, func(ctx context.Context) error {
				return m.store.DeleteTask(ctx, t.ID)
			})
		}
	}
	return m, nil
}
