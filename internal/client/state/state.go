// Package state はクライアント側の状態コンテナです。
// 状態遷移はすべて純粋関数 Reduce を通して行われます。
package state

import (
	"task_backend/internal/api"
)

// Op は非同期操作の種類です。
type Op string

const (
	OpAuth   Op = "auth"
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpStats  Op = "stats"
)

// Phase は非同期操作の状態です。
type Phase int

const (
	Idle Phase = iota
	Pending
	Fulfilled
	Rejected
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "idle"
	}
}

// OpState は1つの操作の状態です。Errは Rejected のときのみ設定されます。
type OpState struct {
	Phase Phase
	Err   string
}

// State はクライアントの状態のスナップショットです。
// Reduce は既存の State を変更しないため、スナップショットは共有して構いません。
type State struct {
	Token   string
	User    *api.UserResponse
	Tasks   []api.TaskResponse
	Stats   *api.StatsResponse
	Loading bool
	Error   string
	Ops     map[Op]OpState
}

// Op はopの状態を返します。未実行の場合は Idle。
func (s State) Op(op Op) OpState {
	return s.Ops[op]
}

// Authenticated はトークンを保持しているかを返します。
func (s State) Authenticated() bool { return s.Token != "" }

// Event は状態遷移を引き起こす入力です。
type Event interface{ event() }

type (
	// Started は操作の開始（pending）です。
	Started struct{ Op Op }
	// Failed は操作の失敗（rejected）です。Unauthorized の場合は認証情報も破棄します。
	Failed struct {
		Op           Op
		Message      string
		Unauthorized bool
	}
	// AuthSucceeded はログイン・登録の成功です。
	AuthSucceeded struct {
		Token string
		User  api.UserResponse
	}
	// TasksLoaded は一覧取得の成功です。一覧を置き換えます。
	TasksLoaded struct{ Tasks []api.TaskResponse }
	// TaskCreated は作成の成功です。先頭に追加します。
	TaskCreated struct{ Task api.TaskResponse }
	// TaskUpdated は更新の成功です。同じIDの要素を置き換えます。
	TaskUpdated struct{ Task api.TaskResponse }
	// TaskDeleted は削除の成功です。
	TaskDeleted struct{ ID string }
	// StatsLoaded は統計取得の成功です。
	StatsLoaded struct{ Stats api.StatsResponse }
	// LoggedOut は認証情報とデータを破棄します。
	LoggedOut struct{}
	// ErrorCleared は最後のエラーを消します。
	ErrorCleared struct{}
)

func (Started) event()       {}
func (Failed) event()        {}
func (AuthSucceeded) event() {}
func (TasksLoaded) event()   {}
func (TaskCreated) event()   {}
func (TaskUpdated) event()   {}
func (TaskDeleted) event()   {}
func (StatsLoaded) event()   {}
func (LoggedOut) event()     {}
func (ErrorCleared) event()  {}

// Reduce は s に ev を適用した新しい State を返します。s は変更しません。
func Reduce(s State, ev Event) State {
	next := s
	next.Ops = copyOps(s.Ops)

	switch e := ev.(type) {
	case Started:
		next.Ops[e.Op] = OpState{Phase: Pending}
		next.Error = ""
	case Failed:
		next.Ops[e.Op] = OpState{Phase: Rejected, Err: e.Message}
		next.Error = e.Message
		if e.Unauthorized {
			next.Token = ""
			next.User = nil
			next.Tasks = nil
			next.Stats = nil
		}
	case AuthSucceeded:
		next.Ops[OpAuth] = OpState{Phase: Fulfilled}
		next.Token = e.Token
		user := e.User
		next.User = &user
	case TasksLoaded:
		next.Ops[OpList] = OpState{Phase: Fulfilled}
		next.Tasks = append([]api.TaskResponse(nil), e.Tasks...)
	case TaskCreated:
		next.Ops[OpCreate] = OpState{Phase: Fulfilled}
		tasks := make([]api.TaskResponse, 0, len(s.Tasks)+1)
		tasks = append(tasks, e.Task)
		next.Tasks = append(tasks, s.Tasks...)
	case TaskUpdated:
		next.Ops[OpUpdate] = OpState{Phase: Fulfilled}
		tasks := make([]api.TaskResponse, len(s.Tasks))
		copy(tasks, s.Tasks)
		for i := range tasks {
			if tasks[i].ID == e.Task.ID {
				tasks[i] = e.Task
			}
		}
		next.Tasks = tasks
	case TaskDeleted:
		next.Ops[OpDelete] = OpState{Phase: Fulfilled}
		tasks := make([]api.TaskResponse, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			if t.ID != e.ID {
				tasks = append(tasks, t)
			}
		}
		next.Tasks = tasks
	case StatsLoaded:
		next.Ops[OpStats] = OpState{Phase: Fulfilled}
		stats := e.Stats
		next.Stats = &stats
	case LoggedOut:
		return State{Ops: map[Op]OpState{}}
	case ErrorCleared:
		next.Error = ""
	}

	next.Loading = anyPending(next.Ops)
	return next
}

func copyOps(in map[Op]OpState) map[Op]OpState {
	out := make(map[Op]OpState, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// anyPending は実行中の操作があるかを返します。
// 複数の操作が重なっても、最後の1つが終わるまで Loading を維持する。
func anyPending(ops map[Op]OpState) bool {
	for _, o := range ops {
		if o.Phase == Pending {
			return true
		}
	}
	return false
}
