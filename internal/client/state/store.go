package state

import (
	"context"
	"errors"
	"sync"

	"task_backend/internal/api"
	"task_backend/internal/client/apiclient"
)

// API はStoreが使うサーバー操作です。
type API interface {
	SetToken(token string)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	ListTasks(ctx context.Context, p apiclient.ListParams) ([]api.TaskResponse, error)
	CreateTask(ctx context.Context, req api.CreateTaskRequest) (*api.TaskResponse, error)
	UpdateTask(ctx context.Context, id string, req api.UpdateTaskRequest) (*api.TaskResponse, error)
	DeleteTask(ctx context.Context, id string) error
	Stats(ctx context.Context) (*api.StatsResponse, error)
}

var _ API = (*apiclient.Client)(nil)

// Store は状態を保持し、非同期操作を pending → fulfilled / rejected の遷移として記録します。
// 状態変更はミューテックスで直列化されます。
type Store struct {
	mu    sync.Mutex
	state State
	api   API
}

// NewStore は空の状態でStoreを生成します。
func NewStore(a API) *Store {
	return &Store{api: a, state: State{Ops: map[Op]OpState{}}}
}

// Snapshot は現在の状態を返します。
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch は ev を適用し、新しい状態を返します。
func (s *Store) Dispatch(ev Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, ev)
	return s.state
}

// fail は op の失敗を記録します。認証以外の操作で401を受けた場合はAPIクライアントのトークンも破棄します。
func (s *Store) fail(op Op, err error) error {
	unauthorized := op != OpAuth && errors.Is(err, apiclient.ErrUnauthorized)
	if unauthorized {
		s.api.SetToken("")
	}
	s.Dispatch(Failed{
		Op:           op,
		Message:      err.Error(),
		Unauthorized: unauthorized,
	})
	return err
}

// Login はログインし、トークンとユーザーを保持します。
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.Dispatch(Started{Op: OpAuth})
	out, err := s.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return s.fail(OpAuth, err)
	}
	s.Dispatch(AuthSucceeded{Token: out.Token, User: out.User})
	return nil
}

// Register は登録し、トークンとユーザーを保持します。
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	s.Dispatch(Started{Op: OpAuth})
	out, err := s.api.Register(ctx, api.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return s.fail(OpAuth, err)
	}
	s.Dispatch(AuthSucceeded{Token: out.Token, User: out.User})
	return nil
}

// Logout は認証情報とデータを破棄します。
func (s *Store) Logout() {
	s.api.SetToken("")
	s.Dispatch(LoggedOut{})
}

// FetchTasks は一覧を取得して置き換えます。
func (s *Store) FetchTasks(ctx context.Context, p apiclient.ListParams) error {
	s.Dispatch(Started{Op: OpList})
	tasks, err := s.api.ListTasks(ctx, p)
	if err != nil {
		return s.fail(OpList, err)
	}
	s.Dispatch(TasksLoaded{Tasks: tasks})
	return nil
}

// CreateTask はタスクを作成し、一覧の先頭に追加します。
func (s *Store) CreateTask(ctx context.Context, req api.CreateTaskRequest) error {
	s.Dispatch(Started{Op: OpCreate})
	t, err := s.api.CreateTask(ctx, req)
	if err != nil {
		return s.fail(OpCreate, err)
	}
	s.Dispatch(TaskCreated{Task: *t})
	return nil
}

// UpdateTask はタスクを更新し、一覧の同じ要素を置き換えます。
func (s *Store) UpdateTask(ctx context.Context, id string, req api.UpdateTaskRequest) error {
	s.Dispatch(Started{Op: OpUpdate})
	t, err := s.api.UpdateTask(ctx, id, req)
	if err != nil {
		return s.fail(OpUpdate, err)
	}
	s.Dispatch(TaskUpdated{Task: *t})
	return nil
}

// DeleteTask はタスクを削除し、一覧から除きます。
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.Dispatch(Started{Op: OpDelete})
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return s.fail(OpDelete, err)
	}
	s.Dispatch(TaskDeleted{ID: id})
	return nil
}

// FetchStats はダッシュボード統計を取得します。
func (s *Store) FetchStats(ctx context.Context) error {
	s.Dispatch(Started{Op: OpStats})
	stats, err := s.api.Stats(ctx)
	if err != nil {
		return s.fail(OpStats, err)
	}
	s.Dispatch(StatsLoaded{Stats: *stats})
	return nil
}
