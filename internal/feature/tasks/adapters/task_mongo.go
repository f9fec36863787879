package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// taskDocument はtasksコレクションのドキュメントです。
type taskDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"userId"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	Priority     string             `bson:"priority"`
	Status       string             `bson:"status"`
	DueDate      time.Time          `bson:"dueDate"`
	AISuggestion string             `bson:"aiSuggestion,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *taskDocument) toEntity() entity.Task {
	return entity.Task{
		ID:           d.ID.Hex(),
		OwnerID:      d.UserID,
		Title:        d.Title,
		Description:  d.Description,
		Priority:     entity.Priority(d.Priority),
		Status:       entity.Status(d.Status),
		DueDate:      d.DueDate.UTC(),
		AISuggestion: d.AISuggestion,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// taskMongo はTaskStoreインターフェースのMongoDB実装です。
type taskMongo struct {
	coll *mongo.Collection
}

var _ usecase.TaskStore = (*taskMongo)(nil)

// NewTaskMongo はtasksコレクションを使うtaskMongoを生成します。
func NewTaskMongo(coll *mongo.Collection) *taskMongo {
	return &taskMongo{coll: coll}
}

// EnsureIndexes は所有者ごとの一覧と集計に使うインデックスを作成します。
func (s *taskMongo) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "priority", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create task indexes: %w", err)
	}
	return nil
}

// ForOwner はownerIDで絞り込まれたリポジトリを返します。
func (s *taskMongo) ForOwner(ownerID string) usecase.OwnerTaskRepository {
	return &ownerTaskMongo{coll: s.coll, ownerID: ownerID}
}

// ownerTaskMongo は1人の所有者に限定されたタスクリポジトリです。
type ownerTaskMongo struct {
	coll    *mongo.Collection
	ownerID string
}

var _ usecase.OwnerTaskRepository = (*ownerTaskMongo)(nil)

// match は所有者条件に追加条件を加えたフィルタを返します。
func (r *ownerTaskMongo) match(extra ...bson.E) bson.D {
	return append(bson.D{{Key: "userId", Value: r.ownerID}}, extra...)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, usecase.ErrInvalidTaskID
	}
	return oid, nil
}

// List は条件に一致するタスクを指定順で返します。
func (r *ownerTaskMongo) List(ctx context.Context, f entity.Filter) ([]entity.Task, error) {
	filter := r.match()
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	if f.Priority != "" {
		filter = append(filter, bson.E{Key: "priority", Value: string(f.Priority)})
	}

	keys := f.Sort
	if len(keys) == 0 {
		keys = entity.DefaultSort
	}
	sort := bson.D{}
	for _, k := range keys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		// APIのフィールド名とドキュメントのフィールド名は同一です。
		sort = append(sort, bson.E{Key: string(k.Field), Value: dir})
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	tasks := make([]entity.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toEntity())
	}
	return tasks, nil
}

// FindByID はIDでタスクを取得します。
func (r *ownerTaskMongo) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc taskDocument
	err = r.coll.FindOne(ctx, r.match(bson.E{Key: "_id", Value: oid})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrTaskNotFound
		}
		return nil, err
	}
	t := doc.toEntity()
	return &t, nil
}

// Create はタスクを追加し、採番したIDをtaskに設定します。
func (r *ownerTaskMongo) Create(ctx context.Context, task *entity.Task) error {
	now := time.Now().UTC()
	doc := taskDocument{
		ID:           primitive.NewObjectID(),
		UserID:       r.ownerID,
		Title:        task.Title,
		Description:  task.Description,
		Priority:     string(task.Priority),
		Status:       string(task.Status),
		DueDate:      task.DueDate.UTC(),
		AISuggestion: task.AISuggestion,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	task.ID = doc.ID.Hex()
	task.OwnerID = r.ownerID
	task.CreatedAt = doc.CreatedAt
	task.UpdatedAt = doc.UpdatedAt
	return nil
}

// Save は変更可能なフィールドのみを$setで書き込みます。
func (r *ownerTaskMongo) Save(ctx context.Context, task *entity.Task) error {
	oid, err := objectID(task.ID)
	if err != nil {
		return err
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = time.Now().UTC()
	}

	set := bson.D{
		{Key: "title", Value: task.Title},
		{Key: "description", Value: task.Description},
		{Key: "priority", Value: string(task.Priority)},
		{Key: "status", Value: string(task.Status)},
		{Key: "dueDate", Value: task.DueDate.UTC()},
		{Key: "updatedAt", Value: task.UpdatedAt},
	}
	if task.AISuggestion != "" {
		set = append(set, bson.E{Key: "aiSuggestion", Value: task.AISuggestion})
	}
	update := bson.D{{Key: "$set", Value: set}}
	if task.AISuggestion == "" {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "aiSuggestion", Value: ""}}})
	}

	res, err := r.coll.UpdateOne(ctx, r.match(bson.E{Key: "_id", Value: oid}), update)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return usecase.ErrTaskNotFound
	}
	return nil
}

// Delete はタスクを削除します。
func (r *ownerTaskMongo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, r.match(bson.E{Key: "_id", Value: oid}))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return usecase.ErrTaskNotFound
	}
	return nil
}

// countIf は条件に一致するドキュメントを数える$sum式を返します。
func countIf(cond bson.D) bson.D {
	return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{cond, 1, 0}}}}}
}

func eq(field, value string) bson.D {
	return bson.D{{Key: "$eq", Value: bson.A{"$" + field, value}}}
}

// Summary はダッシュボードの集計を集約パイプラインで1ドキュメントにまとめます。
func (r *ownerTaskMongo) Summary(ctx context.Context) (entity.Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: r.match()}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "completed", Value: countIf(eq("status", string(entity.StatusCompleted)))},
			{Key: "pending", Value: countIf(eq("status", string(entity.StatusPending)))},
			{Key: "inProgress", Value: countIf(eq("status", string(entity.StatusInProgress)))},
			{Key: "highPriority", Value: countIf(bson.D{{Key: "$in", Value: bson.A{
				"$priority", bson.A{string(entity.PriorityHigh), string(entity.PriorityUrgent)},
			}}})},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return entity.Summary{}, fmt.Errorf("failed to aggregate summary: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total        int64 `bson:"total"`
		Completed    int64 `bson:"completed"`
		Pending      int64 `bson:"pending"`
		InProgress   int64 `bson:"inProgress"`
		HighPriority int64 `bson:"highPriority"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return entity.Summary{}, fmt.Errorf("failed to decode summary: %w", err)
	}
	if len(rows) == 0 {
		return entity.Summary{}, nil
	}
	row := rows[0]
	return entity.Summary{
		Total:        row.Total,
		Completed:    row.Completed,
		Pending:      row.Pending,
		InProgress:   row.InProgress,
		HighPriority: row.HighPriority,
	}, nil
}

// CountByPriority は優先度ごとの件数を返します。
func (r *ownerTaskMongo) CountByPriority(ctx context.Context) ([]entity.GroupCount, error) {
	return r.countBy(ctx, "priority")
}

// CountByStatus はステータスごとの件数を返します。
func (r *ownerTaskMongo) CountByStatus(ctx context.Context) ([]entity.GroupCount, error) {
	return r.countBy(ctx, "status")
}

func (r *ownerTaskMongo) countBy(ctx context.Context, field string) ([]entity.GroupCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: r.match()}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s counts: %w", field, err)
	}

	out := make([]entity.GroupCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.GroupCount{Key: row.Key, Count: row.Count})
	}
	return out, nil
}
