package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gotasker/internal/domain/entities"
	"gotasker/internal/ports/repositories"
	"gotasker/pkg/logger"
)

// Сопоставление канонических имен сортировки со столбцами таблицы.
// Неизвестные имена откатываются к created_at, чтобы никакой
// пользовательский ввод не попадал в текст запроса.
var taskSortColumns = map[string]string{
	repositories.SortByCreatedAt:   "created_at",
	repositories.SortByUpdatedAt:   "updated_at",
	repositories.SortByDescription: "description",
	repositories.SortByCompleted:   "completed",
}

// TaskRepository реализует интерфейс repositories.TaskRepository для работы с Postgres.
type TaskRepository struct {
	pool PgxPoolInterface
}

// NewTaskRepository создает новый экземпляр репозитория задач.
func NewTaskRepository(pool PgxPoolInterface) repositories.TaskRepository {
	return &TaskRepository{pool: pool}
}

// Create сохраняет новую задачу.
func (r *TaskRepository) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	log := logger.Log(ctx).With(zap.String("repository", "task"), zap.String("method", "Create"))

	query := `
        INSERT INTO tasks (owner, description, completed)
        VALUES ($1, $2, $3)
        RETURNING id, owner, description, completed, created_at, updated_at
    `

	var createdTask entities.Task
	err := r.pool.QueryRow(ctx, query,
		task.OwnerID,
		task.Description,
		task.Completed,
	).Scan(
		&createdTask.ID,
		&createdTask.OwnerID,
		&createdTask.Description,
		&createdTask.Completed,
		&createdTask.CreatedAt,
		&createdTask.UpdatedAt,
	)

	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			log.Debug(ctx, "task owner does not exist", zap.String("owner", task.OwnerID))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error creating task", zap.Error(err))
		return nil, fmt.Errorf("error creating task: %w", err)
	}

	return &createdTask, nil
}

// FindByID находит задачу по ID в пределах задач владельца.
func (r *TaskRepository) FindByID(ctx context.Context, taskID, ownerID string) (*entities.Task, error) {
	log := logger.Log(ctx).With(zap.String("repository", "task"), zap.String("method", "FindByID"))

	query := `
        SELECT id, owner, description, completed, created_at, updated_at
        FROM tasks
        WHERE id = $1 AND owner = $2
    `

	var task entities.Task
	err := r.pool.QueryRow(ctx, query, taskID, ownerID).Scan(
		&task.ID,
		&task.OwnerID,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isPgError(err, pgInvalidTextRepresentation) {
			log.Debug(ctx, "task not found", zap.String("taskID", taskID))
			return nil, entities.ErrTaskNotFound
		}
		log.Error(ctx, "error finding task by id", zap.Error(err))
		return nil, fmt.Errorf("error querying task by id: %w", err)
	}

	return &task, nil
}

// List возвращает задачи владельца согласно фильтру, сортировке и пагинации.
func (r *TaskRepository) List(ctx context.Context, ownerID string, filter repositories.TaskFilter) ([]*entities.Task, error) {
	log := logger.Log(ctx).With(zap.String("repository", "task"), zap.String("method", "List"))

	query := `
        SELECT id, owner, description, completed, created_at, updated_at
        FROM tasks
        WHERE owner = $1`
	args := []interface{}{ownerID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		query += fmt.Sprintf(" AND completed = $%d", len(args))
	}

	column, ok := taskSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := " ASC"
	if filter.SortDesc {
		direction = " DESC"
	}
	query += " ORDER BY " + column + direction

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "error listing tasks", zap.Error(err))
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*entities.Task, 0)
	for rows.Next() {
		var task entities.Task
		err := rows.Scan(
			&task.ID,
			&task.OwnerID,
			&task.Description,
			&task.Completed,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			log.Error(ctx, "error scanning task row", zap.Error(err))
			return nil, fmt.Errorf("error scanning task row: %w", err)
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating task rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// Update обновляет задачу в пределах задач владельца.
func (r *TaskRepository) Update(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	log := logger.Log(ctx).With(zap.String("repository", "task"), zap.String("method", "Update"))

	query := `
        UPDATE tasks
        SET description = $3, completed = $4, updated_at = $5
        WHERE id = $1 AND owner = $2
        RETURNING id, owner, description, completed, created_at, updated_at
    `

	var updatedTask entities.Task
	err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.OwnerID,
		task.Description,
		task.Completed,
		time.Now().UTC(),
	).Scan(
		&updatedTask.ID,
		&updatedTask.OwnerID,
		&updatedTask.Description,
		&updatedTask.Completed,
		&updatedTask.CreatedAt,
		&updatedTask.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "task not found for update", zap.String("taskID", task.ID))
			return nil, entities.ErrTaskNotFound
		}
		log.Error(ctx, "error updating task", zap.Error(err))
		return nil, fmt.Errorf("error updating task: %w", err)
	}

	return &updatedTask, nil
}

// Delete удаляет задачу в пределах задач владельца.
func (r *TaskRepository) Delete(ctx context.Context, taskID, ownerID string) error {
	log := logger.Log(ctx).With(zap.String("repository", "task"), zap.String("method", "Delete"))

	query := `
        DELETE FROM tasks
        WHERE id = $1 AND owner = $2
    `

	result, err := r.pool.Exec(ctx, query, taskID, ownerID)
	if err != nil {
		log.Error(ctx, "error deleting task", zap.Error(err))
		return fmt.Errorf("error deleting task: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "task not found for deletion", zap.String("taskID", taskID))
		return entities.ErrTaskNotFound
	}

	return nil
}

// DeleteByOwner удаляет все задачи владельца и возвращает их количество.
// Используется каскадным удалением учетной записи: задачи удаляются
// раньше самого пользователя.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	log := logger.Log(ctx).With(
		zap.String("repository", "task"),
		zap.String("method", "DeleteByOwner"),
		zap.String("ownerID", ownerID),
	)

	query := `
        DELETE FROM tasks
        WHERE owner = $1
    `

	result, err := r.pool.Exec(ctx, query, ownerID)
	if err != nil {
		log.Error(ctx, "error deleting tasks by owner", zap.Error(err))
		return 0, fmt.Errorf("error deleting tasks by owner: %w", err)
	}

	count := result.RowsAffected()
	log.Info(ctx, "owner tasks deleted", zap.Int64("count", count))
	return count, nil
}
