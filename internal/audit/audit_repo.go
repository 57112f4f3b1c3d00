package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ListFilter narrows the audit log query. Zero values mean "no filter".
type ListFilter struct {
	ActorID    string
	EntityType string
	EntityID   string
	Action     string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, log AuditLog) error
	List(ctx context.Context, f ListFilter) ([]AuditLog, int64, error)
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, log AuditLog) error {
	changes, err := json.Marshal(log.Changes)
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}

	query := `
        INSERT INTO audit_logs (
            id, action, entity_type, entity_id, actor_id, changes, ip_address, user_agent
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	exec := r.execer()
	_, err = exec.ExecContext(
		ctx, query,
		log.ID, log.Action, log.EntityType,
		log.EntityID, log.ActorID, changes, log.IPAddress, log.UserAgent,
	)
	return err
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]AuditLog, int64, error) {
	where, args := buildWhere(f)

	var total int64
	countQuery := "SELECT COUNT(*) FROM audit_logs" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	query := fmt.Sprintf(`
SELECT
	id,
	action,
	entity_type,
	entity_id,
	actor_id,
	changes,
	ip_address,
	user_agent,
	created_at
FROM audit_logs%s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d
`, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]AuditLog, 0, pageSize)
	for rows.Next() {
		var (
			log     AuditLog
			changes []byte
		)
		if err := rows.Scan(
			&log.ID,
			&log.Action,
			&log.EntityType,
			&log.EntityID,
			&log.ActorID,
			&changes,
			&log.IPAddress,
			&log.UserAgent,
			&log.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &log.Changes); err != nil {
				return nil, 0, fmt.Errorf("unmarshal audit changes: %w", err)
			}
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func buildWhere(f ListFilter) (string, []any) {
	conds := make([]string, 0, 6)
	args := make([]any, 0, 6)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.ActorID != "" {
		add("actor_id = $%d", f.ActorID)
	}
	if f.EntityType != "" {
		add("entity_type = $%d", f.EntityType)
	}
	if f.EntityID != "" {
		add("entity_id = $%d", f.EntityID)
	}
	if f.Action != "" {
		add("action ILIKE $%d", "%"+f.Action+"%")
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
