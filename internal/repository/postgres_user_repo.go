package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/newsdesk/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, email, name, tier, role, is_active,
	subscription_start_date, subscription_end_date, created_at, updated_at`

// scanUser は1行分のユーザーレコードをスキャンする。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var start, end sql.NullTime
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Tier, &user.Role, &user.IsActive,
		&start, &end, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		user.SubscriptionStartDate = &start.Time
	}
	if end.Valid {
		user.SubscriptionEndDate = &end.Time
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
func (r *PostgresUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, name, tier, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.Name, user.Tier, user.Role, user.IsActive,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO identities (id, user_id, provider, provider_user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		identity.ID, identity.UserID, identity.Provider, identity.ProviderUserID, identity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert identity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RoleByUserID は指定ユーザーのroleを返す。ユーザーが存在しない場合はRoleUserを返す。
func (r *PostgresUserRepo) RoleByUserID(ctx context.Context, userID string) (model.Role, error) {
	var role model.Role
	err := r.db.QueryRowContext(ctx,
		`SELECT role FROM users WHERE id = $1`, userID,
	).Scan(&role)

	if err == sql.ErrNoRows {
		return model.RoleUser, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user role: %w", err)
	}
	return role, nil
}

// TierByUserID は指定ユーザーのtierを返す。ユーザーが存在しない場合はTierFreeを返す。
func (r *PostgresUserRepo) TierByUserID(ctx context.Context, userID string) (model.Tier, error) {
	var tier model.Tier
	err := r.db.QueryRowContext(ctx,
		`SELECT tier FROM users WHERE id = $1`, userID,
	).Scan(&tier)

	if err == sql.ErrNoRows {
		return model.TierFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user tier: %w", err)
	}
	return tier, nil
}

// UpdateSubscription はtier・有効フラグ・購読期間を更新する。
func (r *PostgresUserRepo) UpdateSubscription(ctx context.Context, userID string, tier model.Tier, isActive bool, start, end *time.Time) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET tier = $2, is_active = $3,
		     subscription_start_date = $4, subscription_end_date = $5,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		userID, tier, isActive, start, end,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user subscription: %w", err)
	}
	return user, nil
}

// SetRole は指定ユーザーのroleを更新する。
// 管理者権限を付与する際に対象ユーザーが未登録の場合は、
// premium tierの新規レコードを作成する（管理者は常にプレミアム扱い）。
func (r *PostgresUserRepo) SetRole(ctx context.Context, userID, email, name string, role model.Role) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET role = $2, email = COALESCE(NULLIF($3, ''), email),
		     name = COALESCE(NULLIF($4, ''), name), updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		userID, role, email, name,
	)
	user, err := scanUser(row)
	if err == nil {
		return user, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	// 未登録ユーザーへのadmin付与は新規作成。一般roleへの降格対象が
	// 存在しない場合は作成せずnilを返す。
	if !role.IsAdmin() {
		return nil, nil
	}

	id := userID
	if id == "" {
		id = uuid.New().String()
	}
	row = r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, name, tier, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, TRUE, now(), now())
		 RETURNING `+userColumns,
		id, email, name, model.TierPremium, role,
	)
	user, err = scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	return user, nil
}

// ListAdmins はis_activeなadmin/super_adminユーザーの一覧を返す。
func (r *PostgresUserRepo) ListAdmins(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE role IN ('admin', 'super_admin') AND is_active
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []*model.User
	for rows.Next() {
		user := &model.User{}
		var start, end sql.NullTime
		if err := rows.Scan(
			&user.ID, &user.Email, &user.Name, &user.Tier, &user.Role, &user.IsActive,
			&start, &end, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan admin row: %w", err)
		}
		if start.Valid {
			user.SubscriptionStartDate = &start.Time
		}
		if end.Valid {
			user.SubscriptionEndDate = &end.Time
		}
		admins = append(admins, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admin rows: %w", err)
	}

	return admins, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
