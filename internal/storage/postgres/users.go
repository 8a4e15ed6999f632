package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

const userColumns = `id, phone, name, role, password_hash, is_active, is_verified, added_by, last_login_at, created_at, updated_at`

type userRepository struct {
	storage *Storage
}

func scanUser(row scanner) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := row.Scan(&u.ID, &u.Phone, &u.Name, &role, &u.PasswordHash, &u.IsActive, &u.IsVerified,
		&u.AddedBy, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	u.Role = model.Role(role)
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	const query = `INSERT INTO users (phone, name, role, password_hash, is_active, is_verified, added_by)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING ` + userColumns
	row := r.storage.pool.QueryRow(ctx, query, user.Phone, user.Name, string(user.Role), user.PasswordHash,
		user.IsActive, user.IsVerified, user.AddedBy)
	return scanUser(row)
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE phone=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, phone))
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) List(ctx context.Context, filter model.UserFilter, page model.Page) ([]model.User, int64, error) {
	var (
		p     placeholders
		conds []string
	)
	if filter.Role != nil {
		conds = append(conds, "role = "+p.add(string(*filter.Role)))
	}
	if filter.Active != nil {
		conds = append(conds, "is_active = "+p.add(*filter.Active))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		ph := p.add("%" + s + "%")
		conds = append(conds, "(name ILIKE "+ph+" OR phone ILIKE "+ph+")")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, p.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ` + p.add(page.Size) + ` OFFSET ` + p.add(page.Offset())
	rows, err := r.storage.pool.Query(ctx, query, p.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := make([]model.User, 0, page.Size)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *userRepository) ListIDsByRole(ctx context.Context, role model.Role) ([]int64, error) {
	const query = `SELECT id FROM users WHERE role=$1 AND is_active ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepository) UpdateName(ctx context.Context, id int64, name string) (*model.User, error) {
	return r.update(ctx, id, "name", name)
}

func (r *userRepository) UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	return r.update(ctx, id, "role", string(role))
}

func (r *userRepository) SetActive(ctx context.Context, id int64, active bool) (*model.User, error) {
	return r.update(ctx, id, "is_active", active)
}

func (r *userRepository) SetVerified(ctx context.Context, id int64, verified bool) (*model.User, error) {
	return r.update(ctx, id, "is_verified", verified)
}

// update sets a single column; column is always a package constant.
func (r *userRepository) update(ctx context.Context, id int64, column string, value any) (*model.User, error) {
	query := `UPDATE users SET ` + column + `=$2, updated_at=NOW() WHERE id=$1 RETURNING ` + userColumns
	return scanUser(r.storage.pool.QueryRow(ctx, query, id, value))
}

func (r *userRepository) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.storage.pool.Exec(ctx, `UPDATE users SET last_login_at=$2 WHERE id=$1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) Stats(ctx context.Context) (*model.UserStats, error) {
	const query = `SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE role = 'customer'),
            COUNT(*) FILTER (WHERE role = 'driver'),
            COUNT(*) FILTER (WHERE role = 'admin'),
            COUNT(*) FILTER (WHERE role = 'approval_supervisor'),
            COUNT(*) FILTER (WHERE role = 'monitoring'),
            COUNT(*) FILTER (WHERE is_active),
            COUNT(*) FILTER (WHERE NOT is_active),
            COUNT(*) FILTER (WHERE is_verified),
            COUNT(*) FILTER (WHERE NOT is_verified),
            COUNT(*) FILTER (WHERE created_at >= date_trunc('day', NOW()))
        FROM users`
	var s model.UserStats
	err := r.storage.pool.QueryRow(ctx, query).Scan(&s.Total, &s.Customers, &s.Drivers, &s.Admins,
		&s.Supervisors, &s.Monitoring, &s.Active, &s.Inactive, &s.Verified, &s.PendingVerification, &s.NewToday)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return &s, nil
}
