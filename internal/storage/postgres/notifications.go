package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

const notificationColumns = `id, user_id, type, title, body, data, is_read, created_at`

type notificationRepository struct {
	storage *Storage
}

func scanNotification(row scanner) (*model.Notification, error) {
	var (
		n       model.Notification
		kind    string
		payload []byte
	)
	if err := row.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Body, &payload, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, translate(err)
	}
	n.Type = model.NotificationType(kind)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &n.Data); err != nil {
			return nil, fmt.Errorf("decode notification %d data: %w", n.ID, err)
		}
	}
	return &n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	data := n.Data
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode notification data: %w", err)
	}
	const query = `INSERT INTO notifications (user_id, type, title, body, data)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING ` + notificationColumns
	return scanNotification(r.storage.pool.QueryRow(ctx, query, n.UserID, string(n.Type), n.Title, n.Body, payload))
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, filter model.NotificationFilter, page model.Page) ([]model.Notification, int64, error) {
	where := ` WHERE user_id=$1`
	if filter.UnreadOnly {
		where += ` AND NOT is_read`
	}

	var total int64
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`+where, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.storage.pool.Query(ctx, query, userID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := make([]model.Notification, 0, page.Size)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *notificationRepository) InboxStats(ctx context.Context, userID int64) (*model.InboxStats, error) {
	const query = `SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read) FROM notifications WHERE user_id=$1`
	var s model.InboxStats
	if err := r.storage.pool.QueryRow(ctx, query, userID).Scan(&s.Total, &s.Unread); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkRead flags a notification of userID as read. Notifications of other
// users are reported as missing.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	tag, err := r.storage.pool.Exec(ctx, `UPDATE notifications SET is_read=TRUE WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.storage.pool.Exec(ctx, `UPDATE notifications SET is_read=TRUE WHERE user_id=$1 AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM notifications WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) Stats(ctx context.Context) (*model.NotificationStats, error) {
	const query = `SELECT type, COUNT(*), COUNT(*) FILTER (WHERE created_at >= date_trunc('day', NOW()))
                   FROM notifications GROUP BY type`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("notification stats: %w", err)
	}
	defer rows.Close()

	stats := &model.NotificationStats{ByType: make(map[model.NotificationType]int64)}
	for rows.Next() {
		var (
			kind         string
			count, today int64
		)
		if err := rows.Scan(&kind, &count, &today); err != nil {
			return nil, err
		}
		stats.ByType[model.NotificationType(kind)] = count
		stats.Total += count
		stats.Today += today
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
