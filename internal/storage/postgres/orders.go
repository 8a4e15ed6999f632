package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

const orderColumns = `id, kind, customer_id, driver_id, status, price, position_lat, position_lng, position_at, details, cancel_reason, created_at, updated_at`

type orderRepository struct {
	storage *Storage
}

func scanOrder(row scanner) (*model.Order, error) {
	var (
		o              model.Order
		kind, status   string
		lat, lng       *float64
		positionAt     *time.Time
		detailsPayload []byte
	)
	err := row.Scan(&o.ID, &kind, &o.CustomerID, &o.DriverID, &status, &o.Price, &lat, &lng, &positionAt,
		&detailsPayload, &o.CancelReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	o.Kind = model.OrderKind(kind)
	o.Status = model.OrderStatus(status)
	if lat != nil && lng != nil {
		o.Position = &model.Position{Lat: *lat, Lng: *lng}
		if positionAt != nil {
			o.Position.RecordedAt = *positionAt
		}
	}
	if len(detailsPayload) > 0 {
		if err := json.Unmarshal(detailsPayload, &o.Details); err != nil {
			return nil, fmt.Errorf("decode order %d details: %w", o.ID, err)
		}
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	details, err := json.Marshal(order.Details)
	if err != nil {
		return nil, fmt.Errorf("encode order details: %w", err)
	}
	const query = `INSERT INTO orders (kind, customer_id, status, details)
                   VALUES ($1, $2, $3, $4)
                   RETURNING ` + orderColumns
	return scanOrder(r.storage.pool.QueryRow(ctx, query, string(order.Kind), order.CustomerID, string(order.Status), details))
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, int64, error) {
	var (
		p     placeholders
		conds []string
	)
	if filter.Status != nil {
		conds = append(conds, "status = "+p.add(string(*filter.Status)))
	}
	if filter.Kind != nil {
		conds = append(conds, "kind = "+p.add(string(*filter.Kind)))
	}
	if filter.CustomerID != nil {
		conds = append(conds, "customer_id = "+p.add(*filter.CustomerID))
	}
	if filter.DriverID != nil {
		conds = append(conds, "driver_id = "+p.add(*filter.DriverID))
	}
	if filter.ParticipantID != nil {
		ph := p.add(*filter.ParticipantID)
		conds = append(conds, "(customer_id = "+ph+" OR driver_id = "+ph+")")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, p.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ` + p.add(page.Size) + ` OFFSET ` + p.add(page.Offset())
	rows, err := r.storage.pool.Query(ctx, query, p.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := make([]model.Order, 0, page.Size)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Update applies patch in a single conditional statement. When no row
// matches, the order is probed to tell a missing order from a lost race.
func (r *orderRepository) Update(ctx context.Context, id int64, patch model.OrderPatch) (*model.Order, error) {
	var p placeholders
	where := []string{
		"id = " + p.add(id),
		"status = " + p.add(string(patch.ExpectedStatus)),
	}
	if patch.ExpectedDriverID != nil {
		where = append(where, "driver_id = "+p.add(*patch.ExpectedDriverID))
	}

	sets := []string{"updated_at = NOW()"}
	if patch.Status != nil {
		sets = append(sets, "status = "+p.add(string(*patch.Status)))
	}
	if patch.Price != nil {
		sets = append(sets, "price = "+p.add(*patch.Price))
	}
	if patch.DriverID != nil {
		sets = append(sets, "driver_id = "+p.add(*patch.DriverID))
	}
	if patch.Position != nil {
		recorded := patch.Position.RecordedAt
		if recorded.IsZero() {
			recorded = time.Now().UTC()
		}
		sets = append(sets,
			"position_lat = "+p.add(patch.Position.Lat),
			"position_lng = "+p.add(patch.Position.Lng),
			"position_at = "+p.add(recorded),
		)
	}
	if patch.CancelReason != nil {
		sets = append(sets, "cancel_reason = "+p.add(*patch.CancelReason))
	}

	query := `UPDATE orders SET ` + strings.Join(sets, ", ") +
		` WHERE ` + strings.Join(where, " AND ") +
		` RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, p.args...))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}

	var exists bool
	if err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domainErrors.ErrNotFound
	}
	return nil, fmt.Errorf("%w: order %d is no longer %s", domainErrors.ErrConflict, id, patch.ExpectedStatus)
}

func (r *orderRepository) CountActiveByDriver(ctx context.Context, driverID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE driver_id=$1 AND status IN ('assigned', 'in_progress')`
	var n int
	if err := r.storage.pool.QueryRow(ctx, query, driverID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *orderRepository) Stats(ctx context.Context) (*model.OrderStats, error) {
	const query = `SELECT status, kind, COUNT(*), COALESCE(SUM(price), 0)
                   FROM orders GROUP BY status, kind`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	defer rows.Close()

	stats := &model.OrderStats{
		ByStatus: make(map[model.OrderStatus]int64),
		ByKind:   make(map[model.OrderKind]int64),
	}
	for rows.Next() {
		var (
			status, kind string
			count        int64
			sum          float64
		)
		if err := rows.Scan(&status, &kind, &count, &sum); err != nil {
			return nil, err
		}
		s := model.OrderStatus(status)
		stats.Total += count
		stats.ByStatus[s] += count
		stats.ByKind[model.OrderKind(kind)] += count
		if s == model.OrderStatusCompleted {
			stats.Revenue += sum
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	stats.Pending = stats.ByStatus[model.OrderStatusPending]
	stats.Completed = stats.ByStatus[model.OrderStatusCompleted]
	stats.Cancelled = stats.ByStatus[model.OrderStatusCancelled]
	return stats, nil
}
