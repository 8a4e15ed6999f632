package test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu      sync.Mutex
	ByPhone map[string]*model.User
	ByID    map[int64]*model.User
	Next    int64
	Err     error
	Logins  []int64
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		ByPhone: make(map[string]*model.User),
		ByID:    make(map[int64]*model.User),
		Next:    1,
	}
}

// Add stores user as is and returns a copy with the assigned identifier.
func (s *UserRepositoryStub) Add(user model.User) *model.User {
	created, err := s.Create(context.Background(), &user)
	if err != nil {
		panic(err)
	}
	return created
}

// Create registers user unless the phone is taken or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, user *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.ByPhone[user.Phone]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	stored := *user
	stored.ID = s.Next
	s.Next++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.ByPhone[stored.Phone] = &stored
	s.ByID[stored.ID] = &stored
	out := stored
	return &out, nil
}

// GetByPhone fetches user by phone or returns not found.
func (s *UserRepositoryStub) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByPhone[phone]; ok {
		out := *user
		return &out, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		out := *user
		return &out, nil
	}
	return nil, domainErrors.ErrNotFound
}

// List filters users the way the SQL store does.
func (s *UserRepositoryStub) List(ctx context.Context, filter model.UserFilter, page model.Page) ([]model.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	var matched []model.User
	for _, u := range s.sorted() {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Search)) &&
			!strings.Contains(u.Phone, filter.Search) {
			continue
		}
		matched = append(matched, u)
	}
	return paginate(matched, page), int64(len(matched)), nil
}

// ListIDsByRole returns identifiers of users with role.
func (s *UserRepositoryStub) ListIDsByRole(ctx context.Context, role model.Role) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var ids []int64
	for _, u := range s.sorted() {
		if u.Role == role {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

// UpdateName renames a stored user.
func (s *UserRepositoryStub) UpdateName(ctx context.Context, id int64, name string) (*model.User, error) {
	return s.mutate(id, func(u *model.User) { u.Name = name })
}

// UpdateRole changes the role of a stored user.
func (s *UserRepositoryStub) UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	return s.mutate(id, func(u *model.User) { u.Role = role })
}

// SetActive toggles the active flag.
func (s *UserRepositoryStub) SetActive(ctx context.Context, id int64, active bool) (*model.User, error) {
	return s.mutate(id, func(u *model.User) { u.IsActive = active })
}

// SetVerified toggles the verified flag.
func (s *UserRepositoryStub) SetVerified(ctx context.Context, id int64, verified bool) (*model.User, error) {
	return s.mutate(id, func(u *model.User) { u.IsVerified = verified })
}

// TouchLogin records a login.
func (s *UserRepositoryStub) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := s.mutate(id, func(u *model.User) { u.LastLoginAt = &at })
	if err == nil {
		s.mu.Lock()
		s.Logins = append(s.Logins, id)
		s.mu.Unlock()
	}
	return err
}

// Delete removes a stored user.
func (s *UserRepositoryStub) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	user, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.ByPhone, user.Phone)
	delete(s.ByID, id)
	return nil
}

// Stats counts stored users.
func (s *UserRepositoryStub) Stats(ctx context.Context) (*model.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	stats := &model.UserStats{}
	for _, u := range s.ByID {
		stats.Total++
		switch u.Role {
		case model.RoleCustomer:
			stats.Customers++
		case model.RoleDriver:
			stats.Drivers++
		case model.RoleAdmin:
			stats.Admins++
		case model.RoleApprovalSupervisor:
			stats.Supervisors++
		case model.RoleMonitoring:
			stats.Monitoring++
		}
		if u.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		if u.IsVerified {
			stats.Verified++
		} else {
			stats.PendingVerification++
		}
	}
	return stats, nil
}

func (s *UserRepositoryStub) mutate(id int64, fn func(*model.User)) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	user, ok := s.ByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	fn(user)
	user.UpdatedAt = time.Now()
	out := *user
	return &out, nil
}

func (s *UserRepositoryStub) sorted() []model.User {
	users := make([]model.User, 0, len(s.ByID))
	for _, u := range s.ByID {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// OrderRepositoryStub keeps orders in memory and applies patches with the same
// compare-and-set semantics as the SQL store.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	Orders map[int64]*model.Order
	Next   int64
	Err    error

	// BeforeUpdate runs before the guarded write, outside the lock.
	BeforeUpdate func()
	Updates      []model.OrderPatch
	StatsResult  *model.OrderStats
}

// NewOrderRepositoryStub constructs an empty order stub.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[int64]*model.Order), Next: 1}
}

// Create stores an order.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Orders == nil {
		s.Orders = make(map[int64]*model.Order)
	}
	if s.Next == 0 {
		s.Next = 1
	}
	stored := *order
	stored.ID = s.Next
	s.Next++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.Orders[stored.ID] = &stored
	out := stored
	return &out, nil
}

// GetByID returns a copy of a stored order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *order
	return &out, nil
}

// List filters stored orders, newest first.
func (s *OrderRepositoryStub) List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	var matched []model.Order
	for _, o := range s.Orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.Kind != nil && o.Kind != *filter.Kind {
			continue
		}
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.DriverID != nil && (o.DriverID == nil || *o.DriverID != *filter.DriverID) {
			continue
		}
		if filter.ParticipantID != nil && o.CustomerID != *filter.ParticipantID &&
			(o.DriverID == nil || *o.DriverID != *filter.ParticipantID) {
			continue
		}
		matched = append(matched, *o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return paginate(matched, page), int64(len(matched)), nil
}

// Update applies patch when the stored state still matches its guards.
func (s *OrderRepositoryStub) Update(ctx context.Context, id int64, patch model.OrderPatch) (*model.Order, error) {
	if s.BeforeUpdate != nil {
		s.BeforeUpdate()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if order.Status != patch.ExpectedStatus {
		return nil, fmt.Errorf("%w: order %d is no longer %s", domainErrors.ErrConflict, id, patch.ExpectedStatus)
	}
	if patch.ExpectedDriverID != nil && (order.DriverID == nil || *order.DriverID != *patch.ExpectedDriverID) {
		return nil, fmt.Errorf("%w: order %d changed driver", domainErrors.ErrConflict, id)
	}

	if patch.Status != nil {
		order.Status = *patch.Status
	}
	if patch.Price != nil {
		price := *patch.Price
		order.Price = &price
	}
	if patch.DriverID != nil {
		driver := *patch.DriverID
		order.DriverID = &driver
	}
	if patch.Position != nil {
		pos := *patch.Position
		order.Position = &pos
	}
	if patch.CancelReason != nil {
		order.CancelReason = *patch.CancelReason
	}
	order.UpdatedAt = time.Now()
	s.Updates = append(s.Updates, patch)

	out := *order
	return &out, nil
}

// CountActiveByDriver counts assigned and in progress orders of a driver.
func (s *OrderRepositoryStub) CountActiveByDriver(ctx context.Context, driverID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	n := 0
	for _, o := range s.Orders {
		if o.DriverID == nil || *o.DriverID != driverID {
			continue
		}
		if o.Status == model.OrderStatusAssigned || o.Status == model.OrderStatusInProgress {
			n++
		}
	}
	return n, nil
}

// Stats returns StatsResult when configured or counts stored orders.
func (s *OrderRepositoryStub) Stats(ctx context.Context) (*model.OrderStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.StatsResult != nil {
		return s.StatsResult, nil
	}
	stats := &model.OrderStats{
		ByStatus: make(map[model.OrderStatus]int64),
		ByKind:   make(map[model.OrderKind]int64),
	}
	for _, o := range s.Orders {
		stats.Total++
		stats.ByStatus[o.Status]++
		stats.ByKind[o.Kind]++
		if o.Status == model.OrderStatusCompleted && o.Price != nil {
			stats.Revenue += *o.Price
		}
	}
	stats.Pending = stats.ByStatus[model.OrderStatusPending]
	stats.Completed = stats.ByStatus[model.OrderStatusCompleted]
	stats.Cancelled = stats.ByStatus[model.OrderStatusCancelled]
	return stats, nil
}

// UpdateCount returns how many patches were written.
func (s *OrderRepositoryStub) UpdateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Updates)
}

// NotificationRepositoryStub keeps notifications in memory.
type NotificationRepositoryStub struct {
	mu        sync.Mutex
	Items     []model.Notification
	Next      int64
	Err       error
	CreateErr error
}

// NewNotificationRepositoryStub constructs an empty notification stub.
func NewNotificationRepositoryStub() *NotificationRepositoryStub {
	return &NotificationRepositoryStub{Next: 1}
}

// Create appends a notification unless CreateErr is set.
func (s *NotificationRepositoryStub) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if s.Next == 0 {
		s.Next = 1
	}
	stored := *n
	stored.ID = s.Next
	s.Next++
	stored.CreatedAt = time.Now()
	s.Items = append(s.Items, stored)
	return &stored, nil
}

// ListByUser returns the inbox of userID, newest first.
func (s *NotificationRepositoryStub) ListByUser(ctx context.Context, userID int64, filter model.NotificationFilter, page model.Page) ([]model.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	var matched []model.Notification
	for i := len(s.Items) - 1; i >= 0; i-- {
		n := s.Items[i]
		if n.UserID != userID || (filter.UnreadOnly && n.IsRead) {
			continue
		}
		matched = append(matched, n)
	}
	return paginate(matched, page), int64(len(matched)), nil
}

// InboxStats counts the inbox of userID.
func (s *NotificationRepositoryStub) InboxStats(ctx context.Context, userID int64) (*model.InboxStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	stats := &model.InboxStats{}
	for _, n := range s.Items {
		if n.UserID != userID {
			continue
		}
		stats.Total++
		if !n.IsRead {
			stats.Unread++
		}
	}
	return stats, nil
}

// MarkRead marks a notification owned by userID.
func (s *NotificationRepositoryStub) MarkRead(ctx context.Context, id, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Items {
		if s.Items[i].ID == id && s.Items[i].UserID == userID {
			s.Items[i].IsRead = true
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// MarkAllRead marks the whole inbox of userID.
func (s *NotificationRepositoryStub) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for i := range s.Items {
		if s.Items[i].UserID == userID && !s.Items[i].IsRead {
			s.Items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

// Delete removes a notification.
func (s *NotificationRepositoryStub) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// Stats counts stored notifications.
func (s *NotificationRepositoryStub) Stats(ctx context.Context) (*model.NotificationStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	stats := &model.NotificationStats{ByType: make(map[model.NotificationType]int64)}
	today := time.Now().Truncate(24 * time.Hour)
	for _, n := range s.Items {
		stats.Total++
		stats.ByType[n.Type]++
		if !n.CreatedAt.Before(today) {
			stats.Today++
		}
	}
	return stats, nil
}

// For returns the notifications addressed to userID in creation order.
func (s *NotificationRepositoryStub) For(userID int64) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for _, n := range s.Items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// Count returns how many notifications are stored.
func (s *NotificationRepositoryStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Items)
}

// FactoryStub bundles repository stubs.
type FactoryStub struct {
	UserRepo         *UserRepositoryStub
	OrderRepo        *OrderRepositoryStub
	NotificationRepo *NotificationRepositoryStub
}

// NewFactoryStub constructs a factory with empty stubs.
func NewFactoryStub() *FactoryStub {
	return &FactoryStub{
		UserRepo:         NewUserRepositoryStub(),
		OrderRepo:        NewOrderRepositoryStub(),
		NotificationRepo: NewNotificationRepositoryStub(),
	}
}

// Users returns the user stub.
func (f *FactoryStub) Users() repository.UserRepository { return f.UserRepo }

// Orders returns the order stub.
func (f *FactoryStub) Orders() repository.OrderRepository { return f.OrderRepo }

// Notifications returns the notification stub.
func (f *FactoryStub) Notifications() repository.NotificationRepository { return f.NotificationRepo }

func paginate[T any](items []T, page model.Page) []T {
	if page.Size <= 0 {
		return items
	}
	start := page.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

var (
	_ repository.UserRepository         = (*UserRepositoryStub)(nil)
	_ repository.OrderRepository        = (*OrderRepositoryStub)(nil)
	_ repository.NotificationRepository = (*NotificationRepositoryStub)(nil)
	_ repository.Factory                = (*FactoryStub)(nil)
)
