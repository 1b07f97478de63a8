package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/repository"
)

// Hand-rolled port fakes shared by the service tests in this package.

type passwordUpdate struct {
	userID    string
	hash      string
	changedAt time.Time
}

type fakeUserRepo struct {
	users           map[string]domain.User
	statusUpdates   map[string]domain.AccountStatus
	passwordUpdates []passwordUpdate
	created         []domain.User
	deleted         []string
	err             error
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		users:         make(map[string]domain.User, len(users)),
		statusUpdates: make(map[string]domain.AccountStatus),
	}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) error {
	if f.err != nil {
		return f.err
	}
	f.users[user.ID] = user
	f.created = append(f.created, user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) List(_ context.Context, _ port.UserFilter) ([]domain.User, error) {
	users := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int, error) {
	return len(f.users), nil
}

func (f *fakeUserRepo) Update(_ context.Context, user domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateStatus(_ context.Context, id string, status domain.AccountStatus) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Status = status
	f.users[id] = user
	f.statusUpdates[id] = status
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string, changedAt time.Time) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = hash
	f.users[id] = user
	f.passwordUpdates = append(f.passwordUpdates, passwordUpdate{userID: id, hash: hash, changedAt: changedAt})
	return nil
}

func (f *fakeUserRepo) AdjustBalance(_ context.Context, id string, delta decimal.Decimal) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Balance = user.Balance.Add(delta)
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAdminRepo struct {
	admins  map[string]domain.Admin
	created []domain.Admin
}

func newFakeAdminRepo(admins ...domain.Admin) *fakeAdminRepo {
	repo := &fakeAdminRepo{admins: make(map[string]domain.Admin, len(admins))}
	for _, a := range admins {
		repo.admins[a.ID] = a
	}
	return repo
}

func (f *fakeAdminRepo) Create(_ context.Context, admin domain.Admin) error {
	f.admins[admin.ID] = admin
	f.created = append(f.created, admin)
	return nil
}

func (f *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	admin, ok := f.admins[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &admin, nil
}

func (f *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	for _, admin := range f.admins {
		if admin.Email == email {
			a := admin
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeGameRepo struct {
	games   map[string]domain.Game
	created []domain.Game
	updated []domain.Game
	deleted []string
}

func newFakeGameRepo(games ...domain.Game) *fakeGameRepo {
	repo := &fakeGameRepo{games: make(map[string]domain.Game, len(games))}
	for _, g := range games {
		repo.games[g.ID] = g
	}
	return repo
}

func (f *fakeGameRepo) Create(_ context.Context, game domain.Game) error {
	f.games[game.ID] = game
	f.created = append(f.created, game)
	return nil
}

func (f *fakeGameRepo) GetByID(_ context.Context, id string) (*domain.Game, error) {
	game, ok := f.games[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &game, nil
}

func (f *fakeGameRepo) GetByIDs(_ context.Context, ids []string) (map[string]domain.Game, error) {
	result := make(map[string]domain.Game, len(ids))
	for _, id := range ids {
		if game, ok := f.games[id]; ok {
			result[id] = game
		}
	}
	return result, nil
}

func (f *fakeGameRepo) List(_ context.Context, _ port.GameFilter) ([]domain.Game, error) {
	games := make([]domain.Game, 0, len(f.games))
	for _, game := range f.games {
		games = append(games, game)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

func (f *fakeGameRepo) Count(_ context.Context) (int, error) {
	return len(f.games), nil
}

func (f *fakeGameRepo) Update(_ context.Context, game domain.Game) error {
	if _, ok := f.games[game.ID]; !ok {
		return repository.ErrNotFound
	}
	f.games[game.ID] = game
	f.updated = append(f.updated, game)
	return nil
}

func (f *fakeGameRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.games[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.games, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeReviewRepo struct {
	reviews map[string]domain.Review
	created []domain.Review
	updated []domain.Review
	deleted []string
}

func newFakeReviewRepo(reviews ...domain.Review) *fakeReviewRepo {
	repo := &fakeReviewRepo{reviews: make(map[string]domain.Review, len(reviews))}
	for _, r := range reviews {
		repo.reviews[r.ID] = r
	}
	return repo
}

func (f *fakeReviewRepo) Create(_ context.Context, review domain.Review) error {
	f.reviews[review.ID] = review
	f.created = append(f.created, review)
	return nil
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id string) (*domain.Review, error) {
	review, ok := f.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &review, nil
}

func (f *fakeReviewRepo) GetByUserAndGame(_ context.Context, userID, gameID string) (*domain.Review, error) {
	for _, review := range f.reviews {
		if review.UserID == userID && review.GameID == gameID {
			r := review
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeReviewRepo) ListByGame(_ context.Context, gameID string) ([]domain.Review, error) {
	var reviews []domain.Review
	for _, review := range f.reviews {
		if review.GameID == gameID {
			reviews = append(reviews, review)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}

func (f *fakeReviewRepo) Update(_ context.Context, review domain.Review) error {
	if _, ok := f.reviews[review.ID]; !ok {
		return repository.ErrNotFound
	}
	f.reviews[review.ID] = review
	f.updated = append(f.updated, review)
	return nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.reviews, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeOrderRepo struct {
	orders        map[string]domain.Order
	items         map[string][]domain.OrderItem
	statusUpdates map[string]domain.OrderStatus
	summary       port.OrderSummary
	library       []domain.LibraryEntry
}

func newFakeOrderRepo(orders ...domain.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{
		orders:        make(map[string]domain.Order, len(orders)),
		items:         make(map[string][]domain.OrderItem),
		statusUpdates: make(map[string]domain.OrderStatus),
	}
	for _, o := range orders {
		repo.orders[o.ID] = o
		repo.items[o.ID] = o.Items
	}
	return repo
}

func (f *fakeOrderRepo) Create(_ context.Context, order domain.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) CreateItems(_ context.Context, items []domain.OrderItem) error {
	for _, item := range items {
		f.items[item.OrderID] = append(f.items[item.OrderID], item)
	}
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	order.Items = nil
	return &order, nil
}

func (f *fakeOrderRepo) ListItems(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderRepo) List(_ context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	var orders []domain.Order
	for _, order := range f.orders {
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (f *fakeOrderRepo) Count(_ context.Context) (int, error) {
	return len(f.orders), nil
}

func (f *fakeOrderRepo) Summary(_ context.Context) (*port.OrderSummary, error) {
	summary := f.summary
	return &summary, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Status = status
	f.orders[id] = order
	f.statusUpdates[id] = status
	return nil
}

func (f *fakeOrderRepo) ListLibrary(_ context.Context, _ string) ([]domain.LibraryEntry, error) {
	return f.library, nil
}

type fakeCartStore struct {
	carts   map[string]map[string]int
	cleared []string
	removed []string
	err     error
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[string]map[string]int)}
}

func (f *fakeCartStore) session(sessionID string) map[string]int {
	cart, ok := f.carts[sessionID]
	if !ok {
		cart = make(map[string]int)
		f.carts[sessionID] = cart
	}
	return cart
}

func (f *fakeCartStore) Add(_ context.Context, sessionID, gameID string) error {
	if f.err != nil {
		return f.err
	}
	f.session(sessionID)[gameID]++
	return nil
}

func (f *fakeCartStore) Set(_ context.Context, sessionID, gameID string, quantity int) error {
	if f.err != nil {
		return f.err
	}
	if quantity <= 0 {
		delete(f.session(sessionID), gameID)
		return nil
	}
	f.session(sessionID)[gameID] = quantity
	return nil
}

func (f *fakeCartStore) Remove(_ context.Context, sessionID, gameID string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.session(sessionID), gameID)
	f.removed = append(f.removed, gameID)
	return nil
}

func (f *fakeCartStore) Get(_ context.Context, sessionID string) (map[string]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make(map[string]int)
	for gameID, qty := range f.carts[sessionID] {
		result[gameID] = qty
	}
	return result, nil
}

func (f *fakeCartStore) Clear(_ context.Context, sessionID string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.carts, sessionID)
	f.cleared = append(f.cleared, sessionID)
	return nil
}

type purchaseCall struct {
	userID     string
	quantities map[string]int
	at         time.Time
}

type fakePurchaseStore struct {
	purchaseFn    func(ctx context.Context, userID string, quantities map[string]int, at time.Time) (*domain.Order, error)
	cancelFn      func(ctx context.Context, orderID string) (*domain.Order, error)
	purchaseCalls []purchaseCall
	cancelCalls   []string
}

func (f *fakePurchaseStore) Purchase(ctx context.Context, userID string, quantities map[string]int, at time.Time) (*domain.Order, error) {
	f.purchaseCalls = append(f.purchaseCalls, purchaseCall{userID: userID, quantities: quantities, at: at})
	if f.purchaseFn == nil {
		return nil, repository.ErrNotFound
	}
	return f.purchaseFn(ctx, userID, quantities, at)
}

func (f *fakePurchaseStore) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	f.cancelCalls = append(f.cancelCalls, orderID)
	if f.cancelFn == nil {
		return nil, repository.ErrNotFound
	}
	return f.cancelFn(ctx, orderID)
}

type fakeNotificationRepo struct {
	notifications map[string]domain.Notification
	created       []domain.Notification
	markedRead    []string
	markedAllRead []string
}

func newFakeNotificationRepo(notifications ...domain.Notification) *fakeNotificationRepo {
	repo := &fakeNotificationRepo{notifications: make(map[string]domain.Notification, len(notifications))}
	for _, n := range notifications {
		repo.notifications[n.ID] = n
	}
	return repo
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification domain.Notification) error {
	f.notifications[notification.ID] = notification
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeNotificationRepo) forUser(userID string) []domain.Notification {
	var out []domain.Notification
	for _, n := range f.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeNotificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	notification, ok := f.notifications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &notification, nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	var list []domain.Notification
	for _, notification := range f.notifications {
		if notification.UserID == userID {
			list = append(list, notification)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	notification, ok := f.notifications[id]
	if !ok {
		return repository.ErrNotFound
	}
	notification.IsRead = true
	f.notifications[id] = notification
	f.markedRead = append(f.markedRead, id)
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for id, notification := range f.notifications {
		if notification.UserID == userID {
			notification.IsRead = true
			f.notifications[id] = notification
		}
	}
	f.markedAllRead = append(f.markedAllRead, userID)
	return nil
}

type fakeEventPublisher struct {
	registered     []domain.UserRegisteredEvent
	placed         []domain.OrderPlacedEvent
	cancelled      []domain.OrderCancelledEvent
	resetRequested []domain.PasswordResetRequestedEvent
	changed        []domain.PasswordChangedEvent
	adminActions   []domain.AdminActionEvent
	err            error
}

func (f *fakeEventPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	f.registered = append(f.registered, event)
	return f.err
}

func (f *fakeEventPublisher) PublishOrderPlaced(_ context.Context, event domain.OrderPlacedEvent) error {
	f.placed = append(f.placed, event)
	return f.err
}

func (f *fakeEventPublisher) PublishOrderCancelled(_ context.Context, event domain.OrderCancelledEvent) error {
	f.cancelled = append(f.cancelled, event)
	return f.err
}

func (f *fakeEventPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	f.resetRequested = append(f.resetRequested, event)
	return f.err
}

func (f *fakeEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	f.changed = append(f.changed, event)
	return f.err
}

func (f *fakeEventPublisher) PublishAdminAction(_ context.Context, event domain.AdminActionEvent) error {
	f.adminActions = append(f.adminActions, event)
	return f.err
}

type fakeResetTokenRepo struct {
	tokens []domain.PasswordResetToken
}

func (f *fakeResetTokenRepo) Create(_ context.Context, token domain.PasswordResetToken) error {
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeResetTokenRepo) GetLatestUnused(_ context.Context, email, codeHash string) (*domain.PasswordResetToken, error) {
	var found *domain.PasswordResetToken
	for i := range f.tokens {
		token := f.tokens[i]
		if token.Email != email || token.CodeHash != codeHash || token.Used {
			continue
		}
		if found == nil || token.CreatedAt.After(found.CreatedAt) {
			t := token
			found = &t
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (f *fakeResetTokenRepo) MarkUsed(_ context.Context, id string) error {
	for i := range f.tokens {
		if f.tokens[i].ID == id {
			f.tokens[i].Used = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeResetTokenRepo) InvalidateForEmail(_ context.Context, email string) (int, error) {
	count := 0
	for i := range f.tokens {
		if f.tokens[i].Email == email && !f.tokens[i].Used {
			f.tokens[i].Used = true
			count++
		}
	}
	return count, nil
}

type fakeResetStateStore struct {
	verified map[string]bool
	clears   []string
}

func newFakeResetStateStore() *fakeResetStateStore {
	return &fakeResetStateStore{verified: make(map[string]bool)}
}

func (f *fakeResetStateStore) MarkVerified(_ context.Context, email string) error {
	f.verified[email] = true
	return nil
}

func (f *fakeResetStateStore) IsVerified(_ context.Context, email string) (bool, error) {
	return f.verified[email], nil
}

func (f *fakeResetStateStore) ClearVerified(_ context.Context, email string) error {
	delete(f.verified, email)
	f.clears = append(f.clears, email)
	return nil
}

type fakeActivityLogRepo struct {
	entries []domain.ActivityLog
}

func (f *fakeActivityLogRepo) Append(_ context.Context, entry domain.ActivityLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeActivityLogRepo) ListRecent(_ context.Context, limit int) ([]domain.ActivityLog, error) {
	entries := make([]domain.ActivityLog, len(f.entries))
	copy(entries, f.entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
