package ordering

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockMenuRepo is a mock implementation of MenuRepo for testing
type MockMenuRepo struct {
	mu    sync.RWMutex
	menus map[uuid.UUID]*Menu

	GetFunc        func(ctx context.Context, id uuid.UUID) (*Menu, error)
	GetBySlugFunc  func(ctx context.Context, restaurantID string, locationID uuid.UUID, menuSlug string) (*Menu, error)
	ListForLocFunc func(ctx context.Context, restaurantID string, locationID uuid.UUID) ([]MenuSummary, error)
}

func NewMockMenuRepo() *MockMenuRepo {
	return &MockMenuRepo{
		menus: make(map[uuid.UUID]*Menu),
	}
}

func (m *MockMenuRepo) Add(menu *Menu) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menus[menu.ID] = menu
}

func (m *MockMenuRepo) Get(ctx context.Context, id uuid.UUID) (*Menu, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.menus[id], nil
}

func (m *MockMenuRepo) GetBySlug(ctx context.Context, restaurantID string, locationID uuid.UUID, menuSlug string) (*Menu, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, restaurantID, locationID, menuSlug)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, menu := range m.menus {
		if menu.RestaurantID == restaurantID && menu.LocationID == locationID && menu.MenuSlug == menuSlug {
			return menu, nil
		}
	}
	return nil, nil
}

func (m *MockMenuRepo) ListForLocation(ctx context.Context, restaurantID string, locationID uuid.UUID) ([]MenuSummary, error) {
	if m.ListForLocFunc != nil {
		return m.ListForLocFunc(ctx, restaurantID, locationID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []MenuSummary
	for _, menu := range m.menus {
		if menu.RestaurantID == restaurantID && menu.LocationID == locationID {
			result = append(result, MenuSummary{ID: menu.ID, MenuSlug: menu.MenuSlug, Name: menu.Name, Available: menu.Available})
		}
	}
	return result, nil
}

// MockPreviewRepo is a mock implementation of PreviewRepo for testing
type MockPreviewRepo struct {
	mu       sync.RWMutex
	previews map[uuid.UUID]*PreviewOrder

	CreateFunc  func(ctx context.Context, preview *PreviewOrder) error
	GetFunc     func(ctx context.Context, id uuid.UUID) (*PreviewOrder, error)
	ConsumeFunc func(ctx context.Context, id uuid.UUID) (*PreviewOrder, error)
	ReleaseFunc func(ctx context.Context, id uuid.UUID) error

	Released []uuid.UUID
}

func NewMockPreviewRepo() *MockPreviewRepo {
	return &MockPreviewRepo{
		previews: make(map[uuid.UUID]*PreviewOrder),
	}
}

func (m *MockPreviewRepo) Create(ctx context.Context, preview *PreviewOrder) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, preview)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previews[preview.ID] = preview
	return nil
}

func (m *MockPreviewRepo) Get(ctx context.Context, id uuid.UUID) (*PreviewOrder, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previews[id], nil
}

func (m *MockPreviewRepo) Consume(ctx context.Context, id uuid.UUID) (*PreviewOrder, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	preview, ok := m.previews[id]
	if !ok || preview.Consumed {
		return nil, nil
	}
	preview.Consumed = true
	return preview, nil
}

func (m *MockPreviewRepo) Release(ctx context.Context, id uuid.UUID) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if preview, ok := m.previews[id]; ok {
		preview.Consumed = false
	}
	m.Released = append(m.Released, id)
	return nil
}

// MockOrderRepo is a mock implementation of OrderRepo for testing
type MockOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*Order

	CreateFunc func(ctx context.Context, order *Order) error
	GetFunc    func(ctx context.Context, id uuid.UUID) (*Order, error)
	SaveFunc   func(ctx context.Context, order *Order) error
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders: make(map[uuid.UUID]*Order),
	}
}

func (m *MockOrderRepo) Create(ctx context.Context, order *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[id], nil
}

func (m *MockOrderRepo) Save(ctx context.Context, order *Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepo) MarkItemStarted(ctx context.Context, orderID uuid.UUID, itemID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	item, ok := order.Item(itemID)
	if !ok {
		return nil, nil
	}
	now := time.Now()
	item.StartedAt = &now
	item.CompletedAt = nil
	return order, nil
}

func (m *MockOrderRepo) MarkItemCompleted(ctx context.Context, orderID uuid.UUID, itemID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	item, ok := order.Item(itemID)
	if !ok {
		return nil, nil
	}
	now := time.Now()
	item.CompletedAt = &now
	return order, nil
}

func (m *MockOrderRepo) ListForStation(ctx context.Context, restaurantID string, locationID uuid.UUID, tags []string) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []Order
	for _, order := range m.orders {
		if order.RestaurantID != restaurantID || order.LocationID != locationID {
			continue
		}
		if len(order.ItemsMatching(tags)) > 0 {
			result = append(result, *order)
		}
	}
	return result, nil
}

// MockLocationRepo is a mock implementation of LocationRepo for testing
type MockLocationRepo struct {
	mu        sync.RWMutex
	locations map[uuid.UUID]*Location

	GetFunc func(ctx context.Context, id uuid.UUID) (*Location, error)
}

func NewMockLocationRepo() *MockLocationRepo {
	return &MockLocationRepo{
		locations: make(map[uuid.UUID]*Location),
	}
}

func (m *MockLocationRepo) Add(location *Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[location.ID] = location
}

func (m *MockLocationRepo) Get(ctx context.Context, id uuid.UUID) (*Location, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.locations[id], nil
}

func (m *MockLocationRepo) GetBySlug(ctx context.Context, restaurantID, locationSlug string) (*Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, location := range m.locations {
		if location.RestaurantID == restaurantID && location.LocationSlug == locationSlug {
			return location, nil
		}
	}
	return nil, nil
}

// MockRestaurantRepo is a mock implementation of RestaurantRepo for testing
type MockRestaurantRepo struct {
	mu          sync.RWMutex
	restaurants map[string]*Restaurant

	GetFunc func(ctx context.Context, id string) (*Restaurant, error)
}

func NewMockRestaurantRepo() *MockRestaurantRepo {
	return &MockRestaurantRepo{
		restaurants: make(map[string]*Restaurant),
	}
}

func (m *MockRestaurantRepo) Add(restaurant *Restaurant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants[restaurant.ID] = restaurant
}

func (m *MockRestaurantRepo) Get(ctx context.Context, id string) (*Restaurant, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.restaurants[id], nil
}

// MockCampaignRepo is a mock implementation of CampaignRepo for testing
type MockCampaignRepo struct {
	Campaign          *Campaign
	ActiveForOriginFn func(ctx context.Context, restaurantID string, locationID uuid.UUID, originID string) (*Campaign, error)
}

func (m *MockCampaignRepo) ActiveForOrigin(ctx context.Context, restaurantID string, locationID uuid.UUID, originID string) (*Campaign, error) {
	if m.ActiveForOriginFn != nil {
		return m.ActiveForOriginFn(ctx, restaurantID, locationID, originID)
	}
	return m.Campaign, nil
}

// MockStationRepo is a mock implementation of StationRepo for testing
type MockStationRepo struct {
	mu       sync.RWMutex
	stations map[uuid.UUID]*Station

	FindByTagsFunc func(ctx context.Context, restaurantID string, locationID uuid.UUID, tags []string) ([]Station, error)
}

func NewMockStationRepo() *MockStationRepo {
	return &MockStationRepo{
		stations: make(map[uuid.UUID]*Station),
	}
}

func (m *MockStationRepo) Create(ctx context.Context, station *Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations[station.ID] = station
	return nil
}

func (m *MockStationRepo) Get(ctx context.Context, id uuid.UUID) (*Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stations[id], nil
}

func (m *MockStationRepo) Save(ctx context.Context, station *Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations[station.ID] = station
	return nil
}

func (m *MockStationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stations, id)
	return nil
}

func (m *MockStationRepo) ListForLocation(ctx context.Context, restaurantID string, locationID uuid.UUID) ([]Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []Station
	for _, station := range m.stations {
		if station.RestaurantID == restaurantID && station.LocationID == locationID {
			result = append(result, *station)
		}
	}
	return result, nil
}

func (m *MockStationRepo) FindByTags(ctx context.Context, restaurantID string, locationID uuid.UUID, tags []string) ([]Station, error) {
	if m.FindByTagsFunc != nil {
		return m.FindByTagsFunc(ctx, restaurantID, locationID, tags)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []Station
	for _, station := range m.stations {
		if station.RestaurantID == restaurantID && station.LocationID == locationID &&
			station.IsActive && station.MatchesAny(tags) {
			result = append(result, *station)
		}
	}
	return result, nil
}

// broadcastCall records one ServerBroadcast invocation
type broadcastCall struct {
	Event string
	Room  string
}

// MockEventSink is a mock implementation of EventSink for testing
type MockEventSink struct {
	mu         sync.Mutex
	Broadcasts []broadcastCall
	Routed     []*Order
	ItemEvents []string

	RouteOrderFunc func(ctx context.Context, order *Order) (int, error)
	RouteItemFunc  func(ctx context.Context, order *Order, itemID, eventName string) error
}

func (m *MockEventSink) ServerBroadcast(eventName, roomID string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Broadcasts = append(m.Broadcasts, broadcastCall{Event: eventName, Room: roomID})
}

func (m *MockEventSink) RouteOrderToStations(ctx context.Context, order *Order) (int, error) {
	if m.RouteOrderFunc != nil {
		return m.RouteOrderFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Routed = append(m.Routed, order)
	return 1, nil
}

func (m *MockEventSink) RouteItemEvent(ctx context.Context, order *Order, itemID, eventName string) error {
	if m.RouteItemFunc != nil {
		return m.RouteItemFunc(ctx, order, itemID, eventName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemEvents = append(m.ItemEvents, eventName)
	return nil
}

func (m *MockEventSink) HasBroadcast(eventName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, call := range m.Broadcasts {
		if call.Event == eventName {
			return true
		}
	}
	return false
}

// MockMessenger is a mock implementation of Messenger for testing
type MockMessenger struct {
	mu       sync.Mutex
	Messages []string
	SendFunc func(ctx context.Context, phoneNumber, text string) error
}

func (m *MockMessenger) SendSMS(ctx context.Context, phoneNumber, text string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, phoneNumber, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, text)
	return nil
}

// MockPusher is a mock implementation of Pusher for testing
type MockPusher struct {
	mu     sync.Mutex
	Pushes []string
	PushFn func(ctx context.Context, restaurantID, title, body string) error
}

func (m *MockPusher) Push(ctx context.Context, restaurantID, title, body string) error {
	if m.PushFn != nil {
		return m.PushFn(ctx, restaurantID, title, body)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pushes = append(m.Pushes, body)
	return nil
}
