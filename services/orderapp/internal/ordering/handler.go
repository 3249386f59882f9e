package ordering

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	logger    apt.Logger
	config    *apt.Config
	tlm       *telemetry.HTTP
	menus     MenuRepo
	stations  StationRepo
	previews  *PreviewStore
	validator *PriceValidator
	lifecycle *LifecycleManager
	tracker   *ItemTracker
}

type HandlerDeps struct {
	Menus     MenuRepo
	Stations  StationRepo
	Previews  *PreviewStore
	Validator *PriceValidator
	Lifecycle *LifecycleManager
	Tracker   *ItemTracker
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return &Handler{
		config:    config,
		logger:    logger,
		tlm:       telemetry.NewHTTP(),
		menus:     hd.Menus,
		stations:  hd.Stations,
		previews:  hd.Previews,
		validator: hd.Validator,
		lifecycle: hd.Lifecycle,
		tracker:   hd.Tracker,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/menus", func(r chi.Router) {
		r.Get("/", h.ListMenus)
		r.Get("/{id}", h.GetMenu)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/validate", h.ValidateOrder)
		r.Post("/preview", h.CreatePreview)
		r.Get("/preview/{id}", h.GetPreview)
		r.Post("/finalize", h.FinalizeOrder)
		r.Get("/{id}", h.GetOrder)
		r.Put("/{id}/status", h.UpdateOrderStatus)
		r.Put("/{id}/wait-time", h.UpdateWaitTime)
		r.Patch("/{orderID}/items/{itemID}", h.UpdateOrderItem)
	})

	r.Route("/stations", func(r chi.Router) {
		r.Post("/", h.CreateStation)
		r.Get("/", h.ListStations)
		r.Get("/{id}", h.GetStation)
		r.Put("/{id}", h.UpdateStation)
		r.Delete("/{id}", h.DeleteStation)
		r.Get("/{id}/orders", h.ListStationOrders)
	})
}

// Menu handlers

func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListMenus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	restaurantID := r.URL.Query().Get("restaurant_id")
	locationID, err := uuid.Parse(r.URL.Query().Get("location_id"))
	if restaurantID == "" || err != nil {
		log.Debug("missing or invalid menu list filters")
		apt.RespondError(w, http.StatusBadRequest, "restaurant_id and location_id are required")
		return
	}

	menus, err := h.menus.ListForLocation(ctx, restaurantID, locationID)
	if err != nil {
		log.Error("error listing menus", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve menus")
		return
	}

	apt.RespondCollection(w, menus, "menu")
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetMenu")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	menu, err := h.menus.Get(ctx, id)
	if err != nil {
		log.Error("error loading menu", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve menu")
		return
	}
	if menu == nil {
		apt.RespondError(w, http.StatusNotFound, "Menu not found")
		return
	}

	// Customers only see what they can order.
	menu.Items = menu.AvailableItems()

	links := apt.RESTfulLinksFor(menu)
	apt.RespondSuccess(w, menu, links...)
}

// Order handlers

func (h *Handler) ValidateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ValidateOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	draft, ok := h.decodeDraftPayload(w, r, log)
	if !ok {
		return
	}

	pricing, err := h.validator.ValidateAndPrice(ctx, &draft)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not validate order")
		return
	}

	apt.RespondSuccess(w, pricing)
}

func (h *Handler) CreatePreview(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreatePreview")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	draft, ok := h.decodeDraftPayload(w, r, log)
	if !ok {
		return
	}

	preview, err := h.previews.CreatePreviewOrder(ctx, &draft)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not create preview")
		return
	}

	links := apt.RESTfulLinksFor(preview)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, preview, links...)
}

func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetPreview")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	preview, err := h.previews.Get(ctx, id)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not retrieve preview")
		return
	}

	links := apt.RESTfulLinksFor(preview)
	apt.RespondSuccess(w, preview, links...)
}

type FinalizeRequest struct {
	PreviewID     uuid.UUID `json:"preview_id"`
	PaymentID     string    `json:"payment_id"`
	CorrelationID string    `json:"correlation_id"`
}

func (h *Handler) FinalizeOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.FinalizeOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req FinalizeRequest
	if !h.decodeJSON(w, r, log, &req) {
		return
	}
	if req.PreviewID == uuid.Nil {
		log.Debug("missing preview id in finalize request")
		apt.RespondError(w, http.StatusBadRequest, "preview_id is required")
		return
	}

	report, err := h.lifecycle.Finalize(ctx, req.PreviewID, req.PaymentID, req.CorrelationID)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not finalize order")
		return
	}

	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, report)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.lifecycle.Get(ctx, id)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not retrieve order")
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

type OrderStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req OrderStatusRequest
	if !h.decodeJSON(w, r, log, &req) {
		return
	}
	if req.Actor == "" {
		req.Actor = "staff"
	}

	order, err := h.lifecycle.UpdateStatus(ctx, id, req.Status, req.Actor)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not update order status")
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

type WaitTimeRequest struct {
	WaitTimeInMinutes int `json:"wait_time_in_minutes"`
}

func (h *Handler) UpdateWaitTime(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateWaitTime")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req WaitTimeRequest
	if !h.decodeJSON(w, r, log, &req) {
		return
	}
	if req.WaitTimeInMinutes < 0 {
		apt.RespondError(w, http.StatusBadRequest, "wait_time_in_minutes must not be negative")
		return
	}

	order, err := h.lifecycle.SetWaitTime(ctx, id, req.WaitTimeInMinutes)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not update wait time")
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

type OrderItemActionRequest struct {
	Action string `json:"action"`
}

func (h *Handler) UpdateOrderItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		log.Debug("invalid order id parameter")
		apt.RespondError(w, http.StatusBadRequest, "Invalid order id parameter")
		return
	}
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing item id parameter")
		return
	}

	var req OrderItemActionRequest
	if !h.decodeJSON(w, r, log, &req) {
		return
	}

	order, err := h.tracker.Apply(ctx, orderID, itemID, req.Action)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not update order item")
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

// Station handlers

func (h *Handler) CreateStation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateStation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var station Station
	if !h.decodeJSON(w, r, log, &station) {
		return
	}
	if station.RestaurantID == "" || station.LocationID == uuid.Nil || station.Name == "" {
		apt.RespondError(w, http.StatusBadRequest, "restaurant_id, location_id and name are required")
		return
	}

	station.EnsureID()
	station.IsActive = true

	if err := h.stations.Create(ctx, &station); err != nil {
		log.Error("cannot create station", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create station")
		return
	}

	links := apt.RESTfulLinksFor(&station)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, &station, links...)
}

func (h *Handler) ListStations(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListStations")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	restaurantID := r.URL.Query().Get("restaurant_id")
	locationID, err := uuid.Parse(r.URL.Query().Get("location_id"))
	if restaurantID == "" || err != nil {
		apt.RespondError(w, http.StatusBadRequest, "restaurant_id and location_id are required")
		return
	}

	stations, err := h.stations.ListForLocation(ctx, restaurantID, locationID)
	if err != nil {
		log.Error("error listing stations", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve stations")
		return
	}

	apt.RespondCollection(w, stations, "station")
}

func (h *Handler) GetStation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetStation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	station, err := h.stations.Get(ctx, id)
	if err != nil {
		log.Error("error loading station", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve station")
		return
	}
	if station == nil {
		apt.RespondError(w, http.StatusNotFound, "Station not found")
		return
	}

	links := apt.RESTfulLinksFor(station)
	apt.RespondSuccess(w, station, links...)
}

type StationUpdateRequest struct {
	Name     *string   `json:"name,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}

func (h *Handler) UpdateStation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateStation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	station, err := h.stations.Get(ctx, id)
	if err != nil || station == nil {
		log.Error("station not found", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusNotFound, "Station not found")
		return
	}

	var req StationUpdateRequest
	if !h.decodeJSON(w, r, log, &req) {
		return
	}

	if req.Name != nil {
		station.Name = *req.Name
	}
	if req.Tags != nil {
		station.Tags = *req.Tags
	}
	if req.IsActive != nil {
		station.IsActive = *req.IsActive
	}

	if err := h.stations.Save(ctx, station); err != nil {
		log.Error("cannot update station", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not update station")
		return
	}

	links := apt.RESTfulLinksFor(station)
	apt.RespondSuccess(w, station, links...)
}

func (h *Handler) DeleteStation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteStation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.stations.Delete(ctx, id); err != nil {
		log.Error("cannot delete station", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not delete station")
		return
	}

	apt.RespondSuccess(w, map[string]string{"id": id.String()})
}

// ListStationOrders returns the orders currently relevant to one station:
// accepted orders with at least one item matching the station's tags.
func (h *Handler) ListStationOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListStationOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	station, err := h.stations.Get(ctx, id)
	if err != nil {
		log.Error("error loading station", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve station")
		return
	}
	if station == nil {
		apt.RespondError(w, http.StatusNotFound, "Station not found")
		return
	}

	orders, err := h.lifecycle.orders.ListForStation(ctx, station.RestaurantID, station.LocationID, station.Tags)
	if err != nil {
		log.Error("error listing station orders", "error", err, "station_id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve station orders")
		return
	}

	// Stations only see their own slice of each order.
	for i := range orders {
		orders[i].Items = orders[i].ItemsMatching(station.Tags)
	}

	apt.RespondCollection(w, orders, "order")
}

// Helpers

func (h *Handler) respondDomainError(w http.ResponseWriter, log apt.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Debug("resource not found", "error", err)
		apt.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		log.Debug("invalid transition", "error", err)
		apt.RespondError(w, http.StatusConflict, err.Error())
	default:
		log.Error(fallback, "error", err)
		apt.RespondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		apt.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decodeDraftPayload(w http.ResponseWriter, r *http.Request, log apt.Logger) (OrderDraft, bool) {
	var draft OrderDraft
	if !h.decodeJSON(w, r, log, &draft) {
		return OrderDraft{}, false
	}
	if draft.RestaurantID == "" {
		apt.RespondError(w, http.StatusBadRequest, "restaurant_id is required")
		return OrderDraft{}, false
	}
	if len(draft.Items) == 0 {
		apt.RespondError(w, http.StatusBadRequest, "at least one item is required")
		return OrderDraft{}, false
	}
	return draft, true
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, log apt.Logger, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}

	return true
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
