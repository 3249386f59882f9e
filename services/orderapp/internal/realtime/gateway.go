package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orderbuddy/orderbuddy/pkg/event"
	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/ordering"
)

const (
	// sseBufferSize bounds the per-connection event queue. A client that
	// falls this far behind starts losing events instead of blocking the
	// broadcaster.
	sseBufferSize = 64

	keepaliveInterval = 30 * time.Second
)

type sseEvent struct {
	name string
	data []byte
}

// sseConn is one SSE subscriber. Send never blocks.
type sseConn struct {
	id     string
	events chan sseEvent
}

func newSSEConn() *sseConn {
	return &sseConn{
		id:     uuid.New().String(),
		events: make(chan sseEvent, sseBufferSize),
	}
}

func (c *sseConn) ID() string {
	return c.id
}

func (c *sseConn) Send(eventName string, payload []byte) bool {
	select {
	case c.events <- sseEvent{name: eventName, data: payload}:
		return true
	default:
		return false
	}
}

// Gateway exposes the SSE endpoints dashboards, stations and customers
// subscribe to.
type Gateway struct {
	registry *Registry
	router   *Router
	stations ordering.StationRepo
	logger   apt.Logger
	tlm      *telemetry.HTTP
}

func NewGateway(registry *Registry, router *Router, stations ordering.StationRepo, logger apt.Logger) *Gateway {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Gateway{
		registry: registry,
		router:   router,
		stations: stations,
		logger:   logger,
		tlm:      telemetry.NewHTTP(),
	}
}

func (g *Gateway) RegisterRoutes(r chi.Router) {
	r.Route("/realtime", func(r chi.Router) {
		r.Get("/locations/{restaurantID}/{locationID}", g.StreamLocation)
		r.Get("/stations/{id}", g.StreamStation)
		r.Get("/orders/{id}", g.StreamOrder)
	})
}

// StreamLocation subscribes a dashboard to its restaurant and location rooms.
func (g *Gateway) StreamLocation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := g.tlm.Start(w, r, "Gateway.StreamLocation")
	defer finish()

	restaurantID := chi.URLParam(r, "restaurantID")
	locationID := chi.URLParam(r, "locationID")
	if restaurantID == "" || locationID == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing restaurant or location id")
		return
	}

	rooms := []string{restaurantID, event.LocationRoom(restaurantID, locationID)}
	g.serveStream(w, r, rooms, nil)
}

// StreamStation subscribes a kitchen station to its own room and the location
// dashboard room, acknowledging the join with a station_connected event.
func (g *Gateway) StreamStation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := g.tlm.Start(w, r, "Gateway.StreamStation")
	defer finish()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid station id parameter")
		return
	}

	station, err := g.stations.Get(r.Context(), id)
	if err != nil {
		g.logger.Error("error loading station", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve station")
		return
	}
	if station == nil {
		apt.RespondError(w, http.StatusNotFound, "Station not found")
		return
	}

	rooms := []string{
		station.ID.String(),
		event.LocationRoom(station.RestaurantID, station.LocationID.String()),
	}
	g.serveStream(w, r, rooms, station)
}

// StreamOrder subscribes a customer to their order's room.
func (g *Gateway) StreamOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := g.tlm.Start(w, r, "Gateway.StreamOrder")
	defer finish()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid order id parameter")
		return
	}

	g.serveStream(w, r, []string{id.String()}, nil)
}

func (g *Gateway) serveStream(w http.ResponseWriter, r *http.Request, rooms []string, station *ordering.Station) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		apt.RespondError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	conn := newSSEConn()
	for _, room := range rooms {
		g.registry.Join(room, conn)
	}
	defer g.registry.LeaveAll(conn.ID())

	g.logger.Info("new SSE connection", "subscriber_id", conn.ID(), "rooms", fmt.Sprintf("%v", rooms))

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	flusher.Flush()

	if station != nil {
		ack := event.StationConnectedEvent{
			Success:    true,
			StationID:  station.ID.String(),
			LocationID: station.LocationID.String(),
		}
		if data, err := json.Marshal(ack); err == nil {
			conn.Send(event.EventStationConnected, data)
		}
		// The location dashboards see the station come online too.
		g.router.ServerBroadcast(event.EventStationConnected,
			event.LocationRoom(station.RestaurantID, station.LocationID.String()), ack)
	}

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			g.logger.Info("SSE client disconnected", "subscriber_id", conn.ID())
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()

		case evt := <-conn.events:
			fmt.Fprintf(w, "event: %s\n", evt.name)
			fmt.Fprintf(w, "data: %s\n\n", evt.data)
			flusher.Flush()
		}
	}
}
