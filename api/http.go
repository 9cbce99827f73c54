// Package api exposes a Console over HTTP and WebSocket. The host
// mounts the handler on its own server, under any prefix:
//
//	mux.Handle("/tracing/", http.StripPrefix("/tracing", api.NewHandler(console)))
//
// Routes:
//
//	POST /api/logs    — filtered, paginated query over retained events
//	GET  /api/targets — distinct origins observed so far
//	GET  /api/ws      — live stream, one JSON event per message
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/valyala/fastjson"
	"golang.org/x/net/websocket"

	"github.com/traceview/traceview"
	"github.com/traceview/traceview/engine"
	"github.com/traceview/traceview/event"
)

// maxRequestBody bounds query request bodies; filter specifications
// are small, anything larger is malformed input.
const maxRequestBody = 1 << 20

// Handler serves the console API.
type Handler struct {
	console *traceview.Console
	parser  fastjson.ParserPool
}

// NewHandler creates the route set for c. Query and target responses
// are gzip-compressed when the client accepts it.
func NewHandler(c *traceview.Console) http.Handler {
	h := &Handler{console: c}

	mux := http.NewServeMux()
	mux.Handle("/api/logs", gzhttp.GzipHandler(http.HandlerFunc(h.handleLogs)))
	mux.Handle("/api/targets", gzhttp.GzipHandler(http.HandlerFunc(h.handleTargets)))
	mux.Handle("/api/ws", websocket.Handler(h.serveStream))
	return mux
}

// logsResponse is the wire shape of a query result.
type logsResponse struct {
	Logs  []event.Event `json:"logs"`
	Total int           `json:"total"`
}

// targetsResponse is the wire shape of the target listing.
type targetsResponse struct {
	Targets []string `json:"targets"`
}

// handleLogs processes POST /api/logs requests.
func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	filter, err := h.parseFilter(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := h.console.Query(filter)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(logsResponse{Logs: result.Page, Total: result.Total}); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}

// parseFilter turns a request body into an engine.Filter. Any
// unrecognized level name, unknown sort order, or negative numeric
// field is an invalid-filter error for the caller; nothing is guessed.
func (h *Handler) parseFilter(body []byte) (engine.Filter, error) {
	p := h.parser.Get()
	defer h.parser.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return engine.Filter{}, fmt.Errorf("invalid JSON: %v", err)
	}

	// Absent limit means no paging bound; limit 0 is a count-only
	// query and returns an empty page with a real total.
	filter := engine.Filter{
		MinLevel: event.LevelTrace,
		Sort:     engine.NewestFirst,
		Limit:    -1,
	}

	if lv := v.Get("limit"); lv != nil && lv.Type() != fastjson.TypeNull {
		limit, err := lv.Int()
		if err != nil || limit < 0 {
			return engine.Filter{}, fmt.Errorf("invalid limit")
		}
		filter.Limit = limit
	}
	if ov := v.Get("offset"); ov != nil && ov.Type() != fastjson.TypeNull {
		offset, err := ov.Int()
		if err != nil || offset < 0 {
			return engine.Filter{}, fmt.Errorf("invalid offset")
		}
		filter.Offset = offset
	}

	if s := v.GetStringBytes("global_level"); len(s) > 0 {
		level, err := event.ParseLevel(string(s))
		if err != nil {
			return engine.Filter{}, fmt.Errorf("invalid global_level: %v", err)
		}
		filter.MinLevel = level
	}

	if obj := v.GetObject("target_levels"); obj != nil {
		levels := make(map[string]event.Level)
		var visitErr error
		obj.Visit(func(key []byte, val *fastjson.Value) {
			if visitErr != nil {
				return
			}
			raw, err := val.StringBytes()
			if err != nil {
				visitErr = fmt.Errorf("invalid target_levels value for %q", key)
				return
			}
			level, err := event.ParseLevel(string(raw))
			if err != nil {
				visitErr = fmt.Errorf("invalid target_levels value for %q: %v", key, err)
				return
			}
			levels[string(key)] = level
		})
		if visitErr != nil {
			return engine.Filter{}, visitErr
		}
		filter.TargetLevels = levels
	}

	filter.Search = string(v.GetStringBytes("search"))
	filter.Target = string(v.GetStringBytes("target"))

	switch sort := string(v.GetStringBytes("sort_order")); sort {
	case "", "newest_first":
		filter.Sort = engine.NewestFirst
	case "oldest_first":
		filter.Sort = engine.OldestFirst
	default:
		return engine.Filter{}, fmt.Errorf("invalid sort_order %q", sort)
	}

	return filter, nil
}

// handleTargets processes GET /api/targets requests.
func (h *Handler) handleTargets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(targetsResponse{Targets: h.console.Targets()}); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}
