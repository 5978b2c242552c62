package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/muurk/netscope/internal/codec"
	"github.com/muurk/netscope/internal/discovery"
	"github.com/muurk/netscope/internal/logging"
	"github.com/muurk/netscope/internal/txtrecord"
	"go.uber.org/zap"
)

// contentTypes maps codec formats to response content types
var contentTypes = map[string]string{
	"json": "application/json",
	"yaml": "application/yaml",
	"cbor": "application/cbor",
}

// DeviceDetail is a device with its TXT metadata interpreted
type DeviceDetail struct {
	discovery.Device
	Endpoint string            `json:"endpoint,omitempty"`
	BaseURL  string            `json:"base_url,omitempty"`
	Fields   []txtrecord.Field `json:"fields"`
}

// Handler returns the HTTP routes:
//
//	GET /api/devices          all devices, sorted
//	GET /api/devices/{id}     one device with interpreted metadata
//	GET /api/categories       catalogued service types
//	GET /api/status           session status
//	GET /api/snapshot         full snapshot, ?format=json|yaml|cbor
//	GET /ws                   websocket feed, ?format=json|cbor
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/devices", s.handleDevices)
	mux.HandleFunc("GET /api/devices/{id}", s.handleDevice)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return logRequests(mux)
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.source.Devices()
	if devices == nil {
		devices = []discovery.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid device id: %v", err))
		return
	}

	device, ok := s.source.Device(id)
	if !ok {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}

	fields := s.interp.Describe(device.Metadata)
	if fields == nil {
		fields = []txtrecord.Field{}
	}
	writeJSON(w, http.StatusOK, DeviceDetail{
		Device:   device,
		Endpoint: device.Endpoint(),
		BaseURL:  device.BaseURL(),
		Fields:   fields,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.source.Categories()
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.source.Status())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	c, err := codec.ForFormat(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypes[c.Format()])
	w.WriteHeader(http.StatusOK)
	if err := c.Export(codec.Take(s.source), w); err != nil {
		logging.Error("Failed to write snapshot", zap.String("format", c.Format()), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status)
	})
}
