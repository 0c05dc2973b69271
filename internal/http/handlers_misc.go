package http

import (
	"net/http"
	"strings"
)

type categoryPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	kind := strings.TrimSpace(r.URL.Query().Get("kind"))
	if kind != "" && kind != "asset" && kind != "expense" {
		writeBadRequest(w, "kind must be 'asset' or 'expense'")
		return
	}

	categories, err := s.deps.Store.ListCategories(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryPayload, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryPayload{ID: c.ID, Name: c.Name, Kind: c.Kind})
	}
	writeJSON(w, http.StatusOK, map[string][]categoryPayload{"categories": out})
}

type vendorPayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city,omitempty"`
	Category string `json:"category,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

func (s *Server) handleListVendors(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	vendors, err := s.deps.Store.ListVendors(r.Context(), city, category)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]vendorPayload, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, vendorPayload{ID: v.ID, Name: v.Name, City: v.City, Category: v.Category, Phone: v.Phone})
	}
	writeJSON(w, http.StatusOK, map[string][]vendorPayload{"vendors": out})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	username, err := queryUsername(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	notifications, err := s.deps.Store.ListNotifications(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]NotificationPayload{
		"notifications": newNotificationPayloads(notifications),
	})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.deps.Store.MarkNotificationRead(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
