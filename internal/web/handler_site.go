package web

import (
	"net/http"
	"strconv"
	"strings"
)

const maxNameLen = 200

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.sites.List(r.Context())
	if err != nil {
		s.logger.Error("list sites error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list sites")
		return
	}

	out := make([]sitePayload, 0, len(sites))
	for _, site := range sites {
		out = append(out, sitePayload{ID: site.ID, Name: site.Name})
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	req, err := decode[struct {
		Name string `json:"name"`
	}](r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.respondError(w, http.StatusBadRequest, "site name required")
		return
	}
	if len(name) > maxNameLen {
		s.respondError(w, http.StatusBadRequest, "site name too long")
		return
	}

	site, err := s.sites.Create(r.Context(), name)
	if err != nil {
		s.logger.Error("create site error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to create site")
		return
	}

	s.respond(w, http.StatusCreated, sitePayload{ID: site.ID, Name: site.Name})
}

func (s *Server) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter q required")
		return
	}

	items, err := s.items.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("search items error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to search items")
		return
	}

	out := make([]itemPayload, 0, len(items))
	for _, item := range items {
		out = append(out, toItemPayload(item))
	}
	s.respond(w, http.StatusOK, out)
}

// parseID extracts a path variable and returns it as int64.
func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
