package api

import (
	"net/http"

	"dwellingcore/internal/core"
	"dwellingcore/pkg/domain"
)

type itemRequest struct {
	Data    domain.Fields `json:"data"`
	Replace bool          `json:"replace,omitempty"`
}

type draftRequest struct {
	Index *int          `json:"index,omitempty"`
	Data  domain.Fields `json:"data"`
}

type completeSectionRequest struct {
	// Also lists sibling sections completed together with the URL path,
	// e.g. both hot water outlet sections on one page.
	Also []string `json:"also,omitempty"`
}

type mutationResponse struct {
	Item   *core.ItemHandle `json:"item,omitempty"`
	Marked *bool            `json:"marked,omitempty"`
	Result domain.Result    `json:"result"`
}

func (s *Server) getDocument(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.Document())
}

func (s *Server) getReport(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.Report())
}

func (s *Server) getResolved(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.Resolved())
}

func (s *Server) getSection(w http.ResponseWriter, r *http.Request) {
	path, ok := s.parseSection(w, r)
	if !ok {
		return
	}
	doc := s.svc.Document()
	section := doc.Section(path)
	items := section.Items
	if items == nil {
		items = []domain.Item{}
	}
	s.writeJSON(w, http.StatusOK, sectionResponse{
		Path:     path,
		Status:   core.SectionStatusIn(doc, path),
		Items:    items,
		Complete: section.Complete,
	})
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	path, ok := s.parseSection(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	handle, res, err := s.svc.AddItem(r.Context(), path, req.Data)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, mutationResponse{Item: &handle, Result: res})
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	path, ok := s.parseSection(w, r)
	if !ok {
		return
	}
	index, ok := s.parseIndex(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	var res domain.Result
	var err error
	if req.Replace {
		res, err = s.svc.ReplaceItem(r.Context(), path, index, req.Data)
	} else {
		res, err = s.svc.UpdateItem(r.Context(), path, index, req.Data)
	}
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mutationResponse{Result: res})
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	path, ok := s.parseSection(w, r)
	if !ok {
		return
	}
	index, ok := s.parseIndex(w, r)
	if !ok {
		return
	}
	res, err := s.svc.RemoveItem(r.Context(), path, index)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mutationResponse{Result: res})
}

func (s *Server) duplicateItem(w http.ResponseWriter, r *http.Request) {
	path, ok := s.parseSection(w, r)
	if !ok {
		return
	}
	index, ok := s.parseIndex(w, r)
	if !ok {
		return
	}
	handle, res, err := s.svc.DuplicateItem(r.Context(), path, index)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, mutationResponse{Item: &handle, Result: res})
}

func (s *Server) completeItem(w http.ResponseWriter, r *http.Request) {
	path, ok := s.parseSection(w, r)
	if !ok {
		return
	}
	index, ok := s.parseIndex(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	res, err := s.svc.CompleteItem(r.Context(), path, index, req.Data)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mutationResponse{Result: res})
}

func (s *Server) markSectionComplete(w http.ResponseWriter, r *http.Request) {
	path, ok := s.parseSection(w, r)
	if !ok {
		return
	}
	var req completeSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	paths := []domain.SectionPath{path}
	for _, raw := range req.Also {
		p, err := domain.ParseSectionPath(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "INVALID_PATH", err.Error())
			return
		}
		paths = append(paths, p)
	}
	marked, res, err := s.svc.MarkSectionComplete(r.Context(), paths...)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	status := http.StatusOK
	if !marked {
		status = http.StatusConflict
	}
	s.writeJSON(w, status, mutationResponse{Marked: &marked, Result: res})
}

func (s *Server) commitDraft(w http.ResponseWriter, r *http.Request) {
	path, ok := s.parseSection(w, r)
	if !ok {
		return
	}
	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	index := -1
	if req.Index != nil {
		index = *req.Index
	}
	handle, res, err := s.svc.CommitDraft(r.Context(), path, index, req.Data)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mutationResponse{Item: &handle, Result: res})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Reset(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mutationResponse{Result: res})
}

func (s *Server) revalidate(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Revalidate(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mutationResponse{Result: res})
}

func (s *Server) listExports(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.writeError(w, http.StatusNotImplemented, "EXPORT_DISABLED", "no artifact store configured")
		return
	}
	infos, err := s.exporter.List(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) createExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.writeError(w, http.StatusNotImplemented, "EXPORT_DISABLED", "no artifact store configured")
		return
	}
	res, err := s.exporter.Export(r.Context(), s.svc)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, res)
}
