package httpapi

import (
	"context"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-doctemplate/pkg/completion"
	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/session"
)

type createDocumentRequest struct {
	TemplateID string          `json:"templateId"`
	Language   string          `json:"language,omitempty"`
	Values     document.Values `json:"values,omitempty"`
}

type documentResponse struct {
	Document   document.Document `json:"document"`
	Completion completion.Status `json:"completion"`
}

type documentsResponse struct {
	Data []document.Document `json:"data"`
}

type fieldRequest struct {
	Value    document.Value `json:"value"`
	Revision uint64         `json:"revision,omitempty"`
}

type patchRequest struct {
	Values   document.Values `json:"values"`
	Revision uint64          `json:"revision,omitempty"`
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func respondDocument(w http.ResponseWriter, code int, sess *session.Session) {
	writeJSON(w, code, documentResponse{Document: sess.Snapshot(), Completion: sess.Completion()})
}

func (s *Server) listDocuments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, documentsResponse{Data: s.sessions.List()})
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.TemplateID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "templateId is required"})
		return
	}
	lang := req.Language
	if lang == "" {
		lang = requestLanguage(r)
	}

	sess, err := s.sessions.Start(r.Context(), req.TemplateID, lang, req.Values)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", r.URL.Path+"/"+sess.ID())
	respondDocument(w, http.StatusCreated, sess)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondDocument(w, http.StatusOK, sess)
}

func (s *Server) putField(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req fieldRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	update, err := sess.Apply(r.Context(), session.Edit{
		Field:    chi.URLParam(r, "field"),
		Value:    req.Value,
		Revision: req.Revision,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

func (s *Server) patchDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req patchRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	edits := make([]session.Edit, 0, len(req.Values))
	for _, name := range sortedFields(req.Values) {
		edits = append(edits, session.Edit{Field: name, Value: req.Values[name], Revision: req.Revision})
		// Only the first edit is checked against the client revision.
		req.Revision = 0
	}
	update, err := sess.Apply(r.Context(), edits...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.lookup(w, r); !ok {
		return
	}
	s.sessions.Close(chi.URLParam(r, "documentID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) validateDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	role, err := parseRole(r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Role:       role,
		Result:     sess.Validate(role),
		Completion: sess.Completion(),
	})
}

func (s *Server) sendDocument(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.sessions.Send)
}

func (s *Server) completeDocument(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.sessions.Complete)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, step func(ctx context.Context, id string) (document.Document, error)) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if _, err := step(r.Context(), sess.ID()); err != nil {
		writeError(w, err)
		return
	}
	respondDocument(w, http.StatusOK, sess)
}

func sortedFields(values document.Values) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
