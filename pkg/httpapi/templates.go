package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"github.com/goliatone/go-doctemplate/pkg/catalog"
	"github.com/goliatone/go-doctemplate/pkg/completion"
	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/validation"
)

type templatesResponse struct {
	Data []catalog.Summary `json:"data"`
}

type renderRequest struct {
	Values   document.Values `json:"values"`
	Status   document.Status `json:"status,omitempty"`
	Renderer string          `json:"renderer,omitempty"`
	Theme    string          `json:"theme,omitempty"`
	Variant  string          `json:"variant,omitempty"`
}

func (req renderRequest) options() render.RenderOptions {
	return render.RenderOptions{ThemeName: req.Theme, ThemeVariant: req.Variant}
}

type validateRequest struct {
	Values document.Values `json:"values"`
	Role   string          `json:"role,omitempty"`
}

type validateResponse struct {
	Role       validation.Role   `json:"role"`
	Result     validation.Result `json:"result"`
	Completion completion.Status `json:"completion"`
}

func requestLanguage(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return lang
	}
	if tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil && len(tags) > 0 {
		return catalog.NormalizeLanguage(tags[0].String())
	}
	return catalog.DefaultLanguage
}

func (s *Server) prepare(r *http.Request) (orchestrator.Prepared, error) {
	return s.orch.Prepare(r.Context(), chi.URLParam(r, "templateID"), requestLanguage(r))
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	summaries := s.orch.Templates(requestLanguage(r))
	if summaries == nil {
		summaries = []catalog.Summary{}
	}
	writeJSON(w, http.StatusOK, templatesResponse{Data: summaries})
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	prepared, err := s.prepare(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prepared)
}

func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	prepared, err := s.prepare(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, contentType, err := s.orch.Render(r.Context(), orchestrator.Request{
		Prepared:      prepared,
		Values:        req.Values,
		Status:        req.Status,
		Renderer:      req.Renderer,
		RenderOptions: req.options(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) validateTemplate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	role, err := parseRole(req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	prepared, err := s.prepare(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Role:       role,
		Result:     prepared.Validate(req.Values, role),
		Completion: prepared.Completion(req.Values),
	})
}

func parseRole(raw string) (validation.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return validation.RoleFinalize, nil
	}
	role, err := validation.ParseRole(raw)
	if err != nil {
		return "", StatusError{Code: http.StatusBadRequest, Err: err}
	}
	return role, nil
}
