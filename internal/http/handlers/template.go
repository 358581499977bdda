package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/notegen-backend/internal/http/response"
	"github.com/yungbote/notegen-backend/internal/modules/notes"
	"github.com/yungbote/notegen-backend/internal/modules/notes/compose"
	"github.com/yungbote/notegen-backend/internal/modules/notes/fieldpath"
	"github.com/yungbote/notegen-backend/internal/modules/notes/schema"
	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
	"github.com/yungbote/notegen-backend/internal/platform/logger"
)

const maxTemplateRequestBytes = 4 << 20

// TemplateHandler exposes the template pipeline: schema compilation,
// conflict listing, snapshot resolution, bundle composition and draft
// generation. Every endpoint takes the template document inline so the
// service stays stateless.
type TemplateHandler struct {
	log      *logger.Logger
	usecases *notes.Usecases
}

func NewTemplateHandler(log *logger.Logger, uc *notes.Usecases) *TemplateHandler {
	return &TemplateHandler{log: log.With("handler", "template"), usecases: uc}
}

type templateRequest struct {
	Template   json.RawMessage `json:"template"`
	SourceData map[string]any  `json:"sourceData"`
	Model      string          `json:"model,omitempty"`
}

// POST /api/templates/schemas
func (h *TemplateHandler) CompileSchemas(c *gin.Context) {
	tpl, _, ok := h.bindTemplate(c)
	if !ok {
		return
	}
	set, err := h.usecases.CompileSchemas(c.Request.Context(), tpl)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, set)
}

// POST /api/templates/conflicts
func (h *TemplateHandler) ListConflicts(c *gin.Context) {
	tpl, _, ok := h.bindTemplate(c)
	if !ok {
		return
	}
	conflicts, err := h.usecases.MergeConflicts(c.Request.Context(), tpl)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []schema.Conflict{}
	}
	response.RespondOK(c, gin.H{"conflicts": conflicts})
}

// POST /api/templates/resolve
func (h *TemplateHandler) ResolveSnapshot(c *gin.Context) {
	tpl, req, ok := h.bindTemplate(c)
	if !ok {
		return
	}
	res, err := h.usecases.BuildSnapshot(c.Request.Context(), tpl, req.SourceData)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/templates/compose
func (h *TemplateHandler) ComposeBundle(c *gin.Context) {
	tpl, req, ok := h.bindTemplate(c)
	if !ok {
		return
	}
	out, err := h.usecases.ComposeBundle(c.Request.Context(), tpl, req.SourceData)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"bundle": out.Bundle, "lint": out.Lint})
}

// POST /api/templates/draft
func (h *TemplateHandler) GenerateDraft(c *gin.Context) {
	tpl, req, ok := h.bindTemplate(c)
	if !ok {
		return
	}
	out, err := h.usecases.GenerateDraft(c.Request.Context(), tpl, req.SourceData, req.Model)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// bindTemplate reads the request envelope and decodes the template document
// through the sanitizer. Dropped-key warnings are logged, never fatal; the
// caller gets back the parsed template plus the rest of the envelope.
func (h *TemplateHandler) bindTemplate(c *gin.Context) (*template.Template, *templateRequest, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxTemplateRequestBytes)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return nil, nil, false
	}
	var req templateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return nil, nil, false
	}
	if len(req.Template) == 0 {
		response.RespondError(c, http.StatusBadRequest, "missing_template", errors.New("request must carry a template document"))
		return nil, nil, false
	}
	tpl, warnings, err := template.DecodeJSON(req.Template)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_template", err)
		return nil, nil, false
	}
	for _, w := range warnings {
		h.log.Warn("template sanitize", "template_id", tpl.ID, "dropped", w)
	}
	return tpl, &req, true
}

// respondDomainError maps the pipeline's typed failures onto status codes.
// Authoring problems are the client's to fix (400), a missing engine is a
// deployment state (503), anything else is ours (500).
func respondDomainError(c *gin.Context, err error) {
	var (
		validationErr *template.ValidationError
		pathErr       *fieldpath.InvalidPathError
		dupErr        *schema.DuplicatePathError
		seqErr        *schema.SequentialIndexError
		conflictErr   *notes.ConflictError
		guideErr      *compose.GuideError
	)
	switch {
	case errors.As(err, &validationErr):
		response.RespondError(c, http.StatusBadRequest, "invalid_template", err)
	case errors.As(err, &pathErr):
		response.RespondError(c, http.StatusBadRequest, "invalid_path", err)
	case errors.As(err, &dupErr) || errors.As(err, &seqErr):
		response.RespondError(c, http.StatusBadRequest, "invalid_template", err)
	case errors.As(err, &conflictErr):
		response.RespondError(c, http.StatusBadRequest, "schema_conflict", err)
	case errors.As(err, &guideErr):
		response.RespondError(c, http.StatusBadRequest, "invalid_field_guide", err)
	case errors.Is(err, notes.ErrNoGenerativeEngine):
		response.RespondError(c, http.StatusServiceUnavailable, "engine_unavailable", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
