package api

import (
	"embed"
	"html/template"
	"net/http"

	"renovation_consult_server/internal/api/middleware"
	"renovation_consult_server/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PageTemplate parses the embedded form page for gin's HTML renderer.
func PageTemplate() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))
}

type pageData struct {
	ProjectTypes []types.ProjectType
	Cities       []string
	CityOther    string
	Form         ConsultationForm
	Report       template.HTML
	CTA          *CallToAction
	Error        *ErrorBody
	FooterNote   string
}

func (h *APIHandler) newPage(form ConsultationForm) pageData {
	form.applyDefaults()
	form.APIKey = "" // never echoed back
	return pageData{
		ProjectTypes: types.ProjectTypes,
		Cities:       types.Cities,
		CityOther:    types.CityOther,
		Form:         form,
		FooterNote:   h.footerNote,
	}
}

// GET /
func (h *APIHandler) ShowForm(c *gin.Context) {
	c.HTML(http.StatusOK, "index.tmpl", h.newPage(ConsultationForm{}))
}

// POST /
func (h *APIHandler) SubmitForm(c *gin.Context) {
	var form ConsultationForm
	if err := c.ShouldBind(&form); err != nil {
		page := h.newPage(ConsultationForm{})
		page.Error = &ErrorBody{Kind: kindInvalidRequest, Message: err.Error()}
		c.HTML(http.StatusBadRequest, "index.tmpl", page)
		return
	}

	report, errBody, status := h.submit(c, form)
	page := h.newPage(form)
	if errBody != nil {
		page.Error = errBody
		c.HTML(status, "index.tmpl", page)
		return
	}
	html, err := renderReport(string(report))
	if err != nil {
		h.logger.Warn("report markdown rendering failed, showing plain text", zap.Error(err))
		html = template.HTML("<pre>" + template.HTMLEscapeString(string(report)) + "</pre>")
	}
	page.Report = html
	cta := h.cta
	page.CTA = &cta
	c.HTML(http.StatusOK, "index.tmpl", page)
}

// RateLimited answers a submission turned away by the rate limiter: JSON for API clients,
// the form page with an error banner otherwise.
func (h *APIHandler) RateLimited(c *gin.Context) {
	body := &ErrorBody{
		Kind:    middleware.RateLimitedKind,
		Message: middleware.RateLimitedMessage,
		Hint:    middleware.RateLimitedHint,
	}
	if c.ContentType() == gin.MIMEJSON {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": body})
		return
	}

	var form ConsultationForm
	_ = c.ShouldBind(&form)
	page := h.newPage(form)
	page.Error = body
	c.HTML(http.StatusTooManyRequests, "index.tmpl", page)
}
