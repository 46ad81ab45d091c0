package api

import (
	"errors"
	"net/http"
	"strings"

	"renovation_consult_server/internal/consultation"
	"renovation_consult_server/internal/types"
	"renovation_consult_server/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CallToAction holds the static contact widgets shown under a report.
type CallToAction struct {
	Banner  string `json:"banner"`
	Phone   string `json:"phone"`
	Line    string `json:"line"`
	LineURL string `json:"lineUrl,omitempty"`
}

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	consultations *consultation.Handler
	cta           CallToAction
	footerNote    string
	logger        *zap.Logger
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(consultations *consultation.Handler, cta CallToAction, footerNote string, log *zap.Logger) *APIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &APIHandler{
		consultations: consultations,
		cta:           cta,
		footerNote:    footerNote,
		logger:        log,
	}
}

// --- Structs for API Requests/Responses ---

// ConsultationForm is the submitted form. Both JSON and urlencoded bodies bind to it.
type ConsultationForm struct {
	APIKey      string `json:"apiKey" form:"apiKey"`
	ProjectType string `json:"projectType" form:"projectType"`
	City        string `json:"city" form:"city"`
	CustomCity  string `json:"customCity" form:"customCity"`
	SizePing    *int   `json:"sizePing" form:"sizePing"`
	HouseAge    *int   `json:"houseAge" form:"houseAge"`
	Budget      string `json:"budget" form:"budget"`
	Notes       string `json:"notes" form:"notes"`
}

type ConsultationResponse struct {
	Report       string       `json:"report"`
	CallToAction CallToAction `json:"callToAction"`
}

// ErrorBody is the "error" member of every failed consultation response.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

type OptionsResponse struct {
	ProjectTypes       []types.ProjectType `json:"projectTypes"`
	Cities             []string            `json:"cities"`
	CityOther          string              `json:"cityOther"`
	DefaultProjectType types.ProjectType   `json:"defaultProjectType"`
	DefaultSizePing    int                 `json:"defaultSizePing"`
	DefaultHouseAge    int                 `json:"defaultHouseAge"`
}

const kindInvalidRequest = "invalid_request"

// applyDefaults fills the fields the form pre-selects.
func (f *ConsultationForm) applyDefaults() {
	if f.ProjectType == "" {
		f.ProjectType = string(types.ProjectTypes[0])
	}
	if f.City == "" {
		f.City = types.Cities[0]
	}
	if f.SizePing == nil {
		size := types.DefaultSizePing
		f.SizePing = &size
	}
	if f.HouseAge == nil {
		age := types.DefaultHouseAgeYears
		f.HouseAge = &age
	}
}

// toRequest converts the form into the transient domain record.
func (f ConsultationForm) toRequest() (types.ConsultationRequest, error) {
	f.applyDefaults()
	if !types.IsCity(f.City) {
		return types.ConsultationRequest{}, errors.New("unknown city: choose one from the list or " + types.CityOther)
	}
	req := types.ConsultationRequest{
		Credential:    strings.TrimSpace(f.APIKey),
		ProjectType:   types.ProjectType(f.ProjectType),
		Location:      types.ResolveLocation(f.City, f.CustomCity),
		SizePing:      *f.SizePing,
		HouseAgeYears: *f.HouseAge,
		Budget:        f.Budget,
		Notes:         f.Notes,
	}
	if err := req.Validate(); err != nil {
		return types.ConsultationRequest{}, err
	}
	return req, nil
}

// --- API Handlers ---

// POST /api/consultations
func (h *APIHandler) SubmitConsultation(c *gin.Context) {
	var form ConsultationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorBody{Kind: kindInvalidRequest, Message: "Invalid request body: " + err.Error()}})
		return
	}

	report, errBody, status := h.submit(c, form)
	if errBody != nil {
		c.JSON(status, gin.H{"error": errBody})
		return
	}
	c.JSON(http.StatusOK, ConsultationResponse{Report: string(report), CallToAction: h.cta})
}

// GET /api/options
func (h *APIHandler) ListOptions(c *gin.Context) {
	c.JSON(http.StatusOK, OptionsResponse{
		ProjectTypes:       types.ProjectTypes,
		Cities:             types.Cities,
		CityOther:          types.CityOther,
		DefaultProjectType: types.ProjectTypes[0],
		DefaultSizePing:    types.DefaultSizePing,
		DefaultHouseAge:    types.DefaultHouseAgeYears,
	})
}

// submit runs one consultation and maps failures to a response body and status.
func (h *APIHandler) submit(c *gin.Context, form ConsultationForm) (types.ReportText, *ErrorBody, int) {
	log := logger.FromContext(c.Request.Context(), h.logger)

	req, err := form.toRequest()
	if err != nil {
		log.Info("consultation form rejected", zap.Error(err))
		return "", &ErrorBody{Kind: kindInvalidRequest, Message: err.Error()}, http.StatusBadRequest
	}

	report, err := h.consultations.Submit(c.Request.Context(), req)
	if err == nil {
		return report, nil, http.StatusOK
	}

	var cErr *consultation.Error
	if !errors.As(err, &cErr) {
		log.Error("unexpected consultation error", zap.Error(err))
		return "", &ErrorBody{Kind: "internal", Message: "internal error"}, http.StatusInternalServerError
	}

	body := &ErrorBody{Kind: string(cErr.Kind), Message: cErr.Message(), Hint: cErr.Hint()}
	switch cErr.Kind {
	case consultation.KindMissingCredential, consultation.KindClientInit:
		return "", body, http.StatusBadRequest
	default:
		return "", body, http.StatusBadGateway
	}
}
