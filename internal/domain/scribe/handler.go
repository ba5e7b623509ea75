package scribe

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With().Str("component", "scribe-handler").Logger()}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/generate", h.Generate)
	api.GET("/history", h.ListHistory)
	api.GET("/templates", h.ListTemplates)
	api.GET("/templates/categories", h.ListTemplateCategories)
}

func (h *Handler) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return he
		}
		h.logger.Debug().Err(err).Msg("unreadable generate request")
		return echo.NewHTTPError(http.StatusBadRequest, MsgTranscriptRequired)
	}
	resp, err := h.svc.GenerateNote(c.Request().Context(), &req)
	if err != nil {
		return h.fail(c, err, MsgGenerateFailed)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListHistory(c echo.Context) error {
	items, err := h.svc.ListHistory(c.Request().Context())
	if err != nil {
		return h.fail(c, err, MsgHistoryFailed)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, Templates(c.QueryParam("category")))
}

func (h *Handler) ListTemplateCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, TemplateCategories())
}

// fail maps a service error to an HTTP error. Only validation messages reach
// the caller; everything else is logged and replaced by msg.
func (h *Handler) fail(c echo.Context, err error, msg string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	}
	rid, _ := c.Get("request_id").(string)
	h.logger.Error().Err(err).
		Str("op", Op(err)).
		Str("request_id", rid).
		Msg(msg)
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}
