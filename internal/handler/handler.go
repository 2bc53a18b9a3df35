package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lendinglab/lending-service/internal/errs"
	"github.com/lendinglab/lending-service/internal/model"
	"github.com/lendinglab/lending-service/pkg/middleware"
	"github.com/lendinglab/lending-service/pkg/validate"
)

type Handler struct {
	svc LendingService
	log *zap.Logger
}

func New(svc LendingService, log *zap.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", middleware.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		echomw.RequestLoggerWithConfig(middleware.RequestLoggerConfig(h.log)),
		echomw.RequestID(),
		middleware.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.GetBooks)
	api.POST("/books/:bookId/subscribe", h.Subscribe)

	api.POST("/borrow-requests", h.CreateBorrowRequest)
	api.GET("/borrow-requests", h.GetBorrowRequests)
	api.POST("/borrow-requests/:requestId/approve", h.ApproveBorrowRequest)
	api.POST("/borrow-requests/:requestId/reject", h.RejectBorrowRequest)

	api.POST("/return-requests", h.CreateReturnRequest)
	api.POST("/return-requests/:requestId/approve", h.ApproveReturnRequest)
	api.POST("/return-requests/:requestId/reject", h.RejectReturnRequest)

	api.GET("/loans", h.GetLoans)
	api.GET("/fines", h.GetFines)

	api.POST("/payments/webhook", h.PaymentWebhook)

	admin := api.Group("/admin")
	admin.GET("/borrow-requests", h.GetPendingBorrowRequests)
	admin.GET("/return-requests", h.GetPendingReturnRequests)
	admin.POST("/fines/sweep", h.SweepFines)
	admin.POST("/restrictions/sweep", h.SweepRestrictions)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the error taxonomy onto status codes. Validation messages
// surface verbatim; conflicts carry a human-readable reason.
func httpError(err error) *echo.HTTPError {
	switch {
	case errs.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrEmptyNotes):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrRestricted), errors.Is(err, errs.ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrAlreadyProcessed),
		errors.Is(err, errs.ErrDuplicateRequest),
		errors.Is(err, errs.ErrNotAvailable),
		errors.Is(err, errs.ErrActiveLoan):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) GetBooks(c echo.Context) error {
	books, err := h.svc.GetBooks(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) Subscribe(c echo.Context) error {
	userName, err := middleware.UserName(c)
	if err != nil {
		return err
	}
	bookID := c.Param("bookId")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "bookId is empty")
	}
	pref, err := h.svc.Subscribe(c.Request().Context(), userName, bookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pref)
}

func (h *Handler) CreateBorrowRequest(c echo.Context) error {
	var req model.CreateBorrowRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userName, err := middleware.UserName(c)
	if err != nil {
		return err
	}
	req.Username = userName

	if err := c.Validate(req); err != nil {
		return err
	}

	resp, err := h.svc.CreateBorrowRequest(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetBorrowRequests(c echo.Context) error {
	userName, err := middleware.UserName(c)
	if err != nil {
		return err
	}
	items, err := h.svc.GetBorrowRequests(c.Request().Context(), userName)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetPendingBorrowRequests(c echo.Context) error {
	items, err := h.svc.GetPendingBorrowRequests(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ApproveBorrowRequest(c echo.Context) error {
	requestID, p, err := h.bindProcess(c)
	if err != nil {
		return err
	}
	resp, err := h.svc.ApproveBorrowRequest(c.Request().Context(), requestID, p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) RejectBorrowRequest(c echo.Context) error {
	requestID, p, err := h.bindProcess(c)
	if err != nil {
		return err
	}
	if err := h.svc.RejectBorrowRequest(c.Request().Context(), requestID, p); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) CreateReturnRequest(c echo.Context) error {
	var req model.CreateReturnRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userName, err := middleware.UserName(c)
	if err != nil {
		return err
	}
	req.Username = userName

	if err := c.Validate(req); err != nil {
		return err
	}

	resp, err := h.svc.CreateReturnRequest(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetPendingReturnRequests(c echo.Context) error {
	items, err := h.svc.GetPendingReturnRequests(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ApproveReturnRequest(c echo.Context) error {
	requestID, p, err := h.bindProcess(c)
	if err != nil {
		return err
	}
	if err := h.svc.ApproveReturnRequest(c.Request().Context(), requestID, p); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) RejectReturnRequest(c echo.Context) error {
	requestID, p, err := h.bindProcess(c)
	if err != nil {
		return err
	}
	if err := h.svc.RejectReturnRequest(c.Request().Context(), requestID, p); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) GetLoans(c echo.Context) error {
	userName, err := middleware.UserName(c)
	if err != nil {
		return err
	}
	items, err := h.svc.GetLoans(c.Request().Context(), userName)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetFines(c echo.Context) error {
	userName, err := middleware.UserName(c)
	if err != nil {
		return err
	}
	items, err := h.svc.GetFines(c.Request().Context(), userName)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) PaymentWebhook(c echo.Context) error {
	var wh model.PaymentWebhook
	if err := c.Bind(&wh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(wh); err != nil {
		return err
	}
	result, err := h.svc.HandlePaymentWebhook(c.Request().Context(), wh)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) SweepFines(c echo.Context) error {
	created, err := h.svc.SweepFines(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"finesCreated": created})
}

func (h *Handler) SweepRestrictions(c echo.Context) error {
	updated, err := h.svc.SweepRestrictions(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"usersUpdated": updated})
}

func (h *Handler) bindProcess(c echo.Context) (string, model.ProcessRequestRequest, error) {
	requestID := c.Param("requestId")
	if requestID == "" {
		return "", model.ProcessRequestRequest{}, echo.NewHTTPError(http.StatusBadRequest, "requestId is empty")
	}
	var p model.ProcessRequestRequest
	if err := c.Bind(&p); err != nil {
		return "", model.ProcessRequestRequest{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userName, err := middleware.UserName(c)
	if err != nil {
		return "", model.ProcessRequestRequest{}, err
	}
	p.Username = userName
	return requestID, p, nil
}
