package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"payment_options_echo/internal/metrics"
	"payment_options_echo/internal/models"
	"payment_options_echo/internal/services"
)

const emailNotProvided = "not_provided"

var (
	errNotANumber     = errors.New("not a number")
	errAmountTooLarge = errors.New("amount too large")
)

type PaymentOptionsHandler struct {
	records        *services.PaymentRecordService
	links          services.PaymentLinkCreator
	publicBaseURL  string
	defaultDeposit int64
	logger         zerolog.Logger
}

func NewPaymentOptionsHandler(records *services.PaymentRecordService, links services.PaymentLinkCreator, publicBaseURL string, defaultDeposit int64, logger zerolog.Logger) *PaymentOptionsHandler {
	return &PaymentOptionsHandler{
		records:        records,
		links:          links,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		defaultDeposit: defaultDeposit,
		logger:         logger,
	}
}

// CreatePaymentOptions creates a deposit link and a full payment link for a
// package and stores them on the user's payment record
func (h *PaymentOptionsHandler) CreatePaymentOptions(c echo.Context) error {
	var req CreatePaymentOptionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.PackageType = strings.TrimSpace(req.PackageType)
	if req.UserID == "" || req.PackageType == "" || req.PackagePrice == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	packagePrice, err := parseAmount(req.PackagePrice)
	if errors.Is(err, errAmountTooLarge) {
		return echo.NewHTTPError(http.StatusBadRequest, amountLimitMessage("packagePrice"))
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "packagePrice must be a whole number")
	}
	if packagePrice <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	depositAmount := h.defaultDeposit
	if req.DepositAmount != "" {
		depositAmount, err = parseAmount(req.DepositAmount)
		if errors.Is(err, errAmountTooLarge) {
			return echo.NewHTTPError(http.StatusBadRequest, amountLimitMessage("depositAmount"))
		}
		if err != nil || depositAmount <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "depositAmount must be a positive whole number")
		}
	}

	email := strings.TrimSpace(req.Email)
	metaEmail := email
	if metaEmail == "" {
		metaEmail = emailNotProvided
	}

	ctx := c.Request().Context()
	base := h.redirectBase(c)

	depositLink, err := h.links.CreatePaymentLink(ctx, services.LinkRequest{
		UserID:      req.UserID,
		Email:       metaEmail,
		PackageType: req.PackageType,
		PaymentType: models.PaymentTypeDeposit,
		ProductName: fmt.Sprintf("Deposit for %s", req.PackageType),
		Amount:      depositAmount,
		RedirectURL: successURL(base, models.PaymentTypeDeposit, req.UserID),
	})
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("create deposit link failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.IncLinkCreated(models.PaymentTypeDeposit)

	fullLink, err := h.links.CreatePaymentLink(ctx, services.LinkRequest{
		UserID:      req.UserID,
		Email:       metaEmail,
		PackageType: req.PackageType,
		PaymentType: models.PaymentTypeFull,
		ProductName: fmt.Sprintf("%s Website Package", req.PackageType),
		Amount:      packagePrice,
		RedirectURL: successURL(base, models.PaymentTypeFull, req.UserID),
	})
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("create full payment link failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.IncLinkCreated(models.PaymentTypeFull)

	ok := h.records.UpsertPaymentRecord(ctx, req.UserID, models.PaymentRecord{
		UserID:        req.UserID,
		Email:         email,
		PackageType:   req.PackageType,
		PackagePrice:  packagePrice,
		DepositAmount: depositAmount,
		PaymentStatus: models.PaymentStatusNone,
		DepositLink:   depositLink,
		FullLink:      fullLink,
	})
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store payment record")
	}

	return c.JSON(http.StatusOK, CreatePaymentOptionsResponse{
		Links: PaymentLinks{Deposit: depositLink, Full: fullLink},
	})
}

// GetPaymentStatus returns the user's status, "none" when unknown
func (h *PaymentOptionsHandler) GetPaymentStatus(c echo.Context) error {
	userID := strings.TrimSpace(c.QueryParam("userId"))
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing userId parameter")
	}

	status := h.records.GetPaymentStatus(c.Request().Context(), userID)
	return c.JSON(http.StatusOK, PaymentStatusResponse{Status: string(status)})
}

func (h *PaymentOptionsHandler) RecordInteraction(c echo.Context) error {
	var req InteractionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Type) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	if !h.records.RecordInteraction(c.Request().Context(), req.UserID, req.Type, req.Data) {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record interaction")
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *PaymentOptionsHandler) redirectBase(c echo.Context) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	return c.Scheme() + "://" + c.Request().Host
}

func successURL(base, paymentType, userID string) string {
	q := url.Values{}
	q.Set("type", paymentType)
	q.Set("userId", userID)
	return base + "/api/payment-success?" + q.Encode()
}

func amountLimitMessage(field string) string {
	return fmt.Sprintf("%s must not exceed %d", field, services.MaxAmount)
}

// parseAmount accepts integers and integral floats such as 1000.0, up to
// services.MaxAmount
func parseAmount(n json.Number) (int64, error) {
	s := strings.TrimSpace(n.String())
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v > services.MaxAmount {
			return 0, errAmountTooLarge
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		if math.IsInf(f, 1) {
			return 0, errAmountTooLarge
		}
		return 0, errNotANumber
	}
	if f > float64(services.MaxAmount) {
		return 0, errAmountTooLarge
	}
	return int64(f), nil
}
