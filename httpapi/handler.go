// Package httpapi exposes the conversion cache over HTTP.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	currency "github.com/malusev998/trip-currency"
	"github.com/malusev998/trip-currency/metrics"
	"github.com/malusev998/trip-currency/services"
)

type (
	Cache interface {
		Current() *currency.Snapshot
		State() currency.State
		Registry() *currency.Registry
	}

	Handler struct {
		cache   Cache
		display services.DisplayService
	}

	snapshotResponse struct {
		ID         string          `json:"id"`
		Base       string          `json:"base"`
		Origin     currency.Origin `json:"origin"`
		State      currency.State  `json:"state"`
		CapturedAt time.Time       `json:"captured_at"`
	}

	ratesResponse struct {
		Base       string             `json:"base"`
		Origin     currency.Origin    `json:"origin"`
		CapturedAt time.Time          `json:"captured_at"`
		Rates      map[string]float64 `json:"rates"`
		Formatted  map[string]string  `json:"formatted"`
	}

	convertResponse struct {
		Amount          float64         `json:"amount"`
		From            string          `json:"from"`
		To              string          `json:"to"`
		ConvertedAmount float64         `json:"converted_amount"`
		Rate            float64         `json:"rate"`
		FormattedFrom   string          `json:"formatted_from"`
		FormattedTo     string          `json:"formatted_to"`
		SnapshotID      string          `json:"snapshot_id"`
		Origin          currency.Origin `json:"origin"`
	}

	currencyResponse struct {
		Code         string `json:"code"`
		Symbol       string `json:"symbol"`
		Name         string `json:"name"`
		Fractionless bool   `json:"fractionless"`
		Base         bool   `json:"base"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

func NewHandler(cache Cache) Handler {
	return Handler{
		cache: cache,
		display: services.DisplayService{
			Snapshots:  cache,
			Conversion: services.ConversionService{Registry: cache.Registry()},
		},
	}
}

// NewRouter wires every route on a fresh gin engine.
func NewRouter(cache Cache, logger logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())

	h := NewHandler(cache)
	h.Register(router)

	return router
}

func (h Handler) Register(router gin.IRouter) {
	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.GET("/currencies", h.Currencies)
	v1.GET("/snapshot", h.Snapshot)
	v1.GET("/rates/:base", h.Rates)
	v1.GET("/convert", h.Convert)
}

func (h Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "state": h.cache.State()})
}

func (h Handler) Currencies(c *gin.Context) {
	registry := h.cache.Registry()
	list := registry.Currencies()
	response := make([]currencyResponse, 0, len(list))

	for _, cur := range list {
		response = append(response, currencyResponse{
			Code:         cur.Code,
			Symbol:       cur.Symbol,
			Name:         cur.Name,
			Fractionless: cur.Fractionless,
			Base:         cur.Code == registry.Base(),
		})
	}

	c.JSON(http.StatusOK, response)
}

func (h Handler) Snapshot(c *gin.Context) {
	snapshot := h.cache.Current()
	if snapshot == nil {
		h.fail(c, currency.ErrRateUnavailable)
		return
	}

	c.JSON(http.StatusOK, snapshotResponse{
		ID:         snapshot.ID.String(),
		Base:       snapshot.Base,
		Origin:     snapshot.Origin,
		State:      h.cache.State(),
		CapturedAt: snapshot.CapturedAt,
	})
}

func (h Handler) Rates(c *gin.Context) {
	registry := h.cache.Registry()

	base, err := registry.Lookup(c.Param("base"))
	if err != nil {
		h.fail(c, err)
		return
	}

	snapshot := h.cache.Current()
	if snapshot == nil {
		h.fail(c, currency.ErrRateUnavailable)
		return
	}

	formatted, err := h.display.DisplayMatrixFor(base.Code, snapshot)
	if err != nil {
		h.fail(c, err)
		return
	}

	rates := make(map[string]float64, len(formatted))

	for _, code := range registry.Codes() {
		rate, ok := snapshot.Matrix.Rate(base.Code, code)
		if !ok {
			h.fail(c, currency.ErrRateUnavailable)
			return
		}

		rates[code] = rate
	}

	c.JSON(http.StatusOK, ratesResponse{
		Base:       base.Code,
		Origin:     snapshot.Origin,
		CapturedAt: snapshot.CapturedAt,
		Rates:      rates,
		Formatted:  formatted,
	})
}

func (h Handler) Convert(c *gin.Context) {
	formatted, err := h.display.ConvertAndFormat(c.Query("amount"), c.Query("from"), c.Query("to"))
	if err != nil {
		h.fail(c, err)
		return
	}

	result := formatted.Result

	c.JSON(http.StatusOK, convertResponse{
		Amount:          result.Amount,
		From:            result.From,
		To:              result.To,
		ConvertedAmount: result.ConvertedAmount,
		Rate:            result.Rate,
		FormattedFrom:   formatted.From,
		FormattedTo:     formatted.To,
		SnapshotID:      result.SnapshotID.String(),
		Origin:          result.Origin,
	})
}

func (h Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)

	entry := loggerFrom(c).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, currency.ErrInvalidAmount), errors.Is(err, currency.ErrUnsupportedCurrency):
		return http.StatusBadRequest
	case errors.Is(err, currency.ErrRateUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
