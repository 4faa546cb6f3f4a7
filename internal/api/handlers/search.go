package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"tnstc-api/internal/filter"
	"tnstc-api/internal/parser"
	"tnstc-api/internal/pipeline"
	"tnstc-api/internal/upstream"
	"tnstc-api/pkg/models"
	"tnstc-api/pkg/utils"
)

var validate = validator.New()

// SearchHandler handles bus search requests end to end: resolve both place
// names, fetch the results page, run the extraction pipeline and apply the
// post-extraction filters.
func SearchHandler(client *upstream.Client, manager *parser.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		startedAt := time.Now()
		requestID := requestIDFrom(c)
		logger := utils.LogWithRequestID(requestID)

		limit, err := parseLimit(c.QueryParam("limit"))
		if err != nil {
			logger.WithError(err).Error("Invalid limit parameter")
			return writeError(c, requestID, utils.NewBadRequestError(err.Error()))
		}

		var req models.SearchRequest
		if err := c.Bind(&req); err != nil {
			logger.WithError(err).Error("Failed to bind request")
			return writeError(c, requestID, utils.NewBadRequestError("invalid request format"))
		}
		if err := validate.Struct(&req); err != nil {
			logger.WithError(err).Error("Request validation failed")
			return writeError(c, requestID, utils.NewValidationError(err.Error()))
		}
		if err := req.Validate(); err != nil {
			logger.WithError(err).Error("Request validation failed")
			return writeError(c, requestID, utils.NewValidationError(err.Error()))
		}

		logger.WithFields(map[string]interface{}{
			"from": req.FromPlaceName,
			"to":   req.ToPlaceName,
			"date": req.OnwardDate,
		}).Info("Processing bus search request")

		ctx := c.Request().Context()

		// Both lookups hit independent upstream endpoints, so they run
		// concurrently.
		var fromPlace, toPlace *models.PlaceInfo
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			fromPlace, err = client.ResolvePlace(gctx, req.FromPlaceName, true)
			return err
		})
		g.Go(func() error {
			var err error
			toPlace, err = client.ResolvePlace(gctx, req.ToPlaceName, false)
			return err
		})
		if err := g.Wait(); err != nil {
			logger.WithError(err).Error("Place resolution failed")
			return writeError(c, requestID, err)
		}

		resultsHTML, err := client.SearchServices(ctx, fromPlace, toPlace, &req)
		if err != nil {
			logger.WithError(err).Error("Upstream search failed")
			return writeError(c, requestID, err)
		}

		strategy := manager.Active(ctx)
		services, err := pipeline.New(strategy, client).Run(ctx, resultsHTML, limit)
		if err != nil {
			logger.WithError(err).Error("Extraction pipeline failed")
			return writeError(c, requestID, err)
		}

		filtered := filter.Apply(services, req.Filter())

		logger.WithFields(map[string]interface{}{
			"strategy":        strategy.Name(),
			"found":           len(services),
			"after_filters":   len(filtered),
			"processing_time": utils.FormatDuration(time.Since(startedAt)),
		}).Info("Bus search completed")

		return c.JSON(http.StatusOK, models.BusSearchResponse{
			Metadata: models.ResponseMetadata{
				SearchTimestamp:                 time.Now().UTC(),
				ParserStrategy:                  strategy.Name(),
				TotalServicesFoundBeforeFilters: len(services),
				LimitApplied:                    limit,
			},
			FromPlace: fromPlace,
			ToPlace:   toPlace,
			Services:  filtered,
		})
	}
}

// parseLimit reads the optional limit query parameter; zero means no limit
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	return limit, nil
}

func requestIDFrom(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}

// writeError maps domain errors to their HTTP status and error slug
func writeError(c echo.Context, requestID string, err error) error {
	status := http.StatusInternalServerError
	slug := "internal_error"
	message := err.Error()

	var custom *utils.CustomError
	if errors.As(err, &custom) {
		status = custom.Code
		message = custom.Message
		if custom.Detail != "" {
			message = custom.Message + ": " + custom.Detail
		}
		switch status {
		case http.StatusBadRequest:
			slug = "validation_failed"
		case http.StatusNotFound:
			slug = "place_not_found"
		case http.StatusBadGateway:
			slug = "upstream_error"
		case http.StatusServiceUnavailable:
			slug = "upstream_unavailable"
		}
	}

	return c.JSON(status, models.ErrorResponse{
		Error:     slug,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
