// Package upstream speaks to the TNSTC booking backend: place lookups,
// the results-page search, and the per-service trip detail fetch.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"tnstc-api/internal/config"
	"tnstc-api/pkg/models"
	"tnstc-api/pkg/utils"
)

// onclickArgs extracts the single-quoted arguments of the detail trigger's
// onclick attribute.
var onclickArgs = regexp.MustCompile(`'([^']*)'`)

// detailArgCount is the arity of the loadTripDetails action descriptor:
// ServiceID, TripCode, StartPlaceID, EndPlaceID, JourneyDate, ClassID.
const detailArgCount = 6

// Client issues rate-limited form POSTs against the TNSTC backend and
// memoizes place lookups in a bounded LRU.
type Client struct {
	cfg     *config.Config
	http    *http.Client
	limiter *rate.Limiter
	places  *lru.Cache[string, *models.PlaceInfo]
	logger  *logrus.Logger
}

// NewClient creates an upstream client from the configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	size := cfg.Upstream.PlaceCacheSize
	if size <= 0 {
		size = 128
	}
	places, err := lru.New[string, *models.PlaceInfo](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create place cache: %w", err)
	}

	perMinute := cfg.Upstream.RateLimit
	if perMinute <= 0 {
		perMinute = 120
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Upstream.RequestTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute/4+1),
		places:  places,
		logger:  utils.GetLogger(),
	}, nil
}

// ResolvePlace resolves a free-text place name to its internal ID and code.
// Results are memoized by (direction, name); the memo only avoids redundant
// upstream calls and may evict at any time.
func (c *Client) ResolvePlace(ctx context.Context, name string, isFromPlace bool) (*models.PlaceInfo, error) {
	action, matchParam := "LoadTOPlaceList", "matchEndPlace"
	if isFromPlace {
		action, matchParam = "LoadFromPlaceList", "matchStartPlace"
	}

	cacheKey := action + "|" + strings.ToUpper(strings.TrimSpace(name))
	if place, ok := c.places.Get(cacheKey); ok {
		return place, nil
	}

	c.logger.WithFields(logrus.Fields{
		"place":     name,
		"direction": action,
	}).Info("Attempting place lookup")

	form := url.Values{}
	form.Set("hiddenAction", action)
	form.Set(matchParam, name)

	body, err := c.postForm(ctx, c.cfg.Upstream.BaseURL, form)
	if err != nil {
		return nil, err
	}

	place, err := parsePlaceResponse(body, name)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"place": name,
		"id":    place.ID,
		"code":  place.Code,
		"name":  place.Name,
	}).Info("Place lookup succeeded")

	c.places.Add(cacheKey, place)
	return place, nil
}

// SearchServices posts the full search form and returns the raw results-page
// markup.
func (c *Client) SearchServices(ctx context.Context, from, to *models.PlaceInfo, req *models.SearchRequest) (string, error) {
	returnDate := req.ReturnDate
	if returnDate == "" {
		returnDate = models.DatePlaceholder
	}

	form := url.Values{}
	form.Set("hiddenStartPlaceID", from.ID)
	form.Set("hiddenEndPlaceID", to.ID)
	form.Set("txtStartPlaceCode", from.Code)
	form.Set("txtEndPlaceCode", to.Code)
	form.Set("hiddenStartPlaceName", from.Name)
	form.Set("hiddenEndPlaceName", to.Name)
	form.Set("matchStartPlace", from.Name)
	form.Set("matchEndPlace", to.Name)
	form.Set("selectStartPlace", from.Code)
	form.Set("selectEndPlace", to.Code)
	form.Set("txtJourneyDate", req.OnwardDate)
	form.Set("txtReturnDate", returnDate)
	form.Set("hiddenOnwardJourneyDate", req.OnwardDate)
	form.Set("hiddenReturnJourneyDate", returnDate)
	form.Set("hiddenAction", "SearchService")
	form.Set("languageType", "E")
	form.Set("checkSingleLady", "N")

	// The booking form rejects submissions missing these fields, even empty.
	for _, field := range []string{
		"selectOnwardTimeSlab", "hiddenTotalMales", "txtAdultMales", "txtChildMales",
		"txtAdultFemales", "txtChildFemales", "hiddenTotalFemales", "selectClass",
		"hiddenOnwardTimeSlab", "hiddenClassCategoryLookupID", "chkTatkal",
		"hiddenClassName", "matchPStartPlace", "matchPEndPlace", "txtdeptDatePtrip",
		"txtUserLoginID", "txtPassword", "txtCaptchaCode", "txtRUserLoginID",
		"txtRMobileNo", "txtRUserFullName", "txtRPassword",
	} {
		form.Set(field, "")
	}

	return c.postForm(ctx, c.cfg.Upstream.BaseURL+"hiddenAction=SearchService", form)
}

// FetchTripDetails parses the listing's onclick action descriptor and fetches
// the detail markup for that single service. Failures degrade to an empty
// string; they never abort the batch.
func (c *Client) FetchTripDetails(ctx context.Context, onclickAttr string) string {
	matches := onclickArgs.FindAllStringSubmatch(onclickAttr, -1)
	if len(matches) < detailArgCount {
		c.logger.WithField("onclick", utils.Truncate(onclickAttr, 120)).Error("Failed to parse trip detail arguments")
		return ""
	}

	args := make([]string, 0, detailArgCount)
	for i := 0; i < detailArgCount; i++ {
		args = append(args, matches[i][1])
	}

	form := url.Values{}
	form.Set("ServiceID", args[0])
	form.Set("TripCode", args[1])
	form.Set("StartPlaceID", args[2])
	form.Set("EndPlaceID", args[3])
	form.Set("JourneyDate", args[4])
	form.Set("ClassID", args[5])

	body, err := c.postForm(ctx, c.cfg.Upstream.DetailsURL, form)
	if err != nil {
		c.logger.WithError(err).WithField("trip_code", args[1]).Error("Trip detail request failed")
		return ""
	}
	return body
}

// postForm issues one rate-limited, timeout-bounded form POST and returns
// the response body.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", utils.NewUpstreamUnavailableError(err.Error())
	}

	timeout := c.cfg.Upstream.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", utils.NewUpstreamUnavailableError(err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", utils.NewUpstreamUnavailableError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", utils.NewUpstreamStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", utils.NewUpstreamUnavailableError(err.Error())
	}
	return string(body), nil
}

// parsePlaceResponse decodes the ^-separated, colon-delimited place list and
// returns the first match.
func parsePlaceResponse(raw, name string) (*models.PlaceInfo, error) {
	var records []string
	for _, record := range strings.Split(strings.TrimSpace(raw), "^") {
		if record != "" {
			records = append(records, record)
		}
	}
	if len(records) == 0 {
		return nil, utils.NewPlaceNotFoundError(name)
	}

	parts := strings.Split(records[0], ":")
	if len(parts) < 3 {
		return nil, utils.NewMalformedPlaceError(records[0])
	}

	place := &models.PlaceInfo{ID: parts[0], Code: parts[1], Name: parts[2]}
	if err := place.Validate(); err != nil {
		return nil, utils.NewMalformedPlaceError(records[0])
	}
	return place, nil
}
