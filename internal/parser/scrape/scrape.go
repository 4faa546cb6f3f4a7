package scrape

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"tnstc-api/internal/config"
	"tnstc-api/pkg/models"
	"tnstc-api/pkg/normalize"
	"tnstc-api/pkg/utils"
)

// Strategy extracts bus services with CSS selectors alone. It is the default
// extraction backend: fast, deterministic and free of external calls.
type Strategy struct {
	logger *logrus.Logger
}

// New creates a new selector-based extraction strategy
func New() *Strategy {
	return &Strategy{logger: utils.GetLogger()}
}

func (s *Strategy) Name() string {
	return config.StrategyScraping
}

var (
	adultFarePattern = regexp.MustCompile(`(?i)Adult\s*Fare`)
	childFarePattern = regexp.MustCompile(`(?i)Child\s*Fare`)
)

// listingData holds the fields readable from the search results card. The
// trip detail popup overrides most of them when it is available.
type listingData struct {
	operator      string
	busType       string
	tripCode      string
	routeCode     string
	departureTime string
	arrivalTime   string
	duration      string
	priceInRs     int
	seats         int
	viaRoute      []string
}

// detailData holds the fields readable from the trip detail popup
type detailData struct {
	operator      string
	tripCode      string
	routeCode     string
	departureTime string
	arrivalTime   string
	duration      string
	adultFare     string
	childFare     string
	totalKms      string
}

// Extract merges the listing card with the trip detail popup into a single
// normalized service. Non-empty detail values win over listing values.
// Records that fail normalization are dropped, not reported as errors.
func (s *Strategy) Extract(ctx context.Context, listing, detail string) (*models.BusService, error) {
	card, err := goquery.NewDocumentFromReader(strings.NewReader(listing))
	if err != nil {
		return nil, nil
	}

	base := s.parseListing(card)
	svc := &models.BusService{
		Operator:       base.operator,
		BusType:        base.busType,
		TripCode:       base.tripCode,
		RouteCode:      base.routeCode,
		DepartureTime:  base.departureTime,
		ArrivalTime:    base.arrivalTime,
		Duration:       base.duration,
		PriceInRs:      base.priceInRs,
		SeatsAvailable: base.seats,
		ViaRoute:       base.viaRoute,
	}

	if detail != "" {
		if d := s.parseDetail(detail); d != nil {
			overwrite(&svc.Operator, d.operator)
			overwrite(&svc.TripCode, d.tripCode)
			overwrite(&svc.RouteCode, d.routeCode)
			overwrite(&svc.DepartureTime, d.departureTime)
			overwrite(&svc.ArrivalTime, d.arrivalTime)
			overwrite(&svc.Duration, d.duration)
			overwrite(&svc.TotalKms, d.totalKms)
			overwrite(&svc.ChildFare, d.childFare)
			if fare, err := strconv.Atoi(d.adultFare); err == nil {
				svc.PriceInRs = fare
			}
		}
	}

	if err := svc.Normalize(); err != nil {
		s.logger.WithFields(logrus.Fields{
			"trip_code": svc.TripCode,
			"error":     err,
		}).Warn("Dropping service that failed normalization")
		return nil, nil
	}
	return svc, nil
}

func overwrite(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func (s *Strategy) parseListing(doc *goquery.Document) listingData {
	card := doc.Find("div.bus-list").First()
	if card.Length() == 0 {
		card = doc.Selection
	}

	data := listingData{
		operator: strings.TrimSpace(card.Find("span.operator-name").First().Text()),
		busType:  strings.TrimSpace(card.AttrOr("data-bus-type", "")),
	}

	// Departure sits in the first time-info block, arrival in the third.
	// The middle block carries the duration graphic.
	timeInfos := card.Find("div.time-info")
	data.departureTime = strings.TrimSpace(timeInfos.Eq(0).Find("span").First().Text())
	data.arrivalTime = strings.TrimSpace(timeInfos.Eq(2).Find("span").First().Text())

	dur := strings.TrimSpace(card.Find("span.duration").First().Text())
	data.duration = strings.TrimSpace(strings.ReplaceAll(dur, "Hrs", ""))

	data.priceInRs = normalize.Price(strings.Fields(card.Find("div.price").First().Text()))
	data.seats = parseSeats(card)
	data.viaRoute = parseViaRoute(card)
	data.tripCode, data.routeCode = parseCodes(card)
	return data
}

// parseSeats reads the "<n> Seats Available" span
func parseSeats(card *goquery.Selection) int {
	seats := 0
	card.Find("span.text-1").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := sel.Text()
		if !strings.Contains(text, "Seats Available") {
			return true
		}
		if n, err := strconv.Atoi(strings.Fields(text)[0]); err == nil {
			seats = n
		}
		return false
	})
	return seats
}

// parseViaRoute reads the blue "Via-STOP, STOP" annotation
func parseViaRoute(card *goquery.Selection) []string {
	var via []string
	card.Find("small").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if !strings.Contains(sel.AttrOr("style", ""), "color: blue") {
			return true
		}
		via = normalize.ViaRoute(strings.TrimSpace(sel.Find("b").First().Text()))
		return false
	})
	return via
}

// parseCodes splits the "TRIPCODE / ROUTECODE" line
func parseCodes(card *goquery.Selection) (string, string) {
	tripCode, routeCode := "", ""
	card.Find("span.text-1.text-muted.d-block").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if !strings.Contains(text, "/") {
			return true
		}
		parts := strings.SplitN(text, "/", 2)
		tripCode = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			routeCode = strings.TrimSpace(parts[1])
		}
		return false
	})
	return tripCode, routeCode
}

func (s *Strategy) parseDetail(detail string) *detailData {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detail))
	if err != nil {
		s.logger.WithField("error", err).Warn("Failed to parse trip detail fragment")
		return nil
	}

	fields := parseKeyValueTable(doc)
	data := &detailData{
		operator:  fields["Corporation"],
		tripCode:  fields["Service Code"],
		routeCode: fields["Route No."],
		totalKms:  fields["Total Kms"],
		duration:  fields["Journey Hours"],
		adultFare: findFareValue(doc, adultFarePattern),
		childFare: findFareValue(doc, childFarePattern),
	}
	data.departureTime, data.arrivalTime = parseStopsTable(doc)
	return data
}

// parseKeyValueTable maps label cells to their value cells across the
// summary tables of the popup
func parseKeyValueTable(doc *goquery.Document) map[string]string {
	fields := make(map[string]string)
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		labelCell := row.Find("td.bodytextWithSecondMainColor").First()
		valueCell := row.Find("td.bodytextWithThirdMainColor").First()
		if labelCell.Length() == 0 || valueCell.Length() == 0 {
			return
		}
		label := labelCell.Text()
		label = strings.ReplaceAll(label, ":", "")
		label = strings.ReplaceAll(label, " ", " ")
		label = strings.ReplaceAll(label, "*", "")
		value := valueCell.Find("strong").First()
		if value.Length() == 0 {
			value = valueCell
		}
		fields[strings.TrimSpace(label)] = strings.TrimSpace(value.Text())
	})
	return fields
}

// findFareValue locates a fare by its label and reads the amount from the
// span.button in the adjacent cell of the same row
func findFareValue(doc *goquery.Document, pattern *regexp.Regexp) string {
	value := ""
	doc.Find("strong,div").EachWithBreak(func(i int, label *goquery.Selection) bool {
		if !pattern.MatchString(label.Text()) || label.Children().Length() > 0 {
			return true
		}
		parent := label.ParentsFiltered("div").First()
		if parent.Length() == 0 {
			return true
		}
		if cell := parent.NextAllFiltered("td").First(); cell.Length() > 0 {
			value = strings.TrimSpace(cell.Find("span.button").First().Text())
		}
		if value == "" {
			value = strings.TrimSpace(parent.Closest("tr").Find("span.button").First().Text())
		}
		return value == ""
	})
	return value
}

// parseStopsTable reads authoritative departure and arrival times from the
// boarding points table: 4th cell of the first and last data rows after the
// listHeading row
func parseStopsTable(doc *goquery.Document) (string, string) {
	heading := doc.Find("tr.listHeading").First()
	if heading.Length() == 0 {
		return "", ""
	}
	rows := heading.NextAllFiltered("tr").FilterFunction(func(i int, row *goquery.Selection) bool {
		return row.Find("td").Length() > 0
	})
	if rows.Length() == 0 {
		return "", ""
	}
	departure := strings.TrimSpace(rows.First().Find("td").Eq(3).Text())
	arrival := strings.TrimSpace(rows.Last().Find("td").Eq(3).Text())
	return departure, arrival
}
