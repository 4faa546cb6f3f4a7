// Package prompts builds the instruction text shared by the LLM-backed
// extraction strategies. Both the hosted and the local model receive the
// same field descriptions so their outputs stay interchangeable.
package prompts

import (
	"fmt"

	"tnstc-api/pkg/utils"
)

// SystemPrompt describes the output contract: a single JSON object per
// service with every field present.
const SystemPrompt = `You are a data extraction engine for Tamil Nadu government bus booking pages.
You receive two HTML fragments describing one bus service: a listing card from
the search results page and an optional trip detail popup. Extract the service
into a single JSON object with exactly these fields:

- "operator": corporation running the service, e.g. "SALEM"
- "bus_type": coach class from the listing card, e.g. "AC 3X2"
- "trip_code": service code, e.g. "2215DHACHEDD02A"
- "route_code": route number, e.g. "275H"
- "departure_time": 24-hour HH:MM departure, e.g. "22:15"
- "arrival_time": 24-hour HH:MM arrival, e.g. "04:50"
- "duration": journey duration in decimal hours with two decimals, e.g. "7.45"
- "price_in_rs": adult fare in whole rupees as an integer, e.g. 350
- "seats_available": seat count as an integer, e.g. 20
- "via_route": list of intermediate stop names, e.g. ["TIRUPATHUR", "VELLORE"]
- "total_kms": route length as printed, e.g. "308.00"
- "child_fare": child fare as printed, e.g. "175.00", or "NA" when absent

Example output:

{"operator":"SALEM","bus_type":"AC 3X2","trip_code":"2215DHACHEDD02A","route_code":"275H","departure_time":"22:15","arrival_time":"04:50","duration":"7.45","price_in_rs":350,"seats_available":20,"via_route":["TIRUPATHUR","VELLORE"],"total_kms":"308.00","child_fare":"NA"}

Rules:
- Respond with the JSON object only. No prose, no markdown fences.
- A duration printed as H:MM means H hours and MM minutes; convert to decimal hours.
- Use "" for text fields, 0 for numbers and [] for via_route when a value is
  genuinely missing from both fragments.
- When the detail fragment and the listing card disagree, the detail fragment wins.`

// BuildUserPrompt assembles the per-service prompt. The detail fragment may
// be empty when the detail fetch failed; the model then works from the
// listing card alone.
func BuildUserPrompt(listing, detail string) string {
	detail = utils.GetStringOrDefault(detail, "(not available)")
	return fmt.Sprintf(`Extract the bus service from the fragments below.

The listing card carries the coach class in its data-bus-type attribute, the
departure and arrival times, the duration, the fare, the seat count, the
"trip code / route code" line and any "Via-" stop list. The detail popup
carries the corporation, service code, route number, total kilometres and the
adult and child fares.

LISTING CARD:
%s

TRIP DETAIL:
%s`, listing, detail)
}
