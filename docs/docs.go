// Package docs Durjog Prohori API.
//
// Documentation of the Durjog Prohori disaster reporting and relief
// coordination API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/durjog-prohori/durjog-prohori-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/report/{report_id} reports reportByID
// Gets a single disaster or SOS report by ID.
// responses:
//   200: reportByIDResponse

// Shows a single report by the given {report_id}
// swagger:response reportByIDResponse
type reportByIDResponseWrapper struct {
	// in:body
	Body models.Report
}

// swagger:route GET /api/v1/reports reports listReports
// Lists reports filtered by status, disaster type, responder and station.
// responses:
//   200: listReportsResponse

// Shows all reports matching the given filters, newest first
// swagger:response listReportsResponse
type listReportsResponseWrapper struct {
	// in:body
	Body []models.Report
}

// swagger:route GET /api/v1/responder/{responder_id} responders responderByID
// Gets a single responder account by ID.
// responses:
//   200: responderByIDResponse

// Shows a single responder by the given {responder_id}
// swagger:response responderByIDResponse
type responderByIDResponseWrapper struct {
	// in:body
	Body models.Responder
}

// swagger:route GET /api/v1/ngo-donations/balance/{ngo_id} donations ngoBalance
// Gets the running donation totals for an NGO.
// responses:
//   200: ngoBalanceResponse

// Shows the received, remaining and withdrawn totals for the given {ngo_id}
// swagger:response ngoBalanceResponse
type ngoBalanceResponseWrapper struct {
	// in:body
	Body models.NgoBalance
}

// swagger:route GET /api/v1/weather/latest weather latestWeather
// Gets the most recent weather snapshot for each monitored district.
// responses:
//   200: latestWeatherResponse

// Shows the latest polled observation per district
// swagger:response latestWeatherResponse
type latestWeatherResponseWrapper struct {
	// in:body
	Body []models.WeatherSnapshot
}
