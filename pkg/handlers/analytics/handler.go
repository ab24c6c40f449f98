package analytics

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/alert-atlas/pkg/adapters"
	"github.com/de-tools/alert-atlas/pkg/models/api"
	"github.com/de-tools/alert-atlas/pkg/models/domain"
	"github.com/de-tools/alert-atlas/pkg/services/analytics"
	"github.com/de-tools/alert-atlas/pkg/services/filter"
)

type Handler struct {
	analytics analytics.Controller
}

func NewHandler(controller analytics.Controller) *Handler {
	return &Handler{analytics: controller}
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	result, err := h.analytics.GetView(r.Context(), view, rawParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, adapters.MapAggregateDomainToApi(result))
}

// ExportView serves the same table as GetView rendered as CSV. No
// additional computation happens here; the cache entry is shared.
func (h *Handler) ExportView(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	result, err := h.analytics.GetView(r.Context(), view, rawParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := adapters.MapAggregateDomainToApi(result)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+view+`.csv"`)

	if err := writeCSV(w, resp); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("view", view).Msg("failed to write csv export")
	}
}

func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	horizon := 0
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, &domain.InvalidFilterError{
				Field:  "horizon",
				Value:  raw,
				Reason: "must be a positive integer",
			})
			return
		}
		horizon = n
	}

	result, err := h.analytics.GetForecast(r.Context(), analytics.ForecastParams{
		Metric:  r.URL.Query().Get("metric"),
		Horizon: horizon,
		Filter:  rawParams(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, adapters.MapForecastDomainToApi(result))
}

func (h *Handler) GetMigrationAlerts(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		writeError(w, r, &domain.InvalidFilterError{
			Field:  "month",
			Value:  "",
			Reason: "month is required",
		})
		return
	}

	alerts, err := h.analytics.GetMigrationAlerts(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := api.MigrationAlertsResponse{Month: month, Alerts: make([]api.MigrationAlert, 0, len(alerts))}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, api.MigrationAlert{
			Region:          a.Region,
			Month:           a.Month,
			InflowScore:     a.Score,
			Tier:            string(a.Tier),
			Recommendations: a.Recommendations,
		})
	}
	writeJSON(w, r, resp)
}

// Refresh signals that the backing dataset was replaced; all cached
// results are dropped so the next request observes the new snapshot.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.analytics.RefreshDataset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

func rawParams(r *http.Request) filter.RawParams {
	q := r.URL.Query()
	return filter.RawParams{
		Start:       q.Get("start"),
		End:         q.Get("end"),
		Regions:     q.Get("regions"),
		Categories:  q.Get("categories"),
		Granularity: q.Get("granularity"),
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps the engine's error taxonomy onto HTTP statuses:
// caller mistakes to 400/404, degraded-data signals to 422 and
// infrastructure failures to 503.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalidFilter       *domain.InvalidFilterError
		unknownView         *domain.UnknownViewError
		storeUnavailable    *domain.StoreUnavailableError
		insufficientHistory *domain.InsufficientHistoryError
		irregularSeries     *domain.IrregularSeriesError
	)

	status := http.StatusInternalServerError
	body := api.Error{Error: err.Error()}

	switch {
	case errors.As(err, &invalidFilter):
		status = http.StatusBadRequest
		body.Field = invalidFilter.Field
		body.Value = invalidFilter.Value
	case errors.As(err, &unknownView):
		status = http.StatusNotFound
		body.Field = "view"
		body.Value = unknownView.View
	case errors.As(err, &storeUnavailable):
		status = http.StatusServiceUnavailable
	case errors.As(err, &insufficientHistory):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &irregularSeries):
		status = http.StatusUnprocessableEntity
		body.Value = irregularSeries.Bucket
	}

	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("unhandled analytics error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil {
		zerolog.Ctx(r.Context()).Error().Err(encodeErr).Msg("failed to encode error response")
	}
}

// writeCSV renders the aggregate table with one column per metric name,
// union across rows, in sorted order.
func writeCSV(w http.ResponseWriter, resp api.AggregateResponse) error {
	metricNames := map[string]struct{}{}
	for _, row := range resp.Rows {
		for name := range row.Metrics {
			metricNames[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(metricNames))
	for name := range metricNames {
		names = append(names, name)
	}
	sort.Strings(names)

	cw := csv.NewWriter(w)
	header := append([]string{"bucket", "category"}, names...)
	header = append(header, "insufficient_data")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range resp.Rows {
		record := []string{row.Bucket, row.Category}
		for _, name := range names {
			record = append(record, strconv.FormatFloat(row.Metrics[name], 'f', -1, 64))
		}
		record = append(record, strconv.FormatBool(row.InsufficientData))
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
