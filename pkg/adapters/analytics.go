package adapters

import (
	"maps"

	"github.com/de-tools/alert-atlas/pkg/models/api"
	"github.com/de-tools/alert-atlas/pkg/models/domain"
	"github.com/de-tools/alert-atlas/pkg/models/store"
)

func MapStoreAlertToDomain(r store.AlertRecord) domain.AlertRecord {
	return domain.AlertRecord{
		Timestamp: r.Timestamp,
		Category:  domain.Category(r.Category),
		Region:    r.Region,
		Value:     r.Value,
		Metadata:  maps.Clone(r.Metadata),
	}
}

func MapStoreAlertsToDomain(records []store.AlertRecord) []domain.AlertRecord {
	out := make([]domain.AlertRecord, 0, len(records))
	for _, r := range records {
		out = append(out, MapStoreAlertToDomain(r))
	}
	return out
}

func MapAggregateDomainToApi(result domain.AggregateResult) api.AggregateResponse {
	resp := api.AggregateResponse{
		View:        string(result.View),
		Granularity: string(result.Granularity),
		Rows:        make([]api.AggregateRow, 0, len(result.Rows)),
	}
	for _, row := range result.Rows {
		resp.Rows = append(resp.Rows, api.AggregateRow{
			Bucket:           row.Bucket,
			Category:         string(row.Category),
			Metrics:          maps.Clone(row.Metrics),
			InsufficientData: row.InsufficientData,
		})
	}
	return resp
}

func MapForecastDomainToApi(result domain.ForecastResult) api.ForecastResponse {
	resp := api.ForecastResponse{
		Metric:  result.Metric,
		Horizon: len(result.Points),
		Points:  make([]api.ForecastPoint, 0, len(result.Points)),
	}
	for _, p := range result.Points {
		resp.Points = append(resp.Points, api.ForecastPoint{
			Period:   p.Period,
			Estimate: p.Estimate,
			Lower:    p.Lower,
			Upper:    p.Upper,
		})
	}
	return resp
}
