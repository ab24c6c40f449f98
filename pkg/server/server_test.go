package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/alert-atlas/pkg/models/api"
	"github.com/de-tools/alert-atlas/pkg/models/domain"
	"github.com/de-tools/alert-atlas/pkg/services/analytics"
	"github.com/de-tools/alert-atlas/pkg/services/filter"
	"github.com/de-tools/alert-atlas/pkg/services/scoring"
)

type mockController struct {
	mock.Mock
}

func (m *mockController) GetView(ctx context.Context, view string, params filter.RawParams) (domain.AggregateResult, error) {
	args := m.Called(ctx, view, params)
	return args.Get(0).(domain.AggregateResult), args.Error(1)
}

func (m *mockController) GetForecast(ctx context.Context, params analytics.ForecastParams) (domain.ForecastResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(domain.ForecastResult), args.Error(1)
}

func (m *mockController) GetMigrationAlerts(ctx context.Context, month string) ([]scoring.Alert, error) {
	args := m.Called(ctx, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scoring.Alert), args.Error(1)
}

func (m *mockController) RefreshDataset(ctx context.Context) {
	m.Called(ctx)
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	controller := new(mockController)
	webAPI := NewWebAPI(logger, Config{
		Addr: ":8080",
		Dependencies: Dependencies{
			Analytics: controller,
		},
	})
	testServer := httptest.NewServer(webAPI.Router())
	defer testServer.Close()

	tests := []struct {
		name           string
		method         string
		path           string
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:   "GetView",
			method: http.MethodGet,
			path:   "/api/v1/migration?granularity=month",
			setupMocks: func() {
				controller.On("GetView", mock.Anything, "migration",
					filter.RawParams{Granularity: "month"}).
					Return(domain.AggregateResult{
						View:        domain.ViewMigration,
						Granularity: domain.GranularityMonth,
						Rows: []domain.Row{
							{Bucket: "2023-01", Metrics: map[string]float64{domain.MetricCount: 3}},
						},
					}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expected: api.AggregateResponse{
				View:        "migration",
				Granularity: "month",
				Rows: []api.AggregateRow{
					{Bucket: "2023-01", Metrics: map[string]float64{"count": 3}},
				},
			},
			parseResponse: unmarshalResponse[api.AggregateResponse](),
		},
		{
			name:   "GetView_Unknown",
			method: http.MethodGet,
			path:   "/api/v1/heatmap",
			setupMocks: func() {
				controller.On("GetView", mock.Anything, "heatmap", filter.RawParams{}).
					Return(domain.AggregateResult{}, &domain.UnknownViewError{View: "heatmap"}).Once()
			},
			expectedStatus: http.StatusNotFound,
			expected: api.Error{
				Error: (&domain.UnknownViewError{View: "heatmap"}).Error(),
				Field: "view",
				Value: "heatmap",
			},
			parseResponse: unmarshalResponse[api.Error](),
		},
		{
			name:   "GetForecast",
			method: http.MethodGet,
			path:   "/api/v1/forecast?metric=overview",
			setupMocks: func() {
				controller.On("GetForecast", mock.Anything,
					analytics.ForecastParams{Metric: "overview"}).
					Return(domain.ForecastResult{
						Metric: "overview",
						Points: []domain.ForecastPoint{
							{Period: "2023-09", Estimate: 10, Lower: 8, Upper: 12},
						},
					}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expected: api.ForecastResponse{
				Metric:  "overview",
				Horizon: 1,
				Points: []api.ForecastPoint{
					{Period: "2023-09", Estimate: 10, Lower: 8, Upper: 12},
				},
			},
			parseResponse: unmarshalResponse[api.ForecastResponse](),
		},
		{
			name:   "GetMigrationAlerts",
			method: http.MethodGet,
			path:   "/api/v1/migration/alerts?month=2023-06",
			setupMocks: func() {
				controller.On("GetMigrationAlerts", mock.Anything, "2023-06").
					Return([]scoring.Alert{{
						Region:          "DL",
						Month:           "2023-06",
						Score:           5.2,
						Tier:            scoring.TierSurge,
						Recommendations: []string{"Deploy mobile Aadhaar van"},
					}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expected: api.MigrationAlertsResponse{
				Month: "2023-06",
				Alerts: []api.MigrationAlert{{
					Region:          "DL",
					Month:           "2023-06",
					InflowScore:     5.2,
					Tier:            "SURGE",
					Recommendations: []string{"Deploy mobile Aadhaar van"},
				}},
			},
			parseResponse: unmarshalResponse[api.MigrationAlertsResponse](),
		},
		{
			name:   "Refresh",
			method: http.MethodPost,
			path:   "/api/v1/refresh",
			setupMocks: func() {
				controller.On("RefreshDataset", mock.Anything).Return().Once()
			},
			expectedStatus: http.StatusNoContent,
			expected:       "",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
		{
			name:           "Health",
			method:         http.MethodGet,
			path:           "/health",
			setupMocks:     func() {},
			expectedStatus: http.StatusOK,
			expected:       map[string]string{"status": "ok"},
			parseResponse:  unmarshalResponse[map[string]string](),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			req, err := http.NewRequest(tc.method, testServer.URL+tc.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}

	controller.AssertExpectations(t)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
