package covariatesvc

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func Test_parseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "rfc3339",
			value: "2023-06-15T10:30:00Z",
			want:  time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "plain date",
			value: "2023-12-25",
			want:  time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			value:   "yesterday",
			wantErr: true,
		},
		{
			name:    "impossible date",
			value:   "2023-02-30",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimestamp(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseTimestamp() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("parseTimestamp() error = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTimestamp() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_buildCovariates(t *testing.T) {
	tests := []struct {
		name          string
		request       CovariateRequest
		maxTimestamps int
		wantColumns   int
		wantErr       bool
	}{
		{
			name: "calendar fields only",
			request: CovariateRequest{
				Timestamps: []string{"2023-01-01", "2023-06-15", "2023-12-25"},
			},
			wantColumns: 5,
		},
		{
			name: "with holidays",
			request: CovariateRequest{
				Timestamps: []string{"2023-01-01", "2023-06-15", "2023-12-25"},
				Normalized: true,
				Holiday:    true,
			},
			wantColumns: 14,
		},
		{
			name:    "no timestamps",
			request: CovariateRequest{},
			wantErr: true,
		},
		{
			name: "too many timestamps",
			request: CovariateRequest{
				Timestamps: []string{"2023-01-01", "2023-01-02", "2023-01-03"},
			},
			maxTimestamps: 2,
			wantErr:       true,
		},
		{
			name: "bad timestamp",
			request: CovariateRequest{
				Timestamps: []string{"2023-01-01", "not a date"},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			got, err := buildCovariates(tt.request, tt.maxTimestamps)
			if tt.wantErr {
				is.True(isClientError(err))
				return
			}
			is.NoErr(err)
			is.Equal(got.Len(), len(tt.request.Timestamps))
			is.Equal(len(got.Columns()), tt.wantColumns)
		})
	}
}

func Test_processRequestPayload(t *testing.T) {
	is := is.New(t)

	payload := []byte(`{"timestamps":["2023-01-01","2023-06-15","2023-12-25"]}`)
	bytes, err := processRequestPayload(payload, 10)
	is.NoErr(err)

	var response struct {
		Covariates struct {
			Index   []time.Time `json:"index"`
			Columns []string    `json:"columns"`
			Data    [][]float64 `json:"data"`
		} `json:"covariates"`
		Error string `json:"error"`
	}
	is.NoErr(json.Unmarshal(bytes, &response))
	is.Equal(response.Error, "")
	is.Equal(response.Covariates.Columns, []string{"dom", "dow", "doy", "moy", "woy"})
	is.Equal(response.Covariates.Data, [][]float64{
		{1, 6, 1, 1, 1},
		{15, 3, 166, 6, 24},
		{25, 0, 359, 12, 52},
	})
	is.Equal(len(response.Covariates.Index), 3)
}

func Test_processRequestPayload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "timestamps"},
		{name: "empty", payload: `{"timestamps":[]}`},
		{name: "bad timestamp", payload: `{"timestamps":["2023-13-01"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			bytes, err := processRequestPayload([]byte(tt.payload), 10)
			is.True(isClientError(err))
			var response CovariateResponse
			is.NoErr(json.Unmarshal(bytes, &response))
			is.True(len(response.Error) > 0)
			is.True(response.Covariates == nil)
		})
	}
}

func Test_truncatePayload(t *testing.T) {
	is := is.New(t)
	is.Equal(truncatePayload([]byte("short")), "short")
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	is.Equal(len(truncatePayload(long)), 259)
}
