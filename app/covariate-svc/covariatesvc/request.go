package covariatesvc

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/OpenTransitTools/timecovariates/business/data/covariates"
	"time"
)

// ErrInvalidRequest is returned for requests that can not be served as sent
var ErrInvalidRequest = errors.New("invalid covariate request")

// dateLayout is accepted in addition to RFC3339 for timestamps
const dateLayout = "2006-01-02"

//CovariateRequest holds the timestamps and options for a covariate request
type CovariateRequest struct {
	Timestamps []string `json:"timestamps"`
	Normalized bool     `json:"normalized"`
	Holiday    bool     `json:"holiday"`
}

//CovariateResponse holds the result of a CovariateRequest. Error is set when no covariates could be produced
type CovariateResponse struct {
	Covariates *covariates.Table `json:"covariates,omitempty"`
	Error      string            `json:"error,omitempty"`
}

//parseTimestamp reads an RFC3339 timestamp or a plain date
func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return ts, nil
	}
	ts, dateErr := time.Parse(dateLayout, value)
	if dateErr == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("%w: unable to parse timestamp %q: %v", ErrInvalidRequest, value, err)
}

//buildCovariates validates request and computes its covariates table
func buildCovariates(request CovariateRequest, maxTimestamps int) (*covariates.Table, error) {
	if len(request.Timestamps) == 0 {
		return nil, fmt.Errorf("%w: no timestamps", ErrInvalidRequest)
	}
	if maxTimestamps > 0 && len(request.Timestamps) > maxTimestamps {
		return nil, fmt.Errorf("%w: %d timestamps exceeds limit of %d", ErrInvalidRequest,
			len(request.Timestamps), maxTimestamps)
	}
	timestamps := make([]time.Time, len(request.Timestamps))
	for i, value := range request.Timestamps {
		ts, err := parseTimestamp(value)
		if err != nil {
			return nil, err
		}
		timestamps[i] = ts
	}
	timeCovariates, err := covariates.New(timestamps, request.Normalized, request.Holiday)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return timeCovariates.GetCovariates()
}

//isClientError is true when err was caused by the content of the request
func isClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

//makeCovariateResponse builds CovariateResponse from the result of buildCovariates
func makeCovariateResponse(table *covariates.Table, err error) *CovariateResponse {
	if err != nil {
		return &CovariateResponse{Error: err.Error()}
	}
	return &CovariateResponse{Covariates: table}
}

//processRequestPayload unmarshal CovariateRequest from payload and returns the json encoded CovariateResponse
//along with any error encountered producing it
func processRequestPayload(payload []byte, maxTimestamps int) ([]byte, error) {
	var request CovariateRequest
	err := json.Unmarshal(payload, &request)
	if err != nil {
		err = fmt.Errorf("%w: unable to parse request: %v", ErrInvalidRequest, err)
		return marshalResponse(makeCovariateResponse(nil, err), err)
	}
	table, err := buildCovariates(request, maxTimestamps)
	return marshalResponse(makeCovariateResponse(table, err), err)
}

//marshalResponse encodes response, returning requestErr unless marshaling fails
func marshalResponse(response *CovariateResponse, requestErr error) ([]byte, error) {
	bytes, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("error marshaling CovariateResponse to json: %w", err)
	}
	return bytes, requestErr
}
