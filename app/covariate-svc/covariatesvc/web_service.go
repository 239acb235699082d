package covariatesvc

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/gorilla/mux"
	"io"
	logger "log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

//maxRequestBodyBytes limits the size of posted CovariateRequests
const maxRequestBodyBytes = 32 << 20

//defaultHttpHandler simple default http handler for default route
type defaultHttpHandler struct {
}

//ServeHTTP implements defaultHttpHandler http.Handler interface
func (h *defaultHttpHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

//covariateHandler holds data needed to respond and log covariate requests
type covariateHandler struct {
	log           *logger.Logger
	maxTimestamps int
}

//covariateHandler factory
func makeCovariateHandler(log *logger.Logger, maxTimestamps int) *covariateHandler {
	return &covariateHandler{
		log:           log,
		maxTimestamps: maxTimestamps,
	}
}

//ServeHTTP implements covariateHandler's http.Handler interface.
//GET reads repeated "timestamp" query parameters, POST reads a json CovariateRequest body
func (c *covariateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var request CovariateRequest
	var err error
	if r.Method == http.MethodPost {
		request, err = c.readJSONRequest(r)
	} else {
		request, err = c.readQueryRequest(r)
	}
	if err != nil {
		c.writeResponse(w, http.StatusBadRequest, makeCovariateResponse(nil, err))
		return
	}

	start := time.Now()
	table, err := buildCovariates(request, c.maxTimestamps)
	if err != nil {
		status := http.StatusInternalServerError
		if isClientError(err) {
			status = http.StatusBadRequest
		}
		c.log.Printf("Error building covariates for %d timestamps, error:%v", len(request.Timestamps), err)
		c.writeResponse(w, status, makeCovariateResponse(nil, err))
		return
	}
	c.log.Printf("built covariates for %d timestamps in %s", table.Len(), time.Since(start))
	c.writeResponse(w, http.StatusOK, makeCovariateResponse(table, nil))
}

//readJSONRequest un-marshal CovariateRequest from request body
func (c *covariateHandler) readJSONRequest(r *http.Request) (CovariateRequest, error) {
	var request CovariateRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return request, fmt.Errorf("%w: unable to read body: %v", ErrInvalidRequest, err)
	}
	err = json.Unmarshal(body, &request)
	if err != nil {
		return request, fmt.Errorf("%w: unable to parse body: %v", ErrInvalidRequest, err)
	}
	return request, nil
}

//readQueryRequest builds CovariateRequest from url query parameters
func (c *covariateHandler) readQueryRequest(r *http.Request) (CovariateRequest, error) {
	query := r.URL.Query()
	request := CovariateRequest{
		Timestamps: query["timestamp"],
	}
	var err error
	if request.Normalized, err = queryFlag(query.Get("normalized")); err != nil {
		return request, err
	}
	if request.Holiday, err = queryFlag(query.Get("holiday")); err != nil {
		return request, err
	}
	return request, nil
}

//queryFlag parses an optional boolean query parameter
func queryFlag(value string) (bool, error) {
	if len(value) == 0 {
		return false, nil
	}
	flag, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		return false, fmt.Errorf("%w: invalid flag value %q", ErrInvalidRequest, value)
	}
	return flag, nil
}

//writeResponse sends response as json with status
func (c *covariateHandler) writeResponse(w http.ResponseWriter, status int, response *CovariateResponse) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		c.log.Printf("Error marshaling covariates to json: error:%v\n", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	byteCount, err := w.Write(jsonData)
	if err != nil {
		c.log.Printf("Error writing json response: %s", err)
		return
	}
	c.log.Printf("wrote %d bytes in json response.", byteCount)
}

//createRouter routes covariate requests
func createRouter(log *logger.Logger, maxTimestamps int) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/", &defaultHttpHandler{})
	r.Handle("/covariates", makeCovariateHandler(log, maxTimestamps)).Methods(http.MethodGet, http.MethodPost)
	return r
}

//createServer creates configured http.Server for responding to covariate requests
func createServer(log *logger.Logger, maxTimestamps int, httpPort int) *http.Server {
	srv := &http.Server{
		Addr:         strings.Join([]string{"0.0.0.0", strconv.Itoa(httpPort)}, ":"),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      createRouter(log, maxTimestamps),
	}
	return srv
}

//runWebService starts up covariate web service, and terminates on shutdown signal
func runWebService(log *logger.Logger,
	wg *sync.WaitGroup,
	maxTimestamps int,
	httpPort int,
	shutdownSignal chan bool,
) {
	defer wg.Done()
	srv := createServer(log, maxTimestamps, httpPort)
	log.Printf("Starting server on port %d", httpPort)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Printf("server ListenAndServe ended. %s", err)
		}
	}()

	<-shutdownSignal
	log.Printf("ending webservice on shutdown signal")
	shutdownCtx, serverCancelFunc := context.WithTimeout(context.Background(), time.Duration(5)*time.Second)
	defer serverCancelFunc()
	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("error shutting down webservice, error:%s", err)
	}
}
