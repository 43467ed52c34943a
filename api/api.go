//go:generate mockgen  -destination=./mocks/mocks.go -package=mocks github.com/blocknative/opkeys/api Registry,Reporter

package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/lthibault/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blocknative/opkeys/monitor"
	"github.com/blocknative/opkeys/structs"
)

// Router paths
const (
	PathStatus       = "/registry/v1/status"
	PathOperators    = "/registry/v1/operators"
	PathOperatorKeys = "/registry/v1/operators/{index:[0-9]+}/keys"
	PathInvalidKeys  = "/registry/v1/keys/invalid"
	PathDuplicates   = "/registry/v1/keys/duplicates"
)

var (
	ErrNoReport        = errors.New("no finished cycle yet")
	ErrUnknownOperator = errors.New("unknown operator")
	ErrInvalidIndex    = errors.New("invalid operator index")
)

type Registry interface {
	Operators() []structs.Operator
	Operator(index uint64) (structs.Operator, bool)
	OperatorKeys(operatorIndex uint64) []structs.SigningKey
}

type Reporter interface {
	LastReport() *monitor.Report
}

type RateLimitter interface {
	Allow(client string) error
}

type API struct {
	l   log.Logger
	reg Registry
	rep Reporter

	lim RateLimitter

	m APIMetrics
}

func NewApi(l log.Logger, reg Registry, rep Reporter, lim RateLimitter) (a *API) {
	a = &API{
		l:   l,
		reg: reg,
		rep: rep,
		lim: lim,
	}
	a.initMetrics()
	return a
}

func (a *API) AttachToHandler(m *http.ServeMux) {
	router := mux.NewRouter()
	router.Use(
		mux.CORSMethodMiddleware(router),
		withContentType("application/json"),
		withLogger(a.l),
		a.withLimit)

	router.HandleFunc("/", status)
	router.HandleFunc(PathStatus, a.status).Methods(http.MethodGet)
	router.HandleFunc(PathOperators, a.operators).Methods(http.MethodGet)
	router.HandleFunc(PathOperatorKeys, a.operatorKeys).Methods(http.MethodGet)
	router.HandleFunc(PathInvalidKeys, a.invalidKeys).Methods(http.MethodGet)
	router.HandleFunc(PathDuplicates, a.duplicates).Methods(http.MethodGet)

	m.Handle("/", router)
}

func status(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Status summarizes the snapshot and the last cycle.
type Status struct {
	Operators  int           `json:"operators"`
	LastCycle  *CycleSummary `json:"lastCycle"`
	Keys       int           `json:"keys"`
	UsedKeys   int           `json:"usedKeys"`
	Invalid    int           `json:"invalid"`
	Duplicates int           `json:"duplicates"`
	Violations []string      `json:"violations"`
}

type CycleSummary struct {
	ID       string    `json:"id"`
	Started  time.Time `json:"started"`
	Duration string    `json:"duration"`
}

func (a *API) status(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(a.m.ApiReqTiming.WithLabelValues("status"))
	defer timer.ObserveDuration()

	st := Status{Operators: len(a.reg.Operators()), Violations: []string{}}
	if rep := a.rep.LastReport(); rep != nil {
		st.LastCycle = &CycleSummary{
			ID:       rep.ID.String(),
			Started:  rep.Started,
			Duration: rep.Duration.String(),
		}
		st.Keys, st.UsedKeys = rep.Keys, rep.UsedKeys
		st.Invalid, st.Duplicates = len(rep.Invalid), len(rep.Duplicates)
		st.Violations = rep.Violations
	}

	a.writeJSON(w, "status", st)
}

func (a *API) operators(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(a.m.ApiReqTiming.WithLabelValues("operators"))
	defer timer.ObserveDuration()

	ops := a.reg.Operators()
	if ops == nil {
		ops = []structs.Operator{}
	}
	a.writeJSON(w, "operators", ops)
}

func (a *API) operatorKeys(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(a.m.ApiReqTiming.WithLabelValues("operatorKeys"))
	defer timer.ObserveDuration()

	index, err := strconv.ParseUint(mux.Vars(r)["index"], 10, 64)
	if err != nil {
		a.m.ApiReqCounter.WithLabelValues("operatorKeys", "400").Inc()
		writeError(w, http.StatusBadRequest, ErrInvalidIndex)
		return
	}
	if _, ok := a.reg.Operator(index); !ok {
		a.m.ApiReqCounter.WithLabelValues("operatorKeys", "404").Inc()
		writeError(w, http.StatusNotFound, ErrUnknownOperator)
		return
	}

	keys := a.reg.OperatorKeys(index)
	if keys == nil {
		keys = []structs.SigningKey{}
	}
	a.writeJSON(w, "operatorKeys", keys)
}

func (a *API) invalidKeys(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(a.m.ApiReqTiming.WithLabelValues("invalidKeys"))
	defer timer.ObserveDuration()

	rep := a.rep.LastReport()
	if rep == nil {
		a.m.ApiReqCounter.WithLabelValues("invalidKeys", "503").Inc()
		writeError(w, http.StatusServiceUnavailable, ErrNoReport)
		return
	}
	a.writeJSON(w, "invalidKeys", rep.Invalid)
}

func (a *API) duplicates(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(a.m.ApiReqTiming.WithLabelValues("duplicates"))
	defer timer.ObserveDuration()

	rep := a.rep.LastReport()
	if rep == nil {
		a.m.ApiReqCounter.WithLabelValues("duplicates", "503").Inc()
		writeError(w, http.StatusServiceUnavailable, ErrNoReport)
		return
	}
	a.writeJSON(w, "duplicates", rep.Duplicates)
}

func (a *API) writeJSON(w http.ResponseWriter, endpoint string, v any) {
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.m.ApiReqCounter.WithLabelValues(endpoint, "500").Inc()
		a.l.WithError(err).WithField("endpoint", endpoint).Warn("failed to write response")
		return
	}
	a.m.ApiReqCounter.WithLabelValues(endpoint, "200").Inc()
}

func (a *API) withLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.lim == nil {
			next.ServeHTTP(w, r)
			return
		}
		if err := a.lim.Allow(clientAddr(r)); err != nil {
			a.m.ApiReqCounter.WithLabelValues("limit", "429").Inc()
			writeError(w, http.StatusTooManyRequests, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type jsonError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(jsonError{
		Code:    code,
		Message: err.Error(),
	})
}
