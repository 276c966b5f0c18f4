package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

type restyHooks struct {
	tel       API
	tracer    trace.Tracer
	idcounter *uint64
}

// InstrumentResty reports every request made by client (debug level) and every
// transport error (broken), and wraps each request in a span.
func InstrumentResty(client *resty.Client, tracerName string, tel API) {
	var idcounter uint64
	h := restyHooks{
		tel:       tel,
		tracer:    otel.Tracer(tracerName),
		idcounter: &idcounter,
	}

	client.OnBeforeRequest(h.onBeforeRequest)
	client.OnAfterResponse(h.onAfterResponse)
	client.OnError(h.onError)
}

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id        uint64
	startTime time.Time
}

func requestContext(ctx context.Context) (reqCtx, bool) {
	value, ok := ctx.Value(reqCtxKey).(reqCtx)
	return value, ok
}

func (h restyHooks) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	id := atomic.AddUint64(h.idcounter, 1)

	ctx, _ := h.tracer.Start(
		req.Context(),
		fmt.Sprintf("http %s", req.Method),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	ctx = context.WithValue(ctx, reqCtxKey, reqCtx{
		id:        id,
		startTime: time.Now(),
	})
	req.SetContext(ctx)

	h.tel.ReportDebug(report_resty_request, id, req.Method, req.URL)
	return nil
}

func (h restyHooks) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(
		semconv.HTTPRequestMethodKey.String(res.Request.Method),
		semconv.HTTPResponseStatusCode(res.StatusCode()),
	)
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		span.SetAttributes(semconv.URLFull(res.RawResponse.Request.URL.String()))
	}
	if res.StatusCode() >= 500 {
		span.SetStatus(codes.Error, res.Status())
	}

	rc, ok := requestContext(ctx)
	if !ok {
		return nil
	}
	h.tel.ReportDebug(
		report_resty_response,
		rc.id,
		time.Since(rc.startTime).String(),
		res.Status(),
	)
	return nil
}

func (h restyHooks) onError(req *resty.Request, err error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var duration time.Duration
	rc, ok := requestContext(ctx)
	if ok {
		duration = time.Since(rc.startTime)
	}
	h.tel.ReportBroken(report_resty_response, err, req.Method, req.URL, duration.String())
}

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		for _, v := range headers[k] {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return strings.Join(lines, "\n")
}

// 1: request method
// 2: request url
// 3: request headers
// 4: response status
// 5: final url
// 6: response headers
// 7: response body
const messageTemplate = `---- REQUEST ----

%s %s

%s

---- RESPONSE ----

%s %s

%s

%s`

// FormatResponse renders an exchange for a debug report. Useful when a page
// no longer matches the expected markup and the raw page is needed.
func FormatResponse(res *resty.Response) string {
	if res == nil || res.Request == nil {
		return "<no response>"
	}

	finalUrl := res.Request.URL
	var requestHeaders http.Header = res.Request.Header
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalUrl = res.RawResponse.Request.URL.String()
		requestHeaders = res.RawResponse.Request.Header
	}

	return fmt.Sprintf(
		messageTemplate,
		res.Request.Method, res.Request.URL,
		formatHeaders(requestHeaders),
		res.Status(), finalUrl,
		formatHeaders(res.Header()),
		res.String(),
	)
}
