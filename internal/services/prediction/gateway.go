package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"NiftyDash/internal/domain/models"
	domrepo "NiftyDash/internal/domain/repository"
	domsvc "NiftyDash/internal/domain/service"
	"NiftyDash/internal/service/cache"
	xhttp "NiftyDash/pkg/http"
	"NiftyDash/pkg/logger"
)

const (
	opHealth      = "health"
	opHistorical  = "historical"
	opMarketLinks = "market_links"
	opModelInfo   = "model_info"
	opTrain       = "train"
	opPredict     = "predict"

	linksCacheKey = "market_links"
)

// Fallback messages for failures that carry no service-provided text.
var failureMessages = map[string]string{
	opHistorical:  "Failed to fetch historical data",
	opMarketLinks: "Failed to fetch market links",
	opModelInfo:   "Failed to fetch model info",
	opTrain:       "Failed to train model",
	opPredict:     "Failed to generate predictions",
}

// Gateway talks to the remote prediction service and turns every outcome into
// a domsvc.Result. It holds no application state.
type Gateway struct {
	base     *HTTPServiceBase
	cache    cache.BytesCache
	linksTTL time.Duration
	metrics  domrepo.Metrics
	log      *logger.Logger
}

type Option func(*Gateway)

// WithLinksCache enables read-through caching of the market links list.
func WithLinksCache(c cache.BytesCache, ttl time.Duration) Option {
	return func(g *Gateway) {
		g.cache = c
		g.linksTTL = ttl
	}
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

func NewGateway(base *HTTPServiceBase, opts ...Option) *Gateway {
	g := &Gateway{base: base, log: logger.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ domsvc.PredictionGateway = (*Gateway)(nil)

func (g *Gateway) CheckHealth(ctx context.Context) models.ServiceHealth {
	start := time.Now()
	if err := g.base.Ping(ctx, "/health"); err != nil {
		g.observe(opHealth, start, domsvc.KindTransport)
		g.log.Debug("prediction service unhealthy", logger.Error(err))
		return models.HealthUnhealthy
	}
	g.observe(opHealth, start, "")
	return models.HealthHealthy
}

func (g *Gateway) FetchHistorical(ctx context.Context) domsvc.Result[[]models.HistoricalPoint] {
	start := time.Now()
	var env historicalEnvelope
	if gerr := g.call(ctx, opHistorical, func() error { return g.base.GetJSON(ctx, "/historical", &env) }); gerr != nil {
		return fail[[]models.HistoricalPoint](g, opHistorical, start, gerr)
	}
	if gerr := g.check(ctx, opHistorical, env.Status, env.Message, &env); gerr != nil {
		return fail[[]models.HistoricalPoint](g, opHistorical, start, gerr)
	}

	points := make([]models.HistoricalPoint, len(env.Data))
	for i, w := range env.Data {
		p := w.HistoricalPoint
		p.Date = w.Date
		p.Price = *w.Price
		points[i] = p
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	for i := 1; i < len(points); i++ {
		if points[i].Date == points[i-1].Date {
			gerr := g.protocolError(opHistorical, fmt.Errorf("duplicate date %s", points[i].Date))
			return fail[[]models.HistoricalPoint](g, opHistorical, start, gerr)
		}
	}

	g.observe(opHistorical, start, "")
	return domsvc.Ok(points)
}

func (g *Gateway) FetchMarketLinks(ctx context.Context) domsvc.Result[[]models.MarketLink] {
	start := time.Now()
	if links, ok := g.cachedLinks(ctx); ok {
		g.observe(opMarketLinks, start, "")
		return domsvc.Ok(links)
	}

	var env linksEnvelope
	if gerr := g.call(ctx, opMarketLinks, func() error { return g.base.GetJSON(ctx, "/market-links", &env) }); gerr != nil {
		return fail[[]models.MarketLink](g, opMarketLinks, start, gerr)
	}
	if gerr := g.check(ctx, opMarketLinks, env.Status, env.Message, &env); gerr != nil {
		return fail[[]models.MarketLink](g, opMarketLinks, start, gerr)
	}

	links := make([]models.MarketLink, len(env.Links))
	for i, l := range env.Links {
		links[i] = models.MarketLink{Name: l.Name, Description: l.Description, URL: l.URL}
	}
	g.storeLinks(ctx, links)

	g.observe(opMarketLinks, start, "")
	return domsvc.Ok(links)
}

func (g *Gateway) FetchModelInfo(ctx context.Context) domsvc.Result[models.ModelInfo] {
	start := time.Now()
	var env modelInfoEnvelope
	if gerr := g.call(ctx, opModelInfo, func() error { return g.base.GetJSON(ctx, "/model-info", &env) }); gerr != nil {
		return fail[models.ModelInfo](g, opModelInfo, start, gerr)
	}
	if gerr := g.check(ctx, opModelInfo, env.Status, env.Message, &env); gerr != nil {
		return fail[models.ModelInfo](g, opModelInfo, start, gerr)
	}

	info := models.ModelInfo{
		ModelLoaded:    *env.ModelLoaded,
		SequenceLength: env.SequenceLength,
		ModelSummary:   append([]string(nil), env.ModelSummary...),
	}
	if p := env.Performance; p != nil {
		info.Performance = &models.Performance{MSE: *p.MSE, MAE: *p.MAE, R2: *p.R2, RMSE: *p.RMSE}
	}

	g.observe(opModelInfo, start, "")
	return domsvc.Ok(info)
}

func (g *Gateway) Train(ctx context.Context) domsvc.Result[string] {
	start := time.Now()
	var env trainEnvelope
	if gerr := g.call(ctx, opTrain, func() error { return g.base.PostJSON(ctx, "/train", nil, &env) }); gerr != nil {
		return fail[string](g, opTrain, start, gerr)
	}
	if gerr := g.check(ctx, opTrain, env.Status, env.Message, &env); gerr != nil {
		return fail[string](g, opTrain, start, gerr)
	}

	msg := env.Message
	if msg == "" {
		msg = "Model trained successfully"
	}
	g.observe(opTrain, start, "")
	return domsvc.Ok(msg)
}

func (g *Gateway) Predict(ctx context.Context, days int) domsvc.Result[[]models.PredictionPoint] {
	start := time.Now()
	if !models.ValidPredictionDays(days) {
		gerr := domsvc.NewGatewayError(domsvc.KindInvalidArgument, opPredict,
			fmt.Sprintf("Prediction days must be between %d and %d", models.MinPredictionDays, models.MaxPredictionDays), nil)
		return fail[[]models.PredictionPoint](g, opPredict, start, gerr)
	}

	var env predictEnvelope
	if gerr := g.call(ctx, opPredict, func() error {
		return g.base.PostJSON(ctx, "/predict", predictRequest{Days: days}, &env)
	}); gerr != nil {
		return fail[[]models.PredictionPoint](g, opPredict, start, gerr)
	}
	if gerr := g.check(ctx, opPredict, env.Status, env.Message, &env); gerr != nil {
		return fail[[]models.PredictionPoint](g, opPredict, start, gerr)
	}

	points := make([]models.PredictionPoint, len(env.Predictions))
	for i, w := range env.Predictions {
		points[i] = models.PredictionPoint{Day: w.Day, Date: w.Date, PredictedPrice: *w.PredictedPrice}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Day < points[j].Day })
	if len(points) != days {
		gerr := g.protocolError(opPredict, fmt.Errorf("got %d predictions for %d days", len(points), days))
		return fail[[]models.PredictionPoint](g, opPredict, start, gerr)
	}
	for i, p := range points {
		if p.Day != i+1 {
			gerr := g.protocolError(opPredict, fmt.Errorf("prediction days are not contiguous at %d", p.Day))
			return fail[[]models.PredictionPoint](g, opPredict, start, gerr)
		}
	}

	g.observe(opPredict, start, "")
	return domsvc.Ok(points)
}

// call runs a request and classifies transport-level failures.
func (g *Gateway) call(ctx context.Context, op string, do func() error) *domsvc.GatewayError {
	err := do()
	if err == nil {
		return nil
	}

	var statusErr *xhttp.StatusError
	if errors.As(err, &statusErr) {
		var env errorEnvelope
		if json.Unmarshal(statusErr.Body, &env) == nil && xhttp.ValidateStruct(ctx, &env) == nil {
			return domsvc.NewGatewayError(domsvc.KindBusiness, op, env.Message, err)
		}
		return g.protocolError(op, err)
	}

	var decodeErr *xhttp.DecodeError
	if errors.As(err, &decodeErr) {
		return g.protocolError(op, err)
	}

	return domsvc.NewGatewayError(domsvc.KindTransport, op, failureMessages[op], err)
}

// check maps a decoded 2xx envelope to a business or protocol failure.
func (g *Gateway) check(ctx context.Context, op, status, message string, env interface{}) *domsvc.GatewayError {
	if status == statusError {
		if message == "" {
			message = failureMessages[op]
		}
		return domsvc.NewGatewayError(domsvc.KindBusiness, op, message, nil)
	}
	if err := xhttp.ValidateStruct(ctx, env); err != nil {
		return g.protocolError(op, errors.New(xhttp.DescribeValidation(err)))
	}
	return nil
}

func (g *Gateway) protocolError(op string, err error) *domsvc.GatewayError {
	return domsvc.NewGatewayError(domsvc.KindProtocol, op, failureMessages[op], err)
}

func (g *Gateway) observe(op string, start time.Time, kind domsvc.ErrorKind) {
	if g.metrics == nil {
		return
	}
	outcome := "ok"
	if kind != "" {
		outcome = string(kind)
	}
	g.metrics.RecordGatewayCall(op, outcome, time.Since(start).Seconds())
}

func fail[T any](g *Gateway, op string, start time.Time, gerr *domsvc.GatewayError) domsvc.Result[T] {
	g.observe(op, start, gerr.Kind)
	g.log.Debug("prediction call failed",
		logger.String("operation", op),
		logger.String("kind", string(gerr.Kind)),
		logger.Error(gerr),
	)
	return domsvc.Err[T](gerr)
}

func (g *Gateway) cachedLinks(ctx context.Context) ([]models.MarketLink, bool) {
	if g.cache == nil {
		return nil, false
	}
	b, ok, err := g.cache.GetBytes(ctx, linksCacheKey)
	if err != nil {
		g.log.Warn("market links cache read failed", logger.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var links []models.MarketLink
	if err := json.Unmarshal(b, &links); err != nil {
		g.log.Warn("market links cache entry corrupt", logger.Error(err))
		_ = g.cache.Delete(ctx, linksCacheKey)
		return nil, false
	}
	return links, true
}

func (g *Gateway) storeLinks(ctx context.Context, links []models.MarketLink) {
	if g.cache == nil {
		return
	}
	b, err := json.Marshal(links)
	if err != nil {
		return
	}
	if err := g.cache.SetBytes(ctx, linksCacheKey, b, g.linksTTL); err != nil {
		g.log.Warn("market links cache write failed", logger.Error(err))
	}
}
