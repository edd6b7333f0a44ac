package prediction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"NiftyDash/internal/domain/models"
	domsvc "NiftyDash/internal/domain/service"
	"NiftyDash/internal/service/cache"
)

func newTestGateway(t *testing.T, h http.HandlerFunc, opts ...Option) (*Gateway, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewGateway(NewHTTPServiceBase(srv.URL+"/api", 2*time.Second), opts...), &hits
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestCheckHealth(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{"status":"healthy"}`)
	})
	if got := g.CheckHealth(context.Background()); got != models.HealthHealthy {
		t.Fatalf("CheckHealth = %s, want healthy", got)
	}

	bad, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if got := bad.CheckHealth(context.Background()); got != models.HealthUnhealthy {
		t.Fatalf("CheckHealth = %s, want unhealthy", got)
	}
}

func TestCheckHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := NewGateway(NewHTTPServiceBase(url+"/api", time.Second))
	if got := g.CheckHealth(context.Background()); got != models.HealthUnhealthy {
		t.Fatalf("CheckHealth = %s, want unhealthy", got)
	}
}

func TestFetchHistoricalSortsAscending(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"success","data":[
			{"date":"2024-01-02","price":21150,"SMA_20":21000.5,"MA_10_days":21010},
			{"date":"2024-01-01","price":21000}
		]}`)
	})

	points, err := g.FetchHistorical(context.Background()).Unpack()
	if err != nil {
		t.Fatalf("FetchHistorical: %v", err)
	}
	if len(points) != 2 || points[0].Date != "2024-01-01" || points[1].Price != 21150 {
		t.Fatalf("unexpected points: %+v", points)
	}
	if v, ok := points[1].Indicator(models.IndicatorSMA20); !ok || v != 21000.5 {
		t.Fatalf("SMA_20 = %v, %v", v, ok)
	}
	if v, ok := points[1].Indicator(models.IndicatorMA10); !ok || v != 21010 {
		t.Fatalf("MA_10 = %v, %v", v, ok)
	}
	if _, ok := points[0].Indicator(models.IndicatorRSI); ok {
		t.Fatalf("RSI should be absent")
	}
}

func TestFetchHistoricalRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind domsvc.ErrorKind
	}{
		{"duplicate dates", `{"status":"success","data":[{"date":"2024-01-01","price":1},{"date":"2024-01-01","price":2}]}`, domsvc.KindProtocol},
		{"missing price", `{"status":"success","data":[{"date":"2024-01-01"}]}`, domsvc.KindProtocol},
		{"bad date", `{"status":"success","data":[{"date":"01/01/2024","price":1}]}`, domsvc.KindProtocol},
		{"missing data", `{"status":"success"}`, domsvc.KindProtocol},
		{"unknown status", `{"status":"ok","data":[]}`, domsvc.KindProtocol},
		{"not json", `<html>`, domsvc.KindProtocol},
		{"business error", `{"status":"error","message":"Failed to fetch data"}`, domsvc.KindBusiness},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})
			res := g.FetchHistorical(context.Background())
			if res.IsOk() {
				t.Fatalf("expected failure, got %+v", res.Value())
			}
			if res.Err().Kind != tt.kind {
				t.Fatalf("kind = %s, want %s (%v)", res.Err().Kind, tt.kind, res.Err())
			}
		})
	}
}

func TestPredictInvalidDaysSkipsNetwork(t *testing.T) {
	g, hits := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	for _, days := range []int{0, 31, -1} {
		res := g.Predict(context.Background(), days)
		if res.IsOk() || res.Err().Kind != domsvc.KindInvalidArgument {
			t.Fatalf("Predict(%d) = %+v, want invalid argument", days, res.Err())
		}
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("expected no network calls, got %d", *hits)
	}
}

func TestPredictSuccess(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/predict" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{"status":"success","predictions":[
			{"day":3,"date":"2024-01-05","predicted_price":21300},
			{"day":1,"date":"2024-01-03","predicted_price":21200},
			{"day":2,"date":"2024-01-04","predicted_price":21250}
		],"current_price":21150,"last_date":"2024-01-02"}`)
	})

	points, err := g.Predict(context.Background(), 3).Unpack()
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for i, p := range points {
		if p.Day != i+1 {
			t.Fatalf("points not ordered by day: %+v", points)
		}
	}
	if points[2].PredictedPrice != 21300 {
		t.Fatalf("last price = %v", points[2].PredictedPrice)
	}
}

func TestPredictFailureKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   domsvc.ErrorKind
		msg    string
	}{
		{"business 400", http.StatusBadRequest, `{"status":"error","message":"Model not available. Please train first."}`, domsvc.KindBusiness, "Model not available. Please train first."},
		{"business 200", http.StatusOK, `{"status":"error","message":"boom"}`, domsvc.KindBusiness, "boom"},
		{"unparseable 500", http.StatusInternalServerError, `Internal Server Error`, domsvc.KindProtocol, "Failed to generate predictions"},
		{"short forecast", http.StatusOK, `{"status":"success","predictions":[{"day":1,"date":"2024-01-03","predicted_price":1}]}`, domsvc.KindProtocol, "Failed to generate predictions"},
		{"gap in days", http.StatusOK, `{"status":"success","predictions":[{"day":1,"date":"2024-01-03","predicted_price":1},{"day":3,"date":"2024-01-05","predicted_price":1}]}`, domsvc.KindProtocol, "Failed to generate predictions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			res := g.Predict(context.Background(), 2)
			if res.IsOk() {
				t.Fatalf("expected failure")
			}
			if res.Err().Kind != tt.kind || res.Err().Message != tt.msg {
				t.Fatalf("got %s %q, want %s %q", res.Err().Kind, res.Err().Message, tt.kind, tt.msg)
			}
		})
	}
}

func TestTrainTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := NewGateway(NewHTTPServiceBase(url+"/api", time.Second))
	res := g.Train(context.Background())
	if res.IsOk() || res.Err().Kind != domsvc.KindTransport {
		t.Fatalf("Train = %+v, want transport error", res.Err())
	}
	if res.Err().Message != "Failed to train model" {
		t.Fatalf("message = %q", res.Err().Message)
	}
}

func TestPredictStalledBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"success","predictions":[`))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	g := NewGateway(NewHTTPServiceBase(srv.URL+"/api", 100*time.Millisecond))
	res := g.Predict(context.Background(), 3)
	if res.IsOk() {
		t.Fatalf("expected an error for a stalled body")
	}
	if res.Err().Kind != domsvc.KindTransport {
		t.Fatalf("kind = %s, want transport (%v)", res.Err().Kind, res.Err())
	}
	if res.Err().Message != "Failed to generate predictions" {
		t.Fatalf("message = %q", res.Err().Message)
	}
}

func TestPredictTruncatedJSONIsProtocolError(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"success","predictions":[`)
	})
	res := g.Predict(context.Background(), 3)
	if res.IsOk() || res.Err().Kind != domsvc.KindProtocol {
		t.Fatalf("Predict = %+v, want protocol error", res.Err())
	}
}

func TestFetchModelInfo(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"success","model_loaded":true,"sequence_length":60,
			"performance":{"mse":1.5,"mae":1.1,"r2":0.9234,"rmse":1.22},"model_summary":["Layer 1","Layer 2"]}`)
	})
	info, err := g.FetchModelInfo(context.Background()).Unpack()
	if err != nil {
		t.Fatalf("FetchModelInfo: %v", err)
	}
	if !info.ModelLoaded || info.SequenceLength != 60 || info.Performance == nil || info.Performance.R2 != 0.9234 {
		t.Fatalf("unexpected model info: %+v", info)
	}

	empty, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"success","model_loaded":true,"sequence_length":60,"performance":null,"model_summary":[]}`)
	})
	info, err = empty.FetchModelInfo(context.Background()).Unpack()
	if err != nil || info.Performance != nil {
		t.Fatalf("expected absent performance, got %+v, %v", info, err)
	}

	none, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"error","message":"No model available","model_loaded":false}`)
	})
	res := none.FetchModelInfo(context.Background())
	if res.IsOk() || res.Err().Kind != domsvc.KindBusiness || res.Err().Message != "No model available" {
		t.Fatalf("unexpected result: %+v", res.Err())
	}
}

func TestFetchMarketLinksReadsThroughCache(t *testing.T) {
	g, hits := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"success","links":[
			{"name":"NSE India","url":"https://www.nseindia.com/","description":"Official National Stock Exchange website"}
		]}`)
	}, WithLinksCache(cache.NewTTLCache(), time.Minute))

	for i := 0; i < 3; i++ {
		links, err := g.FetchMarketLinks(context.Background()).Unpack()
		if err != nil {
			t.Fatalf("FetchMarketLinks: %v", err)
		}
		if len(links) != 1 || links[0].Name != "NSE India" {
			t.Fatalf("unexpected links: %+v", links)
		}
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
}

func TestFetchMarketLinksRejectsBadURL(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"success","links":[{"name":"x","url":"not a url"}]}`)
	})
	res := g.FetchMarketLinks(context.Background())
	if res.IsOk() || res.Err().Kind != domsvc.KindProtocol {
		t.Fatalf("expected protocol error, got %+v", res.Err())
	}
}
