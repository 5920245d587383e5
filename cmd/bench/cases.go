// README: Bench cases: environment checks, booking lifecycle, claim race and feed load.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"kargo/internal/infra"
	"kargo/internal/modules/booking"
	"kargo/internal/modules/profile"
	"kargo/internal/types"
)

type Runner struct {
	cfg      Config
	httpc    *http.Client
	db       *pgxpool.Pool
	redis    *redis.Client
	tokens   *infra.JWTVerifier
	bookings *booking.PGStore
	drivers  *profile.PGStore
	runID    string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) (*Runner, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("bench: -jwt-secret (KARGO_JWT_SECRET) is required; run the API with KARGO_AUTH=jwt")
	}
	tokens, err := infra.NewJWTVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: 10 * time.Second},
		tokens: tokens,
		runID:  uuid.NewString()[:8],
	}, nil
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
			// Seeded rows are announced on the same channel the API listens on.
			r.bookings = booking.NewPGStore(db, r.redis, nil)
			r.drivers = profile.NewPGStore(db)
		}
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{Name: "Env: Postgres connect", Run: func(ctx context.Context, r *Runner) Result {
			if r.db == nil {
				return Result{Status: "FAIL", Note: "db not configured"}
			}
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := r.db.Ping(ctx); err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			return Result{Status: "PASS"}
		}},
		{Name: "Env: Redis connect", Run: func(ctx context.Context, r *Runner) Result {
			if r.redis == nil {
				return Result{Status: "SKIP", Note: "redis not configured"}
			}
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := r.redis.Ping(ctx).Err(); err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			return Result{Status: "PASS"}
		}},
		{Name: "API: health", Run: func(ctx context.Context, r *Runner) Result {
			status, _, latency, err := r.call(ctx, http.MethodGet, "/health", "")
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			return expectStatus(status, latency, http.StatusOK)
		}},
		{Name: "API: missing token -> 401", Run: func(ctx context.Context, r *Runner) Result {
			status, _, latency, err := r.call(ctx, http.MethodGet, "/api/bookings/feed", "")
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			return expectStatus(status, latency, http.StatusUnauthorized)
		}},
		{Name: "Booking: claim, pickup, dropoff", Run: func(ctx context.Context, r *Runner) Result { return r.lifecycle(ctx) }},
		{Name: "Booking: concurrent claim has one winner", Run: func(ctx context.Context, r *Runner) Result { return r.claimRace(ctx) }},
		{Name: "Booking: change notification on Redis", Run: func(ctx context.Context, r *Runner) Result { return r.changeNotification(ctx) }},
		{Name: "Perf: feed latency under load", Run: func(ctx context.Context, r *Runner) Result { return r.feedLoad(ctx) }},
	}
}

func (r *Runner) lifecycle(ctx context.Context) Result {
	if r.bookings == nil {
		return Result{Status: "FAIL", Note: "db not configured"}
	}
	driver, err := r.seedDriver(ctx, "life")
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	id, err := r.seedBooking(ctx)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	tok, err := r.token(driver)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}

	start := time.Now()
	for _, step := range []string{"claim", "pickup", "dropoff"} {
		status, body, _, err := r.call(ctx, http.MethodPost, "/api/bookings/"+string(id)+"/"+step, tok)
		if err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
		if status != http.StatusOK {
			return Result{Status: "FAIL", Note: fmt.Sprintf("%s: status=%d %s", step, status, body)}
		}
	}
	status, _, _, err := r.call(ctx, http.MethodPost, "/api/bookings/"+string(id)+"/claim", tok)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	if status != http.StatusConflict {
		return Result{Status: "FAIL", Note: fmt.Sprintf("reclaim after dropoff: status=%d", status)}
	}
	return Result{Status: "PASS", Latency: time.Since(start)}
}

func (r *Runner) claimRace(ctx context.Context) Result {
	if r.bookings == nil {
		return Result{Status: "FAIL", Note: "db not configured"}
	}
	id, err := r.seedBooking(ctx)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	tokens := make([]string, r.cfg.Concurrency)
	for i := range tokens {
		d, err := r.seedDriver(ctx, fmt.Sprintf("race%d", i))
		if err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
		if tokens[i], err = r.token(d); err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		statuses  = map[int]int{}
		startLine = make(chan struct{})
	)
	start := time.Now()
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			<-startLine
			status, _, _, err := r.call(ctx, http.MethodPost, "/api/bookings/"+string(id)+"/claim", tok)
			if err != nil {
				status = -1
			}
			mu.Lock()
			statuses[status]++
			mu.Unlock()
		}(tok)
	}
	close(startLine)
	wg.Wait()

	note := fmt.Sprintf("statuses=%v", statuses)
	if statuses[http.StatusOK] != 1 || statuses[http.StatusConflict] != len(tokens)-1 {
		return Result{Status: "FAIL", Note: note}
	}
	return Result{Status: "PASS", Latency: time.Since(start), Note: note}
}

func (r *Runner) changeNotification(ctx context.Context) Result {
	if r.redis == nil || r.bookings == nil {
		return Result{Status: "SKIP", Note: "needs db and redis"}
	}
	sub := r.redis.Subscribe(ctx, booking.ChangesChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}

	driver, err := r.seedDriver(ctx, "notify")
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	id, err := r.seedBooking(ctx)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	tok, err := r.token(driver)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	// Drain the seed notification; the claim must produce another one.
	waitCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := sub.ReceiveMessage(waitCtx); err != nil {
		return Result{Status: "FAIL", Note: "seed: " + err.Error()}
	}
	start := time.Now()
	if status, _, _, err := r.call(ctx, http.MethodPost, "/api/bookings/"+string(id)+"/claim", tok); err != nil || status != http.StatusOK {
		return Result{Status: "FAIL", Note: fmt.Sprintf("claim status=%d err=%v", status, err)}
	}
	if _, err := sub.ReceiveMessage(waitCtx); err != nil {
		return Result{Status: "FAIL", Note: "claim: " + err.Error()}
	}
	return Result{Status: "PASS", Latency: time.Since(start)}
}

func (r *Runner) feedLoad(ctx context.Context) Result {
	if r.drivers == nil {
		return Result{Status: "FAIL", Note: "db not configured"}
	}
	driver, err := r.seedDriver(ctx, "load")
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	tok, err := r.token(driver)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}

	deadline := time.Now().Add(r.cfg.Duration)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		latencies []time.Duration
		failures  atomic.Int64
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) && ctx.Err() == nil {
				status, _, latency, err := r.call(ctx, http.MethodGet, "/api/bookings/feed", tok)
				if err != nil || status != http.StatusOK {
					failures.Add(1)
					continue
				}
				mu.Lock()
				latencies = append(latencies, latency)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(latencies) == 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("no successful requests, failures=%d", failures.Load())}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	p50 := latencies[len(latencies)/2]
	p95 := latencies[len(latencies)*95/100]
	note := fmt.Sprintf("requests=%d failures=%d p50=%s p95=%s", len(latencies), failures.Load(), p50, p95)
	if failures.Load() > 0 {
		return Result{Status: "FAIL", Latency: p95, Note: note}
	}
	return Result{Status: "PASS", Latency: p95, Note: note}
}

func (r *Runner) seedDriver(ctx context.Context, tag string) (types.ID, error) {
	id := types.ID(fmt.Sprintf("bench-%s-%s", r.runID, tag))
	err := r.drivers.InsertDriver(ctx, profile.Driver{
		ID:        id,
		FirstName: "Bench",
		LastName:  strings.ToUpper(tag),
		Weight:    60,
		MaxLoad:   200,
	})
	return id, err
}

func (r *Runner) seedBooking(ctx context.Context) (types.ID, error) {
	id := types.ID("bench-" + strings.ReplaceAll(uuid.NewString(), "-", ""))
	err := r.bookings.Insert(ctx, booking.Booking{
		ID:              id,
		UserID:          types.ID("bench-rider-" + r.runID),
		PickupLocation:  "Dagupan City Plaza",
		PickupCoords:    types.Point{Lat: 16.0439, Lng: 120.3331},
		DropoffLocation: "Lingayen Capitol",
		DropoffCoords:   types.Point{Lat: 16.0206, Lng: 120.2290},
		RideDistance:    "12.1 km",
		RideTime:        "25 mins",
		RidePrice:       "₱171.00",
		Timestamp:       time.Now(),
		UserWeight:      10,
	})
	return id, err
}

func (r *Runner) token(driver types.ID) (string, error) {
	return r.tokens.Issue(string(driver), "driver", time.Hour)
}

func (r *Runner) call(ctx context.Context, method, path, token string) (int, string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, nil)
	if err != nil {
		return 0, "", 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, "", 0, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, compact(body), time.Since(start), nil
}

func expectStatus(got int, latency time.Duration, want int) Result {
	if got != want {
		return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d want=%d", got, want)}
	}
	return Result{Status: "PASS", Latency: latency}
}

// compact shortens JSON bodies for the one-line report.
func compact(body []byte) string {
	var v any
	if json.Unmarshal(body, &v) == nil {
		if b, err := json.Marshal(v); err == nil {
			body = b
		}
	}
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
