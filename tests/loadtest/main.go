package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numContexts  = 5
	numUsers     = 200
	numGifts     = 10
)

var contexts = []string{"guild-a", "guild-b", "guild-c", "guild-d", "guild-e"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

// giftIDs holds the catalog seeded per context, filled during setup.
var (
	giftMu  sync.Mutex
	giftIDs = make(map[string][]string)
)

func main() {
	fmt.Println("=== giftd Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Contexts: %d | Users: %d | Gifts per context: %d\n\n", numContexts, numUsers, numGifts)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Setup: claim admin, seed the catalogs and balances
	fmt.Println("\n--- Setup: seeding admins, gifts and balances ---")
	if !seed() {
		return
	}

	// Phase 1: check-in heavy (the daily burst)
	fmt.Println("\n--- Phase 1: Check-in burst (80% checkin, 20% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.80:
			return doCheckin(rng)
		case r < 0.90:
			return doListGifts(rng)
		default:
			return doGetUser(rng)
		}
	})

	// Phase 2: mixed economy traffic
	fmt.Println("\n--- Phase 2: Mixed load (30% checkin, 30% redeem, 40% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.30:
			return doCheckin(rng)
		case r < 0.60:
			return doRedeem(rng)
		case r < 0.85:
			return doListGifts(rng)
		default:
			return doGetUser(rng)
		}
	})

	// Phase 3: read-heavy browsing
	fmt.Println("\n--- Phase 3: Read-heavy load (10% redeem, 90% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doRedeem(rng)
		case r < 0.60:
			return doListGifts(rng)
		default:
			return doGetUser(rng)
		}
	})
}

func seed() bool {
	for _, ctx := range contexts {
		postJSON("/admin/claim", map[string]interface{}{"ctx": ctx, "user": "loadadmin"})

		for g := 0; g < numGifts; g++ {
			body := map[string]interface{}{
				"ctx":             ctx,
				"caller":          "loadadmin",
				"name":            fmt.Sprintf("Gift %d", g),
				"points_required": 5 + g*5,
				"quantity":        1000000,
			}
			resp, err := postJSON("/gift/add", body)
			if err != nil {
				fmt.Printf("FAILED seeding gift: %v\n", err)
				return false
			}
			var created struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(resp, &created)
			if created.ID != "" {
				giftMu.Lock()
				giftIDs[ctx] = append(giftIDs[ctx], created.ID)
				giftMu.Unlock()
			}
		}

		for u := 0; u < numUsers; u++ {
			postJSON("/points/grant", map[string]interface{}{
				"ctx":    ctx,
				"caller": "loadadmin",
				"user":   fmt.Sprintf("user_%d", u),
				"points": 10000,
			})
		}
	}
	fmt.Printf("Seeded %d contexts\n", len(contexts))
	return true
}

func postJSON(path string, body map[string]interface{}) ([]byte, error) {
	data, _ := json.Marshal(body)
	resp, err := httpClient.Post(baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func pickContext(rng *rand.Rand) string {
	return contexts[rng.Intn(len(contexts))]
}

func pickUser(rng *rand.Rand) string {
	return fmt.Sprintf("user_%d", rng.Intn(numUsers))
}

// doCheckin fires a check-in. Repeats for the same user on the same day come
// back 409, which is correct behavior, so only transport failures and 5xx
// count as errors.
func doCheckin(rng *rand.Rand) result {
	body := map[string]interface{}{
		"ctx":      pickContext(rng),
		"user":     pickUser(rng),
		"username": fmt.Sprintf("User %d", rng.Intn(numUsers)),
	}
	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/checkin", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /checkin", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	ok := resp.StatusCode == 200 || resp.StatusCode == 409
	return result{"POST /checkin", resp.StatusCode, lat, !ok}
}

// doRedeem spends points on a random seeded gift. Rejections for balance
// (422) are expected once a user runs dry.
func doRedeem(rng *rand.Rand) result {
	ctx := pickContext(rng)
	giftMu.Lock()
	ids := giftIDs[ctx]
	giftMu.Unlock()
	if len(ids) == 0 {
		return result{"POST /redeem", 0, 0, true}
	}

	body := map[string]interface{}{
		"ctx":   ctx,
		"user":  pickUser(rng),
		"gift":  ids[rng.Intn(len(ids))],
		"count": 1,
	}
	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/redeem", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /redeem", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	ok := resp.StatusCode == 200 || resp.StatusCode == 422
	return result{"POST /redeem", resp.StatusCode, lat, !ok}
}

func doListGifts(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/gifts?ctx=%s&user=%s", baseURL, pickContext(rng), pickUser(rng))
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /gifts", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /gifts", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetUser(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/user?ctx=%s&id=%s", baseURL, pickContext(rng), pickUser(rng))
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /user", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// users only exist after their first check-in or grant, 404 is fine
	ok := resp.StatusCode == 200 || resp.StatusCode == 404
	return result{"GET /user", resp.StatusCode, lat, !ok}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
