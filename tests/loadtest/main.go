package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

const (
	baseURL      = "http://127.0.0.1:8090"
	numWorkers   = 20
	testDuration = 10 * time.Second
	numPatients  = 200
)

var fingers = []string{
	"Mínimo Esquerdo", "Anelar Esquerdo", "Médio Esquerdo", "Indicador Esquerdo", "Polegar Esquerdo",
	"Polegar Direito", "Indicador Direito", "Médio Direito", "Anelar Direito", "Mínimo Direito",
}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
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

// Exercises the local patient store endpoints only; directory-backed
// endpoints depend on the external service and are left out.
func main() {
	fmt.Println("=== vihub Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Patients: %d\n\n", numWorkers, testDuration, numPatients)

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

	fmt.Println("\n--- Phase 1: Creating patients (POST /patients) ---")
	var created atomic.Int64
	runPhase(testDuration, func(rng *rand.Rand) result {
		if created.Load() >= numPatients {
			return doList()
		}
		r := doCreate(rng)
		if !r.err {
			created.Add(1)
		}
		return r
	})

	fmt.Println("\n--- Phase 2: Mixed load (20% edits, 80% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.20:
			return doEditBiometric(rng)
		case r < 0.50:
			return doList()
		case r < 0.90:
			return doPhoto(rng)
		default:
			return doHealth()
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
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
					results <- workFn(rng)
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
	var totalOps, totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-26s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 92))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-26s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 92))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func randomPayload(rng *rand.Rand) string {
	raw := make([]byte, 64+rng.Intn(192))
	rng.Read(raw)
	return base64.StdEncoding.EncodeToString(raw)
}

func doCreate(rng *rand.Rand) result {
	body := map[string]any{
		"name":   fmt.Sprintf("Load Patient %d", rng.Intn(1_000_000)),
		"wallet": fmt.Sprintf("%017d", rng.Int63n(1e16)),
		"digitalBiometrics": []map[string]string{
			{"finger": fingers[rng.Intn(len(fingers))], "data": randomPayload(rng)},
		},
	}
	return send(http.MethodPost, "/patients", body, http.StatusCreated)
}

func doEditBiometric(rng *rand.Rand) result {
	body := map[string]any{
		"id":   rng.Intn(numPatients) + 1,
		"data": randomPayload(rng),
	}
	if rng.Float64() < 0.7 {
		body["finger"] = fingers[rng.Intn(len(fingers))]
	}
	// unknown ids are expected once patients were deleted by hand
	r := send(http.MethodPut, "/patients/biometrics", body, http.StatusOK)
	if r.status == http.StatusNotFound {
		r.err = false
	}
	return r
}

func doList() result {
	return send(http.MethodGet, "/patients", nil, http.StatusOK)
}

func doPhoto(rng *rand.Rand) result {
	r := send(http.MethodGet, fmt.Sprintf("/patients/photo?id=%d", rng.Intn(numPatients)+1), nil, http.StatusOK)
	r.endpoint = "GET /patients/photo"
	if r.status == http.StatusNotFound {
		r.err = false
	}
	return r
}

func doHealth() result {
	return send(http.MethodGet, "/health", nil, http.StatusOK)
}

func send(method, path string, body any, want int) result {
	endpoint := method + " " + path
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return result{endpoint, 0, 0, true}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}
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
