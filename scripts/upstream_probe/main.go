// Command upstream_probe checks the school service for contract drift on the
// endpoints the gateway depends on. Each target names a method, a path and
// the JSON fields the gateway reads; a missing field or unexpected status on
// a critical target fails the probe.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type target struct {
	Method         string   `json:"method"`
	Path           string   `json:"path"`
	ExpectedStatus int      `json:"expected_status"`
	RequiredFields []string `json:"required_fields"`
	Critical       bool     `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type probe struct {
	Target   target
	Status   int
	Missing  []string
	Error    error
	Duration time.Duration
}

func main() {
	var (
		baseURL     string
		token       string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8000", "School service base URL")
	flag.StringVar(&token, "token", "", "Bearer token for authenticated targets")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "upstream_probe", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		probes   []probe
		breaking int
		drifted  int
	)

	for _, t := range targets {
		p := probeTarget(client, baseURL, token, t)
		if p.Error != nil || p.Status != expectedStatus(t) || len(p.Missing) > 0 {
			if t.Critical {
				breaking++
			} else {
				drifted++
			}
		}
		probes = append(probes, p)
	}

	printReport(probes)

	fmt.Printf("Breaking drifts: %d, Optional drifts: %d\n", breaking, drifted)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func expectedStatus(t target) int {
	if t.ExpectedStatus > 0 {
		return t.ExpectedStatus
	}
	return http.StatusOK
}

func probeTarget(client *http.Client, baseURL, token string, tgt target) probe {
	p := probe{Target: tgt}

	req, err := http.NewRequest(tgt.Method, strings.TrimRight(baseURL, "/")+tgt.Path, nil)
	if err != nil {
		p.Error = err
		return p
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	p.Duration = time.Since(start)
	if err != nil {
		p.Error = err
		return p
	}
	defer resp.Body.Close()
	p.Status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		p.Error = err
		return p
	}

	if len(tgt.RequiredFields) > 0 {
		p.Missing = missingFields(body, tgt.RequiredFields)
	}
	return p
}

// missingFields checks the response (object, or first element of an array)
// for the presence of each required top-level field.
func missingFields(body []byte, required []string) []string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		var list []map[string]json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil || len(list) == 0 {
			return required
		}
		obj = list[0]
	}

	var missing []string
	for _, field := range required {
		if _, ok := obj[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

func printReport(probes []probe) {
	fmt.Println("Upstream contract probe")
	fmt.Println(strings.Repeat("-", 72))
	for _, p := range probes {
		status := "ok"
		switch {
		case p.Error != nil:
			status = fmt.Sprintf("error: %v", p.Error)
		case p.Status != expectedStatus(p.Target):
			status = fmt.Sprintf("status %d (want %d)", p.Status, expectedStatus(p.Target))
		case len(p.Missing) > 0:
			status = "missing fields: " + strings.Join(p.Missing, ", ")
		}
		marker := " "
		if p.Target.Critical {
			marker = "!"
		}
		fmt.Printf("%s %-6s %-40s %-8s %s\n", marker, p.Target.Method, p.Target.Path, p.Duration.Round(time.Millisecond), status)
	}
	fmt.Println(strings.Repeat("-", 72))
}
