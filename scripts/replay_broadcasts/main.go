package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/service"
)

type outcome struct {
	Index      int
	Serial     int
	Category   int
	HTTPStatus int
	Result     *models.PipelineResult
	Error      error
	Duration   time.Duration
}

type ingestEnvelope struct {
	Data  *models.PipelineResult `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	var (
		baseURL string
		input   string
		token   string
		secret  string
		issuer  string
		delay   time.Duration
		timeout time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api/v1", "API base URL including the prefix")
	flag.StringVar(&input, "file", filepath.Join("scripts", "replay_broadcasts", "broadcasts.json"), "JSON array of decoded broadcasts")
	flag.StringVar(&token, "token", "", "Bearer token with the radio role")
	flag.StringVar(&secret, "secret", "", "Sign a radio token with this secret when -token is empty")
	flag.StringVar(&issuer, "issuer", "cellbroadcast-api", "Token issuer used with -secret")
	flag.DurationVar(&delay, "delay", 0, "Pause between broadcasts")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	broadcasts, err := loadBroadcasts(input)
	if err != nil {
		log.Fatalf("failed to load broadcasts: %v", err)
	}

	if token == "" && secret != "" {
		tokens := service.NewTokenService(service.TokenConfig{Secret: secret, Issuer: issuer, Expiry: time.Hour})
		token, _, err = tokens.Generate("replay-cli", models.RoleRadio)
		if err != nil {
			log.Fatalf("failed to sign token: %v", err)
		}
	}

	client := newClient(baseURL, token, timeout)
	outcomes := replay(client, broadcasts, delay)
	printReport(os.Stdout, outcomes)

	for _, o := range outcomes {
		if o.Error != nil {
			os.Exit(1)
		}
	}
}

func loadBroadcasts(path string) ([]dto.IngestBroadcastRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var broadcasts []dto.IngestBroadcastRequest
	if err := json.Unmarshal(data, &broadcasts); err != nil {
		return nil, err
	}
	if len(broadcasts) == 0 {
		return nil, fmt.Errorf("no broadcasts defined in %s", path)
	}
	return broadcasts, nil
}

func newClient(baseURL, token string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return client
}

// replay posts broadcasts one at a time, in file order.
func replay(client *resty.Client, broadcasts []dto.IngestBroadcastRequest, delay time.Duration) []outcome {
	outcomes := make([]outcome, 0, len(broadcasts))
	for i, b := range broadcasts {
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}
		outcomes = append(outcomes, post(client, i, b))
	}
	return outcomes
}

func post(client *resty.Client, index int, b dto.IngestBroadcastRequest) outcome {
	o := outcome{Index: index, Serial: b.SerialNumber, Category: b.ServiceCategory}

	var env ingestEnvelope
	start := time.Now()
	resp, err := client.R().
		SetBody(b).
		SetResult(&env).
		SetError(&env).
		Post("/broadcasts")
	o.Duration = time.Since(start)
	if err != nil {
		o.Error = fmt.Errorf("post broadcast: %w", err)
		return o
	}
	o.HTTPStatus = resp.StatusCode()
	if resp.IsError() {
		if env.Error != nil {
			o.Error = fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
		} else {
			o.Error = fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		return o
	}
	o.Result = env.Data
	return o
}

func printReport(w io.Writer, outcomes []outcome) {
	fmt.Fprintf(w, "%-4s %-8s %-8s %-6s %-10s %-9s %-9s %-8s %s\n", "#", "SERIAL", "CATEGORY", "HTTP", "STATUS", "PERSISTED", "PRESENTED", "REMINDER", "DETAIL")
	counts := map[string]int{}
	for _, o := range outcomes {
		if o.Error != nil {
			counts["error"]++
			fmt.Fprintf(w, "%-4d 0x%04X   0x%04X   %-6d %-10s %-9s %-9s %-8s %v\n", o.Index, o.Serial, o.Category, o.HTTPStatus, "error", "-", "-", "-", o.Error)
			continue
		}
		status := "unknown"
		detail := ""
		persisted, presented, reminder := false, false, false
		if o.Result != nil {
			status = string(o.Result.Status)
			persisted, presented, reminder = o.Result.Persisted, o.Result.Presented, o.Result.ReminderScheduled
			detail = firstNonEmpty(o.Result.FilterReason, o.Result.StoreError, o.Result.PresentError)
		}
		counts[status]++
		fmt.Fprintf(w, "%-4d 0x%04X   0x%04X   %-6d %-10s %-9t %-9t %-8t %s\n", o.Index, o.Serial, o.Category, o.HTTPStatus, status, persisted, presented, reminder, detail)
	}
	fmt.Fprintf(w, "processed: %d, duplicate: %d, filtered: %d, errors: %d\n",
		counts[string(models.PipelineProcessed)], counts[string(models.PipelineDuplicate)], counts[string(models.PipelineFiltered)], counts["error"])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
