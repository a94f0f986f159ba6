package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/stemsi/polly-backend/internal/config"
	"github.com/stemsi/polly-backend/internal/logger"
	"github.com/stemsi/polly-backend/internal/model"
	"github.com/stemsi/polly-backend/internal/response"
)

// seedEntry is one survey in the seed file, with optional sample answers.
type seedEntry struct {
	Survey    model.CreateSurveyRequest     `json:"survey"`
	Responses []model.SubmitResponseRequest `json:"responses"`
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func main() {
	file := flag.String("file", "seed/surveys.json", "JSON file with the surveys to create")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read seed file")
	}
	var entries []seedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to parse seed file")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	base := strings.TrimRight(cfg.BaseURL, "/")

	fmt.Printf("=== Seeding %d surveys into %s ===\n", len(entries), base)

	created := 0
	for _, entry := range entries {
		var survey model.Survey
		if err := post(ctx, client, base+"/surveys", entry.Survey, &survey); err != nil {
			fmt.Printf("Error creating survey %q: %v\n", entry.Survey.Title, err)
			continue
		}
		created++

		accepted := 0
		for i, r := range entry.Responses {
			if err := post(ctx, client, survey.Links.SurveyURL+"/responses", r, nil); err != nil {
				fmt.Printf("  response %d rejected: %v\n", i+1, err)
				continue
			}
			accepted++
		}

		fmt.Printf("Created %q (%d/%d responses)\n  survey: %s\n  stats:  %s\n",
			survey.Title, accepted, len(entry.Responses), survey.Links.SurveyURL, survey.Links.StatsURL)
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d surveys.\n", created, len(entries))
}

// post sends body as JSON and decodes the envelope's data into out.
func post(ctx context.Context, client *http.Client, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if env.Error != nil {
		return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
