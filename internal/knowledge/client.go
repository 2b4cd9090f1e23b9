package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"georesolve/internal/logging"
)

// Resolver maps external refs to catalog ids. Absent keys mean the ref could
// not be resolved; that is not an error.
type Resolver interface {
	ResolveBatch(ctx context.Context, refs []string) (map[string]int64, error)
}

const (
	entityPrefix = "http://www.wikidata.org/entity/"

	// maxRedirectDepth bounds redirect chasing; chains longer than this are
	// left unresolved.
	maxRedirectDepth = 3
)

// Client queries a SPARQL endpoint for the catalog-id property of each ref.
type Client struct {
	endpoint   string
	batchSize  int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a SPARQL client. batchSize caps the VALUES clause per
// request.
func NewClient(endpoint string, batchSize int, timeout time.Duration, logger *slog.Logger) *Client {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Client{
		endpoint:   endpoint,
		batchSize:  batchSize,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "knowledge"),
	}
}

// ResolveBatch resolves refs in endpoint-sized batches. A batch that fails
// is logged and skipped; the remaining batches still run.
func (c *Client) ResolveBatch(ctx context.Context, refs []string) (map[string]int64, error) {
	resolved := make(map[string]int64, len(refs))
	if err := c.resolve(ctx, refs, resolved, 0); err != nil {
		return resolved, err
	}
	return resolved, nil
}

func (c *Client) resolve(ctx context.Context, refs []string, resolved map[string]int64, depth int) error {
	if depth > maxRedirectDepth {
		c.logger.Warn("redirect chain too deep", logging.Int("refs", len(refs)))
		return nil
	}

	for start := 0; start < len(refs); start += c.batchSize {
		end := min(len(refs), start+c.batchSize)
		batch := refs[start:end]

		bindings, err := c.query(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("batch query failed",
				logging.Int("batch_start", start),
				logging.Int("batch_size", len(batch)),
				logging.Error(err))
			continue
		}

		// redirect target -> original refs pointing at it
		redirects := make(map[string][]string)
		for _, b := range bindings {
			ref, ok := strings.CutPrefix(b.item, entityPrefix)
			if !ok {
				continue
			}
			switch {
			case b.geonameID != 0:
				resolved[ref] = b.geonameID
			case b.redirected != "":
				target, ok := strings.CutPrefix(b.redirected, entityPrefix)
				if !ok {
					continue
				}
				redirects[target] = append(redirects[target], ref)
			}
		}

		if len(redirects) > 0 {
			targets := make([]string, 0, len(redirects))
			for target := range redirects {
				targets = append(targets, target)
			}
			c.logger.Debug("chasing redirected refs", logging.Int("count", len(targets)))

			indirect := make(map[string]int64, len(targets))
			if err := c.resolve(ctx, targets, indirect, depth+1); err != nil {
				return err
			}
			for target, id := range indirect {
				resolved[target] = id
				for _, origin := range redirects[target] {
					resolved[origin] = id
				}
			}
		}
	}
	return nil
}

type binding struct {
	item       string
	geonameID  int64
	redirected string
}

func (c *Client) query(ctx context.Context, refs []string) ([]binding, error) {
	var values strings.Builder
	for _, ref := range refs {
		values.WriteString("wd:")
		values.WriteString(ref)
		values.WriteString("\n")
	}
	sparql := fmt.Sprintf(`SELECT ?item ?geonameid ?redirected WHERE {
  VALUES ?item { %s }
  OPTIONAL { ?item wdt:P1566 ?geonameid. }
  OPTIONAL { ?item owl:sameAs ?redirected. }
}`, values.String())

	form := url.Values{"query": {sparql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", "georesolve/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Results struct {
			Bindings []map[string]struct {
				Value string `json:"value"`
			} `json:"bindings"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	bindings := make([]binding, 0, len(payload.Results.Bindings))
	for _, row := range payload.Results.Bindings {
		b := binding{
			item:       row["item"].Value,
			redirected: row["redirected"].Value,
		}
		if raw := row["geonameid"].Value; raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				c.logger.Warn("non-numeric catalog id in response",
					logging.String("item", b.item),
					logging.String("value", raw))
				continue
			}
			b.geonameID = id
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}
