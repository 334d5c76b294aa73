package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// defaultSentryBaseURL is the hosted Sentry API root. Self-hosted
// installations override it through config.
const defaultSentryBaseURL = "https://sentry.io/api/0"

// SentryClient implements ErrorTracker against the Sentry REST API.
type SentryClient struct {
	baseURL      string
	organization string
	project      string
	token        string
	environment  string
	client       *http.Client
	limiter      *rate.Limiter
}

// SentryConfig configures a SentryClient.
type SentryConfig struct {
	Organization string
	Project      string
	AuthToken    string

	// BaseURL overrides the hosted API root for self-hosted Sentry.
	BaseURL string

	// Environment is the default environment filter.
	Environment string
}

// NewSentryClient creates a Sentry API client. Organization, project and
// token are required.
func NewSentryClient(cfg SentryConfig) (*SentryClient, error) {
	if cfg.Organization == "" || cfg.Project == "" {
		return nil, fmt.Errorf("sentry organization and project are required")
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("sentry auth token not configured (set sentry.auth_token or SENTRY_AUTH_TOKEN)")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultSentryBaseURL
	}

	return &SentryClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		organization: cfg.Organization,
		project:      cfg.Project,
		token:        cfg.AuthToken,
		environment:  cfg.Environment,
		client:       &http.Client{Timeout: 30 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(5), 5),
	}, nil
}

// Name implements ErrorTracker.
func (s *SentryClient) Name() string { return "sentry" }

// Organization returns the configured organization slug.
func (s *SentryClient) Organization() string { return s.organization }

// Project returns the configured project slug.
func (s *SentryClient) Project() string { return s.project }

// Ping verifies connectivity and credentials.
func (s *SentryClient) Ping(ctx context.Context) error {
	path := fmt.Sprintf("projects/%s/%s/", s.organization, s.project)
	return s.do(ctx, http.MethodGet, path, nil, nil)
}

// RecentErrors implements ErrorTracker.
func (s *SentryClient) RecentErrors(ctx context.Context, query ErrorQuery) ([]ErrorReport, error) {
	status := query.Status
	if status == "" {
		status = "unresolved"
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	environment := query.Environment
	if environment == "" {
		environment = s.environment
	}

	params := url.Values{}
	params.Set("query", "is:"+status)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "date")
	if environment != "" {
		params.Set("environment", environment)
	}

	path := fmt.Sprintf("projects/%s/%s/issues/?%s", s.organization, s.project, params.Encode())

	var issues []sentryIssue
	if err := s.do(ctx, http.MethodGet, path, nil, &issues); err != nil {
		return nil, err
	}

	reports := make([]ErrorReport, 0, len(issues))
	for _, issue := range issues {
		report := parseIssue(issue)
		// Issue payloads do not carry the environment; it is the filter
		// the query ran under.
		report.Environment = environment
		reports = append(reports, report)
	}
	return reports, nil
}

// GetError implements ErrorTracker.
func (s *SentryClient) GetError(ctx context.Context, id string) (*ErrorReport, error) {
	var issue sentryIssue
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("issues/%s/", id), nil, &issue); err != nil {
		return nil, err
	}
	report := parseIssue(issue)
	report.Environment = s.environment
	return &report, nil
}

// ResolveError implements ErrorTracker.
func (s *SentryClient) ResolveError(ctx context.Context, id, status, inRelease string) error {
	switch status {
	case "resolved", "ignored", "unresolved":
	default:
		return fmt.Errorf("invalid status %q (use resolved, ignored or unresolved)", status)
	}

	body := map[string]interface{}{"status": status}
	if inRelease != "" && status == "resolved" {
		body["statusDetails"] = map[string]string{"inRelease": inRelease}
	}

	return s.do(ctx, http.MethodPut, fmt.Sprintf("issues/%s/", id), body, nil)
}

// LinkCommit implements ErrorTracker. Sentry has no direct commit-link API
// for issues, so the reference goes in as a comment.
func (s *SentryClient) LinkCommit(ctx context.Context, id, commitSHA string) error {
	body := map[string]string{
		"text": fmt.Sprintf("Linked to commit: `%s`", commitSHA),
	}
	return s.do(ctx, http.MethodPost, fmt.Sprintf("issues/%s/comments/", id), body, nil)
}

// Release is one Sentry release.
type Release struct {
	Version     string `json:"version"`
	DateCreated string `json:"dateCreated"`
	NewGroups   int    `json:"newGroups"`

	// LastDeploy is non-nil once the release has been deployed.
	LastDeploy *struct {
		Environment string `json:"environment"`
	} `json:"lastDeploy"`
}

// Releases lists recent releases for the project.
func (s *SentryClient) Releases(ctx context.Context, limit int) ([]Release, error) {
	if limit <= 0 {
		limit = 10
	}
	path := fmt.Sprintf("projects/%s/%s/releases/?per_page=%d", s.organization, s.project, limit)

	var releases []Release
	if err := s.do(ctx, http.MethodGet, path, nil, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

// CommitRef associates one commit with a release.
type CommitRef struct {
	Repository string `json:"repository,omitempty"`
	Commit     string `json:"commit"`
}

// CreateRelease registers a new release for the project.
func (s *SentryClient) CreateRelease(ctx context.Context, version string, refs []CommitRef) error {
	body := map[string]interface{}{
		"version":  version,
		"projects": []string{s.project},
	}
	if len(refs) > 0 {
		body["refs"] = refs
	}
	return s.do(ctx, http.MethodPost, fmt.Sprintf("organizations/%s/releases/", s.organization), body, nil)
}

// do performs one authenticated API request, honoring the rate limiter.
// out may be nil when the response body is not needed.
func (s *SentryClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	reqURL := s.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sentry API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sentry API returned status %d for %s %s: %s",
			resp.StatusCode, method, path, strings.TrimSpace(string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode sentry response: %w", err)
		}
	}
	return nil
}

// sentryIssue mirrors the subset of Sentry's issue payload the core reads.
// Event counts come back as JSON strings.
type sentryIssue struct {
	ID        string          `json:"id"`
	ShortID   string          `json:"shortId"`
	Title     string          `json:"title"`
	Culprit   string          `json:"culprit"`
	Level     string          `json:"level"`
	Status    string          `json:"status"`
	FirstSeen string          `json:"firstSeen"`
	LastSeen  string          `json:"lastSeen"`
	Count     json.Number     `json:"count"`
	UserCount int             `json:"userCount"`
	Permalink string          `json:"permalink"`
	Metadata  *sentryMetadata `json:"metadata"`
}

type sentryMetadata struct {
	Exception *sentryException `json:"exception"`
}

type sentryException struct {
	Values []struct {
		Stacktrace struct {
			Frames []StackFrame `json:"frames"`
		} `json:"stacktrace"`
	} `json:"values"`
}

// parseIssue converts a Sentry issue payload into an ErrorReport. The
// crash location is the innermost in-app frame; when no stacktrace is
// present the culprit string ("module in function") is the fallback.
func parseIssue(issue sentryIssue) ErrorReport {
	report := ErrorReport{
		ID:        issue.ID,
		ShortID:   issue.ShortID,
		Title:     issue.Title,
		Culprit:   issue.Culprit,
		Level:     issue.Level,
		Status:    issue.Status,
		FirstSeen: issue.FirstSeen,
		LastSeen:  issue.LastSeen,
		UserCount: issue.UserCount,
		Permalink: issue.Permalink,
	}

	if n, err := issue.Count.Int64(); err == nil {
		report.Count = int(n)
	}

	if issue.Metadata != nil && issue.Metadata.Exception != nil && len(issue.Metadata.Exception.Values) > 0 {
		report.Stacktrace = issue.Metadata.Exception.Values[0].Stacktrace.Frames
	}

	seen := make(map[string]bool)
	for _, frame := range report.Stacktrace {
		if frame.InApp && frame.File != "" && !seen[frame.File] {
			seen[frame.File] = true
			report.AffectedFiles = append(report.AffectedFiles, frame.File)
		}
	}

	// Frames run outermost to crash site, so scan backwards for the
	// innermost in-app frame.
	for i := len(report.Stacktrace) - 1; i >= 0; i-- {
		frame := report.Stacktrace[i]
		if frame.InApp {
			report.Location = frame.File
			report.Function = frame.Function
			report.Line = frame.Line
			break
		}
	}

	if report.Location == "" && issue.Culprit != "" {
		location, function, found := strings.Cut(issue.Culprit, " in ")
		report.Location = location
		if found {
			report.Function = function
		}
	}

	return report
}
