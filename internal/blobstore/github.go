package blobstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tahcohcat/liferpg-web/config"
	"github.com/tahcohcat/liferpg-web/internal/logger"
)

// GitHubStore keeps blobs as files in a GitHub repository through the
// Contents API. The file sha is the version token.
type GitHubStore struct {
	apiURL     string
	token      string
	repo       string
	branch     string
	root       string
	logger     *logger.Log
	httpClient *http.Client
}

type contentResponse struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Size     int    `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// rawMediaType asks the Contents API for the file bytes themselves. Files
// over 1 MB are only served this way; the JSON form carries encoding "none"
// and no content.
const rawMediaType = "application/vnd.github.raw"

type putContentRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putContentResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

type apiError struct {
	Message string `json:"message"`
}

func NewGitHubStore(cfg *config.GitHubConfig) (*GitHubStore, error) {
	if cfg.Repo == "" {
		return nil, fmt.Errorf("github store: repo is required (owner/name)")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("github store: token is required")
	}

	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://api.github.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15
	}

	return &GitHubStore{
		apiURL: apiURL,
		token:  cfg.Token,
		repo:   cfg.Repo,
		branch: cfg.Branch,
		root:   cfg.Root,
		logger: logger.New(),
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}, nil
}

func (s *GitHubStore) contentsURL(p string, withRef bool) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	u := fmt.Sprintf("%s/repos/%s/contents/%s", s.apiURL, s.repo, strings.Join(segments, "/"))
	if withRef && s.branch != "" {
		u += "?ref=" + url.QueryEscape(s.branch)
	}
	return u
}

func (s *GitHubStore) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+s.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// fetch issues a GET for p with the given Accept header and returns the
// body of a 200 response; found is false on 404.
func (s *GitHubStore) fetch(ctx context.Context, op, p, accept string) ([]byte, bool, error) {
	req, err := s.newRequest(ctx, http.MethodGet, s.contentsURL(p, true), nil)
	if err != nil {
		return nil, false, &StoreError{Op: op, Path: p, Err: err}
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.WithError(err).Error(fmt.Sprintf("GitHub request for %s failed", p))
		return nil, false, &StoreError{Op: op, Path: p, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &StoreError{Op: op, Path: p, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, false, nil
	default:
		return nil, false, &StoreError{Op: op, Path: p, StatusCode: resp.StatusCode, Err: errors.New(apiMessage(body))}
	}
	return body, true, nil
}

// get fetches the JSON contents response; found is false on 404.
func (s *GitHubStore) get(ctx context.Context, op, p string) (*contentResponse, bool, error) {
	body, found, err := s.fetch(ctx, op, p, "")
	if err != nil || !found {
		return nil, found, err
	}
	var cr contentResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, false, &StoreError{Op: op, Path: p, StatusCode: http.StatusOK, Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}
	return &cr, true, nil
}

func (s *GitHubStore) Exists(ctx context.Context, userID, name string) (bool, error) {
	if err := ValidateKey(userID, name); err != nil {
		return false, err
	}
	_, found, err := s.get(ctx, "exists", BlobPath(s.root, userID, name))
	return found, err
}

func (s *GitHubStore) Read(ctx context.Context, userID, name string) (*Blob, error) {
	if err := ValidateKey(userID, name); err != nil {
		return nil, err
	}
	p := BlobPath(s.root, userID, name)
	cr, found, err := s.get(ctx, "read", p)
	if err != nil || !found {
		return nil, err
	}
	if cr.Type != "" && cr.Type != "file" {
		return nil, &StoreError{Op: "read", Path: p, Err: fmt.Errorf("expected a file, got %s", cr.Type)}
	}

	var content []byte
	switch cr.Encoding {
	case "base64", "":
		// GitHub wraps the base64 payload at 60 columns.
		content, err = base64.StdEncoding.DecodeString(strings.ReplaceAll(cr.Content, "\n", ""))
		if err != nil {
			return nil, &StoreError{Op: "read", Path: p, Err: fmt.Errorf("decode content: %w", err)}
		}
	case "none":
		s.logger.Debugf("%s is %d bytes, fetching raw", p, cr.Size)
		raw, found, err := s.fetch(ctx, "read", p, rawMediaType)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, &StoreError{Op: "read", Path: p, StatusCode: http.StatusNotFound, Err: errors.New("file vanished between metadata and raw fetch")}
		}
		content = raw
	default:
		return nil, &StoreError{Op: "read", Path: p, Err: fmt.Errorf("unsupported content encoding %q", cr.Encoding)}
	}

	// A short body read as a valid version would let the next save
	// overwrite the real file.
	if len(content) != cr.Size {
		return nil, &StoreError{Op: "read", Path: p, Err: fmt.Errorf("got %d bytes, file is %d", len(content), cr.Size)}
	}

	s.logger.Debugf("read %s (%d bytes, sha %s)", p, len(content), shortVersion(cr.SHA))
	return &Blob{Content: content, Version: cr.SHA}, nil
}

func (s *GitHubStore) Write(ctx context.Context, userID, name string, content []byte, expectedVersion string) (string, error) {
	if err := ValidateKey(userID, name); err != nil {
		return "", err
	}
	p := BlobPath(s.root, userID, name)

	payload := putContentRequest{
		Message: fmt.Sprintf("Update LifeRPG %s for %s", name, userID),
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     expectedVersion,
		Branch:  s.branch,
	}
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return "", &StoreError{Op: "write", Path: p, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := s.newRequest(ctx, http.MethodPut, s.contentsURL(p, false), bytes.NewReader(requestBody))
	if err != nil {
		return "", &StoreError{Op: "write", Path: p, Err: err}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.WithError(err).Error(fmt.Sprintf("GitHub write for %s failed", p))
		return "", &StoreError{Op: "write", Path: p, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &StoreError{Op: "write", Path: p, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusPreconditionFailed:
		return "", &ConflictError{Path: p, ExpectedVersion: expectedVersion}
	case resp.StatusCode == http.StatusUnprocessableEntity && expectedVersion == "" && strings.Contains(apiMessage(body), "sha"):
		// existing file written without its sha
		return "", &ConflictError{Path: p}
	default:
		return "", &StoreError{Op: "write", Path: p, StatusCode: resp.StatusCode, Err: errors.New(apiMessage(body))}
	}

	var pr putContentResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return "", &StoreError{Op: "write", Path: p, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}
	if pr.Content.SHA == "" {
		return "", &StoreError{Op: "write", Path: p, StatusCode: resp.StatusCode, Err: errors.New("response carried no sha")}
	}

	s.logger.Debugf("wrote %s (sha %s)", p, shortVersion(pr.Content.SHA))
	return pr.Content.SHA, nil
}

func (s *GitHubStore) Create(ctx context.Context, userID, name string, content []byte) (string, error) {
	return s.Write(ctx, userID, name, content, "")
}

func apiMessage(body []byte) string {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Message != "" {
		return ae.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "empty response"
	}
	return msg
}
