package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/depharvest/pkg/cache"
	"github.com/matzehuels/depharvest/pkg/errors"
	"github.com/matzehuels/depharvest/pkg/httputil"
	"github.com/matzehuels/depharvest/pkg/observability"
)

// PageSize is the number of tree entries the API serves per page and the
// maximum number of paths one blob request accepts.
const PageSize = 100

const httpTimeout = 30 * time.Second

const listTreeQuery = `
query FetchPaths($fullPath: ID!, $ref: String!, $after: String) {
  project(fullPath: $fullPath) {
    repository {
      tree(ref: $ref, recursive: true) {
        blobs(first: 100, after: $after) {
          pageInfo {
            hasNextPage
            endCursor
          }
          nodes {
            path
          }
        }
      }
    }
  }
}`

const rawBlobsQuery = `
query FetchRawBlobs($fullPath: ID!, $ref: String!, $paths: [String!]!) {
  project(fullPath: $fullPath) {
    repository {
      blobs(ref: $ref, paths: $paths) {
        nodes {
          path
          rawTextBlob
        }
      }
    }
  }
}`

// Client provides access to the GitLab API for tree listing, blob content,
// and language shares. All methods are safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cache      cache.Cache
}

// NewClient creates a GitLab client for the given instance.
//
// Parameters:
//   - baseURL: instance root, e.g. "https://gitlab.com"
//   - token: personal access token (empty string for unauthenticated)
//   - backend: cache for API responses (use cache.NewNullCache() for none)
func NewClient(baseURL, token string, backend cache.Cache) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: httpTimeout},
		cache:      backend,
	}
}

// ProjectFromURL reduces a project URL to its host-relative full path.
// "https://gitlab.com/group/sub/project" becomes "group/sub/project".
// A bare "group/project" is returned unchanged.
func ProjectFromURL(projectURL string) (string, error) {
	s := strings.Trim(projectURL, "/")
	if !strings.Contains(s, "://") {
		if s == "" || !strings.Contains(s, "/") {
			return "", errors.New(errors.ErrCodeInvalidProject, "not a project path: %q", projectURL)
		}
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidProject, err, "parse project URL %q", projectURL)
	}
	path := strings.Trim(u.Path, "/")
	if path == "" || !strings.Contains(path, "/") {
		return "", errors.New(errors.ErrCodeInvalidProject, "URL has no group/project path: %q", projectURL)
	}
	return path, nil
}

// ListTree lists every file path in the repository at ref, following
// cursor pagination until the backend reports no further pages. Paths are
// returned in page-arrival order. Any non-success response aborts the
// listing; a partial path list is never returned.
func (c *Client) ListTree(ctx context.Context, project, ref string) ([]string, error) {
	var all []string
	after := ""

	for page := 1; ; page++ {
		vars := map[string]any{"fullPath": project, "ref": ref}
		if after != "" {
			vars["after"] = after
		}

		p, err := c.listTreePage(ctx, vars)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeTransport, err, "list tree page %d", page)
		}

		all = append(all, p.Paths...)
		observability.Harvest().OnListPage(ctx, project, len(p.Paths), len(all))

		if !p.HasNext {
			return all, nil
		}
		after = p.EndCursor
	}
}

func (c *Client) listTreePage(ctx context.Context, vars map[string]any) (treePage, error) {
	var resp listTreeResponse
	if err := c.graphql(ctx, "tree", listTreeQuery, vars, &resp); err != nil {
		return treePage{}, err
	}
	if len(resp.Errors) > 0 {
		return treePage{}, fmt.Errorf("graphql: %s", resp.Errors[0].Message)
	}

	blobs := resp.Data.Project.Repository.Tree.Blobs
	p := treePage{
		HasNext:   blobs.PageInfo.HasNextPage,
		EndCursor: blobs.PageInfo.EndCursor,
	}
	for _, n := range blobs.Nodes {
		if n.Path != "" {
			p.Paths = append(p.Paths, n.Path)
		}
	}
	return p, nil
}

// FetchBlobs retrieves raw text content for up to [PageSize] paths in one
// request. Paths whose content is unavailable (binary, oversized, or
// unresolved) are absent from the returned map.
func (c *Client) FetchBlobs(ctx context.Context, project, ref string, paths []string) (map[string]string, error) {
	if len(paths) > PageSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "blob batch of %d exceeds maximum %d", len(paths), PageSize)
	}
	if len(paths) == 0 {
		return map[string]string{}, nil
	}

	vars := map[string]any{"fullPath": project, "ref": ref, "paths": paths}
	var resp rawBlobsResponse
	if err := c.graphql(ctx, "blobs", rawBlobsQuery, vars, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "fetch %d blobs", len(paths))
	}
	if len(resp.Errors) > 0 {
		return nil, errors.New(errors.ErrCodeTransport, "graphql: %s", resp.Errors[0].Message)
	}

	result := make(map[string]string)
	for _, n := range resp.Data.Project.Repository.Blobs.Nodes {
		if n.RawTextBlob != nil {
			result[n.Path] = *n.RawTextBlob
		}
	}
	return result, nil
}

// FetchRawFile retrieves one file's raw content via the REST API. This is
// the fallback for instances without GraphQL blob support; it isolates
// failures to a single file. A missing or non-text file returns ok=false.
func (c *Client) FetchRawFile(ctx context.Context, project, ref, path string) (content string, ok bool, err error) {
	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/repository/files/%s/raw?ref=%s",
		c.baseURL, url.PathEscape(project), url.PathEscape(path), url.QueryEscape(ref))

	key := cache.Key("raw", []byte(endpoint))
	if data, hit, cerr := c.cache.Get(ctx, key); cerr == nil && hit {
		observability.Cache().OnCacheHit(ctx, "raw")
		return string(data), true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "raw")

	var body []byte
	err = httputil.RetryWithBackoff(ctx, func() error {
		req, rerr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if rerr != nil {
			return rerr
		}
		c.setHeaders(req)

		resp, rerr := c.httpClient.Do(req)
		if rerr != nil {
			return httputil.Retryable(rerr)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, rerr = io.ReadAll(resp.Body)
			return rerr
		case resp.StatusCode == http.StatusNotFound:
			body = nil
			return nil
		case resp.StatusCode >= 500:
			return httputil.Retryable(fmt.Errorf("status %d", resp.StatusCode))
		default:
			msg, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		}
	})
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeTransport, err, "fetch raw file %s", path)
	}
	if body == nil {
		return "", false, nil
	}

	_ = c.cache.Set(ctx, key, body, cache.TTLBlobs)
	return string(body), true, nil
}

// Languages returns the project's language breakdown in the order the
// backend reports it. The REST endpoint serves a JSON object of
// name -> percentage; the entry order is preserved for tie-breaking.
func (c *Client) Languages(ctx context.Context, project string) ([]LanguageShare, error) {
	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/languages", c.baseURL, url.PathEscape(project))

	key := cache.Key("languages", []byte(endpoint))
	if data, hit, cerr := c.cache.Get(ctx, key); cerr == nil && hit {
		observability.Cache().OnCacheHit(ctx, "languages")
		if shares, derr := decodeLanguages(data); derr == nil {
			return shares, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "languages")

	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, rerr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if rerr != nil {
			return rerr
		}
		c.setHeaders(req)

		resp, rerr := c.httpClient.Do(req)
		if rerr != nil {
			return httputil.Retryable(rerr)
		}
		defer resp.Body.Close()

		if rerr := checkStatus(resp.StatusCode); rerr != nil {
			return rerr
		}
		body, rerr = io.ReadAll(resp.Body)
		return rerr
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "fetch languages for %s", project)
	}

	shares, err := decodeLanguages(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "decode languages for %s", project)
	}

	_ = c.cache.Set(ctx, key, body, cache.TTLLanguages)
	return shares, nil
}

// decodeLanguages parses a {"Go": 61.5, "Ruby": 30.1} object preserving
// key order, which json.Unmarshal into a map would lose.
func decodeLanguages(data []byte) ([]LanguageShare, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var shares []LanguageShare
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := keyTok.(string)

		var share float64
		if err := dec.Decode(&share); err != nil {
			return nil, err
		}
		shares = append(shares, LanguageShare{Name: name, Share: share})
	}
	return shares, nil
}

// graphql POSTs a query and decodes the response, consulting the cache
// first. The cache key covers the full request payload.
func (c *Client) graphql(ctx context.Context, namespace, query string, vars map[string]any, v any) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	key := cache.Key(namespace, payload)
	if data, hit, cerr := c.cache.Get(ctx, key); cerr == nil && hit {
		observability.Cache().OnCacheHit(ctx, namespace)
		if derr := json.Unmarshal(data, v); derr == nil {
			return nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, namespace)

	var body []byte
	err = httputil.RetryWithBackoff(ctx, func() error {
		req, rerr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/graphql", bytes.NewReader(payload))
		if rerr != nil {
			return rerr
		}
		c.setHeaders(req)
		req.Header.Set("Content-Type", "application/json")

		start := time.Now()
		observability.HTTP().OnRequest(ctx, http.MethodPost, c.baseURL, "/api/graphql")
		resp, rerr := c.httpClient.Do(req)
		if rerr != nil {
			observability.HTTP().OnError(ctx, http.MethodPost, c.baseURL, "/api/graphql", rerr)
			return httputil.Retryable(rerr)
		}
		defer resp.Body.Close()
		observability.HTTP().OnResponse(ctx, http.MethodPost, c.baseURL, "/api/graphql", resp.StatusCode, time.Since(start))

		if rerr := checkStatus(resp.StatusCode); rerr != nil {
			return rerr
		}
		body, rerr = io.ReadAll(resp.Body)
		return rerr
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return err
	}

	ttl := cache.TTLTree
	if namespace == "blobs" {
		ttl = cache.TTLBlobs
	}
	_ = c.cache.Set(ctx, key, body, ttl)
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "credential rejected")
	case code == http.StatusForbidden:
		return errors.New(errors.ErrCodeForbidden, "access denied")
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "not found")
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("status %d", code))
	default:
		return fmt.Errorf("status %d", code)
	}
}
