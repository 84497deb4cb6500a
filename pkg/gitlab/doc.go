// Package gitlab provides an HTTP client for the GitLab API surfaces the
// harvester needs: recursive tree listing, batched raw blob content, and
// per-project language shares.
//
// # Overview
//
// Tree listing and blob content use the GraphQL API, which serves both in
// pages/batches of at most 100 entries. A REST fallback fetches raw file
// content one path at a time for instances where the GraphQL blobs field
// is unavailable.
//
// # Usage
//
//	client := gitlab.NewClient("https://gitlab.com", token, backend)
//	paths, err := client.ListTree(ctx, "gitlab-org/gitaly", "master")
//
// # Authentication
//
// A personal access token is passed as a bearer credential. Without a
// token, only public repositories can be accessed.
//
// # Caching
//
// Responses are cached through the provided cache backend keyed by request
// payload (see the pkg/cache TTL constants). Pass cache.NewNullCache() to
// disable caching.
package gitlab
