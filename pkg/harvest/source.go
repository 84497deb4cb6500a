package harvest

import (
	"context"

	"github.com/matzehuels/depharvest/pkg/gitlab"
)

// GitLabSource binds a GitLab client to one project and ref, satisfying
// TreeLister, ContentSource, and LanguageSource.
type GitLabSource struct {
	client  *gitlab.Client
	project string
	ref     string

	// UseREST fetches file contents one by one over the REST raw-file
	// endpoint instead of batched GraphQL blob queries. Slower, but
	// works against instances with GraphQL disabled.
	UseREST bool
}

// NewGitLabSource adapts a GitLab client for the given project path
// (e.g. "group/repo") and ref.
func NewGitLabSource(client *gitlab.Client, project, ref string) *GitLabSource {
	return &GitLabSource{client: client, project: project, ref: ref}
}

// ListPaths enumerates the project tree at the bound ref.
func (s *GitLabSource) ListPaths(ctx context.Context) ([]string, error) {
	return s.client.ListTree(ctx, s.project, s.ref)
}

// FetchBatch retrieves raw contents for the given paths. Paths without
// retrievable text content are absent from the result.
func (s *GitLabSource) FetchBatch(ctx context.Context, paths []string) (map[string]string, error) {
	if !s.UseREST {
		return s.client.FetchBlobs(ctx, s.project, s.ref, paths)
	}
	out := make(map[string]string, len(paths))
	for _, p := range paths {
		content, ok, err := s.client.FetchRawFile(ctx, s.project, s.ref, p)
		if err != nil {
			return nil, err
		}
		if ok {
			out[p] = content
		}
	}
	return out, nil
}

// LanguageShares reports the project's language breakdown in the order
// the API returns it.
func (s *GitLabSource) LanguageShares(ctx context.Context) ([]LanguageShare, error) {
	shares, err := s.client.Languages(ctx, s.project)
	if err != nil {
		return nil, err
	}
	out := make([]LanguageShare, len(shares))
	for i, sh := range shares {
		out[i] = LanguageShare{Name: sh.Name, Share: sh.Share}
	}
	return out, nil
}
