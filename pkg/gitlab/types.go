package gitlab

// LanguageShare is one entry of a project's language breakdown.
// Shares are percentages as reported by the API; order is the backend's
// response order, which callers rely on for stable tie-breaking.
type LanguageShare struct {
	Name  string
	Share float64
}

// treePage is one page of the recursive tree listing.
type treePage struct {
	Paths     []string
	HasNext   bool
	EndCursor string
}

// graphqlRequest is the POST body for the GraphQL endpoint.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphqlError is a single error entry in a GraphQL response.
type graphqlError struct {
	Message string `json:"message"`
}

// listTreeResponse mirrors the tree(...)->blobs(...) query shape.
type listTreeResponse struct {
	Data struct {
		Project struct {
			Repository struct {
				Tree struct {
					Blobs struct {
						PageInfo struct {
							HasNextPage bool   `json:"hasNextPage"`
							EndCursor   string `json:"endCursor"`
						} `json:"pageInfo"`
						Nodes []struct {
							Path string `json:"path"`
						} `json:"nodes"`
					} `json:"blobs"`
				} `json:"tree"`
			} `json:"repository"`
		} `json:"project"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// rawBlobsResponse mirrors the blobs(paths: ...) query shape.
// RawTextBlob is null when the file is binary or exceeds the size limit.
type rawBlobsResponse struct {
	Data struct {
		Project struct {
			Repository struct {
				Blobs struct {
					Nodes []struct {
						Path        string  `json:"path"`
						RawTextBlob *string `json:"rawTextBlob"`
					} `json:"nodes"`
				} `json:"blobs"`
			} `json:"repository"`
		} `json:"project"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}
