package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

const searchOperation = "EmoteSearch"

// searchQuery mirrors the query the 7TV website issues. All declared variables
// must be referenced, so the default-set lookup stays even though it is unused.
const searchQuery = `query EmoteSearch($query: String, $tags: [String!]!, $sortBy: SortBy!, $filters: Filters, $page: Int, $perPage: Int!, $isDefaultSetSet: Boolean!, $defaultSetId: Id!) {
  emotes {
    search(
      query: $query
      tags: {tags: $tags, match: ANY}
      sort: {sortBy: $sortBy, order: DESCENDING}
      filters: $filters
      page: $page
      perPage: $perPage
    ) {
      items {
        id
        defaultName
        images {
          url
          mime
          size
          scale
          width
          frameCount
          __typename
        }
        inEmoteSets(emoteSetIds: [$defaultSetId]) @include(if: $isDefaultSetSet) {
          emoteSetId
          __typename
        }
        __typename
      }
      totalCount
      pageCount
      __typename
    }
    __typename
  }
}`

type searchVariables struct {
	Query           *string        `json:"query"`
	Tags            []string       `json:"tags"`
	SortBy          SortBy         `json:"sortBy"`
	Filters         map[string]any `json:"filters"`
	Page            int            `json:"page"`
	PerPage         int            `json:"perPage"`
	DefaultSetID    string         `json:"defaultSetId"`
	IsDefaultSetSet bool           `json:"isDefaultSetSet"`
}

type searchRequest struct {
	OperationName string          `json:"operationName"`
	Query         string          `json:"query"`
	Variables     searchVariables `json:"variables"`
}

// newSearchRequest builds the payload for one page. Free-text and tag filters
// are always empty.
func newSearchRequest(sortBy SortBy, page, perPage int) searchRequest {
	return searchRequest{
		OperationName: searchOperation,
		Query:         searchQuery,
		Variables: searchVariables{
			Tags:    []string{},
			SortBy:  sortBy,
			Filters: map[string]any{},
			Page:    page,
			PerPage: perPage,
		},
	}
}

type searchResponse struct {
	Data struct {
		Emotes struct {
			Search *SearchResult `json:"search"`
		} `json:"emotes"`
	} `json:"data"`
	Errors []json.RawMessage `json:"errors"`
}

// GraphQLError reports an errors array in an otherwise successful response.
type GraphQLError struct {
	SortBy SortBy
	Page   int
	Errors []json.RawMessage
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, raw := range e.Errors {
		var entry struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &entry); err == nil && entry.Message != "" {
			msgs = append(msgs, entry.Message)
		} else {
			msgs = append(msgs, string(raw))
		}
	}
	return fmt.Sprintf("graphql errors on %s page %d: %s", e.SortBy, e.Page, strings.Join(msgs, "; "))
}

// HTTPStatusError reports a non-2xx response from the search endpoint.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
