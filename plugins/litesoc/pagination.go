package litesoc

import (
	"context"

	"github.com/Jeffail/gabs/v2"
)

// PageSize is the number of items requested per list page.
const PageSize = 100

// Cursor selects how list pages are addressed.
type Cursor string

const (
	// CursorOffset sends offset and limit, advancing offset by the page size.
	CursorOffset Cursor = "offset"
	// CursorPage sends a 1-based page number and limit. Kept for older API deployments.
	CursorPage Cursor = "page"
)

// Paginator collects every item of a list endpoint by fetching pages serially.
type Paginator struct {
	client *Client
	cursor Cursor
}

func NewPaginator(client *Client, cursor Cursor) *Paginator {
	if cursor == "" {
		cursor = CursorOffset
	}
	return &Paginator{client: client, cursor: cursor}
}

// CollectAll fetches pages of endpoint until the server reports no more items,
// and returns them in server order. A limit above zero caps the result at
// exactly limit items. The first failed page aborts collection.
func (p *Paginator) CollectAll(ctx context.Context, method, endpoint string, body, query map[string]any, limit int) ([]map[string]any, error) {
	var collected []map[string]any
	base := Query(query)
	route := routeLabel(endpoint)

	for page := 0; ; page++ {
		result, err := p.client.Request(ctx, method, endpoint, body, p.pageQuery(base, page))
		if err != nil {
			return nil, err
		}
		PagesFetched.WithLabelValues(route).Inc()

		parsed := gabs.Wrap(result.Body)
		items := pageItems(parsed)
		collected = append(collected, items...)

		done := len(collected) >= pageTotal(parsed) || len(items) < PageSize

		if limit > 0 && len(collected) >= limit {
			return collected[:limit], nil
		}
		if done {
			break
		}
	}

	if collected == nil {
		collected = []map[string]any{}
	}
	return collected, nil
}

func (p *Paginator) pageQuery(base Query, page int) Query {
	if p.cursor == CursorPage {
		return base.WithAll(map[string]any{"page": page + 1, "limit": PageSize})
	}
	return base.WithAll(map[string]any{"offset": page * PageSize, "limit": PageSize})
}

// pageItems reads the page's records from data, falling back to items.
func pageItems(parsed *gabs.Container) []map[string]any {
	for _, key := range []string{"data", "items"} {
		if raw, ok := parsed.Path(key).Data().([]any); ok {
			return toObjects(raw)
		}
	}
	return nil
}

// pageTotal reads pagination.total, then total. Missing or zero means unknown.
func pageTotal(parsed *gabs.Container) int {
	for _, path := range []string{"pagination.total", "total"} {
		if n := toInt(parsed.Path(path).Data()); n > 0 {
			return n
		}
	}
	return 0
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}
