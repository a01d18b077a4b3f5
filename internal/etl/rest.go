package etl

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/BartekS5/connector/internal/api"
	"github.com/BartekS5/connector/pkg/logger"
	"github.com/BartekS5/connector/pkg/models"
	"github.com/BartekS5/connector/pkg/utils"
)

// RESTExtractor pulls raw records from one REST endpoint, a page at a
// time, driving whichever pagination style the mapping declares.
type RESTExtractor struct {
	Client   *api.Client
	Endpoint models.EndpointConfig
	Since    time.Time
}

func NewRESTExtractor(client *api.Client, endpoint models.EndpointConfig, since time.Time) *RESTExtractor {
	return &RESTExtractor{Client: client, Endpoint: endpoint, Since: since}
}

func (r *RESTExtractor) Extract(ctx context.Context, batchSize int, cursor string) ([]map[string]interface{}, string, error) {
	query, err := r.buildQuery(batchSize, cursor)
	if err != nil {
		return nil, "", err
	}

	var body interface{}
	if err := r.Client.GetJSON(ctx, r.Endpoint.Path, query, &body); err != nil {
		return nil, "", fmt.Errorf("endpoint %s: %w", r.Endpoint.Name, err)
	}

	records, err := r.parsePage(body)
	if err != nil {
		return nil, "", fmt.Errorf("endpoint %s: %w", r.Endpoint.Name, err)
	}

	next := r.nextCursor(body, cursor, batchSize, len(records))
	return records, next, nil
}

// buildQuery assembles the query string for one page request: fixed
// params, the since filter, the page size, and the cursor position.
func (r *RESTExtractor) buildQuery(batchSize int, cursor string) (url.Values, error) {
	q := url.Values{}
	for k, v := range r.Endpoint.Params {
		q.Set(k, v)
	}
	if r.Endpoint.SinceParam != "" && !r.Since.IsZero() {
		q.Set(r.Endpoint.SinceParam, r.Since.UTC().Format(time.RFC3339))
	}

	p := r.Endpoint.Pagination
	if p.LimitParam != "" {
		q.Set(p.LimitParam, strconv.Itoa(batchSize))
	}

	switch p.Style {
	case models.PaginationOffset:
		q.Set(p.OffsetParam, strconv.Itoa(utils.GetIntOffset(cursor)))
	case models.PaginationPage:
		q.Set(p.PageParam, strconv.Itoa(r.pageNumber(cursor)))
	case models.PaginationCursor:
		if cursor != "" {
			q.Set(p.CursorParam, cursor)
		}
	case models.PaginationNone, "":
	default:
		return nil, fmt.Errorf("unknown pagination style %q", p.Style)
	}
	return q, nil
}

// parsePage walks the configured data path and returns the record array.
// A missing path or a non-array value is an error; non-object entries are
// skipped with a warning.
func (r *RESTExtractor) parsePage(body interface{}) ([]map[string]interface{}, error) {
	data, ok := utils.LookupPath(body, r.Endpoint.DataPath)
	if !ok {
		return nil, fmt.Errorf("response has no data at path %q", r.Endpoint.DataPath)
	}

	items, ok := data.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a JSON array at path %q, got %T", r.Endpoint.DataPath, data)
	}

	records := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]interface{})
		if !ok {
			logger.Warnf("Skipping non-object record (%T) from endpoint %s", item, r.Endpoint.Name)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// nextCursor computes the cursor for the following page. "" means done.
// Offset and page styles stop when a page comes back short; cursor style
// follows the token in the response.
func (r *RESTExtractor) nextCursor(body interface{}, cursor string, batchSize, count int) string {
	p := r.Endpoint.Pagination
	switch p.Style {
	case models.PaginationOffset:
		if count < batchSize {
			return ""
		}
		return strconv.Itoa(utils.GetIntOffset(cursor) + count)
	case models.PaginationPage:
		if count < batchSize {
			return ""
		}
		return strconv.Itoa(r.pageNumber(cursor) + 1)
	case models.PaginationCursor:
		val, ok := utils.LookupPath(body, p.CursorPath)
		if !ok || val == nil {
			return ""
		}
		next, _ := val.(string)
		return next
	default:
		return ""
	}
}

func (r *RESTExtractor) pageNumber(cursor string) int {
	start := r.Endpoint.Pagination.StartPage
	if start <= 0 {
		start = 1
	}
	if cursor == "" {
		return start
	}
	n, err := strconv.Atoi(cursor)
	if err != nil {
		return start
	}
	return n
}
