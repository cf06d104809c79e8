package fetchkit

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams expresses common list options (pagination, ordering, label
// selection, includes, sparse fields, filters) for endpoints that take them.
type QueryParams struct {
	Page          int
	PerPage       int
	OrderBy       string
	LabelSelector string
	Include       []string
	Fields        map[string][]string
	Filters       map[string][]string
}

// NewQueryParams creates an empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Fields:  make(map[string][]string),
		Filters: make(map[string][]string),
	}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithOrderBy sets the ordering field; prefix with "-" for descending.
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithLabelSelector sets the label selector expression.
func (q *QueryParams) WithLabelSelector(selector string) *QueryParams {
	q.LabelSelector = selector

	return q
}

// WithInclude appends related resources to include.
func (q *QueryParams) WithInclude(includes ...string) *QueryParams {
	q.Include = append(q.Include, includes...)

	return q
}

// WithFields replaces the selected fields for a resource type.
func (q *QueryParams) WithFields(resource string, fields ...string) *QueryParams {
	if q.Fields == nil {
		q.Fields = make(map[string][]string)
	}

	q.Fields[resource] = fields

	return q
}

// WithFilter appends filter values for a key.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}

// ToValues renders the parameters as URL query values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}

	if q.OrderBy != "" {
		values.Set("order_by", q.OrderBy)
	}

	if q.LabelSelector != "" {
		values.Set("label_selector", q.LabelSelector)
	}

	if len(q.Include) > 0 {
		values.Set("include", strings.Join(q.Include, ","))
	}

	for resource, fields := range q.Fields {
		if len(fields) > 0 {
			values.Set("fields["+resource+"]", strings.Join(fields, ","))
		}
	}

	for key, filterValues := range q.Filters {
		if len(filterValues) > 0 {
			values.Set(key, strings.Join(filterValues, ","))
		}
	}

	return values
}

// Clone returns a deep copy of the parameters.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := &QueryParams{
		Page:          q.Page,
		PerPage:       q.PerPage,
		OrderBy:       q.OrderBy,
		LabelSelector: q.LabelSelector,
		Include:       append([]string(nil), q.Include...),
		Fields:        make(map[string][]string, len(q.Fields)),
		Filters:       make(map[string][]string, len(q.Filters)),
	}

	for key, values := range q.Fields {
		clone.Fields[key] = append([]string(nil), values...)
	}

	for key, values := range q.Filters {
		clone.Filters[key] = append([]string(nil), values...)
	}

	return clone
}
