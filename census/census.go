// Package census generates URLs for the Daybreak Census API query language.
//
// It only builds queries; it performs no network access. The auraxis root
// package executes queries, and the ps2 package wraps common collections in
// typed helpers.
package census

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// CensusBaseURL is the scheme and host every query URL starts with.
const CensusBaseURL = "https://census.daybreakgames.com"

// DefaultServiceID is used when no service ID is configured. The vendor
// rate-limits it to a handful of requests per minute, so it is only good
// for casual testing.
const DefaultServiceID = "s:example"

// Namespace identifiers for the game environments the API serves.
const (
	NamespacePC    = "ps2:v2"
	NamespacePS4US = "ps2ps4us:v2"
	NamespacePS4EU = "ps2ps4eu:v2"
)

// Verb selects the type of request to perform.
type Verb string

// Query verbs supported by the vendor.
const (
	VerbGet   Verb = "get"
	VerbCount Verb = "count"
)

// SearchModifier is a single-character prefix applied to a term value.
type SearchModifier string

// Search modifiers understood by the vendor. Equals is the default and
// renders as a bare value.
const (
	ModEquals         SearchModifier = ""
	ModLessThan       SearchModifier = "<"
	ModLessOrEqual    SearchModifier = "["
	ModGreaterThan    SearchModifier = ">"
	ModGreaterOrEqual SearchModifier = "]"
	ModStartsWith     SearchModifier = "^"
	ModContains       SearchModifier = "*"
	ModNotEqual       SearchModifier = "!"
)

// Term is a single field filter in a query.
type Term struct {
	Field    string
	Value    string
	Modifier SearchModifier
}

func (t Term) render() string {
	return t.Field + "=" + string(t.Modifier) + url.QueryEscape(t.Value)
}

// SortKey names a field to order results by.
type SortKey struct {
	Field      string
	Descending bool
}

func (s SortKey) render() string {
	if s.Descending {
		return s.Field + ":-1"
	}
	return s.Field
}

// Query describes a single request against a collection. The zero value is
// not usable; create queries with NewQuery.
//
// Setters return the query so calls can be chained. Repeated calls to the
// same setter overwrite the previous value; Where and AddJoin accumulate.
type Query struct {
	collection string
	namespace  string
	serviceID  string

	terms []Term
	joins []*Join
	tree  *Tree

	show            []string
	hide            []string
	sort            []SortKey
	has             []string
	resolve         []string
	caseSensitive   *bool
	limit           int
	limitPerDB      int
	start           int
	includeNull     bool
	lang            string
	exactMatchFirst bool
	distinct        string
	retry           *bool
	timing          bool
}

// NewQuery returns a query against the given collection. An empty collection
// is valid and lists the collections available in the namespace.
func NewQuery(collection string, terms ...Term) *Query {
	return &Query{
		collection: collection,
		namespace:  NamespacePC,
		serviceID:  DefaultServiceID,
		terms:      terms,
	}
}

// Collection returns the collection this query targets.
func (q *Query) Collection() string { return q.collection }

// SetNamespace overrides the game namespace, e.g. NamespacePS4US.
func (q *Query) SetNamespace(namespace string) *Query {
	q.namespace = namespace
	return q
}

// SetServiceID sets the service ID used for the request. IDs are passed in
// the "s:name" form the vendor issues them in.
func (q *Query) SetServiceID(serviceID string) *Query {
	q.serviceID = serviceID
	return q
}

// Where adds an equality term for the given field.
func (q *Query) Where(field string, value any) *Query {
	return q.WhereOp(field, value, ModEquals)
}

// WhereOp adds a term with an explicit search modifier.
func (q *Query) WhereOp(field string, value any, mod SearchModifier) *Query {
	q.terms = append(q.terms, Term{Field: field, Value: Stringify(value), Modifier: mod})
	return q
}

// Show restricts the returned fields to the given list. Mutually exclusive
// with Hide; the last one set wins.
func (q *Query) Show(fields ...string) *Query {
	q.show = fields
	q.hide = nil
	return q
}

// Hide removes the given fields from the response.
func (q *Query) Hide(fields ...string) *Query {
	q.hide = fields
	q.show = nil
	return q
}

// SortBy orders results by the given keys.
func (q *Query) SortBy(keys ...SortKey) *Query {
	q.sort = keys
	return q
}

// Has filters out records that lack the given fields.
func (q *Query) Has(fields ...string) *Query {
	q.has = fields
	return q
}

// Resolve attaches vendor-defined related data to each record. Joins are
// more flexible; resolves only work on the handful of names the collection
// documents.
func (q *Query) Resolve(names ...string) *Query {
	q.resolve = names
	return q
}

// Case sets whether string terms match case-sensitively. The vendor default
// is true; disabling it slows the query down.
func (q *Query) Case(sensitive bool) *Query {
	q.caseSensitive = &sensitive
	return q
}

// Limit caps the number of returned records. The vendor default is 1.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// LimitPerDB caps returned records per backing database. Only meaningful
// for the character collection, which is sharded.
func (q *Query) LimitPerDB(n int) *Query {
	q.limitPerDB = n
	return q
}

// Start skips the first n records.
func (q *Query) Start(n int) *Query {
	q.start = n
	return q
}

// IncludeNull makes the response carry keys for fields with no value.
func (q *Query) IncludeNull(include bool) *Query {
	q.includeNull = include
	return q
}

// Lang restricts localised strings to a single locale code such as "en".
func (q *Query) Lang(locale string) *Query {
	q.lang = locale
	return q
}

// ExactMatchFirst moves exact matches of a ModStartsWith or ModContains
// term to the top of the result list.
func (q *Query) ExactMatchFirst(enabled bool) *Query {
	q.exactMatchFirst = enabled
	return q
}

// Distinct returns the distinct values of one field (up to 20000).
func (q *Query) Distinct(field string) *Query {
	q.distinct = field
	return q
}

// Retry disables the vendor-side retry when set to false, failing faster.
func (q *Query) Retry(retry bool) *Query {
	q.retry = &retry
	return q
}

// Timing includes query timing information in the response.
func (q *Query) Timing(enabled bool) *Query {
	q.timing = enabled
	return q
}

// AddJoin joins another collection into the response and returns the join
// so it can be configured and nested.
func (q *Query) AddJoin(collection string) *Join {
	j := newJoin(collection)
	q.joins = append(q.joins, j)
	return j
}

// SetTree reformats the response as a tree keyed on the given field.
func (q *Query) SetTree(field string) *Tree {
	q.tree = &Tree{Field: field}
	return q.tree
}

// URL renders the request URL for the given verb.
func (q *Query) URL(verb Verb) *url.URL {
	u, err := url.Parse(CensusBaseURL)
	if err != nil {
		// CensusBaseURL is a constant; this cannot happen.
		panic(err)
	}
	u.Path = "/" + q.serviceID + "/" + string(verb) + "/" + q.namespace
	if q.collection != "" {
		u.Path += "/" + q.collection
	}
	u.RawQuery = q.rawQuery()
	return u
}

// String renders the get URL, satisfying fmt.Stringer for logging.
func (q *Query) String() string {
	return q.URL(VerbGet).String()
}

// rawQuery renders terms in insertion order followed by commands in a fixed
// order. The vendor does not care about ordering; keeping it deterministic
// makes URLs comparable in tests and logs.
func (q *Query) rawQuery() string {
	parts := make([]string, 0, len(q.terms)+8)
	for _, t := range q.terms {
		parts = append(parts, t.render())
	}
	if len(q.show) > 0 {
		parts = append(parts, "c:show="+strings.Join(q.show, ","))
	}
	if len(q.hide) > 0 {
		parts = append(parts, "c:hide="+strings.Join(q.hide, ","))
	}
	if len(q.sort) > 0 {
		keys := make([]string, len(q.sort))
		for i, s := range q.sort {
			keys[i] = s.render()
		}
		parts = append(parts, "c:sort="+strings.Join(keys, ","))
	}
	if len(q.has) > 0 {
		parts = append(parts, "c:has="+strings.Join(q.has, ","))
	}
	if len(q.resolve) > 0 {
		parts = append(parts, "c:resolve="+strings.Join(q.resolve, ","))
	}
	if q.caseSensitive != nil {
		parts = append(parts, "c:case="+strconv.FormatBool(*q.caseSensitive))
	}
	if q.limit > 0 {
		parts = append(parts, "c:limit="+strconv.Itoa(q.limit))
	}
	if q.limitPerDB > 0 {
		parts = append(parts, "c:limitPerDB="+strconv.Itoa(q.limitPerDB))
	}
	if q.start > 0 {
		parts = append(parts, "c:start="+strconv.Itoa(q.start))
	}
	if q.includeNull {
		parts = append(parts, "c:includeNull=true")
	}
	if q.lang != "" {
		parts = append(parts, "c:lang="+q.lang)
	}
	if len(q.joins) > 0 {
		joins := make([]string, len(q.joins))
		for i, j := range q.joins {
			joins[i] = j.render()
		}
		parts = append(parts, "c:join="+strings.Join(joins, ","))
	}
	if q.tree != nil {
		parts = append(parts, "c:tree="+q.tree.render())
	}
	if q.timing {
		parts = append(parts, "c:timing=true")
	}
	if q.exactMatchFirst {
		parts = append(parts, "c:exactMatchFirst=true")
	}
	if q.distinct != "" {
		parts = append(parts, "c:distinct="+q.distinct)
	}
	if q.retry != nil {
		parts = append(parts, "c:retry="+strconv.FormatBool(*q.retry))
	}
	return strings.Join(parts, "&")
}

// Stringify renders a term value the way the vendor expects: booleans as
// "true"/"false", numbers in decimal, everything else via fmt.
func Stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
