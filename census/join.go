package census

import "strings"

// Join attaches records from another collection to each result record.
//
// On and To name the fields to match between parent and child; when unset
// the vendor matches on the shared ID field. Terms filter which child
// records attach, and InjectAt controls the key the child appears under.
type Join struct {
	collection string
	on         string
	to         string
	list       bool
	outer      *bool
	show       []string
	hide       []string
	injectAt   string
	terms      []Term
	children   []*Join
}

func newJoin(collection string) *Join {
	return &Join{collection: collection}
}

// OnField sets the parent-side field to match on.
func (j *Join) OnField(field string) *Join {
	j.on = field
	return j
}

// ToField sets the child-side field to match against.
func (j *Join) ToField(field string) *Join {
	j.to = field
	return j
}

// IsList marks the join as one-to-many, attaching a list of records.
func (j *Join) IsList(isList bool) *Join {
	j.list = isList
	return j
}

// Outer sets whether parent records without a match are kept (outer join,
// the vendor default) or dropped (inner join).
func (j *Join) Outer(outer bool) *Join {
	j.outer = &outer
	return j
}

// Show restricts the joined record to the given fields.
func (j *Join) Show(fields ...string) *Join {
	j.show = fields
	j.hide = nil
	return j
}

// Hide removes fields from the joined record.
func (j *Join) Hide(fields ...string) *Join {
	j.hide = fields
	j.show = nil
	return j
}

// InjectAt sets the key the joined data is attached under.
func (j *Join) InjectAt(name string) *Join {
	j.injectAt = name
	return j
}

// Where adds an equality term filtering the joined records.
func (j *Join) Where(field string, value any) *Join {
	return j.WhereOp(field, value, ModEquals)
}

// WhereOp adds a join term with an explicit search modifier.
func (j *Join) WhereOp(field string, value any, mod SearchModifier) *Join {
	j.terms = append(j.terms, Term{Field: field, Value: Stringify(value), Modifier: mod})
	return j
}

// AddJoin nests another join inside this one and returns it.
func (j *Join) AddJoin(collection string) *Join {
	child := newJoin(collection)
	j.children = append(j.children, child)
	return child
}

// render serializes the join in the vendor's caret-delimited format, with
// nested joins in parentheses.
func (j *Join) render() string {
	var b strings.Builder
	b.WriteString(j.collection)
	if j.on != "" {
		b.WriteString("^on:" + j.on)
	}
	if j.to != "" {
		b.WriteString("^to:" + j.to)
	}
	if j.list {
		b.WriteString("^list:1")
	}
	if j.outer != nil && !*j.outer {
		b.WriteString("^outer:0")
	}
	if len(j.show) > 0 {
		b.WriteString("^show:" + strings.Join(j.show, "'"))
	}
	if len(j.hide) > 0 {
		b.WriteString("^hide:" + strings.Join(j.hide, "'"))
	}
	if j.injectAt != "" {
		b.WriteString("^inject_at:" + j.injectAt)
	}
	if len(j.terms) > 0 {
		terms := make([]string, len(j.terms))
		for i, t := range j.terms {
			// Join terms are structure inside the c:join value, not
			// top-level query parameters, so they stay unescaped.
			terms[i] = t.Field + "=" + string(t.Modifier) + t.Value
		}
		b.WriteString("^terms:" + strings.Join(terms, "'"))
	}
	if len(j.children) > 0 {
		children := make([]string, len(j.children))
		for i, c := range j.children {
			children[i] = c.render()
		}
		b.WriteString("(" + strings.Join(children, ",") + ")")
	}
	return b.String()
}

// Tree reshapes a flat result list into a tree keyed on one field.
type Tree struct {
	Field  string
	IsList bool
	Prefix string
	Start  string
}

func (t *Tree) render() string {
	var b strings.Builder
	b.WriteString(t.Field)
	if t.IsList {
		b.WriteString("^list:1")
	}
	if t.Prefix != "" {
		b.WriteString("^prefix:" + t.Prefix)
	}
	if t.Start != "" {
		b.WriteString("^start:" + t.Start)
	}
	return b.String()
}
