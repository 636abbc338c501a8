package domain

// Field identifies a filterable listing attribute. The set is closed;
// repositories map each one to their own column or document key.
type Field int

const (
	FieldIsFeatured Field = iota + 1
	FieldOwnerID
)

func (f Field) String() string {
	switch f {
	case FieldIsFeatured:
		return "isFeatured"
	case FieldOwnerID:
		return "ownerId"
	default:
		return "unknown"
	}
}

// Filter scopes a listing query. Nil options impose no restriction;
// IsFeatured=false is a real filter.
type Filter struct {
	IsFeatured *bool
	OwnerID    *string
	Limit      *int
}

// Predicate is an equality test on a single field.
type Predicate struct {
	Field Field
	Value interface{}
}

func Equals(field Field, value interface{}) Predicate {
	return Predicate{Field: field, Value: value}
}

// QueryPlan is a conjunction of predicates, newest first, optionally
// capped. A nil Limit means unlimited.
type QueryPlan struct {
	Predicates []Predicate
	Limit      *int
}

// Plan turns the filter into a query plan.
func (f Filter) Plan() QueryPlan {
	var plan QueryPlan
	if f.IsFeatured != nil {
		plan.Predicates = append(plan.Predicates, Equals(FieldIsFeatured, *f.IsFeatured))
	}
	if f.OwnerID != nil {
		plan.Predicates = append(plan.Predicates, Equals(FieldOwnerID, *f.OwnerID))
	}
	if f.Limit != nil {
		limit := *f.Limit
		if limit < 0 {
			limit = 0
		}
		plan.Limit = &limit
	}
	return plan
}

// Matches reports whether the listing satisfies every predicate.
func (p QueryPlan) Matches(l *Listing) bool {
	for _, pr := range p.Predicates {
		switch pr.Field {
		case FieldIsFeatured:
			if v, ok := pr.Value.(bool); !ok || l.IsFeatured != v {
				return false
			}
		case FieldOwnerID:
			if v, ok := pr.Value.(string); !ok || l.OwnerID != v {
				return false
			}
		default:
			return false
		}
	}
	return true
}
