package model

// Order controls event scan direction. Both orders are by ID, the only safe
// total order.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// EventFilter selects events from the log. Zero values mean "no constraint".
type EventFilter struct {
	Kinds            []Kind
	Subject          *int64 // match this subject (use SystemSubject for NULL)
	SystemSubject    bool   // match only events with no subject
	AfterID          int64  // exclusive lower bound on ID
	Annotation       string // exact annotation match
	AnnotationPrefix string // annotation prefix match
	Order            Order  // default OrderAsc
	Limit            int
}
