package component

import "github.com/jakecoffman/cp"

// Trail is a bounded history of recent body positions, oldest first.
type Trail struct {
	Points []cp.Vector
	Max    int
}

// Push appends p, dropping the oldest point once Max is reached.
func (t *Trail) Push(p cp.Vector) {
	if t == nil || t.Max <= 0 {
		return
	}
	if len(t.Points) >= t.Max {
		copy(t.Points, t.Points[1:])
		t.Points[len(t.Points)-1] = p
		return
	}
	t.Points = append(t.Points, p)
}

// Reset clears the history while keeping the backing array.
func (t *Trail) Reset() {
	if t == nil {
		return
	}
	t.Points = t.Points[:0]
}

func (t *Trail) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Points)
}

var TrailComponent = NewComponent[Trail]()
