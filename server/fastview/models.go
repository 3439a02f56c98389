// fastview implements a builder pattern for simple server-side views:
// convert an input data stream to a view-model, then multiplex the
// view-model to one or more views that emit element updates.
package fastview

import (
	"html/template"
)

// EleUpdate is an element id and the operations to apply to its attributes or content.
type EleUpdate struct {
	EleId string `json:"id"`
	// Op keys are attribute names or 'textContent', which sets ele.textContent instead.
	Ops []Op `json:"ops"`
}

// Op is a key and value, e.g. an svg attribute and its new value.
type Op struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TextContent is the reserved op key for replacing an element's text.
const TextContent = "textContent"

// ViewComponent is a server-side view: Parse adds its initial markup to a parent template
// and Updates streams the ele-updates that keep the client in sync.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	// Parse adds the component's template definition to parent, inheriting its func-map,
	// and returns the template name to invoke.
	Parse(parent *template.Template) (string, error)
}
