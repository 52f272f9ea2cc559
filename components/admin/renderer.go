package admin

import "io"

// Renderer is the slice of go-template's engine the admin page needs: render a
// named template with the page data, optionally streaming into out.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}
