// Package template defines the seam between page renderers and the template
// engine that lays a rendered document out as a complete HTML page.
package template
