// Package catalog defines the template model and the consolidated catalog
// payload shared by the remote template store and the bundled fallback. JSON
// and YAML payloads are accepted; markdown templates are converted to HTML on
// decode so downstream stages only ever see markup.
package catalog
