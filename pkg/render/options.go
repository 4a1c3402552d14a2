package render

// RenderOptions carry per-request presentation choices without touching the
// document itself.
type RenderOptions struct {
	// ThemeName and ThemeVariant select marker styling from the renderer's
	// theme selector. Both empty means the renderer defaults.
	ThemeName    string
	ThemeVariant string
	// Markers overrides theme resolution entirely.
	Markers *Markers
}
