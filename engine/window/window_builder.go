package window

// defaultTitle is used when the configured title is empty.
const defaultTitle = "oxy-scene"

// WindowBuilderOption configures an engineWindow before it is spawned.
// Options that receive a zero or negative size keep the default.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text. An empty title keeps the default.
//
// Parameters:
//   - title: the window title
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		if title != "" {
			w.title = title
		}
	}
}

// WithSize sets the initial client area in pixels.
//
// Parameters:
//   - width: initial width
//   - height: initial height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		setPositive(&w.width, width)
		setPositive(&w.height, height)
	}
}

// WithMinSize sets the smallest size the user can resize the window to.
//
// Parameters:
//   - width: minimum width
//   - height: minimum height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		setPositive(&w.minWidth, width)
		setPositive(&w.minHeight, height)
	}
}

// WithMaxSize sets the largest size the user can resize the window to.
//
// Parameters:
//   - width: maximum width
//   - height: maximum height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		setPositive(&w.maxWidth, width)
		setPositive(&w.maxHeight, height)
	}
}

func setPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
