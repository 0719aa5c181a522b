package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87 // W key (ASCII)
	KeyA     = 65 // A key (ASCII)
	KeyS     = 83 // S key (ASCII)
	KeyD     = 68 // D key (ASCII)
	KeyQ     = 81 // Q key (ASCII)
	KeyE     = 69 // E key (ASCII)
	KeyC     = 67 // C key (ASCII)
	KeyI     = 73 // I key (ASCII)
	KeyK     = 75 // K key (ASCII)
	KeyN     = 78 // N key (ASCII)
	KeyP     = 80 // P key (ASCII)
	KeyU     = 85 // U key (ASCII)
	KeyJ     = 74 // J key (ASCII)
	KeyY     = 89 // Y key (ASCII)
	KeyH     = 72 // H key (ASCII)
	KeySpace = 32 // Spacebar (ASCII)

	KeyMinus = 45 // - key (ASCII)
	KeyEqual = 61 // = key (ASCII)

	KeyEsc = 256 // Escape key (GLFW)
)

// Additional non-printable keys
const (
	KeyRight      = 262 // Right arrow (GLFW)
	KeyLeft       = 263 // Left arrow (GLFW)
	KeyDown       = 264 // Down arrow (GLFW)
	KeyUp         = 265 // Up arrow (GLFW)
	KeyLeftShift  = 340 // Left Shift (GLFW)
	KeyRightShift = 344 // Right Shift (GLFW)
)
