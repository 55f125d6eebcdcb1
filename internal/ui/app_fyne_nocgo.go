//go:build fyne && !cgo

package ui

import (
	"fmt"

	"termcard/internal/render"
)

// Run informs the user that the Fyne viewer requires cgo (OpenGL) and a C toolchain.
// This stub is compiled when the build uses -tags fyne but CGO is disabled.
func Run(_ string, _ render.Layout) error {
	return fmt.Errorf("Fyne viewer requires cgo (OpenGL). Enable cgo and install a C toolchain, then run: CGO_ENABLED=1 go run -tags fyne ./cmd/termcard coords <image>")
}
