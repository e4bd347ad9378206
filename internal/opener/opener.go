// Package opener hands a generated document to the desktop's default viewer.
package opener

import (
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/fx"
)

type Opener interface {
	Open(path string) error
}

type System struct {
	goos  string
	start func(name string, args ...string) error
}

func New() Opener {
	return &System{
		goos: runtime.GOOS,
		start: func(name string, args ...string) error {
			// the viewer outlives us; do not wait for it
			return exec.Command(name, args...).Start()
		},
	}
}

func (s *System) Open(path string) error {
	name, args := command(s.goos, path)
	if err := s.start(name, args...); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}

func command(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

var Module = fx.Module("opener",
	fx.Provide(New),
)
