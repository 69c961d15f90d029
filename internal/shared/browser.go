package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

var startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }

// browserCommand returns the argv that opens url on the given platform.
func browserCommand(goos, url string) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{"open", url}, nil
	case "linux", "freebsd", "openbsd":
		return []string{"xdg-open", url}, nil
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", url}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// OpenBrowser opens the default system browser on url, used by `serve --open`.
func OpenBrowser(url string) error {
	argv, err := browserCommand(getRuntime(), url)
	if err != nil {
		return err
	}

	if err := startCommand(exec.Command(argv[0], argv[1:]...)); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
