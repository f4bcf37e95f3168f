package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"plugin"
	"strings"
	"time"
)

// loadRegistrations compiles the package at pkgdir into a Go plugin and opens
// it in this process. The plugin shares this binary's package instances, so
// the target package's init-time Register calls land in the default engine.
func loadRegistrations(pkgdir string, logf func(string, ...any)) error {
	importPath, err := detectImportPath(pkgdir)
	if err != nil {
		return err
	}
	logf("export: pkgdir=%s importPath=%s", pkgdir, importPath)

	// The plugin entrypoint is a wrapper package that blank-imports the
	// target, written inside the module workspace so its imports resolve.
	tmp := filepath.Join(pkgdir, ".recwire_plugin_wrapper")
	_ = os.RemoveAll(tmp)
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return fmt.Errorf("mkdir wrapper: %w", err)
	}
	defer os.RemoveAll(tmp)
	wrapper := "package main\n\nimport _ \"" + importPath + "\"\n\nfunc main() {}\n"
	if err := os.WriteFile(filepath.Join(tmp, "main.go"), []byte(wrapper), 0o644); err != nil {
		return fmt.Errorf("write wrapper: %w", err)
	}
	logf("wrote wrapper: %s", filepath.Join(tmp, "main.go"))

	so := filepath.Join(os.TempDir(), fmt.Sprintf("recwire_export_%d.so", time.Now().UnixNano()))
	defer os.Remove(so)
	tmpArg := tmp
	if !strings.HasPrefix(tmpArg, "./") && !filepath.IsAbs(tmpArg) {
		tmpArg = "./" + tmpArg
	}
	logf("building plugin: %s", so)
	cmd := exec.Command("go", "build", "-buildmode=plugin", "-o", so, tmpArg)
	cmd.Env = os.Environ()
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("build plugin: %w\n%s", err, out)
	}
	logf("built plugin: %s", so)

	if _, err := plugin.Open(so); err != nil {
		return fmt.Errorf("open plugin: %w", err)
	}
	logf("opened plugin: %s", so)
	return nil
}

// detectImportPath resolves pkgdir to its import path using `go list`.
func detectImportPath(pkgdir string) (string, error) {
	cmd := exec.Command("go", "list", ".")
	cmd.Dir = pkgdir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("resolve import path for %s: %w", pkgdir, err)
	}
	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", fmt.Errorf("no Go package found at %s", pkgdir)
	}
	return path, nil
}
