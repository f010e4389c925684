package tools

import "fmt"

// MockProber is a Prober for testing, resolving from a fixed set.
type MockProber struct {
	Present map[string]string // name -> resolved path
}

func (m MockProber) LookPath(name string) (string, error) {
	if path, ok := m.Present[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("executable %q not found", name)
}
