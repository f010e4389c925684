// Package tools probes the environment for the external executables
// textsift delegates extraction and OCR to.
package tools

import "os/exec"

// Capability names reported by the tools command.
const (
	CapDirectExtract = "direct-extract"
	CapOCRPrimary    = "ocr-primary"
	CapOCRSecondary  = "ocr-secondary"
)

// Prober resolves executable names, mirroring exec.LookPath. Injectable so
// tests can simulate tool presence or absence without touching PATH.
type Prober interface {
	LookPath(name string) (string, error)
}

// PathProber resolves executables against the real PATH.
type PathProber struct{}

func (PathProber) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Available reports whether the named executable resolves.
func Available(p Prober, name string) bool {
	if name == "" {
		return false
	}
	_, err := p.LookPath(name)
	return err == nil
}

// Availability maps executable name to presence. Computed fresh per
// process run, never cached across runs.
type Availability map[string]bool

// Snapshot probes each named executable once.
func Snapshot(p Prober, names ...string) Availability {
	av := make(Availability, len(names))
	for _, n := range names {
		av[n] = Available(p, n)
	}
	return av
}

// Any reports whether at least one of the named executables is present.
func (a Availability) Any(names ...string) bool {
	for _, n := range names {
		if a[n] {
			return true
		}
	}
	return false
}

// Tool pairs a capability with the executable configured to provide it.
type Tool struct {
	Capability string
	Executable string
}

// Status describes one external tool for the tools command.
type Status struct {
	Capability string `json:"capability" yaml:"capability"`
	Executable string `json:"executable" yaml:"executable"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	Present    bool   `json:"present" yaml:"present"`
}

// Report resolves each tool's executable and returns statuses in input order.
func Report(p Prober, tls []Tool) []Status {
	statuses := make([]Status, 0, len(tls))
	for _, tl := range tls {
		st := Status{Capability: tl.Capability, Executable: tl.Executable}
		if path, err := p.LookPath(tl.Executable); err == nil {
			st.Path = path
			st.Present = true
		}
		statuses = append(statuses, st)
	}
	return statuses
}
