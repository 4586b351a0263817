package core

// InstallReport aggregates the outcome of one install pass.
// Failed holds dependency names as the user wrote them (not their
// aliased package names), since that is what they can act on.
type InstallReport struct {
	Installed []string
	Skipped   []string
	Failed    []string
}

// InstallDependencies installs the full dependency set into the
// environment, one package at a time.
//
// For each dependency (lexical order, for stable messaging only):
//   - skip it if it is already importable in the environment — this is
//     what makes handing the installer the full current set idempotent;
//   - otherwise install it under its aliased package name;
//   - on failure, record the name and keep going. Failures are
//     independent per dependency; there is no early abort.
func InstallDependencies(rt Runtime, envDir string, deps DependencySet, aliases map[string]string, p *Printer) *InstallReport {
	report := &InstallReport{}

	for _, name := range deps.Sorted() {
		if rt.IsAvailable(envDir, name) {
			report.Skipped = append(report.Skipped, name)
			continue
		}

		pkg := name
		if mapped, ok := aliases[name]; ok {
			pkg = mapped
		}

		if pkg == name {
			p.Infof("Installing %s", name)
		} else {
			p.Infof("Installing %s (package %s)", name, pkg)
		}

		if err := rt.Install(envDir, pkg); err != nil {
			p.Errorf("installing %s: %v", name, err)
			report.Failed = append(report.Failed, name)
			continue
		}
		report.Installed = append(report.Installed, name)
	}

	return report
}
