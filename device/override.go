package device

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// overrideFile is the on-disk shape of an optional `--device-db` YAML file
// that lets a caller extend the compiled-in legal-combination table
// without recompiling (SPEC_FULL.md §A "Configuration"). Grounded on the
// teacher's own YAML program-config format (core.LoadProgramFileFromYAML).
type overrideFile struct {
	Parts []struct {
		Device   string   `yaml:"device"`
		Speeds   []int    `yaml:"speeds"`
		Packages []string `yaml:"packages"`
	} `yaml:"parts"`
}

// LoadOverrideFile reads a YAML file adding extra legal (speed, package)
// combinations for already-known devices. It never removes entries from
// the built-in table; it only extends it for the lifetime of the process.
func LoadOverrideFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading device override file %s: %w", path, err)
	}

	var root overrideFile
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("parsing device override file %s: %w", path, err)
	}

	for _, p := range root.Parts {
		dev, ok := deviceByName[p.Device]
		if !ok {
			return fmt.Errorf("device override file %s: unknown device %q", path, p.Device)
		}
		combo := legalCombos[dev]
		for _, s := range p.Speeds {
			combo.Speeds = appendUniqueSpeed(combo.Speeds, Speed(s))
		}
		for _, pk := range p.Packages {
			combo.Packages = appendUniquePackage(combo.Packages, Package(pk))
		}
		legalCombos[dev] = combo
	}
	return nil
}

func appendUniqueSpeed(speeds []Speed, s Speed) []Speed {
	for _, existing := range speeds {
		if existing == s {
			return speeds
		}
	}
	return append(speeds, s)
}

func appendUniquePackage(packages []Package, p Package) []Package {
	for _, existing := range packages {
		if existing == p {
			return packages
		}
	}
	return append(packages, p)
}
