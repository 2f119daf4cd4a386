package pipeline

import (
	"fmt"
	"os"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// languagesFile is the on-disk shape of a languages override file:
//
//	languages:
//	  c:
//	    compile: "clang {src} -o {bin}"
//	    run: "{bin}"
//	  python:
//	    run: "/opt/python3.12/bin/python3 {src}"
type languagesFile struct {
	Languages map[string]commandOverride `yaml:"languages"`
}

// commandOverride uses pointers so "key absent" (keep the default) differs from
// an explicit empty string.
type commandOverride struct {
	Compile *string `yaml:"compile"`
	Run     *string `yaml:"run"`
}

// LoadDescriptors reads a languages file and applies it on top of base.
// Only languages present in base can be overridden. base is not modified.
func LoadDescriptors(path string, base map[string]Descriptor) (map[string]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: reading languages file: %w", err)
	}
	return ParseDescriptors(data, base)
}

// ParseDescriptors applies YAML overrides in data to a copy of base.
func ParseDescriptors(data []byte, base map[string]Descriptor) (map[string]Descriptor, error) {
	var file languagesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("pipeline: parsing languages file: %w", err)
	}

	out := make(map[string]Descriptor, len(base))
	for tag, d := range base {
		out[tag] = d
	}

	for tag, override := range file.Languages {
		d, ok := out[tag]
		if !ok {
			return nil, fmt.Errorf("pipeline: languages file: unknown language %q", tag)
		}
		if override.Compile != nil {
			argv, err := splitCommand(*override.Compile)
			if err != nil {
				return nil, fmt.Errorf("pipeline: languages file: %s compile: %w", tag, err)
			}
			// An explicit empty compile command turns the language into an interpreted one.
			d.Compile = argv
		}
		if override.Run != nil {
			argv, err := splitCommand(*override.Run)
			if err != nil {
				return nil, fmt.Errorf("pipeline: languages file: %s run: %w", tag, err)
			}
			if len(argv) == 0 {
				return nil, fmt.Errorf("pipeline: languages file: %s run command is empty", tag)
			}
			d.Run = argv
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		out[tag] = d
	}
	return out, nil
}

// splitCommand tokenises a command line the way a POSIX shell would, without
// running one. Placeholders are substituted later, per token.
func splitCommand(s string) ([]string, error) {
	argv, err := shlex.Split(s)
	if err != nil {
		return nil, err
	}
	return argv, nil
}
