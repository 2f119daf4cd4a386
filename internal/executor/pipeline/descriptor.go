package pipeline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Language tags with a backend pipeline.
const (
	Python = "python"
	PHP    = "php"
	C      = "c"
	CPP    = "cpp"
	Go     = "go"
	Swift  = "swift"
	Java   = "java"
)

// Placeholders understood in command templates.
const (
	PlaceholderSource = "{src}"   // path of the written source file
	PlaceholderBinary = "{bin}"   // path the compiled executable is written to
	PlaceholderDir    = "{dir}"   // directory holding the source file
	PlaceholderClass  = "{class}" // public class name (class-directory layout only)
)

var placeholderPattern = regexp.MustCompile(`\{[a-z]+\}`)

// Layout decides how source code is materialised on disk.
type Layout int

const (
	// LayoutFile writes the code to one uniquely named file in the work directory.
	LayoutFile Layout = iota
	// LayoutClassDirectory writes <PublicClass><ext> into a fresh directory that also
	// serves as the classpath root.
	LayoutClassDirectory
)

func (l Layout) String() string {
	if l == LayoutClassDirectory {
		return "class-directory"
	}
	return "file"
}

// Descriptor is the static recipe for one language.
// Compile and Run are argv templates; each element may contain placeholders.
type Descriptor struct {
	Language  string
	Extension string
	Compile   []string // empty for interpreted languages
	Run       []string
	Layout    Layout
}

// Compiled reports whether the pipeline has a compile step.
func (d Descriptor) Compiled() bool {
	return len(d.Compile) > 0
}

// Validate checks that the descriptor can produce runnable commands.
func (d Descriptor) Validate() error {
	if d.Language == "" {
		return fmt.Errorf("pipeline: descriptor has no language")
	}
	if !strings.HasPrefix(d.Extension, ".") {
		return fmt.Errorf("pipeline: %s: extension %q must start with a dot", d.Language, d.Extension)
	}
	if len(d.Run) == 0 || d.Run[0] == "" {
		return fmt.Errorf("pipeline: %s: run command is empty", d.Language)
	}
	if len(d.Compile) > 0 && d.Compile[0] == "" {
		return fmt.Errorf("pipeline: %s: compile command has an empty program", d.Language)
	}
	for _, argv := range [][]string{d.Compile, d.Run} {
		for _, arg := range argv {
			for _, ph := range placeholderPattern.FindAllString(arg, -1) {
				if !d.allows(ph) {
					return fmt.Errorf("pipeline: %s: placeholder %s is not available for the %s layout",
						d.Language, ph, d.Layout)
				}
			}
		}
	}
	return nil
}

func (d Descriptor) allows(placeholder string) bool {
	switch placeholder {
	case PlaceholderSource, PlaceholderBinary, PlaceholderDir:
		return true
	case PlaceholderClass:
		return d.Layout == LayoutClassDirectory
	}
	return false
}

// String renders the commands for display, e.g. "gcc {src} -o {bin} && {bin}".
func (d Descriptor) String() string {
	run := strings.Join(d.Run, " ")
	if !d.Compiled() {
		return run
	}
	return strings.Join(d.Compile, " ") + " && " + run
}

// Toolchains names the external binaries the default descriptors invoke.
type Toolchains struct {
	Python string
	PHP    string
	GCC    string
	GXX    string
	Go     string
	Swiftc string
	Javac  string
	Java   string
}

// DefaultToolchains resolves every toolchain through PATH.
func DefaultToolchains() Toolchains {
	return Toolchains{
		Python: "python3",
		PHP:    "php",
		GCC:    "gcc",
		GXX:    "g++",
		Go:     "go",
		Swiftc: "swiftc",
		Javac:  "javac",
		Java:   "java",
	}
}

// withDefaults fills empty fields from DefaultToolchains.
func (t Toolchains) withDefaults() Toolchains {
	d := DefaultToolchains()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&t.Python, d.Python)
	fill(&t.PHP, d.PHP)
	fill(&t.GCC, d.GCC)
	fill(&t.GXX, d.GXX)
	fill(&t.Go, d.Go)
	fill(&t.Swiftc, d.Swiftc)
	fill(&t.Javac, d.Javac)
	fill(&t.Java, d.Java)
	return t
}

// DefaultDescriptors returns the built-in recipe for every supported language.
func DefaultDescriptors(tc Toolchains) map[string]Descriptor {
	tc = tc.withDefaults()
	return map[string]Descriptor{
		Python: {
			Language:  Python,
			Extension: ".py",
			Run:       []string{tc.Python, PlaceholderSource},
		},
		PHP: {
			Language:  PHP,
			Extension: ".php",
			Run:       []string{tc.PHP, PlaceholderSource},
		},
		C: {
			Language:  C,
			Extension: ".c",
			Compile:   []string{tc.GCC, PlaceholderSource, "-o", PlaceholderBinary},
			Run:       []string{PlaceholderBinary},
		},
		CPP: {
			Language:  CPP,
			Extension: ".cpp",
			Compile:   []string{tc.GXX, PlaceholderSource, "-o", PlaceholderBinary},
			Run:       []string{PlaceholderBinary},
		},
		Go: {
			Language:  Go,
			Extension: ".go",
			Compile:   []string{tc.Go, "build", "-o", PlaceholderBinary, PlaceholderSource},
			Run:       []string{PlaceholderBinary},
		},
		Swift: {
			Language:  Swift,
			Extension: ".swift",
			Compile:   []string{tc.Swiftc, PlaceholderSource, "-o", PlaceholderBinary},
			Run:       []string{PlaceholderBinary},
		},
		Java: {
			Language:  Java,
			Extension: ".java",
			Compile:   []string{tc.Javac, PlaceholderSource},
			Run:       []string{tc.Java, "-cp", PlaceholderDir, PlaceholderClass},
			Layout:    LayoutClassDirectory,
		},
	}
}

// Languages returns the sorted tags of a descriptor set.
func Languages(descriptors map[string]Descriptor) []string {
	tags := make([]string, 0, len(descriptors))
	for tag := range descriptors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// LanguageForExtension finds the tag whose descriptor uses ext (case-insensitive).
func LanguageForExtension(descriptors map[string]Descriptor, ext string) (string, bool) {
	for _, tag := range Languages(descriptors) {
		if strings.EqualFold(descriptors[tag].Extension, ext) {
			return tag, true
		}
	}
	return "", false
}

// expand substitutes placeholders element by element. Values are never re-split,
// so a path containing spaces stays a single argument.
func expand(template []string, vars map[string]string) []string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, k, v)
	}
	r := strings.NewReplacer(pairs...)

	argv := make([]string, len(template))
	for i, arg := range template {
		argv[i] = r.Replace(arg)
	}
	return argv
}
