// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"path"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

type EntryKind string

const (
	KindSpringBootApplication EntryKind = "SPRING_BOOT_APPLICATION"
	KindMainMethod            EntryKind = "MAIN_METHOD"
	KindApplicationRunner     EntryKind = "APPLICATION_RUNNER"
	KindCommandLineRunner     EntryKind = "COMMAND_LINE_RUNNER"
	KindRestHandler           EntryKind = "REST_HANDLER"
)

// EntryKindPrecedence orders the kinds that may become the primary entry point kind.
var EntryKindPrecedence = []EntryKind{
	KindSpringBootApplication,
	KindMainMethod,
	KindApplicationRunner,
	KindCommandLineRunner,
}

// PrimaryEntryKind returns the first kind in precedence order that was found, or "" when none was.
func PrimaryEntryKind(found map[EntryKind]bool) EntryKind {
	for _, kind := range EntryKindPrecedence {
		if found[kind] {
			return kind
		}
	}

	return ""
}

// EntryPoint is a location where the program starts or receives requests.
type EntryPoint struct {
	FilePath      string    `json:"filePath"`
	QualifiedName string    `json:"qualifiedName"`
	MemberName    string    `json:"memberName"`
	Kind          EntryKind `json:"kind"`
}

// EntryPointInfo holds the primary entry point kind and every entry point found. The primary entry point, if any,
// comes first.
type EntryPointInfo struct {
	PrimaryKind EntryKind    `json:"primaryKind,omitempty"`
	Primary     *EntryPoint  `json:"primary,omitempty"`
	EntryPoints []EntryPoint `json:"entryPoints"`
}

type EntryPointResult struct {
	Info EntryPointInfo
}

// Detections is always empty: entry points are reported through EntryPointInfo.
func (r *EntryPointResult) Detections() []Detection {
	return nil
}

func (r *EntryPointResult) merge(p *Profile) {
	p.EntryPoints = r.Info
}

var (
	springBootApplicationRegex = regexp.MustCompile(`@SpringBootApplication`)
	mainMethodRegex            = regexp.MustCompile(`public\s+static\s+void\s+main\s*\(\s*String\s*\[\s*\]`)
	applicationRunnerRegex     = regexp.MustCompile(`implements\s+ApplicationRunner`)
	commandLineRunnerRegex     = regexp.MustCompile(`implements\s+CommandLineRunner`)
	handlerControllerRegex     = regexp.MustCompile(`@(RestController|Controller)`)
	publicMethodRegex          = regexp.MustCompile(`public\s+\w+\s+(\w+)\s*\(`)
	packageRegex               = regexp.MustCompile(`package\s+([\w.]+)\s*;`)

	handlerAnnotations = []string{"@GetMapping", "@PostMapping", "@PutMapping", "@DeleteMapping", "@PatchMapping",
		"@RequestMapping"}
)

// handlerAnnotationWindow is how far before a method declaration a mapping annotation is looked for.
const handlerAnnotationWindow = 200

var entryMembers = map[EntryKind]string{
	KindSpringBootApplication: "main(String[] args)",
	KindMainMethod:            "main(String[] args)",
	KindApplicationRunner:     "run(ApplicationArguments args)",
	KindCommandLineRunner:     "run(String... args)",
}

type EntryPointDetector struct{}

func NewEntryPointDetector() *EntryPointDetector {
	return &EntryPointDetector{}
}

func (d *EntryPointDetector) Name() string {
	return "entry-point"
}

func (d *EntryPointDetector) Detect(ctx context.Context, src EvidenceSource) (Result, error) {
	var errs error
	// first entry per kind, in walk order
	first := map[EntryKind]EntryPoint{}
	found := map[EntryKind]bool{}
	var runners, handlers []EntryPoint

	for _, p := range src.FindAllByExtension("java") {
		if err := ctx.Err(); err != nil {
			errs = multierr.Append(errs, err)
			break
		}

		content, err := src.ReadText(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		qualifiedName := qualifiedClassName(p, content)
		entry := func(kind EntryKind) EntryPoint {
			return EntryPoint{FilePath: p, QualifiedName: qualifiedName, MemberName: entryMembers[kind], Kind: kind}
		}

		record := func(kind EntryKind) {
			if !found[kind] {
				found[kind] = true
				first[kind] = entry(kind)
			}
		}

		if mainMethodRegex.MatchString(content) {
			if springBootApplicationRegex.MatchString(content) {
				record(KindSpringBootApplication)
			} else {
				record(KindMainMethod)
			}
		}

		if applicationRunnerRegex.MatchString(content) {
			record(KindApplicationRunner)
			runners = append(runners, entry(KindApplicationRunner))
		} else if commandLineRunnerRegex.MatchString(content) {
			record(KindCommandLineRunner)
			runners = append(runners, entry(KindCommandLineRunner))
		}

		if handlerControllerRegex.MatchString(content) {
			handlers = append(handlers, restHandlers(p, qualifiedName, content)...)
		}
	}

	info := EntryPointInfo{EntryPoints: []EntryPoint{}}
	seen := map[[2]string]bool{}
	add := func(e EntryPoint) {
		key := [2]string{e.QualifiedName, e.MemberName}
		if !seen[key] {
			seen[key] = true
			info.EntryPoints = append(info.EntryPoints, e)
		}
	}

	if kind := PrimaryEntryKind(found); kind != "" {
		primary := first[kind]
		info.PrimaryKind = kind
		info.Primary = &primary
		add(primary)
	}

	for _, e := range runners {
		add(e)
	}

	for _, e := range handlers {
		add(e)
	}

	return &EntryPointResult{Info: info}, errs
}

// restHandlers returns the public methods of a controller that carry a request mapping annotation.
func restHandlers(p string, qualifiedName string, content string) []EntryPoint {
	var handlers []EntryPoint
	for _, loc := range publicMethodRegex.FindAllStringSubmatchIndex(content, -1) {
		before := content[max(0, loc[0]-handlerAnnotationWindow):loc[0]]
		if !containsAny(before, handlerAnnotations) {
			continue
		}

		handlers = append(handlers, EntryPoint{
			FilePath:      p,
			QualifiedName: qualifiedName,
			MemberName:    content[loc[2]:loc[3]] + "()",
			Kind:          KindRestHandler,
		})
	}

	return handlers
}

// qualifiedClassName joins the declared package with the file stem.
func qualifiedClassName(p string, content string) string {
	className := strings.TrimSuffix(path.Base(p), ".java")
	if match := packageRegex.FindStringSubmatch(content); match != nil {
		return match[1] + "." + className
	}

	return className
}
