// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

type RestMaturity string

const (
	MaturityNone      RestMaturity = "NONE"
	MaturityBasicCrud RestMaturity = "BASIC_CRUD"
	MaturityLayered   RestMaturity = "LAYERED"
	MaturityHateoas   RestMaturity = "HATEOAS"
)

// ApiRoute is one HTTP endpoint exposed by a controller.
type ApiRoute struct {
	Method      string `json:"httpMethod"`
	Path        string `json:"pathTemplate"`
	HandlerName string `json:"handlerName"`
	// Synthetic marks a route derived from a class-level base path rather than an explicit mapping.
	Synthetic bool `json:"synthetic,omitempty"`
}

// ApiSurface describes the HTTP API of the tree.
type ApiSurface struct {
	ControllerCount   int            `json:"controllerCount"`
	EndpointCount     int            `json:"endpointCount"`
	EndpointsByMethod map[string]int `json:"endpointsByMethod"`
	// SecuredControllers counts controllers carrying an authorization annotation. Security is accounted per
	// controller, not per endpoint.
	SecuredControllers int          `json:"securedControllers"`
	PublicControllers  int          `json:"publicControllers"`
	Maturity           RestMaturity `json:"restMaturity"`
	Routes             []ApiRoute   `json:"routes"`
}

func newApiSurface() ApiSurface {
	return ApiSurface{EndpointsByMethod: map[string]int{}, Maturity: MaturityNone, Routes: []ApiRoute{}}
}

var (
	controllerRegex      = regexp.MustCompile(`@(Rest)?Controller`)
	mappingRegex         = regexp.MustCompile(`@(Request|Get|Post|Put|Delete|Patch)Mapping\s*\(\s*["']([^"']+)["']`)
	basePathRegex        = regexp.MustCompile(`@RequestMapping\s*\(\s*"([^"]+)"`)
	securedRegex         = regexp.MustCompile(`@(PreAuthorize|Secured|RolesAllowed)`)
	hypermediaRegex      = regexp.MustCompile(`(EntityModel|CollectionModel|RepresentationModel)`)
	typeDeclarationRegex = regexp.MustCompile(
		`(?m)^\s*(?:(?:public|protected|private|abstract|final|static|sealed)\s+)*(?:class|interface|record)\s+\w+`)

	crudMethods = []string{"GET", "POST", "PUT", "DELETE"}
)

// ClassifyMaturity applies the REST maturity precedence: no routes, then hypermedia, then full CRUD method coverage.
func ClassifyMaturity(routes []ApiRoute, hypermedia bool) RestMaturity {
	if len(routes) == 0 {
		return MaturityNone
	}

	if hypermedia {
		return MaturityHateoas
	}

	methods := map[string]bool{}
	for _, route := range routes {
		methods[route.Method] = true
	}

	for _, method := range crudMethods {
		if !methods[method] {
			return MaturityBasicCrud
		}
	}

	return MaturityLayered
}

// joinRoute prefixes a method level path with the controller base path.
func joinRoute(basePath string, p string) string {
	if basePath == "" {
		return p
	}

	if p == "" || p == "/" {
		return basePath
	}

	return strings.TrimSuffix(basePath, "/") + "/" + strings.TrimPrefix(p, "/")
}

type ApiResult struct {
	Surface    ApiSurface
	detections []Detection
}

func (r *ApiResult) Detections() []Detection {
	return r.detections
}

func (r *ApiResult) merge(p *Profile) {
	p.Api = r.Surface
}

// ApiSurfaceDetector finds Spring MVC style controllers and their routes.
type ApiSurfaceDetector struct {
	scorer Scorer
}

func NewApiSurfaceDetector() *ApiSurfaceDetector {
	return &ApiSurfaceDetector{}
}

func (d *ApiSurfaceDetector) Name() string {
	return "api-surface"
}

type routeKey struct {
	method, path, handler string
}

func (d *ApiSurfaceDetector) Detect(ctx context.Context, src EvidenceSource) (Result, error) {
	surface := newApiSurface()
	var findings []Finding
	var errs error
	hypermedia := false
	seen := map[routeKey]bool{}

	addRoute := func(route ApiRoute, evidence Evidence) {
		key := routeKey{route.Method, route.Path, route.HandlerName}
		if seen[key] {
			return
		}

		seen[key] = true
		surface.Routes = append(surface.Routes, route)
		surface.EndpointsByMethod[route.Method]++

		finding := Finding{
			Name:     route.Method + " " + route.Path,
			Category: CategoryApiRoute,
			Reason:   fmt.Sprintf("mapped by %s in %s", route.HandlerName, evidence.Location),
			Evidence: []Evidence{evidence},
		}
		if route.Synthetic {
			finding.Ceiling = Low
			finding.Reason = fmt.Sprintf("base path of %s without explicit mappings", route.HandlerName)
		}

		findings = append(findings, finding)
	}

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

		if !controllerRegex.MatchString(content) {
			continue
		}

		surface.ControllerCount++
		handler := strings.TrimSuffix(path.Base(p), ".java")

		if securedRegex.MatchString(content) {
			surface.SecuredControllers++
		}

		if hypermediaRegex.MatchString(content) {
			hypermedia = true
		}

		// Annotations before the type declaration apply to the whole controller.
		header, body := "", content
		if loc := typeDeclarationRegex.FindStringIndex(content); loc != nil {
			header, body = content[:loc[0]], content[loc[0]:]
		}

		basePath := ""
		baseMatch := basePathRegex.FindStringSubmatch(header)
		if baseMatch != nil {
			basePath = baseMatch[1]
		}

		for _, match := range mappingRegex.FindAllStringSubmatch(body, -1) {
			method := strings.ToUpper(match[1])
			if method == "REQUEST" {
				method = "GET"
			}

			addRoute(
				ApiRoute{Method: method, Path: joinRoute(basePath, match[2]), HandlerName: handler},
				Evidence{Kind: TextMatch, Location: p, Literal: truncate(match[0], maxLiteralLength)},
			)
		}

		// The base path only yields a route while no route at all has been found yet.
		if baseMatch != nil && len(surface.Routes) == 0 {
			addRoute(
				ApiRoute{Method: "GET", Path: basePath, HandlerName: handler, Synthetic: true},
				Evidence{Kind: TextMatch, Location: p, Literal: truncate(baseMatch[0], maxLiteralLength)},
			)
		}
	}

	surface.EndpointCount = len(surface.Routes)
	surface.PublicControllers = surface.ControllerCount - surface.SecuredControllers
	surface.Maturity = ClassifyMaturity(surface.Routes, hypermedia)

	return &ApiResult{Surface: surface, detections: d.scorer.ScoreAll(findings)}, errs
}
