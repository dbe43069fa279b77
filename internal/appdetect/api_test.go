// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/otiai10/copy"
	"github.com/stretchr/testify/require"
)

func TestClassifyMaturity(t *testing.T) {
	route := func(method string) ApiRoute {
		return ApiRoute{Method: method, Path: "/items", HandlerName: "ItemController"}
	}

	tests := []struct {
		name       string
		routes     []ApiRoute
		hypermedia bool
		want       RestMaturity
	}{
		{"NoRoutes", nil, false, MaturityNone},
		{"NoRoutesWithHypermedia", nil, true, MaturityNone},
		{"ReadOnly", []ApiRoute{route("GET")}, false, MaturityBasicCrud},
		{"MissingDelete", []ApiRoute{route("GET"), route("POST"), route("PUT")}, false, MaturityBasicCrud},
		{"FullCrud", []ApiRoute{route("GET"), route("POST"), route("PUT"), route("DELETE")}, false, MaturityLayered},
		{"Hypermedia", []ApiRoute{route("GET")}, true, MaturityHateoas},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ClassifyMaturity(tt.routes, tt.hypermedia))
		})
	}
}

func TestApiSurfaceDetector(t *testing.T) {
	result := detect(t, NewApiSurfaceDetector(), testDataSource(t, "spring-petclinic")).(*ApiResult)
	surface := result.Surface

	require.Equal(t, 1, surface.ControllerCount)
	require.Equal(t, 4, surface.EndpointCount)
	require.Equal(t, MaturityLayered, surface.Maturity)
	require.Equal(t, map[string]int{"GET": 1, "POST": 1, "PUT": 1, "DELETE": 1}, surface.EndpointsByMethod)
	require.Equal(t, 0, surface.SecuredControllers)
	require.Equal(t, 1, surface.PublicControllers)
	require.Equal(t, []ApiRoute{
		{Method: "GET", Path: "/api/owners/{id}", HandlerName: "OwnerController"},
		{Method: "POST", Path: "/api/owners", HandlerName: "OwnerController"},
		{Method: "PUT", Path: "/api/owners/{id}", HandlerName: "OwnerController"},
		{Method: "DELETE", Path: "/api/owners/{id}", HandlerName: "OwnerController"},
	}, surface.Routes)

	detections := result.Detections()
	require.Len(t, detections, 4)
	require.Equal(t, "GET /api/owners/{id}", detections[0].Name)
	require.Equal(t, CategoryApiRoute, detections[0].Category)
	require.Equal(t, Medium, detections[0].Confidence)
	require.Equal(t, "mapped by OwnerController in src/main/java/org/petclinic/owner/OwnerController.java",
		detections[0].Reason)
}

func TestApiSurfaceSecurityAndDedupe(t *testing.T) {
	src := memSource(t, map[string]string{
		"AdminController.java": `@RestController
@PreAuthorize("hasRole('ADMIN')")
public class AdminController {
    @GetMapping("/admin/stats")
    public Stats stats() { return null; }

    @RequestMapping("/admin/stats")
    public Stats statsAgain() { return null; }

    @PatchMapping('/admin/users/{id}')
    public User patch() { return null; }
}`,
		"HealthController.java": `@Controller
public class HealthController {
    @GetMapping("/admin/stats")
    public String stats() { return "ok"; }
}`,
		"Service.java": `@Service
public class Service {
    @GetMapping("/ignored")
    public void ignored() {}
}`,
	})

	surface := detect(t, NewApiSurfaceDetector(), src).(*ApiResult).Surface

	require.Equal(t, 2, surface.ControllerCount)
	require.Equal(t, 1, surface.SecuredControllers)
	require.Equal(t, 1, surface.PublicControllers)
	// The same method and path on two controllers are two routes.
	require.Equal(t, 3, surface.EndpointCount)
	require.Equal(t, map[string]int{"GET": 2, "PATCH": 1}, surface.EndpointsByMethod)
	require.Equal(t, MaturityBasicCrud, surface.Maturity)
}

func TestApiSurfaceBasePathFallback(t *testing.T) {
	src := memSource(t, map[string]string{
		"StatusController.java": `@RestController
@RequestMapping("/status")
public class StatusController {
    @GetMapping
    public String status() { return "ok"; }
}`,
	})

	result := detect(t, NewApiSurfaceDetector(), src).(*ApiResult)
	require.Equal(t, []ApiRoute{
		{Method: "GET", Path: "/status", HandlerName: "StatusController", Synthetic: true},
	}, result.Surface.Routes)
	require.Equal(t, Low, result.Detections()[0].Confidence)

	// Once any route exists, later base paths do not synthesize routes.
	src = memSource(t, map[string]string{
		"a/AController.java": `@RestController
public class AController {
    @GetMapping("/a")
    public String a() { return "a"; }
}`,
		"b/BController.java": `@RestController
@RequestMapping("/b")
public class BController {
    @GetMapping
    public String b() { return "b"; }
}`,
	})

	result = detect(t, NewApiSurfaceDetector(), src).(*ApiResult)
	require.Equal(t, []ApiRoute{{Method: "GET", Path: "/a", HandlerName: "AController"}}, result.Surface.Routes)
}

func TestApiSurfaceBasePathAfterJavadoc(t *testing.T) {
	src := memSource(t, map[string]string{
		"OwnerController.java": `package org.petclinic.owner;

/**
 * This class exposes owners. Every record is read only.
 */
@RestController
@RequestMapping("/owners")
public final class OwnerController {
    @GetMapping("/{id}")
    public Owner owner() { return null; }
}`,
	})

	surface := detect(t, NewApiSurfaceDetector(), src).(*ApiResult).Surface
	require.Equal(t, []ApiRoute{
		{Method: "GET", Path: "/owners/{id}", HandlerName: "OwnerController"},
	}, surface.Routes)
}

// TestApiSurfaceMaturityReclassification edits a copy of the fixture project and checks that the maturity follows.
func TestApiSurfaceMaturityReclassification(t *testing.T) {
	controller := filepath.Join("src", "main", "java", "org", "petclinic", "owner", "OwnerController.java")

	tests := []struct {
		name string
		edit func(string) string
		want RestMaturity
	}{
		{"Unchanged", func(s string) string { return s }, MaturityLayered},
		{
			"WithoutDelete",
			func(s string) string { return strings.Replace(s, `@DeleteMapping("/{id}")`, "", 1) },
			MaturityBasicCrud,
		},
		{
			"Hypermedia",
			func(s string) string {
				return strings.Replace(s, "public Owner getOwner", "public EntityModel<Owner> getOwner", 1)
			},
			MaturityHateoas,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, copy.Copy(filepath.Join("testdata", "spring-petclinic"), dir))

			path := filepath.Join(dir, controller)
			content, err := os.ReadFile(path)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, []byte(tt.edit(string(content))), 0600))

			profile := New().Analyze(context.Background(), dir)
			require.Equal(t, tt.want, profile.Api.Maturity)
		})
	}
}
