// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	bootApplication = `package com.shop;

@SpringBootApplication
public class ShopApplication {
    public static void main(String[] args) {
        SpringApplication.run(ShopApplication.class, args);
    }
}`
	plainMain = `package com.shop.tools;

public class Migrate {
    public static void main(String[] args) {
    }
}`
	applicationRunner = `package com.shop;

@Component
public class Seeder implements ApplicationRunner {
    public void run(ApplicationArguments args) {
    }
}`
	commandLineRunner = `package com.shop;

@Component
public class Warmup implements CommandLineRunner {
    public void run(String... args) {
    }
}`
)

func TestPrimaryEntryKind(t *testing.T) {
	tests := []struct {
		name  string
		found map[EntryKind]bool
		want  EntryKind
	}{
		{"None", map[EntryKind]bool{}, ""},
		{"HandlersOnly", map[EntryKind]bool{KindRestHandler: true}, ""},
		{"RunnerOnly", map[EntryKind]bool{KindCommandLineRunner: true}, KindCommandLineRunner},
		{
			"ApplicationRunnerBeatsCommandLineRunner",
			map[EntryKind]bool{KindCommandLineRunner: true, KindApplicationRunner: true},
			KindApplicationRunner,
		},
		{"MainBeatsRunner", map[EntryKind]bool{KindApplicationRunner: true, KindMainMethod: true}, KindMainMethod},
		{
			"SpringBootBeatsAll",
			map[EntryKind]bool{KindMainMethod: true, KindSpringBootApplication: true, KindApplicationRunner: true},
			KindSpringBootApplication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PrimaryEntryKind(tt.found))
		})
	}
}

func TestEntryPointDetector(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		wantKind    EntryKind
		wantPrimary string
		wantAll     []string
	}{
		{
			name: "SpringBootWithRunners",
			files: map[string]string{
				"src/a/Migrate.java":         plainMain,
				"src/b/ShopApplication.java": bootApplication,
				"src/c/Seeder.java":          applicationRunner,
				"src/d/Warmup.java":          commandLineRunner,
			},
			wantKind:    KindSpringBootApplication,
			wantPrimary: "com.shop.ShopApplication",
			wantAll: []string{
				"com.shop.ShopApplication#main(String[] args)",
				"com.shop.Seeder#run(ApplicationArguments args)",
				"com.shop.Warmup#run(String... args)",
			},
		},
		{
			name:        "BareMain",
			files:       map[string]string{"Migrate.java": plainMain, "Warmup.java": commandLineRunner},
			wantKind:    KindMainMethod,
			wantPrimary: "com.shop.tools.Migrate",
			wantAll: []string{
				"com.shop.tools.Migrate#main(String[] args)",
				"com.shop.Warmup#run(String... args)",
			},
		},
		{
			name:        "RunnerOnly",
			files:       map[string]string{"Warmup.java": commandLineRunner},
			wantKind:    KindCommandLineRunner,
			wantPrimary: "com.shop.Warmup",
			wantAll:     []string{"com.shop.Warmup#run(String... args)"},
		},
		{
			name:    "None",
			files:   map[string]string{"Util.java": "public class Util {}", "index.js": ""},
			wantAll: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := detect(t, NewEntryPointDetector(), memSource(t, tt.files)).(*EntryPointResult).Info

			require.Equal(t, tt.wantKind, info.PrimaryKind)
			if tt.wantPrimary == "" {
				require.Nil(t, info.Primary)
			} else {
				require.NotNil(t, info.Primary)
				require.Equal(t, tt.wantPrimary, info.Primary.QualifiedName)
				require.Equal(t, *info.Primary, info.EntryPoints[0])
			}

			all := []string{}
			for _, e := range info.EntryPoints {
				all = append(all, e.QualifiedName+"#"+e.MemberName)
			}
			require.Equal(t, tt.wantAll, all)
		})
	}
}

func TestEntryPointHandlers(t *testing.T) {
	info := detect(t, NewEntryPointDetector(), testDataSource(t, "spring-petclinic")).(*EntryPointResult).Info

	require.Equal(t, KindSpringBootApplication, info.PrimaryKind)
	require.Equal(t, EntryPoint{
		FilePath:      "src/main/java/org/petclinic/PetClinicApplication.java",
		QualifiedName: "org.petclinic.PetClinicApplication",
		MemberName:    "main(String[] args)",
		Kind:          KindSpringBootApplication,
	}, *info.Primary)

	handlers := []string{}
	for _, e := range info.EntryPoints[1:] {
		require.Equal(t, KindRestHandler, e.Kind)
		require.Equal(t, "org.petclinic.owner.OwnerController", e.QualifiedName)
		handlers = append(handlers, e.MemberName)
	}
	require.Equal(t, []string{"getOwner()", "createOwner()", "updateOwner()", "deleteOwner()"}, handlers)
}

func TestEntryPointDedupe(t *testing.T) {
	// Two files declaring the same class collapse into one entry point.
	info := detect(t, NewEntryPointDetector(), memSource(t, map[string]string{
		"a/Warmup.java": commandLineRunner,
		"b/Warmup.java": commandLineRunner,
	})).(*EntryPointResult).Info

	require.Len(t, info.EntryPoints, 1)
	require.Equal(t, "a/Warmup.java", info.EntryPoints[0].FilePath)
}
