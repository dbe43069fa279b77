// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataLayerDetector(t *testing.T) {
	result := detect(t, NewDataLayerDetector(DefaultDataLayerSignatures), testDataSource(t, "spring-petclinic"))
	detections := result.Detections()

	postgres := find(t, detections, "PostgreSQL", CategoryDatabase)
	require.Equal(t, High, postgres.Confidence)
	require.Equal(t, "42.7.1", postgres.Version)

	require.Equal(t, High, find(t, detections, "JPA", CategoryORM).Confidence)
	require.Equal(t, High, find(t, detections, "Flyway", CategoryMigrationTool).Confidence)
	require.Equal(t, Medium, find(t, detections, "HikariCP", CategoryConnectionPool).Confidence)
	require.Equal(t, Medium, find(t, detections, "Connection Pool Configuration", CategoryConnectionPool).Confidence)

	info := result.(*DataLayerResult).Info
	require.Equal(t, []string{"Flyway"}, info.MigrationTools)
	require.Equal(t, []string{"HikariCP", "Connection Pool Configuration"}, info.ConnectionPools)
	require.Equal(t, 1, info.EntityCount)
	require.Equal(t, 1, info.RepositoryCount)
	require.True(t, info.Datasource)
	require.True(t, info.JpaConfigured)
	require.Equal(t, []string{"Database: PostgreSQL", "ORM: JPA", "Migrations: Flyway"}, info.Hints)
}

func TestDataLayerConnectionUrls(t *testing.T) {
	src := memSource(t, map[string]string{
		"src/main/resources/application.yml": `spring:
  profiles:
    active: prod
  datasource:
    url: ${DATABASE_URL:jdbc:mysql://localhost:3306/shop}
`,
		"src/main/resources/application-prod.yml": `spring:
  data:
    mongodb:
      uri: mongodb+srv://cluster.example.net/shop
`,
	})

	result := detect(t, NewDataLayerDetector(DefaultDataLayerSignatures), src)
	detections := result.Detections()

	mysql := find(t, detections, "MySQL", CategoryDatabase)
	require.Equal(t, Medium, mysql.Confidence)
	require.Equal(t, "src/main/resources/application.yml", mysql.Evidence[0].Location)

	mongo := find(t, detections, "MongoDB", CategoryDatabase)
	require.Equal(t, "MongoDB connection URL configured in src/main/resources/application-prod.yml", mongo.Reason)
	require.True(t, result.(*DataLayerResult).Info.Datasource)
}

func TestDataLayerNodeAndPython(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		database   string
		orm        string
		migrations []string
	}{
		{
			"Prisma",
			map[string]string{
				"package.json":         `{"dependencies": {"@prisma/client": "5.7.0", "pg": "8.11.3"}, "devDependencies": {"prisma": "5.7.0"}}`,
				"prisma/schema.prisma": "datasource db { provider = \"postgresql\" }",
			},
			"PostgreSQL",
			"Prisma",
			[]string{"Prisma Migrate"},
		},
		{
			"Django",
			map[string]string{
				"requirements.txt":              "django==5.0\npsycopg[binary]==3.1.16\n",
				"shop/migrations/0001_initial.py": "",
			},
			"PostgreSQL",
			"Django ORM",
			[]string{"Django Migrations"},
		},
		{
			"SQLAlchemy",
			map[string]string{
				"pyproject.toml": "[project]\ndependencies = [\"sqlalchemy>=2\", \"alembic\", \"asyncpg\"]\n",
				"alembic.ini":    "[alembic]",
			},
			"PostgreSQL",
			"SQLAlchemy",
			[]string{"Alembic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := detect(t, NewDataLayerDetector(DefaultDataLayerSignatures), memSource(t, tt.files))
			detections := result.Detections()

			require.Equal(t, High, find(t, detections, tt.database, CategoryDatabase).Confidence)
			find(t, detections, tt.orm, CategoryORM)
			require.Equal(t, tt.migrations, result.(*DataLayerResult).Info.MigrationTools)
		})
	}
}

func TestDataLayerEmpty(t *testing.T) {
	result := detect(t, NewDataLayerDetector(DefaultDataLayerSignatures), memSource(t, map[string]string{"main.go": ""}))

	require.Empty(t, result.Detections())
	info := result.(*DataLayerResult).Info
	require.Empty(t, info.Hints)
	require.NotNil(t, info.Hints)
	require.False(t, info.Datasource)
}
