// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

// dataLayerTextFiles are configuration files scanned as raw text for database and pool keywords.
var dataLayerTextFiles = []string{
	"application.properties",
	"application.yml",
	"application.yaml",
	".env",
	"docker-compose.yml",
	"docker-compose.yaml",
}

// DefaultDataLayerSignatures lists databases, ORMs, migration tools and connection pools.
var DefaultDataLayerSignatures = []Signature{
	// Databases
	{Name: "PostgreSQL", Category: CategoryDatabase,
		Keywords: []string{"postgresql", "postgres", "pgsql", "pg", "psycopg", "asyncpg"}},
	{Name: "MySQL", Category: CategoryDatabase, Keywords: []string{"mysql", "mariadb"}},
	{Name: "MongoDB", Category: CategoryDatabase, Keywords: []string{"mongodb", "mongo"}},
	{Name: "Redis", Category: CategoryDatabase, Keywords: []string{"redis", "lettuce", "jedis"}},
	{Name: "H2", Category: CategoryDatabase, Keywords: []string{"h2", "h2database"}},
	{Name: "SQLite", Category: CategoryDatabase, Keywords: []string{"sqlite"}},
	{Name: "Oracle", Category: CategoryDatabase, Keywords: []string{"oracle", "ojdbc"}},
	{Name: "SQL Server", Category: CategoryDatabase, Keywords: []string{"sqlserver", "mssql"}},

	// ORMs
	{Name: "JPA", Category: CategoryORM, Ecosystems: []Ecosystem{Maven},
		Keywords: []string{"spring-data-jpa", "spring-boot-starter-data-jpa", "jakarta.persistence", "javax.persistence"}},
	{Name: "Hibernate", Category: CategoryORM, Ecosystems: []Ecosystem{Maven},
		Keywords: []string{"hibernate-core", "hibernate-jpa"}},
	{Name: "MyBatis", Category: CategoryORM, Ecosystems: []Ecosystem{Maven}, Keywords: []string{"mybatis"}},
	{Name: "Django ORM", Category: CategoryORM, Ecosystems: []Ecosystem{PyPI}, Keywords: []string{"django"},
		Scope: ScanDependencies, match: packageNamed("django")},
	{Name: "SQLAlchemy", Category: CategoryORM, Ecosystems: []Ecosystem{PyPI}, Keywords: []string{"sqlalchemy"},
		Scope: ScanDependencies},
	{Name: "Tortoise ORM", Category: CategoryORM, Ecosystems: []Ecosystem{PyPI}, Keywords: []string{"tortoise-orm"},
		Scope: ScanDependencies},
	{Name: "Prisma", Category: CategoryORM, Ecosystems: []Ecosystem{Npm}, Keywords: []string{"@prisma/client"},
		Markers: []Marker{{Name: "schema.prisma"}}, Scope: ScanDependencies | ScanMarkers},
	{Name: "TypeORM", Category: CategoryORM, Ecosystems: []Ecosystem{Npm}, Keywords: []string{"typeorm"},
		Scope: ScanDependencies, match: packageNamed("typeorm")},
	{Name: "Sequelize", Category: CategoryORM, Ecosystems: []Ecosystem{Npm}, Keywords: []string{"sequelize"},
		Scope: ScanDependencies, match: packageNamed("sequelize")},
	{Name: "Knex.js", Category: CategoryORM, Ecosystems: []Ecosystem{Npm}, Keywords: []string{"knex"},
		Scope: ScanDependencies, match: packageNamed("knex")},
	{Name: "Mongoose", Category: CategoryORM, Ecosystems: []Ecosystem{Npm}, Keywords: []string{"mongoose"},
		Scope: ScanDependencies, match: packageNamed("mongoose")},

	// Migration tools
	{Name: "Flyway", Category: CategoryMigrationTool, Keywords: []string{"flyway"}},
	{Name: "Liquibase", Category: CategoryMigrationTool, Keywords: []string{"liquibase"}},
	{Name: "Alembic", Category: CategoryMigrationTool, Keywords: []string{"alembic"},
		Markers: []Marker{{Name: "alembic.ini"}}, Scope: ScanDependencies | ScanMarkers},
	{Name: "Prisma Migrate", Category: CategoryMigrationTool, Ecosystems: []Ecosystem{Npm}, Keywords: []string{"prisma"},
		Scope: ScanDependencies, match: packageNamed("prisma")},
	{Name: "Django Migrations", Category: CategoryMigrationTool,
		Markers: []Marker{{Name: "migrations", Dir: true, Ceiling: Medium}}, Scope: ScanMarkers},
	{Name: "TypeORM Migrations", Category: CategoryMigrationTool, Ecosystems: []Ecosystem{Npm},
		Keywords: []string{"typeorm"}, Scope: ScanDependencies, match: packageNamed("typeorm"), Ceiling: Medium},
	{Name: "Sequelize CLI", Category: CategoryMigrationTool, Ecosystems: []Ecosystem{Npm},
		Keywords: []string{"sequelize-cli"}, Scope: ScanDependencies},
	{Name: "Migrations", Category: CategoryMigrationTool,
		Markers: []Marker{{Name: "db", Dir: true, Ceiling: Medium}}, Scope: ScanMarkers},

	// Connection pools
	{Name: "HikariCP", Category: CategoryConnectionPool, Keywords: []string{"hikaricp", "hikari"}},
	{Name: "Apache DBCP", Category: CategoryConnectionPool, Keywords: []string{"commons-dbcp", "commons-dbcp2"}},
	{Name: "C3P0", Category: CategoryConnectionPool, Keywords: []string{"c3p0"}},
	{Name: "Tomcat JDBC Pool", Category: CategoryConnectionPool, Keywords: []string{"tomcat-jdbc"}},
}

// DataLayerInfo summarizes how the tree stores data.
type DataLayerInfo struct {
	MigrationTools  []string `json:"migrationTools"`
	ConnectionPools []string `json:"connectionPools"`
	// EntityCount is the number of Java files that declare a persistent entity or document.
	EntityCount     int  `json:"entityCount"`
	RepositoryCount int  `json:"repositoryCount"`
	Datasource      bool `json:"datasourceConfigured"`
	JpaConfigured   bool `json:"jpaConfigured"`
	// Hints are short human-readable lines such as "Database: PostgreSQL".
	Hints []string `json:"hints"`
}

func newDataLayerInfo() DataLayerInfo {
	return DataLayerInfo{MigrationTools: []string{}, ConnectionPools: []string{}, Hints: []string{}}
}

type DataLayerResult struct {
	Info       DataLayerInfo
	detections []Detection
}

func (r *DataLayerResult) Detections() []Detection {
	return r.detections
}

func (r *DataLayerResult) merge(p *Profile) {
	p.DataLayer = r.Info
}

type DataLayerDetector struct {
	signatures []Signature
	scorer     Scorer
}

func NewDataLayerDetector(signatures []Signature) *DataLayerDetector {
	return &DataLayerDetector{signatures: signatures}
}

func (d *DataLayerDetector) Name() string {
	return "data-layer"
}

func (d *DataLayerDetector) Detect(ctx context.Context, src EvidenceSource) (Result, error) {
	in, errs := newScanInput(ctx, src, dataLayerTextFiles)

	var findings []Finding
	for _, sig := range d.signatures {
		findings = append(findings, in.scan(sig)...)
	}

	props, err := readProperties(src)
	errs = multierr.Append(errs, err)
	findings = append(findings, propertyFindings(props, d.signatures)...)

	detections := strongestFirst(Dedupe(d.scorer.ScoreAll(findings)))

	info := newDataLayerInfo()
	for _, key := range sortedKeys(props) {
		switch {
		case strings.HasPrefix(key, "spring.datasource"):
			info.Datasource = true
		case strings.HasPrefix(key, "spring.jpa"):
			info.JpaConfigured = true
		}
	}

	var database, orm string
	for _, detection := range detections {
		switch detection.Category {
		case CategoryDatabase:
			if database == "" {
				database = detection.Name
			}
		case CategoryORM:
			if orm == "" {
				orm = detection.Name
			}
		case CategoryMigrationTool:
			info.MigrationTools = append(info.MigrationTools, detection.Name)
		case CategoryConnectionPool:
			info.ConnectionPools = append(info.ConnectionPools, detection.Name)
		}
	}

	info.EntityCount, info.RepositoryCount, err = countPersistenceTypes(ctx, src)
	errs = multierr.Append(errs, err)
	info.Hints = dataLayerHints(database, orm, info.MigrationTools)

	return &DataLayerResult{Info: info, detections: detections}, errs
}

var urlSchemeRegex = regexp.MustCompile(`^(?:jdbc:)?([a-z][a-z0-9+]*)(?::|\+)`)

// propertyFindings reports databases named by connection URL schemes and connection pool settings in the flattened
// application configuration.
func propertyFindings(props map[string]property, signatures []Signature) []Finding {
	var findings []Finding
	var poolEvidence []Evidence
	for _, key := range sortedKeys(props) {
		prop := props[key]
		lowerKey := strings.ToLower(key)
		literal := truncate(key+"="+prop.value, maxLiteralLength)

		if strings.Contains(lowerKey, "hikari") || strings.Contains(lowerKey, "pool") {
			poolEvidence = append(poolEvidence, Evidence{Kind: TextMatch, Location: prop.location, Literal: literal})
		}

		if !strings.Contains(lowerKey, "url") && !strings.Contains(lowerKey, "uri") {
			continue
		}

		match := urlSchemeRegex.FindStringSubmatch(strings.ToLower(prop.value))
		if match == nil {
			continue
		}

		for _, sig := range signatures {
			if sig.Category != CategoryDatabase || !slices.ContainsFunc(sig.Keywords, func(k string) bool {
				return matchKeyword(k, match[1])
			}) {
				continue
			}

			findings = append(findings, Finding{
				Name:     sig.Name,
				Category: CategoryDatabase,
				Reason:   fmt.Sprintf("%s connection URL configured in %s", sig.Name, prop.location),
				Evidence: []Evidence{{Kind: TextMatch, Location: prop.location, Literal: literal}},
			})
			break
		}
	}

	if len(poolEvidence) > 0 {
		findings = append(findings, Finding{
			Name:     "Connection Pool Configuration",
			Category: CategoryConnectionPool,
			Reason:   "Connection pool settings configured",
			Evidence: poolEvidence,
		})
	}

	return findings
}

var (
	entityMarkers     = []string{"@Entity", "@Document"}
	repositoryMarkers = []string{"@Repository", "extends Repository", "extends JpaRepository", "extends CrudRepository"}
)

// countPersistenceTypes counts Java files declaring entities and repositories. Unreadable files are skipped.
func countPersistenceTypes(ctx context.Context, src EvidenceSource) (int, int, error) {
	var errs error
	entities, repositories := 0, 0
	for _, p := range src.FindAllByExtension("java") {
		if err := ctx.Err(); err != nil {
			return entities, repositories, multierr.Append(errs, err)
		}

		content, err := src.ReadText(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		if containsAny(content, entityMarkers) {
			entities++
		}

		if containsAny(content, repositoryMarkers) {
			repositories++
		}
	}

	return entities, repositories, errs
}

func containsAny(content string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(content, marker) {
			return true
		}
	}

	return false
}

func dataLayerHints(database string, orm string, migrations []string) []string {
	hints := []string{}
	if database != "" {
		hints = append(hints, "Database: "+database)
	}

	if orm != "" {
		hints = append(hints, "ORM: "+orm)
	}

	if len(migrations) > 0 {
		hints = append(hints, "Migrations: "+strings.Join(migrations, ", "))
	}

	return hints
}
