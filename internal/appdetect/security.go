// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"strings"
)

// securityTextFiles are configuration files scanned as raw text for security keywords.
var securityTextFiles = []string{
	"application.properties",
	"application.yml",
	"application.yaml",
}

// DefaultSecuritySignatures lists authentication, encryption and hardening technologies.
var DefaultSecuritySignatures = []Signature{
	// Authentication
	{Name: "Spring Security", Category: CategoryAuthentication, Keywords: []string{"spring-security"},
		Ecosystems: []Ecosystem{Maven}, Scope: ScanDependencies, match: springSecurity},
	{Name: "OAuth 2.0", Category: CategoryAuthentication,
		Keywords: []string{"oauth2", "oauth", "spring-security-oauth2", "@nestjs/passport"}},
	{Name: "JWT (JSON Web Tokens)", Category: CategoryAuthentication,
		Keywords: []string{"jjwt", "jwt", "jsonwebtoken", "pyjwt", "python-jose"}},
	{Name: "Passport.js", Category: CategoryAuthentication, Keywords: []string{"passport"},
		Ecosystems: []Ecosystem{Npm}, Scope: ScanDependencies},
	{Name: "Auth0", Category: CategoryAuthentication, Keywords: []string{"auth0"}},
	{Name: "Django REST Framework Auth", Category: CategoryAuthentication, Ecosystems: []Ecosystem{PyPI},
		Keywords: []string{"djangorestframework", "django-rest-framework"}, Scope: ScanDependencies},
	{Name: "Environment-based Configuration", Category: CategoryAuthentication, Keywords: []string{"python-dotenv"},
		Ecosystems: []Ecosystem{PyPI}, Scope: ScanDependencies, Ceiling: Medium},

	// Encryption
	{Name: "BCrypt (Password Hashing)", Category: CategoryEncryption,
		Keywords: []string{"bcrypt", "spring-security-crypto"}, Scope: ScanDependencies},
	{Name: "BCryptjs", Category: CategoryEncryption, Keywords: []string{"bcryptjs"},
		Ecosystems: []Ecosystem{Npm}, Scope: ScanDependencies},
	{Name: "Node.js Crypto Module", Category: CategoryEncryption, Keywords: []string{"crypto", "crypto-js"},
		Ecosystems: []Ecosystem{Npm}, Scope: ScanDependencies, Ceiling: Medium},
	{Name: "Cryptography Library", Category: CategoryEncryption, Keywords: []string{"cryptography"},
		Ecosystems: []Ecosystem{PyPI}, Scope: ScanDependencies},
	{Name: "Bouncy Castle", Category: CategoryEncryption, Keywords: []string{"bouncycastle", "bcprov", "bcpkix"},
		Scope: ScanDependencies},
	{Name: "KeyStore (SSL/TLS)", Category: CategoryEncryption, Scope: ScanMarkers,
		Markers: []Marker{{Name: "keystore.jks"}, {Name: "keystore.p12"}, {Name: "truststore.jks"}}},

	// Hardening
	{Name: "CORS Configuration", Category: CategorySecurity, Keywords: []string{"cors"},
		Markers: []Marker{{Name: "CorsConfig.java"}, {Name: "CorsConfiguration.java"}}, Scope: ScanText | ScanMarkers},
	{Name: "Helmet (Security Headers)", Category: CategorySecurity, Keywords: []string{"helmet"},
		Ecosystems: []Ecosystem{Npm}, Scope: ScanDependencies},
	{Name: "CSRF Protection", Category: CategorySecurity, Keywords: []string{"csurf", "csrf"}},
	{Name: "Environment-based Secrets", Category: CategorySecurity, Markers: []Marker{{Name: ".env"}},
		Scope: ScanMarkers},
	{Name: "Security Configuration", Category: CategorySecurity, Keywords: []string{"security", "secret", "password"},
		Scope: ScanText},
}

// springSecurity matches Spring Security starters and modules, but not unrelated Spring artifacts.
func springSecurity(dep dependency) bool {
	if !strings.HasPrefix(dep.Group, "org.springframework") {
		return false
	}

	return matchKeyword("security", dep.Name)
}

// SecurityResult lists the security related detections of the tree.
type SecurityResult struct {
	detections []Detection
}

func (r *SecurityResult) Detections() []Detection {
	return r.detections
}

func (r *SecurityResult) merge(p *Profile) {}

type SecurityDetector struct {
	signatures []Signature
	scorer     Scorer
}

func NewSecurityDetector(signatures []Signature) *SecurityDetector {
	return &SecurityDetector{signatures: signatures}
}

func (d *SecurityDetector) Name() string {
	return "security"
}

func (d *SecurityDetector) Detect(ctx context.Context, src EvidenceSource) (Result, error) {
	in, err := newScanInput(ctx, src, securityTextFiles)
	return &SecurityResult{detections: in.scanAll(d.scorer, d.signatures)}, err
}
