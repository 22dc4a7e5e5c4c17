// Package leaks finds the audited project's own credentials committed to the
// local repository: service-role JWTs, which bypass every policy the audit
// probes for, and database URIs with inline credentials.
package leaks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/keygate/keygate/internal/types"
)

var (
	reJWT         = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)
	rePostgresURI = regexp.MustCompile(`\bpostgres(?:ql)?://[^\s:@/]+:[^\s@/]+@[^\s/]+/[^\s?"']+`)
)

// jwtRole decodes the payload segment of a JWT and returns its role claim,
// or "" when the token is not decodable.
func jwtRole(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ""
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ""
	}
	var claims struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}
	return claims.Role
}

// ScanData scans one blob of text. location names where the blob came from
// (a path, or commit:path for history hits).
func ScanData(location string, data []byte) []types.Finding {
	var out []types.Finding
	for i, line := range strings.Split(string(data), "\n") {
		lineNo := i + 1
		for _, m := range reJWT.FindAllString(line, -1) {
			switch jwtRole(m) {
			case "service_role":
				out = append(out, types.Finding{
					Severity: types.SevHigh,
					Category: "leaked_credential",
					Target:   location,
					Message:  fmt.Sprintf("service-role JWT committed at %s:%d", location, lineNo),
				})
			case "anon":
				// the shared key is public by design; still worth a note
				out = append(out, types.Finding{
					Severity: types.SevLow,
					Category: "leaked_credential",
					Target:   location,
					Message:  fmt.Sprintf("anon-role JWT committed at %s:%d", location, lineNo),
				})
			}
		}
		if m := rePostgresURI.FindString(line); m != "" {
			out = append(out, types.Finding{
				Severity: types.SevHigh,
				Category: "leaked_credential",
				Target:   location,
				Message:  fmt.Sprintf("postgres URI with credentials committed at %s:%d", location, lineNo),
			})
		}
	}
	return out
}
