// Package settings extracts database connection details from a Drupal
// settings.php file. It is a best-effort regex scanner, not a PHP
// interpreter: it handles the two layouts Drupal sites actually use
// (a full $databases['default']['default'] array, or one individual
// assignment per key), plus simple $variable substitution.
package settings

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/druscope/druscope/internal/database"
	"github.com/druscope/druscope/internal/errs"
	"github.com/druscope/druscope/internal/logger"
)

var (
	// $name = value;
	varPattern = regexp.MustCompile(`(?m)^\s*\$([a-zA-Z_][a-zA-Z0-9_]*)\s*=\s*([^;]+);`)

	// $databases['default']['default'] = array( ... ); or [ ... ];
	fullArrayPattern = regexp.MustCompile(
		`(?is)\$databases\s*\[\s*['"]default['"]\s*\]\s*\[\s*['"]default['"]\s*\]\s*=\s*(?:array\(|\[)(.*?)[)\]]\s*;`)

	// 'key' => value pairs inside the array body.
	pairPattern = regexp.MustCompile(`['"](\w+)['"]\s*=>\s*([^,)\]]+)`)

	// $databases['default']['default']['key'] = value;
	individualPattern = regexp.MustCompile(
		`(?i)\$databases\s*\[\s*['"]default['"]\s*\]\s*\[\s*['"]default['"]\s*\]\s*\[\s*['"](\w+)['"]\s*\]\s*=\s*([^;]+);`)

	// 'prefix' => array( ... ) / [ ... ] — per-table prefix map.
	prefixArrayPattern = regexp.MustCompile(`(?is)['"]prefix['"]\s*=>\s*(?:array\(|\[)(.*?)[)\]]`)

	// 'default' => '...' inside a prefix map.
	prefixDefaultPattern = regexp.MustCompile(`['"]default['"]\s*=>\s*['"]([^'"]*)['"]`)
)

// Default ports per driver, used when settings.php omits 'port'.
var defaultPorts = map[database.Driver]int{
	database.DriverMySQL:    3306,
	database.DriverPostgres: 5432,
	database.DriverMSSQL:    1433,
	database.DriverOracle:   1521,
}

var connectionKeys = map[string]struct{}{
	"driver": {}, "database": {}, "username": {}, "password": {},
	"host": {}, "port": {}, "prefix": {},
}

// ParseFile reads path and extracts the default database connection.
func ParseFile(path string, log *logger.Logger) (*database.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read settings file "+path, err)
	}
	return Parse(string(content), log)
}

// Parse extracts the default database connection from settings.php content.
func Parse(content string, log *logger.Logger) (*database.Config, error) {
	if log == nil {
		log = logger.Nop()
	}

	variables := parseVariables(content)
	raw := map[string]string{}

	var arrayBody string
	if m := fullArrayPattern.FindStringSubmatch(content); m != nil {
		arrayBody = m[1]
		for _, pair := range pairPattern.FindAllStringSubmatch(arrayBody, -1) {
			key := pair[1]
			if _, ok := connectionKeys[key]; !ok {
				continue
			}
			// A map-valued prefix is handled separately below.
			if key == "prefix" && isArrayValue(pair[2]) {
				continue
			}
			raw[key] = resolveValue(pair[2], variables)
		}
	} else {
		log.Debug("no full $databases array found, trying individual assignments")
		for _, m := range individualPattern.FindAllStringSubmatch(content, -1) {
			key := m[1]
			if _, ok := connectionKeys[key]; ok {
				raw[key] = resolveValue(m[2], variables)
			}
		}
	}

	if len(raw) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput,
			"no database settings found: $databases['default']['default'] is not defined in a supported format")
	}

	cfg := &database.Config{
		Driver:   database.Driver(raw["driver"]),
		Host:     raw["host"],
		Username: raw["username"],
		Password: raw["password"],
		Database: raw["database"],
		Prefix:   raw["prefix"],
	}

	// A per-table prefix map only carries its 'default' entry; anything
	// more granular is out of scope for a single-prefix config.
	if cfg.Prefix == "" && arrayBody != "" {
		if pm := prefixArrayPattern.FindStringSubmatch(arrayBody); pm != nil {
			log.Warn("settings.php defines a per-table prefix map; only the 'default' entry is used")
			if dm := prefixDefaultPattern.FindStringSubmatch(pm[1]); dm != nil {
				cfg.Prefix = dm[1]
			}
		}
	}

	if portStr, ok := raw["port"]; ok && portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "invalid port number %q in settings", portStr)
		}
		cfg.Port = port
	} else if p, ok := defaultPorts[cfg.Driver]; ok {
		log.Debug("settings.php omits port, using driver default")
		cfg.Port = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseVariables collects simple $name = literal; assignments. Only string
// and integer literals are kept; complex expressions are skipped.
func parseVariables(content string) map[string]string {
	vars := map[string]string{}
	for _, m := range varPattern.FindAllStringSubmatch(content, -1) {
		name, value := m[1], strings.TrimSpace(m[2])
		if s, ok := unquote(value); ok {
			vars[name] = s
		} else if isDigits(value) {
			vars[name] = value
		}
	}
	return vars
}

// resolveValue converts a PHP value expression into a plain string,
// substituting known $variables.
func resolveValue(value string, variables map[string]string) string {
	value = strings.TrimSpace(value)
	if s, ok := unquote(value); ok {
		return s
	}
	if strings.HasPrefix(value, "$") {
		if v, ok := variables[value[1:]]; ok {
			return v
		}
	}
	switch strings.ToLower(value) {
	case "null", "false":
		return ""
	}
	return value
}

// isArrayValue reports whether a PHP value expression opens an array.
func isArrayValue(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "[") || strings.HasPrefix(strings.ToLower(s), "array(")
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1], true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
