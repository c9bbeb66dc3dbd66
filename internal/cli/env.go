package cli

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileVar overrides the .env path regardless of flags.
const EnvFileVar = "LINGO_ENV_FILE"

// EnvLoader loads .env files with a predictable override order.
type EnvLoader struct {
	value       *string
	defaultPath string
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	value := fs.String("env", defaultPath, description)
	return &EnvLoader{
		value:       value,
		defaultPath: defaultPath,
	}
}

// Load resolves and loads environment variables using the configured flag
// value. A missing .env file is not an error for a client; the environment
// itself may already carry everything needed.
func (l *EnvLoader) Load() (string, bool) {
	if l == nil {
		return "", false
	}

	log.SetOutput(os.Stderr)

	if custom := strings.TrimSpace(os.Getenv(EnvFileVar)); custom != "" {
		if err := godotenv.Overload(custom); err == nil {
			return custom, true
		}
		log.Printf("Warning: failed to load %s=%s", EnvFileVar, custom)
	}

	requested := strings.TrimSpace(derefString(l.value))
	if requested == "" {
		requested = l.defaultPath
	}

	if err := godotenv.Overload(requested); err == nil {
		return requested, true
	}

	if requested != l.defaultPath {
		if err := godotenv.Overload(l.defaultPath); err == nil {
			return l.defaultPath, true
		}
		fmt.Fprintf(os.Stderr, "Warning: no env file found at %s or %s\n", requested, l.defaultPath)
	}

	return "", false
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
