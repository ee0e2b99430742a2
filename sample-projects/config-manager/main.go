package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/attrkit/attrcodec"
	"github.com/attrkit/attrcodec/jsonschema"
	"github.com/attrkit/attrcodec/schema"
	"github.com/attrkit/attrcodec/wire"
)

// Config is the complete service configuration. Every section is
// explicit in base.yaml; environment files overlay onto it, so defaults
// live in the documents rather than in the schema.
type Config struct {
	Service  ServiceConfig
	Database DatabaseConfig
	Cache    *CacheConfig
	Logging  LoggingConfig
	Flags    map[string]bool
}

type ServiceConfig struct {
	Name        string
	Environment Environment
	Host        string
	Port        uint16
	TLS         *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type DatabaseConfig struct {
	Host     string
	Port     uint16
	Name     string
	User     string
	Password string
	MaxConns int
	SSLMode  SSLMode
}

type CacheConfig struct {
	Host     string
	Port     uint16
	DB       int
	PoolSize int
}

type LoggingConfig struct {
	Level  LogLevel
	Format LogFormat
}

// Environment, SSLMode, LogLevel and LogFormat are closed vocabularies.
// Their schemas are data-less tagged enums, so they read and write as
// bare strings in the YAML documents.

type Environment int

const (
	EnvDevelopment Environment = iota
	EnvStaging
	EnvProduction
)

func (e Environment) String() string {
	switch e {
	case EnvStaging:
		return "staging"
	case EnvProduction:
		return "production"
	default:
		return "development"
	}
}

type SSLMode int

const (
	SSLDisable SSLMode = iota
	SSLPrefer
	SSLRequire
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatText
)

func environmentSchema() schema.Schema[Environment] {
	return schema.TaggedEnum[Environment]("environment",
		schema.CaseValue("development", EnvDevelopment),
		schema.CaseValue("staging", EnvStaging),
		schema.CaseValue("production", EnvProduction),
	)
}

func sslModeSchema() schema.Schema[SSLMode] {
	return schema.TaggedEnum[SSLMode]("sslMode",
		schema.CaseValue("disable", SSLDisable),
		schema.CaseValue("prefer", SSLPrefer),
		schema.CaseValue("require", SSLRequire),
	)
}

func logLevelSchema() schema.Schema[LogLevel] {
	return schema.TaggedEnum[LogLevel]("level",
		schema.CaseValue("debug", LevelDebug),
		schema.CaseValue("info", LevelInfo),
		schema.CaseValue("warn", LevelWarn),
		schema.CaseValue("error", LevelError),
	)
}

func logFormatSchema() schema.Schema[LogFormat] {
	return schema.TaggedEnum[LogFormat]("format",
		schema.CaseValue("json", FormatJSON),
		schema.CaseValue("text", FormatText),
	)
}

func tlsSchema() schema.Schema[TLSConfig] {
	return schema.Record[TLSConfig](
		schema.Field("certFile", schema.String(),
			func(c TLSConfig) string { return c.CertFile },
			func(c *TLSConfig, v string) { c.CertFile = v }),
		schema.Field("keyFile", schema.String(),
			func(c TLSConfig) string { return c.KeyFile },
			func(c *TLSConfig, v string) { c.KeyFile = v }),
	)
}

func serviceSchema() schema.Schema[ServiceConfig] {
	return schema.Record[ServiceConfig](
		schema.Field("name", schema.String(),
			func(c ServiceConfig) string { return c.Name },
			func(c *ServiceConfig, v string) { c.Name = v }),
		schema.Field("environment", environmentSchema(),
			func(c ServiceConfig) Environment { return c.Environment },
			func(c *ServiceConfig, v Environment) { c.Environment = v }),
		schema.Field("host", schema.String(),
			func(c ServiceConfig) string { return c.Host },
			func(c *ServiceConfig, v string) { c.Host = v }),
		schema.Field("port", schema.Uint16(),
			func(c ServiceConfig) uint16 { return c.Port },
			func(c *ServiceConfig, v uint16) { c.Port = v }),
		schema.Field("tls", schema.Optional(tlsSchema()),
			func(c ServiceConfig) *TLSConfig { return c.TLS },
			func(c *ServiceConfig, v *TLSConfig) { c.TLS = v }),
	)
}

func databaseSchema() schema.Schema[DatabaseConfig] {
	return schema.Record[DatabaseConfig](
		schema.Field("host", schema.String(),
			func(c DatabaseConfig) string { return c.Host },
			func(c *DatabaseConfig, v string) { c.Host = v }),
		schema.Field("port", schema.Uint16(),
			func(c DatabaseConfig) uint16 { return c.Port },
			func(c *DatabaseConfig, v uint16) { c.Port = v }),
		schema.Field("name", schema.String(),
			func(c DatabaseConfig) string { return c.Name },
			func(c *DatabaseConfig, v string) { c.Name = v }),
		schema.Field("user", schema.String(),
			func(c DatabaseConfig) string { return c.User },
			func(c *DatabaseConfig, v string) { c.User = v }),
		schema.Field("password", schema.String(),
			func(c DatabaseConfig) string { return c.Password },
			func(c *DatabaseConfig, v string) { c.Password = v }),
		schema.Field("maxConns", schema.Int(),
			func(c DatabaseConfig) int { return c.MaxConns },
			func(c *DatabaseConfig, v int) { c.MaxConns = v }),
		schema.Field("sslMode", sslModeSchema(),
			func(c DatabaseConfig) SSLMode { return c.SSLMode },
			func(c *DatabaseConfig, v SSLMode) { c.SSLMode = v }),
	)
}

func cacheSchema() schema.Schema[CacheConfig] {
	return schema.Record[CacheConfig](
		schema.Field("host", schema.String(),
			func(c CacheConfig) string { return c.Host },
			func(c *CacheConfig, v string) { c.Host = v }),
		schema.Field("port", schema.Uint16(),
			func(c CacheConfig) uint16 { return c.Port },
			func(c *CacheConfig, v uint16) { c.Port = v }),
		schema.Field("db", schema.Int(),
			func(c CacheConfig) int { return c.DB },
			func(c *CacheConfig, v int) { c.DB = v }),
		schema.Field("poolSize", schema.Int(),
			func(c CacheConfig) int { return c.PoolSize },
			func(c *CacheConfig, v int) { c.PoolSize = v }),
	)
}

func loggingSchema() schema.Schema[LoggingConfig] {
	return schema.Record[LoggingConfig](
		schema.Field("level", logLevelSchema(),
			func(c LoggingConfig) LogLevel { return c.Level },
			func(c *LoggingConfig, v LogLevel) { c.Level = v }),
		schema.Field("format", logFormatSchema(),
			func(c LoggingConfig) LogFormat { return c.Format },
			func(c *LoggingConfig, v LogFormat) { c.Format = v }),
	)
}

func configSchema() schema.Schema[Config] {
	return schema.Record[Config](
		schema.Field("service", serviceSchema(),
			func(c Config) ServiceConfig { return c.Service },
			func(c *Config, v ServiceConfig) { c.Service = v }),
		schema.Field("database", databaseSchema(),
			func(c Config) DatabaseConfig { return c.Database },
			func(c *Config, v DatabaseConfig) { c.Database = v }),
		schema.Field("cache", schema.Optional(cacheSchema()),
			func(c Config) *CacheConfig { return c.Cache },
			func(c *Config, v *CacheConfig) { c.Cache = v }),
		schema.Field("logging", loggingSchema(),
			func(c Config) LoggingConfig { return c.Logging },
			func(c *Config, v LoggingConfig) { c.Logging = v }),
		schema.Field("flags", schema.MapOf(schema.String(), schema.Bool()),
			func(c Config) map[string]bool { return c.Flags },
			func(c *Config, v map[string]bool) { c.Flags = v }),
	)
}

// ConfigManager loads, validates and renders configuration documents.
type ConfigManager struct {
	codec attrcodec.Codec[Config]
}

func NewConfigManager() *ConfigManager {
	return &ConfigManager{codec: attrcodec.Derive(configSchema())}
}

// LoadConfig reads base.yaml, overlays <env>.yaml when present and
// decodes the merged document into a typed Config. Port ranges and
// vocabulary checks happen inside the decode itself.
func (cm *ConfigManager) LoadConfig(env string) (Config, error) {
	doc, err := cm.loadDocument("base.yaml")
	if err != nil {
		return Config{}, fmt.Errorf("loading base config: %w", err)
	}

	envFile := env + ".yaml"
	if _, err := os.Stat(envFile); err == nil {
		overlay, err := cm.loadDocument(envFile)
		if err != nil {
			return Config{}, fmt.Errorf("loading %s config: %w", env, err)
		}
		doc = mergeDocuments(doc, overlay)
	}

	return cm.codec.Decode(doc)
}

func (cm *ConfigManager) loadDocument(path string) (wire.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return wire.Value{}, err
	}
	return wire.FromYAML(expandEnvVars(data))
}

// mergeDocuments overlays one wire value onto another. Maps merge
// recursively; anything else is replaced by the overlay.
func mergeDocuments(base, overlay wire.Value) wire.Value {
	if base.Kind() != wire.KindMap || overlay.Kind() != wire.KindMap {
		return overlay
	}
	bm, _ := base.AsMap()
	om, _ := overlay.AsMap()
	merged := make(map[string]wire.Value, len(bm)+len(om))
	for k, v := range bm {
		merged[k] = v
	}
	for k, v := range om {
		if cur, ok := merged[k]; ok {
			merged[k] = mergeDocuments(cur, v)
		} else {
			merged[k] = v
		}
	}
	return wire.Map(merged)
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandEnvVars substitutes ${VAR} and ${VAR:-default} references
// before the document is parsed.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		groups := envVarPattern.FindSubmatch(m)
		if v, ok := os.LookupEnv(string(groups[1])); ok {
			return []byte(v)
		}
		return groups[3]
	})
}

// ValidateConfig decodes the environment's configuration and applies
// the cross-field checks the schema cannot express. Findings accumulate
// as Issues so one run reports every violation.
func (cm *ConfigManager) ValidateConfig(env string) error {
	config, err := cm.LoadConfig(env)
	if err != nil {
		return err
	}

	var iss attrcodec.Issues
	if config.Service.Environment == EnvProduction {
		if config.Service.TLS == nil {
			iss = attrcodec.AppendIssues(iss, attrcodec.Issue{
				Path: "/service/tls", Code: attrcodec.CodeRequired,
				Message: "production requires a tls section",
			})
		}
		if config.Database.SSLMode != SSLRequire {
			iss = attrcodec.AppendIssues(iss, attrcodec.Issue{
				Path: "/database/sslMode", Code: attrcodec.CodeInvalidFormat,
				Message: "production requires sslMode: require",
			})
		}
	}
	if tls := config.Service.TLS; tls != nil && (tls.CertFile == "" || tls.KeyFile == "") {
		iss = attrcodec.AppendIssues(iss, attrcodec.Issue{
			Path: "/service/tls", Code: attrcodec.CodeRequired,
			Message: "tls section requires certFile and keyFile",
		})
	}
	if len(iss) > 0 {
		return iss
	}

	fmt.Printf("✅ configuration for %q is valid (service %s on %s:%d)\n",
		env, config.Service.Name, config.Service.Host, config.Service.Port)
	return nil
}

// ShowConfig prints the effective configuration as YAML, re-encoded
// through the schema so the output is exactly what a decoder sees.
func (cm *ConfigManager) ShowConfig(env string, maskSecrets bool) error {
	config, err := cm.LoadConfig(env)
	if err != nil {
		return err
	}
	if maskSecrets && config.Database.Password != "" {
		config.Database.Password = "******"
	}

	av, err := cm.codec.Encode(config)
	if err != nil {
		return fmt.Errorf("re-encoding config: %w", err)
	}
	data, err := wire.ToYAML(av)
	if err != nil {
		return err
	}

	fmt.Printf("# effective configuration for %s\n", env)
	fmt.Print(string(data))
	return nil
}

// GenerateTemplate writes starter configuration documents.
func (cm *ConfigManager) GenerateTemplate() error {
	for name, content := range templates {
		if _, err := os.Stat(name); err == nil {
			fmt.Printf("skipping %s (already exists)\n", name)
			continue
		}
		if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		fmt.Printf("wrote %s\n", name)
	}
	return nil
}

var templates = map[string]string{
	"base.yaml": `# Base configuration. Every field is present here; environment files
# overlay onto it. Nullable sections are written as null, not omitted.
service:
  name: "attr-service"
  environment: "development"
  host: "0.0.0.0"
  port: 8080
  tls: null

database:
  host: "localhost"
  port: 5432
  name: "app"
  user: "postgres"
  password: "${DB_PASSWORD:-}"
  maxConns: 10
  sslMode: "prefer"

cache: null

logging:
  level: "info"
  format: "json"

flags:
  analytics: true
  debugging: false
`,
	"development.yaml": `service:
  port: 3000

database:
  sslMode: "disable"

logging:
  level: "debug"

flags:
  debugging: true
`,
	"production.yaml": `service:
  environment: "production"
  port: 443
  tls:
    certFile: "${TLS_CERT_FILE}"
    keyFile: "${TLS_KEY_FILE}"

database:
  host: "${DB_HOST}"
  password: "${DB_PASSWORD}"
  maxConns: 50
  sslMode: "require"

cache:
  host: "${CACHE_HOST:-localhost}"
  port: 6379
  db: 0
  poolSize: 20

logging:
  level: "warn"
`,
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cm := NewConfigManager()
	switch os.Args[1] {
	case "validate":
		if err := cm.ValidateConfig(getEnvFlag()); err != nil {
			reportError("validation failed", err)
			os.Exit(1)
		}

	case "show":
		if err := cm.ShowConfig(getEnvFlag(), !getBoolFlag("--no-mask")); err != nil {
			reportError("show failed", err)
			os.Exit(1)
		}

	case "generate":
		if !getBoolFlag("--template") {
			fmt.Fprintln(os.Stderr, "❌ use --template to generate starter files")
			os.Exit(1)
		}
		if err := cm.GenerateTemplate(); err != nil {
			reportError("generate failed", err)
			os.Exit(1)
		}

	case "schema":
		data, err := json.MarshalIndent(jsonschema.FromNode(cm.codec.Node()), "", "  ")
		if err != nil {
			reportError("schema export failed", err)
			os.Exit(1)
		}
		fmt.Println(string(data))

	default:
		printUsage()
		os.Exit(1)
	}
}

// reportError prints schema issues one per line with their document
// pointer, and anything else as-is.
func reportError(prefix string, err error) {
	fmt.Fprintf(os.Stderr, "❌ %s\n", prefix)
	if iss, ok := attrcodec.AsIssues(err); ok {
		for _, it := range iss {
			fmt.Fprintf(os.Stderr, "  - %s at %s: %s\n", it.Code, it.Path, it.Message)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "  %v\n", err)
}

func printUsage() {
	fmt.Printf(`attrcodec config manager sample

Usage: %s <command> [flags...]

Commands:
  validate [--env=<env>]            Validate configuration for an environment
  show [--env=<env>] [--no-mask]    Show the effective configuration
  generate --template               Write starter configuration files
  schema                            Export the config schema as JSON Schema

Environment files:
  base.yaml            complete base configuration (required)
  <environment>.yaml   overlay merged on top of base (optional)
`, os.Args[0])
}

func getEnvFlag() string {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "--env=") {
			return strings.TrimPrefix(arg, "--env=")
		}
	}
	return "development"
}

func getBoolFlag(flag string) bool {
	for _, arg := range os.Args {
		if arg == flag {
			return true
		}
	}
	return false
}
