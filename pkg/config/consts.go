package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// envconfig tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "FRESHBOX_DB_DSN"
	EnvDBHost = "FRESHBOX_DB_HOST"
	EnvDBUser = "FRESHBOX_DB_USER"
	EnvDBName = "FRESHBOX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
