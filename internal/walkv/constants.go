package walkv

// Data directory layout
const (
	DefaultDataDir = "data"
	WALFileName    = "wal.log"
)

// Log file defaults
const (
	DefaultAppDir        = ".walkv"
	DefaultLogDir        = "logs"
	DefaultLogFileName   = "walkv.log"
	DefaultLogMaxSize    = 100
	DefaultLogMaxBackups = 3
	DefaultLogLevel      = "warn"
)

// DefaultConfigFileName is looked up in the working directory when --config is not given.
const DefaultConfigFileName = "walkv.yaml"

// Console log destinations
const (
	LogStreamStdout = "stdout"
	LogStreamStderr = "stderr"
	LogStreamNone   = "none"
)
