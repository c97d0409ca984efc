package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"onetype.dev/pkg/onetype/internal/adapter"
)

// onetype.yaml lives next to the sources it checks.
const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "onetype"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "ONETYPE"
)

// Flags shared by every command, plus the ones only fix understands.
const (
	outputFlagName      = "output"
	excludeFlagName     = "exclude"
	includeFlagName     = "include"
	runParallelFlagName = "parallel"
	verboseFlagName     = "verbose"
	logFileFlagName     = "log-file"

	dryRunFlagName = "dry-run"
	onlyFlagName   = "only"
)

// Keys of onetype.yaml. The output directory is stored under its flag name.
const (
	runParallelConfigKey = "run.parallel"
	excludeConfigKey     = "paths.exclude"
	includeConfigKey     = "paths.include"
	cacheSizeConfigKey   = "cache.size"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"
)

const (
	defaultReportsDir  = ".onetype"
	defaultRunParallel = 4
	defaultCacheSize   = adapter.DefaultParseCacheSize

	defaultLogFilename   = ".onetype.log"
	defaultLogLevel      = "info"
	defaultLogMaxSize    = 10 // megabytes
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28 // days
	defaultLogCompress   = true
)

var slogLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	err := viper.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		slog.Debug("Ignoring onetype.yaml", "error", err)
	}
}

// setDefaults registers the values written by `onetype init`.
func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)

	viper.SetDefault(outputFlagName, defaultReportsDir)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(includeConfigKey, []string{})
	viper.SetDefault(cacheSizeConfigKey, defaultCacheSize)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, false)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// parseSlogLevel accepts a level name or a numeric slog level (-4 is debug).
func parseSlogLevel(value string, fallback slog.Level) slog.Level {
	name := strings.ToLower(strings.TrimSpace(value))

	if level, ok := slogLevels[name]; ok {
		return level
	}

	if n, err := strconv.Atoi(name); err == nil {
		return slog.Level(n)
	}

	return fallback
}

// configureLogger sends onetype's logs to a rotating file so they never mix
// with the findings printed on stdout.
func configureLogger(logPath string, verbose bool) {
	level := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(newLogWriter(logPath), &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

func newLogWriter(logPath string) *lumberjack.Logger {
	for _, candidate := range []string{logPath, viper.GetString(logFilenameKey), defaultLogFilename} {
		if strings.TrimSpace(candidate) != "" {
			logPath = candidate
			break
		}
	}

	return &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}
}
