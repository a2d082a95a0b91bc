package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/clubgate.db"

	// CSVPath is imported at startup if the file exists.
	CSVPath string

	// Group is the group ("team") the gate is currently admitting.
	// Supplied to the decision engine on every scan.
	Group string

	// Reader selects the card reader implementation: "pcsc" | "wedge".
	Reader string

	// Replay guard windows.
	GraceSeconds int // repeat scans under this are re-allowed (default 60)
	ReuseMinutes int // repeat scans under this are denied (default 60)

	// Entry log retention
	RetentionDays      int // 0 = keep forever
	PruneIntervalHours int // how often the pruner runs (default 6)
}

func FromEnv() Config {
	env := strings.ToLower(getenvDefault("CLUBGATE_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	reader := strings.ToLower(getenvDefault("CLUBGATE_READER", "pcsc"))
	if reader != "pcsc" && reader != "wedge" {
		reader = "pcsc"
	}

	return Config{
		Env:     env,
		DBPath:  getenvDefault("CLUBGATE_DB_PATH", "./data/clubgate.db"),
		CSVPath: getenvDefault("CLUBGATE_CSV_PATH", "./cards.csv"),
		Group:   strings.TrimSpace(os.Getenv("CLUBGATE_GROUP")),
		Reader:  reader,

		GraceSeconds: getenvInt("CLUBGATE_GRACE_SECONDS", 60),
		ReuseMinutes: getenvInt("CLUBGATE_REUSE_MINUTES", 60),

		RetentionDays:      getenvInt("CLUBGATE_RETENTION_DAYS", 0),
		PruneIntervalHours: getenvInt("CLUBGATE_PRUNE_INTERVAL_HOURS", 6),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
