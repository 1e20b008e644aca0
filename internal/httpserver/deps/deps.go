package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/portal"
	"github.com/dmconta/portal/internal/store"
	"github.com/dmconta/portal/internal/store/file"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access the API
	TrustProxy   bool             // true if running behind a trusted reverse proxy

	Coordinator *portal.Coordinator // canonical in-memory state + mutation pipeline
	Files       *file.Store         // file-backed collection tier served at /api/toggles
	Durable     store.Durable       // key/value tier (import/export paths)
	RedisClient *redis.Client       // nil when running on the in-memory tier
	DataDir     string              // backing directory of the file tier
}
