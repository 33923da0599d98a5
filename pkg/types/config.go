package types

import (
	"runtime"
	"time"
)

type AppConfig struct {
	DebugMode  bool             `key:"debugMode" json:"debug_mode"`
	PrettyLogs bool             `key:"prettyLogs" json:"pretty_logs"`
	MountPoint string           `key:"mountPoint" json:"mount_point"`
	Engine     EngineConfig     `key:"engine" json:"engine"`
	Cache      CacheConfig      `key:"cache" json:"cache"`
	Filesystem FilesystemConfig `key:"filesystem" json:"filesystem"`
	Logging    LoggingConfig    `key:"logging" json:"logging"`
	Monitoring MonitoringConfig `key:"monitoring" json:"monitoring"`
}

type EngineConfig struct {
	// Host overrides DOCKER_HOST. Empty uses the environment.
	Host           string           `key:"host" json:"host"`
	APIVersion     string           `key:"apiVersion" json:"api_version"`
	StartupTimeout time.Duration    `key:"startupTimeout" json:"startup_timeout" validate:"gte=0"`
	IncludeAll     IncludeAllConfig `key:"includeAll" json:"include_all"`
}

// IncludeAllConfig selects per category whether stopped or dangling
// resources are listed.
type IncludeAllConfig struct {
	Volumes    bool `key:"volumes" json:"volumes"`
	Images     bool `key:"images" json:"images"`
	Containers bool `key:"containers" json:"containers"`
}

func (c IncludeAllConfig) For(category Category) bool {
	switch category {
	case CategoryVolumes:
		return c.Volumes
	case CategoryImages:
		return c.Images
	case CategoryContainers:
		return c.Containers
	}
	return false
}

type CacheConfig struct {
	// DiskUsageTTL bounds how stale aggregate sizes may be. Resources created
	// or resized inside the window keep their previous size until expiry.
	DiskUsageTTL time.Duration `key:"diskUsageTTL" json:"disk_usage_ttl" validate:"gt=0"`
}

type NlinkMode string

const (
	NlinkModeAuto    NlinkMode = "auto"
	NlinkModeMembers NlinkMode = "members"
	NlinkModeFixed   NlinkMode = "fixed"
)

type FilesystemConfig struct {
	FsName             string        `key:"fsName" json:"fs_name" validate:"required"`
	AllowOther         bool          `key:"allowOther" json:"allow_other"`
	Debug              bool          `key:"debug" json:"debug"`
	EntryTimeout       time.Duration `key:"entryTimeout" json:"entry_timeout" validate:"gte=0"`
	AttrTimeout        time.Duration `key:"attrTimeout" json:"attr_timeout" validate:"gte=0"`
	NegativeTimeout    time.Duration `key:"negativeTimeout" json:"negative_timeout" validate:"gte=0"`
	Uid                uint32        `key:"uid" json:"uid"`
	Gid                uint32        `key:"gid" json:"gid"`
	PlaceholderSize    uint64        `key:"placeholderSize" json:"placeholder_size" validate:"gt=0"`
	PlaceholderPayload string        `key:"placeholderPayload" json:"placeholder_payload"`
	ReservedHandles    uint32        `key:"reservedHandles" json:"reserved_handles"`
	MaxHandles         uint32        `key:"maxHandles" json:"max_handles"`
	Epoch              time.Time     `key:"epoch" json:"epoch"`
	// NlinkMode decides whether directory link counts include members.
	// "auto" follows the host platform convention (darwin counts members).
	NlinkMode NlinkMode `key:"nlinkMode" json:"nlink_mode" validate:"omitempty,oneof=auto members fixed"`
}

func (c FilesystemConfig) CountMembersInNlink() bool {
	switch c.NlinkMode {
	case NlinkModeMembers:
		return true
	case NlinkModeFixed:
		return false
	}
	return runtime.GOOS == "darwin"
}

func (c FilesystemConfig) ReportBirthtime() bool {
	return runtime.GOOS == "darwin"
}

type LoggingConfig struct {
	Level      string `key:"level" json:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	File       string `key:"file" json:"file"`
	MaxSizeMB  int    `key:"maxSizeMB" json:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `key:"maxBackups" json:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `key:"maxAgeDays" json:"max_age_days" validate:"gte=0"`
	Compress   bool   `key:"compress" json:"compress"`
}

type MonitoringConfig struct {
	MetricsAddress string `key:"metricsAddress" json:"metrics_address"`
}
