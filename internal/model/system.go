package model

// VersionInfo contains application and schema version information.
type VersionInfo struct {
	AppVersion      string `json:"app_version"`
	DbVersion       int64  `json:"db_version"`
	LatestDbVersion int64  `json:"latest_db_version"`
	MigrationNeeded bool   `json:"migration_needed"`
}
