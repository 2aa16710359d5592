package dto

// MigrateRequest 存量桶回填请求
type MigrateRequest struct {
	Bucket  string `json:"bucket" binding:"required"`
	Prefix  string `json:"prefix"`
	AppName string `json:"app_name" binding:"required"`
	UserID  uint64 `json:"user_id" binding:"required"`
}

// MigrationResult 一次对账的汇总计数，仅在内存中存在
type MigrationResult struct {
	TotalObjects    int `json:"total_objects"`
	ExistingObjects int `json:"existing_objects"`
	MigratedObjects int `json:"migrated_objects"`
	FailedObjects   int `json:"failed_objects"`
}
