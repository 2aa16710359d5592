package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type JobAuditRepo interface {
	SaveRun(ctx context.Context, run *JobRunAudit) error
	GetRecentRuns(ctx context.Context, job string, limit int) ([]*JobRunAudit, error)
}

type jobAuditRepoImpl struct {
	col *mongo.Collection
}

func NewJobAuditRepo(db *mongo.Database) JobAuditRepo {
	return &jobAuditRepoImpl{
		col: db.Collection("job_run_audit"),
	}
}

// SaveRun 写入一条运行记录
func (s *jobAuditRepoImpl) SaveRun(ctx context.Context, run *JobRunAudit) error {
	_, err := s.col.InsertOne(ctx, run)
	return err
}

// GetRecentRuns 按开始时间倒序查询指定任务的最近运行
func (s *jobAuditRepoImpl) GetRecentRuns(ctx context.Context, job string, limit int) ([]*JobRunAudit, error) {
	filter := bson.M{"job": job}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var runs []*JobRunAudit
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}

	return runs, nil
}
