package wire

import (
	"Prism/internal/api"
	"Prism/internal/api/config"
	"Prism/internal/api/handler"
	"Prism/internal/job"
	"Prism/internal/pkg/analysis"
	"Prism/internal/pkg/cron"
	"Prism/internal/pkg/es"
	"Prism/internal/pkg/kafka"
	"Prism/internal/pkg/minio"
	pkgmongo "Prism/internal/pkg/mongo"
	"Prism/internal/pkg/transcode"
	"Prism/internal/repository"
	"Prism/internal/service"

	"github.com/gin-gonic/gin"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
	Producer     *kafka.Producer
}

func BuildApplication(db *gorm.DB, mongoDB *mongodriver.Database, cfg *config.Config) (*ApplicationContainer, error) {
	mediaRepo := repository.NewMediaObjectRepo(db)
	metadataRepo := repository.NewMediaMetadataRepo(db)
	tagRepo := repository.NewMediaTagRepo(db)

	auditRepo := pkgmongo.NewJobAuditRepo(mongoDB)
	mediaESRepo := es.NewMediaRepo(es.Client)

	gateway, err := minio.NewGateway(cfg.MinIO)
	if err != nil {
		return nil, err
	}

	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, err
	}

	mediaService := service.NewMediaService(mediaRepo, metadataRepo, gateway, producer, mediaESRepo)
	migrationService := service.NewMigrationService(mediaRepo, gateway, auditRepo)

	analyzer := analysis.NewClient()
	transcoder := transcode.NewTranscoder(gateway, mediaService, mediaRepo)

	handlers := &api.HandlersGroup{
		MediaHandler: handler.NewMediaHandler(mediaService, transcoder, mediaESRepo),
		AdminHandler: handler.NewAdminHandler(migrationService, auditRepo),
	}

	router := api.SetupRouter(handlers)

	mediaHandler := kafka.NewMediaHandler(mediaRepo, tagRepo, mediaService, analyzer, mediaESRepo)
	kafkaMgr, err := kafka.NewConsumerManager(cfg, mediaHandler)
	if err != nil {
		return nil, err
	}

	cronMgr := cron.NewCronManager(
		job.NewChecksumBackfillJob(mediaRepo, metadataRepo, gateway, auditRepo),
		job.NewCaptionBackfillJob(mediaRepo, metadataRepo, auditRepo),
		job.NewTranslationBackfillJob(mediaRepo, metadataRepo, auditRepo),
	)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
		Producer:     producer,
	}, nil
}
